// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gogama/fetchx/codec"
	"github.com/gogama/fetchx/request"
)

func TestGet(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		expected := &request.Response{Status: 200}
		m := newMockDoer(t)
		m.On("Do", mock.MatchedBy(func(cfg *request.Config) bool {
			return cfg.Method == "GET" && cfg.URL == "foo" && cfg.Body.IsNone()
		})).Return(&request.Execution{Response: expected}, nil).Once()
		resp, err := Get(m, "foo")
		assert.Same(t, expected, resp)
		assert.NoError(t, err)
		m.AssertExpectations(t)
	})
	t.Run("error", func(t *testing.T) {
		expected := &request.Error{Code: request.CodeInvalidURL, Message: "bad"}
		m := newMockDoer(t)
		m.On("Do", mock.Anything).Return(&request.Execution{Err: expected}, expected).Once()
		resp, err := Get(m, ":::")
		assert.Nil(t, resp)
		assert.Same(t, expected, err)
		m.AssertExpectations(t)
	})
	t.Run("nil doer", func(t *testing.T) {
		expected := &request.Response{Status: 200}
		b := newMockBackend(t)
		b.On("Execute", mock.Anything, mock.MatchedBy(func(fin *request.Finalized) bool {
			return fin.Method == "GET" && fin.URL == "https://example.com"
		}), mock.Anything).Return(expected, nil).Once()
		withDefaultClient(t, &Client{Backend: b, Defaults: request.NewDefaults()})
		resp, err := Get(nil, "https://example.com")
		assert.NoError(t, err)
		assert.Same(t, expected, resp)
		b.AssertExpectations(t)
	})
}

func TestPost(t *testing.T) {
	expected := &request.Response{Status: 201}
	m := newMockDoer(t)
	m.On("Do", mock.MatchedBy(func(cfg *request.Config) bool {
		return cfg.Method == "POST" && cfg.URL == "baz" && cfg.Body.Kind() == codec.KindJSON
	})).Return(&request.Execution{Response: expected}, nil).Once()
	resp, err := Post(m, "baz", map[string]any{"ham": "eggs"})
	assert.Same(t, expected, resp)
	assert.NoError(t, err)
	m.AssertExpectations(t)
}

func TestPut(t *testing.T) {
	expected := &request.Response{Status: 200}
	m := newMockDoer(t)
	m.On("Do", mock.MatchedBy(func(cfg *request.Config) bool {
		return cfg.Method == "PUT" && cfg.URL == "ham" && cfg.Body.Kind() == codec.KindText
	})).Return(&request.Execution{Response: expected}, nil).Once()
	resp, err := Put(m, "ham", "eggs")
	assert.Same(t, expected, resp)
	assert.NoError(t, err)
	m.AssertExpectations(t)
}

func TestPatch(t *testing.T) {
	expected := &request.Response{Status: 200}
	m := newMockDoer(t)
	m.On("Do", mock.MatchedBy(func(cfg *request.Config) bool {
		return cfg.Method == "PATCH" && cfg.URL == "spam" && cfg.Body.Kind() == codec.KindBytes
	})).Return(&request.Execution{Response: expected}, nil).Once()
	resp, err := Patch(m, "spam", []byte{1, 2, 3})
	assert.Same(t, expected, resp)
	assert.NoError(t, err)
	m.AssertExpectations(t)
}

func TestDelete(t *testing.T) {
	expected := &request.Response{Status: 204}
	m := newMockDoer(t)
	m.On("Do", mock.MatchedBy(func(cfg *request.Config) bool {
		return cfg.Method == "DELETE" && cfg.URL == "widgets/1" && cfg.Body.IsNone()
	})).Return(&request.Execution{Response: expected}, nil).Once()
	resp, err := Delete(m, "widgets/1")
	assert.Same(t, expected, resp)
	assert.NoError(t, err)
	m.AssertExpectations(t)
}

func TestRequest(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		m := newMockDoer(t)
		m.On("Do", mock.MatchedBy(func(cfg *request.Config) bool {
			return cfg.Method == "GET" && cfg.URL == "foo"
		})).Return(&request.Execution{Response: &request.Response{}}, nil).Once()
		_, err := Request(m, "foo", nil)
		assert.NoError(t, err)
		m.AssertExpectations(t)
	})
	t.Run("config not modified", func(t *testing.T) {
		cfg := request.NewConfig("PUT", "ignored")
		cfg.Timeout = time.Second
		cfg.Header.Set("X-Token", "abc")
		m := newMockDoer(t)
		m.On("Do", mock.MatchedBy(func(actual *request.Config) bool {
			return actual != cfg && actual.Method == "PUT" && actual.URL == "bar" &&
				actual.Timeout == time.Second && actual.Header.Get("X-Token") == "abc"
		})).Return(&request.Execution{Response: &request.Response{}}, nil).Once()
		_, err := Request(m, "bar", cfg)
		assert.NoError(t, err)
		assert.Equal(t, "ignored", cfg.URL)
		m.AssertExpectations(t)
	})
}

func TestInflate(t *testing.T) {
	t.Run("Inflate", func(t *testing.T) {
		t.Run("nil doer", func(t *testing.T) {
			assert.PanicsWithValue(t, "fetchx: nil doer", func() {
				Inflate(nil)
			})
		})
		t.Run("already an Executor", func(t *testing.T) {
			cl := &Client{}
			x := Inflate(cl)
			assert.Same(t, cl, x)
		})
		t.Run("not yet an Executor", func(t *testing.T) {
			m := newMockDoer(t)
			x := Inflate(m)
			assert.NotSame(t, m, x)
		})
	})
	expected := &request.Response{Status: 200}
	exec := &request.Execution{Response: expected}
	t.Run("Do", func(t *testing.T) {
		cfg := request.NewConfig("PUT", "http://www.randomcollections.com/widgets/1")
		m := newMockDoer(t)
		m.On("Do", cfg).Return(exec, nil).Once()
		x := Inflate(m)
		e, err := x.Do(cfg)
		assert.Same(t, exec, e)
		assert.NoError(t, err)
		m.AssertExpectations(t)
	})
	methods := []struct {
		method string
		call   func(x Executor) (*Response, error)
	}{
		{"GET", func(x Executor) (*Response, error) { return x.Get("u") }},
		{"POST", func(x Executor) (*Response, error) { return x.Post("u", "b") }},
		{"PUT", func(x Executor) (*Response, error) { return x.Put("u", "b") }},
		{"PATCH", func(x Executor) (*Response, error) { return x.Patch("u", "b") }},
		{"DELETE", func(x Executor) (*Response, error) { return x.Delete("u") }},
		{"HEAD", func(x Executor) (*Response, error) { return x.Request("u", request.NewConfig("HEAD", "")) }},
	}
	for _, tc := range methods {
		t.Run(tc.method, func(t *testing.T) {
			m := newMockDoer(t)
			m.On("Do", mock.MatchedBy(func(cfg *request.Config) bool {
				return cfg.Method == tc.method && cfg.URL == "u"
			})).Return(exec, nil).Once()
			resp, err := tc.call(Inflate(m))
			require.NoError(t, err)
			assert.Same(t, expected, resp)
			m.AssertExpectations(t)
		})
	}
	t.Run("CloseIdleConnections", func(t *testing.T) {
		t.Run("Doer does not implement IdleCloser", func(t *testing.T) {
			m := newMockDoer(t)
			x := Inflate(m)
			x.CloseIdleConnections()
			m.AssertNotCalled(t, "CloseIdleConnections")
		})
		t.Run("Doer implements IdleCloser", func(t *testing.T) {
			m := newMockDoerWithCloseIdleConnections(t)
			m.On("CloseIdleConnections").Once()
			x := Inflate(m)
			x.CloseIdleConnections()
			m.AssertExpectations(t)
		})
	})
}

func withDefaultClient(t *testing.T, cl *Client) {
	old := DefaultClient
	DefaultClient = cl
	t.Cleanup(func() { DefaultClient = old })
}

type mockDoer struct {
	mock.Mock
}

func newMockDoer(t *testing.T) *mockDoer {
	m := &mockDoer{}
	m.Test(t)
	return m
}

func (m *mockDoer) Do(cfg *request.Config) (*request.Execution, error) {
	args := m.Called(cfg)
	e := args.Get(0)
	err := args.Error(1)
	if e == nil {
		return nil, err
	}
	return e.(*request.Execution), err
}

type mockDoerWithCloseIdleConnections struct {
	mockDoer
}

func newMockDoerWithCloseIdleConnections(t *testing.T) *mockDoerWithCloseIdleConnections {
	m := &mockDoerWithCloseIdleConnections{}
	m.Test(t)
	return m
}

func (m *mockDoerWithCloseIdleConnections) CloseIdleConnections() {
	m.Called()
}
