// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/gogama/fetchx/logger"
	"github.com/gogama/fetchx/request"
	"github.com/gogama/fetchx/timeout"
	"github.com/gogama/fetchx/transport"
)

func TestClient(t *testing.T) {
	t.Run("happy path", testClientHappyPath)
	t.Run("zero value", testClientZeroValue)
	t.Run("nil config", testClientNilConfig)
	t.Run("attempt timeout", testClientAttemptTimeout)
	t.Run("adaptive timeout", testClientAdaptiveTimeout)
	t.Run("retry", testClientRetry)
	t.Run("status not retried", testClientStatusNotRetried)
	t.Run("preflight", testClientPreflight)
	t.Run("cancel", testClientCancel)
	t.Run("limiter", testClientLimiter)
	t.Run("defaults", testClientDefaults)
	t.Run("before attempt", testClientBeforeAttempt)
	t.Run("logger", testClientLogger)
	t.Run("helpers", testClientHelpers)
	t.Run("CloseIdleConnections", testClientCloseIdleConnections)
}

func testClientHappyPath(t *testing.T) {
	mockBackend := newMockBackend(t)
	mockTimeoutPolicy := newMockTimeoutPolicy(t)
	mockRetryPolicy := newMockRetryPolicy(t)
	mockClock := clock.NewMock()
	cl := &Client{
		Backend:       mockBackend,
		Defaults:      request.NewDefaults(),
		TimeoutPolicy: mockTimeoutPolicy,
		RetryPolicy:   mockRetryPolicy,
		Handlers:      &HandlerGroup{},
		Clock:         mockClock,
	}
	tr := cl.addTraceHandlers()
	cfg := request.NewConfig("GET", "https://example.com/widgets")
	resp := &request.Response{Status: 200, Data: map[string]any{"ok": true}}

	mockTimeoutPolicy.On("Timeout", mock.AnythingOfType("*request.Execution")).Return(5 * time.Second).Once()
	mockBackend.On("Execute", cfg.Context(), mock.MatchedBy(func(fin *request.Finalized) bool {
		return fin.Method == "GET" && fin.URL == "https://example.com/widgets" && fin.Timeout == 5*time.Second
	}), cfg).Return(resp, nil).Once()

	e, err := cl.Do(cfg)

	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Same(t, cfg, e.Config)
	assert.Same(t, resp, e.Response)
	assert.Nil(t, e.Err)
	assert.Equal(t, 0, e.Attempt)
	assert.Equal(t, 0, e.AttemptTimeouts)
	assert.Equal(t, mockClock.Now(), e.Start)
	assert.Equal(t, mockClock.Now(), e.End)
	assert.Equal(t, []string{
		"BeforeExecutionStart",
		"BeforeAttempt",
		"AfterAttempt",
		"AfterExecutionEnd",
	}, tr.calls)
	mockBackend.AssertExpectations(t)
	mockTimeoutPolicy.AssertExpectations(t)
	mockRetryPolicy.AssertNotCalled(t, "Decide", mock.Anything)
}

func testClientZeroValue(t *testing.T) {
	mockBackend := newMockBackend(t)
	cl := &Client{Backend: mockBackend}
	cfg := request.NewConfig("POST", "https://example.com/")
	cfg.Timeout = 3 * time.Second
	resp := &request.Response{Status: 201}
	mockBackend.On("Execute", mock.Anything, mock.MatchedBy(func(fin *request.Finalized) bool {
		return fin.Method == "POST" && fin.Timeout == 3*time.Second
	}), cfg).Return(resp, nil).Once()

	e, err := cl.Do(cfg)

	require.NoError(t, err)
	assert.Same(t, resp, e.Response)
	assert.False(t, e.Start.IsZero())
	assert.False(t, e.End.Before(e.Start))
	mockBackend.AssertExpectations(t)
}

func testClientNilConfig(t *testing.T) {
	cl := &Client{}
	assert.PanicsWithValue(t, "fetchx: nil config", func() {
		_, _ = cl.Do(nil)
	})
}

func testClientAttemptTimeout(t *testing.T) {
	mockBackend := newMockBackend(t)
	mockRetryPolicy := newMockRetryPolicy(t)
	cl := &Client{
		Backend:     mockBackend,
		Defaults:    request.NewDefaults(),
		RetryPolicy: mockRetryPolicy,
		Handlers:    &HandlerGroup{},
	}
	tr := cl.addTraceHandlers()
	cfg := request.NewConfig("GET", "https://example.com/slow")
	cfg.Timeout = 50 * time.Millisecond
	resp := &request.Response{Status: 200}

	mockBackend.On("Execute", mock.Anything, mock.Anything, cfg).
		Return(nil, request.NewTimeoutError(nil, 50*time.Millisecond)).Once()
	mockBackend.On("Execute", mock.Anything, mock.Anything, cfg).
		Return(resp, nil).Once()
	mockRetryPolicy.On("Decide", mock.MatchedBy(func(e *request.Execution) bool {
		return e.Attempt == 0 && e.Timeout() && e.AttemptTimeouts == 1
	})).Return(true).Once()
	mockRetryPolicy.On("Wait", mock.Anything).Return(time.Duration(0)).Once()

	e, err := cl.Do(cfg)

	require.NoError(t, err)
	assert.Same(t, resp, e.Response)
	assert.Equal(t, 1, e.Attempt)
	assert.Equal(t, 1, e.AttemptTimeouts)
	assert.Equal(t, []string{
		"BeforeExecutionStart",
		"BeforeAttempt",
		"AfterAttemptTimeout",
		"AfterAttempt",
		"BeforeRetryWait",
		"BeforeAttempt",
		"AfterAttempt",
		"AfterExecutionEnd",
	}, tr.calls)
	mockBackend.AssertExpectations(t)
	mockRetryPolicy.AssertExpectations(t)
}

func testClientAdaptiveTimeout(t *testing.T) {
	mockBackend := newMockBackend(t)
	mockRetryPolicy := newMockRetryPolicy(t)
	cl := &Client{
		Backend:       mockBackend,
		Defaults:      request.NewDefaults(),
		RetryPolicy:   mockRetryPolicy,
		TimeoutPolicy: timeout.Adaptive(10*time.Millisecond, 100*time.Millisecond, time.Second),
		Handlers:      &HandlerGroup{},
	}
	var errsBeforeAttempt []error
	cl.Handlers.PushBack(BeforeAttempt, HandlerFunc(func(_ Event, e *request.Execution) {
		errsBeforeAttempt = append(errsBeforeAttempt, e.Err)
	}))
	cfg := request.NewConfig("GET", "https://example.com/sometimes-slow")
	var timeouts []time.Duration
	record := func(args mock.Arguments) {
		timeouts = append(timeouts, args.Get(1).(*request.Finalized).Timeout)
	}

	mockBackend.On("Execute", mock.Anything, mock.Anything, cfg).Run(record).
		Return(nil, request.NewTimeoutError(nil, 10*time.Millisecond)).Once()
	mockBackend.On("Execute", mock.Anything, mock.Anything, cfg).Run(record).
		Return(nil, request.NewTimeoutError(nil, 100*time.Millisecond)).Once()
	mockBackend.On("Execute", mock.Anything, mock.Anything, cfg).Run(record).
		Return(nil, request.NewNetworkError(nil, syscall.ECONNRESET)).Once()
	mockBackend.On("Execute", mock.Anything, mock.Anything, cfg).Run(record).
		Return(&request.Response{Status: 200}, nil).Once()
	mockRetryPolicy.On("Decide", mock.Anything).Return(true).Times(3)
	mockRetryPolicy.On("Wait", mock.Anything).Return(time.Duration(0)).Times(3)

	e, err := cl.Do(cfg)

	require.NoError(t, err)
	assert.Equal(t, 3, e.Attempt)
	assert.Equal(t, 2, e.AttemptTimeouts)
	assert.Equal(t, []time.Duration{
		10 * time.Millisecond,
		100 * time.Millisecond,
		time.Second,
		10 * time.Millisecond,
	}, timeouts)
	assert.Equal(t, []error{nil, nil, nil, nil}, errsBeforeAttempt)
	mockBackend.AssertExpectations(t)
	mockRetryPolicy.AssertExpectations(t)
}

func testClientRetry(t *testing.T) {
	t.Run("fail twice then succeed", func(t *testing.T) {
		mockBackend := newMockBackend(t)
		cl := &Client{Backend: mockBackend, Defaults: request.NewDefaults()}
		cfg := request.NewConfig("GET", "https://example.com/flaky")
		cfg.Retry = 3
		cfg.RetryDelay = time.Millisecond
		resp := &request.Response{Status: 200}
		mockBackend.On("Execute", mock.Anything, mock.Anything, cfg).
			Return(nil, request.NewNetworkError(nil, syscall.ECONNRESET)).Twice()
		mockBackend.On("Execute", mock.Anything, mock.Anything, cfg).
			Return(resp, nil).Once()

		e, err := cl.Do(cfg)

		require.NoError(t, err)
		assert.Same(t, resp, e.Response)
		assert.Equal(t, 2, e.Attempt)
		mockBackend.AssertNumberOfCalls(t, "Execute", 3)
	})
	t.Run("budget exhausted", func(t *testing.T) {
		mockBackend := newMockBackend(t)
		cl := &Client{Backend: mockBackend, Defaults: request.NewDefaults()}
		cfg := request.NewConfig("GET", "https://example.com/down")
		cfg.Retry = 2
		cfg.RetryDelay = time.Millisecond
		mockBackend.On("Execute", mock.Anything, mock.Anything, cfg).
			Return(nil, request.NewNetworkError(nil, syscall.ECONNREFUSED)).Times(3)

		e, err := cl.Do(cfg)

		var fe *Error
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, request.CodeNetwork, fe.Code)
		assert.Same(t, fe, e.Err)
		assert.Nil(t, e.Response)
		assert.Equal(t, 2, e.Attempt)
		mockBackend.AssertExpectations(t)
	})
	t.Run("wait uses clock", func(t *testing.T) {
		mockBackend := newMockBackend(t)
		mockRetryPolicy := newMockRetryPolicy(t)
		mockClock := clock.NewMock()
		cl := &Client{
			Backend:     mockBackend,
			Defaults:    request.NewDefaults(),
			RetryPolicy: mockRetryPolicy,
			Clock:       mockClock,
		}
		cfg := request.NewConfig("GET", "https://example.com/")
		mockBackend.On("Execute", mock.Anything, mock.Anything, cfg).
			Return(nil, request.NewNetworkError(nil, syscall.ECONNRESET)).Once()
		mockBackend.On("Execute", mock.Anything, mock.Anything, cfg).
			Return(&request.Response{Status: 200}, nil).Once()
		mockRetryPolicy.On("Decide", mock.Anything).Return(true).Once()
		mockRetryPolicy.On("Wait", mock.Anything).Return(time.Minute).Once()

		done := make(chan struct{})
		var e *request.Execution
		var err error
		go func() {
			defer close(done)
			e, err = cl.Do(cfg)
		}()
		advance(mockClock, time.Second, done)

		require.NoError(t, err)
		assert.Equal(t, 1, e.Attempt)
		assert.GreaterOrEqual(t, e.Duration(), time.Minute)
		mockBackend.AssertExpectations(t)
		mockRetryPolicy.AssertExpectations(t)
	})
}

func testClientStatusNotRetried(t *testing.T) {
	mockBackend := newMockBackend(t)
	cl := &Client{Backend: mockBackend, Defaults: request.NewDefaults()}
	cfg := request.NewConfig("GET", "https://example.com/broken")
	cfg.Retry = 3
	mockBackend.On("Execute", mock.Anything, mock.Anything, cfg).
		Return(nil, request.NewStatusError(nil, &request.Response{Status: 500})).Once()

	e, err := cl.Do(cfg)

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, request.CodeStatus, fe.Code)
	require.NotNil(t, fe.Response)
	assert.Equal(t, 500, fe.Response.Status)
	assert.Equal(t, 500, e.StatusCode())
	assert.Equal(t, 0, e.Attempt)
	mockBackend.AssertExpectations(t)
}

func testClientPreflight(t *testing.T) {
	mockBackend := newMockBackend(t)
	cl := &Client{Backend: mockBackend, Defaults: request.NewDefaults(), Handlers: &HandlerGroup{}}
	tr := cl.addTraceHandlers()
	cfg := request.NewConfig("GET", "/users")
	cfg.Retry = 5

	e, err := cl.Do(cfg)

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, request.CodeInvalidURL, fe.Code)
	assert.Nil(t, e.Request)
	assert.Equal(t, 0, e.Attempt)
	assert.Equal(t, []string{
		"BeforeExecutionStart",
		"AfterAttempt",
		"AfterExecutionEnd",
	}, tr.calls)
	mockBackend.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func testClientCancel(t *testing.T) {
	t.Run("during attempt", func(t *testing.T) {
		mockBackend := newMockBackend(t)
		mockRetryPolicy := newMockRetryPolicy(t)
		cl := &Client{
			Backend:     mockBackend,
			Defaults:    request.NewDefaults(),
			RetryPolicy: mockRetryPolicy,
			Handlers:    &HandlerGroup{},
		}
		tr := cl.addTraceHandlers()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		cfg := request.NewConfigWithContext(ctx, "GET", "https://example.com/")
		mockBackend.On("Execute", ctx, mock.Anything, cfg).
			Run(func(args mock.Arguments) { cancel() }).
			Return(nil, request.NewAbortError(nil, context.Canceled)).Once()

		e, err := cl.Do(cfg)

		var fe *Error
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, request.CodeAborted, fe.Code)
		assert.True(t, fe.Canceled())
		assert.Nil(t, e.Response)
		assert.Equal(t, []string{
			"BeforeExecutionStart",
			"BeforeAttempt",
			"AfterAttempt",
			"AfterCancel",
			"AfterExecutionEnd",
		}, tr.calls)
		mockRetryPolicy.AssertNotCalled(t, "Decide", mock.Anything)
	})
	t.Run("during retry wait", func(t *testing.T) {
		mockBackend := newMockBackend(t)
		mockRetryPolicy := newMockRetryPolicy(t)
		cl := &Client{
			Backend:     mockBackend,
			Defaults:    request.NewDefaults(),
			RetryPolicy: mockRetryPolicy,
			Handlers:    &HandlerGroup{},
			Clock:       clock.NewMock(),
		}
		tr := cl.addTraceHandlers()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		cfg := request.NewConfigWithContext(ctx, "GET", "https://example.com/")
		cl.Handlers.PushBack(BeforeRetryWait, HandlerFunc(func(_ Event, _ *request.Execution) {
			cancel()
		}))
		mockBackend.On("Execute", ctx, mock.Anything, cfg).
			Return(nil, request.NewNetworkError(nil, syscall.ECONNRESET)).Once()
		mockRetryPolicy.On("Decide", mock.Anything).Return(true).Once()
		mockRetryPolicy.On("Wait", mock.Anything).Return(time.Hour).Once()

		e, err := cl.Do(cfg)

		var fe *Error
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, request.CodeAborted, fe.Code)
		assert.ErrorIs(t, fe, context.Canceled)
		assert.Same(t, fe, e.Err)
		assert.Nil(t, e.Response)
		assert.Equal(t, 0, e.Attempt)
		assert.Equal(t, []string{
			"BeforeExecutionStart",
			"BeforeAttempt",
			"AfterAttempt",
			"BeforeRetryWait",
			"AfterCancel",
			"AfterExecutionEnd",
		}, tr.calls)
		mockBackend.AssertExpectations(t)
		mockRetryPolicy.AssertExpectations(t)
	})
}

func testClientLimiter(t *testing.T) {
	t.Run("allows", func(t *testing.T) {
		mockBackend := newMockBackend(t)
		cl := &Client{Backend: mockBackend, Defaults: request.NewDefaults(), Limiter: rate.NewLimiter(rate.Inf, 1)}
		cfg := request.NewConfig("GET", "https://example.com/")
		mockBackend.On("Execute", mock.Anything, mock.Anything, cfg).Return(&request.Response{Status: 200}, nil).Once()
		_, err := cl.Do(cfg)
		assert.NoError(t, err)
		mockBackend.AssertExpectations(t)
	})
	t.Run("refuses", func(t *testing.T) {
		mockBackend := newMockBackend(t)
		cl := &Client{Backend: mockBackend, Defaults: request.NewDefaults(), Limiter: rate.NewLimiter(1, 0)}
		cfg := request.NewConfig("GET", "https://example.com/")
		_, err := cl.Do(cfg)
		var fe *Error
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, request.CodeAborted, fe.Code)
		assert.NotNil(t, fe.Request)
		mockBackend.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
	})
}

func testClientDefaults(t *testing.T) {
	mockBackend := newMockBackend(t)
	mockRetryPolicy := newMockRetryPolicy(t)
	defaults := request.NewDefaults()
	defaults.Update(func(v *request.DefaultValues) {
		v.BaseURL = "https://api.example.com/v1"
		v.Header.Set("X-Version", "1")
	})
	cl := &Client{Backend: mockBackend, Defaults: defaults, RetryPolicy: mockRetryPolicy}
	cfg := request.NewConfig("GET", "/users")

	mockBackend.On("Execute", mock.Anything, mock.MatchedBy(func(fin *request.Finalized) bool {
		return fin.Header.Get("X-Version") == "1"
	}), cfg).
		Run(func(mock.Arguments) {
			defaults.Update(func(v *request.DefaultValues) {
				v.Header.Set("X-Version", "2")
			})
		}).
		Return(nil, request.NewNetworkError(nil, syscall.ECONNRESET)).Once()
	mockBackend.On("Execute", mock.Anything, mock.MatchedBy(func(fin *request.Finalized) bool {
		return fin.Header.Get("X-Version") == "2" && fin.URL == "https://api.example.com/v1/users"
	}), cfg).Return(&request.Response{Status: 200}, nil).Once()
	mockRetryPolicy.On("Decide", mock.Anything).Return(true).Once()
	mockRetryPolicy.On("Wait", mock.Anything).Return(time.Duration(0)).Once()

	_, err := cl.Do(cfg)

	require.NoError(t, err)
	assert.Empty(t, cfg.Header, "config must not be modified")
	mockBackend.AssertExpectations(t)
}

func testClientBeforeAttempt(t *testing.T) {
	mockBackend := newMockBackend(t)
	cl := &Client{Backend: mockBackend, Defaults: request.NewDefaults(), Handlers: &HandlerGroup{}}
	cl.Handlers.mock(BeforeAttempt).On("Handle", BeforeAttempt, mock.AnythingOfType("*request.Execution")).
		Run(func(args mock.Arguments) {
			e := args.Get(1).(*request.Execution)
			e.Request.Header.Set("X-Request-Id", "abc")
		}).
		Once()
	cfg := request.NewConfig("DELETE", "https://example.com/widgets/1")
	mockBackend.On("Execute", mock.Anything, mock.MatchedBy(func(fin *request.Finalized) bool {
		return fin.Header.Get("X-Request-Id") == "abc"
	}), cfg).Return(&request.Response{Status: 204}, nil).Once()

	_, err := cl.Do(cfg)

	require.NoError(t, err)
	mockBackend.AssertExpectations(t)
	cl.Handlers.assertExpectations(t)
}

func testClientLogger(t *testing.T) {
	var buf syncBuffer
	mockBackend := newMockBackend(t)
	cl := &Client{
		Backend:  mockBackend,
		Defaults: request.NewDefaults(),
		Logger:   logger.NewWithWriter(&buf, "debug"),
	}
	cfg := request.NewConfig("GET", "https://example.com/")
	cfg.Retry = 1
	cfg.RetryDelay = time.Millisecond
	mockBackend.On("Execute", mock.Anything, mock.Anything, cfg).
		Return(nil, request.NewNetworkError(nil, syscall.ECONNRESET)).Once()
	mockBackend.On("Execute", mock.Anything, mock.Anything, cfg).
		Return(&request.Response{Status: 200}, nil).Once()

	_, err := cl.Do(cfg)

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "fetchx: starting attempt")
	assert.Contains(t, out, "fetchx: retrying failed attempt")
	assert.Contains(t, out, "fetchx: execution complete")
	assert.Contains(t, out, `"backend":"mock"`)
}

func testClientHelpers(t *testing.T) {
	methods := []struct {
		method string
		call   func(cl *Client) (*Response, error)
	}{
		{"GET", func(cl *Client) (*Response, error) { return cl.Get("https://example.com/x") }},
		{"POST", func(cl *Client) (*Response, error) { return cl.Post("https://example.com/x", map[string]int{"a": 1}) }},
		{"PUT", func(cl *Client) (*Response, error) { return cl.Put("https://example.com/x", "text") }},
		{"PATCH", func(cl *Client) (*Response, error) { return cl.Patch("https://example.com/x", []byte("raw")) }},
		{"DELETE", func(cl *Client) (*Response, error) { return cl.Delete("https://example.com/x") }},
		{"OPTIONS", func(cl *Client) (*Response, error) {
			return cl.Request("https://example.com/x", request.NewConfig("OPTIONS", ""))
		}},
	}
	for _, tc := range methods {
		t.Run(tc.method, func(t *testing.T) {
			mockBackend := newMockBackend(t)
			cl := &Client{Backend: mockBackend, Defaults: request.NewDefaults()}
			expected := &request.Response{Status: 200}
			mockBackend.On("Execute", mock.Anything, mock.MatchedBy(func(fin *request.Finalized) bool {
				return fin.Method == tc.method && fin.URL == "https://example.com/x"
			}), mock.Anything).Return(expected, nil).Once()
			resp, err := tc.call(cl)
			require.NoError(t, err)
			assert.Same(t, expected, resp)
			mockBackend.AssertExpectations(t)
		})
	}
	t.Run("error", func(t *testing.T) {
		mockBackend := newMockBackend(t)
		cl := &Client{Backend: mockBackend, Defaults: request.NewDefaults()}
		mockBackend.On("Execute", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, request.NewStatusError(nil, &request.Response{Status: 404})).Once()
		resp, err := cl.Get("https://example.com/missing")
		assert.Nil(t, resp)
		var fe *Error
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, http.StatusNotFound, fe.Status())
	})
}

func testClientCloseIdleConnections(t *testing.T) {
	t.Run("Backend does not implement IdleCloser", func(t *testing.T) {
		mockBackend := newMockBackend(t)
		cl := &Client{Backend: mockBackend}
		cl.CloseIdleConnections()
		mockBackend.AssertNotCalled(t, "CloseIdleConnections")
	})
	t.Run("Backend implements IdleCloser", func(t *testing.T) {
		mockBackend := newMockBackendWithCloseIdleConnections(t)
		mockBackend.On("CloseIdleConnections").Once()
		cl := &Client{Backend: mockBackend}
		cl.CloseIdleConnections()
		mockBackend.AssertExpectations(t)
	})
}

func TestDefaultBackend(t *testing.T) {
	b := DefaultBackend()
	require.NotNil(t, b)
	if browserPlatform {
		assert.Equal(t, "browser", b.Name())
	} else {
		assert.Equal(t, "server", b.Name())
	}
	var cl Client
	assert.Same(t, defaultBackend, cl.backend())
}

func TestSleep(t *testing.T) {
	t.Run("zero", func(t *testing.T) {
		assert.True(t, sleep(context.Background(), clock.New(), 0))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.False(t, sleep(ctx, clock.New(), 0))
	})
	t.Run("elapsed", func(t *testing.T) {
		mockClock := clock.NewMock()
		done := make(chan struct{})
		var ok bool
		go func() {
			defer close(done)
			ok = sleep(context.Background(), mockClock, time.Minute)
		}()
		advance(mockClock, time.Minute, done)
		assert.True(t, ok)
	})
	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.False(t, sleep(ctx, clock.NewMock(), time.Minute))
	})
}

// advance moves the mock clock forward in steps of d until done is
// closed.
func advance(mockClock *clock.Mock, d time.Duration, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		default:
			mockClock.Add(d)
		}
	}
}

type mockBackend struct {
	mock.Mock
}

func newMockBackend(t *testing.T) *mockBackend {
	m := &mockBackend{}
	m.Test(t)
	return m
}

func (m *mockBackend) Name() string {
	return "mock"
}

func (m *mockBackend) Execute(ctx context.Context, fin *request.Finalized, cfg *request.Config) (*request.Response, error) {
	args := m.Called(ctx, fin, cfg)
	err := args.Error(1)
	if resp, ok := args.Get(0).(*request.Response); ok {
		return resp, err
	}
	var fe *request.Error
	if errors.As(err, &fe) && fe.Request == nil {
		fe.Request = fin
	}
	return nil, err
}

var _ transport.Backend = (*mockBackend)(nil)

type mockBackendWithCloseIdleConnections struct {
	mockBackend
}

func newMockBackendWithCloseIdleConnections(t *testing.T) *mockBackendWithCloseIdleConnections {
	m := &mockBackendWithCloseIdleConnections{}
	m.Test(t)
	return m
}

func (m *mockBackendWithCloseIdleConnections) CloseIdleConnections() {
	m.Called()
}

type mockTimeoutPolicy struct {
	mock.Mock
}

func newMockTimeoutPolicy(t *testing.T) *mockTimeoutPolicy {
	m := &mockTimeoutPolicy{}
	m.Test(t)
	return m
}

func (m *mockTimeoutPolicy) Timeout(e *request.Execution) time.Duration {
	args := m.Called(e)
	return args.Get(0).(time.Duration)
}

type mockRetryPolicy struct {
	mock.Mock
}

func newMockRetryPolicy(t *testing.T) *mockRetryPolicy {
	m := &mockRetryPolicy{}
	m.Test(t)
	return m
}

func (m *mockRetryPolicy) Decide(e *request.Execution) bool {
	args := m.Called(e)
	return args.Bool(0)
}

func (m *mockRetryPolicy) Wait(e *request.Execution) time.Duration {
	args := m.Called(e)
	return args.Get(0).(time.Duration)
}

func (g *HandlerGroup) mock(evt Event) *mockHandler {
	var m *mockHandler
	if len(g.handlers) <= int(evt) || len(g.handlers[evt]) < 1 {
		m = &mockHandler{}
		g.PushBack(evt, m)
		return m
	}

	for _, h := range g.handlers[evt] {
		if m, ok := h.(*mockHandler); ok {
			return m
		}
	}

	m = &mockHandler{}
	g.PushBack(evt, m)
	return m
}

func (g *HandlerGroup) assertExpectations(t *testing.T) {
	if g.handlers == nil {
		return
	}

	for _, evt := range Events() {
		handlers := g.handlers[evt]
		for _, h := range handlers {
			if m, ok := h.(*mockHandler); ok {
				m.AssertExpectations(t)
			}
		}
	}
}

type mockHandler struct {
	mock.Mock
}

func (m *mockHandler) Handle(evt Event, e *request.Execution) {
	m.Called(evt, e)
}

type trace struct {
	calls []string
}

func (c *Client) addTraceHandlers() *trace {
	tr := &trace{}
	f := func(evt Event, _ *request.Execution) {
		tr.calls = append(tr.calls, evt.Name())
	}
	h := HandlerFunc(f)
	for _, evt := range Events() {
		c.Handlers.PushBack(evt, h)
	}
	return tr
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
