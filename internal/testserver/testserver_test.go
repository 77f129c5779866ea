// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package testserver

import (
	"bytes"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogama/fetchx/internal/json"
)

func TestServer(t *testing.T) {
	s := New()
	defer s.Close()
	cl := s.Client()

	t.Run("instruct", func(t *testing.T) {
		i := Instruction{
			StatusCode: 418,
			Header:     map[string]string{"X-Teapot": "yes"},
			Body:       []Chunk{{Data: []byte("ab")}, {Pause: time.Millisecond, Data: []byte("c")}},
		}
		resp, err := cl.Post(s.URL+"/instruct", "application/json", bytes.NewReader(i.JSON()))
		require.NoError(t, err)
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, 418, resp.StatusCode)
		assert.Equal(t, "yes", resp.Header.Get("X-Teapot"))
		assert.Equal(t, int64(3), resp.ContentLength)
		assert.Equal(t, "abc", string(b))
	})
	t.Run("echo", func(t *testing.T) {
		resp, err := cl.Post(s.URL+"/echo/x?a=1&a=2", "text/plain", bytes.NewReader([]byte("hi")))
		require.NoError(t, err)
		defer resp.Body.Close()
		var e Echoed
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
		assert.Equal(t, "POST", e.Method)
		assert.Equal(t, "/echo/x", e.Path)
		assert.Equal(t, []string{"1", "2"}, e.Query["a"])
		assert.Equal(t, "hi", e.Body)
		assert.Equal(t, int64(2), e.ContentLength)
	})
	t.Run("flaky", func(t *testing.T) {
		_, err := cl.Get(s.URL + "/flaky/k?fail=1")
		assert.Error(t, err)
		resp, err := cl.Get(s.URL + "/flaky/k?fail=1")
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 2, s.Hits("k"))
	})
	t.Run("status", func(t *testing.T) {
		resp, err := cl.Get(s.URL + "/status/503")
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, 503, resp.StatusCode)
	})
	t.Run("download", func(t *testing.T) {
		resp, err := cl.Get(s.URL + "/download?size=10&name=a.bin")
		require.NoError(t, err)
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		assert.Len(t, b, 10)
		assert.Equal(t, `attachment; filename="a.bin"`, resp.Header.Get("Content-Disposition"))
	})
}

func TestServer_TestRoutes(t *testing.T) {
	s := New()
	defer s.Close()
	cl := s.Client()

	get := func(t *testing.T, path string) (*http.Response, []byte) {
		resp, err := cl.Get(s.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, b
	}

	t.Run("get", func(t *testing.T) {
		_, b := get(t, "/test/get")
		assert.JSONEq(t, `{"success":true,"message":"GET request successful"}`, string(b))
	})
	t.Run("post", func(t *testing.T) {
		resp, err := cl.Post(s.URL+"/test/post", "application/json", bytes.NewReader([]byte(`{"name":"Test","value":123}`)))
		require.NoError(t, err)
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"success":true,"received":{"name":"Test","value":123}}`, string(b))
	})
	t.Run("binary", func(t *testing.T) {
		_, b := get(t, "/test/binary")
		assert.Len(t, b, 256)
		assert.Equal(t, byte(255), b[255])
	})
	t.Run("file", func(t *testing.T) {
		resp, b := get(t, "/test/file")
		assert.Equal(t, "file contents", string(b))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "filename*=")
	})
	t.Run("slow-body", func(t *testing.T) {
		_, b := get(t, "/test/slow-body?interval=1ms")
		assert.Equal(t, "0123456789", string(b))
	})
}
