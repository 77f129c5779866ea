// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package testserver is an HTTP fixture for exercising fetchx backends
// against a real network stack.
//
// The POST /instruct route replays an Instruction sent as the request
// body, which lets a test script the status code, headers, and the
// pacing of the header and body bytes. The other routes cover echoing
// the request, uploads, downloads, content encoding and flaky
// endpoints.
package testserver

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/labstack/echo/v4"

	"github.com/gogama/fetchx/internal/json"
)

// A Chunk is a piece of response body written after Pause. The pause
// is spread evenly over the bytes of the chunk.
type Chunk struct {
	Pause time.Duration
	Data  []byte
}

// An Instruction scripts the response to POST /instruct.
type Instruction struct {
	HeaderPause     time.Duration
	StatusCode      int
	Header          map[string]string `json:",omitempty"`
	Body            []Chunk           `json:",omitempty"`
	NoContentLength bool              `json:",omitempty"`
}

// JSON returns the serialized instruction.
func (i *Instruction) JSON() []byte {
	b, err := json.Marshal(i)
	if err != nil {
		panic(err)
	}
	return b
}

// Echoed is the body returned by the /echo route.
type Echoed struct {
	Method        string              `json:"method"`
	Path          string              `json:"path"`
	RawQuery      string              `json:"rawQuery"`
	Query         map[string][]string `json:"query"`
	Header        map[string][]string `json:"header"`
	Body          string              `json:"body"`
	ContentLength int64               `json:"contentLength"`
}

// A Server is a running fixture.
type Server struct {
	*httptest.Server
	Echo *echo.Echo

	mu    sync.Mutex
	flaky map[string]int
}

// New starts a plain HTTP/1.1 fixture. Keep-alives are off so that a
// dropped connection on /flaky is never replayed by the client on a
// reused connection.
func New() *Server {
	s := newServer()
	s.Server.Config.SetKeepAlivesEnabled(false)
	s.Server.Start()
	return s
}

// NewTLS starts an HTTPS fixture, optionally with HTTP/2 enabled. Use
// the embedded Client method to get a client trusting it.
func NewTLS(http2 bool) *Server {
	s := newServer()
	s.Server.EnableHTTP2 = http2
	s.Server.StartTLS()
	return s
}

func newServer() *Server {
	s := &Server{
		Echo:  echo.New(),
		flaky: make(map[string]int),
	}
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.routes()
	s.Server = httptest.NewUnstartedServer(s.Echo)
	return s
}

func (s *Server) routes() {
	s.Echo.POST("/instruct", s.instruct)
	s.Echo.Any("/echo", s.echo)
	s.Echo.Any("/echo/*", s.echo)
	s.Echo.Any("/status/:code", s.status)
	s.Echo.GET("/flaky/:key", s.flakyHandler)
	s.Echo.GET("/slow", s.slow)
	s.Echo.GET("/gzip", s.gzip)
	s.Echo.GET("/download", s.download)
	s.Echo.POST("/upload", s.upload)

	g := s.Echo.Group("/test")
	g.GET("/get", s.testGet)
	g.POST("/post", s.testPost)
	g.GET("/timeout", s.testTimeout)
	g.GET("/flaky/:key", s.flakyHandler)
	g.Any("/status/:code", s.status)
	g.GET("/download", s.download)
	g.GET("/binary", s.binary)
	g.GET("/file", s.file)
	g.POST("/upload", s.upload)
	g.GET("/slow-body", s.slowBody)
}

func (s *Server) testGet(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "GET request successful",
	})
}

func (s *Server) testPost(c echo.Context) error {
	var received any
	if err := json.NewDecoder(c.Request().Body).Decode(&received); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"received": received,
	})
}

// testTimeout never answers within any reasonable attempt timeout.
func (s *Server) testTimeout(c echo.Context) error {
	if !sleep(c, 5*time.Second) {
		return nil
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (s *Server) binary(c echo.Context) error {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	return c.Blob(http.StatusOK, "application/octet-stream", data)
}

func (s *Server) file(c echo.Context) error {
	c.Response().Header().Set("Content-Disposition", `attachment; filename*=UTF-8''r%C3%A9sum%C3%A9.txt`)
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte("file contents"))
}

// slowBody sends the headers at once and then one byte of a 10 byte
// body every "interval" (default 50ms).
func (s *Server) slowBody(c echo.Context) error {
	interval, err := time.ParseDuration(c.QueryParam("interval"))
	if err != nil {
		interval = 50 * time.Millisecond
	}
	w := c.Response()
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Content-Length", "10")
	w.WriteHeader(http.StatusOK)
	w.Flush()
	for i := 0; i < 10; i++ {
		if !sleep(c, interval) {
			return nil
		}
		if _, err := w.Write([]byte{'0' + byte(i)}); err != nil {
			return nil
		}
		w.Flush()
	}
	return nil
}

// Hits returns how many times the flaky endpoint with the given key
// has been called.
func (s *Server) Hits(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flaky[key]
}

func (s *Server) instruct(c echo.Context) error {
	var i Instruction
	if err := json.NewDecoder(c.Request().Body).Decode(&i); err != nil {
		return c.String(http.StatusBadRequest, "failed to read request: "+err.Error())
	}
	if i.StatusCode == 0 {
		return c.String(http.StatusBadRequest, fmt.Sprintf("bad StatusCode in instruction: %v", i))
	}
	w := c.Response()
	contentLength := 0
	for _, chunk := range i.Body {
		contentLength += len(chunk.Data)
	}
	for k, v := range i.Header {
		w.Header().Set(k, v)
	}
	if !i.NoContentLength {
		w.Header().Set("Content-Length", strconv.Itoa(contentLength))
	}
	if !sleep(c, i.HeaderPause) {
		return nil
	}
	w.WriteHeader(i.StatusCode)
	w.Flush()
	for _, chunk := range i.Body {
		pause := chunk.Pause
		var ppb time.Duration
		if len(chunk.Data) > 0 {
			ppb = chunk.Pause / time.Duration(len(chunk.Data))
		}
		for j := range chunk.Data {
			if _, err := w.Write(chunk.Data[j : j+1]); err != nil {
				return nil
			}
			w.Flush()
			if !sleep(c, ppb) {
				return nil
			}
			pause -= ppb
		}
		if pause > 0 && !sleep(c, pause) {
			return nil
		}
	}
	return nil
}

func (s *Server) echo(c echo.Context) error {
	req := c.Request()
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, Echoed{
		Method:        req.Method,
		Path:          req.URL.Path,
		RawQuery:      req.URL.RawQuery,
		Query:         req.URL.Query(),
		Header:        req.Header,
		Body:          string(body),
		ContentLength: req.ContentLength,
	})
}

func (s *Server) status(c echo.Context) error {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil || code < 200 || code > 599 {
		return c.String(http.StatusBadRequest, "bad status code")
	}
	if c.QueryParam("json") != "" {
		return c.JSONBlob(code, []byte(c.QueryParam("json")))
	}
	return c.String(code, "status "+strconv.Itoa(code))
}

// flakyHandler fails the first n calls per key, where n is the "fail"
// query parameter. The "mode" parameter selects the failure: "hangup"
// (the default) drops the connection, anything else is used as a
// status code.
func (s *Server) flakyHandler(c echo.Context) error {
	key := c.Param("key")
	fail, _ := strconv.Atoi(c.QueryParam("fail"))
	s.mu.Lock()
	s.flaky[key]++
	n := s.flaky[key]
	s.mu.Unlock()
	if n <= fail {
		mode := c.QueryParam("mode")
		if mode == "" || mode == "hangup" {
			conn, _, err := c.Response().Hijack()
			if err != nil {
				return err
			}
			return conn.Close()
		}
		code, err := strconv.Atoi(mode)
		if err != nil {
			return c.String(http.StatusBadRequest, "bad mode")
		}
		return c.String(code, "flaky")
	}
	return c.JSON(http.StatusOK, map[string]int{"attempt": n})
}

func (s *Server) slow(c echo.Context) error {
	d, err := time.ParseDuration(c.QueryParam("delay"))
	if err != nil {
		return c.String(http.StatusBadRequest, "bad delay")
	}
	if !sleep(c, d) {
		return nil
	}
	return c.String(http.StatusOK, "slow")
}

func (s *Server) gzip(c echo.Context) error {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write([]byte(`{"compressed":true}`))
	_ = zw.Close()
	c.Response().Header().Set("Content-Encoding", "gzip")
	return c.Blob(http.StatusOK, "application/json", buf.Bytes())
}

func (s *Server) download(c echo.Context) error {
	size, err := strconv.Atoi(c.QueryParam("size"))
	if err != nil || size < 0 {
		return c.String(http.StatusBadRequest, "bad size")
	}
	data := bytes.Repeat([]byte{'x'}, size)
	w := c.Response()
	if name := c.QueryParam("name"); name != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	}
	if c.QueryParam("chunked") != "" {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		for len(data) > 0 {
			n := min(len(data), 1024)
			_, _ = w.Write(data[:n])
			w.Flush()
			data = data[n:]
		}
		return nil
	}
	return c.Blob(http.StatusOK, "application/octet-stream", data)
}

// UploadedFile describes a file part received by /upload.
type UploadedFile struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Uploaded is the body returned by the /upload route.
type Uploaded struct {
	Fields map[string][]string       `json:"fields"`
	Files  map[string][]UploadedFile `json:"files"`
}

func (s *Server) upload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	out := Uploaded{
		Fields: form.Value,
		Files:  make(map[string][]UploadedFile),
	}
	for field, headers := range form.File {
		for _, fh := range headers {
			out.Files[field] = append(out.Files[field], UploadedFile{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
			})
		}
	}
	return c.JSON(http.StatusOK, out)
}

func sleep(c echo.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-c.Request().Context().Done():
		return false
	}
}
