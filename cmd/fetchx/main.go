// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command fetchx issues HTTP requests with the fetchx client.
//
// Usage:
//
//	fetchx [flags] URL...
//
// Every URL is fetched with the same method, headers and body. With
// --parallel N, up to N requests run at once; responses are printed in
// argument order. Settings not given as flags come from the optional
// --config YAML file and FETCHX_ environment variables, which may be
// kept in a .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/gogama/fetchx"
	"github.com/gogama/fetchx/codec"
	"github.com/gogama/fetchx/config"
	"github.com/gogama/fetchx/internal/json"
	"github.com/gogama/fetchx/observability"
	"github.com/gogama/fetchx/progress"
	"github.com/gogama/fetchx/request"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	method       string
	headers      []string
	params       []string
	data         string
	json         bool
	form         []string
	timeout      time.Duration
	retry        int
	retryDelay   time.Duration
	responseType string
	include      bool
	showProgress bool
	requestID    bool
	parallel     int
	output       string
	configPath   string
	envFile      string
}

func parse(args []string, stderr io.Writer) (*options, []string, error) {
	var o options
	fs := flag.NewFlagSet("fetchx", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&o.method, "request", "X", "", "HTTP method (default GET, or POST with a body)")
	fs.StringArrayVarP(&o.headers, "header", "H", nil, `request header "Name: value" (repeatable)`)
	fs.StringArrayVarP(&o.params, "query", "q", nil, "query parameter key=value (repeatable)")
	fs.StringVarP(&o.data, "data", "d", "", "request body, or @file to read it from a file")
	fs.BoolVar(&o.json, "json", false, "send --data as JSON")
	fs.StringArrayVarP(&o.form, "form", "F", nil, "multipart field name=value or name=@file (repeatable)")
	fs.DurationVar(&o.timeout, "timeout", 0, "per-attempt timeout")
	fs.IntVar(&o.retry, "retry", 0, "retries of network failures and timeouts")
	fs.DurationVar(&o.retryDelay, "retry-delay", 0, "wait between attempts")
	fs.StringVar(&o.responseType, "response-type", string(codec.ResponseText), "json, text, blob, arraybuffer, or document")
	fs.BoolVarP(&o.include, "include", "i", false, "print the status line and response headers")
	fs.BoolVar(&o.showProgress, "progress", false, "report transfer progress on stderr")
	fs.BoolVar(&o.requestID, "request-id", false, "send an X-Request-ID header")
	fs.IntVarP(&o.parallel, "parallel", "P", 1, "maximum concurrent requests")
	fs.StringVarP(&o.output, "output", "o", "", "write the response body to a file")
	fs.StringVar(&o.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&o.envFile, "env-file", ".env", "environment file to load if present")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	urls := fs.Args()
	if len(urls) == 0 {
		return nil, nil, errors.New("at least one URL is required")
	}
	if o.parallel < 1 {
		return nil, nil, errors.New("--parallel must be at least 1")
	}
	if o.output != "" && len(urls) > 1 {
		return nil, nil, errors.New("--output accepts a single URL")
	}
	if o.data != "" && len(o.form) > 0 {
		return nil, nil, errors.New("--data and --form are exclusive")
	}
	if !codec.ResponseType(o.responseType).Valid() || o.responseType == string(codec.ResponseStream) {
		return nil, nil, fmt.Errorf("invalid --response-type %q", o.responseType)
	}
	return &o, urls, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, urls, err := parse(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	} else if err != nil {
		fmt.Fprintln(stderr, "fetchx:", err)
		return exitUsage
	}

	if o.envFile != "" {
		if err = godotenv.Load(o.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(stderr, "fetchx: failed to load env file:", err)
		}
	}

	var loadOpts []config.Option
	if o.configPath != "" {
		loadOpts = append(loadOpts, config.WithFile(o.configPath))
	}
	settings, err := config.Load(loadOpts...)
	if err != nil {
		fmt.Fprintln(stderr, "fetchx:", err)
		return exitUsage
	}

	cl := fetchx.NewClient(settings)
	cl.Logger = settings.Log.Logger(stderr)
	if o.requestID {
		cl.Handlers = &fetchx.HandlerGroup{}
		observability.RequestID{}.Install(cl.Handlers)
	}

	body, err := o.body()
	if err != nil {
		fmt.Fprintln(stderr, "fetchx:", err)
		return exitUsage
	}

	results := make([]*fetchx.Response, len(urls))
	failures := make([]error, len(urls))
	var g errgroup.Group
	g.SetLimit(o.parallel)
	for i, u := range urls {
		cfg, err := o.config(ctx, u, body, stderr)
		if err != nil {
			fmt.Fprintln(stderr, "fetchx:", err)
			return exitUsage
		}
		g.Go(func() error {
			results[i], failures[i] = fetchx.Request(cl, u, cfg)
			return nil
		})
	}
	_ = g.Wait()

	code := exitOK
	for i, u := range urls {
		if failures[i] != nil {
			code = exitFailure
			report(stderr, u, failures[i])
			continue
		}
		if err = o.print(stdout, results[i]); err != nil {
			fmt.Fprintln(stderr, "fetchx:", err)
			code = exitFailure
		}
	}
	return code
}

func (o *options) body() (codec.Body, error) {
	if len(o.form) > 0 {
		form := &codec.Form{}
		for _, field := range o.form {
			name, value, ok := strings.Cut(field, "=")
			if !ok || name == "" {
				return codec.None, fmt.Errorf("invalid --form %q", field)
			}
			if path, isFile := strings.CutPrefix(value, "@"); isFile {
				form.AddFile(codec.FilePath(name, path))
			} else {
				form.Add(name, value)
			}
		}
		return codec.Multipart(form), nil
	}
	if o.data == "" {
		return codec.None, nil
	}
	data := []byte(o.data)
	if path, isFile := strings.CutPrefix(o.data, "@"); isFile {
		b, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return codec.None, err
		}
		data = b
	}
	if o.json {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return codec.None, fmt.Errorf("--data is not JSON: %w", err)
		}
		return codec.JSON(v), nil
	}
	return codec.Bytes(data), nil
}

func (o *options) config(ctx context.Context, u string, body codec.Body, stderr io.Writer) (*request.Config, error) {
	method := o.method
	if method == "" {
		method = "GET"
		if !body.IsNone() {
			method = "POST"
		}
	}
	cfg := request.NewConfigWithContext(ctx, method, u)
	cfg.Body = body
	cfg.Timeout = o.timeout
	cfg.Retry = o.retry
	cfg.RetryDelay = o.retryDelay
	cfg.ResponseType = codec.ResponseType(o.responseType)
	for _, h := range o.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --header %q", h)
		}
		cfg.Header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	if len(o.params) > 0 {
		cfg.Params = request.Params{}
		for _, p := range o.params {
			key, value, _ := strings.Cut(p, "=")
			if prev, ok := cfg.Params[key]; ok {
				switch x := prev.(type) {
				case []string:
					cfg.Params[key] = append(x, value)
				case string:
					cfg.Params[key] = []string{x, value}
				}
				continue
			}
			cfg.Params[key] = value
		}
	}
	if o.showProgress {
		fn := func(evt progress.Event) {
			if evt.LengthComputable() {
				fmt.Fprintf(stderr, "%s %s: %d/%d bytes (%.0f%%)\n", u, evt.Direction, evt.Loaded, evt.Total, evt.Percent)
			} else {
				fmt.Fprintf(stderr, "%s %s: %d bytes\n", u, evt.Direction, evt.Loaded)
			}
		}
		cfg.OnUploadProgress = fn
		cfg.OnDownloadProgress = fn
	}
	return cfg, nil
}

func (o *options) print(w io.Writer, resp *fetchx.Response) error {
	if o.include {
		fmt.Fprintf(w, "%d %s\n", resp.Status, resp.StatusText)
		if err := resp.Header.Write(w); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	if o.output != "" {
		return os.WriteFile(o.output, resp.Body, 0o644)
	}
	_, err := w.Write(resp.Body)
	return err
}

func report(w io.Writer, u string, err error) {
	var fe *fetchx.Error
	if !errors.As(err, &fe) {
		fmt.Fprintf(w, "fetchx: %s: %v\n", u, err)
		return
	}
	switch {
	case fe.Code == request.CodeStatus && fe.Response != nil:
		fmt.Fprintf(w, "fetchx: %s: %s (status %d)\n", u, fe.Message, fe.Response.Status)
	case fe.Err != nil:
		fmt.Fprintf(w, "fetchx: %s: %s [%s]: %v\n", u, fe.Message, fe.Code, fe.Err)
	default:
		fmt.Fprintf(w, "fetchx: %s: %s [%s]\n", u, fe.Message, fe.Code)
	}
}
