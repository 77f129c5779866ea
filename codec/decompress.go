// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package codec

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var gzipReaderPool = sync.Pool{
	New: func() any {
		return new(gzip.Reader)
	},
}

var zstdDecoderPool = sync.Pool{
	New: func() any {
		d, _ := zstd.NewReader(nil)
		return d
	},
}

type pooledGzip struct {
	gr   *gzip.Reader
	body io.ReadCloser
}

func (p *pooledGzip) Read(b []byte) (int, error) {
	return p.gr.Read(b)
}

func (p *pooledGzip) Close() error {
	err := p.gr.Close()
	gzipReaderPool.Put(p.gr)
	if bodyErr := p.body.Close(); bodyErr != nil && err == nil {
		err = bodyErr
	}
	return err
}

type pooledZstd struct {
	d    *zstd.Decoder
	body io.ReadCloser
}

func (p *pooledZstd) Read(b []byte) (int, error) {
	return p.d.Read(b)
}

func (p *pooledZstd) Close() error {
	_ = p.d.Reset(nil)
	zstdDecoderPool.Put(p.d)
	return p.body.Close()
}

type readCloser struct {
	io.Reader
	close func() error
}

func (rc readCloser) Close() error {
	return rc.close()
}

// Decompress wraps body with decoders for each coding listed in a
// Content-Encoding header value, innermost last. Supported codings are
// gzip, deflate, br, and zstd; identity and empty entries are skipped.
// Closing the result closes body.
func Decompress(body io.ReadCloser, contentEncoding string) (io.ReadCloser, error) {
	if contentEncoding == "" {
		return body, nil
	}
	codings := strings.Split(contentEncoding, ",")
	out := body
	for i := len(codings) - 1; i >= 0; i-- {
		var err error
		out, err = decompressOne(out, strings.ToLower(strings.TrimSpace(codings[i])))
		if err != nil {
			_ = body.Close()
			return nil, err
		}
	}
	return out, nil
}

func decompressOne(body io.ReadCloser, coding string) (io.ReadCloser, error) {
	switch coding {
	case "", "identity":
		return body, nil
	case "gzip", "x-gzip":
		gr := gzipReaderPool.Get().(*gzip.Reader)
		if err := gr.Reset(body); err != nil {
			gzipReaderPool.Put(gr)
			return nil, fmt.Errorf("fetchx/codec: gzip: %w", err)
		}
		return &pooledGzip{gr: gr, body: body}, nil
	case "deflate":
		fr := flate.NewReader(body)
		return readCloser{Reader: fr, close: func() error {
			_ = fr.Close()
			return body.Close()
		}}, nil
	case "br":
		return readCloser{Reader: brotli.NewReader(body), close: body.Close}, nil
	case "zstd":
		d := zstdDecoderPool.Get().(*zstd.Decoder)
		if d == nil {
			return nil, fmt.Errorf("fetchx/codec: zstd decoder unavailable")
		}
		if err := d.Reset(body); err != nil {
			zstdDecoderPool.Put(d)
			return nil, fmt.Errorf("fetchx/codec: zstd: %w", err)
		}
		return &pooledZstd{d: d, body: body}, nil
	default:
		return nil, fmt.Errorf("fetchx/codec: unsupported content encoding %q", coding)
	}
}
