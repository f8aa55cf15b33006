// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/http2"

	"github.com/gogama/fetchq/request"
)

// HTTPStack is a Stack built on the standard net/http client, with
// HTTP/2 enabled on the underlying transport. Its zero value is usable
// and shares a package-default client; use NewHTTPStack to give a
// stack its own connection pool.
type HTTPStack struct {
	// Client sends the individual attempts. If nil, a package-default
	// HTTP/2-capable client is used. A custom Client must not follow
	// redirects (set CheckRedirect to return
	// http.ErrUseLastResponse).
	Client HTTPDoer

	// Rewriter, when non-nil, transforms every URL before use.
	Rewriter URLRewriter

	// UserAgent is sent as the User-Agent header when the request does
	// not set its own.
	UserAgent string
}

// NewHTTPStack constructs an HTTPStack with its own connection pool.
func NewHTTPStack() *HTTPStack {
	return &HTTPStack{Client: newClient()}
}

var (
	sharedOnce   sync.Once
	sharedClient *http.Client
)

func newClient() *http.Client {
	t := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	// Error is only possible on a transport that was already
	// configured, which a fresh one never is.
	_ = http2.ConfigureTransport(t)
	return &http.Client{
		Transport: t,
		// Redirects must surface to the executor unfollowed so it can
		// rewrite the request URL itself.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (s *HTTPStack) client() HTTPDoer {
	if s.Client != nil {
		return s.Client
	}
	sharedOnce.Do(func() {
		sharedClient = newClient()
	})
	return sharedClient
}

// Execute implements Stack.
func (s *HTTPStack) Execute(ctx context.Context, r *request.Request, extra http.Header) (*http.Response, error) {
	target := r.URL
	if s.Rewriter != nil {
		rewritten, err := s.Rewriter(target)
		if err != nil {
			return nil, err
		}
		target = rewritten
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}

	for name, values := range r.Header {
		req.Header[name] = append([]string(nil), values...)
	}
	if len(r.Body) > 0 && r.ContentType != "" {
		req.Header.Set("Content-Type", r.ContentType)
	}
	if s.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	// Conditional headers win over anything the caller set.
	for name := range extra {
		req.Header.Set(name, extra.Get(name))
	}

	return s.client().Do(req)
}
