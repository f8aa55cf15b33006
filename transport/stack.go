// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transport defines the wire boundary of the dispatch engine:
// a Stack executes exactly one HTTP request attempt and returns the
// raw response, leaving classification, caching, and retries to the
// request executor.
package transport

import (
	"context"
	"net/http"

	"github.com/gogama/fetchq/request"
)

// An HTTPDoer implements a Do method in the same manner as the Go
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response. It must
	// follow the contract documented on http.Client.
	Do(r *http.Request) (*http.Response, error)
}

// A Stack executes one request attempt against the wire.
//
// A Stack is lower-level than the request executor: it opens the
// connection, sends the merged headers and body, and returns whatever
// status, headers, and body stream the server produced, without
// interpreting them. A failure to obtain even a status code is
// returned as an error, not a response.
//
// Implementations must not follow redirects; the executor resolves
// 301/302 itself so it can rewrite the request's URL.
//
// Implementations must be safe for concurrent use by all dispatch
// workers.
type Stack interface {
	// Execute sends one attempt of r, with extra merged over the
	// request's own headers (extra wins on conflict). The per-attempt
	// deadline arrives via ctx. The caller owns the response body and
	// must close it.
	Execute(ctx context.Context, r *request.Request, extra http.Header) (*http.Response, error)
}

// A URLRewriter transforms request URLs before use, for example to
// route through a proxy front end. Returning an error rejects the URL
// and fails the request.
type URLRewriter func(url string) (string, error)

// FirstValueHeaders flattens h to at most one value per header name,
// keeping the first value of each. The dispatch engine exposes
// response headers in this flattened form.
func FirstValueHeaders(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for name, values := range h {
		if len(values) > 0 {
			out[name] = values[:1]
		}
	}
	return out
}
