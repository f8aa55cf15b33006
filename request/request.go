// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/http"
	"sync/atomic"

	"github.com/gogama/fetchq/cache"
	"github.com/gogama/fetchq/retry"
)

// A ProgressFunc receives download progress for one request attempt.
// Total is the expected byte count, or -1 when the response carries no
// Content-Length.
type ProgressFunc func(total, downloaded int64)

// A Request is one caller-owned unit of work for the dispatch engine.
//
// Configure the exported fields before enqueuing. After the request is
// enqueued it belongs to the engine: exactly one worker at a time
// touches it, and the caller may only call Cancel and the read-only
// observers. A request may be enqueued at most once and is discarded
// after its terminal delivery.
type Request struct {
	// Method is the HTTP method. An empty string means GET.
	Method string

	// URL is the target URL. The executing worker rewrites it when the
	// server responds with a 301 or 302 redirect.
	URL string

	// Header contains extra request headers. Conditional headers
	// derived from the cache entry are merged in by the executor and
	// take precedence on conflict.
	Header http.Header

	// Body is the request body, or nil for none.
	Body []byte

	// ContentType is the media type of Body.
	ContentType string

	// Tag is an opaque grouping label. Engine.CancelAll cancels every
	// live request carrying a given tag.
	Tag string

	// CacheKey overrides the cache key for this request. When empty,
	// Key derives one from the method and URL.
	CacheKey string

	// ShouldCache opts the response into the cache-write step.
	ShouldCache bool

	// Policy is the retry policy driving this request's attempt loop.
	// Each request needs its own instance; when nil the engine
	// attaches retry.DefaultBackoff() at enqueue time.
	Policy retry.Policy

	// CacheEntry is the currently cached entry for Key, attached at
	// enqueue time. Its validators feed the conditional headers, and
	// on a 304 its payload becomes the delivered body.
	CacheEntry *cache.Entry

	// Prepare, when non-nil, runs before every attempt. Use it to
	// reset per-attempt mutable header state such as authorization.
	Prepare func(r *Request)

	// Consume, when non-nil, replaces the default body consumption for
	// a raw response. It must read the body to completion and return
	// the final payload bytes; the executor closes the body.
	Consume func(resp *http.Response, progress ProgressFunc) ([]byte, error)

	// Parse, when non-nil, consumes the delivered NetworkResponse on
	// the worker and may produce the cache entry to store. When nil,
	// cache.EntryFromResponse derives the entry for requests that
	// opted into caching.
	Parse func(resp *NetworkResponse) (*cache.Entry, error)

	// TranslateError, when non-nil, maps an error about to be
	// delivered into a request-specific one.
	TranslateError func(err error) error

	// ID correlates log lines for this request. The engine assigns one
	// at enqueue time if the caller left it empty.
	ID string

	origin    string
	seq       int64
	canceled  atomic.Bool
	delivered atomic.Bool
	finished  atomic.Bool
	markers   markerLog
}

// New constructs a Request with an initialized header map. The zero
// value is also usable; New just saves the make(http.Header).
func New(method, url string) *Request {
	return &Request{
		Method: method,
		URL:    url,
		Header: make(http.Header),
	}
}

// Key returns the cache key: CacheKey when set, otherwise the method
// and current URL.
func (r *Request) Key() string {
	if r.CacheKey != "" {
		return r.CacheKey
	}
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	return method + ":" + r.URL
}

// Cancel marks the request cancelled. Cancellation is cooperative: a
// request not yet dequeued is discarded without touching the network,
// and one already in flight has its result discarded when the
// transport call returns. Cancel never interrupts an in-flight call.
func (r *Request) Cancel() {
	r.canceled.Store(true)
}

// Canceled reports whether Cancel has been called.
func (r *Request) Canceled() bool {
	return r.canceled.Load()
}

// MarkDelivered records that a terminal response delivery is about to
// fire. It is set before the delivery callback so that a 304 racing a
// prior delivery can never produce a second one.
func (r *Request) MarkDelivered() {
	r.delivered.Store(true)
}

// ResponseDelivered reports whether a response was already delivered
// for this request.
func (r *Request) ResponseDelivered() bool {
	return r.delivered.Load()
}

// MarkFinished transitions the request into its finished state and
// reports whether this call performed the transition. The dispatcher
// uses it to guarantee the finish callback fires exactly once.
func (r *Request) MarkFinished() bool {
	return r.finished.CompareAndSwap(false, true)
}

// SetRedirectURL rewrites the target URL after a redirect, remembering
// the original URL the caller configured.
func (r *Request) SetRedirectURL(url string) {
	if r.origin == "" {
		r.origin = r.URL
	}
	r.URL = url
}

// OriginURL returns the URL the request was enqueued with, before any
// redirect rewriting.
func (r *Request) OriginURL() string {
	if r.origin != "" {
		return r.origin
	}
	return r.URL
}

// SetSequence assigns the engine's monotonic sequence number.
func (r *Request) SetSequence(seq int64) {
	r.seq = seq
}

// Sequence returns the sequence number assigned at enqueue time.
func (r *Request) Sequence() int64 {
	return r.seq
}

// AddMarker appends a named timing marker to the request's lifecycle
// log.
func (r *Request) AddMarker(name string) {
	r.markers.add(name)
}

// Markers returns a snapshot of the timing markers recorded so far, in
// order.
func (r *Request) Markers() []Marker {
	return r.markers.snapshot()
}
