// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/http"
	"time"
)

// A NetworkResponse is an immutable snapshot of one transport outcome.
// The executor produces it, and the request's parse step and the
// cache-write decision consume it.
type NetworkResponse struct {
	// StatusCode is the HTTP status of the final attempt, or zero for
	// a request short-circuited without a network call.
	StatusCode int

	// Data is the response body. On a revalidated 304 it is the cached
	// payload.
	Data []byte

	// Headers holds the response headers, one value per name (first
	// value wins on duplicates). On a revalidated 304 they are the
	// cached entry's headers merged with the 304's.
	Headers http.Header

	// NotModified reports that the server answered 304 to a
	// conditional request.
	NotModified bool

	// NetworkTime is the wall time spent in the transport across all
	// attempts of this request.
	NetworkTime time.Duration
}
