// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package cache defines the response cache contract used by the
// request dispatch engine, and provides in-memory and Redis-backed
// implementations.
//
// The engine only ever reads and writes entries. It never evicts:
// freshness metadata on an Entry tells the engine whether a
// revalidation is needed, while actual eviction policy belongs to the
// backend.
package cache

import (
	"context"
	"net/http"
	"time"
)

// An Entry is one cached response: the payload bytes, the response
// headers, the validators used to build conditional requests, and
// freshness metadata.
type Entry struct {
	// Data is the response body.
	Data []byte `json:"data"`

	// Headers holds the response headers the entry was stored with.
	// After a revalidation they are merged with the 304 response's
	// headers, since a 304 carries only a subset.
	Headers http.Header `json:"headers"`

	// ETag is the entity tag validator, or empty if the server sent
	// none. When present it is echoed back in If-None-Match.
	ETag string `json:"etag,omitempty"`

	// ServerDate is the server's Date header as epoch milliseconds, or
	// zero if absent. When present it is echoed back in
	// If-Modified-Since.
	ServerDate int64 `json:"serverDate,omitempty"`

	// Expiry is the epoch-millisecond instant after which the entry is
	// fully expired and must not be served without a successful fetch.
	// Zero means the entry never hard-expires.
	Expiry int64 `json:"expiry,omitempty"`

	// SoftExpiry is the epoch-millisecond instant after which the
	// entry should be revalidated against the origin before reuse.
	// Zero means revalidation is always needed.
	SoftExpiry int64 `json:"softExpiry,omitempty"`
}

// Expired reports whether the entry is past its hard expiry.
func (e *Entry) Expired() bool {
	return e.Expiry != 0 && e.Expiry < time.Now().UnixMilli()
}

// RefreshNeeded reports whether the entry should be revalidated
// against the origin before its payload is reused.
func (e *Entry) RefreshNeeded() bool {
	return e.SoftExpiry == 0 || e.SoftExpiry < time.Now().UnixMilli()
}

// A Cache is a key to entry store safe for concurrent use by all
// dispatch workers. Per-key last-write-wins is the only ordering
// guarantee implementations need to provide.
type Cache interface {
	// Get retrieves the entry stored under key. It returns (nil, nil)
	// when no entry exists.
	Get(ctx context.Context, key string) (*Entry, error)

	// Put stores entry under key, replacing any previous entry.
	Put(ctx context.Context, key string, entry *Entry) error
}
