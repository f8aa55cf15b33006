// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchq

import (
	"errors"
	"strconv"
	"time"

	"github.com/gogama/fetchq/request"
)

// A Kind identifies one member of the sealed set of failure kinds the
// dispatch engine can deliver.
type Kind int

const (
	// KindUnknown wraps any uncaught failure during execution. The
	// dispatcher classifies stray errors and panics as KindUnknown
	// rather than letting them escape a worker loop.
	KindUnknown Kind = iota
	// KindTimeout means a connect or read deadline was exceeded. It is
	// offered to the request's retry policy before becoming terminal.
	KindTimeout
	// KindNoConnection means the transport could not obtain even a
	// status code. It is terminal: there is no response to retry
	// meaningfully against, so the executor does not consult the
	// retry policy. Callers who want to retry connection failures can
	// enqueue again with their own policy state.
	KindNoConnection
	// KindAuthFailure means the server answered 401 or 403. It is
	// offered to the retry policy, which may refresh credentials via
	// the request's Prepare hook before the next attempt.
	KindAuthFailure
	// KindServerError means the server answered with a non-2xx status
	// and a response body was obtained. It is terminal and carries the
	// response for caller inspection.
	KindServerError
	// KindNetworkError means a status code arrived but the response
	// body could not be obtained. Terminal.
	KindNetworkError
	// KindParseError means the request's own parse step rejected an
	// otherwise successful response. Terminal.
	KindParseError
	// KindRedirect means the server answered 301 or 302 without a
	// usable Location header, so the redirect could not be resolved
	// transparently. It is offered to the retry policy. (The legacy
	// engines conflated this case with authentication failures; it is
	// deliberately its own kind here.)
	KindRedirect

	kindSentinel
)

var kindNames = []string{
	"unknown error",
	"timeout",
	"no connection",
	"authentication failure",
	"server error",
	"network error",
	"parse error",
	"unresolvable redirect",
}

// String returns a short human-readable name for the kind.
func (k Kind) String() string {
	if k < 0 || k >= kindSentinel {
		return "invalid kind"
	}
	return kindNames[k]
}

// An Error is a classified failure delivered for a request. Every
// error the engine delivers is of this type.
type Error struct {
	// Kind is the failure classification.
	Kind Kind
	// Response is the last network response seen before the failure,
	// or nil if none was obtained.
	Response *request.NetworkResponse
	// NetworkTime is the wall time spent in the transport before the
	// failure.
	NetworkTime time.Duration
	// Err is the underlying cause, or nil when the status code alone
	// describes the failure.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := "fetchq: " + e.Kind.String()
	if e.Response != nil && e.Response.StatusCode != 0 {
		msg += " (status " + strconv.Itoa(e.Response.StatusCode) + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the error is a timeout. It lets *Error
// participate in the standard library's net.Error timeout convention.
func (e *Error) Timeout() bool {
	return e.Kind == KindTimeout
}

// AsError unwraps err to the engine's *Error type, if it has one in
// its chain.
func AsError(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
