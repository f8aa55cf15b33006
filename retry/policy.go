// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import "time"

// A Policy decides whether a failed request attempt may be retried,
// and owns the per-attempt timeout budget for its request.
//
// A Policy instance is attached to exactly one request and is only
// ever consulted by the single worker currently executing that
// request, so implementations need not be safe for concurrent use.
type Policy interface {
	// Retry consumes one failed attempt. A nil return means "try
	// again"; as a side effect the policy may have increased its
	// attempt counter and per-attempt timeout. A non-nil return means
	// the policy is exhausted, and must be the same err that was
	// passed in, so that the caller observes the true terminal cause.
	Retry(err error) error

	// CurrentTimeout returns the timeout to apply to the next request
	// attempt. Successive values are monotonically non-decreasing.
	CurrentTimeout() time.Duration

	// CurrentRetryCount returns the number of failed attempts consumed
	// so far. It is read-only and has no side effects.
	CurrentRetryCount() int
}

// A Decision is the typed outcome of offering a failed attempt to a
// backoff calculation: either try again with a (possibly longer)
// per-attempt timeout, or give up.
//
// The Policy interface expresses exhaustion by re-returning the
// original error; Decision is the value-level form of the same choice,
// for callers that prefer to branch on a result instead of an error.
type Decision struct {
	// Again reports whether another attempt is allowed.
	Again bool
	// Timeout is the per-attempt timeout to use for the next attempt.
	// It is meaningful only when Again is true.
	Timeout time.Duration
}
