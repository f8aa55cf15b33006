// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import "time"

// DefaultTimeout is the per-attempt timeout used by DefaultBackoff.
const DefaultTimeout = 2500 * time.Millisecond

// DefaultMaxRetries is the retry ceiling used by DefaultBackoff.
const DefaultMaxRetries = 1

// DefaultMultiplier is the backoff multiplier used by DefaultBackoff.
// A multiplier of 1 doubles the timeout after every failed attempt.
const DefaultMultiplier = 1.0

// A Backoff is a retry Policy with a fixed attempt ceiling and a
// multiplicative timeout growth rule. After each failed attempt the
// per-attempt timeout grows by timeout*multiplier, so a multiplier of
// zero keeps the timeout constant and a multiplier of one doubles it.
type Backoff struct {
	timeout    time.Duration
	retries    int
	maxRetries int
	multiplier float64
}

// NewBackoff constructs a Backoff with the given initial per-attempt
// timeout, retry ceiling, and timeout multiplier.
//
// NewBackoff panics if timeout is not positive, maxRetries is
// negative, or multiplier is negative (a negative multiplier would
// shrink the timeout, violating the policy contract).
func NewBackoff(timeout time.Duration, maxRetries int, multiplier float64) *Backoff {
	if timeout < 1 {
		panic("fetchq/retry: timeout must be positive")
	}
	if maxRetries < 0 {
		panic("fetchq/retry: maxRetries may not be negative")
	}
	if multiplier < 0 {
		panic("fetchq/retry: multiplier may not be negative")
	}
	return &Backoff{
		timeout:    timeout,
		maxRetries: maxRetries,
		multiplier: multiplier,
	}
}

// DefaultBackoff constructs a Backoff suitable for common use cases:
// an initial timeout of DefaultTimeout, a single retry, and a
// multiplier of DefaultMultiplier. Each request needs its own
// instance.
func DefaultBackoff() *Backoff {
	return NewBackoff(DefaultTimeout, DefaultMaxRetries, DefaultMultiplier)
}

// Never constructs a Policy that refuses every retry. The timeout
// parameter still sets the per-attempt timeout for the one attempt
// that is made.
func Never(timeout time.Duration) Policy {
	return NewBackoff(timeout, 0, 0)
}

// Decide consumes one failed attempt and returns the typed outcome.
// The attempt counter and per-attempt timeout are adjusted before the
// ceiling is checked, so CurrentRetryCount reflects the attempt just
// consumed even when the decision is to give up.
func (b *Backoff) Decide(_ error) Decision {
	b.retries++
	b.timeout += time.Duration(float64(b.timeout) * b.multiplier)
	return Decision{
		Again:   b.retries <= b.maxRetries,
		Timeout: b.timeout,
	}
}

// Retry implements Policy. It returns nil if another attempt is
// allowed, and err itself once the ceiling is exhausted.
func (b *Backoff) Retry(err error) error {
	if d := b.Decide(err); !d.Again {
		return err
	}
	return nil
}

// CurrentTimeout implements Policy.
func (b *Backoff) CurrentTimeout() time.Duration {
	return b.timeout
}

// CurrentRetryCount implements Policy.
func (b *Backoff) CurrentRetryCount() int {
	return b.retries
}
