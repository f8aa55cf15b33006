// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry provides the retry policy contract for queued HTTP
// requests, and a default exponential backoff implementation.
//
// Unlike a shared, stateless decision function, a Policy instance is
// stateful and belongs to exactly one request: it carries the attempt
// counter and the current per-attempt timeout, and it grows both as
// failed attempts are consumed. Attach a fresh instance to every
// request.
package retry
