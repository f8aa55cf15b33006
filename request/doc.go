// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package request contains the data model for queued HTTP requests:
// the caller-owned Request, the NetworkResponse snapshot of one
// transport outcome, and the ordered marker log used for lifecycle
// diagnostics.
//
// A Request is created by the caller, enqueued once, and from that
// point mutated only by the single worker executing it. Cancellation
// and delivery state are kept in atomically readable flags so the
// caller can cancel, and observers can inspect, without racing the
// worker.
package request
