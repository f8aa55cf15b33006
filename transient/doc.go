// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient categorizes low-level errors encountered while
// executing a queued HTTP request. The request executor uses the
// category to decide between the retryable timeout path and the
// terminal no-connection path, and retry policies may use it to make
// finer-grained decisions of their own.
//
// Package transient is extremely lightweight, as it depends only on
// the standard library packages "errors" and "syscall", so it doesn't
// bring any significant dependencies when imported as a standalone
// package.
package transient
