// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchq

import (
	"time"

	"github.com/gogama/fetchq/request"
)

// A Delivery receives lifecycle callbacks for requests moving through
// the engine and relays them to the caller's execution context.
//
// The engine invokes the callbacks from whichever worker goroutine is
// executing the request, so implementations must be safe for
// concurrent use. Within one request's lifecycle the order is fixed:
// PostPreExecute, then PostUsedCache or PostNetworking, then exactly
// one terminal callback (PostResponse, PostError, or PostCancel), then
// PostFinish. PostRetry and PostDownloadProgress may interleave while
// the request is on the network. PostFinish fires exactly once per
// request, whatever the outcome.
type Delivery interface {
	// PostPreExecute fires when a worker picks the request up.
	PostPreExecute(r *request.Request)

	// PostUsedCache fires when a fresh cached entry satisfies the
	// request without a network call.
	PostUsedCache(r *request.Request)

	// PostNetworking fires just before the request's first transport
	// attempt.
	PostNetworking(r *request.Request)

	// PostResponse delivers the terminal success. When followUp is
	// non-nil it must run after the response has been delivered.
	PostResponse(r *request.Request, resp *request.NetworkResponse, followUp func())

	// PostError delivers the terminal classified error.
	PostError(r *request.Request, err error)

	// PostCancel delivers the terminal cancellation.
	PostCancel(r *request.Request)

	// PostRetry fires after the retry policy has granted another
	// attempt, with the previous and the new per-attempt timeout.
	PostRetry(r *request.Request, prevTimeout, newTimeout time.Duration)

	// PostDownloadProgress reports body download progress. Total is -1
	// when the response carries no Content-Length.
	PostDownloadProgress(r *request.Request, total, downloaded int64)

	// PostFinish fires exactly once after a request's terminal
	// callback, whatever the outcome.
	PostFinish(r *request.Request)
}

// CallbackDelivery is a Delivery that fans each callback out to an
// optional function, invoked synchronously on the executing worker.
// Nil functions are skipped, so the zero value is a valid Delivery
// that ignores everything. Callers that need another execution context
// wrap the functions themselves.
type CallbackDelivery struct {
	OnPreExecute func(r *request.Request)
	OnUsedCache  func(r *request.Request)
	OnNetworking func(r *request.Request)
	OnResponse   func(r *request.Request, resp *request.NetworkResponse)
	OnError      func(r *request.Request, err error)
	OnCancel     func(r *request.Request)
	OnRetry      func(r *request.Request, prevTimeout, newTimeout time.Duration)
	OnProgress   func(r *request.Request, total, downloaded int64)
	OnFinish     func(r *request.Request)
}

// PostPreExecute implements Delivery.
func (d *CallbackDelivery) PostPreExecute(r *request.Request) {
	if d.OnPreExecute != nil {
		d.OnPreExecute(r)
	}
}

// PostUsedCache implements Delivery.
func (d *CallbackDelivery) PostUsedCache(r *request.Request) {
	if d.OnUsedCache != nil {
		d.OnUsedCache(r)
	}
}

// PostNetworking implements Delivery.
func (d *CallbackDelivery) PostNetworking(r *request.Request) {
	if d.OnNetworking != nil {
		d.OnNetworking(r)
	}
}

// PostResponse implements Delivery.
func (d *CallbackDelivery) PostResponse(r *request.Request, resp *request.NetworkResponse, followUp func()) {
	if d.OnResponse != nil {
		d.OnResponse(r, resp)
	}
	if followUp != nil {
		followUp()
	}
}

// PostError implements Delivery.
func (d *CallbackDelivery) PostError(r *request.Request, err error) {
	if d.OnError != nil {
		d.OnError(r, err)
	}
}

// PostCancel implements Delivery.
func (d *CallbackDelivery) PostCancel(r *request.Request) {
	if d.OnCancel != nil {
		d.OnCancel(r)
	}
}

// PostRetry implements Delivery.
func (d *CallbackDelivery) PostRetry(r *request.Request, prevTimeout, newTimeout time.Duration) {
	if d.OnRetry != nil {
		d.OnRetry(r, prevTimeout, newTimeout)
	}
}

// PostDownloadProgress implements Delivery.
func (d *CallbackDelivery) PostDownloadProgress(r *request.Request, total, downloaded int64) {
	if d.OnProgress != nil {
		d.OnProgress(r, total, downloaded)
	}
}

// PostFinish implements Delivery.
func (d *CallbackDelivery) PostFinish(r *request.Request) {
	if d.OnFinish != nil {
		d.OnFinish(r)
	}
}
