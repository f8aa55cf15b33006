// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchq

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gogama/fetchq/cache"
	"github.com/gogama/fetchq/request"
	"github.com/gogama/fetchq/retry"
	"github.com/gogama/fetchq/transport"
)

// Engine ties the queue, dispatcher pool, network, and cache together
// behind a single facade. The zero value, after Start, is a working
// engine with an in-memory cache and DefaultWorkers workers.
//
// Engines are safe for concurrent use by multiple goroutines.
type Engine struct {
	// Network performs requests. If nil, Start installs a BasicNetwork
	// over Stack.
	Network Network

	// Cache stores responses for revalidation. If nil, Start installs
	// an in-memory cache.
	Cache cache.Cache

	// Stack is the transport used by the default Network. Ignored when
	// Network is set.
	Stack transport.Stack

	// Delivery receives every request's lifecycle callbacks. If nil,
	// Start installs a no-op CallbackDelivery.
	Delivery Delivery

	// Workers is the dispatcher pool size. Values below 1 mean
	// DefaultWorkers.
	Workers int

	// Logger receives engine and dispatcher logs. If nil, nothing is
	// logged.
	Logger *log.Logger

	queue   *Queue
	pool    *DispatcherPool
	mu      sync.Mutex
	current map[*request.Request]struct{}
	seq     atomic.Int64
	started bool
}

// Start wires defaults into any nil fields and launches the worker
// pool. Calling Start on a started engine is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	if e.Cache == nil {
		e.Cache = cache.NewMemory()
	}
	if e.Delivery == nil {
		e.Delivery = &CallbackDelivery{}
	}
	if e.Network == nil {
		e.Network = &BasicNetwork{
			Stack:    e.Stack,
			Delivery: e.Delivery,
			Logger:   e.Logger,
		}
	}
	e.queue = NewQueue()
	e.current = make(map[*request.Request]struct{})
	e.pool = NewDispatcherPool(e.Workers, e.queue, e.Network, e.Cache, e.Delivery)
	e.pool.Logger = e.Logger
	e.pool.OnFinish = e.untrack
	e.pool.Start()
	e.started = true
}

// Stop shuts the queue down and waits for in-flight requests to
// complete. Queued requests that never reached a worker are abandoned
// without callbacks.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return
	}
	e.started = false
	pool := e.pool
	e.mu.Unlock()

	abandoned := pool.Stop()
	if len(abandoned) > 0 {
		e.logger().Info("engine stopped", "abandoned", len(abandoned))
	}
}

// Pause stops workers from taking further requests. It is a no-op on
// an engine that is not running.
func (e *Engine) Pause() {
	if pool := e.runningPool(); pool != nil {
		pool.Pause()
	}
}

// Resume undoes Pause. It is a no-op on an engine that is not running.
func (e *Engine) Resume() {
	if pool := e.runningPool(); pool != nil {
		pool.Resume()
	}
}

func (e *Engine) runningPool() *DispatcherPool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return nil
	}
	return e.pool
}

// Add submits a request. A fresh cached response is delivered
// synchronously from the calling goroutine without touching the queue;
// otherwise the request is enqueued, carrying any stale entry for
// revalidation. Add reports false once the engine has stopped.
func (e *Engine) Add(r *request.Request) bool {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return false
	}
	e.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.SetSequence(e.seq.Add(1))
	if r.Policy == nil {
		r.Policy = retry.DefaultBackoff()
	}
	r.AddMarker("add-to-queue")

	if entry := e.lookup(r); entry != nil {
		if !entry.Expired() && !entry.RefreshNeeded() {
			e.serveFromCache(r, entry)
			return true
		}
		if entry.Expired() {
			r.AddMarker("cache-hit-expired")
		} else {
			r.AddMarker("cache-hit-refresh-needed")
		}
		r.CacheEntry = entry
	}

	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return false
	}
	e.current[r] = struct{}{}
	e.mu.Unlock()

	if !e.queue.Add(r) {
		e.untrack(r)
		return false
	}
	return true
}

// CancelAll cancels every tracked request whose Tag equals tag.
// Cancelled requests still in the queue are discarded by the worker
// that takes them; cancelled in-flight requests have their results
// discarded.
func (e *Engine) CancelAll(tag string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for r := range e.current {
		if r.Tag == tag {
			r.Cancel()
		}
	}
}

func (e *Engine) lookup(r *request.Request) *cache.Entry {
	if !r.ShouldCache {
		return nil
	}
	entry, err := e.Cache.Get(context.Background(), r.Key())
	if err != nil {
		e.logger().Warn("cache read failed", "key", r.Key(), "error", err)
		return nil
	}
	return entry
}

// serveFromCache runs the delivery sequence for a fresh cache hit on
// the caller's goroutine.
func (e *Engine) serveFromCache(r *request.Request, entry *cache.Entry) {
	e.delivery().PostPreExecute(r)
	if r.Canceled() {
		r.AddMarker("network-discard-cancelled")
		e.delivery().PostCancel(r)
		e.finish(r)
		return
	}
	r.AddMarker("cache-hit")
	e.delivery().PostUsedCache(r)
	r.MarkDelivered()
	e.delivery().PostResponse(r, &request.NetworkResponse{
		StatusCode: http.StatusOK,
		Data:       entry.Data,
		Headers:    entry.Headers,
	}, nil)
	e.finish(r)
}

func (e *Engine) finish(r *request.Request) {
	if !r.MarkFinished() {
		return
	}
	e.delivery().PostFinish(r)
	e.logger().Debug("request finished", "id", r.ID, "url", r.URL,
		"markers", request.FormatMarkers(r.Markers()))
}

func (e *Engine) untrack(r *request.Request) {
	e.mu.Lock()
	delete(e.current, r)
	e.mu.Unlock()
}

func (e *Engine) delivery() Delivery {
	if e.Delivery != nil {
		return e.Delivery
	}
	return noopDelivery
}

func (e *Engine) logger() *log.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return discardLogger
}

var noopDelivery = &CallbackDelivery{}
