// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/gogama/fetchq/cache"
	"github.com/gogama/fetchq/request"
)

// DefaultWorkers is the dispatcher pool size used when the caller does
// not choose one.
const DefaultWorkers = 4

// DispatcherPool drains a Queue with a fixed set of worker goroutines.
// Each worker takes one request at a time, performs it through the
// Network, writes any resulting cache entry, and hands the outcome to
// the Delivery.
type DispatcherPool struct {
	queue    *Queue
	network  Network
	cache    cache.Cache
	delivery Delivery

	// Logger receives per-request lifecycle logs. If nil, nothing is
	// logged.
	Logger *log.Logger

	// OnFinish, when set, is called after a request's terminal
	// delivery, once per request.
	OnFinish func(r *request.Request)

	size int
	wg   sync.WaitGroup
}

// NewDispatcherPool builds a pool of size workers over the given
// queue. A size below 1 falls back to DefaultWorkers. Delivery must be
// non-nil; cache may be nil to disable writing.
func NewDispatcherPool(size int, queue *Queue, network Network, c cache.Cache, delivery Delivery) *DispatcherPool {
	if size < 1 {
		size = DefaultWorkers
	}
	return &DispatcherPool{
		queue:    queue,
		network:  network,
		cache:    c,
		delivery: delivery,
		size:     size,
	}
}

// Start launches the worker goroutines. It must be called at most
// once.
func (p *DispatcherPool) Start() {
	p.wg.Add(p.size)
	for i := 0; i < p.size; i++ {
		go p.run()
	}
}

// Stop shuts the queue down, waits for in-flight requests to complete,
// and returns the backlog that was abandoned undelivered.
func (p *DispatcherPool) Stop() []*request.Request {
	abandoned := p.queue.Stop()
	p.wg.Wait()
	return abandoned
}

// Pause stops workers from taking further requests. In-flight requests
// run to completion.
func (p *DispatcherPool) Pause() { p.queue.Pause() }

// Resume undoes Pause.
func (p *DispatcherPool) Resume() { p.queue.Resume() }

func (p *DispatcherPool) run() {
	defer p.wg.Done()
	for {
		r, ok := p.queue.take()
		if !ok {
			return
		}
		p.process(r)
	}
}

func (p *DispatcherPool) process(r *request.Request) {
	defer func() {
		if v := recover(); v != nil {
			p.logger().Error("panic processing request", "id", r.ID, "url", r.URL, "panic", v)
			p.deliverError(r, &Error{Kind: KindUnknown, Err: fmt.Errorf("panic: %v", v)})
			p.finish(r)
		}
	}()

	r.AddMarker("network-queue-take")
	p.delivery.PostPreExecute(r)

	if r.Canceled() {
		r.AddMarker("network-discard-cancelled")
		p.delivery.PostCancel(r)
		p.finish(r)
		return
	}

	p.delivery.PostNetworking(r)
	resp, err := p.network.Perform(r)

	// The request may have been cancelled while the transport call was
	// in flight. The result, success or failure, is discarded.
	if r.Canceled() {
		r.AddMarker("network-discard-cancelled-in-flight")
		p.delivery.PostCancel(r)
		p.finish(r)
		return
	}

	if err != nil {
		p.deliverError(r, err)
		p.finish(r)
		return
	}
	r.AddMarker("network-http-complete")

	// A revalidation that changed nothing since the last delivery has
	// nothing new to say.
	if resp.NotModified && r.ResponseDelivered() {
		r.AddMarker("not-modified")
		p.finish(r)
		return
	}

	entry, err := p.parse(r, resp)
	if err != nil {
		p.deliverError(r, &Error{
			Kind:        KindParseError,
			Response:    resp,
			NetworkTime: resp.NetworkTime,
			Err:         err,
		})
		p.finish(r)
		return
	}
	r.AddMarker("network-parse-complete")

	if r.ShouldCache && entry != nil && p.cache != nil {
		if err := p.cache.Put(context.Background(), r.Key(), entry); err != nil {
			p.logger().Warn("cache write failed", "id", r.ID, "key", r.Key(), "error", err)
		} else {
			r.AddMarker("network-cache-written")
		}
	}

	r.MarkDelivered()
	p.delivery.PostResponse(r, resp, nil)
	p.finish(r)
}

// parse converts the raw network response to a cache entry via the
// request's Parse hook, or by the default header-driven policy.
func (p *DispatcherPool) parse(r *request.Request, resp *request.NetworkResponse) (*cache.Entry, error) {
	if r.Parse != nil {
		return r.Parse(resp)
	}
	if resp.NotModified {
		if r.CacheEntry == nil {
			return nil, nil
		}
		// Persist the merged headers so later revalidations carry the
		// freshest validators. The stored entry may be shared with
		// concurrent readers, so the write goes through a copy.
		entry := *r.CacheEntry
		entry.Headers = resp.Headers
		return &entry, nil
	}
	if !r.ShouldCache {
		return nil, nil
	}
	return cache.EntryFromResponse(resp.Headers, resp.Data), nil
}

func (p *DispatcherPool) deliverError(r *request.Request, err error) {
	var fe *Error
	if !errors.As(err, &fe) {
		fe = &Error{Kind: KindUnknown, Err: err}
	}
	var out error = fe
	if r.TranslateError != nil {
		out = r.TranslateError(fe)
	}
	p.delivery.PostError(r, out)
}

func (p *DispatcherPool) finish(r *request.Request) {
	if !r.MarkFinished() {
		return
	}
	p.delivery.PostFinish(r)
	if p.OnFinish != nil {
		p.OnFinish(r)
	}
	p.logger().Debug("request finished", "id", r.ID, "url", r.URL,
		"markers", request.FormatMarkers(r.Markers()))
}

func (p *DispatcherPool) logger() *log.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return discardLogger
}
