// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchq

import (
	"sync"

	"github.com/gogama/fetchq/request"
)

// A Queue is the shared blocking FIFO the dispatch workers drain. It
// supports pausing (workers block without the queue dropping anything)
// and stopping (blocked workers wake and exit; queued requests are
// abandoned).
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []*request.Request
	paused  bool
	stopped bool
}

// NewQueue constructs an empty queue.
func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Add appends r to the queue and wakes one waiting worker. It reports
// false, without enqueuing, once the queue has been stopped.
func (q *Queue) Add(r *request.Request) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return false
	}
	q.items = append(q.items, r)
	q.cond.Signal()
	return true
}

// take blocks until a request is available and the queue is not
// paused, or until the queue is stopped. The second return value is
// false exactly when the worker should exit. Spurious wakeups simply
// re-enter the wait.
func (q *Queue) take() (*request.Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if q.stopped {
			return nil, false
		}
		if !q.paused && len(q.items) > 0 {
			r := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			return r, true
		}
		q.cond.Wait()
	}
}

// Pause halts dequeuing of new work. Requests already being executed
// are unaffected, and nothing queued is dropped.
func (q *Queue) Pause() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.paused = true
}

// Resume wakes all paused workers.
func (q *Queue) Resume() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.paused = false
	q.cond.Broadcast()
}

// Stop releases any pause, wakes every blocked worker so it can exit,
// and abandons the queued backlog. The abandoned requests are returned
// to the caller; they receive no callbacks. Stop is idempotent and a
// stopped queue rejects further Adds.
func (q *Queue) Stop() []*request.Request {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return nil
	}
	q.stopped = true
	q.paused = false
	abandoned := q.items
	q.items = nil
	q.cond.Broadcast()
	return abandoned
}

// Len returns the number of queued, not-yet-dequeued requests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
