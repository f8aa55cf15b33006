// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchq

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/gogama/fetchq/request"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	a := request.New("GET", "http://example.com/a")
	b := request.New("GET", "http://example.com/b")
	c := request.New("GET", "http://example.com/c")
	require.True(t, q.Add(a))
	require.True(t, q.Add(b))
	require.True(t, q.Add(c))
	assert.Equal(t, 3, q.Len())

	for _, want := range []*request.Request{a, b, c} {
		got, ok := q.take()
		require.True(t, ok)
		assert.Same(t, want, got)
	}
	assert.Equal(t, 0, q.Len())
}

func TestQueuePauseBlocksTake(t *testing.T) {
	q := NewQueue()
	q.Pause()
	require.True(t, q.Add(request.New("GET", "http://example.com")))

	taken := make(chan *request.Request, 1)
	go func() {
		r, ok := q.take()
		if ok {
			taken <- r
		}
	}()

	select {
	case <-taken:
		t.Fatal("take returned while paused")
	case <-time.After(50 * time.Millisecond):
	}

	q.Resume()
	select {
	case <-taken:
	case <-time.After(time.Second):
		t.Fatal("take did not return after resume")
	}
}

func TestQueueStop(t *testing.T) {
	t.Run("ReleasesPausedTakers", func(t *testing.T) {
		q := NewQueue()
		q.Pause()
		done := make(chan bool, 1)
		go func() {
			_, ok := q.take()
			done <- ok
		}()
		time.Sleep(20 * time.Millisecond)
		q.Stop()
		select {
		case ok := <-done:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("take did not return after stop")
		}
	})

	t.Run("ReturnsAbandonedBacklog", func(t *testing.T) {
		q := NewQueue()
		a := request.New("GET", "http://example.com/a")
		b := request.New("GET", "http://example.com/b")
		require.True(t, q.Add(a))
		require.True(t, q.Add(b))
		abandoned := q.Stop()
		require.Len(t, abandoned, 2)
		assert.Same(t, a, abandoned[0])
		assert.Same(t, b, abandoned[1])
	})

	t.Run("AddAfterStop", func(t *testing.T) {
		q := NewQueue()
		q.Stop()
		assert.False(t, q.Add(request.New("GET", "http://example.com")))
		assert.Equal(t, 0, q.Len())
	})

	t.Run("Idempotent", func(t *testing.T) {
		q := NewQueue()
		require.True(t, q.Add(request.New("GET", "http://example.com")))
		first := q.Stop()
		assert.Len(t, first, 1)
		second := q.Stop()
		assert.Empty(t, second)
	})
}

func TestQueueProperties(t *testing.T) {
	const (
		opAdd = iota
		opTake
		opPause
		opResume
	)
	rapid.Check(t, func(t *rapid.T) {
		q := NewQueue()
		var model []*request.Request
		paused := false
		added := 0

		ops := rapid.SliceOfN(rapid.IntRange(opAdd, opResume), 1, 200).Draw(t, "ops")
		for _, op := range ops {
			switch op {
			case opAdd:
				r := request.New("GET", fmt.Sprintf("http://example.com/%d", added))
				added++
				if q.Add(r) {
					model = append(model, r)
				}
			case opTake:
				// take blocks when it would not succeed, so only
				// mirror the calls the model knows will return.
				if paused || len(model) == 0 {
					continue
				}
				got, ok := q.take()
				if !ok {
					t.Fatalf("take returned false on a live queue")
				}
				if got != model[0] {
					t.Fatalf("take returned %s, want %s", got.URL, model[0].URL)
				}
				model = model[1:]
			case opPause:
				paused = true
				q.Pause()
			case opResume:
				paused = false
				q.Resume()
			}
			if q.Len() != len(model) {
				t.Fatalf("queue length %d, model length %d", q.Len(), len(model))
			}
		}

		abandoned := q.Stop()
		if len(abandoned) != len(model) {
			t.Fatalf("stop abandoned %d requests, model held %d", len(abandoned), len(model))
		}
		for i := range abandoned {
			if abandoned[i] != model[i] {
				t.Fatalf("abandoned[%d] out of order", i)
			}
		}
	})
}

func TestQueueTakeBlocksWhenEmpty(t *testing.T) {
	q := NewQueue()
	taken := make(chan *request.Request, 1)
	go func() {
		r, ok := q.take()
		if ok {
			taken <- r
		}
	}()

	select {
	case <-taken:
		t.Fatal("take returned on empty queue")
	case <-time.After(50 * time.Millisecond):
	}

	want := request.New("GET", "http://example.com")
	require.True(t, q.Add(want))
	select {
	case got := <-taken:
		assert.Same(t, want, got)
	case <-time.After(time.Second):
		t.Fatal("take did not return after add")
	}
}
