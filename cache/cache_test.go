// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryFreshness(t *testing.T) {
	now := time.Now().UnixMilli()
	t.Run("Fresh", func(t *testing.T) {
		e := &Entry{Expiry: now + 60_000, SoftExpiry: now + 60_000}
		assert.False(t, e.Expired())
		assert.False(t, e.RefreshNeeded())
	})
	t.Run("Stale", func(t *testing.T) {
		e := &Entry{Expiry: now - 1, SoftExpiry: now - 1}
		assert.True(t, e.Expired())
		assert.True(t, e.RefreshNeeded())
	})
	t.Run("No metadata", func(t *testing.T) {
		e := &Entry{}
		assert.False(t, e.Expired(), "no hard expiry means never expired")
		assert.True(t, e.RefreshNeeded(), "no soft expiry means always revalidate")
	})
}

func TestEntryFromResponse(t *testing.T) {
	date := time.Now().UTC()
	t.Run("Max-age", func(t *testing.T) {
		h := http.Header{}
		h.Set("Date", date.Format(http.TimeFormat))
		h.Set("ETag", `"v7"`)
		h.Set("Cache-Control", "public, max-age=120")
		e := EntryFromResponse(h, []byte("payload"))
		require.NotNil(t, e)
		assert.Equal(t, []byte("payload"), e.Data)
		assert.Equal(t, `"v7"`, e.ETag)
		assert.Equal(t, date.Truncate(time.Second).UnixMilli(), e.ServerDate)
		assert.InDelta(t, time.Now().UnixMilli()+120_000, e.SoftExpiry, 2000)
		assert.False(t, e.RefreshNeeded())
	})
	t.Run("Expires", func(t *testing.T) {
		h := http.Header{}
		h.Set("Date", date.Format(http.TimeFormat))
		h.Set("Expires", date.Add(90*time.Second).Format(http.TimeFormat))
		e := EntryFromResponse(h, nil)
		require.NotNil(t, e)
		assert.InDelta(t, time.Now().UnixMilli()+90_000, e.SoftExpiry, 2000)
	})
	t.Run("No-store", func(t *testing.T) {
		h := http.Header{}
		h.Set("Cache-Control", "no-store")
		assert.Nil(t, EntryFromResponse(h, []byte("x")))
	})
	t.Run("No-cache", func(t *testing.T) {
		h := http.Header{}
		h.Set("Cache-Control", "no-cache")
		assert.Nil(t, EntryFromResponse(h, []byte("x")))
	})
	t.Run("Must-revalidate", func(t *testing.T) {
		h := http.Header{}
		h.Set("Cache-Control", "max-age=300, must-revalidate")
		e := EntryFromResponse(h, nil)
		require.NotNil(t, e)
		assert.True(t, e.RefreshNeeded())
	})
	t.Run("No freshness headers", func(t *testing.T) {
		h := http.Header{}
		h.Set("ETag", `"w"`)
		e := EntryFromResponse(h, nil)
		require.NotNil(t, e)
		assert.True(t, e.RefreshNeeded(), "validator-only entries must revalidate")
	})
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	e, err := m.Get(ctx, "absent")
	require.NoError(t, err)
	assert.Nil(t, e)

	want := &Entry{Data: []byte("hello"), ETag: `"a"`}
	require.NoError(t, m.Put(ctx, "k", want))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Same(t, want, got)

	// Last writer wins.
	replacement := &Entry{Data: []byte("bye")}
	require.NoError(t, m.Put(ctx, "k", replacement))
	got, _ = m.Get(ctx, "k")
	assert.Same(t, replacement, got)
	assert.Equal(t, 1, m.Len())
}

func TestMemoryConcurrent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key-%d", j%10)
				_ = m.Put(ctx, key, &Entry{Data: []byte{byte(i)}})
				_, _ = m.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, m.Len())
}
