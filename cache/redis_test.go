// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRedis exercises the Redis backend against a real server. Set
// FETCHQ_REDIS_ADDR (e.g. localhost:6379) to run it.
func TestRedis(t *testing.T) {
	addr := os.Getenv("FETCHQ_REDIS_ADDR")
	if addr == "" {
		t.Skip("FETCHQ_REDIS_ADDR not set")
	}

	ctx := context.Background()
	r, err := NewRedis(ctx, RedisConfig{
		Addr:   addr,
		Prefix: "fetchq-test:",
		TTL:    time.Minute,
	})
	require.NoError(t, err)
	defer r.Close()

	e, err := r.Get(ctx, "absent")
	require.NoError(t, err)
	assert.Nil(t, e)

	headers := http.Header{}
	headers.Set("Content-Type", "text/plain")
	want := &Entry{
		Data:       []byte("cached body"),
		Headers:    headers,
		ETag:       `"r1"`,
		ServerDate: time.Now().UnixMilli(),
		Expiry:     time.Now().Add(30 * time.Second).UnixMilli(),
		SoftExpiry: time.Now().Add(10 * time.Second).UnixMilli(),
	}
	require.NoError(t, r.Put(ctx, "roundtrip", want))

	got, err := r.Get(ctx, "roundtrip")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Data, got.Data)
	assert.Equal(t, want.ETag, got.ETag)
	assert.Equal(t, want.ServerDate, got.ServerDate)
	assert.Equal(t, "text/plain", got.Headers.Get("Content-Type"))
}
