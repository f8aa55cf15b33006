// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogama/fetchq/request"
)

func TestFirstValueHeaders(t *testing.T) {
	h := http.Header{}
	h.Add("Set-Cookie", "a=1")
	h.Add("Set-Cookie", "b=2")
	h.Set("Content-Type", "text/plain")

	flat := FirstValueHeaders(h)
	assert.Equal(t, []string{"a=1"}, flat["Set-Cookie"])
	assert.Equal(t, "text/plain", flat.Get("Content-Type"))
	assert.Empty(t, FirstValueHeaders(nil))
}

func TestHTTPStackExecute(t *testing.T) {
	var got *http.Request
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		got = req.Clone(context.Background())
		gotBody, _ = io.ReadAll(req.Body)
		w.WriteHeader(200)
	}))
	defer server.Close()

	s := NewHTTPStack()
	s.UserAgent = "fetchq-test"

	t.Run("Headers and body", func(t *testing.T) {
		r := request.New("POST", server.URL+"/submit")
		r.Body = []byte(`{"k":"v"}`)
		r.ContentType = "application/json"
		r.Header.Set("X-Custom", "yes")
		r.Header.Set("If-None-Match", `"stale"`)

		extra := http.Header{}
		extra.Set("If-None-Match", `"fresh"`)

		resp, err := s.Execute(context.Background(), r, extra)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, "POST", got.Method)
		assert.Equal(t, `{"k":"v"}`, string(gotBody))
		assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
		assert.Equal(t, "yes", got.Header.Get("X-Custom"))
		assert.Equal(t, `"fresh"`, got.Header.Get("If-None-Match"), "conditional headers win over caller headers")
		assert.Equal(t, "fetchq-test", got.Header.Get("User-Agent"))
	})

	t.Run("Empty method means GET", func(t *testing.T) {
		r := request.New("", server.URL)
		resp, err := s.Execute(context.Background(), r, nil)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, "GET", got.Method)
	})

	t.Run("Malformed URL", func(t *testing.T) {
		r := request.New("GET", "://nope")
		_, err := s.Execute(context.Background(), r, nil)
		assert.Error(t, err)
	})
}

func TestHTTPStackRewriter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(204)
	}))
	defer server.Close()

	t.Run("Rewrites", func(t *testing.T) {
		s := NewHTTPStack()
		s.Rewriter = func(url string) (string, error) {
			return server.URL + "/rewritten", nil
		}
		r := request.New("GET", "https://unreachable.invalid/")
		resp, err := s.Execute(context.Background(), r, nil)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, 204, resp.StatusCode)
	})

	t.Run("Rejects", func(t *testing.T) {
		s := NewHTTPStack()
		rejected := errors.New("blocked")
		s.Rewriter = func(url string) (string, error) {
			return "", rejected
		}
		r := request.New("GET", server.URL)
		_, err := s.Execute(context.Background(), r, nil)
		assert.ErrorIs(t, err, rejected)
	})
}

func TestHTTPStackDoesNotFollowRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/old" {
			http.Redirect(w, req, "/new", http.StatusMovedPermanently)
			return
		}
		w.WriteHeader(200)
	}))
	defer server.Close()

	s := NewHTTPStack()
	r := request.New("GET", server.URL+"/old")
	resp, err := s.Execute(context.Background(), r, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "/new")
}
