// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchq

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gogama/fetchq/cache"
	"github.com/gogama/fetchq/request"
	"github.com/gogama/fetchq/retry"
	"github.com/gogama/fetchq/transient"
	"github.com/gogama/fetchq/transport"
)

// A Network performs one logical request end-to-end, including its
// retry loop, and returns either a NetworkResponse or a classified
// *Error.
type Network interface {
	Perform(r *request.Request) (*request.NetworkResponse, error)
}

// DefaultSlowThreshold is the network time above which BasicNetwork
// logs a completed request as slow.
const DefaultSlowThreshold = 3 * time.Second

// MaxRedirects caps the transparent 301/302 hops resolved within one
// Perform call, so a redirect cycle cannot pin a worker. Exceeding the
// ceiling fails the request with KindRedirect.
const MaxRedirects = 10

// BasicNetwork is the standard Network implementation. It injects
// conditional headers from the request's cache entry, executes
// attempts through a transport.Stack, resolves 301/302 redirects
// transparently, classifies failures into the sealed error taxonomy,
// and drives the request's retry policy. Its zero value is usable.
type BasicNetwork struct {
	// Stack executes the individual attempts. If nil, a zero-value
	// transport.HTTPStack is used.
	Stack transport.Stack

	// Delivery receives retry and download-progress notifications. If
	// nil, those notifications are dropped.
	Delivery Delivery

	// Logger receives redirect, retry, give-up, and slow-request logs.
	// If nil, nothing is logged.
	Logger *log.Logger

	// SlowThreshold overrides DefaultSlowThreshold when positive.
	SlowThreshold time.Duration
}

// Perform implements Network.
//
// Redirects resolved within the loop consume no retry-policy attempts;
// only classified failures offered to the policy do. At most
// MaxRedirects hops are resolved per call before the request fails
// with KindRedirect. When the policy is exhausted the original error
// kind propagates unchanged.
func (n *BasicNetwork) Perform(r *request.Request) (*request.NetworkResponse, error) {
	start := time.Now()
	redirects := 0
	for {
		resp, err := n.attempt(r, start)
		if err == nil && resp == nil {
			// Transparent redirect: go around again, up to the hop
			// ceiling.
			redirects++
			if redirects <= MaxRedirects {
				continue
			}
			err = &Error{
				Kind:        KindRedirect,
				NetworkTime: time.Since(start),
				Err:         fmt.Errorf("stopped after %d redirects from %s", MaxRedirects, r.OriginURL()),
			}
		}
		if err == nil {
			return resp, nil
		}
		var fe *Error
		if !errors.As(err, &fe) {
			return nil, err
		}
		var prefix string
		switch fe.Kind {
		case KindTimeout:
			prefix = "timeout"
		case KindAuthFailure:
			prefix = "auth"
		case KindRedirect:
			prefix = "redirect"
		default:
			return nil, err
		}
		if err := n.retryOrGiveUp(prefix, r, fe); err != nil {
			return nil, err
		}
	}
}

// attempt makes one transport call and interprets the outcome. A
// (nil, nil) return means a redirect was resolved and the caller
// should loop without consulting the retry policy.
func (n *BasicNetwork) attempt(r *request.Request, start time.Time) (*request.NetworkResponse, error) {
	if !isNetworkURL(r.URL) {
		return &request.NetworkResponse{}, nil
	}

	extra := conditionalHeaders(r.CacheEntry)
	if r.Prepare != nil {
		r.Prepare(r)
	}

	policy := retryPolicy(r)
	ctx, cancel := context.WithTimeout(context.Background(), policy.CurrentTimeout())
	defer cancel()

	resp, err := n.stack().Execute(ctx, r, extra)
	if err != nil {
		elapsed := time.Since(start)
		if transient.Categorize(err) == transient.Timeout {
			return nil, &Error{Kind: KindTimeout, NetworkTime: elapsed, Err: err}
		}
		// Not even a status code was obtained.
		return nil, &Error{Kind: KindNoConnection, NetworkTime: elapsed, Err: err}
	}
	defer resp.Body.Close()

	status := resp.StatusCode
	headers := transport.FirstValueHeaders(resp.Header)

	if status == http.StatusNotModified {
		networkTime := time.Since(start)
		entry := r.CacheEntry
		if entry == nil {
			// Defensive: a 304 without a cache entry to revalidate
			// should not normally occur.
			return &request.NetworkResponse{
				StatusCode:  status,
				Headers:     headers,
				NotModified: true,
				NetworkTime: networkTime,
			}, nil
		}
		// A 304 carries only a subset of headers; the rest come from
		// the cached entry. The entry itself is left untouched, since
		// the cache may be handing the same pointer to other readers;
		// the dispatcher persists the merge through a cache write.
		return &request.NetworkResponse{
			StatusCode:  status,
			Data:        entry.Data,
			Headers:     mergeHeaders(entry.Headers, headers),
			NotModified: true,
			NetworkTime: networkTime,
		}, nil
	}

	if status == http.StatusMovedPermanently || status == http.StatusFound {
		if location := headers.Get("Location"); location != "" {
			target := resolveRedirect(r.URL, location)
			n.logger().Debug("following redirect",
				"id", r.ID, "from", r.URL, "to", target, "status", status)
			r.SetRedirectURL(target)
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil, nil
		}
		nr := &request.NetworkResponse{
			StatusCode:  status,
			Headers:     headers,
			NetworkTime: time.Since(start),
		}
		return nil, &Error{
			Kind:        KindRedirect,
			Response:    nr,
			NetworkTime: nr.NetworkTime,
			Err:         fmt.Errorf("status %d without Location from %s", status, r.URL),
		}
	}

	data, err := n.consume(r, resp)
	networkTime := time.Since(start)
	if err != nil {
		if transient.Categorize(err) == transient.Timeout {
			return nil, &Error{Kind: KindTimeout, NetworkTime: networkTime, Err: err}
		}
		return nil, &Error{
			Kind:        KindNetworkError,
			NetworkTime: networkTime,
			Err:         fmt.Errorf("read body from %s: %w", r.URL, err),
		}
	}
	n.logSlow(r, networkTime, len(data), status)

	if status < 200 || status > 299 {
		nr := &request.NetworkResponse{
			StatusCode:  status,
			Data:        data,
			Headers:     headers,
			NetworkTime: networkTime,
		}
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return nil, &Error{Kind: KindAuthFailure, Response: nr, NetworkTime: networkTime}
		}
		return nil, &Error{Kind: KindServerError, Response: nr, NetworkTime: networkTime}
	}

	return &request.NetworkResponse{
		StatusCode:  status,
		Data:        data,
		Headers:     headers,
		NetworkTime: networkTime,
	}, nil
}

// retryOrGiveUp offers the failed attempt to the request's retry
// policy. A nil return means another attempt was granted; otherwise
// the policy re-raised the original error as terminal.
func (n *BasicNetwork) retryOrGiveUp(prefix string, r *request.Request, cause *Error) error {
	policy := retryPolicy(r)
	prev := policy.CurrentTimeout()
	if err := policy.Retry(cause); err != nil {
		r.AddMarker(fmt.Sprintf("%s-giveup [timeout=%s]", prefix, prev))
		n.logger().Warn("giving up",
			"id", r.ID, "url", r.URL, "kind", cause.Kind.String(),
			"retries", policy.CurrentRetryCount())
		return err
	}
	next := policy.CurrentTimeout()
	r.AddMarker(fmt.Sprintf("%s-retry [timeout=%s]", prefix, prev))
	n.logger().Debug("retrying",
		"id", r.ID, "url", r.URL, "kind", cause.Kind.String(),
		"prevTimeout", prev, "newTimeout", next)
	if n.Delivery != nil {
		n.Delivery.PostRetry(r, prev, next)
	}
	return nil
}

// consume reads the response body to completion, reporting progress,
// via the request's Consume hook when one is set.
func (n *BasicNetwork) consume(r *request.Request, resp *http.Response) ([]byte, error) {
	progress := n.progressFunc(r)
	if r.Consume != nil {
		return r.Consume(resp, progress)
	}
	total := resp.ContentLength
	var buf bytes.Buffer
	if total > 0 {
		buf.Grow(int(total))
	}
	chunk := make([]byte, 16*1024)
	var downloaded int64
	for {
		m, err := resp.Body.Read(chunk)
		if m > 0 {
			buf.Write(chunk[:m])
			downloaded += int64(m)
			if progress != nil {
				progress(total, downloaded)
			}
		}
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (n *BasicNetwork) progressFunc(r *request.Request) request.ProgressFunc {
	if n.Delivery == nil {
		return nil
	}
	return func(total, downloaded int64) {
		n.Delivery.PostDownloadProgress(r, total, downloaded)
	}
}

func (n *BasicNetwork) logSlow(r *request.Request, networkTime time.Duration, size, status int) {
	threshold := n.SlowThreshold
	if threshold <= 0 {
		threshold = DefaultSlowThreshold
	}
	if networkTime > threshold {
		n.logger().Warn("slow request",
			"id", r.ID, "url", r.URL, "lifetime", networkTime, "size", size,
			"status", status, "retries", retryPolicy(r).CurrentRetryCount())
	}
}

func (n *BasicNetwork) stack() transport.Stack {
	if n.Stack != nil {
		return n.Stack
	}
	return defaultStack
}

func (n *BasicNetwork) logger() *log.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return discardLogger
}

var (
	defaultStack  = &transport.HTTPStack{}
	discardLogger = log.New(io.Discard)
)

// retryPolicy returns the request's policy, attaching the default one
// if the caller left it nil. Only the worker that owns the request
// calls this, so the lazy write does not race.
func retryPolicy(r *request.Request) retry.Policy {
	if r.Policy == nil {
		r.Policy = retry.DefaultBackoff()
	}
	return r.Policy
}

// conditionalHeaders builds If-None-Match / If-Modified-Since from the
// entry's validators. The If-Modified-Since value is an RFC 7231
// HTTP-date.
func conditionalHeaders(entry *cache.Entry) http.Header {
	if entry == nil {
		return nil
	}
	h := make(http.Header, 2)
	if entry.ETag != "" {
		h.Set("If-None-Match", entry.ETag)
	}
	if entry.ServerDate > 0 {
		h.Set("If-Modified-Since",
			time.UnixMilli(entry.ServerDate).UTC().Format(http.TimeFormat))
	}
	return h
}

// mergeHeaders overlays the fresh headers from a 304 onto the cached
// entry's headers, fresh values winning per name.
func mergeHeaders(cached, fresh http.Header) http.Header {
	merged := make(http.Header, len(cached)+len(fresh))
	for name, values := range cached {
		merged[name] = values
	}
	for name, values := range fresh {
		merged[name] = values
	}
	return merged
}

func isNetworkURL(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// resolveRedirect resolves location (possibly relative) against the
// request's current URL, falling back to location verbatim when either
// fails to parse.
func resolveRedirect(current, location string) string {
	base, err := url.Parse(current)
	if err != nil {
		return location
	}
	ref, err := url.Parse(location)
	if err != nil {
		return location
	}
	return base.ResolveReference(ref).String()
}
