// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// EntryFromResponse derives a cache entry from a successful response's
// headers and body. It returns nil if the response forbids caching
// (Cache-Control: no-cache or no-store).
//
// Freshness is computed from Cache-Control max-age when present, and
// otherwise from the Expires header relative to the server's Date.
// With must-revalidate the soft expiry collapses onto the hard expiry,
// so the entry is revalidated as soon as it is stale.
func EntryFromResponse(headers http.Header, data []byte) *Entry {
	now := time.Now().UnixMilli()

	serverDate := parseDateMillis(headers.Get("Date"))

	var (
		maxAge          int64
		hasCacheControl bool
		mustRevalidate  bool
	)
	if cc := headers.Get("Cache-Control"); cc != "" {
		hasCacheControl = true
		for _, token := range strings.Split(cc, ",") {
			token = strings.TrimSpace(token)
			switch {
			case token == "no-cache" || token == "no-store":
				return nil
			case strings.HasPrefix(token, "max-age="):
				if n, err := strconv.ParseInt(token[len("max-age="):], 10, 64); err == nil {
					maxAge = n
				}
			case token == "must-revalidate" || token == "proxy-revalidate":
				mustRevalidate = true
			}
		}
	}

	var softExpiry int64
	switch {
	case hasCacheControl:
		softExpiry = now + maxAge*1000
	default:
		serverExpires := parseDateMillis(headers.Get("Expires"))
		if serverDate > 0 && serverExpires >= serverDate {
			// Relative to the server's own clock, per RFC 9111 §4.2.1.
			softExpiry = now + (serverExpires - serverDate)
		}
	}
	if mustRevalidate {
		softExpiry = now
	}

	return &Entry{
		Data:       data,
		Headers:    headers,
		ETag:       headers.Get("ETag"),
		ServerDate: serverDate,
		Expiry:     softExpiry,
		SoftExpiry: softExpiry,
	}
}

func parseDateMillis(value string) int64 {
	if value == "" {
		return 0
	}
	t, err := http.ParseTime(value)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}
