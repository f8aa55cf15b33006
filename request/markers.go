// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// A Marker is one named instant in a request's lifecycle, such as
// "network-queue-take" or "network-http-complete".
type Marker struct {
	Name string
	Time time.Time
}

// markerLog is an append-only ordered marker list. The engine appends
// from the caller's goroutine at enqueue time and from the executing
// worker afterward, so appends are locked even though there is never
// more than one writer at a time in practice.
type markerLog struct {
	mu      sync.Mutex
	markers []Marker
}

func (l *markerLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.markers = append(l.markers, Marker{Name: name, Time: time.Now()})
}

func (l *markerLog) snapshot() []Marker {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Marker, len(l.markers))
	copy(out, l.markers)
	return out
}

// FormatMarkers renders markers as "name(+offset)" pairs with offsets
// relative to the first marker, for log output.
func FormatMarkers(markers []Marker) string {
	if len(markers) == 0 {
		return ""
	}
	start := markers[0].Time
	parts := make([]string, len(markers))
	for i, m := range markers {
		parts[i] = fmt.Sprintf("%s(+%s)", m.Name, m.Time.Sub(start).Round(time.Millisecond))
	}
	return strings.Join(parts, " ")
}
