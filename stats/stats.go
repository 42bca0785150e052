// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package stats provides named counters used to account for transport
// traffic: messages delivered, elements exchanged, checksum
// mismatches. Counters are safe for concurrent use and collections can
// be snapshotted and aggregated across ranks.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Values is a point-in-time snapshot of a counter collection.
type Values map[string]int64

// String renders the snapshot sorted by counter name.
func (v Values) String() string {
	keys := make([]string, 0, len(v))
	for key := range v {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for i, key := range keys {
		keys[i] = fmt.Sprintf("%s:%d", key, v[key])
	}
	return strings.Join(keys, " ")
}

// An Int is an atomically updated integer counter.
type Int struct {
	value int64
}

// Add increments the counter by delta.
func (i *Int) Add(delta int64) {
	atomic.AddInt64(&i.value, delta)
}

// Get returns the counter's current value.
func (i *Int) Get() int64 {
	return atomic.LoadInt64(&i.value)
}

// A Map is a collection of counters keyed by name.
type Map struct {
	mu       sync.Mutex
	counters map[string]*Int
}

// NewMap returns an empty counter collection.
func NewMap() *Map {
	return &Map{counters: make(map[string]*Int)}
}

// Int returns the named counter, creating it if needed.
func (m *Map) Int(name string) *Int {
	m.mu.Lock()
	c := m.counters[name]
	if c == nil {
		c = new(Int)
		m.counters[name] = c
	}
	m.mu.Unlock()
	return c
}

// AddAll folds the current counter values into the snapshot.
func (m *Map) AddAll(vals Values) {
	m.mu.Lock()
	for name, c := range m.counters {
		vals[name] += c.Get()
	}
	m.mu.Unlock()
}

// Values returns a snapshot of the collection.
func (m *Map) Values() Values {
	vals := make(Values)
	m.AddAll(vals)
	return vals
}
