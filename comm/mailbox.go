// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package comm

import (
	"context"
	"sync"

	"github.com/matin4kateb/distsort/stats"
)

// streamKey identifies one ordered message stream into a mailbox.
type streamKey struct {
	src, tag int
}

// A Mailbox holds messages delivered to one rank until the rank
// receives them. Delivery verifies the payload checksum and restores
// per-stream sender order using message sequence numbers, so Recv
// always observes messages in the order they were sent regardless of
// the order in which the transport delivered them.
type Mailbox struct {
	mu      sync.Mutex
	waitc   chan struct{}
	pending map[streamKey]map[int]Message
	next    map[streamKey]int
	stats   *stats.Map
}

// NewMailbox returns an empty mailbox whose delivery and receive
// counters are recorded in m. A nil m disables counting.
func NewMailbox(m *stats.Map) *Mailbox {
	if m == nil {
		m = stats.NewMap()
	}
	return &Mailbox{
		pending: make(map[streamKey]map[int]Message),
		next:    make(map[streamKey]int),
		stats:   m,
	}
}

// Deliver places a message into the mailbox, waking any rank blocked
// in Recv. Deliver fails if the message checksum does not match its
// payload; a failed delivery leaves the mailbox unchanged.
func (m *Mailbox) Deliver(msg Message) error {
	if err := msg.verify(); err != nil {
		m.stats.Int("mismatch").Add(1)
		return err
	}
	key := streamKey{msg.From, msg.Tag}
	m.mu.Lock()
	if msg.Seq < m.next[key] {
		// Duplicate of an already consumed message (e.g. an RPC
		// retry); exactly-once semantics drop it here.
		m.mu.Unlock()
		return nil
	}
	if m.pending[key] == nil {
		m.pending[key] = make(map[int]Message)
	}
	m.pending[key][msg.Seq] = msg
	m.broadcastLocked()
	m.mu.Unlock()
	m.stats.Int("deliver").Add(1)
	m.stats.Int("elements").Add(int64(len(msg.Payload)))
	return nil
}

// Recv returns the payload of the next in-order message from src on
// tag, blocking until it has been delivered or the context is done.
func (m *Mailbox) Recv(ctx context.Context, src, tag int) ([]float64, error) {
	key := streamKey{src, tag}
	m.mu.Lock()
	for {
		seq := m.next[key]
		if msg, ok := m.pending[key][seq]; ok {
			delete(m.pending[key], seq)
			m.next[key] = seq + 1
			m.mu.Unlock()
			return msg.Payload, nil
		}
		if err := m.waitLocked(ctx); err != nil {
			m.mu.Unlock()
			return nil, err
		}
	}
}

// broadcastLocked wakes all waiters. Callers must hold m.mu.
func (m *Mailbox) broadcastLocked() {
	if m.waitc != nil {
		close(m.waitc)
		m.waitc = nil
	}
}

// waitLocked blocks until the next broadcast or context completion.
// Callers must hold m.mu; the lock is released while waiting and
// reacquired before returning.
func (m *Mailbox) waitLocked(ctx context.Context) error {
	if m.waitc == nil {
		m.waitc = make(chan struct{})
	}
	waitc := m.waitc
	m.mu.Unlock()
	var err error
	select {
	case <-waitc:
	case <-ctx.Done():
		err = ctx.Err()
	}
	m.mu.Lock()
	return err
}
