// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package comm

import (
	"context"
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/matin4kateb/distsort/stats"
)

// A Mesh is an in-process transport fabric connecting p ranks through
// mailboxes. It backs single-process runs and tests; every rank's
// Transport shares the mesh, and delivery is a direct mailbox insert.
type Mesh struct {
	boxes []*Mailbox
	stats *stats.Map
}

// NewMesh returns a mesh connecting p ranks.
func NewMesh(p int) (*Mesh, error) {
	if p <= 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("mesh: nonpositive rank count %d", p))
	}
	m := &Mesh{stats: stats.NewMap()}
	m.boxes = make([]*Mailbox, p)
	for i := range m.boxes {
		m.boxes[i] = NewMailbox(m.stats)
	}
	return m, nil
}

// Stats returns the mesh's traffic counters, shared by all ranks.
func (m *Mesh) Stats() *stats.Map {
	return m.stats
}

// Transport returns the transport endpoint for the given rank.
func (m *Mesh) Transport(rank int) Transport {
	return &meshTransport{
		mesh: m,
		rank: rank,
		seq:  make(map[streamKey]int),
	}
}

type meshTransport struct {
	mesh *Mesh
	rank int
	// seq numbers outbound messages per (dest, tag) stream. The
	// transport is owned by a single rank goroutine, so no lock.
	seq map[streamKey]int
}

func (t *meshTransport) Rank() int { return t.rank }

func (t *meshTransport) Size() int { return len(t.mesh.boxes) }

func (t *meshTransport) Send(ctx context.Context, dest, tag int, payload []float64) error {
	if dest < 0 || dest >= len(t.mesh.boxes) {
		return errors.E(errors.Invalid, fmt.Sprintf("send: no such rank %d", dest))
	}
	key := streamKey{dest, tag}
	seq := t.seq[key]
	t.seq[key] = seq + 1
	t.mesh.stats.Int("send").Add(1)
	return t.mesh.boxes[dest].Deliver(NewMessage(t.rank, dest, tag, seq, payload))
}

func (t *meshTransport) Recv(ctx context.Context, src, tag int) ([]float64, error) {
	if src < 0 || src >= len(t.mesh.boxes) {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("recv: no such rank %d", src))
	}
	return t.mesh.boxes[t.rank].Recv(ctx, src, tag)
}
