// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package comm defines the message passing substrate underneath the
// distributed sum and sample sort phases. A Transport provides a rank
// identity and reliable, ordered point-to-point transfer of float64
// payloads between the fixed set of ranks participating in a run; the
// collective operations (broadcast, gather, reduce, all-to-all) are
// built on top of point-to-point transfer in this package and are thus
// available uniformly across transport implementations.
package comm

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/grailbio/base/errors"
	"github.com/spaolacci/murmur3"
)

// Tags separate interleaved message streams between the same pair of
// ranks. Each phase of the computation uses its own tag so that, for
// example, a sum reduction cannot consume a sample destined for pivot
// selection.
const (
	TagSum = iota + 1
	TagSamples
	TagPivots
	TagBucketCounts
	TagBucketData
	TagSorted
)

// A Transport connects one rank to its peers. Implementations must
// provide reliable, exactly-once delivery of each message, ordered per
// (sender, receiver, tag) stream. Send does not block on the receiver
// entering Recv: delivery is into a mailbox on the receiving side.
//
// A Transport is used by a single rank goroutine; implementations need
// not make Send and Recv safe for concurrent use by multiple callers.
type Transport interface {
	// Rank returns the identity of this transport's rank in [0, Size).
	Rank() int
	// Size returns the total number of ranks in the run.
	Size() int
	// Send transfers the payload to the destination rank.
	Send(ctx context.Context, dest, tag int, payload []float64) error
	// Recv returns the next payload from the source rank on the
	// given tag, blocking until one is delivered or the context is
	// canceled.
	Recv(ctx context.Context, src, tag int) ([]float64, error)
}

// A Message is one point-to-point transfer between two ranks. Seq
// numbers order messages within a (From, To, Tag) stream so that
// mailboxes can restore sender order even when the underlying
// transport delivers concurrently. Sum is the murmur3 checksum of the
// payload, verified on delivery.
type Message struct {
	From, To, Tag, Seq int
	Payload            []float64
	Sum                uint32
}

// NewMessage constructs a checksummed message.
func NewMessage(from, to, tag, seq int, payload []float64) Message {
	return Message{
		From:    from,
		To:      to,
		Tag:     tag,
		Seq:     seq,
		Payload: payload,
		Sum:     Checksum(payload),
	}
}

// Checksum returns the murmur3 sum of the payload's bit pattern. It is
// carried on every message and re-verified on delivery so that payload
// corruption surfaces as an integrity error rather than as a silently
// wrong answer.
func Checksum(payload []float64) uint32 {
	var (
		h = murmur3.New32()
		b [8]byte
	)
	for _, v := range payload {
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
		h.Write(b[:])
	}
	return h.Sum32()
}

func (m Message) verify() error {
	if sum := Checksum(m.Payload); sum != m.Sum {
		return errors.E(errors.Integrity, fmt.Errorf(
			"message %d->%d tag %d seq %d: computed checksum %x but expected %x",
			m.From, m.To, m.Tag, m.Seq, sum, m.Sum))
	}
	return nil
}
