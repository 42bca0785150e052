// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package comm

import (
	"context"
	"fmt"

	"github.com/grailbio/base/errors"
)

// The collectives in this file are built on point-to-point transfer
// with the designated root as fan-in/fan-out hub. Group membership is
// static, so there is no election: callers name the root rank
// explicitly. Every collective is blocking; a rank returns only once
// its part of the exchange is complete.

// Broadcast distributes the root's payload to every rank. The root
// passes the payload; other ranks pass nil and receive the root's
// payload as the return value. The root's own return value is its
// input payload.
func Broadcast(ctx context.Context, t Transport, root, tag int, payload []float64) ([]float64, error) {
	if t.Rank() != root {
		return t.Recv(ctx, root, tag)
	}
	for dest := 0; dest < t.Size(); dest++ {
		if dest == root {
			continue
		}
		if err := t.Send(ctx, dest, tag, payload); err != nil {
			return nil, err
		}
	}
	return payload, nil
}

// Gather collects every rank's payload at the root. The root returns
// the payloads indexed by sender rank, its own contribution included
// without a self-send; other ranks return nil.
func Gather(ctx context.Context, t Transport, root, tag int, payload []float64) ([][]float64, error) {
	if t.Rank() != root {
		return nil, t.Send(ctx, root, tag, payload)
	}
	gathered := make([][]float64, t.Size())
	gathered[root] = payload
	for src := 0; src < t.Size(); src++ {
		if src == root {
			continue
		}
		var err error
		if gathered[src], err = t.Recv(ctx, src, tag); err != nil {
			return nil, err
		}
	}
	return gathered, nil
}

// Reduce sums every rank's value at the root. Only the root receives
// the reduction; other ranks return zero. Combination order is
// unspecified beyond being a sum of the per-rank values.
func Reduce(ctx context.Context, t Transport, root, tag int, value float64) (float64, error) {
	gathered, err := Gather(ctx, t, root, tag, []float64{value})
	if err != nil || t.Rank() != root {
		return 0, err
	}
	var total float64
	for src, payload := range gathered {
		if len(payload) != 1 {
			return 0, errors.E(errors.Fatal, fmt.Sprintf(
				"reduce: rank %d contributed %d values, expected 1", src, len(payload)))
		}
		total += payload[0]
	}
	return total, nil
}

// AllToAll exchanges one payload per (sender, receiver) pair:
// outbound[i] goes to rank i, and the returned slice holds the payload
// received from each rank, indexed by sender. The rank's own payload
// is moved directly. Counts are exchanged ahead of the data so that a
// shape disagreement between peers fails the run instead of stalling
// it; zero-length payloads are exchanged like any other.
//
// AllToAll returns only after payloads from all ranks have arrived, so
// it doubles as the synchronization barrier between partitioning and
// merging.
func AllToAll(ctx context.Context, t Transport, outbound [][]float64) ([][]float64, error) {
	if len(outbound) != t.Size() {
		return nil, errors.E(errors.Fatal, fmt.Sprintf(
			"alltoall: %d outbound payloads for %d ranks", len(outbound), t.Size()))
	}
	rank := t.Rank()
	for dest, payload := range outbound {
		if dest == rank {
			continue
		}
		if err := t.Send(ctx, dest, TagBucketCounts, []float64{float64(len(payload))}); err != nil {
			return nil, err
		}
		if err := t.Send(ctx, dest, TagBucketData, payload); err != nil {
			return nil, err
		}
	}
	inbound := make([][]float64, t.Size())
	inbound[rank] = outbound[rank]
	for src := range inbound {
		if src == rank {
			continue
		}
		count, err := t.Recv(ctx, src, TagBucketCounts)
		if err != nil {
			return nil, err
		}
		if len(count) != 1 {
			return nil, errors.E(errors.Fatal, fmt.Sprintf(
				"alltoall: malformed count from rank %d", src))
		}
		payload, err := t.Recv(ctx, src, TagBucketData)
		if err != nil {
			return nil, err
		}
		if len(payload) != int(count[0]) {
			return nil, errors.E(errors.Fatal, fmt.Sprintf(
				"alltoall: rank %d announced %d elements but sent %d",
				src, int(count[0]), len(payload)))
		}
		inbound[src] = payload
	}
	return inbound, nil
}
