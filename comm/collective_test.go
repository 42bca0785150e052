// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package comm

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"golang.org/x/sync/errgroup"
)

// eachRank runs fn concurrently for every rank of a fresh p-rank mesh
// and waits for all to finish.
func eachRank(t *testing.T, p int, fn func(t Transport) error) *Mesh {
	t.Helper()
	mesh, err := NewMesh(p)
	if err != nil {
		t.Fatal(err)
	}
	var g errgroup.Group
	for rank := 0; rank < p; rank++ {
		rank := rank
		g.Go(func() error {
			return fn(mesh.Transport(rank))
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	return mesh
}

func TestBroadcast(t *testing.T) {
	const p = 5
	want := []float64{3, 1, 4}
	eachRank(t, p, func(tr Transport) error {
		var payload []float64
		if tr.Rank() == 2 {
			payload = want
		}
		got, err := Broadcast(context.Background(), tr, 2, TagPivots, payload)
		if err != nil {
			return err
		}
		if !reflect.DeepEqual(got, want) {
			return fmt.Errorf("rank %d: got %v, want %v", tr.Rank(), got, want)
		}
		return nil
	})
}

func TestGather(t *testing.T) {
	const p = 4
	eachRank(t, p, func(tr Transport) error {
		payload := []float64{float64(tr.Rank()), float64(tr.Rank())}
		gathered, err := Gather(context.Background(), tr, 0, TagSamples, payload)
		if err != nil {
			return err
		}
		if tr.Rank() != 0 {
			if gathered != nil {
				return fmt.Errorf("rank %d: unexpected gather %v", tr.Rank(), gathered)
			}
			return nil
		}
		for src, got := range gathered {
			want := []float64{float64(src), float64(src)}
			if !reflect.DeepEqual(got, want) {
				return fmt.Errorf("src %d: got %v, want %v", src, got, want)
			}
		}
		return nil
	})
}

func TestReduce(t *testing.T) {
	const p = 6
	eachRank(t, p, func(tr Transport) error {
		total, err := Reduce(context.Background(), tr, 0, TagSum, float64(tr.Rank()+1))
		if err != nil {
			return err
		}
		if tr.Rank() != 0 {
			if total != 0 {
				return fmt.Errorf("rank %d: unexpected total %v", tr.Rank(), total)
			}
			return nil
		}
		if want := float64(p * (p + 1) / 2); total != want {
			return fmt.Errorf("got %v, want %v", total, want)
		}
		return nil
	})
}

func TestAllToAll(t *testing.T) {
	const p = 4
	mesh := eachRank(t, p, func(tr Transport) error {
		// Rank r sends the payload {r, dest} to each dest; empty to
		// itself+1 mod p to exercise zero-length exchange.
		outbound := make([][]float64, p)
		for dest := range outbound {
			if dest == (tr.Rank()+1)%p {
				continue
			}
			outbound[dest] = []float64{float64(tr.Rank()), float64(dest)}
		}
		inbound, err := AllToAll(context.Background(), tr, outbound)
		if err != nil {
			return err
		}
		for src, got := range inbound {
			if tr.Rank() == (src+1)%p {
				if len(got) != 0 {
					return fmt.Errorf("rank %d: expected empty payload from %d, got %v", tr.Rank(), src, got)
				}
				continue
			}
			want := []float64{float64(src), float64(tr.Rank())}
			if !reflect.DeepEqual(got, want) {
				return fmt.Errorf("rank %d: got %v from %d, want %v", tr.Rank(), got, src, want)
			}
		}
		return nil
	})
	if got := mesh.Stats().Int("mismatch").Get(); got != 0 {
		t.Errorf("got %d checksum mismatches", got)
	}
}

func TestAllToAllShape(t *testing.T) {
	mesh, err := NewMesh(3)
	if err != nil {
		t.Fatal(err)
	}
	tr := mesh.Transport(0)
	if _, err := AllToAll(context.Background(), tr, make([][]float64, 2)); err == nil {
		t.Error("expected shape error")
	}
}

func TestMeshInvalid(t *testing.T) {
	for _, p := range []int{0, -2} {
		if _, err := NewMesh(p); err == nil {
			t.Errorf("mesh(%d): expected error", p)
		}
	}
}
