// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package distsort

import (
	"context"
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/matin4kateb/distsort/comm"
)

// Config parameterizes a run. The zero value is a valid configuration
// with rank 0 as root and the default sample count.
type Config struct {
	// Root is the designated coordinator rank: it selects pivots and
	// receives the global sum (and the gathered array, if requested).
	Root int
	// SampleCount is the number of samples each rank contributes to
	// pivot selection. Zero selects the default of size-1 samples per
	// rank. Larger counts partition skewed inputs more evenly at the
	// cost of a larger gather at the root.
	SampleCount int
	// GatherSorted requests that the final sorted chunks be collected
	// at the root, in rank order, for verification.
	GatherSorted bool
}

// Result is the per-rank outcome of a run. Sum and Gathered are
// populated at the root only.
type Result struct {
	// Sum is the global sum of all elements.
	Sum float64
	// Sorted is this rank's final chunk. The concatenation of all
	// ranks' Sorted in rank order is the globally sorted array.
	Sorted []float64
	// Gathered is the full globally sorted array, collected at the
	// root when Config.GatherSorted is set.
	Gathered []float64
}

// Run executes the summation and sample sort phases for one rank over
// its chunk of the global array. All ranks of a run must call Run with
// the same configuration; the collectives inside block until their
// peers arrive, so a rank that never calls Run stalls the others. The
// chunk is sorted in place and then replaced by the redistributed
// chunk. Empty chunks participate in every phase with zero-length
// payloads.
func Run(ctx context.Context, t comm.Transport, chunk []float64, config Config) (Result, error) {
	var (
		result Result
		size   = t.Size()
		root   = config.Root
		isRoot = t.Rank() == root
	)
	if root < 0 || root >= size {
		return result, errors.E(errors.Invalid, fmt.Sprintf("run: root rank %d out of range", root))
	}

	// Phase 1: sum reduction. Independent of the sort phases.
	total, err := comm.Reduce(ctx, t, root, comm.TagSum, Sum(chunk))
	if err != nil {
		return result, err
	}
	if isRoot {
		result.Sum = total
	}

	// Phase 2: local sort and sampling.
	sort.Float64s(chunk)
	k := config.SampleCount
	if k <= 0 {
		k = size - 1
	}

	// Phase 3: pivot selection at the root.
	samples, err := comm.Gather(ctx, t, root, comm.TagSamples, Sample(chunk, k))
	if err != nil {
		return result, err
	}
	var pivots []float64
	if isRoot {
		combined := make([]float64, 0, size*k)
		for _, sample := range samples {
			combined = append(combined, sample...)
		}
		pivots = SelectPivots(combined, size)
	}
	if pivots, err = comm.Broadcast(ctx, t, root, comm.TagPivots, pivots); err != nil {
		return result, err
	}
	if len(pivots) != size-1 {
		return result, errors.E(errors.Fatal, fmt.Sprintf(
			"run: received %d pivots for %d ranks", len(pivots), size))
	}

	// Phase 4: bucket split and all-to-all redistribution. Rank i
	// receives every rank's bucket i.
	fragments, err := comm.AllToAll(ctx, t, Split(chunk, pivots))
	if err != nil {
		return result, err
	}

	// Phase 5: final merge. Each fragment is a slice of a sorted
	// chunk, so a p-way merge suffices.
	result.Sorted = Merge(fragments)

	if config.GatherSorted {
		chunks, err := comm.Gather(ctx, t, root, comm.TagSorted, result.Sorted)
		if err != nil {
			return result, err
		}
		if isRoot {
			var n int
			for _, c := range chunks {
				n += len(c)
			}
			result.Gathered = make([]float64, 0, n)
			for _, c := range chunks {
				result.Gathered = append(result.Gathered, c...)
			}
		}
	}
	return result, nil
}
