// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package exec runs distributed sum-sort jobs. A Job names the
// root-side dataset and the rank count; executors place the ranks
// either on goroutines within this process (Local) or on bigmachine
// machines (Bigmachine), scatter contiguous chunks to them per the
// partition arithmetic, and collect the results at rank 0.
package exec

import "github.com/matin4kateb/distsort/stats"

// A Job describes one distributed sum-sort run.
type Job struct {
	// Data is the dataset, held by the driver and scattered to ranks
	// in contiguous chunks.
	Data []float64
	// Procs is the number of ranks.
	Procs int
	// SampleCount is the per-rank sample count for pivot selection;
	// zero selects the default of Procs-1.
	SampleCount int
	// GatherSorted requests the globally sorted array be collected at
	// the root and returned in Result.Sorted.
	GatherSorted bool
}

// A Result is the driver-side outcome of a job.
type Result struct {
	// Sum is the global sum of the dataset.
	Sum float64
	// Sorted is the globally sorted dataset, present when the job
	// requested the verification gather.
	Sorted []float64
	// Stats aggregates transport counters across all ranks.
	Stats stats.Values
}
