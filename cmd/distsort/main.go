// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Distsort generates a uniform random dataset, distributes it across a
// set of ranks, and computes its global sum and globally sorted order
// via distributed sample sort. It prints the sum and the first and
// last 10 sorted elements for verification.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"

	"github.com/grailbio/base/log"
	"github.com/grailbio/bigmachine"
	"github.com/matin4kateb/distsort/exec"
)

func main() {
	var (
		n       = flag.Int("n", 1000000, "number of elements to generate")
		procs   = flag.Int("p", 4, "number of ranks")
		seed    = flag.Int64("seed", 42, "seed for dataset generation")
		samples = flag.Int("samples", 0, "per-rank sample count for pivot selection (0 selects p-1)")
		machine = flag.Bool("bigmachine", false, "run each rank on a bigmachine machine instead of a goroutine")
	)
	log.AddFlags()
	flag.Parse()

	log.Printf("generating %d elements (seed %d)", *n, *seed)
	r := rand.New(rand.NewSource(*seed))
	data := make([]float64, *n)
	for i := range data {
		data[i] = r.Float64()
	}

	job := exec.Job{
		Data:         data,
		Procs:        *procs,
		SampleCount:  *samples,
		GatherSorted: true,
	}
	ctx := context.Background()
	var (
		result *exec.Result
		err    error
	)
	if *machine {
		result, err = exec.Bigmachine(ctx, bigmachine.Local, job)
	} else {
		result, err = exec.Local(ctx, job)
	}
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("total sum: %v\n", result.Sum)
	head, tail := 10, 10
	if len(result.Sorted) < head {
		head, tail = len(result.Sorted), len(result.Sorted)
	}
	fmt.Printf("first %d elements: %v\n", head, result.Sorted[:head])
	fmt.Printf("last %d elements: %v\n", tail, result.Sorted[len(result.Sorted)-tail:])
}
