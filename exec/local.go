// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package exec

import (
	"context"

	"github.com/grailbio/base/log"
	"github.com/matin4kateb/distsort"
	"github.com/matin4kateb/distsort/comm"
	"golang.org/x/sync/errgroup"
)

// Local runs the job's ranks as goroutines connected by an in-process
// mesh. Each rank receives a copy of its chunk, so the job's dataset
// is left unmodified. Local returns once every rank has completed or
// any rank has failed; a failure cancels the remaining ranks through
// the group context.
func Local(ctx context.Context, job Job) (*Result, error) {
	ranges, err := distsort.Partition(len(job.Data), job.Procs)
	if err != nil {
		return nil, err
	}
	mesh, err := comm.NewMesh(job.Procs)
	if err != nil {
		return nil, err
	}
	results := make([]distsort.Result, job.Procs)
	g, ctx := errgroup.WithContext(ctx)
	for rank := 0; rank < job.Procs; rank++ {
		rank := rank
		chunk := append([]float64(nil), job.Data[ranges[rank].Start:ranges[rank].End]...)
		g.Go(func() error {
			var err error
			results[rank], err = distsort.Run(ctx, mesh.Transport(rank), chunk, distsort.Config{
				SampleCount:  job.SampleCount,
				GatherSorted: job.GatherSorted,
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	result := &Result{
		Sum:   results[0].Sum,
		Stats: mesh.Stats().Values(),
	}
	if job.GatherSorted {
		result.Sorted = results[0].Gathered
	}
	log.Printf("local: %d ranks done: %s", job.Procs, result.Stats)
	return result, nil
}
