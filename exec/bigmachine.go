// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package exec

import (
	"context"
	"encoding/gob"
	"fmt"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/bigmachine"
	"github.com/matin4kateb/distsort"
	"github.com/matin4kateb/distsort/comm"
	"github.com/matin4kateb/distsort/stats"
	"golang.org/x/sync/errgroup"
)

func init() {
	gob.Register(&worker{})
}

// Bigmachine runs the job with one bigmachine machine per rank. Each
// machine hosts a Worker service; ranks exchange messages by dialing
// their peers and delivering into the peer's mailbox, and the driver
// scatters chunks and collects results over the same RPC surface.
// Bigmachine also acts as the entry point for worker processes when
// the system starts machines as separate processes (for example
// bigmachine.Local), in which case it does not return.
func Bigmachine(ctx context.Context, system bigmachine.System, job Job) (*Result, error) {
	b := bigmachine.Start(system)
	defer b.Shutdown()
	return bigmachineRun(ctx, b, job)
}

func bigmachineRun(ctx context.Context, b *bigmachine.B, job Job) (*Result, error) {
	ranges, err := distsort.Partition(len(job.Data), job.Procs)
	if err != nil {
		return nil, err
	}
	machines, err := b.Start(ctx, job.Procs, bigmachine.Services{"Worker": &worker{}})
	if err != nil {
		return nil, err
	}
	if len(machines) < job.Procs {
		return nil, errors.E(errors.Fatal, fmt.Sprintf(
			"started %d machines, need %d", len(machines), job.Procs))
	}
	machines = machines[:job.Procs]
	addrs := make([]string, len(machines))
	for i, m := range machines {
		<-m.Wait(bigmachine.Running)
		if err := m.Err(); err != nil {
			return nil, fmt.Errorf("machine %s failed to start: %v", m.Addr, err)
		}
		addrs[i] = m.Addr
	}
	log.Printf("bigmachine: %d machines booted", len(machines))

	replies := make([]runReply, job.Procs)
	g, ctx := errgroup.WithContext(ctx)
	for rank := 0; rank < job.Procs; rank++ {
		rank := rank
		req := runRequest{
			Rank:         rank,
			Addrs:        addrs,
			Chunk:        job.Data[ranges[rank].Start:ranges[rank].End],
			SampleCount:  job.SampleCount,
			GatherSorted: job.GatherSorted,
		}
		g.Go(func() error {
			return machines[rank].RetryCall(ctx, "Worker.Run", req, &replies[rank])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	result := &Result{Sum: replies[0].Sum, Stats: make(stats.Values)}
	for _, reply := range replies {
		for name, value := range reply.Stats {
			result.Stats[name] += value
		}
	}
	if job.GatherSorted {
		result.Sorted = replies[0].Sorted
	}
	log.Printf("bigmachine: %d ranks done: %s", job.Procs, result.Stats)
	return result, nil
}

// runRequest carries one rank's program parameters to its machine.
type runRequest struct {
	// Rank is the identity this machine assumes for the run.
	Rank int
	// Addrs lists every rank's machine address, indexed by rank.
	Addrs []string
	// Chunk is the rank's slice of the global array.
	Chunk []float64
	// SampleCount and GatherSorted mirror the job's settings.
	SampleCount  int
	GatherSorted bool
}

// runReply is the per-rank result returned to the driver.
type runReply struct {
	// Sum is the global sum; populated by rank 0 only.
	Sum float64
	// Sorted is the gathered globally sorted array; populated by rank
	// 0 only, and only when the job requested the gather.
	Sorted []float64
	// Stats snapshots the machine's transport counters.
	Stats stats.Values
}

// worker is the service hosted on every machine. It owns the
// machine's mailbox and dials peers on demand.
type worker struct {
	// Exported just satisfies gob's persnickety nature: we need at least
	// one exported field.
	Exported struct{}

	b     *bigmachine.B
	stats *stats.Map
	box   *comm.Mailbox

	mu    sync.Mutex
	peers map[string]*bigmachine.Machine
}

// Init is called by bigmachine when the service is installed on a
// machine.
func (w *worker) Init(b *bigmachine.B) error {
	w.b = b
	w.stats = stats.NewMap()
	w.box = comm.NewMailbox(w.stats)
	w.peers = make(map[string]*bigmachine.Machine)
	return nil
}

// Deliver accepts a message from a peer rank into this machine's
// mailbox. Delivery is idempotent at the transport level: bigmachine
// retries surface as duplicate sequence numbers, which the mailbox
// reorder buffer absorbs.
func (w *worker) Deliver(ctx context.Context, msg comm.Message, _ *struct{}) error {
	return w.box.Deliver(msg)
}

// Run executes the rank program on this machine.
func (w *worker) Run(ctx context.Context, req runRequest, reply *runReply) error {
	if req.Rank < 0 || req.Rank >= len(req.Addrs) {
		return errors.E(errors.Invalid, fmt.Sprintf("rank %d out of range", req.Rank))
	}
	t := &machineTransport{
		worker: w,
		rank:   req.Rank,
		addrs:  req.Addrs,
		seq:    make(map[stream]int),
	}
	result, err := distsort.Run(ctx, t, req.Chunk, distsort.Config{
		SampleCount:  req.SampleCount,
		GatherSorted: req.GatherSorted,
	})
	if err != nil {
		return err
	}
	reply.Sum = result.Sum
	reply.Sorted = result.Gathered
	reply.Stats = w.stats.Values()
	return nil
}

func (w *worker) dial(ctx context.Context, addr string) (*bigmachine.Machine, error) {
	w.mu.Lock()
	m := w.peers[addr]
	w.mu.Unlock()
	if m != nil {
		return m, nil
	}
	m, err := w.b.Dial(ctx, addr)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	w.peers[addr] = m
	w.mu.Unlock()
	return m, nil
}

// stream identifies an outbound (dest, tag) message stream.
type stream struct {
	dest, tag int
}

// machineTransport sends by delivering into the destination machine's
// mailbox over RPC and receives from the local mailbox.
type machineTransport struct {
	worker *worker
	rank   int
	addrs  []string
	seq    map[stream]int
}

func (t *machineTransport) Rank() int { return t.rank }

func (t *machineTransport) Size() int { return len(t.addrs) }

func (t *machineTransport) Send(ctx context.Context, dest, tag int, payload []float64) error {
	if dest < 0 || dest >= len(t.addrs) {
		return errors.E(errors.Invalid, fmt.Sprintf("send: no such rank %d", dest))
	}
	key := stream{dest, tag}
	seq := t.seq[key]
	t.seq[key] = seq + 1
	msg := comm.NewMessage(t.rank, dest, tag, seq, payload)
	if dest == t.rank {
		return t.worker.box.Deliver(msg)
	}
	m, err := t.worker.dial(ctx, t.addrs[dest])
	if err != nil {
		return err
	}
	t.worker.stats.Int("send").Add(1)
	return m.RetryCall(ctx, "Worker.Deliver", msg, nil)
}

func (t *machineTransport) Recv(ctx context.Context, src, tag int) ([]float64, error) {
	if src < 0 || src >= len(t.addrs) {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("recv: no such rank %d", src))
	}
	return t.worker.box.Recv(ctx, src, tag)
}
