// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package distsort

import "container/heap"

// Merge merges fragments, each individually sorted ascending, into a
// single sorted slice using a k-way heap merge. Empty and nil
// fragments are permitted. The fragments are not modified.
func Merge(fragments [][]float64) []float64 {
	var total int
	h := make(fragmentHeap, 0, len(fragments))
	for _, frag := range fragments {
		total += len(frag)
		if len(frag) > 0 {
			h = append(h, frag)
		}
	}
	heap.Init(&h)
	merged := make([]float64, 0, total)
	for len(h) > 0 {
		head := h[0]
		merged = append(merged, head[0])
		if len(head) > 1 {
			h[0] = head[1:]
			heap.Fix(&h, 0)
		} else {
			heap.Pop(&h)
		}
	}
	return merged
}

// fragmentHeap orders fragments by their head element.
type fragmentHeap [][]float64

func (h fragmentHeap) Len() int           { return len(h) }
func (h fragmentHeap) Less(i, j int) bool { return h[i][0] < h[j][0] }
func (h fragmentHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *fragmentHeap) Push(x interface{}) {
	*h = append(*h, x.([]float64))
}

func (h *fragmentHeap) Pop() interface{} {
	old := *h
	n := len(old)
	frag := old[n-1]
	*h = old[:n-1]
	return frag
}
