// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

/*
	Package distsort implements distributed summation and sample
	sorting of large float64 arrays over a fixed set of cooperating
	ranks. The array is never materialized whole on any rank: it exists
	only as the union of per-rank chunks, and the ranks cooperate
	through a message passing substrate (package comm) to compute the
	global sum and a globally sorted ordering.

	The sort is a classic sample sort. Every rank sorts its chunk
	locally and contributes evenly spaced samples; the designated root
	rank sorts the combined sample and selects p-1 pivots, which are
	broadcast back. Each rank splits its sorted chunk into p buckets by
	pivot range, the buckets are exchanged all-to-all so that rank i
	ends up with every rank's bucket i, and a final p-way merge leaves
	each rank with one sorted chunk. The concatenation of chunks in
	rank order is the globally sorted array.

	Ranks can run as goroutines within one process (package exec's
	local executor) or as separate machines managed by bigmachine
	(package exec's bigmachine executor). The algorithm is identical in
	either case; only the transport differs.
*/
package distsort
