// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package distsort

// Split partitions a sorted chunk into len(pivots)+1 contiguous
// buckets by pivot range: bucket 0 holds x < pivots[0], bucket i holds
// pivots[i-1] <= x < pivots[i], and the last bucket holds
// x >= pivots[len(pivots)-1]. Because the chunk is sorted, boundaries
// advance monotonically in a single linear scan. The returned buckets
// alias the chunk; their concatenation in index order is the chunk
// itself, so no element is lost or duplicated. Repeated pivots produce
// empty buckets.
func Split(sorted []float64, pivots []float64) [][]float64 {
	buckets := make([][]float64, len(pivots)+1)
	start := 0
	for i, pivot := range pivots {
		end := start
		for end < len(sorted) && sorted[end] < pivot {
			end++
		}
		buckets[i] = sorted[start:end]
		start = end
	}
	buckets[len(pivots)] = sorted[start:]
	return buckets
}
