// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package distsort

import "sort"

// SelectPivots chooses p-1 monotonically non-decreasing pivot values
// from the combined sample gathered at the root. The sample is sorted
// and pivots are taken at rank positions floor(j*m/p) for j in 1..p-1,
// where m is the combined sample size. When m < p the selected
// positions collide and pivots repeat; the resulting empty buckets are
// tolerated downstream. An empty sample yields p-1 zero pivots, which
// only occurs when the global array is itself empty.
//
// The input sample is not modified.
func SelectPivots(samples []float64, p int) []float64 {
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)
	pivots := make([]float64, p-1)
	if len(sorted) == 0 {
		return pivots
	}
	for j := 1; j < p; j++ {
		pivots[j-1] = sorted[j*len(sorted)/p]
	}
	return pivots
}
