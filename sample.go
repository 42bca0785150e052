// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package distsort

// Sample returns k representative elements of the sorted chunk, taken
// at evenly spaced interior positions floor(j*(len-1)/(k+1)) for j in
// 1..k. Endpoints are excluded so that a rank's extreme values do not
// dominate pivot selection. If the chunk has k or fewer elements, a
// copy of the whole chunk is returned. Sampling is deterministic: the
// same chunk always yields the same sample.
func Sample(sorted []float64, k int) []float64 {
	if k <= 0 {
		return nil
	}
	if len(sorted) <= k {
		sample := make([]float64, len(sorted))
		copy(sample, sorted)
		return sample
	}
	sample := make([]float64, k)
	for j := 1; j <= k; j++ {
		sample[j-1] = sorted[j*(len(sorted)-1)/(k+1)]
	}
	return sample
}
