// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package distsort

// Sum returns the sum of the chunk's elements. The accumulation order
// is the chunk's element order; the result is exact up to float64
// rounding. An empty chunk sums to zero.
func Sum(chunk []float64) float64 {
	var sum float64
	for _, v := range chunk {
		sum += v
	}
	return sum
}
