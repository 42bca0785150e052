// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package distsort

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// A Range is the half-open interval [Start, End) of the global array
// owned by one rank.
type Range struct {
	Start, End int
}

// Len returns the number of elements in the range.
func (r Range) Len() int { return r.End - r.Start }

// Partition splits n elements into p contiguous ranges, one per rank.
// The first n mod p ranks receive one extra element, so the range
// lengths always sum to n. Partitioning is pure arithmetic: every rank
// computes the same ranges with no communication. When p > n, the
// trailing ranks receive empty ranges.
func Partition(n, p int) ([]Range, error) {
	if p <= 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("partition: nonpositive rank count %d", p))
	}
	if n < 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("partition: negative element count %d", n))
	}
	var (
		ranges = make([]Range, p)
		size   = n / p
		extra  = n % p
		offset = 0
	)
	for rank := range ranges {
		end := offset + size
		if rank < extra {
			end++
		}
		ranges[rank] = Range{offset, end}
		offset = end
	}
	return ranges, nil
}
