// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package distsort

import "testing"

func TestPartition(t *testing.T) {
	for _, c := range []struct {
		n, p int
		want []int
	}{
		{12, 3, []int{4, 4, 4}},
		{7, 3, []int{3, 2, 2}},
		{10, 4, []int{3, 3, 2, 2}},
		{0, 3, []int{0, 0, 0}},
		{2, 5, []int{1, 1, 0, 0, 0}},
		{1, 1, []int{1}},
	} {
		ranges, err := Partition(c.n, c.p)
		if err != nil {
			t.Fatalf("partition(%d, %d): %v", c.n, c.p, err)
		}
		offset := 0
		for rank, r := range ranges {
			if got, want := r.Len(), c.want[rank]; got != want {
				t.Errorf("partition(%d, %d) rank %d: got length %d, want %d", c.n, c.p, rank, got, want)
			}
			if got, want := r.Start, offset; got != want {
				t.Errorf("partition(%d, %d) rank %d: got start %d, want %d", c.n, c.p, rank, got, want)
			}
			offset = r.End
		}
		if offset != c.n {
			t.Errorf("partition(%d, %d): ranges cover %d elements", c.n, c.p, offset)
		}
	}
}

func TestPartitionInvalid(t *testing.T) {
	for _, c := range []struct{ n, p int }{
		{10, 0},
		{10, -1},
		{-1, 4},
	} {
		if _, err := Partition(c.n, c.p); err == nil {
			t.Errorf("partition(%d, %d): expected error", c.n, c.p)
		}
	}
}
