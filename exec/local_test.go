// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package exec

import (
	"context"
	"math/rand"
	"reflect"
	"sort"
	"testing"
)

func TestLocal(t *testing.T) {
	result, err := Local(context.Background(), Job{
		Data:         []float64{5, 3, 8, 1, 9, 2, 7, 4, 6, 0, 11, 10},
		Procs:        3,
		GatherSorted: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := result.Sum, 66.0; got != want {
		t.Errorf("got sum %v, want %v", got, want)
	}
	want := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	if !reflect.DeepEqual(result.Sorted, want) {
		t.Errorf("got %v, want %v", result.Sorted, want)
	}
	if got := result.Stats["mismatch"]; got != 0 {
		t.Errorf("got %d checksum mismatches", got)
	}
}

func TestLocalLarge(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	data := make([]float64, 10000)
	var direct float64
	for i := range data {
		data[i] = r.NormFloat64()
		direct += data[i]
	}
	result, err := Local(context.Background(), Job{
		Data:         data,
		Procs:        8,
		SampleCount:  32,
		GatherSorted: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := result.Sum; got < direct-1e-6 || got > direct+1e-6 {
		t.Errorf("got sum %v, want %v", got, direct)
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	if !reflect.DeepEqual(result.Sorted, sorted) {
		t.Error("sorted output disagrees with direct sort")
	}
}

func TestLocalLeavesDataUnmodified(t *testing.T) {
	data := []float64{3, 1, 2}
	orig := append([]float64(nil), data...)
	if _, err := Local(context.Background(), Job{Data: data, Procs: 2}); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(data, orig) {
		t.Errorf("job data modified: %v", data)
	}
}

func TestLocalInvalid(t *testing.T) {
	if _, err := Local(context.Background(), Job{Data: []float64{1}, Procs: 0}); err == nil {
		t.Error("expected configuration error")
	}
}
