// Copyright ©2024 the sam-io authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"sort"

	psort "github.com/exascience/pargo/sort"
)

// By is a record ordering predicate.
type By func(r1, r2 *Record) bool

// CoordinateLess orders records by reference then position, placing
// unmapped records last.
func CoordinateLess(r1, r2 *Record) bool {
	id1 := r1.RefID()
	id2 := r2.RefID()
	switch {
	case id1 < id2:
		return id1 >= 0
	case id2 < id1:
		return id2 < 0
	default:
		return r1.Pos < r2.Pos
	}
}

// QueryNameLess orders records by query name.
func QueryNameLess(r1, r2 *Record) bool {
	return r1.Name < r2.Name
}

type recordSorter struct {
	recs []*Record
	by   By
}

func (s recordSorter) SequentialSort(i, j int) {
	recs, by := s.recs[i:j], s.by
	sort.SliceStable(recs, func(i, j int) bool {
		return by(recs[i], recs[j])
	})
}

func (s recordSorter) NewTemp() psort.StableSorter {
	return recordSorter{make([]*Record, len(s.recs)), s.by}
}

func (s recordSorter) Len() int {
	return len(s.recs)
}

func (s recordSorter) Less(i, j int) bool {
	return s.by(s.recs[i], s.recs[j])
}

func (s recordSorter) Assign(p psort.StableSorter) func(i, j, len int) {
	dst, src := s.recs, p.(recordSorter).recs
	return func(i, j, len int) {
		for k := 0; k < len; k++ {
			dst[i+k] = src[j+k]
		}
	}
}

// ParallelStableSort sorts recs according to the By ordering, keeping
// the input order of equal records.
func (by By) ParallelStableSort(recs []*Record) {
	psort.StableSort(recordSorter{recs, by})
}
