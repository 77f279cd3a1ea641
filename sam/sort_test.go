// Copyright ©2024 the sam-io authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"fmt"
	"math/rand"
	"sort"

	"gopkg.in/check.v1"
)

func (s *S) TestParallelStableSortByCoordinate(c *check.C) {
	refs := []*Reference{
		{id: 0, name: "chr1", lRef: 1000},
		{id: 1, name: "chr2", lRef: 1000},
	}

	rnd := rand.New(rand.NewSource(1))
	recs := make([]*Record, 1000)
	for i := range recs {
		var ref *Reference
		pos := -1
		if rnd.Intn(10) != 0 {
			ref = refs[rnd.Intn(len(refs))]
			pos = rnd.Intn(1000)
		}
		recs[i] = &Record{
			Name:    fmt.Sprintf("r%04d", i),
			Ref:     ref,
			Pos:     pos,
			MatePos: -1,
		}
	}

	By(CoordinateLess).ParallelStableSort(recs)

	c.Check(sort.SliceIsSorted(recs, func(i, j int) bool {
		return CoordinateLess(recs[i], recs[j])
	}), check.Equals, true)

	// Unmapped records sort after all mapped records.
	seenUnmapped := false
	for _, r := range recs {
		if r.Ref == nil {
			seenUnmapped = true
		} else {
			c.Check(seenUnmapped, check.Equals, false)
		}
	}
}

func (s *S) TestParallelStableSortIsStable(c *check.C) {
	ref := &Reference{id: 0, name: "chr1", lRef: 1000}
	recs := make([]*Record, 500)
	for i := range recs {
		recs[i] = &Record{
			Name:    fmt.Sprintf("r%04d", i),
			Ref:     ref,
			Pos:     i % 5, // Many equal keys.
			MatePos: -1,
		}
	}

	By(CoordinateLess).ParallelStableSort(recs)

	// Equal positions keep their original relative order.
	for i := 1; i < len(recs); i++ {
		if recs[i-1].Pos == recs[i].Pos {
			c.Check(recs[i-1].Name < recs[i].Name, check.Equals, true)
		}
	}
}

func (s *S) TestSortByQueryName(c *check.C) {
	recs := []*Record{
		{Name: "r003"},
		{Name: "r001"},
		{Name: "r002"},
	}
	By(QueryNameLess).ParallelStableSort(recs)
	c.Check(recs[0].Name, check.Equals, "r001")
	c.Check(recs[1].Name, check.Equals, "r002")
	c.Check(recs[2].Name, check.Equals, "r003")
}
