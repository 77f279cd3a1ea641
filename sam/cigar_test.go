// Copyright ©2024 the sam-io authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"errors"

	"gopkg.in/check.v1"
)

var cigarTests = []struct {
	text   string
	cigar  Cigar
	length int
	valid  bool
}{
	{
		text:  "*",
		cigar: nil,
		valid: true,
	},
	{
		text: "10M5I3M",
		cigar: Cigar{
			NewCigarOp(CigarMatch, 10),
			NewCigarOp(CigarInsertion, 5),
			NewCigarOp(CigarMatch, 3),
		},
		length: 18,
		valid:  true,
	},
	{
		text: "3S10M2D4M1S",
		cigar: Cigar{
			NewCigarOp(CigarSoftClipped, 3),
			NewCigarOp(CigarMatch, 10),
			NewCigarOp(CigarDeletion, 2),
			NewCigarOp(CigarMatch, 4),
			NewCigarOp(CigarSoftClipped, 1),
		},
		length: 18,
		valid:  true,
	},
	{
		text: "5H2=1X3H",
		cigar: Cigar{
			NewCigarOp(CigarHardClipped, 5),
			NewCigarOp(CigarEqual, 2),
			NewCigarOp(CigarMismatch, 1),
			NewCigarOp(CigarHardClipped, 3),
		},
		length: 3,
		valid:  true,
	},
	{
		// Hard clip not at an end.
		text: "2M3H2M",
		cigar: Cigar{
			NewCigarOp(CigarMatch, 2),
			NewCigarOp(CigarHardClipped, 3),
			NewCigarOp(CigarMatch, 2),
		},
		length: 4,
		valid:  false,
	},
}

func (s *S) TestParseCigar(c *check.C) {
	for _, t := range cigarTests {
		cg, err := ParseCigar([]byte(t.text))
		c.Assert(err, check.Equals, nil, check.Commentf("cigar %q", t.text))
		c.Check(cg, check.DeepEquals, t.cigar)
		c.Check(cg.IsValid(t.length), check.Equals, t.valid)
		if t.text != "*" {
			c.Check(cg.String(), check.Equals, t.text)
		} else {
			c.Check(cg.String(), check.Equals, "*")
		}
	}
}

func (s *S) TestParseCigarErrors(c *check.C) {
	for _, text := range []string{
		"",
		"0M",
		"10",
		"M",
		"5Y",
		"4M3",
		"10M-5I",
		"1234567890M",
	} {
		cg, err := ParseCigar([]byte(text))
		c.Check(cg, check.IsNil)
		var pe *ParseError
		c.Assert(errors.As(err, &pe), check.Equals, true, check.Commentf("cigar %q", text))
		c.Check(pe.Kind, check.Equals, InvalidCigar, check.Commentf("cigar %q", text))
	}
}

func (s *S) TestCigarLengths(c *check.C) {
	cg, err := ParseCigar([]byte("3S6M1P1I4M"))
	c.Assert(err, check.Equals, nil)
	ref, read := cg.Lengths()
	c.Check(ref, check.Equals, 10)
	c.Check(read, check.Equals, 14)
}

var endTests = []struct {
	cigar Cigar
	end   int
}{
	{
		cigar: Cigar{
			NewCigarOp(CigarMatch, 20),
			NewCigarOp(CigarBack, 5),
			NewCigarOp(CigarMatch, 20),
		},
		end: 35,
	},
	{
		cigar: Cigar{
			NewCigarOp(CigarMatch, 10),
			NewCigarOp(CigarBack, 3),
			NewCigarOp(CigarMatch, 11),
		},
		end: 18,
	},
	{
		cigar: Cigar{
			NewCigarOp(CigarMatch, 3),
			NewCigarOp(CigarHardClipped, 10),
		},
		end: 3,
	},
	{
		cigar: Cigar{
			NewCigarOp(CigarMatch, 3),
			NewCigarOp(CigarSkipped, 10),
		},
		end: 13,
	},
	{
		cigar: Cigar{
			NewCigarOp(CigarSkipped, 10),
			NewCigarOp(CigarMatch, 3),
		},
		end: 13,
	},
}

func (s *S) TestEnd(c *check.C) {
	for _, t := range endTests {
		r := &Record{Cigar: t.cigar}
		c.Check(r.End(), check.Equals, t.end)
	}
}
