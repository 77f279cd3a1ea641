// Copyright ©2024 the sam-io authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"errors"

	"gopkg.in/check.v1"
)

// Header lines that must serialize back to their input text.
var headerLineTests = []string{
	"@HD\tVN:1.5\tSO:coordinate",
	"@HD\tVN:1.6\tGO:query\tpb:3.0.1",
	"@SQ\tSN:ref\tLN:45",
	"@SQ\tSN:chr1\tLN:248956422\tM5:6aef897c3d6ff0c78aff06ac189178dd\tAS:GRCh38\tSP:Homo sapiens",
	"@SQ\tSN:chr2\tLN:1000\tUR:http://example.com/chr2.fa",
	"@RG\tID:rg1\tCN:core\tDT:2010-06-01\tPI:400\tPL:ILLUMINA\tPU:unit1\tSM:sample1",
	"@RG\tID:rg2\tLB:lib2\tPG:bwa",
	"@PG\tID:bwa\tPN:bwa\tCL:bwa mem ref.fa reads.fq\tVN:0.7.17",
	"@PG\tID:samtools\tPN:samtools\tPP:bwa\tVN:1.9",
	"@CO\tfree text, tabs\tallowed",
}

func (s *S) TestHeaderLineRoundTrip(c *check.C) {
	for _, text := range headerLineTests {
		rec, err := ParseHeaderLine([]byte(text))
		c.Assert(err, check.Equals, nil, check.Commentf("line %q", text))
		c.Check(rec.String(), check.Equals, text)
	}
}

var headerLineErrorTests = []struct {
	text string
	kind ErrorKind
}{
	{text: "@ZZ\tID:x", kind: UnknownHeaderType},
	{text: "@sq\tSN:ref\tLN:45", kind: UnknownHeaderType},
	{text: "@HD\tSO:coordinate", kind: MissingRequiredTag},
	{text: "@HD\tVN:frobnitz", kind: MalformedField},
	{text: "@HD\tVN:1.5\tVN:1.6", kind: DuplicateTag},
	{text: "@SQ\tSN:ref", kind: MissingRequiredTag},
	{text: "@SQ\tLN:45", kind: MissingRequiredTag},
	{text: "@SQ\tSN:ref\tLN:fourtyfive", kind: MalformedField},
	{text: "@SQ\tSN:ref\tLN:0", kind: MalformedField},
	{text: "@SQ\tSN:*\tLN:45", kind: MalformedField},
	{text: "@SQ\tSN:ref\tLN:45\tM5:xyz", kind: InvalidHexTag},
	{text: "@SQ\tSN:ref\tLN:45\tM5:6aef897c3d6ff0c78aff06ac189178", kind: InvalidHexTag},
	{text: "@SQ\tSN:ref\tLN:45\tM5:6aef897c3d6ff0c78aff06ac189178dddddd", kind: InvalidHexTag},
	{text: "@SQ\tSN:ref\tLN:45\tSN:ref2", kind: DuplicateTag},
	{text: "@RG\tSM:sample1", kind: MissingRequiredTag},
	{text: "@PG\tPN:bwa", kind: MissingRequiredTag},
	{text: "@CO", kind: MalformedField},
	{text: "@SQ\tSN\tLN:45", kind: MalformedField},
}

func (s *S) TestHeaderLineErrors(c *check.C) {
	for _, t := range headerLineErrorTests {
		_, err := ParseHeaderLine([]byte(t.text))
		var pe *ParseError
		c.Assert(errors.As(err, &pe), check.Equals, true, check.Commentf("line %q", t.text))
		c.Check(pe.Kind, check.Equals, t.kind, check.Commentf("line %q", t.text))
	}
}

func (s *S) TestMarshalRegroupsInterleavedLines(c *check.C) {
	h, err := NewHeader([]byte("@SQ\tSN:chr1\tLN:1000\n@CO\tbetween\n@SQ\tSN:chr2\tLN:2000\n"), nil)
	c.Assert(err, check.Equals, nil)
	got, err := h.MarshalText()
	c.Assert(err, check.Equals, nil)
	c.Check(string(got), check.Equals, "@SQ\tSN:chr1\tLN:1000\n@SQ\tSN:chr2\tLN:2000\n@CO\tbetween\n")
}

func (s *S) TestSecondMetadataLine(c *check.C) {
	h, err := NewHeader([]byte("@HD\tVN:1.5\n@HD\tVN:1.6\n"), nil)
	c.Check(h, check.IsNil)
	var pe *ParseError
	c.Assert(errors.As(err, &pe), check.Equals, true)
	c.Check(pe.Kind, check.Equals, DuplicateTag)
	c.Check(pe.Line, check.Equals, 2)
}

func (s *S) TestHeaderRoundTrip(c *check.C) {
	text := []byte(`@HD	VN:1.5	SO:coordinate	GO:none
@SQ	SN:chr1	LN:1000	M5:6aef897c3d6ff0c78aff06ac189178dd
@SQ	SN:chr2	LN:2000
@RG	ID:rg1	DT:2010-06-01T12:00:00Z	PI:400
@PG	ID:prog	PN:aligner	VN:2.1
@CO	first comment
@CO	second comment
`)
	h, err := NewHeader(text, nil)
	c.Assert(err, check.Equals, nil)

	got, err := h.MarshalText()
	c.Assert(err, check.Equals, nil)
	c.Check(string(got), check.Equals, string(text))

	c.Check(h.SortOrder(), check.Equals, Coordinate)
	c.Check(h.GroupOrder(), check.Equals, GroupNone)
	c.Check(h.Refs()[0].MD5(), check.Equals, "6aef897c3d6ff0c78aff06ac189178dd")
	c.Check(h.Refs()[1].ID(), check.Equals, 1)
	c.Check(h.RGs()[0].InsertSize(), check.Equals, 400)
	c.Check(h.RGs()[0].Time().IsZero(), check.Equals, false)
	c.Check(h.Progs()[0].Name(), check.Equals, "aligner")
}

func (s *S) TestDuplicateDictionaryEntries(c *check.C) {
	_, err := NewHeader([]byte("@RG\tID:rg1\n@RG\tID:rg1\n"), nil)
	c.Check(errors.Is(err, errDupReadGroup), check.Equals, true)

	_, err = NewHeader([]byte("@PG\tID:p1\n@PG\tID:p1\n"), nil)
	c.Check(errors.Is(err, errDupProgram), check.Equals, true)

	_, err = NewHeader([]byte("@SQ\tSN:ref\tLN:45\n@SQ\tSN:ref\tLN:46\n"), nil)
	c.Check(errors.Is(err, errDupReference), check.Equals, true)
}

func (s *S) TestMergeReference(c *check.C) {
	// A bare re-declaration merges with the richer existing entry.
	h, err := NewHeader([]byte("@SQ\tSN:ref\tLN:45\tSP:yeast\n@SQ\tSN:ref\tLN:45\n"), nil)
	c.Assert(err, check.Equals, nil)
	c.Assert(h.Refs(), check.HasLen, 1)
	c.Check(h.Refs()[0].Species(), check.Equals, "yeast")
}

func (s *S) TestAddUniqueProgram(c *check.C) {
	h, err := NewHeader(nil, nil)
	c.Assert(err, check.Equals, nil)
	p1, err := h.AddUniqueProgram("dedup", "dedup -i in.sam", "1.0")
	c.Assert(err, check.Equals, nil)
	p2, err := h.AddUniqueProgram("sort", "sort -o out.sam", "1.0")
	c.Assert(err, check.Equals, nil)
	c.Check(p1.UID(), check.Not(check.Equals), p2.UID())
	c.Check(p2.Previous(), check.Equals, p1.UID())
	c.Check(h.Progs(), check.HasLen, 2)
}

func (s *S) TestMetadataSet(c *check.C) {
	m, err := NewMetadata("1.6")
	c.Assert(err, check.Equals, nil)
	c.Assert(m.Set(NewTag("SO"), "queryname"), check.Equals, nil)
	c.Check(m.SortOrder(), check.Equals, QueryName)
	c.Check(m.String(), check.Equals, "@HD\tVN:1.6\tSO:queryname")

	c.Check(m.Set(NewTag("SO"), "sideways"), check.NotNil)
	c.Check(m.Set(NewTag("VN"), "one.two"), check.NotNil)
}

func (s *S) TestReadGroupFlowOrder(c *check.C) {
	rg, err := NewReadGroup("rg1")
	c.Assert(err, check.Equals, nil)
	c.Check(rg.FlowOrder(), check.Equals, "*")
	c.Assert(rg.Set(NewTag("FO"), "ACGT"), check.Equals, nil)
	c.Check(rg.FlowOrder(), check.Equals, "ACGT")
	c.Check(rg.String(), check.Equals, "@RG\tID:rg1\tFO:ACGT")
}

func (s *S) TestValidateRecord(c *check.C) {
	h, err := NewHeader([]byte("@RG\tID:rg1\tPU:unit1\tLB:lib1\n@PG\tID:prog1\n"), nil)
	c.Assert(err, check.Equals, nil)

	r := &Record{Name: "r001", Pos: -1, MatePos: -1, Flags: Unmapped}
	c.Check(h.Validate(r), check.Equals, nil)

	r.AuxFields = AuxFields{mustAux(NewAux(NewTag("RG"), 'Z', "rg1"))}
	c.Check(h.Validate(r), check.Equals, nil)

	r.AuxFields = AuxFields{mustAux(NewAux(NewTag("RG"), 'Z', "rgX"))}
	c.Check(h.Validate(r), check.NotNil)

	r.AuxFields = AuxFields{
		mustAux(NewAux(NewTag("RG"), 'Z', "rg1")),
		mustAux(NewAux(NewTag("PU"), 'Z', "other")),
	}
	c.Check(h.Validate(r), check.NotNil)

	r.AuxFields = AuxFields{mustAux(NewAux(NewTag("PG"), 'Z', "progX"))}
	c.Check(h.Validate(r), check.NotNil)
}
