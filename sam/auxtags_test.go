// Copyright ©2024 the sam-io authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"errors"

	"gopkg.in/check.v1"
)

var auxTests = []struct {
	text  string
	typ   byte
	kind  byte
	value interface{}
}{
	{text: "NM:i:4", typ: 'C', kind: 'i', value: uint8(4)},
	{text: "NM:i:-4", typ: 'c', kind: 'i', value: int8(-4)},
	{text: "NM:i:300", typ: 'S', kind: 'i', value: uint16(300)},
	{text: "NM:i:-70000", typ: 'i', kind: 'i', value: int32(-70000)},
	{text: "NM:i:70000", typ: 'I', kind: 'i', value: uint32(70000)},
	{text: "XA:A:*", typ: 'A', kind: 'A', value: byte('*')},
	{text: "XF:f:0.25", typ: 'f', kind: 'f', value: float32(0.25)},
	{text: "MD:Z:101", typ: 'Z', kind: 'Z', value: "101"},
	{text: "BQ:H:1A2B", typ: 'H', kind: 'H', value: []byte{0x1a, 0x2b}},
	{text: "XB:B:c,-1,2,-3", typ: 'B', kind: 'B', value: []int8{-1, 2, -3}},
	{text: "XB:B:S,1,2,3", typ: 'B', kind: 'B', value: []uint16{1, 2, 3}},
	{text: "XB:B:i,1,-2,3", typ: 'B', kind: 'B', value: []int32{1, -2, 3}},
	{text: "XB:B:f,0.5,1.5", typ: 'B', kind: 'B', value: []float32{0.5, 1.5}},
}

func (s *S) TestParseAux(c *check.C) {
	for _, t := range auxTests {
		a, err := ParseAux([]byte(t.text))
		c.Assert(err, check.Equals, nil, check.Commentf("aux %q", t.text))
		c.Check(a.Type(), check.Equals, t.typ)
		c.Check(a.Kind(), check.Equals, t.kind)
		c.Check(a.Value(), check.DeepEquals, t.value)
		c.Check(a.String(), check.Equals, t.text, check.Commentf("aux %q", t.text))
	}
}

var auxErrorTests = []struct {
	text string
	kind ErrorKind
}{
	{text: "NM", kind: MalformedField},
	{text: "NM:i", kind: MalformedField},
	{text: "n!:i:4", kind: MalformedField},
	{text: "NM:i:4.5", kind: MalformedField},
	{text: "NM:i:12345678901", kind: MalformedField},
	{text: "XA:A:ab", kind: MalformedField},
	{text: "XF:f:zero", kind: MalformedField},
	{text: "BQ:H:1A2", kind: InvalidHexTag},
	{text: "BQ:H:1G", kind: InvalidHexTag},
	{text: "XB:B:", kind: InvalidArrayTag},
	{text: "XB:B:x,1,2", kind: InvalidArrayTag},
	{text: "XB:B:i,1,x", kind: InvalidArrayTag},
	{text: "XB:B:C,-1", kind: InvalidArrayTag},
	{text: "XB:B:c,300", kind: InvalidArrayTag},
	{text: "NM:y:4", kind: UnknownTagType},
}

func (s *S) TestParseAuxErrors(c *check.C) {
	for _, t := range auxErrorTests {
		_, err := ParseAux([]byte(t.text))
		var pe *ParseError
		c.Assert(errors.As(err, &pe), check.Equals, true, check.Commentf("aux %q", t.text))
		c.Check(pe.Kind, check.Equals, t.kind, check.Commentf("aux %q", t.text))
	}
}

func (s *S) TestNewAux(c *check.C) {
	for _, t := range []struct {
		typ    byte
		value  interface{}
		expect string
	}{
		{'i', 4, "NM:i:4"},
		{'i', -4, "NM:i:-4"},
		{'i', int32(1 << 20), "NM:i:1048576"},
		{'A', byte('>'), "NM:A:>"},
		{'f', float32(2.5), "NM:f:2.5"},
		{'Z', "abc", "NM:Z:abc"},
		{'H', []byte{0xde, 0xad}, "NM:H:DEAD"},
		{'B', []uint8{1, 2, 3}, "NM:B:C,1,2,3"},
		{'B', []float32{0.5}, "NM:B:f,0.5"},
	} {
		a, err := NewAux(NewTag("NM"), t.typ, t.value)
		c.Assert(err, check.Equals, nil, check.Commentf("value %v", t.value))
		c.Check(a.String(), check.Equals, t.expect)
	}

	_, err := NewAux(NewTag("NM"), 'i', "not a number")
	c.Check(err, check.NotNil)
	_, err = NewAux(NewTag("NM"), 'y', 1)
	c.Check(err, check.NotNil)
}

func (s *S) TestAuxFieldsGet(c *check.C) {
	fields := AuxFields{
		mustAux(NewAux(NewTag("NM"), 'i', 4)),
		mustAux(NewAux(NewTag("MD"), 'Z', "101")),
	}
	c.Check(fields.Get(NewTag("MD")).Value(), check.Equals, "101")
	c.Check(fields.Get(NewTag("XX")), check.IsNil)
}
