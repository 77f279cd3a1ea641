// Copyright ©2024 the sam-io authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	errDupReference  = errors.New("sam: duplicate reference name")
	errDupReadGroup  = errors.New("sam: duplicate read group name")
	errDupProgram    = errors.New("sam: duplicate program name")
	errUsedReference = errors.New("sam: reference already used")
	errUsedReadGroup = errors.New("sam: read group already used")
	errUsedProgram   = errors.New("sam: program already used")
	errBadLen        = errors.New("sam: reference length out of range")
)

// Header line record type codes and the tags of their schemas.
var (
	headerTag       = Tag{'H', 'D'}
	versionTag      = Tag{'V', 'N'}
	sortOrderTag    = Tag{'S', 'O'}
	groupOrderTag   = Tag{'G', 'O'}
	refDictTag      = Tag{'S', 'Q'}
	refNameTag      = Tag{'S', 'N'}
	refLengthTag    = Tag{'L', 'N'}
	assemblyIDTag   = Tag{'A', 'S'}
	md5Tag          = Tag{'M', '5'}
	speciesTag      = Tag{'S', 'P'}
	uriTag          = Tag{'U', 'R'}
	readGroupTag    = Tag{'R', 'G'}
	centerTag       = Tag{'C', 'N'}
	descriptionTag  = Tag{'D', 'S'}
	dateTag         = Tag{'D', 'T'}
	flowOrderTag    = Tag{'F', 'O'}
	keySequenceTag  = Tag{'K', 'S'}
	libraryTag      = Tag{'L', 'B'}
	insertSizeTag   = Tag{'P', 'I'}
	platformTag     = Tag{'P', 'L'}
	platformUnitTag = Tag{'P', 'U'}
	sampleTag       = Tag{'S', 'M'}
	programTag      = Tag{'P', 'G'}
	idTag           = Tag{'I', 'D'}
	programNameTag  = Tag{'P', 'N'}
	commandLineTag  = Tag{'C', 'L'}
	previousProgTag = Tag{'P', 'P'}
	commentTag      = Tag{'C', 'O'}
)

// SortOrder indicates the sort order of a SAM file.
type SortOrder int

const (
	UnknownOrder SortOrder = iota
	Unsorted
	QueryName
	Coordinate
)

var (
	sortOrder = [...]string{
		UnknownOrder: "unknown",
		Unsorted:     "unsorted",
		QueryName:    "queryname",
		Coordinate:   "coordinate",
	}
	sortOrderMap = map[string]SortOrder{
		"unknown":    UnknownOrder,
		"unsorted":   Unsorted,
		"queryname":  QueryName,
		"coordinate": Coordinate,
	}
)

// String returns the string representation of a SortOrder.
func (so SortOrder) String() string {
	if so < Unsorted || so > Coordinate {
		return sortOrder[UnknownOrder]
	}
	return sortOrder[so]
}

// GroupOrder indicates the grouping order of a SAM file.
type GroupOrder int

const (
	GroupUnspecified GroupOrder = iota
	GroupNone
	GroupQuery
	GroupReference
)

var (
	groupOrder = [...]string{
		GroupUnspecified: "none",
		GroupNone:        "none",
		GroupQuery:       "query",
		GroupReference:   "reference",
	}
	groupOrderMap = map[string]GroupOrder{
		"none":      GroupNone,
		"query":     GroupQuery,
		"reference": GroupReference,
	}
)

// String returns the string representation of a GroupOrder.
func (g GroupOrder) String() string {
	if g < GroupNone || g > GroupReference {
		return groupOrder[GroupUnspecified]
	}
	return groupOrder[g]
}

// A tagPair is one TAG:VALUE pair of a header line, value kept as raw
// text so serialization reproduces the parsed line.
type tagPair struct {
	tag   Tag
	value string
}

// setTagPair updates the pair for t in tags or appends a new pair,
// and removes the pair when value is empty.
func setTagPair(tags []tagPair, t Tag, value string) []tagPair {
	for i, tp := range tags {
		if t != tp.tag {
			continue
		}
		if value == "" {
			copy(tags[i:], tags[i+1:])
			return tags[:len(tags)-1]
		}
		tags[i].value = value
		return tags
	}
	if value == "" {
		return tags
	}
	return append(tags, tagPair{tag: t, value: value})
}

func getTagPair(tags []tagPair, t Tag) string {
	for _, tp := range tags {
		if t == tp.tag {
			return tp.value
		}
	}
	return ""
}

// A HeaderRecord is one typed SAM header line. The concrete types are
// *Metadata (@HD), *Reference (@SQ), *ReadGroup (@RG), *Program (@PG)
// and Comment (@CO); the set is closed.
type HeaderRecord interface {
	// String returns the SAM text of the header line, without a
	// line terminator.
	String() string

	headerCode() Tag
}

// Comment is the freeform text of an @CO header line.
type Comment string

// String returns the SAM text of the comment line.
func (co Comment) String() string { return "@CO\t" + string(co) }

func (co Comment) headerCode() Tag { return commentTag }

type set map[string]int32

// Header is the header block of a SAM file: optional file metadata
// and the reference sequence, read group and program dictionaries,
// each held in declaration order.
type Header struct {
	hd *Metadata

	refs       []*Reference
	rgs        []*ReadGroup
	progs      []*Program
	seenRefs   set
	seenGroups set
	seenProgs  set

	Comments []string
}

// NewHeader returns a new Header based on the given text and list
// of References. If there is a conflict between the text and the
// given References NewHeader will return a non-nil error.
func NewHeader(text []byte, r []*Reference) (*Header, error) {
	bh := &Header{
		refs:       r,
		seenRefs:   set{},
		seenGroups: set{},
		seenProgs:  set{},
	}
	for i, r := range bh.refs {
		r.id = int32(i)
		bh.seenRefs[r.name] = r.id
	}
	if text != nil {
		err := bh.UnmarshalText(text)
		if err != nil {
			return nil, err
		}
	}
	return bh, nil
}

// Metadata returns the @HD record of the header, or nil if the header
// has none.
func (bh *Header) Metadata() *Metadata { return bh.hd }

// SetMetadata replaces the header's @HD record. A nil md removes it.
func (bh *Header) SetMetadata(md *Metadata) { bh.hd = md }

// Version returns the format version declared by the @HD record, or
// the empty string if there is none.
func (bh *Header) Version() string {
	if bh.hd == nil {
		return ""
	}
	return bh.hd.version
}

// SortOrder returns the sort order declared by the @HD record.
func (bh *Header) SortOrder() SortOrder {
	if bh.hd == nil {
		return UnknownOrder
	}
	return bh.hd.sortOrder
}

// GroupOrder returns the group order declared by the @HD record.
func (bh *Header) GroupOrder() GroupOrder {
	if bh.hd == nil {
		return GroupUnspecified
	}
	return bh.hd.groupOrder
}

// Apply adds the parsed header record rec to the header. A second
// *Metadata record fails with a DuplicateTag ParseError; dictionary
// records fail when their identifier collides with one already held.
func (bh *Header) Apply(rec HeaderRecord) error {
	switch rec := rec.(type) {
	case *Metadata:
		if bh.hd != nil {
			return newParseError(DuplicateTag, rec.String(), errors.New("second @HD line"))
		}
		bh.hd = rec
	case *Reference:
		return bh.AddReference(rec)
	case *ReadGroup:
		return bh.AddReadGroup(rec)
	case *Program:
		return bh.AddProgram(rec)
	case Comment:
		bh.Comments = append(bh.Comments, string(rec))
	}
	return nil
}

// Clone returns a deep copy of the receiver.
func (bh *Header) Clone() *Header {
	c := &Header{
		hd:         bh.hd.Clone(),
		Comments:   append([]string(nil), bh.Comments...),
		refs:       make([]*Reference, len(bh.refs)),
		rgs:        make([]*ReadGroup, len(bh.rgs)),
		progs:      make([]*Program, len(bh.progs)),
		seenRefs:   make(set, len(bh.seenRefs)),
		seenGroups: make(set, len(bh.seenGroups)),
		seenProgs:  make(set, len(bh.seenProgs)),
	}

	for i, r := range bh.refs {
		if r == nil {
			continue
		}
		c.refs[i] = new(Reference)
		*c.refs[i] = *r
		c.refs[i].tags = append([]tagPair(nil), r.tags...)
	}
	for i, r := range bh.rgs {
		c.rgs[i] = new(ReadGroup)
		*c.rgs[i] = *r
		c.rgs[i].tags = append([]tagPair(nil), r.tags...)
	}
	for i, p := range bh.progs {
		c.progs[i] = new(Program)
		*c.progs[i] = *p
		c.progs[i].tags = append([]tagPair(nil), p.tags...)
	}
	for k, v := range bh.seenRefs {
		c.seenRefs[k] = v
	}
	for k, v := range bh.seenGroups {
		c.seenGroups[k] = v
	}
	for k, v := range bh.seenProgs {
		c.seenProgs[k] = v
	}

	return c
}

// MarshalText implements the encoding.TextMarshaler interface. Lines
// are emitted in header-block order: @HD, @SQ, @RG, @PG, @CO. Order
// within each block is preserved, but a header whose input interleaved
// line types, for example a comment between @SQ lines, is regrouped
// on output.
func (bh *Header) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	if bh.hd != nil {
		fmt.Fprintf(&buf, "%s\n", bh.hd)
	}
	for _, r := range bh.refs {
		fmt.Fprintf(&buf, "%s\n", r)
	}
	for _, rg := range bh.rgs {
		fmt.Fprintf(&buf, "%s\n", rg)
	}
	for _, p := range bh.progs {
		fmt.Fprintf(&buf, "%s\n", p)
	}
	for _, co := range bh.Comments {
		fmt.Fprintf(&buf, "@CO\t%s\n", co)
	}
	return buf.Bytes(), nil
}

// Validate checks r against the Header for record validity:
//
//   - a program auxiliary field must refer to a program listed in the
//     header
//   - a read group auxiliary field must refer to a read group listed
//     in the header and these must agree on platform unit and library.
//
// These are opt-in cross reference checks, not applied during parsing.
func (bh *Header) Validate(r *Record) error {
	if rp := r.AuxFields.Get(programTag); rp != nil && len(bh.progs) != 0 {
		found := false
		for _, hp := range bh.progs {
			if hp.UID() == rp.Value() {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("sam: program uid not found: %v", rp.Value())
		}
	}

	rg := r.AuxFields.Get(readGroupTag)
	if rg == nil || len(bh.rgs) == 0 {
		return nil
	}
	for _, hg := range bh.rgs {
		if hg.Name() != rg.Value() {
			continue
		}
		if unit := r.AuxFields.Get(platformUnitTag); unit != nil && unit.Value() != hg.PlatformUnit() {
			return fmt.Errorf("sam: mismatched platform unit for read group %s: %v != %v", hg.Name(), unit.Value(), hg.PlatformUnit())
		}
		if lib := r.AuxFields.Get(libraryTag); lib != nil && lib.Value() != hg.Library() {
			return fmt.Errorf("sam: mismatched library for read group %s: %v != %v", hg.Name(), lib.Value(), hg.Library())
		}
		return nil
	}
	return fmt.Errorf("sam: read group not found: %v", rg.Value())
}

// Refs returns the Header's list of References. The returned slice
// should not be altered.
func (bh *Header) Refs() []*Reference {
	return bh.refs
}

// RGs returns the Header's list of ReadGroups. The returned slice
// should not be altered.
func (bh *Header) RGs() []*ReadGroup {
	return bh.rgs
}

// Progs returns the Header's list of Programs. The returned slice
// should not be altered.
func (bh *Header) Progs() []*Program {
	return bh.progs
}

// equalRefs compares references by SAM content, ignoring the
// header-assigned id.
func equalRefs(a, b *Reference) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.name == b.name && a.lRef == b.lRef &&
		a.md5 == b.md5 && a.assemID == b.assemID && a.species == b.species &&
		a.URI() == b.URI()
}

// AddReference adds r to the Header. A reference already present is
// merged with r when the two agree on name and length.
func (bh *Header) AddReference(r *Reference) error {
	if dupID, dup := bh.seenRefs[r.name]; dup {
		er := bh.refs[dupID]
		if equalRefs(er, r) {
			return nil
		} else if !equalRefs(r, &Reference{id: er.id, name: er.name, lRef: er.lRef}) {
			return errDupReference
		}
		if r.md5 == "" {
			r.md5 = er.md5
		}
		if r.assemID == "" {
			r.assemID = er.assemID
		}
		if r.species == "" {
			r.species = er.species
		}
		if r.uri == nil {
			r.uri = er.uri
		}
		for _, tp := range er.tags {
			if getTagPair(r.tags, tp.tag) == "" {
				r.tags = append(r.tags, tp)
			}
		}
		r.id = er.id
		bh.refs[dupID] = r
		return nil
	}
	if r.id >= 0 {
		return errUsedReference
	}
	r.id = int32(len(bh.refs))
	bh.seenRefs[r.name] = r.id
	bh.refs = append(bh.refs, r)
	return nil
}

// AddReadGroup adds rg to the Header.
func (bh *Header) AddReadGroup(rg *ReadGroup) error {
	if _, ok := bh.seenGroups[rg.name]; ok {
		return errDupReadGroup
	}
	if rg.id >= 0 {
		return errUsedReadGroup
	}
	rg.id = int32(len(bh.rgs))
	bh.seenGroups[rg.name] = rg.id
	bh.rgs = append(bh.rgs, rg)
	return nil
}

// AddProgram adds p to the Header.
func (bh *Header) AddProgram(p *Program) error {
	if _, ok := bh.seenProgs[p.uid]; ok {
		return errDupProgram
	}
	if p.id >= 0 {
		return errUsedProgram
	}
	p.id = int32(len(bh.progs))
	bh.seenProgs[p.uid] = p.id
	bh.progs = append(bh.progs, p)
	return nil
}
