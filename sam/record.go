// Copyright ©2024 the sam-io authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

const (
	maxInt32 = 1<<31 - 1
	minInt32 = -1 << 31
)

func validInt32(i int) bool    { return minInt32 <= i && i <= maxInt32 }
func validLen(i int) bool      { return 1 <= i && i <= maxInt32 }
func validPos(i int) bool      { return -1 <= i && i <= maxInt32-1 }
func validTmpltLen(i int) bool { return -maxInt32 <= i && i <= maxInt32 }

// Record represents a SAM alignment record.
type Record struct {
	Name      string
	Ref       *Reference
	Pos       int
	MapQ      byte
	Cigar     Cigar
	Flags     Flags
	MateRef   *Reference
	MatePos   int
	TempLen   int
	Seq       Seq
	Qual      []byte
	AuxFields AuxFields
}

// NewRecord returns a Record, checking for consistency of the provided
// attributes.
func NewRecord(name string, ref, mRef *Reference, p, mPos, tLen int, mapQ byte, co []CigarOp, seq, qual []byte, aux []Aux) (*Record, error) {
	if !(validPos(p) && validPos(mPos) && validTmpltLen(tLen) && (seq == nil || validLen(len(seq))) && (qual == nil || validLen(len(qual)))) {
		return nil, errors.New("sam: value out of range")
	}
	if !validQueryName([]byte(name)) {
		return nil, errors.New("sam: invalid name")
	}
	if qual != nil && len(qual) != len(seq) {
		return nil, errors.New("sam: sequence/quality length mismatch")
	}
	if ref != nil {
		if ref.id < 0 {
			return nil, errors.New("sam: linking to invalid reference")
		}
	} else {
		if p != -1 {
			return nil, errors.New("sam: specified position != -1 without reference")
		}
	}
	if mRef != nil {
		if mRef.id < 0 {
			return nil, errors.New("sam: linking to invalid mate reference")
		}
	} else {
		if mPos != -1 {
			return nil, errors.New("sam: specified mate position != -1 without mate reference")
		}
	}
	r := &Record{
		Name:      name,
		Ref:       ref,
		Pos:       p,
		MapQ:      mapQ,
		Cigar:     co,
		MateRef:   mRef,
		MatePos:   mPos,
		TempLen:   tLen,
		Seq:       NewSeq(seq),
		Qual:      qual,
		AuxFields: aux,
	}
	return r, nil
}

// IsValidRecord returns whether the record satisfies the conditions that
// it has the Unmapped flag set if it is not placed; that the MateUnmapped
// flag is set if it is paired and its mate is unplaced; that the CIGAR
// length matches the sequence and quality string lengths if they are
// non-zero; and that the Paired, ProperPair, Unmapped and MateUnmapped
// flags are consistent. These checks are not applied during parsing.
func IsValidRecord(r *Record) bool {
	if (r.Ref == nil || r.Pos == -1) && r.Flags&Unmapped == 0 {
		return false
	}
	if r.Flags&Paired != 0 && (r.MateRef == nil || r.MatePos == -1) && r.Flags&MateUnmapped == 0 {
		return false
	}
	if r.Flags&(Unmapped|ProperPair) == Unmapped|ProperPair {
		return false
	}
	if r.Flags&(Paired|MateUnmapped|ProperPair) == Paired|MateUnmapped|ProperPair {
		return false
	}
	if len(r.Qual) != 0 && r.Seq.Length != len(r.Qual) {
		return false
	}
	if !r.Cigar.IsValid(r.Seq.Length) {
		return false
	}
	return true
}

// Tag returns an Aux tag whose tag ID matches the first two bytes of tag and true.
// If no tag matches, nil and false are returned.
func (r *Record) Tag(tag []byte) (v Aux, ok bool) {
	if len(tag) < 2 {
		panic("sam: tag too short")
	}
	for _, aux := range r.AuxFields {
		if aux.matches(tag) {
			return aux, true
		}
	}
	return nil, false
}

// RefID returns the reference ID for the Record.
func (r *Record) RefID() int {
	return r.Ref.ID()
}

// Start returns the lower-coordinate end of the alignment.
func (r *Record) Start() int {
	return r.Pos
}

// Len returns the length of the alignment.
func (r *Record) Len() int {
	return r.End() - r.Start()
}

// End returns the highest reference-consuming coordinate end of the
// alignment. The position returned by End is not valid if
// r.Cigar.IsValid(r.Seq.Length) is false.
func (r *Record) End() int {
	pos := r.Pos
	end := pos
	for _, co := range r.Cigar {
		pos += co.Len() * co.Type().Consumes().Reference
		if pos > end {
			end = pos
		}
	}
	return end
}

// Strand returns an int8 indicating the strand of the alignment. A positive return indicates
// alignment in the forward orientation, a negative returns indicates alignment in the reverse
// orientation.
func (r *Record) Strand() int8 {
	if r.Flags&Reverse == Reverse {
		return -1
	}
	return 1
}

// String returns a string representation of the Record.
func (r *Record) String() string {
	end := r.End()
	return fmt.Sprintf("%s %v %v %d %s:%d..%d %d %s:%d %d %s %v %v",
		r.Name,
		r.Flags,
		r.Cigar,
		r.MapQ,
		r.Ref.Name(),
		r.Pos,
		end,
		end-r.Pos,
		r.MateRef.Name(),
		r.MatePos,
		r.TempLen,
		r.Seq.Expand(),
		r.Qual,
		r.AuxFields,
	)
}

// fieldError stamps the record field index onto err when err is a
// *ParseError without one, otherwise it wraps err into a new
// *ParseError for the field.
func fieldError(kind ErrorKind, field int, text []byte, err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		if pe.Field < 0 {
			pe.Field = field
		}
		return err
	}
	return &ParseError{Kind: kind, Field: field, Text: string(text), Err: err}
}

// UnmarshalText implements the encoding.TextUnmarshaler interface. It
// calls UnmarshalSAM with a nil Header.
func (r *Record) UnmarshalText(b []byte) error {
	return r.UnmarshalSAM(nil, b)
}

// UnmarshalSAM parses a SAM format alignment line in the provided []byte,
// using references from the provided Header. If a nil Header is passed to
// UnmarshalSAM and the SAM data include non-empty reference and mate
// reference names, fake references with zero length and an ID of -1 are
// created to hold the reference names. Errors are *ParseError values
// recording the zero-based index of the offending field.
func (r *Record) UnmarshalSAM(h *Header, b []byte) error {
	f := bytes.Split(b, []byte{'\t'})
	if len(f) < 11 {
		return &ParseError{
			Kind:  TruncatedRecord,
			Field: len(f),
			Text:  string(b),
			Err:   fmt.Errorf("got %d of 11 required fields", len(f)),
		}
	}
	if !validQueryName(f[0]) {
		return fieldError(MalformedField, 0, f[0], errors.New("invalid query name"))
	}
	*r = Record{Name: string(f[0])}
	flags, err := parseFlags(f[1])
	if err != nil {
		return fieldError(MalformedField, 1, f[1], err)
	}
	r.Flags = flags
	if !validRefName(f[2]) || bytes.Equal(f[2], []byte{'='}) {
		return fieldError(MalformedField, 2, f[2], errors.New("invalid reference name"))
	}
	r.Ref, err = referenceForName(h, string(f[2]))
	if err != nil {
		return fieldError(MalformedField, 2, f[2], err)
	}
	pos, err := strconv.Atoi(string(f[3]))
	if err != nil {
		return fieldError(MalformedField, 3, f[3], err)
	}
	if pos < 0 || pos > maxInt32-1 {
		return fieldError(MalformedField, 3, f[3], errors.New("position out of range"))
	}
	r.Pos = pos - 1
	mapQ, err := strconv.ParseUint(string(f[4]), 10, 8)
	if err != nil {
		return fieldError(MalformedField, 4, f[4], err)
	}
	r.MapQ = byte(mapQ)
	r.Cigar, err = ParseCigar(f[5])
	if err != nil {
		return fieldError(InvalidCigar, 5, f[5], err)
	}
	if bytes.Equal(f[6], []byte{'='}) || bytes.Equal(f[2], f[6]) {
		r.MateRef = r.Ref
	} else {
		if !validRefName(f[6]) {
			return fieldError(MalformedField, 6, f[6], errors.New("invalid mate reference name"))
		}
		r.MateRef, err = referenceForName(h, string(f[6]))
		if err != nil {
			return fieldError(MalformedField, 6, f[6], err)
		}
	}
	matePos, err := strconv.Atoi(string(f[7]))
	if err != nil {
		return fieldError(MalformedField, 7, f[7], err)
	}
	if matePos < 0 || matePos > maxInt32-1 {
		return fieldError(MalformedField, 7, f[7], errors.New("mate position out of range"))
	}
	r.MatePos = matePos - 1
	r.TempLen, err = strconv.Atoi(string(f[8]))
	if err != nil {
		return fieldError(MalformedField, 8, f[8], err)
	}
	if !validTmpltLen(r.TempLen) {
		return fieldError(MalformedField, 8, f[8], errors.New("template length out of range"))
	}
	if !bytes.Equal(f[9], []byte{'*'}) {
		if !validSeqText(f[9]) {
			return fieldError(MalformedField, 9, f[9], errors.New("invalid sequence text"))
		}
		r.Seq = NewSeq(f[9])
	}
	if !bytes.Equal(f[10], []byte{'*'}) {
		if !validQualText(f[10]) {
			return fieldError(MalformedField, 10, f[10], errors.New("invalid quality text"))
		}
		if len(f[10]) != r.Seq.Length {
			return fieldError(MalformedField, 10, f[10], errors.New("sequence/quality length mismatch"))
		}
		r.Qual = append(r.Qual, f[10]...)
		for i := range r.Qual {
			r.Qual[i] -= 33
		}
	} else if r.Seq.Length != 0 {
		r.Qual = make([]byte, r.Seq.Length)
		for i := range r.Qual {
			r.Qual[i] = 0xff
		}
	}
	for i, aux := range f[11:] {
		a, err := ParseAux(aux)
		if err != nil {
			return fieldError(MalformedField, 11+i, aux, err)
		}
		r.AuxFields = append(r.AuxFields, a)
	}
	return nil
}

func referenceForName(h *Header, name string) (*Reference, error) {
	if name == "*" {
		return nil, nil
	}
	if h == nil {
		// Without a Header, return a fake Reference.
		return &Reference{
			id:   -1,
			name: name,
		}, nil
	}

	for _, r := range h.refs {
		if r.Name() == name {
			return r, nil
		}
	}
	return nil, fmt.Errorf("no reference with name %q", name)
}

// MarshalText implements the encoding.TextMarshaler interface. It calls
// MarshalSAM with FlagDecimal.
func (r *Record) MarshalText() ([]byte, error) {
	return r.MarshalSAM(0)
}

// MarshalSAM formats a Record as SAM using the specified flag format.
// Acceptable formats are FlagDecimal, FlagHex and FlagString.
func (r *Record) MarshalSAM(flags int) ([]byte, error) {
	if flags < FlagDecimal || flags > FlagString {
		return nil, errors.New("sam: flag format option out of range")
	}
	if r.Qual != nil && len(r.Qual) != r.Seq.Length {
		return nil, errors.New("sam: sequence/quality length mismatch")
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\t%v\t%s\t%d\t%d\t%s\t%s\t%d\t%d\t%s\t%s",
		r.Name,
		formatFlags(r.Flags, flags),
		r.Ref.Name(),
		r.Pos+1,
		r.MapQ,
		r.Cigar,
		formatMate(r.Ref, r.MateRef),
		r.MatePos+1,
		r.TempLen,
		formatSeq(r.Seq),
		formatQual(r.Qual),
	)
	for _, t := range r.AuxFields {
		fmt.Fprintf(&buf, "\t%v", t)
	}
	return buf.Bytes(), nil
}

// Flag format constants.
const (
	FlagDecimal = iota
	FlagHex
	FlagString
)

func formatFlags(f Flags, format int) interface{} {
	switch format {
	case FlagDecimal:
		return uint16(f)
	case FlagHex:
		return fmt.Sprintf("0x%x", f)
	case FlagString:
		// If 0x01 is unset, no assumptions can be made about
		// 0x02, 0x08, 0x20, 0x40 and 0x80.
		const pairedMask = ProperPair | MateUnmapped | MateReverse | Read1 | Read2
		if f&1 == 0 {
			f &^= pairedMask
		}

		const flags = "pPuUrR12sfdS"

		b := make([]byte, 0, len(flags))
		for i, c := range flags {
			if f&(1<<uint(i)) != 0 {
				b = append(b, byte(c))
			}
		}

		return string(b)
	default:
		panic("sam: invalid flag format")
	}
}

func formatMate(ref, mate *Reference) string {
	if mate != nil && ref == mate {
		return "="
	}
	return mate.Name()
}

func formatSeq(s Seq) []byte {
	if s.Length == 0 {
		return []byte{'*'}
	}
	return s.Expand()
}

func formatQual(q []byte) []byte {
	for _, v := range q {
		if v != 0xff {
			a := make([]byte, len(q))
			for i, p := range q {
				a[i] = p + 33
			}
			return a
		}
	}
	return []byte{'*'}
}

// Doublet is a nybble-encoded pair of nucleotide bases.
type Doublet byte

// Seq is a nybble-encoded nucleotide sequence.
type Seq struct {
	Length int
	Seq    []Doublet
}

var (
	n16TableRev = [16]byte{'=', 'A', 'C', 'M', 'G', 'R', 'S', 'V', 'T', 'W', 'Y', 'H', 'K', 'D', 'B', 'N'}
	n16Table    = [256]Doublet{
		0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
		0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
		0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
		0x1, 0x2, 0x4, 0x8, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0x0, 0xf, 0xf,
		0xf, 0x1, 0xe, 0x2, 0xd, 0xf, 0xf, 0x4, 0xb, 0xf, 0xf, 0xc, 0xf, 0x3, 0xf, 0xf,
		0xf, 0xf, 0x5, 0x6, 0x8, 0xf, 0x7, 0x9, 0xf, 0xa, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
		0xf, 0x1, 0xe, 0x2, 0xd, 0xf, 0xf, 0x4, 0xb, 0xf, 0xf, 0xc, 0xf, 0x3, 0xf, 0xf,
		0xf, 0xf, 0x5, 0x6, 0x8, 0xf, 0x7, 0x9, 0xf, 0xa, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
		0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
		0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
		0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
		0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
		0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
		0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
		0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
		0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
	}
)

// NewSeq returns a new Seq based on the given byte slice. Lowercase
// base letters are canonicalized to uppercase in the encoded form.
func NewSeq(s []byte) Seq {
	return Seq{
		Length: len(s),
		Seq:    contract(s),
	}
}

func contract(s []byte) []Doublet {
	ns := make([]Doublet, (len(s)+1)>>1)
	var np Doublet
	for i, b := range s {
		if i&1 == 0 {
			np = n16Table[b] << 4
		} else {
			ns[i>>1] = np | n16Table[b]
		}
	}
	// We haven't written the last base if the
	// sequence was odd length, so do that now.
	if len(s)&1 != 0 {
		ns[len(ns)-1] = np
	}
	return ns
}

// Expand returns the byte encoded form of the receiver.
func (ns Seq) Expand() []byte {
	s := make([]byte, ns.Length)
	for i := range s {
		if i&1 == 0 {
			s[i] = n16TableRev[ns.Seq[i>>1]>>4]
		} else {
			s[i] = n16TableRev[ns.Seq[i>>1]&0xf]
		}
	}

	return s
}
