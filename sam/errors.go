// Copyright ©2024 the sam-io authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"fmt"
	"strings"
)

// An ErrorKind identifies the class of syntax or structure violation
// found while parsing SAM text.
type ErrorKind int

const (
	// TruncatedRecord indicates an alignment line with fewer than the
	// eleven mandatory fields.
	TruncatedRecord ErrorKind = iota

	// MalformedField indicates a field whose text violates the field's
	// syntax, for example a negative flag or an out of range mapping
	// quality.
	MalformedField

	// InvalidCigar indicates CIGAR text that is empty, contains a zero
	// length or unknown operation, or has trailing unparsed characters.
	InvalidCigar

	// InvalidArrayTag indicates a B-typed auxiliary tag with a missing
	// or unknown subtype, or an element that does not parse under the
	// subtype's numeric rule.
	InvalidArrayTag

	// InvalidHexTag indicates an H-typed auxiliary tag whose value has
	// odd length or holds a non-hexadecimal digit.
	InvalidHexTag

	// UnknownTagType indicates an auxiliary tag type discriminant
	// outside {A i f Z H B}.
	UnknownTagType

	// UnknownHeaderType indicates an @-prefixed line whose record type
	// code is not one of HD, SQ, RG, PG or CO.
	UnknownHeaderType

	// MissingRequiredTag indicates a header line lacking a tag its
	// record type requires, for example an @SQ line without LN.
	MissingRequiredTag

	// DuplicateTag indicates a tag occurring twice within one header
	// line, or a second @HD line.
	DuplicateTag

	// HeaderAfterAlignment indicates an @-prefixed line encountered
	// after the first alignment line of the stream.
	HeaderAfterAlignment
)

var errorKindNames = [...]string{
	TruncatedRecord:      "truncated record",
	MalformedField:       "malformed field",
	InvalidCigar:         "invalid cigar",
	InvalidArrayTag:      "invalid array tag",
	InvalidHexTag:        "invalid hex tag",
	UnknownTagType:       "unknown tag type",
	UnknownHeaderType:    "unknown header type",
	MissingRequiredTag:   "missing required tag",
	DuplicateTag:         "duplicate tag",
	HeaderAfterAlignment: "header after alignment",
}

// String returns the name of the error kind.
func (k ErrorKind) String() string {
	if k < TruncatedRecord || int(k) >= len(errorKindNames) {
		return "unknown error"
	}
	return errorKindNames[k]
}

// A ParseError describes a failure to parse SAM text. The Line field
// is stamped by the stream layer and the Field index by the record
// parser, so a caller can report the position of the offending token.
type ParseError struct {
	Kind  ErrorKind
	Line  int    // 1-based line number, 0 when unknown.
	Field int    // 0-based tab-separated field index, -1 when not applicable.
	Text  string // Offending token.
	Err   error  // Underlying cause, may be nil.
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("sam: ")
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	b.WriteString(e.Kind.String())
	if e.Field >= 0 {
		fmt.Fprintf(&b, " at field %d", e.Field)
	}
	if e.Text != "" {
		fmt.Fprintf(&b, ": %q", e.Text)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

func newParseError(kind ErrorKind, text string, err error) *ParseError {
	return &ParseError{Kind: kind, Field: -1, Text: text, Err: err}
}

// lineError stamps err with the given 1-based line number when err is
// a ParseError that has not yet been positioned.
func lineError(err error, line int) error {
	if pe, ok := err.(*ParseError); ok && pe.Line == 0 {
		pe.Line = line
	}
	return err
}
