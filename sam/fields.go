// Copyright ©2024 the sam-io authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

// Character class tables for the fixed alignment fields. The tables
// are filled once at init and read-only thereafter.
var (
	queryNameOK [256]bool // [!-?A-~]
	refNameOK   [256]bool // [0-9A-Za-z!#$%&*+./:;=?@^_|~-]
	seqOK       [256]bool // The 16 nucleotide codes and '=', either case.
	qualOK      [256]bool // [!-~]
)

func init() {
	for c := '!'; c <= '~'; c++ {
		qualOK[c] = true
		if c != '@' {
			queryNameOK[c] = true
		}
	}
	for c := '0'; c <= '9'; c++ {
		refNameOK[c] = true
	}
	for c := 'A'; c <= 'Z'; c++ {
		refNameOK[c] = true
		refNameOK[c+'a'-'A'] = true
	}
	for _, c := range []byte("!#$%&*+./:;=?@^_|~-") {
		refNameOK[c] = true
	}
	for _, c := range []byte("=ACMGRSVTWYHKDBN") {
		seqOK[c] = true
		if c != '=' {
			seqOK[c+'a'-'A'] = true
		}
	}
}

// validQueryName returns whether b is a valid QNAME: 1 to 254
// characters drawn from [!-?A-~]. The '*' sentinel satisfies the
// class and needs no special case.
func validQueryName(b []byte) bool {
	if len(b) == 0 || len(b) > 254 {
		return false
	}
	for _, c := range b {
		if !queryNameOK[c] {
			return false
		}
	}
	return true
}

// validRefName returns whether b is a valid RNAME or RNEXT value. The
// '*' sentinel and the '=' mate shorthand are valid only when they
// stand alone.
func validRefName(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	if len(b) == 1 && (b[0] == '*' || b[0] == '=') {
		return true
	}
	if b[0] == '*' || b[0] == '=' {
		return false
	}
	for _, c := range b {
		if !refNameOK[c] {
			return false
		}
	}
	return true
}

// validSeqText returns whether b is acceptable SEQ text, not
// including the '*' sentinel. Bytes outside the nucleotide alphabet
// are rejected here rather than silently encoded as N.
func validSeqText(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if !seqOK[c] {
			return false
		}
	}
	return true
}

// validQualText returns whether b is acceptable QUAL text, not
// including the '*' sentinel: one printable Phred+33 byte per base.
func validQualText(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if !qualOK[c] {
			return false
		}
	}
	return true
}
