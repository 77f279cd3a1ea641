// Copyright ©2024 the sam-io authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// ParseHeaderLine parses a single SAM header line, without its line
// terminator, into the corresponding HeaderRecord. The two letter
// record type code selects the concrete type: @HD gives a *Metadata,
// @SQ a *Reference, @RG a *ReadGroup, @PG a *Program and @CO a
// Comment. Errors are *ParseError values classifying the failure.
func ParseHeaderLine(b []byte) (HeaderRecord, error) {
	if len(b) < 3 || b[0] != '@' {
		return nil, newParseError(MalformedField, string(b), errors.New("not a header line"))
	}
	var t Tag
	copy(t[:], b[1:3])
	switch t {
	case headerTag:
		return metadataLine(b)
	case refDictTag:
		return referenceLine(b)
	case readGroupTag:
		return readGroupLine(b)
	case programTag:
		return programLine(b)
	case commentTag:
		return commentLine(b)
	}
	return nil, newParseError(UnknownHeaderType, string(b), fmt.Errorf("unknown header record type %q", t))
}

// splitTagValue splits one TAG:VALUE header field.
func splitTagValue(f []byte) (Tag, string, error) {
	if len(f) < 4 || f[2] != ':' {
		return Tag{}, "", fmt.Errorf("malformed header field %q", f)
	}
	var t Tag
	copy(t[:], f[:2])
	return t, string(f[3:]), nil
}

func metadataLine(l []byte) (*Metadata, error) {
	fields := bytes.Split(l, []byte{'\t'})
	if len(fields) < 2 {
		return nil, newParseError(MalformedField, string(l), errors.New("no fields in @HD line"))
	}

	m := &Metadata{}
	seen := map[Tag]struct{}{}
	for _, f := range fields[1:] {
		t, fs, err := splitTagValue(f)
		if err != nil {
			return nil, newParseError(MalformedField, string(l), err)
		}
		if _, ok := seen[t]; ok {
			return nil, newParseError(DuplicateTag, string(l), fmt.Errorf("duplicate tag %v", t))
		}
		seen[t] = struct{}{}
		switch t {
		case versionTag:
			if !validVersion.MatchString(fs) {
				return nil, newParseError(MalformedField, string(l), fmt.Errorf("invalid version number %q", fs))
			}
			m.version = fs
		case sortOrderTag:
			// Unrecognized orders are carried verbatim and
			// reported as UnknownOrder.
			m.sortOrder = sortOrderMap[fs]
			m.tags = append(m.tags, tagPair{tag: t, value: fs})
		case groupOrderTag:
			m.groupOrder = groupOrderMap[fs]
			m.tags = append(m.tags, tagPair{tag: t, value: fs})
		default:
			m.tags = append(m.tags, tagPair{tag: t, value: fs})
		}
	}

	if m.version == "" {
		return nil, newParseError(MissingRequiredTag, string(l), errors.New("no VN tag in @HD line"))
	}
	return m, nil
}

func referenceLine(l []byte) (*Reference, error) {
	fields := bytes.Split(l, []byte{'\t'})
	if len(fields) < 3 {
		return nil, newParseError(MissingRequiredTag, string(l), errors.New("@SQ line requires SN and LN tags"))
	}

	rf := &Reference{id: -1}
	seen := map[Tag]struct{}{}
	var nok, lok bool
	for _, f := range fields[1:] {
		t, fs, err := splitTagValue(f)
		if err != nil {
			return nil, newParseError(MalformedField, string(l), err)
		}
		if _, ok := seen[t]; ok {
			return nil, newParseError(DuplicateTag, string(l), fmt.Errorf("duplicate tag %v", t))
		}
		seen[t] = struct{}{}
		switch t {
		case refNameTag:
			if fs == "*" || fs == "=" || !validRefName([]byte(fs)) {
				return nil, newParseError(MalformedField, string(l), fmt.Errorf("invalid reference name %q", fs))
			}
			rf.name = fs
			nok = true
			continue
		case refLengthTag:
			n, err := strconv.Atoi(fs)
			if err != nil {
				return nil, newParseError(MalformedField, string(l), err)
			}
			if !validLen(n) {
				return nil, newParseError(MalformedField, string(l), errBadLen)
			}
			rf.lRef = int32(n)
			lok = true
			continue
		case assemblyIDTag:
			rf.assemID = fs
		case md5Tag:
			if hex.DecodedLen(len(fs)) != 16 {
				return nil, newParseError(InvalidHexTag, string(l), errors.New("md5 sum not 16 bytes"))
			}
			var hb [16]byte
			_, err := hex.Decode(hb[:], []byte(fs))
			if err != nil {
				return nil, newParseError(InvalidHexTag, string(l), err)
			}
			rf.md5 = fs
		case speciesTag:
			rf.species = fs
		case uriTag:
			rf.uri, err = url.Parse(fs)
			if err != nil {
				return nil, newParseError(MalformedField, string(l), err)
			}
			if rf.uri.Scheme != "http" && rf.uri.Scheme != "ftp" {
				rf.uri.Scheme = "file"
			}
		}
		rf.tags = append(rf.tags, tagPair{tag: t, value: fs})
	}

	if !nok || !lok {
		return nil, newParseError(MissingRequiredTag, string(l), errors.New("@SQ line requires SN and LN tags"))
	}
	return rf, nil
}

func readGroupLine(l []byte) (*ReadGroup, error) {
	fields := bytes.Split(l, []byte{'\t'})
	if len(fields) < 2 {
		return nil, newParseError(MissingRequiredTag, string(l), errors.New("@RG line requires an ID tag"))
	}

	rg := &ReadGroup{id: -1}
	seen := map[Tag]struct{}{}
	for _, f := range fields[1:] {
		t, fs, err := splitTagValue(f)
		if err != nil {
			return nil, newParseError(MalformedField, string(l), err)
		}
		if _, ok := seen[t]; ok {
			return nil, newParseError(DuplicateTag, string(l), fmt.Errorf("duplicate tag %v", t))
		}
		seen[t] = struct{}{}
		if t == idTag {
			rg.name = fs
			continue
		}
		err = rg.Set(t, fs)
		if err != nil {
			return nil, newParseError(MalformedField, string(l), err)
		}
	}

	if rg.name == "" {
		return nil, newParseError(MissingRequiredTag, string(l), errors.New("no ID tag in @RG line"))
	}
	return rg, nil
}

func programLine(l []byte) (*Program, error) {
	fields := bytes.Split(l, []byte{'\t'})
	if len(fields) < 2 {
		return nil, newParseError(MissingRequiredTag, string(l), errors.New("@PG line requires an ID tag"))
	}

	p := &Program{id: -1}
	seen := map[Tag]struct{}{}
	for _, f := range fields[1:] {
		t, fs, err := splitTagValue(f)
		if err != nil {
			return nil, newParseError(MalformedField, string(l), err)
		}
		if _, ok := seen[t]; ok {
			return nil, newParseError(DuplicateTag, string(l), fmt.Errorf("duplicate tag %v", t))
		}
		seen[t] = struct{}{}
		switch t {
		case idTag:
			p.uid = fs
			continue
		case programNameTag:
			p.name = fs
		case commandLineTag:
			p.command = fs
		case previousProgTag:
			p.previous = fs
		case versionTag:
			p.version = fs
		}
		p.tags = append(p.tags, tagPair{tag: t, value: fs})
	}

	if p.uid == "" {
		return nil, newParseError(MissingRequiredTag, string(l), errors.New("no ID tag in @PG line"))
	}
	return p, nil
}

func commentLine(l []byte) (Comment, error) {
	i := bytes.IndexByte(l, '\t')
	if i < 0 {
		return "", newParseError(MalformedField, string(l), errors.New("no text in @CO line"))
	}
	return Comment(l[i+1:]), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
// Blank lines are ignored and a trailing carriage return is stripped
// from each line before parsing.
func (bh *Header) UnmarshalText(text []byte) error {
	if bh.seenRefs == nil {
		bh.seenRefs = set{}
	}
	if bh.seenGroups == nil {
		bh.seenGroups = set{}
	}
	if bh.seenProgs == nil {
		bh.seenProgs = set{}
	}
	for i, l := range bytes.Split(text, []byte{'\n'}) {
		if len(l) > 0 && l[len(l)-1] == '\r' {
			l = l[:len(l)-1]
		}
		if len(l) == 0 {
			continue
		}
		rec, err := ParseHeaderLine(l)
		if err != nil {
			return lineError(err, i+1)
		}
		err = bh.Apply(rec)
		if err != nil {
			return lineError(err, i+1)
		}
	}
	return nil
}
