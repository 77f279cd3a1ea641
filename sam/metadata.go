// Copyright ©2024 the sam-io authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"bytes"
	"fmt"
	"regexp"
)

var validVersion = regexp.MustCompile(`^[0-9]+\.[0-9]+$`)

// Metadata is the @HD record of a SAM header: the format version and
// the declared sort and group orders, together with any further
// TAG:VALUE pairs carried on the line.
type Metadata struct {
	version    string
	sortOrder  SortOrder
	groupOrder GroupOrder

	tags []tagPair
}

// NewMetadata returns a Metadata for the given format version, which
// must match /^[0-9]+\.[0-9]+$/.
func NewMetadata(version string) (*Metadata, error) {
	if !validVersion.MatchString(version) {
		return nil, fmt.Errorf("sam: invalid version number: %q", version)
	}
	return &Metadata{version: version}, nil
}

// Version returns the format version.
func (m *Metadata) Version() string { return m.version }

// SortOrder returns the declared sort order.
func (m *Metadata) SortOrder() SortOrder { return m.sortOrder }

// SetSortOrder sets the declared sort order.
func (m *Metadata) SetSortOrder(so SortOrder) { m.sortOrder = so }

// GroupOrder returns the declared group order.
func (m *Metadata) GroupOrder() GroupOrder { return m.groupOrder }

// SetGroupOrder sets the declared group order.
func (m *Metadata) SetGroupOrder(g GroupOrder) { m.groupOrder = g }

// Get returns the string representation of the value associated with
// the given metadata tag. If the tag is not present the empty string
// is returned.
func (m *Metadata) Get(t Tag) string {
	switch t {
	case versionTag:
		return m.version
	case sortOrderTag, groupOrderTag:
	}
	return getTagPair(m.tags, t)
}

// Set sets the value associated with the given metadata tag to the
// specified value. If value is the empty string and the tag is not a
// required tag, it is deleted.
func (m *Metadata) Set(t Tag, value string) error {
	switch t {
	case versionTag:
		if !validVersion.MatchString(value) {
			return fmt.Errorf("sam: invalid version number: %q", value)
		}
		m.version = value
	case sortOrderTag:
		so, ok := sortOrderMap[value]
		if !ok && value != "" {
			return fmt.Errorf("sam: invalid sort order: %q", value)
		}
		m.sortOrder = so
		m.tags = setTagPair(m.tags, t, value)
	case groupOrderTag:
		g, ok := groupOrderMap[value]
		if !ok && value != "" {
			return fmt.Errorf("sam: invalid group order: %q", value)
		}
		m.groupOrder = g
		m.tags = setTagPair(m.tags, t, value)
	default:
		m.tags = setTagPair(m.tags, t, value)
	}
	return nil
}

// Clone returns a deep copy of the receiver.
func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return nil
	}
	c := *m
	c.tags = append([]tagPair(nil), m.tags...)
	return &c
}

// String returns the SAM @HD line for the Metadata. Optional tags
// follow VN in the order they were set.
func (m *Metadata) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "@HD\tVN:%s", m.version)
	for _, tp := range m.tags {
		fmt.Fprintf(&buf, "\t%s:%s", tp.tag, tp.value)
	}
	return buf.String()
}

func (m *Metadata) headerCode() Tag { return headerTag }
