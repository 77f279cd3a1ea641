// Copyright ©2024 the sam-io authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"time"
)

const (
	iso8601Date      = "2006-01-02"
	iso8601TimeDateZ = "2006-01-02T15:04:05Z"
	iso8601TimeDateN = "2006-01-02T15:04:05-0700"
)

var iso8601 = []string{iso8601Date, iso8601TimeDateZ, iso8601TimeDateN}

// ReadGroup represents a sequencing read group, the @RG record of a
// SAM header.
type ReadGroup struct {
	id           int32
	name         string
	date         time.Time
	flowOrder    string
	library      string
	program      string
	insertSize   int
	platform     string
	platformUnit string
	sample       string

	tags []tagPair
}

// NewReadGroup returns a ReadGroup with the given required name.
// Other read group tags are set with Set.
func NewReadGroup(name string) (*ReadGroup, error) {
	if name == "" {
		return nil, errors.New("sam: no read group name provided")
	}
	return &ReadGroup{
		id:   -1, // This is altered by a Header when added.
		name: name,
	}, nil
}

// ID returns the header ID for the ReadGroup.
func (r *ReadGroup) ID() int {
	if r == nil {
		return -1
	}
	return int(r.id)
}

// Name returns the read group's name.
func (r *ReadGroup) Name() string {
	if r == nil {
		return "*"
	}
	return r.name
}

// Clone returns a deep copy of the ReadGroup.
func (r *ReadGroup) Clone() *ReadGroup {
	if r == nil {
		return nil
	}
	cr := *r
	cr.tags = append([]tagPair(nil), r.tags...)
	cr.id = -1
	return &cr
}

// Library returns the library name for the read group.
func (r *ReadGroup) Library() string { return r.library }

// Program returns the name of the program that produced the read group.
func (r *ReadGroup) Program() string { return r.program }

// Platform returns the platform that produced the read group.
func (r *ReadGroup) Platform() string { return r.platform }

// PlatformUnit returns the unique platform unit for the read group.
func (r *ReadGroup) PlatformUnit() string { return r.platformUnit }

// Sample returns the sample name for the read group.
func (r *ReadGroup) Sample() string { return r.sample }

// InsertSize returns the predicted median insert size for the read group.
func (r *ReadGroup) InsertSize() int { return r.insertSize }

// FlowOrder returns the flow order of nucleotide bases for the read
// group, or "*" when the flow order is not discrete.
func (r *ReadGroup) FlowOrder() string {
	if r.flowOrder == "" {
		return "*"
	}
	return r.flowOrder
}

// Time returns the time the read group was produced.
func (r *ReadGroup) Time() time.Time { return r.date }

// Get returns the string representation of the value associated with the
// given read group line tag. If the tag is not present the empty string
// is returned.
func (r *ReadGroup) Get(t Tag) string {
	if t == idTag {
		return r.Name()
	}
	return getTagPair(r.tags, t)
}

// Set sets the value associated with the given read group line tag to
// the specified value. If value is the empty string and the tag may be
// absent, it is deleted.
func (r *ReadGroup) Set(t Tag, value string) error {
	switch t {
	case idTag:
		if value == "" {
			return errors.New("sam: no read group name provided")
		}
		r.name = value
		return nil
	case dateTag:
		if value == "" {
			r.date = time.Time{}
			break
		}
		var (
			date time.Time
			err  error
		)
		for _, tf := range iso8601 {
			date, err = time.ParseInLocation(tf, value, nil)
			if err == nil {
				break
			}
		}
		if err != nil {
			return err
		}
		r.date = date
	case flowOrderTag:
		if value == "" || value == "*" {
			r.flowOrder = ""
		} else {
			r.flowOrder = value
		}
	case libraryTag:
		r.library = value
	case programTag:
		r.program = value
	case insertSizeTag:
		if value == "" {
			r.insertSize = 0
			break
		}
		i, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		if !validInt32(i) {
			return errBadLen
		}
		r.insertSize = i
	case platformTag:
		r.platform = value
	case platformUnitTag:
		r.platformUnit = value
	case sampleTag:
		r.sample = value
	}
	r.tags = setTagPair(r.tags, t, value)
	return nil
}

// String returns the SAM @RG line for the ReadGroup. Tags follow ID
// in the order they were set.
func (r *ReadGroup) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "@RG\tID:%s", r.name)
	for _, tp := range r.tags {
		fmt.Fprintf(&buf, "\t%s:%s", tp.tag, tp.value)
	}
	return buf.String()
}

func (r *ReadGroup) headerCode() Tag { return readGroupTag }
