// Copyright ©2024 the sam-io authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
)

// Program represents a processing program, the @PG record of a SAM
// header.
type Program struct {
	id       int32
	uid      string
	previous string
	name     string
	command  string
	version  string

	tags []tagPair
}

// NewProgram returns a Program with the given unique ID, name, command
// line, previous program ID in the pipeline and version.
func NewProgram(uid, name, command, prev, v string) *Program {
	p := &Program{
		id:       -1, // This is altered by a Header when added.
		uid:      uid,
		previous: prev,
		name:     name,
		command:  command,
		version:  v,
	}
	if name != "" {
		p.tags = append(p.tags, tagPair{tag: programNameTag, value: name})
	}
	if command != "" {
		p.tags = append(p.tags, tagPair{tag: commandLineTag, value: command})
	}
	if prev != "" {
		p.tags = append(p.tags, tagPair{tag: previousProgTag, value: prev})
	}
	if v != "" {
		p.tags = append(p.tags, tagPair{tag: versionTag, value: v})
	}
	return p
}

// AddUniqueProgram adds a program with a guaranteed unique ID to the
// Header, chaining it to the last program already present. The name,
// command line and version of the program are as given and the
// assigned unique ID is returned.
func (bh *Header) AddUniqueProgram(name, command, v string) (*Program, error) {
	uid := uuid.New().String()
	for {
		if _, ok := bh.seenProgs[uid]; !ok {
			break
		}
		uid = uuid.New().String()
	}
	var prev string
	if n := len(bh.progs); n != 0 {
		prev = bh.progs[n-1].uid
	}
	p := NewProgram(uid, name, command, prev, v)
	err := bh.AddProgram(p)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ID returns the header ID for the Program.
func (p *Program) ID() int {
	if p == nil {
		return -1
	}
	return int(p.id)
}

// UID returns the unique program ID for the program.
func (p *Program) UID() string {
	if p == nil {
		return ""
	}
	return p.uid
}

// Name returns the program's name.
func (p *Program) Name() string {
	if p == nil {
		return ""
	}
	return p.name
}

// Command returns the program's command line.
func (p *Program) Command() string {
	if p == nil {
		return ""
	}
	return p.command
}

// Previous returns the unique ID for the previous program in the
// pipeline.
func (p *Program) Previous() string {
	if p == nil {
		return ""
	}
	return p.previous
}

// Version returns the version of the program.
func (p *Program) Version() string {
	if p == nil {
		return ""
	}
	return p.version
}

// Get returns the string representation of the value associated with
// the given program line tag. If the tag is not present the empty
// string is returned.
func (p *Program) Get(t Tag) string {
	if t == idTag {
		return p.UID()
	}
	return getTagPair(p.tags, t)
}

// Clone returns a deep copy of the Program.
func (p *Program) Clone() *Program {
	if p == nil {
		return nil
	}
	cp := *p
	cp.id = -1
	cp.tags = append([]tagPair(nil), p.tags...)
	return &cp
}

// String returns the SAM @PG line for the Program. Tags follow ID in
// the order they were set.
func (p *Program) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "@PG\tID:%s", p.uid)
	for _, tp := range p.tags {
		fmt.Fprintf(&buf, "\t%s:%s", tp.tag, tp.value)
	}
	return buf.String()
}

func (p *Program) headerCode() Tag { return programTag }
