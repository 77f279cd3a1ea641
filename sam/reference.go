// Copyright ©2024 the sam-io authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
)

// Reference is a mapping reference, the @SQ record of a SAM header.
type Reference struct {
	id      int32
	name    string
	lRef    int32
	md5     string
	assemID string
	species string
	uri     *url.URL

	tags []tagPair
}

// NewReference returns a new Reference based on the given parameters.
// Only name and length are mandatory and length must be a valid reference
// length, [1, 1<<31).
func NewReference(name, assemID, species string, length int, md5 []byte, uri *url.URL) (*Reference, error) {
	if !validLen(length) {
		return nil, errBadLen
	}
	if name == "" {
		return nil, errors.New("sam: no name provided")
	}
	r := &Reference{
		id:      -1, // This is altered by a Header when added.
		name:    name,
		lRef:    int32(length),
		assemID: assemID,
		species: species,
		uri:     uri,
	}
	if md5 != nil {
		if len(md5) != 16 {
			return nil, errors.New("sam: invalid md5 sum length")
		}
		r.md5 = fmt.Sprintf("%x", md5)
	}
	if r.md5 != "" {
		r.tags = append(r.tags, tagPair{tag: md5Tag, value: r.md5})
	}
	if assemID != "" {
		r.tags = append(r.tags, tagPair{tag: assemblyIDTag, value: assemID})
	}
	if species != "" {
		r.tags = append(r.tags, tagPair{tag: speciesTag, value: species})
	}
	if uri != nil {
		r.tags = append(r.tags, tagPair{tag: uriTag, value: uri.String()})
	}
	return r, nil
}

// ID returns the header ID of the Reference.
func (r *Reference) ID() int {
	if r == nil {
		return -1
	}
	return int(r.id)
}

// Name returns the reference name.
func (r *Reference) Name() string {
	if r == nil {
		return "*"
	}
	return r.name
}

// AssemblyID returns the assembly ID of the reference.
func (r *Reference) AssemblyID() string {
	if r == nil {
		return ""
	}
	return r.assemID
}

// Species returns the reference species.
func (r *Reference) Species() string {
	if r == nil {
		return ""
	}
	return r.species
}

// MD5 returns the hex text of the MD5 sum of the reference sequence,
// or the empty string if no sum is recorded.
func (r *Reference) MD5() string {
	if r == nil {
		return ""
	}
	return r.md5
}

// URI returns the URI of the reference.
func (r *Reference) URI() string {
	if r == nil || r.uri == nil {
		return ""
	}
	return r.uri.String()
}

// Len returns the length of the reference sequence.
func (r *Reference) Len() int {
	if r == nil {
		return -1
	}
	return int(r.lRef)
}

// SetLen sets the length of the reference sequence to l. The given length
// must be in [1, 1<<31).
func (r *Reference) SetLen(l int) error {
	if !validLen(l) {
		return errBadLen
	}
	r.lRef = int32(l)
	return nil
}

// Get returns the string representation of the value associated with
// the given reference tag. If the tag is not present the empty string
// is returned.
func (r *Reference) Get(t Tag) string {
	switch t {
	case refNameTag:
		return r.Name()
	case refLengthTag:
		return fmt.Sprint(r.lRef)
	}
	return getTagPair(r.tags, t)
}

// String returns the SAM @SQ line for the Reference. Optional tags
// follow SN and LN in the order they were set.
func (r *Reference) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "@SQ\tSN:%s\tLN:%d", r.name, r.lRef)
	for _, tp := range r.tags {
		fmt.Fprintf(&buf, "\t%s:%s", tp.tag, tp.value)
	}
	return buf.String()
}

func (r *Reference) headerCode() Tag { return refDictTag }

// Clone returns a deep copy of the Reference.
func (r *Reference) Clone() *Reference {
	if r == nil {
		return nil
	}
	cr := *r
	cr.id = -1
	cr.tags = append([]tagPair(nil), r.tags...)
	if r.uri != nil {
		cr.uri = &url.URL{}
		*cr.uri = *r.uri
		if r.uri.User != nil {
			cr.uri.User = &url.Userinfo{}
			*cr.uri.User = *r.uri.User
		}
	}
	return &cr
}
