// Copyright ©2024 the sam-io authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// An Aux represents an auxiliary data field from a SAM alignment
// record: a two letter tag, a type discriminant and a typed value.
// The value is held in the compact byte layout used by the hts
// ecosystem so that integer values occupy their smallest width.
type Aux []byte

// A Tag represents an auxiliary or header tag label.
type Tag [2]byte

// NewTag returns a Tag from the tag string. It panics if len(tag) != 2.
func NewTag(tag string) Tag {
	var t Tag
	if copy(t[:], tag) != 2 {
		panic("sam: illegal tag length")
	}
	return t
}

// String returns a string representation of a Tag.
func (t Tag) String() string { return string(t[:]) }

// auxKind collapses the full set of type discriminants to the six
// SAM text types.
var auxKind = [256]byte{
	'A': 'A',
	'c': 'i', 'C': 'i',
	's': 'i', 'S': 'i',
	'i': 'i', 'I': 'i',
	'f': 'f',
	'Z': 'Z',
	'H': 'H',
	'B': 'B',
}

// auxTagOK marks the bytes acceptable within a tag name.
var auxTagOK [256]bool

func init() {
	for c := '0'; c <= '9'; c++ {
		auxTagOK[c] = true
	}
	for c := 'A'; c <= 'Z'; c++ {
		auxTagOK[c] = true
		auxTagOK[c+'a'-'A'] = true
	}
}

func validAuxTag(b []byte) bool {
	return len(b) == 2 && auxTagOK[b[0]] && auxTagOK[b[1]]
}

// NewAux returns a new Aux with the given tag, type and value.
// Acceptable value types depend on the typ parameter:
//
//	A - byte
//	c - int8
//	C - uint8
//	s - int16
//	S - uint16
//	i - int or int32
//	I - uint32
//	f - float32
//	Z - []byte or string
//	H - []byte
//	B - []int8, []int16, []int32, []uint8, []uint16, []uint32 or []float32
//
// An int value is converted to the smallest representation that can
// hold it.
func NewAux(t Tag, typ byte, value interface{}) (Aux, error) {
	switch auxKind[typ] {
	case 'A':
		if c, ok := value.(byte); ok {
			return Aux{t[0], t[1], 'A', c}, nil
		}
	case 'i':
		switch i := value.(type) {
		case int:
			return newIntAux(t, i)
		case int8:
			return Aux{t[0], t[1], 'c', byte(i)}, nil
		case uint8:
			return Aux{t[0], t[1], 'C', i}, nil
		case int16:
			a := Aux{t[0], t[1], 's', 0, 0, 0}
			binary.LittleEndian.PutUint16(a[4:6], uint16(i))
			return a, nil
		case uint16:
			a := Aux{t[0], t[1], 'S', 0, 0, 0}
			binary.LittleEndian.PutUint16(a[4:6], i)
			return a, nil
		case int32:
			a := Aux{t[0], t[1], 'i', 0, 0, 0, 0, 0}
			binary.LittleEndian.PutUint32(a[4:8], uint32(i))
			return a, nil
		case uint32:
			a := Aux{t[0], t[1], 'I', 0, 0, 0, 0, 0}
			binary.LittleEndian.PutUint32(a[4:8], i)
			return a, nil
		}
	case 'f':
		if f, ok := value.(float32); ok {
			a := Aux{t[0], t[1], 'f', 0, 0, 0, 0, 0}
			binary.LittleEndian.PutUint32(a[4:8], math.Float32bits(f))
			return a, nil
		}
	case 'Z':
		switch s := value.(type) {
		case []byte:
			return append(Aux{t[0], t[1], 'Z'}, s...), nil
		case string:
			return append(Aux{t[0], t[1], 'Z'}, s...), nil
		}
	case 'H':
		if b, ok := value.([]byte); ok {
			return append(Aux{t[0], t[1], 'H'}, b...), nil
		}
	case 'B':
		return newArrayAux(t, value)
	default:
		return nil, fmt.Errorf("sam: unknown tag type %q", typ)
	}
	return nil, fmt.Errorf("sam: wrong dynamic type %T for %q tag", value, typ)
}

// newIntAux stores i in the smallest integer representation that can
// hold it, signed widths for negative values and unsigned otherwise.
func newIntAux(t Tag, i int) (Aux, error) {
	switch {
	case math.MinInt8 <= i && i < 0:
		return Aux{t[0], t[1], 'c', byte(int8(i))}, nil
	case 0 <= i && i <= math.MaxUint8:
		return Aux{t[0], t[1], 'C', byte(i)}, nil
	case math.MinInt16 <= i && i < 0:
		a := Aux{t[0], t[1], 's', 0, 0, 0}
		binary.LittleEndian.PutUint16(a[4:6], uint16(int16(i)))
		return a, nil
	case 0 < i && i <= math.MaxUint16:
		a := Aux{t[0], t[1], 'S', 0, 0, 0}
		binary.LittleEndian.PutUint16(a[4:6], uint16(i))
		return a, nil
	case math.MinInt32 <= i && i < 0:
		a := Aux{t[0], t[1], 'i', 0, 0, 0, 0, 0}
		binary.LittleEndian.PutUint32(a[4:8], uint32(int32(i)))
		return a, nil
	case 0 < i && i <= math.MaxInt32:
		a := Aux{t[0], t[1], 'I', 0, 0, 0, 0, 0}
		binary.LittleEndian.PutUint32(a[4:8], uint32(i))
		return a, nil
	default:
		return nil, fmt.Errorf("sam: integer value %d out of range", i)
	}
}

func newArrayAux(t Tag, value interface{}) (Aux, error) {
	a := Aux{t[0], t[1], 'B', 0, 0, 0, 0, 0}
	switch v := value.(type) {
	case []int8:
		a[3] = 'c'
		binary.LittleEndian.PutUint32(a[4:8], uint32(len(v)))
		for _, e := range v {
			a = append(a, byte(e))
		}
	case []uint8:
		a[3] = 'C'
		binary.LittleEndian.PutUint32(a[4:8], uint32(len(v)))
		a = append(a, v...)
	case []int16:
		a[3] = 's'
		binary.LittleEndian.PutUint32(a[4:8], uint32(len(v)))
		for _, e := range v {
			a = appendLEUint16(a, uint16(e))
		}
	case []uint16:
		a[3] = 'S'
		binary.LittleEndian.PutUint32(a[4:8], uint32(len(v)))
		for _, e := range v {
			a = appendLEUint16(a, e)
		}
	case []int32:
		a[3] = 'i'
		binary.LittleEndian.PutUint32(a[4:8], uint32(len(v)))
		for _, e := range v {
			a = appendLEUint32(a, uint32(e))
		}
	case []uint32:
		a[3] = 'I'
		binary.LittleEndian.PutUint32(a[4:8], uint32(len(v)))
		for _, e := range v {
			a = appendLEUint32(a, e)
		}
	case []float32:
		a[3] = 'f'
		binary.LittleEndian.PutUint32(a[4:8], uint32(len(v)))
		for _, e := range v {
			a = appendLEUint32(a, math.Float32bits(e))
		}
	default:
		return nil, fmt.Errorf("sam: unsupported array type: %T", value)
	}
	return a, nil
}

func appendLEUint16(a Aux, v uint16) Aux {
	return append(a, byte(v), byte(v>>8))
}

func appendLEUint32(a Aux, v uint32) Aux {
	return append(a, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// ParseAux returns an Aux parsed from a TAG:TYPE:VALUE token.
func ParseAux(text []byte) (Aux, error) {
	tf := bytes.SplitN(text, []byte{':'}, 3)
	if len(tf) != 3 || len(tf[1]) != 1 {
		return nil, newParseError(MalformedField, string(text), errors.New("expected TAG:TYPE:VALUE"))
	}
	if !validAuxTag(tf[0]) {
		return nil, newParseError(MalformedField, string(text), fmt.Errorf("invalid tag name %q", tf[0]))
	}
	var t Tag
	copy(t[:], tf[0])
	switch typ := tf[1][0]; typ {
	case 'A':
		if len(tf[2]) != 1 || tf[2][0] < '!' || tf[2][0] > '~' {
			return nil, newParseError(MalformedField, string(text), errors.New("A value must be one printable character"))
		}
		return Aux{t[0], t[1], 'A', tf[2][0]}, nil
	case 'i':
		i, err := strconv.ParseInt(string(tf[2]), 10, 32)
		if err != nil {
			return nil, newParseError(MalformedField, string(text), err)
		}
		return newIntAux(t, int(i))
	case 'f':
		f, err := strconv.ParseFloat(string(tf[2]), 32)
		if err != nil {
			return nil, newParseError(MalformedField, string(text), err)
		}
		a := Aux{t[0], t[1], 'f', 0, 0, 0, 0, 0}
		binary.LittleEndian.PutUint32(a[4:8], math.Float32bits(float32(f)))
		return a, nil
	case 'Z':
		for _, c := range tf[2] {
			if c < ' ' || c > '~' {
				return nil, newParseError(MalformedField, string(text), fmt.Errorf("non-printable byte %#x in Z value", c))
			}
		}
		return append(Aux{t[0], t[1], 'Z'}, tf[2]...), nil
	case 'H':
		if len(tf[2])%2 != 0 {
			return nil, newParseError(InvalidHexTag, string(text), errors.New("odd length hex value"))
		}
		b := make([]byte, hex.DecodedLen(len(tf[2])))
		_, err := hex.Decode(b, tf[2])
		if err != nil {
			return nil, newParseError(InvalidHexTag, string(text), err)
		}
		return append(Aux{t[0], t[1], 'H'}, b...), nil
	case 'B':
		return parseArrayAux(t, tf[2], text)
	default:
		return nil, newParseError(UnknownTagType, string(text), fmt.Errorf("unknown tag type %q", typ))
	}
}

// parseArrayAux parses the value of a B tag: a subtype character
// followed by comma separated numeric literals, each validated under
// the subtype's numeric rule.
func parseArrayAux(t Tag, v []byte, text []byte) (Aux, error) {
	if len(v) < 2 || v[1] != ',' {
		return nil, newParseError(InvalidArrayTag, string(text), errors.New("missing array subtype"))
	}
	nf := bytes.Split(v[2:], []byte{','})
	a := Aux{t[0], t[1], 'B', v[0], 0, 0, 0, 0}
	binary.LittleEndian.PutUint32(a[4:8], uint32(len(nf)))
	switch v[0] {
	case 'c':
		for _, n := range nf {
			e, err := strconv.ParseInt(string(n), 10, 8)
			if err != nil {
				return nil, newParseError(InvalidArrayTag, string(text), err)
			}
			a = append(a, byte(int8(e)))
		}
	case 'C':
		for _, n := range nf {
			e, err := strconv.ParseUint(string(n), 10, 8)
			if err != nil {
				return nil, newParseError(InvalidArrayTag, string(text), err)
			}
			a = append(a, byte(e))
		}
	case 's':
		for _, n := range nf {
			e, err := strconv.ParseInt(string(n), 10, 16)
			if err != nil {
				return nil, newParseError(InvalidArrayTag, string(text), err)
			}
			a = appendLEUint16(a, uint16(int16(e)))
		}
	case 'S':
		for _, n := range nf {
			e, err := strconv.ParseUint(string(n), 10, 16)
			if err != nil {
				return nil, newParseError(InvalidArrayTag, string(text), err)
			}
			a = appendLEUint16(a, uint16(e))
		}
	case 'i':
		for _, n := range nf {
			e, err := strconv.ParseInt(string(n), 10, 32)
			if err != nil {
				return nil, newParseError(InvalidArrayTag, string(text), err)
			}
			a = appendLEUint32(a, uint32(int32(e)))
		}
	case 'I':
		for _, n := range nf {
			e, err := strconv.ParseUint(string(n), 10, 32)
			if err != nil {
				return nil, newParseError(InvalidArrayTag, string(text), err)
			}
			a = appendLEUint32(a, uint32(e))
		}
	case 'f':
		for _, n := range nf {
			e, err := strconv.ParseFloat(string(n), 32)
			if err != nil {
				return nil, newParseError(InvalidArrayTag, string(text), err)
			}
			a = appendLEUint32(a, math.Float32bits(float32(e)))
		}
	default:
		return nil, newParseError(InvalidArrayTag, string(text), fmt.Errorf("unknown array subtype %q", v[0]))
	}
	return a, nil
}

// Tag returns the Tag representation of the Aux tag ID.
func (a Aux) Tag() Tag { var t Tag; copy(t[:], a[:2]); return t }

// Type returns a byte corresponding to the type of the auxiliary tag.
// Returned values are in {'A', 'c', 'C', 's', 'S', 'i', 'I', 'f', 'Z', 'H', 'B'}.
func (a Aux) Type() byte { return a[2] }

// Kind returns a byte corresponding to the kind of the auxiliary tag.
// Returned values are in {'A', 'i', 'f', 'Z', 'H', 'B'}.
func (a Aux) Kind() byte { return auxKind[a[2]] }

// Value returns v containing the value of the auxiliary tag.
func (a Aux) Value() interface{} {
	switch t := a.Type(); t {
	case 'A':
		return a[3]
	case 'c':
		return int8(a[3])
	case 'C':
		return uint8(a[3])
	case 's':
		return int16(binary.LittleEndian.Uint16(a[4:6]))
	case 'S':
		return binary.LittleEndian.Uint16(a[4:6])
	case 'i':
		return int32(binary.LittleEndian.Uint32(a[4:8]))
	case 'I':
		return binary.LittleEndian.Uint32(a[4:8])
	case 'f':
		return math.Float32frombits(binary.LittleEndian.Uint32(a[4:8]))
	case 'Z':
		return string(a[3:])
	case 'H':
		return []byte(a[3:])
	case 'B':
		n := int(binary.LittleEndian.Uint32(a[4:8]))
		data := a[8:]
		switch sub := a[3]; sub {
		case 'c':
			v := make([]int8, n)
			for i := range v {
				v[i] = int8(data[i])
			}
			return v
		case 'C':
			return append([]uint8(nil), data[:n]...)
		case 's':
			v := make([]int16, n)
			for i := range v {
				v[i] = int16(binary.LittleEndian.Uint16(data[2*i:]))
			}
			return v
		case 'S':
			v := make([]uint16, n)
			for i := range v {
				v[i] = binary.LittleEndian.Uint16(data[2*i:])
			}
			return v
		case 'i':
			v := make([]int32, n)
			for i := range v {
				v[i] = int32(binary.LittleEndian.Uint32(data[4*i:]))
			}
			return v
		case 'I':
			v := make([]uint32, n)
			for i := range v {
				v[i] = binary.LittleEndian.Uint32(data[4*i:])
			}
			return v
		case 'f':
			v := make([]float32, n)
			for i := range v {
				v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
			}
			return v
		default:
			return fmt.Errorf("%%!(UNKNOWN ARRAY type=%c)", sub)
		}
	default:
		return fmt.Errorf("%%!(UNKNOWN type=%c)", t)
	}
}

const hexDigits = "0123456789ABCDEF"

// String returns the SAM text representation of the auxiliary tag,
// re-emitting numeric values with the formatting rules used at parse
// time.
func (a Aux) String() string { return string(a.appendSAM(nil)) }

// appendSAM appends the TAG:TYPE:VALUE text of a to buf. Integer
// discriminants all render as type i, their SAM text type.
func (a Aux) appendSAM(buf []byte) []byte {
	buf = append(buf, a[0], a[1])
	switch a.Type() {
	case 'A':
		buf = append(buf, ':', 'A', ':', a[3])
	case 'c':
		buf = strconv.AppendInt(append(buf, ":i:"...), int64(int8(a[3])), 10)
	case 'C':
		buf = strconv.AppendUint(append(buf, ":i:"...), uint64(a[3]), 10)
	case 's':
		buf = strconv.AppendInt(append(buf, ":i:"...), int64(int16(binary.LittleEndian.Uint16(a[4:6]))), 10)
	case 'S':
		buf = strconv.AppendUint(append(buf, ":i:"...), uint64(binary.LittleEndian.Uint16(a[4:6])), 10)
	case 'i':
		buf = strconv.AppendInt(append(buf, ":i:"...), int64(int32(binary.LittleEndian.Uint32(a[4:8]))), 10)
	case 'I':
		buf = strconv.AppendUint(append(buf, ":i:"...), uint64(binary.LittleEndian.Uint32(a[4:8])), 10)
	case 'f':
		f := math.Float32frombits(binary.LittleEndian.Uint32(a[4:8]))
		buf = strconv.AppendFloat(append(buf, ":f:"...), float64(f), 'g', -1, 32)
	case 'Z':
		buf = append(append(buf, ":Z:"...), a[3:]...)
	case 'H':
		buf = append(buf, ":H:"...)
		for _, b := range a[3:] {
			buf = append(buf, hexDigits[b>>4], hexDigits[b&0xf])
		}
	case 'B':
		buf = append(append(buf, ":B:"...), a[3])
		n := int(binary.LittleEndian.Uint32(a[4:8]))
		data := a[8:]
		switch sub := a[3]; sub {
		case 'c':
			for i := 0; i < n; i++ {
				buf = strconv.AppendInt(append(buf, ','), int64(int8(data[i])), 10)
			}
		case 'C':
			for i := 0; i < n; i++ {
				buf = strconv.AppendUint(append(buf, ','), uint64(data[i]), 10)
			}
		case 's':
			for i := 0; i < n; i++ {
				buf = strconv.AppendInt(append(buf, ','), int64(int16(binary.LittleEndian.Uint16(data[2*i:]))), 10)
			}
		case 'S':
			for i := 0; i < n; i++ {
				buf = strconv.AppendUint(append(buf, ','), uint64(binary.LittleEndian.Uint16(data[2*i:])), 10)
			}
		case 'i':
			for i := 0; i < n; i++ {
				buf = strconv.AppendInt(append(buf, ','), int64(int32(binary.LittleEndian.Uint32(data[4*i:]))), 10)
			}
		case 'I':
			for i := 0; i < n; i++ {
				buf = strconv.AppendUint(append(buf, ','), uint64(binary.LittleEndian.Uint32(data[4*i:])), 10)
			}
		case 'f':
			for i := 0; i < n; i++ {
				f := math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
				buf = strconv.AppendFloat(append(buf, ','), float64(f), 'g', -1, 32)
			}
		}
	}
	return buf
}

// matches returns whether the tag ID of a matches the first two bytes
// of tag.
func (a Aux) matches(tag []byte) bool { return a[0] == tag[0] && a[1] == tag[1] }

// AuxFields is a set of auxiliary fields, in original token order.
type AuxFields []Aux

// Get returns the auxiliary field identified by the given tag, or nil
// if no field matches.
func (a AuxFields) Get(tag Tag) Aux {
	for _, f := range a {
		if f.Tag() == tag {
			return f
		}
	}
	return nil
}
