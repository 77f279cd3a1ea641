// Copyright ©2024 the sam-io authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sam implements SAM text format reading and writing. The SAM
// format is described in the SAM specification.
//
// http://samtools.github.io/hts-specs/SAMv1.pdf
package sam

import (
	"bufio"
	"errors"
	"io"
	"log"

	"github.com/willf/bitset"
)

// Reader implements SAM format reading.
type Reader struct {
	r *bufio.Reader
	h *Header

	line int

	seenRefs map[string]*Reference

	lenient bool
	logger  *log.Logger
	skipped *bitset.BitSet
}

// NewReader returns a new Reader, reading from the given io.Reader.
// The header block is consumed before NewReader returns; malformed
// header lines fail construction.
func NewReader(r io.Reader) (*Reader, error) {
	return newReader(r, nil, false)
}

// NewLenientReader returns a new Reader that skips malformed lines
// instead of failing. Each skipped line is reported to logger when it
// is non-nil, and recorded in the set returned by Skipped. A nil
// header line set is recovered from as far as possible; records are
// never silently altered, only dropped whole.
func NewLenientReader(r io.Reader, logger *log.Logger) (*Reader, error) {
	return newReader(r, logger, true)
}

func newReader(r io.Reader, logger *log.Logger, lenient bool) (*Reader, error) {
	h, _ := NewHeader(nil, nil)
	sr := &Reader{
		r:       bufio.NewReader(r),
		h:       h,
		lenient: lenient,
		logger:  logger,
	}
	if lenient {
		sr.skipped = bitset.New(0)
	}

	p, err := sr.r.Peek(1)
	if err == io.EOF || (err == nil && p[0] != '@') {
		// No header block. References are discovered from the
		// records as they are read.
		sr.seenRefs = make(map[string]*Reference)
		return sr, nil
	}
	if err != nil {
		return nil, err
	}

	for {
		p, err := sr.r.Peek(1)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if p[0] != '@' {
			break
		}
		b, err := sr.readLine()
		if err != nil {
			return nil, err
		}
		rec, lerr := ParseHeaderLine(b)
		if lerr == nil {
			lerr = sr.h.Apply(rec)
		}
		if lerr != nil {
			lerr = lineError(lerr, sr.line)
			if !sr.lenient {
				return nil, lerr
			}
			sr.skip(lerr)
		}
	}

	return sr, nil
}

// readLine returns the next line of input without its line terminator.
// A final line without a terminator is returned before io.EOF.
func (r *Reader) readLine() ([]byte, error) {
	b, err := r.r.ReadBytes('\n')
	switch {
	case err == nil:
		b = b[:len(b)-1]
	case err == io.EOF && len(b) != 0:
	default:
		return nil, err
	}
	if len(b) > 0 && b[len(b)-1] == '\r' {
		b = b[:len(b)-1]
	}
	r.line++
	return b, nil
}

func (r *Reader) skip(err error) {
	if r.logger != nil {
		r.logger.Printf("skipping line %d: %v", r.line, err)
	}
	r.skipped.Set(uint(r.line))
}

// Header returns the SAM Header held by the Reader.
func (r *Reader) Header() *Header {
	return r.h
}

// Skipped returns the set of 1-based line numbers skipped by a lenient
// Reader, or nil if the Reader is strict.
func (r *Reader) Skipped() *bitset.BitSet {
	return r.skipped
}

// Read returns the next sam.Record in the SAM stream.
func (r *Reader) Read() (*Record, error) {
	for {
		b, err := r.readLine()
		if err != nil {
			return nil, err
		}
		if len(b) == 0 {
			err = lineError(newParseError(TruncatedRecord, "", errors.New("blank line")), r.line)
			if r.lenient {
				r.skip(err)
				continue
			}
			return nil, err
		}
		if b[0] == '@' {
			err = lineError(newParseError(HeaderAfterAlignment, string(b), errors.New("header line after alignment section")), r.line)
			if r.lenient {
				r.skip(err)
				continue
			}
			return nil, err
		}
		rec, err := r.parseRecord(b)
		if err != nil {
			err = lineError(err, r.line)
			if r.lenient {
				r.skip(err)
				continue
			}
			return nil, err
		}
		return rec, nil
	}
}

func (r *Reader) parseRecord(b []byte) (*Record, error) {
	var rec Record

	// Handle cases where a header was present.
	if r.seenRefs == nil {
		err := rec.UnmarshalSAM(r.h, b)
		if err != nil {
			return nil, err
		}
		return &rec, nil
	}

	// Handle cases where no SAM header is present.
	err := rec.UnmarshalSAM(nil, b)
	if err != nil {
		return nil, err
	}

	if ref, ok := r.seenRefs[rec.Ref.Name()]; ok {
		rec.Ref = ref
	} else if rec.Ref != nil {
		err = r.h.AddReference(rec.Ref)
		if err != nil {
			return nil, err
		}
		r.seenRefs[rec.Ref.Name()] = rec.Ref
	} else {
		r.seenRefs["*"] = nil
	}
	if ref, ok := r.seenRefs[rec.MateRef.Name()]; ok {
		rec.MateRef = ref
	} else if rec.MateRef != nil {
		err = r.h.AddReference(rec.MateRef)
		if err != nil {
			return nil, err
		}
		r.seenRefs[rec.MateRef.Name()] = rec.MateRef
	} else {
		r.seenRefs["*"] = nil
	}

	return &rec, nil
}

// RecordReader wraps types that can read SAM Records.
type RecordReader interface {
	Read() (*Record, error)
}

// Iterator wraps a Reader to provide a convenient loop interface for
// reading SAM data. Successive calls to the Next method will step
// through the records of the provided Reader. Iteration stops
// unrecoverably at EOF or the first error.
type Iterator struct {
	r   RecordReader
	rec *Record
	err error
}

// NewIterator returns a Iterator to read from r.
//
//	i := NewIterator(r)
//	for i.Next() {
//		fn(i.Record())
//	}
//	return i.Error()
func NewIterator(r RecordReader) *Iterator { return &Iterator{r: r} }

// Next advances the Iterator past the next record, which will then be
// available through the Record method. It returns false when the
// iteration stops, either by reaching the end of the input or an error.
// After Next returns false, the Error method will return any error that
// occurred during iteration, except that if it was io.EOF, Error will
// return nil.
func (i *Iterator) Next() bool {
	if i.err != nil {
		return false
	}
	i.rec, i.err = i.r.Read()
	return i.err == nil
}

// Error returns the first non-EOF error that was encountered by the
// Iterator.
func (i *Iterator) Error() error {
	if i.err == io.EOF {
		return nil
	}
	return i.err
}

// Record returns the most recent record read by a call to Next.
func (i *Iterator) Record() *Record { return i.rec }

// Writer implements SAM format writing.
type Writer struct {
	w     io.Writer
	flags int
}

// NewWriter returns a Writer to the given io.Writer using h for the SAM
// header. The format of flags for SAM lines can be FlagDecimal, FlagHex
// or FlagString.
func NewWriter(w io.Writer, h *Header, flags int) (*Writer, error) {
	if flags < FlagDecimal || flags > FlagString {
		return nil, errors.New("sam: flag format option out of range")
	}
	sw := &Writer{w: w, flags: flags}
	text, _ := h.MarshalText()
	_, err := w.Write(text)
	if err != nil {
		return nil, err
	}
	return sw, nil
}

// Write writes r to the SAM stream.
func (w *Writer) Write(r *Record) error {
	b, err := r.MarshalSAM(w.flags)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.w.Write(b)
	return err
}
