// Package binio holds the little-endian primitives shared by the motion
// container and its embedded skeleton block.
package binio

import (
	"encoding/binary"
	"math"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/x448/float16"
)

// Reader is a bounds-checked cursor over an in-memory buffer. The first
// failure is kept and every later read returns zero values, so callers can
// read a whole record and check Err once.
type Reader struct {
	data []byte
	off  int
	err  error
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) Len() int    { return len(r.data) }
func (r *Reader) Offset() int { return r.off }
func (r *Reader) Err() error  { return r.err }

// Fail records a malformed input error at the current offset unless an
// earlier error is already recorded.
func (r *Reader) Fail(format string, args ...interface{}) {
	r.FailAt(r.off, format, args...)
}

// FailAt records a malformed input error at off.
func (r *Reader) FailAt(off int, format string, args ...interface{}) {
	if r.err == nil {
		r.err = core.NewMalformedInput(off, format, args...)
	}
}

// Seek moves the cursor to an absolute offset.
func (r *Reader) Seek(off int) {
	if r.err != nil {
		return
	}
	if off < 0 || off > len(r.data) {
		r.FailAt(off, "offset outside buffer of %d bytes", len(r.data))
		return
	}
	r.off = off
}

// SeekAligned moves to off after checking it is a multiple of align.
func (r *Reader) SeekAligned(off, align int) {
	if r.err != nil {
		return
	}
	if off%align != 0 {
		r.FailAt(off, "offset is not %d-byte aligned", align)
		return
	}
	r.Seek(off)
}

func (r *Reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.off+n > len(r.data) {
		r.Fail("truncated buffer: need %d bytes, %d left", n, len(r.data)-r.off)
		return false
	}
	return true
}

func (r *Reader) Skip(n int) {
	if r.need(n) {
		r.off += n
	}
}

// Align skips padding up to the next multiple of n.
func (r *Reader) Align(n int) {
	if pad := Padding(r.off, n); pad > 0 {
		r.Skip(pad)
	}
}

func (r *Reader) U8() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

func (r *Reader) U16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

func (r *Reader) I16() int16 {
	return int16(r.U16())
}

func (r *Reader) U32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *Reader) I32() int32 {
	return int32(r.U32())
}

func (r *Reader) F32() float32 {
	return math.Float32frombits(r.U32())
}

// F16 reads an IEEE 754 binary16 value and widens it.
func (r *Reader) F16() float32 {
	return float16.Frombits(r.U16()).Float32()
}

// StringAt returns the zero-terminated string starting at off without
// moving the cursor.
func (r *Reader) StringAt(off int) string {
	if r.err != nil {
		return ""
	}
	if off < 0 || off >= len(r.data) {
		r.FailAt(off, "string offset outside buffer of %d bytes", len(r.data))
		return ""
	}
	for end := off; end < len(r.data); end++ {
		if r.data[end] == 0 {
			return string(r.data[off:end])
		}
	}
	r.FailAt(off, "unterminated string")
	return ""
}

// NameRef reads a self-relative string offset. Zero means no name.
func (r *Reader) NameRef() string {
	pos := r.off
	rel := r.I32()
	if r.err != nil || rel == 0 {
		return ""
	}
	return r.StringAt(pos + int(rel))
}

// Padding returns the bytes needed to bring off up to a multiple of n.
func Padding(off, n int) int {
	if rem := off % n; rem != 0 {
		return n - rem
	}
	return 0
}
