package binio

import (
	"encoding/binary"
	"math"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/x448/float16"
)

type nameRef struct {
	pos  int
	name string
}

// Writer builds a buffer in a single forward pass. Fields whose value is
// only known later are written as placeholders and patched once known.
// Names are collected and written in a trailing string table.
type Writer struct {
	buf   []byte
	names []nameRef
}

func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 1024)}
}

func (w *Writer) Len() int      { return len(w.buf) }
func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) U8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) U16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *Writer) I16(v int16) {
	w.U16(uint16(v))
}

func (w *Writer) U32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) I32(v int32) {
	w.U32(uint32(v))
}

func (w *Writer) F32(v float32) {
	w.U32(math.Float32bits(v))
}

// F16 narrows v to IEEE 754 binary16 with round-to-nearest-even.
func (w *Writer) F16(v float32) {
	w.U16(float16.Fromfloat32(v).Bits())
}

func (w *Writer) Zeros(n int) {
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, 0)
	}
}

// Align pads with zero bytes up to the next multiple of n.
func (w *Writer) Align(n int) {
	w.Zeros(Padding(len(w.buf), n))
}

// Placeholder32 reserves a 32-bit field and returns its position.
func (w *Writer) Placeholder32() int {
	pos := len(w.buf)
	w.U32(0)
	return pos
}

// Patch32 overwrites a reserved 32-bit field.
func (w *Writer) Patch32(pos int, v int32) {
	binary.LittleEndian.PutUint32(w.buf[pos:], uint32(v))
}

// PatchOffset stores the current length as an absolute offset at pos.
func (w *Writer) PatchOffset(pos int) error {
	if len(w.buf) > math.MaxInt32 {
		return core.NewInvariant("offset 0x%x does not fit 32 bits", len(w.buf))
	}
	w.Patch32(pos, int32(len(w.buf)))
	return nil
}

// NameRef reserves a self-relative name offset. An empty name is stored as 0.
func (w *Writer) NameRef(name string) {
	pos := w.Placeholder32()
	if name != "" {
		w.names = append(w.names, nameRef{pos: pos, name: name})
	}
}

// FlushStrings writes every pending name once, zero-terminated, and
// patches the references to them.
func (w *Writer) FlushStrings() {
	written := make(map[string]int, len(w.names))
	for _, ref := range w.names {
		at, ok := written[ref.name]
		if !ok {
			at = len(w.buf)
			w.buf = append(w.buf, ref.name...)
			w.buf = append(w.buf, 0)
			written[ref.name] = at
		}
		w.Patch32(ref.pos, int32(at-ref.pos))
	}
	w.names = w.names[:0]
}
