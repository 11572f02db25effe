package skeleton

import (
	"github.com/spaghettifunk/anima/engine/binio"
	"github.com/spaghettifunk/anima/engine/math"
)

const (
	// BlockAlignment is the alignment of the embedded bone table.
	BlockAlignment = 16
	boneRecordSize = 64
	maxBones       = 0x7fff
)

// DecodeBlock reads an embedded bone table starting at off.
func DecodeBlock(r *binio.Reader, off int) (*Rig, error) {
	r.SeekAligned(off, BlockAlignment)
	count := int(r.U32())
	r.Skip(12)
	if err := r.Err(); err != nil {
		return nil, err
	}
	if count > maxBones || off+16+count*boneRecordSize > r.Len() {
		r.FailAt(off, "bone table of %d bones does not fit the buffer", count)
		return nil, r.Err()
	}

	bones := make([]Bone, count)
	for i := range bones {
		b := &bones[i]
		b.Name = r.NameRef()
		b.Parent = int(r.I16())
		b.Flags = r.U16()
		r.Skip(8)
		b.Position = readVec4(r)
		b.Rotation = math.Quaternion(readVec4(r))
		b.Scale = readVec4(r)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	rig, err := NewRig(bones)
	if err != nil {
		r.FailAt(off, "%s", err.Error())
		return nil, r.Err()
	}
	return rig, nil
}

// EncodeBlock appends the bone table, 16-byte aligned, and returns its offset.
// Bone names are queued in the writer's string table.
func (r *Rig) EncodeBlock(w *binio.Writer) int {
	w.Align(BlockAlignment)
	off := w.Len()
	w.U32(uint32(len(r.Bones)))
	w.Zeros(12)
	for _, b := range r.Bones {
		w.NameRef(b.Name)
		w.I16(int16(b.Parent))
		w.U16(b.Flags)
		w.Zeros(8)
		writeVec4(w, b.Position)
		writeVec4(w, math.Vec4(b.Rotation))
		writeVec4(w, b.Scale)
	}
	return off
}

func readVec4(r *binio.Reader) math.Vec4 {
	return math.NewVec4(r.F32(), r.F32(), r.F32(), r.F32())
}

func writeVec4(w *binio.Writer, v math.Vec4) {
	w.F32(v.X)
	w.F32(v.Y)
	w.F32(v.Z)
	w.F32(v.W)
}
