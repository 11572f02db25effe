package motion

import (
	"os"
	"path/filepath"

	"github.com/chewxy/math32"
	"github.com/spaghettifunk/anima/engine/anim"
	"github.com/spaghettifunk/anima/engine/binio"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/skeleton"
	"github.com/x448/float16"
)

// Encoded is the result of a save pass: the bytes plus the per-animation
// pool layout and command widths that produced them.
type Encoded struct {
	Bytes  []byte
	Pools  map[int]*ValuePool
	Widths map[int][]Widths
}

// Marshal encodes c and returns only the bytes.
func Marshal(c *Container, opts ...Option) ([]byte, error) {
	enc, err := Encode(c, opts...)
	if err != nil {
		return nil, err
	}
	return enc.Bytes, nil
}

// WriteFile encodes c in memory and then replaces path with the result.
// Nothing is written when encoding fails.
func WriteFile(path string, c *Container, opts ...Option) error {
	data, err := Marshal(c, opts...)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Encode serializes c in a single forward pass.
func Encode(c *Container, opts ...Option) (*Encoded, error) {
	o := newOptions(opts)
	skel := o.resolve(c.Skeleton)
	enc := &Encoded{Pools: map[int]*ValuePool{}, Widths: map[int][]Widths{}}

	count := c.TableLen()
	if count > maxU16 {
		return nil, core.NewInvariant("animation index %d does not fit the pointer table", count-1)
	}

	w := binio.NewWriter()
	w.I32(Magic)
	w.U16(EndianTag)
	w.U16(HeaderSize)
	w.I32(c.Version)
	skelPos := w.Placeholder32()
	w.U16(uint16(count))
	w.U16(0)
	w.I32(c.ReservedA)
	w.I32(c.ReservedB)
	w.I32(c.ReservedC)

	table := make([]int, count)
	for i := range table {
		table[i] = w.Placeholder32()
	}

	for _, index := range c.Indices() {
		a := c.Animations[index]
		if index < 0 {
			return nil, core.NewInvariant("negative animation index %d", index)
		}
		if a.Index != index {
			return nil, core.NewInvariant("animation stored under index %d reports index %d", index, a.Index)
		}
		w.Align(BlockAlign)
		if err := w.PatchOffset(table[index]); err != nil {
			return nil, err
		}
		pool, widths, err := encodeAnimation(w, a, skel)
		if err != nil {
			return nil, err
		}
		enc.Pools[index] = pool
		enc.Widths[index] = widths
	}

	if c.Skeleton != nil {
		w.Patch32(skelPos, int32(c.Skeleton.EncodeBlock(w)))
	}
	w.FlushStrings()
	w.Align(BlockAlign)

	enc.Bytes = w.Bytes()
	core.LogDebug("motion: encoded %d animations into %d bytes", len(c.Animations), len(enc.Bytes))
	return enc, nil
}

func encodeAnimation(w *binio.Writer, a *Animation, skel skeleton.Skeleton) (*ValuePool, []Widths, error) {
	switch {
	case a.EndFrame < 0 || a.EndFrame > maxU16:
		return nil, nil, core.NewInvariant("animation %d: end frame %d out of range", a.Index, a.EndFrame)
	case len(a.Commands) > maxU16:
		return nil, nil, core.NewInvariant("animation %d: %d commands do not fit 16 bits", a.Index, len(a.Commands))
	case a.Kind > anim.KindLight:
		return nil, nil, core.NewInvariant("animation %d: unknown kind %d", a.Index, a.Kind)
	case a.Precision > anim.PrecisionHalf:
		return nil, nil, core.NewInvariant("animation %d: unknown precision %d", a.Index, a.Precision)
	}

	pool, err := BuildValuePool(a)
	if err != nil {
		return nil, nil, err
	}
	if a.Precision == anim.PrecisionHalf {
		if err := checkHalfRange(a, pool.Values); err != nil {
			return nil, nil, err
		}
	}

	w.U16(uint16(a.EndFrame))
	w.U16(uint16(len(a.Commands)))
	w.U16(uint16(len(pool.Values)))
	w.U8(uint8(a.Kind))
	w.U8(uint8(a.Precision))
	w.NameRef(a.Name)
	valuePos := w.Placeholder32()
	cmdPos := make([]int, len(a.Commands))
	for i := range cmdPos {
		cmdPos[i] = w.Placeholder32()
	}

	widths := make([]Widths, len(a.Commands))
	for ci, cmd := range a.Commands {
		w.Align(BlockAlign)
		if err := w.PatchOffset(cmdPos[ci]); err != nil {
			return nil, nil, err
		}
		cw, err := encodeCommand(w, a, ci, cmd, pool, skel)
		if err != nil {
			return nil, nil, err
		}
		widths[ci] = cw
	}

	w.Align(BlockAlign)
	if err := w.PatchOffset(valuePos); err != nil {
		return nil, nil, err
	}
	for _, v := range pool.Values {
		if a.Precision == anim.PrecisionHalf {
			w.F16(v)
		} else {
			w.F32(v)
		}
	}
	w.Align(BlockAlign)
	return pool, widths, nil
}

// checkHalfRange rejects finite values that would become infinite in
// binary16.
func checkHalfRange(a *Animation, values []float32) error {
	for i, v := range values {
		if math32.IsInf(v, 0) || math32.IsNaN(v) {
			continue
		}
		if float16.Fromfloat32(v).IsInf(0) {
			return core.NewInvariant("animation %d: value %g at pool slot %d overflows half precision", a.Index, v, i)
		}
	}
	return nil
}

func encodeCommand(w *binio.Writer, a *Animation, ci int, cmd *Command, pool *ValuePool, skel skeleton.Skeleton) (Widths, error) {
	bone := -1
	if cmd.Bone != "" {
		if skel == nil {
			return Widths{}, &core.MissingSkeletonError{Bone: cmd.Bone, AnimationID: a.Index}
		}
		i, ok := skel.BoneIndex(cmd.Bone)
		if !ok {
			return Widths{}, &core.MissingSkeletonError{Bone: cmd.Bone, AnimationID: a.Index}
		}
		bone = i
	}
	switch {
	case bone > 0x7fff:
		return Widths{}, core.NewInvariant("animation %d: bone index %d does not fit 16 bits", a.Index, bone)
	case cmd.Parameter > ParamReserved:
		return Widths{}, core.NewInvariant("animation %d: unknown parameter %d", a.Index, cmd.Parameter)
	case cmd.Component > packedComponentMask:
		return Widths{}, core.NewInvariant("animation %d: component %d does not fit a nibble", a.Index, cmd.Component)
	case len(cmd.Keyframes) > maxU16:
		return Widths{}, core.NewInvariant("animation %d: %d keyframes do not fit 16 bits", a.Index, len(cmd.Keyframes))
	}

	keys := cmd.sortedKeyframes()
	times := make([]int, len(keys))
	indices := make([]int, len(keys))
	flags := make([]uint16, len(keys))
	for ki, k := range keys {
		if k.Time < 0 || k.Time > maxU16 {
			return Widths{}, core.NewInvariant("animation %d: keyframe time %d out of range", a.Index, k.Time)
		}
		times[ki] = k.Time
		indices[ki] = pool.Slots[KeyRef{Command: ci, Key: ki}]
		flags[ki] = k.Flags
	}
	widths := ChooseWidths(times, indices, flags)

	w.I16(int16(bone))
	w.U8(uint8(cmd.Parameter))
	w.U8(pack(cmd, widths))
	w.U16(uint16(len(keys)))
	w.U16(0)
	for _, t := range times {
		if widths.TimeWide {
			w.U16(uint16(t))
		} else {
			w.U8(uint8(t))
		}
	}
	w.Align(BlockAlign)
	for ki := range keys {
		if widths.IndexWide {
			w.U16(uint16(indices[ki]))
			w.U16(flags[ki])
		} else {
			w.U8(uint8(indices[ki]))
			w.U8(uint8(flags[ki]))
		}
	}
	w.Align(BlockAlign)
	return widths, nil
}
