package motion

import (
	"fmt"
	"os"

	"github.com/spaghettifunk/anima/engine/anim"
	"github.com/spaghettifunk/anima/engine/binio"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/skeleton"
)

// DecodeInfo describes how a container was laid out on disk.
type DecodeInfo struct {
	Size       int
	TableLen   int
	Skeleton   int
	Animations map[int]AnimationInfo
}

type AnimationInfo struct {
	Offset      int
	ValueOffset int
	ValueCount  int
	Commands    []CommandInfo
}

type CommandInfo struct {
	Offset int
	Widths Widths
}

// Read parses a whole container held in memory.
func Read(data []byte, opts ...Option) (*Container, error) {
	c, _, err := Decode(data, opts...)
	return c, err
}

// ReadFile loads path into memory and parses it.
func ReadFile(path string, opts ...Option) (*Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Read(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Decode parses data and also reports the layout it found.
func Decode(data []byte, opts ...Option) (*Container, *DecodeInfo, error) {
	o := newOptions(opts)
	r := binio.NewReader(data)
	info := &DecodeInfo{Size: len(data), Animations: map[int]AnimationInfo{}}

	if len(data) < HeaderSize {
		r.FailAt(0, "buffer of %d bytes is shorter than the header", len(data))
		return nil, nil, r.Err()
	}
	if magic := r.I32(); magic != Magic {
		r.FailAt(0, "bad magic 0x%08x", uint32(magic))
		return nil, nil, r.Err()
	}
	if tag := r.U16(); tag != EndianTag {
		r.FailAt(4, "bad endianness tag %d", tag)
		return nil, nil, r.Err()
	}
	if size := r.U16(); size != HeaderSize {
		r.FailAt(6, "unsupported header size %d", size)
		return nil, nil, r.Err()
	}

	c := NewContainer()
	c.Version = r.I32()
	skelOff := int(r.I32())
	count := int(r.U16())
	r.Skip(2)
	c.ReservedA = r.I32()
	c.ReservedB = r.I32()
	c.ReservedC = r.I32()

	table := make([]int, count)
	for i := range table {
		table[i] = int(r.I32())
	}
	if err := r.Err(); err != nil {
		return nil, nil, err
	}
	info.TableLen = count
	info.Skeleton = skelOff

	if skelOff != 0 {
		rig, err := skeleton.DecodeBlock(r, skelOff)
		if err != nil {
			return nil, nil, err
		}
		c.Skeleton = rig
	}
	skel := o.resolve(c.Skeleton)

	for index, off := range table {
		if off == 0 {
			continue
		}
		a, ai, err := decodeAnimation(r, index, off, skel)
		if err != nil {
			return nil, nil, err
		}
		c.Animations[index] = a
		info.Animations[index] = ai
	}
	core.LogDebug("motion: decoded %d animations from %d bytes", len(c.Animations), len(data))
	return c, info, nil
}

func decodeAnimation(r *binio.Reader, index, off int, skel skeleton.Skeleton) (*Animation, AnimationInfo, error) {
	info := AnimationInfo{Offset: off}
	r.SeekAligned(off, BlockAlign)
	a := &Animation{Index: index}
	a.EndFrame = int(r.U16())
	cmdCount := int(r.U16())
	valueCount := int(r.U16())
	kind := r.U8()
	precision := r.U8()
	a.Name = r.NameRef()
	valueOff := int(r.I32())
	cmdOffs := make([]int, cmdCount)
	for i := range cmdOffs {
		cmdOffs[i] = int(r.I32())
	}
	if err := r.Err(); err != nil {
		return nil, info, err
	}
	if anim.Kind(kind) > anim.KindLight {
		r.FailAt(off+6, "animation %d: unknown kind %d", index, kind)
		return nil, info, r.Err()
	}
	if anim.Precision(precision) > anim.PrecisionHalf {
		r.FailAt(off+7, "animation %d: unknown precision %d", index, precision)
		return nil, info, r.Err()
	}
	a.Kind = anim.Kind(kind)
	a.Precision = anim.Precision(precision)

	values := make([]float32, valueCount)
	r.SeekAligned(valueOff, BlockAlign)
	for i := range values {
		if a.Precision == anim.PrecisionHalf {
			values[i] = r.F16()
		} else {
			values[i] = r.F32()
		}
	}
	if err := r.Err(); err != nil {
		return nil, info, err
	}
	info.ValueOffset = valueOff
	info.ValueCount = valueCount

	for _, cmdOff := range cmdOffs {
		cmd, w, err := decodeCommand(r, a, cmdOff, values, skel)
		if err != nil {
			return nil, info, err
		}
		a.Commands = append(a.Commands, cmd)
		info.Commands = append(info.Commands, CommandInfo{Offset: cmdOff, Widths: w})
	}
	return a, info, nil
}

func decodeCommand(r *binio.Reader, a *Animation, off int, values []float32, skel skeleton.Skeleton) (*Command, Widths, error) {
	r.SeekAligned(off, BlockAlign)
	bone := int(r.I16())
	param := r.U8()
	packed := r.U8()
	count := int(r.U16())
	r.Skip(2)
	if err := r.Err(); err != nil {
		return nil, Widths{}, err
	}
	if param > uint8(ParamReserved) {
		r.FailAt(off+2, "animation %d: unknown parameter %d", a.Index, param)
		return nil, Widths{}, r.Err()
	}

	cmd := &Command{Parameter: Parameter(param)}
	w := unpack(packed, cmd)
	if bone >= 0 {
		if skel == nil {
			return nil, w, &core.MissingSkeletonError{Bone: fmt.Sprintf("#%d", bone), AnimationID: a.Index}
		}
		name, ok := skel.BoneName(bone)
		if !ok {
			return nil, w, &core.MissingSkeletonError{Bone: fmt.Sprintf("#%d", bone), AnimationID: a.Index}
		}
		cmd.Bone = name
	}

	cmd.Keyframes = make([]Keyframe, count)
	for i := range cmd.Keyframes {
		if w.TimeWide {
			cmd.Keyframes[i].Time = int(r.U16())
		} else {
			cmd.Keyframes[i].Time = int(r.U8())
		}
	}
	r.Align(BlockAlign)
	for i := range cmd.Keyframes {
		k := &cmd.Keyframes[i]
		pairOff := r.Offset()
		var index int
		if w.IndexWide {
			index = int(r.U16())
			k.Flags = r.U16()
		} else {
			index = int(r.U8())
			k.Flags = uint16(r.U8())
		}
		if r.Err() != nil {
			break
		}
		if index+k.Slots() > len(values) {
			r.FailAt(pairOff, "animation %d: value index %d outside pool of %d", a.Index, index, len(values))
			break
		}
		k.Value = values[index]
		next := index + 1
		if k.Flags&FlagQuadratic != 0 {
			k.Aux[0] = values[next]
			next++
		}
		if k.Flags&FlagCubic != 0 {
			k.Aux[1] = values[next]
			k.Aux[2] = values[next+1]
		}
	}
	r.Align(BlockAlign)
	if err := r.Err(); err != nil {
		return nil, w, err
	}
	return cmd, w, nil
}
