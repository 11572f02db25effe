package motion

import (
	"math"

	"github.com/spaghettifunk/anima/engine/core"
)

// KeyRef identifies a keyframe during a save pass: the command position in
// the animation and the keyframe position in time order.
type KeyRef struct {
	Command int
	Key     int
}

// ValuePool is the shared value list of one animation and where every
// keyframe landed in it. It lives only as long as the save pass.
type ValuePool struct {
	Values  []float32
	Slots   map[KeyRef]int
	Claimed []bool
}

// BuildValuePool lays out the values of a in command order. A keyframe
// without curve data reuses the first unclaimed slot holding the same
// float bits. A keyframe with curve data appends all of its values and
// claims those slots so that nothing else points into them.
func BuildValuePool(a *Animation) (*ValuePool, error) {
	p := &ValuePool{Slots: map[KeyRef]int{}}
	for ci, cmd := range a.Commands {
		for ki, k := range cmd.sortedKeyframes() {
			ref := KeyRef{Command: ci, Key: ki}
			if k.Slots() == 1 {
				p.Slots[ref] = p.reuseOrAppend(k.Value)
				continue
			}
			p.Slots[ref] = len(p.Values)
			p.claim(k.Value)
			if k.Flags&FlagQuadratic != 0 {
				p.claim(k.Aux[0])
			}
			if k.Flags&FlagCubic != 0 {
				p.claim(k.Aux[1])
				p.claim(k.Aux[2])
			}
		}
	}
	if err := p.verify(a); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *ValuePool) reuseOrAppend(v float32) int {
	bits := math.Float32bits(v)
	for i, have := range p.Values {
		if !p.Claimed[i] && math.Float32bits(have) == bits {
			return i
		}
	}
	p.Values = append(p.Values, v)
	p.Claimed = append(p.Claimed, false)
	return len(p.Values) - 1
}

func (p *ValuePool) claim(v float32) {
	p.Values = append(p.Values, v)
	p.Claimed = append(p.Claimed, true)
}

// verify checks that every claimed slot has exactly one owner and that the
// pool can be addressed with 16-bit indices.
func (p *ValuePool) verify(a *Animation) error {
	if len(p.Values) > maxU16 {
		return core.NewInvariant("animation %d: value pool of %d entries does not fit 16 bits", a.Index, len(p.Values))
	}
	owner := make(map[int]KeyRef, len(p.Values))
	for ci, cmd := range a.Commands {
		for ki, k := range cmd.sortedKeyframes() {
			ref := KeyRef{Command: ci, Key: ki}
			start, ok := p.Slots[ref]
			if !ok {
				return core.NewInvariant("animation %d: keyframe %v has no pool slot", a.Index, ref)
			}
			n := k.Slots()
			if start+n > len(p.Values) {
				return core.NewInvariant("animation %d: keyframe %v runs past the pool", a.Index, ref)
			}
			for s := start; s < start+n; s++ {
				if n == 1 {
					if p.Claimed[s] {
						return core.NewInvariant("animation %d: keyframe %v reuses claimed slot %d", a.Index, ref, s)
					}
					continue
				}
				if !p.Claimed[s] {
					return core.NewInvariant("animation %d: slot %d of keyframe %v is not claimed", a.Index, s, ref)
				}
				if prev, taken := owner[s]; taken {
					return core.NewInvariant("animation %d: slot %d shared by keyframes %v and %v", a.Index, s, prev, ref)
				}
				owner[s] = ref
			}
		}
	}
	return nil
}

// Widths are the per-command field sizes. They are derived on every save
// and never stored in the model.
type Widths struct {
	TimeWide  bool
	IndexWide bool
}

// ChooseWidths picks 16-bit times when any time exceeds 255 and a 16-bit
// index/flags pair when any index or flags value exceeds 255. The choice
// applies to the whole command.
func ChooseWidths(times, indices []int, flags []uint16) Widths {
	var w Widths
	for _, t := range times {
		if t > maxU8 {
			w.TimeWide = true
			break
		}
	}
	for _, i := range indices {
		if i > maxU8 {
			w.IndexWide = true
			break
		}
	}
	for _, f := range flags {
		if f > maxU8 {
			w.IndexWide = true
			break
		}
	}
	return w
}

const (
	packedComponentMask = 0x0f
	packedTimeWide      = 1 << 4
	packedIndexWide     = 1 << 5
	packedUnknownA      = 1 << 6
	packedUnknownB      = 1 << 7
)

func pack(cmd *Command, w Widths) uint8 {
	b := cmd.Component & packedComponentMask
	if w.TimeWide {
		b |= packedTimeWide
	}
	if w.IndexWide {
		b |= packedIndexWide
	}
	if cmd.UnknownA {
		b |= packedUnknownA
	}
	if cmd.UnknownB {
		b |= packedUnknownB
	}
	return b
}

func unpack(b uint8, cmd *Command) Widths {
	cmd.Component = b & packedComponentMask
	cmd.UnknownA = b&packedUnknownA != 0
	cmd.UnknownB = b&packedUnknownB != 0
	return Widths{
		TimeWide:  b&packedTimeWide != 0,
		IndexWide: b&packedIndexWide != 0,
	}
}
