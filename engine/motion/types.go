// Package motion reads and writes the native .motn animation container.
package motion

import (
	"fmt"
	"sort"

	"github.com/spaghettifunk/anima/engine/anim"
	"github.com/spaghettifunk/anima/engine/skeleton"
)

const (
	Magic      int32  = 0x4E544F4D // "MOTN"
	EndianTag  uint16 = 65534
	HeaderSize        = 32
	BlockAlign        = 4
	Extension         = ".motn"
	maxU8             = 0xff
	maxU16            = 0xffff
)

// Keyframe flag bits. Unlisted bits are carried opaquely.
const (
	FlagQuadratic uint16 = 1 << 0
	FlagCubic     uint16 = 1 << 1
)

// Parameter is the 2-bit code of what a command animates. Its meaning
// depends on the animation kind.
type Parameter uint8

const (
	ParamPosition Parameter = 0
	ParamRotation Parameter = 1
	ParamScale    Parameter = 2
	ParamReserved Parameter = 3

	ParamColor      = ParamPosition
	ParamLightScale = ParamScale
)

// Name returns the parameter name as seen by an animation of kind k.
func (p Parameter) Name(k anim.Kind) string {
	switch {
	case p == ParamPosition && (k == anim.KindMaterial || k == anim.KindLight):
		return "color"
	case p == ParamScale && k == anim.KindLight:
		return "lightscale"
	case p == ParamPosition:
		return "position"
	case p == ParamRotation:
		return "rotation"
	case p == ParamScale:
		return "scale"
	default:
		return fmt.Sprintf("param(%d)", uint8(p))
	}
}

// ParseParameter accepts every name returned by Name.
func ParseParameter(s string) (Parameter, error) {
	switch s {
	case "position", "color":
		return ParamPosition, nil
	case "rotation":
		return ParamRotation, nil
	case "scale", "lightscale":
		return ParamScale, nil
	case "reserved":
		return ParamReserved, nil
	}
	var p uint8
	if _, err := fmt.Sscanf(s, "param(%d)", &p); err == nil && p <= 3 {
		return Parameter(p), nil
	}
	return 0, fmt.Errorf("unknown parameter %q", s)
}

// Container is a whole .motn file. Animations are addressed by their
// index, which may leave holes.
type Container struct {
	Version    int32
	ReservedA  int32
	ReservedB  int32
	ReservedC  int32
	Skeleton   *skeleton.Rig
	Animations map[int]*Animation
}

func NewContainer() *Container {
	return &Container{Animations: map[int]*Animation{}}
}

// Add stores a under its index, replacing any animation already there.
func (c *Container) Add(a *Animation) {
	if c.Animations == nil {
		c.Animations = map[int]*Animation{}
	}
	c.Animations[a.Index] = a
}

// Indices returns the animation indices in ascending order.
func (c *Container) Indices() []int {
	out := make([]int, 0, len(c.Animations))
	for i := range c.Animations {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// TableLen is the length of the pointer table: max index + 1.
func (c *Container) TableLen() int {
	n := 0
	for i := range c.Animations {
		if i+1 > n {
			n = i + 1
		}
	}
	return n
}

// Animation is one block of the container.
type Animation struct {
	Index     int
	Name      string
	EndFrame  int
	Kind      anim.Kind
	Precision anim.Precision
	Commands  []*Command
}

// Command is the on-disk channel: one component of one parameter, for one
// bone or for none.
type Command struct {
	Bone      string
	Parameter Parameter
	Component uint8
	UnknownA  bool
	UnknownB  bool
	Keyframes []Keyframe
}

// Keyframe is a baked keyframe. Aux[0] is the quadratic control value,
// Aux[1] and Aux[2] the cubic ones.
type Keyframe struct {
	Time  int
	Value float32
	Flags uint16
	Aux   [3]float32
}

// Slots is the number of consecutive pool entries the keyframe occupies.
func (k Keyframe) Slots() int {
	n := 1
	if k.Flags&FlagQuadratic != 0 {
		n++
	}
	if k.Flags&FlagCubic != 0 {
		n += 2
	}
	return n
}

// sortedKeyframes returns the keyframes ordered by time without touching
// the command.
func (c *Command) sortedKeyframes() []Keyframe {
	keys := make([]Keyframe, len(c.Keyframes))
	copy(keys, c.Keyframes)
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].Time < keys[j].Time })
	return keys
}
