// Package anim is the bind-pose-free animation model edited by tools and
// used as the meeting point between the motion and clip containers.
package anim

import (
	"fmt"
	"sort"
)

// Kind selects which bake rules and default values apply to an animation.
type Kind uint8

const (
	KindObject Kind = iota
	KindCamera
	KindMaterial
	KindLight
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindCamera:
		return "camera"
	case KindMaterial:
		return "material"
	case KindLight:
		return "light"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k := KindObject; k <= KindLight; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown animation kind %q", s)
}

// Precision is the storage width of keyframe values on disk.
type Precision uint8

const (
	PrecisionSingle Precision = iota
	PrecisionHalf
)

func (p Precision) String() string {
	switch p {
	case PrecisionSingle:
		return "single"
	case PrecisionHalf:
		return "half"
	default:
		return fmt.Sprintf("precision(%d)", uint8(p))
	}
}

func ParsePrecision(s string) (Precision, error) {
	switch s {
	case "single":
		return PrecisionSingle, nil
	case "half":
		return PrecisionHalf, nil
	default:
		return 0, fmt.Errorf("unknown precision %q", s)
	}
}

// ComponentKind indexes the components of a bone.
type ComponentKind int

const (
	ComponentPosition ComponentKind = iota
	ComponentRotation
	ComponentScale

	ComponentCount = 3
)

func (c ComponentKind) String() string {
	switch c {
	case ComponentPosition:
		return "position"
	case ComponentRotation:
		return "rotation"
	case ComponentScale:
		return "scale"
	default:
		return fmt.Sprintf("component(%d)", int(c))
	}
}

// Axis indexes the channels of a component. W only appears on color
// components of material and light animations.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
	AxisW

	AxisCount = 4
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	case AxisW:
		return "w"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// Animation is one animation in neutral form.
type Animation struct {
	ID        int
	Name      string
	EndFrame  int
	Kind      Kind
	Precision Precision
	Bones     []*Bone
}

// Bone returns the bone with the given name, or nil.
func (a *Animation) Bone(name string) *Bone {
	for _, b := range a.Bones {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// EnsureBone returns the named bone, appending it when missing.
func (a *Animation) EnsureBone(name string) *Bone {
	if b := a.Bone(name); b != nil {
		return b
	}
	b := &Bone{Name: name}
	a.Bones = append(a.Bones, b)
	return b
}

// LastFrame returns the highest keyed frame across every channel, or 0.
func (a *Animation) LastFrame() int {
	last := 0
	for _, b := range a.Bones {
		for _, f := range b.Frames() {
			if f > last {
				last = f
			}
		}
	}
	return last
}

// Prune drops empty channels, components and bones.
func (a *Animation) Prune() {
	kept := a.Bones[:0]
	for _, b := range a.Bones {
		if b.Prune() {
			kept = append(kept, b)
		}
	}
	a.Bones = kept
}

// Bone groups the animated components of one skeleton bone. Bone-less
// animations (camera, material, light) use a single bone with no name.
type Bone struct {
	Name       string
	Components [ComponentCount]*Component
}

// Component returns the component or nil when it is absent.
func (b *Bone) Component(kind ComponentKind) *Component {
	return b.Components[kind]
}

// EnsureComponent returns the component, creating it when absent.
func (b *Bone) EnsureComponent(kind ComponentKind) *Component {
	if b.Components[kind] == nil {
		b.Components[kind] = &Component{}
	}
	return b.Components[kind]
}

// Channel returns the channel for a component axis or nil when absent.
func (b *Bone) Channel(kind ComponentKind, axis Axis) *Channel {
	c := b.Components[kind]
	if c == nil {
		return nil
	}
	return c.Channels[axis]
}

// Frames returns the sorted union of keyed frames across all channels.
func (b *Bone) Frames() []int {
	seen := map[int]struct{}{}
	for _, c := range b.Components {
		if c == nil {
			continue
		}
		for _, ch := range c.Channels {
			if ch == nil {
				continue
			}
			for _, k := range ch.Keyframes {
				seen[k.Frame] = struct{}{}
			}
		}
	}
	frames := make([]int, 0, len(seen))
	for f := range seen {
		frames = append(frames, f)
	}
	sort.Ints(frames)
	return frames
}

// Prune removes channels without keyframes and components without
// channels. It reports whether anything is left.
func (b *Bone) Prune() bool {
	kept := false
	for i, c := range b.Components {
		if c == nil {
			continue
		}
		if !c.Prune() {
			b.Components[i] = nil
			continue
		}
		kept = true
	}
	return kept
}

// Component holds the per-axis channels of position, rotation or scale.
type Component struct {
	Channels [AxisCount]*Channel
}

// EnsureChannel returns the channel for axis, creating it when absent.
func (c *Component) EnsureChannel(axis Axis) *Channel {
	if c.Channels[axis] == nil {
		c.Channels[axis] = &Channel{}
	}
	return c.Channels[axis]
}

func (c *Component) Prune() bool {
	kept := false
	for i, ch := range c.Channels {
		if ch == nil || len(ch.Keyframes) == 0 {
			c.Channels[i] = nil
			continue
		}
		kept = true
	}
	return kept
}

// Clone returns a deep copy of a.
func (a *Animation) Clone() *Animation {
	out := a.CloneHeader()
	for _, b := range a.Bones {
		out.Bones = append(out.Bones, b.Clone())
	}
	return out
}

// CloneHeader copies everything but the bones.
func (a *Animation) CloneHeader() *Animation {
	return &Animation{
		ID:        a.ID,
		Name:      a.Name,
		EndFrame:  a.EndFrame,
		Kind:      a.Kind,
		Precision: a.Precision,
	}
}

func (b *Bone) Clone() *Bone {
	out := &Bone{Name: b.Name}
	for i, c := range b.Components {
		if c == nil {
			continue
		}
		nc := &Component{}
		for j, ch := range c.Channels {
			if ch == nil {
				continue
			}
			nc.Channels[j] = &Channel{Keyframes: append([]Keyframe(nil), ch.Keyframes...)}
		}
		out.Components[i] = nc
	}
	return out
}
