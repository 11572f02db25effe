package interchange

import (
	"fmt"

	"github.com/spaghettifunk/anima/engine/anim"
)

type NeutralDocument struct {
	Header     `yaml:",inline"`
	Animations []NeutralAnimation `yaml:"animations"`
}

type NeutralAnimation struct {
	ID        int           `yaml:"id"`
	Name      string        `yaml:"name,omitempty"`
	EndFrame  int           `yaml:"end_frame"`
	Kind      string        `yaml:"kind"`
	Precision string        `yaml:"precision"`
	Bones     []NeutralBone `yaml:"bones"`
}

type NeutralBone struct {
	Name     string            `yaml:"name,omitempty"`
	Position *NeutralComponent `yaml:"position,omitempty"`
	Rotation *NeutralComponent `yaml:"rotation,omitempty"`
	Scale    *NeutralComponent `yaml:"scale,omitempty"`
}

type NeutralComponent struct {
	X []NeutralKeyframe `yaml:"x,omitempty"`
	Y []NeutralKeyframe `yaml:"y,omitempty"`
	Z []NeutralKeyframe `yaml:"z,omitempty"`
	W []NeutralKeyframe `yaml:"w,omitempty"`
}

func (c *NeutralComponent) axes() [anim.AxisCount]*[]NeutralKeyframe {
	return [anim.AxisCount]*[]NeutralKeyframe{&c.X, &c.Y, &c.Z, &c.W}
}

type NeutralKeyframe struct {
	Frame         int     `yaml:"frame"`
	Value         float32 `yaml:"value"`
	Interpolation string  `yaml:"interpolation,omitempty"`
	ControlA      float32 `yaml:"control_a,omitempty"`
	ControlB      float32 `yaml:"control_b,omitempty"`
}

// MarshalNeutral renders neutral animations as an anima/neutral document.
func MarshalNeutral(anims []*anim.Animation) ([]byte, error) {
	doc := NeutralDocument{Header: Header{Format: FormatNeutral, Version: Version}}
	for _, a := range anims {
		na := NeutralAnimation{
			ID:        a.ID,
			Name:      a.Name,
			EndFrame:  a.EndFrame,
			Kind:      a.Kind.String(),
			Precision: a.Precision.String(),
			Bones:     make([]NeutralBone, 0, len(a.Bones)),
		}
		for _, b := range a.Bones {
			nb := NeutralBone{Name: b.Name}
			slots := [anim.ComponentCount]**NeutralComponent{&nb.Position, &nb.Rotation, &nb.Scale}
			for ci, c := range b.Components {
				if c == nil {
					continue
				}
				nc := &NeutralComponent{}
				for axis, dst := range nc.axes() {
					ch := c.Channels[axis]
					for _, k := range keyframesOf(ch) {
						nk := NeutralKeyframe{Frame: k.Frame, Value: k.Value, ControlA: k.ControlA, ControlB: k.ControlB}
						if k.Interpolation != anim.Linear {
							nk.Interpolation = k.Interpolation.String()
						}
						*dst = append(*dst, nk)
					}
				}
				*slots[ci] = nc
			}
			na.Bones = append(na.Bones, nb)
		}
		doc.Animations = append(doc.Animations, na)
	}
	return encode(doc)
}

func keyframesOf(ch *anim.Channel) []anim.Keyframe {
	if ch == nil {
		return nil
	}
	return ch.Keyframes
}

// UnmarshalNeutral parses an anima/neutral document. Channels come back
// sorted by frame and empty ones are dropped.
func UnmarshalNeutral(data []byte) ([]*anim.Animation, error) {
	var doc NeutralDocument
	if err := decode(data, FormatNeutral, &doc); err != nil {
		return nil, err
	}

	out := make([]*anim.Animation, 0, len(doc.Animations))
	for _, na := range doc.Animations {
		kind, err := anim.ParseKind(na.Kind)
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", na.ID, err)
		}
		precision, err := anim.ParsePrecision(na.Precision)
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", na.ID, err)
		}
		a := &anim.Animation{ID: na.ID, Name: na.Name, EndFrame: na.EndFrame, Kind: kind, Precision: precision}
		for _, nb := range na.Bones {
			if a.Bone(nb.Name) != nil {
				return nil, fmt.Errorf("animation %d: bone %q appears twice", na.ID, nb.Name)
			}
			b := a.EnsureBone(nb.Name)
			for ci, nc := range [anim.ComponentCount]*NeutralComponent{nb.Position, nb.Rotation, nb.Scale} {
				if nc == nil {
					continue
				}
				c := b.EnsureComponent(anim.ComponentKind(ci))
				for axis, src := range nc.axes() {
					if len(*src) == 0 {
						continue
					}
					ch := c.EnsureChannel(anim.Axis(axis))
					for _, nk := range *src {
						interp, err := anim.ParseInterpolation(nk.Interpolation)
						if err != nil {
							return nil, fmt.Errorf("animation %d bone %q: %w", na.ID, nb.Name, err)
						}
						ch.Keyframes = append(ch.Keyframes, anim.Keyframe{
							Frame:         nk.Frame,
							Value:         nk.Value,
							Interpolation: interp,
							ControlA:      nk.ControlA,
							ControlB:      nk.ControlB,
						})
					}
					ch.Sort()
				}
			}
		}
		a.Prune()
		out = append(out, a)
	}
	return out, nil
}
