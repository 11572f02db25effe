package interchange

import (
	"fmt"
	"strconv"

	"github.com/spaghettifunk/anima/engine/anim"
	"github.com/spaghettifunk/anima/engine/motion"
)

type MotionDocument struct {
	Header     `yaml:",inline"`
	Container  int32             `yaml:"container_version"`
	ReservedA  int32             `yaml:"reserved_a"`
	ReservedB  int32             `yaml:"reserved_b"`
	ReservedC  int32             `yaml:"reserved_c"`
	Skeleton   *[]BoneEntry      `yaml:"skeleton,omitempty"`
	Animations []MotionAnimation `yaml:"animations"`
}

type MotionAnimation struct {
	Index     int             `yaml:"index"`
	Name      string          `yaml:"name,omitempty"`
	EndFrame  int             `yaml:"end_frame"`
	Kind      string          `yaml:"kind"`
	Precision string          `yaml:"precision"`
	Commands  []MotionCommand `yaml:"commands"`
}

type MotionCommand struct {
	Bone      string           `yaml:"bone,omitempty"`
	Parameter string           `yaml:"parameter"`
	Component uint8            `yaml:"component"`
	UnknownA  bool             `yaml:"unknown_a,omitempty"`
	UnknownB  bool             `yaml:"unknown_b,omitempty"`
	Keyframes []MotionKeyframe `yaml:"keyframes"`
}

// MotionKeyframe carries curve values as strings so they survive
// hand-editing digit for digit.
type MotionKeyframe struct {
	Time  int      `yaml:"time"`
	Value float32  `yaml:"value"`
	Flags uint16   `yaml:"flags,omitempty"`
	Aux   []string `yaml:"aux,omitempty,flow"`
}

// MarshalMotion renders a container as an anima/motion document.
func MarshalMotion(c *motion.Container) ([]byte, error) {
	doc := MotionDocument{
		Header:    Header{Format: FormatMotion, Version: Version},
		Container: c.Version,
		ReservedA: c.ReservedA,
		ReservedB: c.ReservedB,
		ReservedC: c.ReservedC,
	}
	if c.Skeleton != nil {
		entries := bonesToEntries(c.Skeleton.Bones)
		doc.Skeleton = &entries
	}
	for _, i := range c.Indices() {
		a := c.Animations[i]
		ma := MotionAnimation{
			Index:     a.Index,
			Name:      a.Name,
			EndFrame:  a.EndFrame,
			Kind:      a.Kind.String(),
			Precision: a.Precision.String(),
			Commands:  make([]MotionCommand, 0, len(a.Commands)),
		}
		for _, cmd := range a.Commands {
			mc := MotionCommand{
				Bone:      cmd.Bone,
				Parameter: cmd.Parameter.Name(a.Kind),
				Component: cmd.Component,
				UnknownA:  cmd.UnknownA,
				UnknownB:  cmd.UnknownB,
				Keyframes: make([]MotionKeyframe, 0, len(cmd.Keyframes)),
			}
			for _, k := range cmd.Keyframes {
				mc.Keyframes = append(mc.Keyframes, MotionKeyframe{
					Time:  k.Time,
					Value: k.Value,
					Flags: k.Flags,
					Aux:   auxToStrings(k),
				})
			}
			ma.Commands = append(ma.Commands, mc)
		}
		doc.Animations = append(doc.Animations, ma)
	}
	return encode(doc)
}

// UnmarshalMotion parses an anima/motion document.
func UnmarshalMotion(data []byte) (*motion.Container, error) {
	var doc MotionDocument
	if err := decode(data, FormatMotion, &doc); err != nil {
		return nil, err
	}

	c := motion.NewContainer()
	c.Version = doc.Container
	c.ReservedA = doc.ReservedA
	c.ReservedB = doc.ReservedB
	c.ReservedC = doc.ReservedC
	if doc.Skeleton != nil {
		rig, err := entriesToRig(*doc.Skeleton)
		if err != nil {
			return nil, err
		}
		c.Skeleton = rig
	}

	for _, ma := range doc.Animations {
		if _, dup := c.Animations[ma.Index]; dup {
			return nil, fmt.Errorf("animation index %d appears twice", ma.Index)
		}
		kind, err := anim.ParseKind(ma.Kind)
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", ma.Index, err)
		}
		precision, err := anim.ParsePrecision(ma.Precision)
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", ma.Index, err)
		}
		a := &motion.Animation{
			Index:     ma.Index,
			Name:      ma.Name,
			EndFrame:  ma.EndFrame,
			Kind:      kind,
			Precision: precision,
		}
		for ci, mc := range ma.Commands {
			param, err := motion.ParseParameter(mc.Parameter)
			if err != nil {
				return nil, fmt.Errorf("animation %d command %d: %w", ma.Index, ci, err)
			}
			cmd := &motion.Command{
				Bone:      mc.Bone,
				Parameter: param,
				Component: mc.Component,
				UnknownA:  mc.UnknownA,
				UnknownB:  mc.UnknownB,
			}
			for ki, mk := range mc.Keyframes {
				k := motion.Keyframe{Time: mk.Time, Value: mk.Value, Flags: mk.Flags}
				if err := parseAux(mk.Aux, &k); err != nil {
					return nil, fmt.Errorf("animation %d command %d keyframe %d: %w", ma.Index, ci, ki, err)
				}
				cmd.Keyframes = append(cmd.Keyframes, k)
			}
			a.Commands = append(a.Commands, cmd)
		}
		c.Add(a)
	}
	return c, nil
}

// auxToStrings lists the aux values up to the last one the flags use.
func auxToStrings(k motion.Keyframe) []string {
	n := 0
	if k.Flags&motion.FlagQuadratic != 0 {
		n = 1
	}
	if k.Flags&motion.FlagCubic != 0 {
		n = 3
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = strconv.FormatFloat(float64(k.Aux[i]), 'g', -1, 32)
	}
	return out
}

func parseAux(values []string, k *motion.Keyframe) error {
	if len(values) > len(k.Aux) {
		return fmt.Errorf("%d aux values, at most %d allowed", len(values), len(k.Aux))
	}
	for i, s := range values {
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return fmt.Errorf("aux value %q: %w", s, err)
		}
		k.Aux[i] = float32(v)
	}
	return nil
}
