package bake

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/anima/engine/anim"
	"github.com/spaghettifunk/anima/engine/motion"
)

// ErrUnmappedCommand is returned for commands the neutral model has no
// channel for, such as the reserved parameter.
var ErrUnmappedCommand = errors.New("command has no neutral channel")

// commandsToBones groups the commands of a by bone, keeping the on-disk
// values. Keyframes sharing a time collapse to the last one.
func commandsToBones(a *motion.Animation, r Rules) (*anim.Animation, error) {
	out := &anim.Animation{
		ID:        a.Index,
		Name:      a.Name,
		EndFrame:  a.EndFrame,
		Kind:      a.Kind,
		Precision: a.Precision,
	}
	for ci, cmd := range a.Commands {
		if cmd.Parameter > motion.ParamScale || int(cmd.Component) >= r.Axes() {
			return nil, fmt.Errorf("animation %d command %d (%s component %d): %w",
				a.Index, ci, cmd.Parameter.Name(a.Kind), cmd.Component, ErrUnmappedCommand)
		}
		ch := out.EnsureBone(cmd.Bone).
			EnsureComponent(anim.ComponentKind(cmd.Parameter)).
			EnsureChannel(anim.Axis(cmd.Component))
		for _, k := range cmd.Keyframes {
			ch.Insert(keyframeToNeutral(k))
		}
	}
	out.Prune()
	return out, nil
}

// bonesToCommands emits one command per keyed channel, bones in order,
// then components, then axes.
func bonesToCommands(a *anim.Animation) *motion.Animation {
	out := &motion.Animation{
		Index:     a.ID,
		Name:      a.Name,
		EndFrame:  a.EndFrame,
		Kind:      a.Kind,
		Precision: a.Precision,
	}
	for _, b := range a.Bones {
		for ci, c := range b.Components {
			if c == nil {
				continue
			}
			for axis, ch := range c.Channels {
				if ch.Len() == 0 {
					continue
				}
				cmd := &motion.Command{
					Bone:      b.Name,
					Parameter: motion.Parameter(ci),
					Component: uint8(axis),
					Keyframes: make([]motion.Keyframe, 0, len(ch.Keyframes)),
				}
				for _, k := range ch.Keyframes {
					cmd.Keyframes = append(cmd.Keyframes, keyframeToNative(k))
				}
				out.Commands = append(out.Commands, cmd)
			}
		}
	}
	return out
}

// keyframeToNeutral maps curve flags to an interpolation. When both curve
// flags are set the cubic controls win.
func keyframeToNeutral(k motion.Keyframe) anim.Keyframe {
	n := anim.Keyframe{Frame: k.Time, Value: k.Value}
	switch {
	case k.Flags&motion.FlagCubic != 0:
		n.Interpolation = anim.Cubic
		n.ControlA = k.Aux[1]
		n.ControlB = k.Aux[2]
	case k.Flags&motion.FlagQuadratic != 0:
		n.Interpolation = anim.Quadratic
		n.ControlA = k.Aux[0]
	}
	return n
}

func keyframeToNative(k anim.Keyframe) motion.Keyframe {
	n := motion.Keyframe{Time: k.Frame, Value: k.Value}
	switch k.Interpolation {
	case anim.Quadratic:
		n.Flags = motion.FlagQuadratic
		n.Aux[0] = k.ControlA
	case anim.Cubic:
		n.Flags = motion.FlagCubic
		n.Aux[1] = k.ControlA
		n.Aux[2] = k.ControlB
	}
	return n
}
