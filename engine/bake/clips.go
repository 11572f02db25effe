package bake

import (
	"github.com/spaghettifunk/anima/engine/anim"
	"github.com/spaghettifunk/anima/engine/clip"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/math"
	"github.com/spaghettifunk/anima/engine/skeleton"
)

// ImportClips unbakes sibling clips into neutral object animations.
func ImportClips(clips []*clip.Clip, skel skeleton.Skeleton, opts Options) ([]*anim.Animation, error) {
	return mapAnimations("clip import", clips, opts,
		func(c *clip.Clip) int { return c.ID },
		func(c *clip.Clip) (*anim.Animation, error) { return clipToNeutral(c, skel) },
	)
}

// ExportClips bakes object animations into sibling clips. The sibling
// container only holds skeletal animations, so other kinds are skipped.
func ExportClips(anims []*anim.Animation, skel skeleton.Skeleton, opts Options) ([]*clip.Clip, error) {
	objects := make([]*anim.Animation, 0, len(anims))
	for _, a := range anims {
		if a.Kind != anim.KindObject {
			core.LogWarn("animation %d is a %s animation and has no clip form, skipping", a.ID, a.Kind)
			continue
		}
		objects = append(objects, a)
	}
	return mapAnimations("clip export", objects, opts,
		func(a *anim.Animation) int { return a.ID },
		func(a *anim.Animation) (*clip.Clip, error) { return neutralToClip(a, skel) },
	)
}

func clipToNeutral(c *clip.Clip, skel skeleton.Skeleton) (*anim.Animation, error) {
	out := &anim.Animation{ID: c.ID, Name: c.Name, EndFrame: c.EndFrame, Kind: anim.KindObject}
	for _, t := range c.Tracks {
		if len(t.Keys) == 0 {
			continue
		}
		inv, err := bindMatrix(skel, t.Bone, c.ID, true)
		if err != nil {
			return nil, err
		}
		b := out.EnsureBone(t.Bone)
		for _, k := range t.Keys {
			translation, rotation, scale := k.Matrix().Mul(inv).Decompose()
			setVec3(b, anim.ComponentPosition, k.Frame, translation)
			setVec3(b, anim.ComponentRotation, k.Frame, rotation.ToEuler())
			setVec3(b, anim.ComponentScale, k.Frame, scale)
		}
	}
	return out, nil
}

func neutralToClip(a *anim.Animation, skel skeleton.Skeleton) (*clip.Clip, error) {
	r := objectRules{}
	out := &clip.Clip{ID: a.ID, Name: a.Name, EndFrame: a.EndFrame}
	for _, b := range a.Bones {
		frames := b.Frames()
		if len(frames) == 0 {
			continue
		}
		bind, err := bindMatrix(skel, b.Name, a.ID, false)
		if err != nil {
			return nil, err
		}
		t := &clip.Track{Bone: b.Name, Keys: make([]clip.Key, 0, len(frames))}
		for _, f := range frames {
			translation, rotation, scale := PoseAt(r, b, float32(f)).Matrix().Mul(bind).Decompose()
			t.Keys = append(t.Keys, clip.Key{Frame: f, Translation: translation, Rotation: rotation, Scale: scale})
		}
		out.Tracks = append(out.Tracks, t)
	}
	return out, nil
}

func setVec3(b *anim.Bone, component anim.ComponentKind, frame int, v math.Vec3) {
	c := b.EnsureComponent(component)
	for axis := anim.AxisX; axis <= anim.AxisZ; axis++ {
		c.EnsureChannel(axis).Set(frame, v.Component(int(axis)))
	}
}
