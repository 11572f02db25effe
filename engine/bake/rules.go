// Package bake converts between baked animations, as stored on disk, and
// the bind-pose-free neutral model.
package bake

import (
	"fmt"

	"github.com/spaghettifunk/anima/engine/anim"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/math"
	"github.com/spaghettifunk/anima/engine/skeleton"
)

// DefaultFieldOfView is the camera field of view, in degrees, used when an
// animation does not key it.
const DefaultFieldOfView float32 = 45

// Rules holds everything that depends on the animation kind. The set of
// implementations is closed; use RulesFor.
type Rules interface {
	Kind() anim.Kind
	// Default is the value of an absent channel.
	Default(component anim.ComponentKind, axis anim.Axis) float32
	// Axes is the number of channels a component may carry.
	Axes() int
	// Unbake turns an animation holding on-disk values into neutral values.
	Unbake(a *anim.Animation, skel skeleton.Skeleton) (*anim.Animation, error)
	// Bake is the inverse of Unbake. The input is left untouched.
	Bake(a *anim.Animation, skel skeleton.Skeleton) (*anim.Animation, error)

	sealed()
}

// RulesFor returns the rules of kind k.
func RulesFor(k anim.Kind) (Rules, error) {
	switch k {
	case anim.KindObject:
		return objectRules{}, nil
	case anim.KindCamera:
		return cameraRules{}, nil
	case anim.KindMaterial:
		return passthroughRules{kind: anim.KindMaterial}, nil
	case anim.KindLight:
		return passthroughRules{kind: anim.KindLight}, nil
	default:
		return nil, fmt.Errorf("no bake rules for %s", k)
	}
}

// Sample evaluates a channel of b at frame, falling back to the kind's
// default when the channel is absent.
func Sample(r Rules, b *anim.Bone, component anim.ComponentKind, axis anim.Axis, frame float32) float32 {
	ch := b.Channel(component, axis)
	if ch.Len() == 0 {
		return r.Default(component, axis)
	}
	return ch.Interpolate(frame)
}

func sampleVec3(r Rules, b *anim.Bone, component anim.ComponentKind, frame float32) math.Vec3 {
	return math.NewVec3(
		Sample(r, b, component, anim.AxisX, frame),
		Sample(r, b, component, anim.AxisY, frame),
		Sample(r, b, component, anim.AxisZ, frame),
	)
}

// Pose is a bone transform with its rotation as XYZ Euler angles in radians.
type Pose struct {
	Position math.Vec3
	Rotation math.Vec3
	Scale    math.Vec3
}

// PoseAt evaluates the position, rotation and scale of b at frame.
func PoseAt(r Rules, b *anim.Bone, frame float32) Pose {
	return Pose{
		Position: sampleVec3(r, b, anim.ComponentPosition, frame),
		Rotation: sampleVec3(r, b, anim.ComponentRotation, frame),
		Scale:    sampleVec3(r, b, anim.ComponentScale, frame),
	}
}

// Matrix composes Scale * Rotation * Translation.
func (p Pose) Matrix() math.Mat4 {
	return math.TransformFromEuler(p.Position, p.Rotation, p.Scale).GetLocal()
}

// Then returns the decomposition of p.Matrix() * m.
func (p Pose) Then(m math.Mat4) Pose {
	translation, rotation, scale := p.Matrix().Mul(m).Decompose()
	return Pose{Position: translation, Rotation: rotation.ToEuler(), Scale: scale}
}

// BakePose composes a neutral pose with the bind pose of bone. animationID
// only qualifies errors.
func BakePose(p Pose, animationID int, bone string, skel skeleton.Skeleton) (Pose, error) {
	m, err := bindMatrix(skel, bone, animationID, false)
	if err != nil {
		return Pose{}, err
	}
	return p.Then(m), nil
}

// UnbakePose removes the bind pose of bone from a baked pose.
func UnbakePose(p Pose, animationID int, bone string, skel skeleton.Skeleton) (Pose, error) {
	m, err := bindMatrix(skel, bone, animationID, true)
	if err != nil {
		return Pose{}, err
	}
	return p.Then(m), nil
}

// objectRules compose keyframes with the bone bind pose.
type objectRules struct{}

func (objectRules) sealed()         {}
func (objectRules) Kind() anim.Kind { return anim.KindObject }
func (objectRules) Axes() int       { return 3 }

func (objectRules) Default(component anim.ComponentKind, _ anim.Axis) float32 {
	if component == anim.ComponentScale {
		return 1
	}
	return 0
}

func (r objectRules) Unbake(a *anim.Animation, skel skeleton.Skeleton) (*anim.Animation, error) {
	return r.transform(a, skel, true)
}

func (r objectRules) Bake(a *anim.Animation, skel skeleton.Skeleton) (*anim.Animation, error) {
	return r.transform(a, skel, false)
}

// transform re-evaluates every bone at the union of its keyed frames as
// Scale * Rotation * Translation * P, where P is the bind pose or its
// inverse, and stores the decomposed result. Every bone with keys comes out
// with all three components keyed at all of those frames.
func (r objectRules) transform(a *anim.Animation, skel skeleton.Skeleton, inverse bool) (*anim.Animation, error) {
	out := a.CloneHeader()
	for _, b := range a.Bones {
		frames := b.Frames()
		if len(frames) == 0 {
			continue
		}
		pose, err := bindMatrix(skel, b.Name, a.ID, inverse)
		if err != nil {
			return nil, err
		}
		nb := out.EnsureBone(b.Name)
		for _, f := range frames {
			p := PoseAt(r, b, float32(f)).Then(pose)
			put(nb, b, anim.ComponentPosition, f, p.Position)
			put(nb, b, anim.ComponentRotation, f, p.Rotation)
			put(nb, b, anim.ComponentScale, f, p.Scale)
		}
	}
	return out, nil
}

// bindMatrix returns the bind pose of bone, or its inverse. A bone-less
// object channel has an identity bind pose.
func bindMatrix(skel skeleton.Skeleton, bone string, animationID int, inverse bool) (math.Mat4, error) {
	if bone == "" {
		return math.NewMat4Identity(), nil
	}
	if skel == nil {
		return math.Mat4{}, &core.MissingSkeletonError{Bone: bone, AnimationID: animationID}
	}
	bp, err := skel.BoneRelativeTransform(bone)
	if err != nil {
		return math.Mat4{}, &core.MissingSkeletonError{Bone: bone, AnimationID: animationID}
	}
	m := bp.Matrix()
	inv, ok := m.Inverse()
	if !ok {
		return math.Mat4{}, &core.SingularTransformError{Bone: bone}
	}
	if inverse {
		return inv, nil
	}
	return m, nil
}

// put keys v on the three axes of a component. Curve data of the source
// keyframe at the same frame is kept as is.
func put(dst, src *anim.Bone, component anim.ComponentKind, frame int, v math.Vec3) {
	c := dst.EnsureComponent(component)
	for axis := anim.AxisX; axis <= anim.AxisZ; axis++ {
		k := anim.Keyframe{Frame: frame, Value: v.Component(int(axis))}
		if orig, ok := src.Channel(component, axis).KeyAt(frame); ok {
			k.Interpolation = orig.Interpolation
			k.ControlA = orig.ControlA
			k.ControlB = orig.ControlB
		}
		ch := c.EnsureChannel(axis)
		ch.Keyframes = append(ch.Keyframes, k)
	}
}

// cameraRules store roll in radians on disk and in degrees in the neutral
// model. Field of view passes through.
type cameraRules struct{}

func (cameraRules) sealed()         {}
func (cameraRules) Kind() anim.Kind { return anim.KindCamera }
func (cameraRules) Axes() int       { return 3 }

func (cameraRules) Default(component anim.ComponentKind, axis anim.Axis) float32 {
	if component == anim.ComponentScale && axis == anim.AxisY {
		return DefaultFieldOfView
	}
	return 0
}

func (cameraRules) Unbake(a *anim.Animation, _ skeleton.Skeleton) (*anim.Animation, error) {
	return scaleRoll(a, math.K_RAD2DEG_MULTIPLIER), nil
}

func (cameraRules) Bake(a *anim.Animation, _ skeleton.Skeleton) (*anim.Animation, error) {
	return scaleRoll(a, math.K_DEG2RAD_MULTIPLIER), nil
}

func scaleRoll(a *anim.Animation, factor float32) *anim.Animation {
	out := a.Clone()
	for _, b := range out.Bones {
		ch := b.Channel(anim.ComponentScale, anim.AxisX)
		if ch == nil {
			continue
		}
		for i := range ch.Keyframes {
			k := &ch.Keyframes[i]
			k.Value *= factor
			k.ControlA *= factor
			k.ControlB *= factor
		}
	}
	return out
}

// passthroughRules serve material and light animations, whose values are
// stored as edited. Color components carry a fourth channel.
type passthroughRules struct {
	kind anim.Kind
}

func (passthroughRules) sealed()           {}
func (r passthroughRules) Kind() anim.Kind { return r.kind }
func (passthroughRules) Axes() int         { return 4 }

func (passthroughRules) Default(anim.ComponentKind, anim.Axis) float32 { return 0 }

func (passthroughRules) Unbake(a *anim.Animation, _ skeleton.Skeleton) (*anim.Animation, error) {
	return a.Clone(), nil
}

func (passthroughRules) Bake(a *anim.Animation, _ skeleton.Skeleton) (*anim.Animation, error) {
	return a.Clone(), nil
}
