// Package skeleton describes the bone hierarchy that animation keyframes
// are baked against.
package skeleton

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/anima/engine/math"
)

var ErrBoneNotFound = errors.New("bone not found")

// BindPose is the rest transform of a bone relative to its parent.
type BindPose struct {
	Position math.Vec4
	Rotation math.Quaternion
	Scale    math.Vec4
}

// IdentityBindPose is the pose of a bone with no rest offset.
func IdentityBindPose() BindPose {
	return BindPose{
		Rotation: math.NewQuatIdentity(),
		Scale:    math.NewVec4(1, 1, 1, 0),
	}
}

// Matrix composes Scale * Rotation * Translation.
func (b BindPose) Matrix() math.Mat4 {
	t := math.TransformFromPositionRotationScale(b.Position.ToVec3(), b.Rotation, b.Scale.ToVec3())
	return t.GetLocal()
}

// Skeleton is the read-only view of a bone hierarchy used while baking and
// while resolving bone indices in the binary container. A nil Skeleton
// means the animation has no bones.
type Skeleton interface {
	BoneRelativeTransform(name string) (BindPose, error)
	BoneIndex(name string) (int, bool)
	BoneName(index int) (string, bool)
}

// Bone is one entry of a Rig.
type Bone struct {
	Name     string
	Parent   int
	Flags    uint16
	Position math.Vec4
	Rotation math.Quaternion
	Scale    math.Vec4
}

func (b Bone) BindPose() BindPose {
	return BindPose{Position: b.Position, Rotation: b.Rotation, Scale: b.Scale}
}

// Rig is an in-memory skeleton. It is also the model of the bone table a
// motion container may embed.
type Rig struct {
	Bones []Bone
	index map[string]int
}

var _ Skeleton = &Rig{}

// NewRig validates the hierarchy: names are unique and non-empty, and every
// parent is -1 or refers to another bone.
func NewRig(bones []Bone) (*Rig, error) {
	index := make(map[string]int, len(bones))
	for i, b := range bones {
		switch {
		case b.Name == "":
			return nil, fmt.Errorf("skeleton: bone %d has no name", i)
		case b.Parent >= len(bones):
			return nil, fmt.Errorf("skeleton: bone %q parent %d out of range", b.Name, b.Parent)
		case b.Parent == i:
			return nil, fmt.Errorf("skeleton: bone %q is its own parent", b.Name)
		}
		if _, dup := index[b.Name]; dup {
			return nil, fmt.Errorf("skeleton: duplicate bone %q", b.Name)
		}
		index[b.Name] = i
	}
	out := make([]Bone, len(bones))
	copy(out, bones)
	for i := range out {
		if out[i].Parent < 0 {
			out[i].Parent = -1
		}
	}
	return &Rig{Bones: out, index: index}, nil
}

func (r *Rig) BoneIndex(name string) (int, bool) {
	i, ok := r.index[name]
	return i, ok
}

func (r *Rig) BoneName(index int) (string, bool) {
	if index < 0 || index >= len(r.Bones) {
		return "", false
	}
	return r.Bones[index].Name, true
}

func (r *Rig) BoneRelativeTransform(name string) (BindPose, error) {
	i, ok := r.index[name]
	if !ok {
		return BindPose{}, fmt.Errorf("%w: %q", ErrBoneNotFound, name)
	}
	return r.Bones[i].BindPose(), nil
}
