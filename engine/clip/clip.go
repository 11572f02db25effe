// Package clip models the sibling animation container: dense per-bone
// keys baked in the bind pose. Its byte layout lives behind Codec.
package clip

import (
	"sort"

	"github.com/spaghettifunk/anima/engine/math"
	"github.com/spaghettifunk/anima/engine/skeleton"
)

// Clip is one skeletal animation.
type Clip struct {
	ID       int
	Name     string
	EndFrame int
	Tracks   []*Track
}

// Track returns the track of bone, or nil.
func (c *Clip) Track(bone string) *Track {
	for _, t := range c.Tracks {
		if t.Bone == bone {
			return t
		}
	}
	return nil
}

// Track holds the keys of one bone ordered by frame.
type Track struct {
	Bone string
	Keys []Key
}

// Key is a full transform at a frame, relative to the parent bone and
// including the bind pose.
type Key struct {
	Frame       int
	Translation math.Vec3
	Rotation    math.Quaternion
	Scale       math.Vec3
}

// Matrix composes Scale * Rotation * Translation.
func (k Key) Matrix() math.Mat4 {
	return math.TransformFromPositionRotationScale(k.Translation, k.Rotation, k.Scale).GetLocal()
}

func (t *Track) Sort() {
	sort.SliceStable(t.Keys, func(i, j int) bool { return t.Keys[i].Frame < t.Keys[j].Frame })
}

// Codec reads and writes the sibling container bytes against a skeleton.
type Codec interface {
	Decode(data []byte, skel skeleton.Skeleton) ([]*Clip, error)
	Encode(clips []*Clip, skel skeleton.Skeleton) ([]byte, error)
}
