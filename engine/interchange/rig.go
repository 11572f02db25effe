package interchange

import (
	"github.com/spaghettifunk/anima/engine/math"
	"github.com/spaghettifunk/anima/engine/skeleton"
)

type RigDocument struct {
	Header `yaml:",inline"`
	Bones  []BoneEntry `yaml:"bones"`
}

// BoneEntry is one bone with its bind pose. Rotation is a quaternion in
// x, y, z, w order.
type BoneEntry struct {
	Name     string     `yaml:"name"`
	Parent   int        `yaml:"parent"`
	Flags    uint16     `yaml:"flags,omitempty"`
	Position [4]float32 `yaml:"position,flow"`
	Rotation [4]float32 `yaml:"rotation,flow"`
	Scale    [4]float32 `yaml:"scale,flow"`
}

func MarshalRig(r *skeleton.Rig) ([]byte, error) {
	return encode(RigDocument{
		Header: Header{Format: FormatRig, Version: Version},
		Bones:  bonesToEntries(r.Bones),
	})
}

func UnmarshalRig(data []byte) (*skeleton.Rig, error) {
	var doc RigDocument
	if err := decode(data, FormatRig, &doc); err != nil {
		return nil, err
	}
	return entriesToRig(doc.Bones)
}

func bonesToEntries(bones []skeleton.Bone) []BoneEntry {
	out := make([]BoneEntry, 0, len(bones))
	for _, b := range bones {
		out = append(out, BoneEntry{
			Name:     b.Name,
			Parent:   b.Parent,
			Flags:    b.Flags,
			Position: [4]float32{b.Position.X, b.Position.Y, b.Position.Z, b.Position.W},
			Rotation: [4]float32{b.Rotation.X, b.Rotation.Y, b.Rotation.Z, b.Rotation.W},
			Scale:    [4]float32{b.Scale.X, b.Scale.Y, b.Scale.Z, b.Scale.W},
		})
	}
	return out
}

func entriesToRig(entries []BoneEntry) (*skeleton.Rig, error) {
	bones := make([]skeleton.Bone, 0, len(entries))
	for _, e := range entries {
		bones = append(bones, skeleton.Bone{
			Name:     e.Name,
			Parent:   e.Parent,
			Flags:    e.Flags,
			Position: math.NewVec4(e.Position[0], e.Position[1], e.Position[2], e.Position[3]),
			Rotation: math.Quaternion{X: e.Rotation[0], Y: e.Rotation[1], Z: e.Rotation[2], W: e.Rotation[3]},
			Scale:    math.NewVec4(e.Scale[0], e.Scale[1], e.Scale[2], e.Scale[3]),
		})
	}
	return skeleton.NewRig(bones)
}
