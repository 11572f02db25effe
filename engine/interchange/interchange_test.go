package interchange

import (
	"testing"

	"github.com/spaghettifunk/anima/engine/anim"
	"github.com/spaghettifunk/anima/engine/math"
	"github.com/spaghettifunk/anima/engine/motion"
	"github.com/spaghettifunk/anima/engine/skeleton"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleRig(t *testing.T) *skeleton.Rig {
	rig, err := skeleton.NewRig([]skeleton.Bone{
		{Name: "root", Parent: -1, Flags: 2, Rotation: math.NewQuatIdentity(), Scale: math.NewVec4(1, 1, 1, 0)},
		{Name: "head", Parent: 0, Position: math.NewVec4(0, 1.5, 0, 0), Rotation: math.NewQuatIdentity(), Scale: math.NewVec4(1, 1, 1, 0)},
	})
	require.NoError(t, err)
	return rig
}

func TestMotionRoundTrip(t *testing.T) {
	c := motion.NewContainer()
	c.Version = 2
	c.ReservedB = -9
	c.Skeleton = sampleRig(t)
	c.Add(&motion.Animation{Index: 4, Name: "nod", EndFrame: 20, Kind: anim.KindObject, Precision: anim.PrecisionHalf,
		Commands: []*motion.Command{{
			Bone: "head", Parameter: motion.ParamRotation, Component: 0, UnknownB: true,
			Keyframes: []motion.Keyframe{
				{Time: 0, Value: 0.25},
				{Time: 20, Value: -0.5, Flags: motion.FlagCubic, Aux: [3]float32{0, 0.1, 0.2}},
			},
		}}})
	c.Add(&motion.Animation{Index: 1, Kind: anim.KindLight,
		Commands: []*motion.Command{{
			Parameter: motion.ParamLightScale, Component: 1,
			Keyframes: []motion.Keyframe{{Time: 3, Value: 2, Flags: motion.FlagQuadratic, Aux: [3]float32{1.5}}},
		}}})

	data, err := MarshalMotion(c)
	require.NoError(t, err)
	assert.Contains(t, string(data), "format: anima/motion")
	assert.Contains(t, string(data), "parameter: lightscale")

	got, err := UnmarshalMotion(data)
	require.NoError(t, err)
	assert.Equal(t, c.Version, got.Version)
	assert.Equal(t, c.ReservedB, got.ReservedB)
	assert.Equal(t, c.Skeleton.Bones, got.Skeleton.Bones)
	assert.Equal(t, []int{1, 4}, got.Indices())
	assert.Equal(t, c.Animations[4], got.Animations[4])
	assert.Equal(t, c.Animations[1], got.Animations[1])

	format, err := Detect(data)
	require.NoError(t, err)
	assert.Equal(t, FormatMotion, format)
}

func TestMotionKeepsEmptyBoneTable(t *testing.T) {
	empty, err := skeleton.NewRig(nil)
	require.NoError(t, err)
	c := motion.NewContainer()
	c.Skeleton = empty
	c.Add(&motion.Animation{Index: 0, Kind: anim.KindCamera})

	data, err := MarshalMotion(c)
	require.NoError(t, err)
	assert.Contains(t, string(data), "skeleton: []")

	got, err := UnmarshalMotion(data)
	require.NoError(t, err)
	require.NotNil(t, got.Skeleton)
	assert.Empty(t, got.Skeleton.Bones)

	bin, err := motion.Marshal(got)
	require.NoError(t, err)
	back, err := motion.Read(bin)
	require.NoError(t, err)
	require.NotNil(t, back.Skeleton, "the bone table is still written")

	c.Skeleton = nil
	data, err = MarshalMotion(c)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "skeleton")
	got, err = UnmarshalMotion(data)
	require.NoError(t, err)
	assert.Nil(t, got.Skeleton)
}

func TestMotionAuxIsText(t *testing.T) {
	c := motion.NewContainer()
	c.Add(&motion.Animation{Kind: anim.KindCamera, Commands: []*motion.Command{{
		Keyframes: []motion.Keyframe{{Time: 1, Value: 1, Flags: motion.FlagQuadratic, Aux: [3]float32{0.1}}},
	}}})
	data, err := MarshalMotion(c)
	require.NoError(t, err)

	var raw struct {
		Animations []struct {
			Commands []struct {
				Keyframes []struct {
					Aux []interface{} `yaml:"aux"`
				} `yaml:"keyframes"`
			} `yaml:"commands"`
		} `yaml:"animations"`
	}
	require.NoError(t, yaml.Unmarshal(data, &raw))
	aux := raw.Animations[0].Commands[0].Keyframes[0].Aux
	require.Len(t, aux, 1)
	assert.Equal(t, "0.1", aux[0])
}

func TestNeutralRoundTrip(t *testing.T) {
	a := &anim.Animation{ID: 7, Name: "orbit", EndFrame: 60, Kind: anim.KindCamera, Precision: anim.PrecisionSingle}
	cam := a.EnsureBone("")
	cam.EnsureComponent(anim.ComponentScale).EnsureChannel(anim.AxisY).Set(0, 60)
	cam.EnsureComponent(anim.ComponentRotation).EnsureChannel(anim.AxisX).Insert(
		anim.Keyframe{Frame: 10, Value: 1, Interpolation: anim.Cubic, ControlA: 0.5, ControlB: -0.5})
	m := &anim.Animation{ID: 2, Kind: anim.KindMaterial, Precision: anim.PrecisionHalf}
	m.EnsureBone("").EnsureComponent(anim.ComponentPosition).EnsureChannel(anim.AxisW).Set(5, 0.75)

	data, err := MarshalNeutral([]*anim.Animation{a, m})
	require.NoError(t, err)
	got, err := UnmarshalNeutral(data)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a, got[0])
	assert.Equal(t, m, got[1])
}

func TestNeutralSortsChannels(t *testing.T) {
	doc := `format: anima/neutral
version: 1
animations:
  - id: 1
    end_frame: 10
    kind: object
    precision: single
    bones:
      - name: hip
        position:
          x:
            - {frame: 10, value: 1}
            - {frame: 0, value: 0, interpolation: quadratic, control_a: 2}
`
	got, err := UnmarshalNeutral([]byte(doc))
	require.NoError(t, err)
	ch := got[0].Bone("hip").Channel(anim.ComponentPosition, anim.AxisX)
	require.Len(t, ch.Keyframes, 2)
	assert.Equal(t, 0, ch.Keyframes[0].Frame)
	assert.Equal(t, anim.Quadratic, ch.Keyframes[0].Interpolation)
}

func TestRigRoundTrip(t *testing.T) {
	rig := sampleRig(t)
	data, err := MarshalRig(rig)
	require.NoError(t, err)
	got, err := UnmarshalRig(data)
	require.NoError(t, err)
	assert.Equal(t, rig.Bones, got.Bones)
	i, ok := got.BoneIndex("head")
	require.True(t, ok)
	assert.Equal(t, 1, i)
}

func TestDocumentErrors(t *testing.T) {
	rigData, err := MarshalRig(sampleRig(t))
	require.NoError(t, err)
	_, err = UnmarshalNeutral(rigData)
	assert.ErrorIs(t, err, ErrWrongFormat)

	_, err = UnmarshalRig([]byte("format: anima/rig\nversion: 9\nbones: []\n"))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = UnmarshalRig([]byte("format: anima/rig\nversion: 1\nbonez: []\n"))
	assert.Error(t, err)

	_, err = UnmarshalMotion([]byte(`format: anima/motion
version: 1
animations:
  - index: 0
    end_frame: 0
    kind: object
    precision: quarter
    commands: []
`))
	assert.ErrorContains(t, err, "quarter")

	_, err = Detect([]byte("animations: []\n"))
	assert.ErrorIs(t, err, ErrWrongFormat)
}
