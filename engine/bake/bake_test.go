package bake

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/anima/engine/anim"
	"github.com/spaghettifunk/anima/engine/clip"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/math"
	"github.com/spaghettifunk/anima/engine/motion"
	"github.com/spaghettifunk/anima/engine/skeleton"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rigWith(t *testing.T, bones ...skeleton.Bone) *skeleton.Rig {
	t.Helper()
	rig, err := skeleton.NewRig(bones)
	require.NoError(t, err)
	return rig
}

func bone(name string, parent int, position math.Vec3, euler math.Vec3, scale float32) skeleton.Bone {
	return skeleton.Bone{
		Name:     name,
		Parent:   parent,
		Position: position.ToVec4(0),
		Rotation: math.NewQuatFromEuler(euler),
		Scale:    math.NewVec4(scale, scale, scale, 0),
	}
}

func assertVec3(t *testing.T, want, got math.Vec3, tol float64, msg string) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol, msg+" x")
	assert.InDelta(t, want.Y, got.Y, tol, msg+" y")
	assert.InDelta(t, want.Z, got.Z, tol, msg+" z")
}

func assertAngles(t *testing.T, want, got math.Vec3, tol float64, msg string) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 0, math.WrapAngle(want.Component(i)-got.Component(i)), tol, "%s axis %d", msg, i)
	}
}

func mulManual(a, b math.Mat4) math.Mat4 {
	var out math.Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			for i := 0; i < 4; i++ {
				out.Data[row*4+col] += a.Data[row*4+i] * b.Data[i*4+col]
			}
		}
	}
	return out
}

func endToEndAnimation() *anim.Animation {
	a := &anim.Animation{ID: 0, Name: "slide", EndFrame: 30, Kind: anim.KindObject}
	ch := a.EnsureBone("bone").EnsureComponent(anim.ComponentPosition).EnsureChannel(anim.AxisX)
	ch.Set(0, 0)
	ch.Set(30, 10)
	return a
}

func TestEndToEndScenario(t *testing.T) {
	rig := rigWith(t, bone("bone", -1, math.NewVec3(1, 0, 0), math.NewVec3Zero(), 1))
	a := endToEndAnimation()
	r, err := RulesFor(anim.KindObject)
	require.NoError(t, err)

	neutral := PoseAt(r, a.Bone("bone"), 15)
	assertVec3(t, math.NewVec3(5, 0, 0), neutral.Position, 1e-6, "neutral position")
	assertVec3(t, math.NewVec3One(), neutral.Scale, 1e-6, "default scale")

	// Scale(1) * Rotation(identity) * Translation(5,0,0) * BindPose(translation 1,0,0)
	var translate5, bind math.Mat4
	for i := 0; i < 4; i++ {
		translate5.Data[i*5] = 1
		bind.Data[i*5] = 1
	}
	translate5.Data[12] = 5
	bind.Data[12] = 1
	expected := mulManual(translate5, bind)
	require.Equal(t, float32(6), expected.Data[12])

	baked, err := BakePose(neutral, a.ID, "bone", rig)
	require.NoError(t, err)
	assertVec3(t, math.NewVec3(expected.Data[12], expected.Data[13], expected.Data[14]), baked.Position, 1e-5, "baked position")
	assertAngles(t, math.NewVec3Zero(), baked.Rotation, 1e-6, "baked rotation")
	assertVec3(t, math.NewVec3One(), baked.Scale, 1e-6, "baked scale")

	back, err := UnbakePose(baked, a.ID, "bone", rig)
	require.NoError(t, err)
	assertVec3(t, math.NewVec3(5, 0, 0), back.Position, 1e-5, "unbaked position")

	// Same scenario through whole animations.
	native, err := BakeAnimation(a, rig)
	require.NoError(t, err)
	require.Len(t, native.Commands, 9)
	pos := native.Commands[0]
	assert.Equal(t, "bone", pos.Bone)
	assert.Equal(t, motion.ParamPosition, pos.Parameter)
	require.Len(t, pos.Keyframes, 2)
	assert.InDelta(t, 1, pos.Keyframes[0].Value, 1e-6)
	assert.InDelta(t, 11, pos.Keyframes[1].Value, 1e-5)

	imported, err := UnbakeAnimation(native, rig)
	require.NoError(t, err)
	x := imported.Bone("bone").Channel(anim.ComponentPosition, anim.AxisX)
	assert.InDelta(t, 5, x.Interpolate(15), 1e-5)
	assert.InDelta(t, 1, imported.Bone("bone").Channel(anim.ComponentScale, anim.AxisZ).Interpolate(15), 1e-6)

	// The neutral input is left untouched.
	assert.Nil(t, a.Bone("bone").Component(anim.ComponentScale))
}

func TestBakeUnbakeInverse(t *testing.T) {
	rig := rigWith(t,
		bone("root", -1, math.NewVec3Zero(), math.NewVec3Zero(), 1),
		bone("arm", 0, math.NewVec3(1, 2, 3), math.NewVec3(0.1, 0.4, -0.3), 2),
	)
	keys := map[motion.Parameter]math.Vec3{
		motion.ParamPosition: math.NewVec3(0.5, -2, 3),
		motion.ParamRotation: math.NewVec3(0.3, -0.2, 0.7),
		motion.ParamScale:    math.NewVec3(1.5, 0.5, 2),
	}
	src := &motion.Animation{Index: 4, Kind: anim.KindObject, EndFrame: 8}
	for _, p := range []motion.Parameter{motion.ParamPosition, motion.ParamRotation, motion.ParamScale} {
		for axis := 0; axis < 3; axis++ {
			src.Commands = append(src.Commands, &motion.Command{
				Bone:      "arm",
				Parameter: p,
				Component: uint8(axis),
				Keyframes: []motion.Keyframe{{Time: 8, Value: keys[p].Component(axis)}},
			})
		}
	}

	neutral, err := UnbakeAnimation(src, rig)
	require.NoError(t, err)
	again, err := BakeAnimation(neutral, rig)
	require.NoError(t, err)
	require.Len(t, again.Commands, 9)

	got := map[motion.Parameter]*math.Vec3{}
	for _, cmd := range again.Commands {
		v, ok := got[cmd.Parameter]
		if !ok {
			v = &math.Vec3{}
			got[cmd.Parameter] = v
		}
		require.Len(t, cmd.Keyframes, 1)
		assert.Equal(t, 8, cmd.Keyframes[0].Time)
		v.SetComponent(int(cmd.Component), cmd.Keyframes[0].Value)
	}
	assertVec3(t, keys[motion.ParamPosition], *got[motion.ParamPosition], 1e-3, "position")
	assertAngles(t, keys[motion.ParamRotation], *got[motion.ParamRotation], 1e-3, "rotation")
	assertVec3(t, keys[motion.ParamScale], *got[motion.ParamScale], 1e-3, "scale")
}

func TestCurveDataCarriedThrough(t *testing.T) {
	rig := rigWith(t, bone("bone", -1, math.NewVec3(0, 1, 0), math.NewVec3Zero(), 1))
	a := &anim.Animation{Kind: anim.KindObject}
	ch := a.EnsureBone("bone").EnsureComponent(anim.ComponentRotation).EnsureChannel(anim.AxisY)
	ch.Insert(anim.Keyframe{Frame: 0, Value: 0, Interpolation: anim.Cubic, ControlA: 0.1, ControlB: 0.2})
	ch.Insert(anim.Keyframe{Frame: 10, Value: 1, Interpolation: anim.Quadratic, ControlA: 0.3})

	native, err := BakeAnimation(a, rig)
	require.NoError(t, err)
	var rotY *motion.Command
	for _, cmd := range native.Commands {
		if cmd.Parameter == motion.ParamRotation && cmd.Component == 1 {
			rotY = cmd
		}
	}
	require.NotNil(t, rotY)
	assert.Equal(t, motion.FlagCubic, rotY.Keyframes[0].Flags)
	assert.Equal(t, [3]float32{0, 0.1, 0.2}, rotY.Keyframes[0].Aux)
	assert.Equal(t, motion.FlagQuadratic, rotY.Keyframes[1].Flags)
	assert.Equal(t, float32(0.3), rotY.Keyframes[1].Aux[0])

	back, err := UnbakeAnimation(native, rig)
	require.NoError(t, err)
	k, ok := back.Bone("bone").Channel(anim.ComponentRotation, anim.AxisY).KeyAt(0)
	require.True(t, ok)
	assert.Equal(t, anim.Cubic, k.Interpolation)
	assert.Equal(t, float32(0.2), k.ControlB)
}

func TestCameraRules(t *testing.T) {
	r, err := RulesFor(anim.KindCamera)
	require.NoError(t, err)
	assert.Equal(t, DefaultFieldOfView, r.Default(anim.ComponentScale, anim.AxisY))
	assert.Equal(t, float32(0), r.Default(anim.ComponentScale, anim.AxisX))
	assert.Equal(t, float32(0), r.Default(anim.ComponentPosition, anim.AxisY))

	src := &motion.Animation{Index: 1, Kind: anim.KindCamera, Commands: []*motion.Command{
		{Parameter: motion.ParamScale, Component: 0, Keyframes: []motion.Keyframe{{Time: 0, Value: math.K_PI}}},
		{Parameter: motion.ParamScale, Component: 1, Keyframes: []motion.Keyframe{{Time: 0, Value: 60}}},
		{Parameter: motion.ParamPosition, Component: 2, Keyframes: []motion.Keyframe{{Time: 0, Value: -4}}},
	}}
	neutral, err := UnbakeAnimation(src, nil)
	require.NoError(t, err)
	cam := neutral.Bone("")
	require.NotNil(t, cam)
	assert.InDelta(t, 180, cam.Channel(anim.ComponentScale, anim.AxisX).Interpolate(0), 1e-4)
	assert.Equal(t, float32(60), cam.Channel(anim.ComponentScale, anim.AxisY).Interpolate(0))
	assert.Equal(t, float32(-4), cam.Channel(anim.ComponentPosition, anim.AxisZ).Interpolate(0))

	baked, err := BakeAnimation(neutral, nil)
	require.NoError(t, err)
	require.Len(t, baked.Commands, 3)
	for _, cmd := range baked.Commands {
		if cmd.Parameter == motion.ParamScale && cmd.Component == 0 {
			assert.InDelta(t, math.K_PI, cmd.Keyframes[0].Value, 1e-5)
		}
	}

	// An unkeyed field of view samples the default.
	empty := &anim.Bone{}
	assert.Equal(t, DefaultFieldOfView, Sample(r, empty, anim.ComponentScale, anim.AxisY, 3))
}

func TestMaterialKeepsFourthChannel(t *testing.T) {
	src := &motion.Animation{Index: 2, Kind: anim.KindMaterial, Commands: []*motion.Command{
		{Parameter: motion.ParamColor, Component: 3, Keyframes: []motion.Keyframe{{Time: 2, Value: 0.5}}},
	}}
	neutral, err := UnbakeAnimation(src, nil)
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), neutral.Bones[0].Channel(anim.ComponentPosition, anim.AxisW).Interpolate(2))

	back, err := BakeAnimation(neutral, nil)
	require.NoError(t, err)
	require.Len(t, back.Commands, 1)
	assert.Equal(t, uint8(3), back.Commands[0].Component)
}

func TestUnmappedCommands(t *testing.T) {
	src := &motion.Animation{Kind: anim.KindObject, Commands: []*motion.Command{
		{Parameter: motion.ParamReserved, Keyframes: []motion.Keyframe{{Time: 0}}},
	}}
	_, err := UnbakeAnimation(src, nil)
	assert.ErrorIs(t, err, ErrUnmappedCommand)

	src = &motion.Animation{Kind: anim.KindCamera, Commands: []*motion.Command{
		{Parameter: motion.ParamPosition, Component: 3, Keyframes: []motion.Keyframe{{Time: 0}}},
	}}
	_, err = UnbakeAnimation(src, nil)
	assert.ErrorIs(t, err, ErrUnmappedCommand)
}

func TestSkeletonErrors(t *testing.T) {
	a := endToEndAnimation()
	_, err := BakeAnimation(a, nil)
	var missing *core.MissingSkeletonError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "bone", missing.Bone)

	other := rigWith(t, bone("other", -1, math.NewVec3Zero(), math.NewVec3Zero(), 1))
	_, err = BakeAnimation(a, other)
	assert.ErrorIs(t, err, core.ErrMissingSkeleton)

	flat := rigWith(t, bone("bone", -1, math.NewVec3Zero(), math.NewVec3Zero(), 0))
	_, err = BakeAnimation(a, flat)
	var singular *core.SingularTransformError
	require.ErrorAs(t, err, &singular)
	assert.Equal(t, "bone", singular.Bone)
}

func TestPoseErrorsNameAnimation(t *testing.T) {
	_, err := BakePose(Pose{Scale: math.NewVec3One()}, 7, "bone", nil)
	var missing *core.MissingSkeletonError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 7, missing.AnimationID)

	_, err = UnbakePose(Pose{Scale: math.NewVec3One()}, 4, "bone", nil)
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 4, missing.AnimationID)
}

func TestImportPrefersEmbeddedSkeleton(t *testing.T) {
	embedded := rigWith(t, bone("bone", -1, math.NewVec3(1, 0, 0), math.NewVec3Zero(), 1))
	external := rigWith(t, bone("bone", -1, math.NewVec3(100, 0, 0), math.NewVec3Zero(), 1))

	c := motion.NewContainer()
	c.Skeleton = embedded
	c.Add(&motion.Animation{Index: 0, Kind: anim.KindObject, Commands: []*motion.Command{
		{Bone: "bone", Parameter: motion.ParamPosition, Component: 0, Keyframes: []motion.Keyframe{{Time: 0, Value: 6}}},
	}})

	anims, err := Import(c, external, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, anims, 1)
	x := anims[0].Bone("bone").Channel(anim.ComponentPosition, anim.AxisX)
	require.NotNil(t, x)
	assert.InDelta(t, 5, x.Interpolate(0), 1e-5)
}

func TestImportExportOrdering(t *testing.T) {
	rig := rigWith(t, bone("bone", -1, math.NewVec3(1, 0, 0), math.NewVec3Zero(), 1))
	var anims []*anim.Animation
	for _, id := range []int{9, 3, 7, 0, 5} {
		a := endToEndAnimation()
		a.ID = id
		anims = append(anims, a)
	}
	metrics := core.NewPassMetrics()
	opts := Options{Workers: 3, QueueSize: 1, Metrics: metrics}

	c, err := Export(anims, rig, opts)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3, 5, 7, 9}, c.Indices())

	c.Skeleton = rig
	back, err := Import(c, nil, opts)
	require.NoError(t, err)
	ids := make([]int, len(back))
	for i, a := range back {
		ids[i] = a.ID
	}
	assert.Equal(t, []int{0, 3, 5, 7, 9}, ids)

	passes, failures, animations, _ := metrics.Totals()
	assert.Equal(t, 2, passes)
	assert.Equal(t, 0, failures)
	assert.Equal(t, 10, animations)
}

func TestImportReportsLowestFailure(t *testing.T) {
	c := motion.NewContainer()
	for _, i := range []int{8, 2, 5} {
		c.Add(&motion.Animation{Index: i, Kind: anim.KindObject, Commands: []*motion.Command{
			{Bone: "ghost", Keyframes: []motion.Keyframe{{Time: 0}}},
		}})
	}
	c.Add(&motion.Animation{Index: 0, Kind: anim.KindLight})
	_, err := Import(c, rigWith(t, bone("bone", -1, math.NewVec3Zero(), math.NewVec3Zero(), 1)), DefaultOptions())
	var missing *core.MissingSkeletonError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, 2, missing.AnimationID)
}

func TestExportRejectsDuplicateIDs(t *testing.T) {
	_, err := Export([]*anim.Animation{{ID: 1}, {ID: 1}}, nil, DefaultOptions())
	assert.ErrorIs(t, err, core.ErrInvariantViolation)
}

func TestClipRoundTrip(t *testing.T) {
	rig := rigWith(t, bone("bone", -1, math.NewVec3(1, 0, 0), math.NewVec3(0, 0, 0.5), 1))
	a := endToEndAnimation()
	a.Bone("bone").EnsureComponent(anim.ComponentRotation).EnsureChannel(anim.AxisZ).Set(30, 0.25)
	cam := &anim.Animation{ID: 1, Kind: anim.KindCamera}

	clips, err := ExportClips([]*anim.Animation{a, cam}, rig, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, clips, 1)
	track := clips[0].Track("bone")
	require.NotNil(t, track)
	require.Len(t, track.Keys, 2)
	assert.Equal(t, 30, track.Keys[1].Frame)

	back, err := ImportClips(clips, rig, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, back, 1)
	b := back[0].Bone("bone")
	assert.InDelta(t, 10, b.Channel(anim.ComponentPosition, anim.AxisX).Interpolate(30), 1e-4)
	assert.InDelta(t, 0.25, b.Channel(anim.ComponentRotation, anim.AxisZ).Interpolate(30), 1e-4)
	assert.InDelta(t, 1, b.Channel(anim.ComponentScale, anim.AxisY).Interpolate(0), 1e-5)

	_, err = ImportClips([]*clip.Clip{{ID: 3, Tracks: []*clip.Track{{Bone: "ghost", Keys: []clip.Key{{}}}}}}, rig, DefaultOptions())
	assert.ErrorIs(t, err, core.ErrMissingSkeleton)
}
