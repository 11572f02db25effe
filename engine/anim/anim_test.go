package anim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearChannel() *Channel {
	return &Channel{Keyframes: []Keyframe{
		{Frame: 0, Value: 0},
		{Frame: 10, Value: 10},
	}}
}

func TestInterpolateBoundary(t *testing.T) {
	c := linearChannel()
	assert.Equal(t, float32(5), c.Interpolate(5))
	assert.Equal(t, float32(0), c.Interpolate(0))
	assert.Equal(t, float32(10), c.Interpolate(10))
	assert.Equal(t, float32(0), c.Interpolate(-1))
	assert.Equal(t, float32(10), c.Interpolate(11))
}

func TestInterpolateFractional(t *testing.T) {
	c := &Channel{Keyframes: []Keyframe{
		{Frame: 0, Value: 0, Interpolation: Quadratic, ControlA: 8},
		{Frame: 4, Value: 4},
	}}
	lo, hi := c.Interpolate(1), c.Interpolate(2)
	assert.InDelta(t, lo+(hi-lo)*0.25, c.Interpolate(1.25), 1e-5)
}

func TestInterpolateBezier(t *testing.T) {
	quad := &Channel{Keyframes: []Keyframe{
		{Frame: 0, Value: 0, Interpolation: Quadratic, ControlA: 10},
		{Frame: 2, Value: 0},
	}}
	// (1-t)^2*0 + 2(1-t)t*10 + t^2*0 at t=0.5
	assert.InDelta(t, 5, quad.Interpolate(1), 1e-5)

	cubic := &Channel{Keyframes: []Keyframe{
		{Frame: 10, Value: 1, Interpolation: Cubic, ControlA: 3, ControlB: 3},
		{Frame: 12, Value: 1},
	}}
	// P0=1 P1=4 P2=4 P3=1 at t=0.5: 0.125 + 1.5 + 1.5 + 0.125
	assert.InDelta(t, 3.25, cubic.Interpolate(11), 1e-5)
	assert.Equal(t, float32(1), cubic.Interpolate(10))
	assert.Equal(t, float32(1), cubic.Interpolate(12))
}

func TestInterpolateCursorMatchesSearch(t *testing.T) {
	c := &Channel{}
	for f := 0; f <= 102; f += 3 {
		c.Set(f, float32(f*2))
	}
	// forward scrubbing, then random jumps
	for f := 0; f <= 100; f++ {
		assert.InDelta(t, float32(f*2), c.Interpolate(float32(f)), 1e-4, "frame %d", f)
	}
	for _, f := range []int{97, 2, 55, 54, 13, 100, 0} {
		assert.InDelta(t, float32(f*2), c.Interpolate(float32(f)), 1e-4, "frame %d", f)
	}
}

func TestInterpolateSingleAndEmpty(t *testing.T) {
	assert.Equal(t, float32(0), (&Channel{}).Interpolate(3))
	c := &Channel{Keyframes: []Keyframe{{Frame: 4, Value: 7}}}
	assert.Equal(t, float32(7), c.Interpolate(0))
	assert.Equal(t, float32(7), c.Interpolate(9.5))
}

func TestChannelInsertKeepsOrder(t *testing.T) {
	c := &Channel{}
	c.Set(10, 1)
	c.Set(0, 2)
	c.Set(5, 3)
	c.Set(5, 4)
	require.Len(t, c.Keyframes, 3)
	assert.Equal(t, []int{0, 5, 10}, []int{c.Keyframes[0].Frame, c.Keyframes[1].Frame, c.Keyframes[2].Frame})
	k, ok := c.KeyAt(5)
	require.True(t, ok)
	assert.Equal(t, float32(4), k.Value)
	_, ok = c.KeyAt(6)
	assert.False(t, ok)
}

func TestChannelSort(t *testing.T) {
	c := &Channel{Keyframes: []Keyframe{{Frame: 9, Value: 9}, {Frame: 1, Value: 1}}}
	c.Sort()
	assert.Equal(t, 1, c.Keyframes[0].Frame)
	assert.Equal(t, float32(5), c.Interpolate(5))
}

func TestBonePruneAndFrames(t *testing.T) {
	a := &Animation{ID: 3}
	b := a.EnsureBone("hip")
	b.EnsureComponent(ComponentPosition).EnsureChannel(AxisX).Set(4, 1)
	b.EnsureComponent(ComponentPosition).EnsureChannel(AxisY)
	b.EnsureComponent(ComponentRotation).EnsureChannel(AxisZ).Set(2, 1)
	b.EnsureComponent(ComponentScale)
	a.EnsureBone("empty").EnsureComponent(ComponentScale).EnsureChannel(AxisX)

	assert.Equal(t, []int{2, 4}, b.Frames())
	assert.Equal(t, 4, a.LastFrame())

	a.Prune()
	require.Len(t, a.Bones, 1)
	assert.Nil(t, b.Channel(ComponentPosition, AxisY))
	assert.NotNil(t, b.Channel(ComponentPosition, AxisX))
	assert.Nil(t, b.Component(ComponentScale))
	assert.Same(t, b, a.Bone("hip"))
}

func TestParseEnums(t *testing.T) {
	for k := KindObject; k <= KindLight; k++ {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("sound")
	assert.Error(t, err)

	p, err := ParsePrecision("half")
	require.NoError(t, err)
	assert.Equal(t, PrecisionHalf, p)

	i, err := ParseInterpolation("")
	require.NoError(t, err)
	assert.Equal(t, Linear, i)
	i, err = ParseInterpolation(Cubic.String())
	require.NoError(t, err)
	assert.Equal(t, Cubic, i)
}
