package anim

import (
	"fmt"
	"sort"
)

// Interpolation is the curve used from a keyframe to the next one.
type Interpolation uint8

const (
	Linear Interpolation = iota
	Quadratic
	Cubic
)

func (i Interpolation) String() string {
	switch i {
	case Linear:
		return "linear"
	case Quadratic:
		return "quadratic"
	case Cubic:
		return "cubic"
	default:
		return fmt.Sprintf("interpolation(%d)", uint8(i))
	}
}

func ParseInterpolation(s string) (Interpolation, error) {
	switch s {
	case "", "linear":
		return Linear, nil
	case "quadratic":
		return Quadratic, nil
	case "cubic":
		return Cubic, nil
	default:
		return 0, fmt.Errorf("unknown interpolation %q", s)
	}
}

// Keyframe is a neutral keyframe. ControlA and ControlB are offsets from
// Value: ControlA is the quadratic control point or the first cubic one,
// ControlB the second cubic control point.
type Keyframe struct {
	Frame         int
	Value         float32
	Interpolation Interpolation
	ControlA      float32
	ControlB      float32
}

// Channel is one animated scalar. Keyframes must stay sorted by Frame;
// call Sort after editing the slice directly.
type Channel struct {
	Keyframes []Keyframe

	// index of the segment start used by the last lookup
	cursor int
}

// Sort orders the keyframes by frame and resets the lookup cursor.
func (c *Channel) Sort() {
	sort.SliceStable(c.Keyframes, func(i, j int) bool {
		return c.Keyframes[i].Frame < c.Keyframes[j].Frame
	})
	c.cursor = 0
}

// Insert adds k in frame order, replacing a keyframe at the same frame.
func (c *Channel) Insert(k Keyframe) {
	i := sort.Search(len(c.Keyframes), func(i int) bool {
		return c.Keyframes[i].Frame >= k.Frame
	})
	if i < len(c.Keyframes) && c.Keyframes[i].Frame == k.Frame {
		c.Keyframes[i] = k
		return
	}
	c.Keyframes = append(c.Keyframes, Keyframe{})
	copy(c.Keyframes[i+1:], c.Keyframes[i:])
	c.Keyframes[i] = k
	c.cursor = 0
}

// Set keys value at frame with linear interpolation.
func (c *Channel) Set(frame int, value float32) {
	c.Insert(Keyframe{Frame: frame, Value: value})
}

// KeyAt returns the keyframe exactly at frame.
func (c *Channel) KeyAt(frame int) (Keyframe, bool) {
	if c == nil {
		return Keyframe{}, false
	}
	i := sort.Search(len(c.Keyframes), func(i int) bool {
		return c.Keyframes[i].Frame >= frame
	})
	if i < len(c.Keyframes) && c.Keyframes[i].Frame == frame {
		return c.Keyframes[i], true
	}
	return Keyframe{}, false
}

func (c *Channel) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Keyframes)
}
