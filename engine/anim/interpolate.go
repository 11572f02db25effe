package anim

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/spaghettifunk/anima/engine/math"
)

// lookAhead is how many segments past the cached cursor are scanned before
// falling back to a binary search.
const lookAhead = 4

// Interpolate evaluates the channel at frame. Frames outside the keyed
// range clamp to the first or last value. A fractional frame blends the
// neighbouring integer frames linearly, whatever their curve. An empty
// channel evaluates to 0.
//
// Interpolate updates the lookup cursor, so a channel must not be
// evaluated from several goroutines at once.
func (c *Channel) Interpolate(frame float32) float32 {
	if len(c.Keyframes) == 0 {
		return 0
	}
	lo := math32.Floor(frame)
	if lo == frame {
		return c.valueAt(int(lo))
	}
	a := c.valueAt(int(lo))
	b := c.valueAt(int(lo) + 1)
	return math.Lerp(a, b, frame-lo)
}

func (c *Channel) valueAt(frame int) float32 {
	keys := c.Keyframes
	first, last := keys[0], keys[len(keys)-1]
	if frame <= first.Frame {
		return first.Value
	}
	if frame >= last.Frame {
		return last.Value
	}

	i := c.segment(frame)
	k0, k1 := keys[i], keys[i+1]
	if k0.Frame == frame {
		return k0.Value
	}
	t := float32(frame-k0.Frame) / float32(k1.Frame-k0.Frame)
	return evaluate(k0, k1.Value, t)
}

// segment returns i such that keys[i].Frame <= frame < keys[i+1].Frame.
// frame is known to be inside the keyed range.
func (c *Channel) segment(frame int) int {
	keys := c.Keyframes
	if c.cursor >= 0 && c.cursor < len(keys)-1 && keys[c.cursor].Frame <= frame {
		end := c.cursor + lookAhead
		if end > len(keys)-2 {
			end = len(keys) - 2
		}
		for i := c.cursor; i <= end; i++ {
			if keys[i+1].Frame > frame {
				c.cursor = i
				return i
			}
		}
	}
	i := sort.Search(len(keys), func(i int) bool {
		return keys[i].Frame > frame
	}) - 1
	c.cursor = i
	return i
}

func evaluate(k0 Keyframe, v1, t float32) float32 {
	v0 := k0.Value
	switch k0.Interpolation {
	case Quadratic:
		p1 := v0 + k0.ControlA
		u := 1 - t
		return u*u*v0 + 2*u*t*p1 + t*t*v1
	case Cubic:
		p1 := v0 + k0.ControlA
		p2 := v0 + k0.ControlB
		u := 1 - t
		return u*u*u*v0 + 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t*v1
	default:
		return math.Lerp(v0, v1, t)
	}
}
