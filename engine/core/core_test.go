package core

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	err := fmt.Errorf("animation 3: %w", NewMalformedInput(0x40, "bad precision %d", 7))
	assert.ErrorIs(t, err, ErrMalformedInput)
	assert.NotErrorIs(t, err, ErrMissingSkeleton)
	assert.Contains(t, err.Error(), "0x40")

	var malformed *MalformedInputError
	assert.True(t, errors.As(err, &malformed))
	assert.Equal(t, 0x40, malformed.Offset)

	assert.ErrorIs(t, &MissingSkeletonError{Bone: "hip", AnimationID: 2}, ErrMissingSkeleton)
	assert.ErrorIs(t, &SingularTransformError{Bone: "hip"}, ErrSingularTransform)
	assert.ErrorIs(t, NewInvariant("slot %d", 4), ErrInvariantViolation)
	assert.Contains(t, (&SingularTransformError{Bone: "hip"}).Error(), `"hip"`)
}

func TestPassMetrics(t *testing.T) {
	pm := NewPassMetrics()
	assert.Equal(t, time.Duration(0), pm.Average())

	pm.Record(10*time.Millisecond, 2, 100, nil)
	pm.Record(30*time.Millisecond, 1, 50, nil)
	pm.Record(20*time.Millisecond, 0, 0, errors.New("boom"))

	assert.Equal(t, 20*time.Millisecond, pm.Average())
	passes, failures, animations, bytes := pm.Totals()
	assert.Equal(t, 3, passes)
	assert.Equal(t, 1, failures)
	assert.Equal(t, 3, animations)
	assert.Equal(t, int64(150), bytes)
}

func TestSetLogLevel(t *testing.T) {
	assert.NoError(t, SetLogLevel("debug"))
	assert.Error(t, SetLogLevel("loud"))
	assert.NoError(t, SetLogLevel("info"))
}

func TestClock(t *testing.T) {
	c := NewClock()
	c.Update()
	assert.Equal(t, time.Duration(0), c.Elapsed())
	c.Start()
	time.Sleep(time.Millisecond)
	c.Stop()
	assert.Greater(t, c.Elapsed(), time.Duration(0))
}
