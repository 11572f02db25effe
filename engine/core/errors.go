package core

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedInput     = errors.New("malformed input")
	ErrMissingSkeleton    = errors.New("missing skeleton reference")
	ErrSingularTransform  = errors.New("singular transform")
	ErrInvariantViolation = errors.New("invariant violation")
)

// MalformedInputError reports bytes that cannot be decoded. Offset is the
// position in the buffer where the problem was detected.
type MalformedInputError struct {
	Offset int
	Reason string
}

func NewMalformedInput(offset int, format string, args ...interface{}) *MalformedInputError {
	return &MalformedInputError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input at offset 0x%x: %s", e.Offset, e.Reason)
}

func (e *MalformedInputError) Is(target error) bool { return target == ErrMalformedInput }

// MissingSkeletonError reports a bone-qualified channel that cannot be
// resolved, either because no skeleton was supplied or because the bone
// does not exist in it.
type MissingSkeletonError struct {
	Bone        string
	AnimationID int
}

func (e *MissingSkeletonError) Error() string {
	return fmt.Sprintf("animation %d: bone %q cannot be resolved against the skeleton", e.AnimationID, e.Bone)
}

func (e *MissingSkeletonError) Is(target error) bool { return target == ErrMissingSkeleton }

// SingularTransformError reports a bind pose that cannot be inverted.
type SingularTransformError struct {
	Bone string
}

func (e *SingularTransformError) Error() string {
	return fmt.Sprintf("bone %q: bind pose matrix is not invertible", e.Bone)
}

func (e *SingularTransformError) Is(target error) bool { return target == ErrSingularTransform }

// InvariantError signals a logic error inside the encoder, never bad input.
type InvariantError struct {
	Reason string
}

func NewInvariant(format string, args ...interface{}) *InvariantError {
	return &InvariantError{Reason: fmt.Sprintf(format, args...)}
}

func (e *InvariantError) Error() string {
	return "invariant violation: " + e.Reason
}

func (e *InvariantError) Is(target error) bool { return target == ErrInvariantViolation }
