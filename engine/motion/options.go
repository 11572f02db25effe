package motion

import "github.com/spaghettifunk/anima/engine/skeleton"

type options struct {
	skeleton skeleton.Skeleton
}

// Option configures Read, Decode, Encode and Marshal.
type Option func(*options)

// WithSkeleton resolves bone indices against s when the container does not
// embed its own bone table. An embedded table always takes precedence.
func WithSkeleton(s skeleton.Skeleton) Option {
	return func(o *options) {
		o.skeleton = s
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// resolve picks the skeleton used for bone indices.
func (o *options) resolve(embedded *skeleton.Rig) skeleton.Skeleton {
	if embedded != nil {
		return embedded
	}
	return o.skeleton
}
