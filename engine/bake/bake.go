package bake

import (
	"github.com/spaghettifunk/anima/engine/anim"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/motion"
	"github.com/spaghettifunk/anima/engine/skeleton"
)

// UnbakeAnimation converts one container animation into the neutral model.
func UnbakeAnimation(a *motion.Animation, skel skeleton.Skeleton) (*anim.Animation, error) {
	r, err := RulesFor(a.Kind)
	if err != nil {
		return nil, err
	}
	baked, err := commandsToBones(a, r)
	if err != nil {
		return nil, err
	}
	return r.Unbake(baked, skel)
}

// BakeAnimation converts one neutral animation into a container animation.
// The neutral animation is not modified.
func BakeAnimation(a *anim.Animation, skel skeleton.Skeleton) (*motion.Animation, error) {
	r, err := RulesFor(a.Kind)
	if err != nil {
		return nil, err
	}
	for _, b := range a.Bones {
		for _, c := range b.Components {
			if c != nil && c.Channels[anim.AxisW].Len() > 0 && r.Axes() < anim.AxisCount {
				return nil, core.NewInvariant("animation %d bone %q: %s has no fourth channel", a.ID, b.Name, a.Kind)
			}
		}
	}
	baked, err := r.Bake(a, skel)
	if err != nil {
		return nil, err
	}
	return bonesToCommands(baked), nil
}

// Import unbakes every animation of c, in parallel, ordered by index. The
// embedded bone table of c takes precedence over skel.
func Import(c *motion.Container, skel skeleton.Skeleton, opts Options) ([]*anim.Animation, error) {
	if c.Skeleton != nil {
		skel = c.Skeleton
	}
	items := make([]*motion.Animation, 0, len(c.Animations))
	for _, i := range c.Indices() {
		items = append(items, c.Animations[i])
	}
	return mapAnimations("import", items, opts,
		func(a *motion.Animation) int { return a.Index },
		func(a *motion.Animation) (*anim.Animation, error) { return UnbakeAnimation(a, skel) },
	)
}

// Export bakes anims, in parallel, into a new container. The caller sets
// the container skeleton and header fields.
func Export(anims []*anim.Animation, skel skeleton.Skeleton, opts Options) (*motion.Container, error) {
	seen := make(map[int]struct{}, len(anims))
	for _, a := range anims {
		if _, dup := seen[a.ID]; dup {
			return nil, core.NewInvariant("animation id %d used twice", a.ID)
		}
		seen[a.ID] = struct{}{}
	}
	baked, err := mapAnimations("export", anims, opts,
		func(a *anim.Animation) int { return a.ID },
		func(a *anim.Animation) (*motion.Animation, error) { return BakeAnimation(a, skel) },
	)
	if err != nil {
		return nil, err
	}
	c := motion.NewContainer()
	for _, a := range baked {
		c.Add(a)
	}
	return c, nil
}
