package rules

import (
	"math"

	"github.com/milk9111/thinghittr/hittr"
	"github.com/milk9111/thinghittr/prefabs"
	"github.com/milk9111/thinghittr/things"
)

type globalMaker func() hittr.GlobalCheck
type checkMaker func(params map[string]any) (hittr.HitCheck, error)
type callbackMaker func(params map[string]any) (hittr.HitCallback, error)

var globalRegistry = map[string]globalMaker{
	"always": func() hittr.GlobalCheck {
		return func(hittr.Thing) bool { return true }
	},
	"alive": func() hittr.GlobalCheck {
		return func(t hittr.Thing) bool {
			th, ok := t.(*things.Thing)
			return ok && th.Alive
		}
	},
	"moving": func() hittr.GlobalCheck {
		return func(t hittr.Thing) bool {
			th, ok := t.(*things.Thing)
			return ok && th.Alive && (th.Velocity.X != 0 || th.Velocity.Y != 0)
		}
	},
}

var checkRegistry = map[string]checkMaker{
	"overlap": func(map[string]any) (hittr.HitCheck, error) {
		return boxCheck(func(a, b *things.Thing) bool { return a.Box.Intersects(b.Box) }), nil
	},
	"contains": func(map[string]any) (hittr.HitCheck, error) {
		return boxCheck(func(a, b *things.Thing) bool { return a.Box.Contains(b.Box) }), nil
	},
	"near": func(params map[string]any) (hittr.HitCheck, error) {
		p, err := prefabs.DecodeSpec[nearParams](params)
		if err != nil {
			return nil, err
		}
		limit := p.Distance * p.Distance
		return boxCheck(func(a, b *things.Thing) bool {
			return a.Center().DistanceSq(b.Center()) <= limit
		}), nil
	},
	"never": func(map[string]any) (hittr.HitCheck, error) {
		return func(hittr.Thing, hittr.Thing) bool { return false }, nil
	},
}

var callbackRegistry = map[string]callbackMaker{
	"none": func(map[string]any) (hittr.HitCallback, error) {
		return func(hittr.Thing, hittr.Thing) {}, nil
	},
	"stop_x": func(map[string]any) (hittr.HitCallback, error) {
		return boxCallback(func(a, _ *things.Thing) { a.Velocity.X = 0 }), nil
	},
	"stop_y": func(map[string]any) (hittr.HitCallback, error) {
		return boxCallback(func(a, _ *things.Thing) { a.Velocity.Y = 0 }), nil
	},
	"push_out": func(map[string]any) (hittr.HitCallback, error) {
		return boxCallback(func(a, b *things.Thing) { pushOut(a, b) }), nil
	},
	"bounce": func(params map[string]any) (hittr.HitCallback, error) {
		p, err := prefabs.DecodeSpec[bounceParams](params)
		if err != nil {
			return nil, err
		}
		restitution := 1.0
		if p.Restitution != nil {
			restitution = *p.Restitution
		}
		return boxCallback(func(a, b *things.Thing) { bounce(a, b, restitution) }), nil
	},
	"kill_other": func(map[string]any) (hittr.HitCallback, error) {
		return boxCallback(func(_, b *things.Thing) { b.Alive = false }), nil
	},
	"kill_self": func(map[string]any) (hittr.HitCallback, error) {
		return boxCallback(func(a, _ *things.Thing) { a.Alive = false }), nil
	},
	"count": func(map[string]any) (hittr.HitCallback, error) {
		return boxCallback(func(a, b *things.Thing) {
			a.Hits++
			b.Hits++
		}), nil
	},
}

type nearParams struct {
	Distance float64 `yaml:"distance"`
}

type bounceParams struct {
	Restitution *float64 `yaml:"restitution"`
}

func boxCheck(fn func(a, b *things.Thing) bool) hittr.HitCheck {
	return func(thing, other hittr.Thing) bool {
		a, ok := thing.(*things.Thing)
		if !ok {
			return false
		}
		b, ok := other.(*things.Thing)
		if !ok {
			return false
		}
		return fn(a, b)
	}
}

func boxCallback(fn func(a, b *things.Thing)) hittr.HitCallback {
	return func(thing, other hittr.Thing) {
		a, ok := thing.(*things.Thing)
		if !ok {
			return
		}
		b, ok := other.(*things.Thing)
		if !ok {
			return
		}
		fn(a, b)
	}
}

// penetration returns how far a and b overlap on each axis.
func penetration(a, b *things.Thing) (float64, float64) {
	ox := math.Min(a.Box.R, b.Box.R) - math.Max(a.Box.L, b.Box.L)
	oy := math.Min(a.Box.T, b.Box.T) - math.Max(a.Box.B, b.Box.B)
	return ox, oy
}

// pushOut moves a out of b along the axis of least penetration and returns
// that axis ('x' or 'y') and the direction a was moved in.
func pushOut(a, b *things.Thing) (byte, float64) {
	ox, oy := penetration(a, b)
	if ox < 0 || oy < 0 {
		return 0, 0
	}
	ac, bc := a.Center(), b.Center()
	if ox < oy {
		dir := 1.0
		if ac.X < bc.X {
			dir = -1
		}
		a.Box.L += dir * ox
		a.Box.R += dir * ox
		return 'x', dir
	}
	dir := 1.0
	if ac.Y < bc.Y {
		dir = -1
	}
	a.Box.B += dir * oy
	a.Box.T += dir * oy
	return 'y', dir
}

func bounce(a, b *things.Thing, restitution float64) {
	axis, dir := pushOut(a, b)
	switch axis {
	case 'x':
		if a.Velocity.X*dir < 0 {
			a.Velocity.X = -a.Velocity.X * restitution
		}
	case 'y':
		if a.Velocity.Y*dir < 0 {
			a.Velocity.Y = -a.Velocity.Y * restitution
		}
	}
}
