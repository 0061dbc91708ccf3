package rules

import (
	"fmt"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/thinghittr/hittr"
	"github.com/milk9111/thinghittr/prefabs"
	"github.com/milk9111/thinghittr/things"
)

const scriptPrefix = "script:"

func isScript(name string) bool {
	return strings.HasPrefix(name, scriptPrefix)
}

// compileScript loads and compiles a check or callback script. Scripts see
// `thing`, `other` and `params` maps; check scripts assign `hit`.
func compileScript(name string, params map[string]any) (*tengo.Compiled, error) {
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("rules: load %s: %w", name, err)
	}

	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	_ = script.Add("thing", map[string]any{})
	_ = script.Add("other", map[string]any{})
	_ = script.Add("hit", false)
	if params == nil {
		params = map[string]any{}
	}
	if err := script.Add("params", params); err != nil {
		return nil, fmt.Errorf("rules: %s params: %w", name, err)
	}

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("rules: compile %s: %w", name, err)
	}
	return compiled, nil
}

// scriptRuntime is one clone of a compiled script bound to a type pair.
type scriptRuntime struct {
	name     string
	compiled *tengo.Compiled
	thing    *tengo.Map
	other    *tengo.Map
}

func newScriptRuntime(name string, compiled *tengo.Compiled) *scriptRuntime {
	return &scriptRuntime{
		name:     name,
		compiled: compiled.Clone(),
		thing:    &tengo.Map{Value: map[string]tengo.Object{}},
		other:    &tengo.Map{Value: map[string]tengo.Object{}},
	}
}

func (rt *scriptRuntime) run(a, b *things.Thing) error {
	writeThing(rt.thing, a)
	writeThing(rt.other, b)
	if err := rt.compiled.Set("thing", rt.thing); err != nil {
		return err
	}
	if err := rt.compiled.Set("other", rt.other); err != nil {
		return err
	}
	if err := rt.compiled.Set("hit", false); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func scriptCheckGenerator(name string, compiled *tengo.Compiled) hittr.HitCheckGenerator {
	return func() hittr.HitCheck {
		rt := newScriptRuntime(name, compiled)
		return boxCheck(func(a, b *things.Thing) bool {
			if err := rt.run(a, b); err != nil {
				log.Printf("rules: script %s: %v", name, err)
				return false
			}
			return rt.compiled.Get("hit").Bool()
		})
	}
}

func scriptCallbackGenerator(name string, compiled *tengo.Compiled) hittr.HitCallbackGenerator {
	return func() hittr.HitCallback {
		rt := newScriptRuntime(name, compiled)
		return boxCallback(func(a, b *things.Thing) {
			if err := rt.run(a, b); err != nil {
				log.Printf("rules: script %s: %v", name, err)
				return
			}
			readThing(rt.thing, a)
			readThing(rt.other, b)
		})
	}
}

func writeThing(m *tengo.Map, t *things.Thing) {
	clear(m.Value)
	m.Value["id"] = &tengo.Int{Value: int64(t.ID)}
	m.Value["type"] = &tengo.String{Value: t.Type}
	m.Value["group"] = &tengo.String{Value: t.Group}
	m.Value["x"] = &tengo.Float{Value: t.Box.L}
	m.Value["y"] = &tengo.Float{Value: t.Box.B}
	m.Value["w"] = &tengo.Float{Value: t.Width()}
	m.Value["h"] = &tengo.Float{Value: t.Height()}
	m.Value["vx"] = &tengo.Float{Value: t.Velocity.X}
	m.Value["vy"] = &tengo.Float{Value: t.Velocity.Y}
	m.Value["hits"] = &tengo.Int{Value: int64(t.Hits)}
	if t.Alive {
		m.Value["alive"] = tengo.TrueValue
	} else {
		m.Value["alive"] = tengo.FalseValue
	}
}

// readThing copies the fields a callback script may change back onto t.
func readThing(m *tengo.Map, t *things.Thing) {
	x, y := objectAsFloat(m.Value["x"], t.Box.L), objectAsFloat(m.Value["y"], t.Box.B)
	if x != t.Box.L || y != t.Box.B {
		t.Translate(cp.Vector{X: x - t.Box.L, Y: y - t.Box.B})
	}
	t.Velocity.X = objectAsFloat(m.Value["vx"], t.Velocity.X)
	t.Velocity.Y = objectAsFloat(m.Value["vy"], t.Velocity.Y)
	if v, ok := m.Value["alive"]; ok {
		t.Alive = !v.IsFalsy()
	}
	if v, ok := m.Value["hits"].(*tengo.Int); ok {
		t.Hits = int(v.Value)
	}
}

func objectAsFloat(obj tengo.Object, fallback float64) float64 {
	switch v := obj.(type) {
	case *tengo.Float:
		return v.Value
	case *tengo.Int:
		return float64(v.Value)
	default:
		return fallback
	}
}
