package sim

import (
	"fmt"
	"log"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/thinghittr/prefabs"
	"github.com/milk9111/thinghittr/quadrants"
	"github.com/milk9111/thinghittr/rules"
	"github.com/milk9111/thinghittr/things"
)

// LoadScenario loads a scenario file together with the rules and registry
// it names and builds a world from them.
func LoadScenario(name string) (*World, *prefabs.ScenarioSpec, error) {
	sc, err := prefabs.LoadScenarioSpec(name)
	if err != nil {
		return nil, nil, err
	}
	reg, err := prefabs.LoadRegistrySpec(sc.Registry)
	if err != nil {
		return nil, nil, err
	}
	rs, err := prefabs.LoadRulesSpec(sc.Rules)
	if err != nil {
		return nil, nil, err
	}
	w, err := NewWorldFromScenario(sc, reg, rs)
	if err != nil {
		return nil, nil, fmt.Errorf("sim: scenario %s: %w", name, err)
	}
	return w, sc, nil
}

// NewWorldFromScenario builds the registry, quadrant grid and Hittr and
// spawns the scenario's things. Collision callbacks are reported on the
// world's event queue.
func NewWorldFromScenario(sc *prefabs.ScenarioSpec, reg *prefabs.RegistrySpec, rs *prefabs.RulesSpec) (*World, error) {
	if sc == nil || reg == nil || rs == nil {
		return nil, fmt.Errorf("sim: nil scenario, registry or rules")
	}
	registry, err := things.NewRegistry(reg.Types)
	if err != nil {
		return nil, err
	}
	keeper, err := quadrants.NewKeeper(sc.Grid)
	if err != nil {
		return nil, err
	}

	var w *World
	notify := func(thing, other *things.Thing, callback string) {
		if w != nil {
			w.NotifyCollision(thing, other, callback)
		}
	}
	h, err := rules.New(rs, rules.Options{Notify: notify})
	if err != nil {
		return nil, err
	}
	if err := h.Validate(false); err != nil {
		return nil, err
	}

	w, err = NewWorld(registry, keeper, h)
	if err != nil {
		return nil, err
	}
	w.Name = sc.Name
	w.Edges = sc.Edges
	w.rulesFile = sc.Rules
	w.rules = rs

	for _, ts := range sc.Things {
		n := max(ts.Repeat, 1)
		for i := 0; i < n; i++ {
			x := ts.X + float64(i)*ts.StepX
			y := ts.Y + float64(i)*ts.StepY
			if _, err := w.Spawn(ts.Type, things.Box(x, y, ts.W, ts.H), cp.Vector{X: ts.VX, Y: ts.VY}); err != nil {
				return nil, err
			}
		}
	}
	return w, nil
}

// ReloadRules reloads the world's rules file and swaps in a fresh Hittr.
// On error the current Hittr stays in place.
func (w *World) ReloadRules() error {
	if w.rulesFile == "" {
		return fmt.Errorf("sim: world has no rules file")
	}
	rs, err := prefabs.LoadRulesSpec(w.rulesFile)
	if err != nil {
		return err
	}
	h, err := rules.New(rs, rules.Options{Notify: w.NotifyCollision})
	if err != nil {
		return err
	}
	if err := h.Validate(false); err != nil {
		return err
	}
	w.SetHittr(h)
	w.rules = rs
	log.Printf("sim: reloaded %s at frame %d", w.rulesFile, w.Frame)
	return nil
}
