package sim

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/thinghittr/hittr"
	"github.com/milk9111/thinghittr/prefabs"
	"github.com/milk9111/thinghittr/quadrants"
	"github.com/milk9111/thinghittr/things"
)

// World owns the things, the quadrant grid, the Hittr and system order.
// It is single threaded: Update must not run concurrently with anything
// else touching the world.
type World struct {
	Name  string
	Frame int
	Edges prefabs.EdgeMode
	Debug bool

	registry  *things.Registry
	store     things.Store
	keeper    *quadrants.Keeper
	hittr     *hittr.Hittr
	events    EventQueue
	scheduler *Scheduler
	rulesFile string
	rules     *prefabs.RulesSpec

	// seen holds the types EnsureType has been called for on the current
	// Hittr.
	seen map[string]bool
}

// NewWorld creates a world with the default systems: movement, quadrant
// placement, collision and cleanup.
func NewWorld(registry *things.Registry, keeper *quadrants.Keeper, h *hittr.Hittr) (*World, error) {
	if registry == nil || keeper == nil || h == nil {
		return nil, fmt.Errorf("sim: world needs a registry, a quadrant keeper and a hittr")
	}
	w := &World{
		registry: registry,
		keeper:   keeper,
		hittr:    h,
		seen:     make(map[string]bool),
	}
	w.scheduler = NewScheduler(
		&MovementSystem{},
		&QuadrantSystem{},
		&CollisionSystem{},
		&CleanupSystem{},
	)
	return w, nil
}

// Spawn adds a live thing of typ.
func (w *World) Spawn(typ string, box cp.BB, vel cp.Vector) (*things.Thing, error) {
	t, err := w.registry.New(typ, box)
	if err != nil {
		return nil, fmt.Errorf("sim: spawn: %w", err)
	}
	t.Velocity = vel
	w.store.Set(t)
	return t, nil
}

// Things returns every thing in spawn order. The caller must not modify the
// slice.
func (w *World) Things() []*things.Thing {
	return w.store.Things()
}

// Thing returns the thing with id, or nil.
func (w *World) Thing(id int) *things.Thing {
	return w.store.Get(id)
}

func (w *World) Keeper() *quadrants.Keeper { return w.keeper }

func (w *World) Registry() *things.Registry { return w.registry }

func (w *World) Hittr() *hittr.Hittr { return w.hittr }

// SetHittr swaps in a new Hittr, typically after the rules were reloaded.
// Types are ensured again on the next frame.
func (w *World) SetHittr(h *hittr.Hittr) {
	if h == nil {
		return
	}
	w.hittr = h
	clear(w.seen)
	w.events.Push(Event{Type: EventReload, Data: w.Frame})
}

func (w *World) Scheduler() *Scheduler { return w.scheduler }

// Rules returns the rules the current Hittr was built from, or nil for a
// world built with NewWorld.
func (w *World) Rules() *prefabs.RulesSpec { return w.rules }

// Events returns the world event queue. Events accumulate until drained.
func (w *World) Events() *EventQueue {
	return &w.events
}

// Update runs all systems once and advances the frame counter.
func (w *World) Update(dt float64) {
	if w == nil {
		return
	}
	w.Frame++
	w.scheduler.Update(w, dt)
}

// NotifyCollision pushes a collision event. It matches rules.Options.Notify.
func (w *World) NotifyCollision(thing, other *things.Thing, callback string) {
	w.events.Push(Event{Type: EventCollision, Data: CollisionEvent{
		Thing:    thing,
		Other:    other,
		Callback: callback,
		Frame:    w.Frame,
	}})
}
