package sim

import (
	"log"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/thinghittr/prefabs"
	"github.com/milk9111/thinghittr/quadrants"
	"github.com/milk9111/thinghittr/things"
)

// MovementSystem applies velocities and the world's edge mode.
type MovementSystem struct{}

func (s *MovementSystem) Update(w *World, dt float64) {
	bounds := w.keeper.Bounds()
	for _, t := range w.store.Things() {
		if !t.Alive {
			continue
		}
		t.Move(dt)
		applyEdges(t, bounds, w.Edges)
	}
}

func applyEdges(t *things.Thing, bounds cp.BB, mode prefabs.EdgeMode) {
	switch mode {
	case prefabs.EdgeWrap:
		width, height := bounds.R-bounds.L, bounds.T-bounds.B
		switch {
		case t.Box.L >= bounds.R:
			t.Translate(cp.Vector{X: -width})
		case t.Box.R <= bounds.L:
			t.Translate(cp.Vector{X: width})
		}
		switch {
		case t.Box.B >= bounds.T:
			t.Translate(cp.Vector{Y: -height})
		case t.Box.T <= bounds.B:
			t.Translate(cp.Vector{Y: height})
		}
	case prefabs.EdgeBounce:
		if t.Box.L < bounds.L && t.Velocity.X < 0 || t.Box.R > bounds.R && t.Velocity.X > 0 {
			t.Velocity.X = -t.Velocity.X
		}
		if t.Box.B < bounds.B && t.Velocity.Y < 0 || t.Box.T > bounds.T && t.Velocity.Y > 0 {
			t.Velocity.Y = -t.Velocity.Y
		}
	case prefabs.EdgeKill:
		if !t.Box.Intersects(bounds) {
			t.Alive = false
		}
	}
}

// QuadrantSystem places every live thing into the quadrant grid, in spawn
// order.
type QuadrantSystem struct {
	placeables []quadrants.Placeable
}

func (s *QuadrantSystem) Update(w *World, _ float64) {
	s.placeables = s.placeables[:0]
	for _, t := range w.store.Things() {
		if !t.Alive {
			t.SetCells(nil)
			continue
		}
		s.placeables = append(s.placeables, t)
	}
	w.keeper.PlaceAll(s.placeables)
}

// CollisionSystem ensures each type once per Hittr and scans every live
// thing.
type CollisionSystem struct{}

func (s *CollisionSystem) Update(w *World, _ float64) {
	h := w.hittr
	for _, t := range w.store.Things() {
		if !t.Alive {
			continue
		}
		if !w.seen[t.Type] {
			h.EnsureType(t.Type, t.Group)
			w.seen[t.Type] = true
			if w.Debug {
				log.Printf("sim: frame %d first %s (group %s)", w.Frame, t.Type, t.Group)
			}
		}
		h.Scan(t)
	}
}

// CleanupSystem removes dead things.
type CleanupSystem struct {
	dead []int
}

func (s *CleanupSystem) Update(w *World, _ float64) {
	s.dead = s.dead[:0]
	for _, t := range w.store.Things() {
		if !t.Alive {
			s.dead = append(s.dead, t.ID)
		}
	}
	for _, id := range s.dead {
		t := w.store.Get(id)
		w.store.Remove(id)
		w.events.Push(Event{Type: EventDespawn, Data: DespawnEvent{Thing: t, Frame: w.Frame}})
		if w.Debug {
			log.Printf("sim: frame %d despawn %s", w.Frame, t)
		}
	}
}
