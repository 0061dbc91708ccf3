package things

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/thinghittr/hittr"
)

// Thing is a simulated box with a type, a group and a velocity.
type Thing struct {
	ID       int
	Type     string
	Group    string
	Box      cp.BB
	Velocity cp.Vector
	Alive    bool
	// Hits counts callbacks that chose to record a hit on this thing.
	Hits int

	cells []hittr.Cell
}

func (t *Thing) HitType() string  { return t.Type }
func (t *Thing) HitGroup() string { return t.Group }

// Cells returns the quadrants the thing was last placed in.
func (t *Thing) Cells() []hittr.Cell { return t.cells }

// SetCells is called by the spatial index after placement.
func (t *Thing) SetCells(cells []hittr.Cell) { t.cells = cells }

// Bounds returns the thing's box.
func (t *Thing) Bounds() cp.BB { return t.Box }

// Width of the box.
func (t *Thing) Width() float64 { return t.Box.R - t.Box.L }

// Height of the box.
func (t *Thing) Height() float64 { return t.Box.T - t.Box.B }

// Center of the box.
func (t *Thing) Center() cp.Vector {
	return cp.Vector{X: (t.Box.L + t.Box.R) / 2, Y: (t.Box.B + t.Box.T) / 2}
}

// Translate moves the box by d.
func (t *Thing) Translate(d cp.Vector) {
	t.Box.L += d.X
	t.Box.R += d.X
	t.Box.B += d.Y
	t.Box.T += d.Y
}

// Move applies the velocity for dt.
func (t *Thing) Move(dt float64) {
	if t.Velocity.X == 0 && t.Velocity.Y == 0 {
		return
	}
	t.Translate(t.Velocity.Mult(dt))
}

func (t *Thing) String() string {
	return fmt.Sprintf("%s#%d", t.Type, t.ID)
}

// Box returns a cp.BB from a top-left corner and a size.
func Box(x, y, w, h float64) cp.BB {
	return cp.BB{L: x, B: y, R: x + w, T: y + h}
}
