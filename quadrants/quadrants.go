// Package quadrants is a fixed grid spatial index. Every placed thing is
// listed, per group, in each quadrant its bounds overlap.
//
// Members of a group are appended in placement order, so every quadrant
// lists any two things of the same group in the same relative order. The
// collision scan in hittr stops when a thing reaches itself in its own
// group's list and depends on that ordering.
package quadrants

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/thinghittr/hittr"
)

var ErrInvalidConfig = errors.New("quadrants: invalid config")

// Placeable is a thing the keeper can place into quadrants.
type Placeable interface {
	hittr.Thing
	// Bounds uses screen coordinates: B is the top edge, T the bottom.
	Bounds() cp.BB
	SetCells(cells []hittr.Cell)
}

// Config describes the grid. Left and Top give the world position of the
// first quadrant's corner.
type Config struct {
	Left       float64  `yaml:"left"`
	Top        float64  `yaml:"top"`
	QuadWidth  float64  `yaml:"quad_width"`
	QuadHeight float64  `yaml:"quad_height"`
	Columns    int      `yaml:"columns"`
	Rows       int      `yaml:"rows"`
	Groups     []string `yaml:"groups"`
}

// Quadrant is one grid cell.
type Quadrant struct {
	Col, Row int
	bounds   cp.BB
	members  map[string][]hittr.Thing
}

// Members implements hittr.Cell.
func (q *Quadrant) Members(group string) []hittr.Thing {
	if q == nil {
		return nil
	}
	return q.members[group]
}

// Bounds returns the quadrant's rectangle.
func (q *Quadrant) Bounds() cp.BB {
	return q.bounds
}

// Count returns the number of things of group in the quadrant.
func (q *Quadrant) Count(group string) int {
	return len(q.members[group])
}

func (q *Quadrant) add(group string, t hittr.Thing) {
	q.members[group] = append(q.members[group], t)
}

func (q *Quadrant) reset() {
	for group, list := range q.members {
		clear(list)
		q.members[group] = list[:0]
	}
}

// Keeper owns the quadrant grid.
type Keeper struct {
	cfg    Config
	bounds cp.BB
	quads  []*Quadrant
	order  []Placeable
}

// NewKeeper builds a keeper from cfg.
func NewKeeper(cfg Config) (*Keeper, error) {
	if cfg.Columns <= 0 || cfg.Rows <= 0 {
		return nil, fmt.Errorf("%w: %dx%d grid", ErrInvalidConfig, cfg.Columns, cfg.Rows)
	}
	if cfg.QuadWidth <= 0 || cfg.QuadHeight <= 0 {
		return nil, fmt.Errorf("%w: quadrant size %vx%v", ErrInvalidConfig, cfg.QuadWidth, cfg.QuadHeight)
	}

	k := &Keeper{
		cfg: cfg,
		bounds: cp.BB{
			L: cfg.Left,
			B: cfg.Top,
			R: cfg.Left + cfg.QuadWidth*float64(cfg.Columns),
			T: cfg.Top + cfg.QuadHeight*float64(cfg.Rows),
		},
		quads: make([]*Quadrant, 0, cfg.Columns*cfg.Rows),
	}
	for row := 0; row < cfg.Rows; row++ {
		for col := 0; col < cfg.Columns; col++ {
			x := cfg.Left + float64(col)*cfg.QuadWidth
			y := cfg.Top + float64(row)*cfg.QuadHeight
			q := &Quadrant{
				Col:     col,
				Row:     row,
				bounds:  cp.BB{L: x, B: y, R: x + cfg.QuadWidth, T: y + cfg.QuadHeight},
				members: make(map[string][]hittr.Thing, len(cfg.Groups)),
			}
			for _, group := range cfg.Groups {
				q.members[group] = nil
			}
			k.quads = append(k.quads, q)
		}
	}
	return k, nil
}

// Config returns the keeper's configuration.
func (k *Keeper) Config() Config {
	return k.cfg
}

// Bounds returns the rectangle covered by the grid.
func (k *Keeper) Bounds() cp.BB {
	return k.bounds
}

// Quadrant returns the quadrant at col,row or nil when out of range.
func (k *Keeper) Quadrant(col, row int) *Quadrant {
	if col < 0 || row < 0 || col >= k.cfg.Columns || row >= k.cfg.Rows {
		return nil
	}
	return k.quads[row*k.cfg.Columns+col]
}

// Quadrants returns every quadrant in row-major order.
func (k *Keeper) Quadrants() []*Quadrant {
	return k.quads
}

// Reset empties every quadrant. Member slices keep their capacity.
func (k *Keeper) Reset() {
	for _, q := range k.quads {
		q.reset()
	}
	clear(k.order)
	k.order = k.order[:0]
}

// Place adds p to every quadrant its bounds overlap and hands p the list of
// those quadrants in row-major order. Things outside the grid get no cells.
func (k *Keeper) Place(p Placeable) {
	if p == nil {
		return
	}
	k.order = append(k.order, p)

	bb := p.Bounds()
	if !bb.Intersects(k.bounds) {
		p.SetCells(nil)
		return
	}

	colStart, colEnd := k.span(bb.L, bb.R, k.cfg.Left, k.cfg.QuadWidth, k.cfg.Columns)
	rowStart, rowEnd := k.span(bb.B, bb.T, k.cfg.Top, k.cfg.QuadHeight, k.cfg.Rows)

	cells := make([]hittr.Cell, 0, (colEnd-colStart+1)*(rowEnd-rowStart+1))
	group := p.HitGroup()
	for row := rowStart; row <= rowEnd; row++ {
		for col := colStart; col <= colEnd; col++ {
			q := k.quads[row*k.cfg.Columns+col]
			if !bb.Intersects(q.bounds) {
				continue
			}
			q.add(group, p)
			cells = append(cells, q)
		}
	}
	p.SetCells(cells)
}

// PlaceAll resets the grid and places ps in slice order.
func (k *Keeper) PlaceAll(ps []Placeable) {
	k.Reset()
	for _, p := range ps {
		k.Place(p)
	}
}

func (k *Keeper) span(lo, hi, origin, size float64, count int) (int, int) {
	start := int((lo - origin) / size)
	end := int((hi - origin) / size)
	return clampIndex(start, count), clampIndex(end, count)
}

func clampIndex(i, count int) int {
	if i < 0 {
		return 0
	}
	if i >= count {
		return count - 1
	}
	return i
}

// CheckOrdering verifies that every quadrant lists the things of each group
// in placement order since the last Reset.
func (k *Keeper) CheckOrdering() error {
	rank := make(map[hittr.Thing]int, len(k.order))
	for i, p := range k.order {
		if _, ok := rank[p]; !ok {
			rank[p] = i
		}
	}

	var errs []error
	for _, q := range k.quads {
		for group, list := range q.members {
			last := -1
			for _, t := range list {
				r, ok := rank[t]
				if !ok {
					errs = append(errs, fmt.Errorf("quadrants: %d,%d group %q holds an unplaced thing", q.Col, q.Row, group))
					break
				}
				if r <= last {
					errs = append(errs, fmt.Errorf("quadrants: %d,%d group %q is out of placement order", q.Col, q.Row, group))
					break
				}
				last = r
			}
		}
	}
	return errors.Join(errs...)
}
