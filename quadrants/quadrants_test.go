package quadrants

import (
	"errors"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/thinghittr/hittr"
)

type box struct {
	name  string
	group string
	bb    cp.BB
	cells []hittr.Cell
}

func (b *box) HitType() string             { return b.name }
func (b *box) HitGroup() string            { return b.group }
func (b *box) Cells() []hittr.Cell         { return b.cells }
func (b *box) Bounds() cp.BB               { return b.bb }
func (b *box) SetCells(cells []hittr.Cell) { b.cells = cells }

func newBox(name, group string, x, y, w, h float64) *box {
	return &box{name: name, group: group, bb: cp.BB{L: x, B: y, R: x + w, T: y + h}}
}

func testKeeper(t *testing.T) *Keeper {
	t.Helper()
	k, err := NewKeeper(Config{QuadWidth: 100, QuadHeight: 100, Columns: 3, Rows: 2, Groups: []string{"solid", "character"}})
	if err != nil {
		t.Fatalf("NewKeeper: %v", err)
	}
	return k
}

func TestNewKeeperRejectsBadConfig(t *testing.T) {
	cases := []Config{
		{QuadWidth: 10, QuadHeight: 10},
		{QuadWidth: 0, QuadHeight: 10, Columns: 1, Rows: 1},
	}
	for _, c := range cases {
		if _, err := NewKeeper(c); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig for %+v, got %v", c, err)
		}
	}
}

func TestPlace(t *testing.T) {
	cases := []struct {
		name  string
		thing *box
		cells [][2]int
	}{
		{"inside_one", newBox("a", "solid", 10, 10, 20, 20), [][2]int{{0, 0}}},
		{"spans_two_columns", newBox("b", "solid", 90, 10, 20, 20), [][2]int{{0, 0}, {1, 0}}},
		{"spans_four", newBox("c", "character", 190, 90, 20, 20), [][2]int{{1, 0}, {2, 0}, {1, 1}, {2, 1}}},
		{"outside", newBox("d", "solid", 500, 500, 10, 10), nil},
		{"clipped_by_edge", newBox("e", "solid", -50, 150, 80, 10), [][2]int{{0, 1}}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			k := testKeeper(t)
			k.Place(c.thing)
			if len(c.thing.cells) != len(c.cells) {
				t.Fatalf("expected %d cells, got %d", len(c.cells), len(c.thing.cells))
			}
			for i, want := range c.cells {
				q := c.thing.cells[i].(*Quadrant)
				if q.Col != want[0] || q.Row != want[1] {
					t.Fatalf("cell %d: expected %v, got %d,%d", i, want, q.Col, q.Row)
				}
				members := q.Members(c.thing.group)
				if len(members) != 1 || members[0] != hittr.Thing(c.thing) {
					t.Fatalf("thing missing from quadrant %d,%d", q.Col, q.Row)
				}
			}
		})
	}
}

func TestPlaceAllOrderingAndReset(t *testing.T) {
	k := testKeeper(t)
	a := newBox("a", "character", 50, 50, 100, 10)
	b := newBox("b", "character", 120, 40, 20, 20)
	c := newBox("c", "character", 60, 45, 10, 10)
	wall := newBox("wall", "solid", 0, 0, 300, 200)

	k.PlaceAll([]Placeable{a, b, wall, c})
	if err := k.CheckOrdering(); err != nil {
		t.Fatalf("CheckOrdering: %v", err)
	}

	first := k.Quadrant(0, 0).Members("character")
	if len(first) != 2 || first[0] != hittr.Thing(a) || first[1] != hittr.Thing(c) {
		t.Fatalf("unexpected order in 0,0: %v", first)
	}
	second := k.Quadrant(1, 0).Members("character")
	if len(second) != 2 || second[0] != hittr.Thing(a) || second[1] != hittr.Thing(b) {
		t.Fatalf("unexpected order in 1,0: %v", second)
	}
	if k.Quadrant(2, 1).Count("solid") != 1 {
		t.Fatalf("expected wall in every quadrant")
	}

	k.PlaceAll([]Placeable{c})
	if k.Quadrant(1, 0).Count("character") != 0 || k.Quadrant(0, 0).Count("character") != 1 {
		t.Fatalf("expected reset to clear previous frame")
	}
	if k.Quadrant(5, 5) != nil || k.Quadrant(-1, 0) != nil {
		t.Fatalf("expected nil for out of range quadrant")
	}
}

func TestCheckOrderingDetectsViolation(t *testing.T) {
	k := testKeeper(t)
	a := newBox("a", "character", 10, 10, 10, 10)
	b := newBox("b", "character", 20, 10, 10, 10)
	k.PlaceAll([]Placeable{a, b})

	q := k.Quadrant(0, 0)
	q.members["character"][0], q.members["character"][1] = b, a
	if err := k.CheckOrdering(); err == nil {
		t.Fatalf("expected ordering violation")
	}
}

func TestScanWithKeeper(t *testing.T) {
	var pairs []string
	h := hittr.New(hittr.Generators{
		HitChecks: map[string]map[string]hittr.HitCheckGenerator{
			"character": {"character": func() hittr.HitCheck {
				return func(thing, other hittr.Thing) bool {
					a, b := thing.(*box).bb, other.(*box).bb
					return a.Intersects(b)
				}
			}},
		},
		HitCallbacks: map[string]map[string]hittr.HitCallbackGenerator{
			"character": {"character": func() hittr.HitCallback {
				return func(thing, other hittr.Thing) {
					pairs = append(pairs, thing.HitType()+">"+other.HitType())
				}
			}},
		},
	})

	k := testKeeper(t)
	a := newBox("a", "character", 10, 10, 20, 20)
	b := newBox("b", "character", 20, 20, 20, 20)
	c := newBox("c", "character", 35, 35, 10, 10)
	all := []Placeable{a, b, c}
	k.PlaceAll(all)
	for _, p := range all {
		h.Scan(p)
	}

	want := []string{"b>a", "c>b"}
	if len(pairs) != len(want) {
		t.Fatalf("expected %v, got %v", want, pairs)
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, pairs)
		}
	}
}
