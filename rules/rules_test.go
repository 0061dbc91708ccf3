package rules

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/thinghittr/hittr"
	"github.com/milk9111/thinghittr/prefabs"
	"github.com/milk9111/thinghittr/things"
	"gopkg.in/yaml.v3"
)

func parseRules(t *testing.T, src string) *prefabs.RulesSpec {
	t.Helper()
	var spec prefabs.RulesSpec
	if err := yaml.Unmarshal([]byte(src), &spec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return &spec
}

func thing(id int, typ, group string, x, y, w, h float64) *things.Thing {
	return &things.Thing{ID: id, Type: typ, Group: group, Box: things.Box(x, y, w, h), Alive: true}
}

func TestBuildEmbeddedRules(t *testing.T) {
	spec, err := prefabs.LoadRulesSpec("rules.yaml")
	if err != nil {
		t.Fatalf("LoadRulesSpec: %v", err)
	}
	h, err := New(spec, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := h.GroupHitList("ball"); !reflect.DeepEqual(got, []string{"brick", "paddle", "wall"}) {
		t.Fatalf("unexpected ball hit list %v", got)
	}
	if err := h.Validate(true); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestBuildUnknownNames(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"global", "global_checks:\n  a: sometimes\n"},
		{"check", "hit_checks:\n  a:\n    - {with: b, check: wobble}\n"},
		{"callback", "hit_checks:\n  a:\n    - {with: b, check: overlap, callback: explode}\n"},
		{"chained_callback", "hit_checks:\n  a:\n    - {with: b, check: overlap, callback: bounce+explode}\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Build(parseRules(t, c.src), Options{}); !errors.Is(err, ErrUnknownRule) {
				t.Fatalf("expected ErrUnknownRule, got %v", err)
			}
		})
	}

	if _, err := Build(parseRules(t, "hit_checks:\n  a:\n    - {with: b, check: script:missing.tengo}\n"), Options{}); err == nil || !strings.Contains(err.Error(), "rules: a -> b:") {
		t.Fatalf("expected error naming a -> b for missing script, got %v", err)
	}
	if _, err := Build(nil, Options{}); err == nil {
		t.Fatalf("expected error for nil spec")
	}
}

func TestBuiltinChecksAndCallbacks(t *testing.T) {
	var notified []string
	spec := parseRules(t, `
global_checks:
  ball: alive
hit_checks:
  ball:
    - with: wall
      check: overlap
      callback: stop_x+count
  ghost:
    - with: wall
      check: never
      callback: kill_self
`)
	h, err := New(spec, Options{Notify: func(a, b *things.Thing, callback string) {
		notified = append(notified, a.String()+">"+b.String()+":"+callback)
	}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ball := thing(1, "ball", "ball", 0, 0, 10, 10)
	ball.Velocity = cp.Vector{X: 5, Y: 3}
	wall := thing(2, "wall", "wall", 8, 0, 4, 40)
	ghost := thing(3, "ghost", "ghost", 8, 0, 4, 4)

	hit, err := h.TestAndReact(ball, wall)
	if err != nil || !hit {
		t.Fatalf("expected hit, got %v %v", hit, err)
	}
	if ball.Velocity.X != 0 || ball.Velocity.Y != 3 {
		t.Fatalf("expected stop_x, got %v", ball.Velocity)
	}
	if ball.Hits != 1 || wall.Hits != 1 {
		t.Fatalf("expected count on both, got %d %d", ball.Hits, wall.Hits)
	}
	if !reflect.DeepEqual(notified, []string{"ball#1>wall#2:stop_x+count"}) {
		t.Fatalf("unexpected notifications %v", notified)
	}

	if hit, err := h.TestAndReact(ghost, wall); err != nil || hit || !ghost.Alive {
		t.Fatalf("never check should not hit: %v %v alive=%v", hit, err, ghost.Alive)
	}

	h.EnsureType("ball", "ball")
	ball.Alive = false
	ball.SetCells([]hittr.Cell(nil))
	h.Scan(ball)
	if ball.Hits != 1 {
		t.Fatalf("dead ball should not collide")
	}
}

func TestBounce(t *testing.T) {
	cases := []struct {
		name   string
		ball   *things.Thing
		vel    cp.Vector
		wantV  cp.Vector
		wantLX float64
		wantBY float64
	}{
		{
			name:   "hits_left_side",
			ball:   thing(1, "ball", "ball", 6, 10, 6, 6),
			vel:    cp.Vector{X: 4, Y: 1},
			wantV:  cp.Vector{X: -4, Y: 1},
			wantLX: 4,
			wantBY: 10,
		},
		{
			name:   "hits_top",
			ball:   thing(1, "ball", "ball", 20, -4, 6, 6),
			vel:    cp.Vector{X: 1, Y: 4},
			wantV:  cp.Vector{X: 1, Y: -4},
			wantLX: 20,
			wantBY: -6,
		},
		{
			name:   "moving_away_keeps_velocity",
			ball:   thing(1, "ball", "ball", 6, 10, 6, 6),
			vel:    cp.Vector{X: -4, Y: 0},
			wantV:  cp.Vector{X: -4, Y: 0},
			wantLX: 4,
			wantBY: 10,
		},
	}

	wall := thing(2, "wall", "wall", 10, 0, 40, 40)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			c.ball.Velocity = c.vel
			bounce(c.ball, wall, 1)
			if c.ball.Velocity != c.wantV {
				t.Fatalf("expected velocity %v, got %v", c.wantV, c.ball.Velocity)
			}
			if c.ball.Box.L != c.wantLX || c.ball.Box.B != c.wantBY {
				t.Fatalf("expected corner %v,%v got %v,%v", c.wantLX, c.wantBY, c.ball.Box.L, c.ball.Box.B)
			}
		})
	}
}

func TestScriptedRules(t *testing.T) {
	spec := parseRules(t, `
hit_checks:
  ball:
    - with: brick
      check: overlap
      callback: script:brick_hit.tengo
  character:
    - with: item
      check: script:near.tengo
      callback: kill_other
      params:
        distance: 12
`)
	h, err := New(spec, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ball := thing(1, "ball", "ball", 0, 0, 8, 8)
	hard := thing(2, "hard_brick", "brick", 4, 4, 20, 10)
	if _, err := h.TestAndReact(ball, hard); err != nil {
		t.Fatalf("TestAndReact: %v", err)
	}
	if !hard.Alive || hard.Hits != 1 {
		t.Fatalf("hard brick should survive the first hit, got alive=%v hits=%d", hard.Alive, hard.Hits)
	}
	if _, err := h.TestAndReact(ball, hard); err != nil {
		t.Fatalf("TestAndReact: %v", err)
	}
	if hard.Alive {
		t.Fatalf("hard brick should break on the second hit")
	}

	walker := thing(3, "walker", "character", 0, 0, 10, 10)
	closeCoin := thing(4, "coin", "item", 12, 0, 6, 6)
	farCoin := thing(5, "coin", "item", 40, 40, 6, 6)

	if hit, err := h.TestPair(walker, farCoin); err != nil || hit {
		t.Fatalf("far coin should not be near: %v %v", hit, err)
	}
	if hit, err := h.TestAndReact(walker, closeCoin); err != nil || !hit {
		t.Fatalf("close coin should be near: %v %v", hit, err)
	}
	if closeCoin.Alive {
		t.Fatalf("expected close coin collected")
	}

	stats := h.Stats()
	if stats.HitCheckGenerations != 2 || stats.HitCallbackGenerations != 2 {
		t.Fatalf("expected one generation per type pair, got %+v", stats)
	}
}
