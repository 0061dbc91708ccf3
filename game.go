package main

import (
	"fmt"
	"image/color"
	"log"
	"math"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/thinghittr/common"
	"github.com/milk9111/thinghittr/prefabs"
	"github.com/milk9111/thinghittr/sim"
	"golang.org/x/image/colornames"
)

const frameDT = 1.0 / 60.0

var fallbackColors = []color.Color{
	colornames.Lightsteelblue,
	colornames.Salmon,
	colornames.Palegreen,
	colornames.Khaki,
	colornames.Plum,
}

type Game struct {
	scenarioName string
	debug        bool
	paused       bool

	world    *sim.World
	scenario *prefabs.ScenarioSpec
	colors   map[string]color.Color
	watcher  *prefabs.Watcher
	pauseUI  *ebitenui.UI

	hits     int
	despawns int
	flash    map[int]int
}

func NewGame(scenarioName string, debug bool) (*Game, error) {
	g := &Game{scenarioName: scenarioName, debug: debug}
	if err := g.load(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) load() error {
	world, sc, err := sim.LoadScenario(g.scenarioName)
	if err != nil {
		return err
	}
	world.Debug = g.debug

	colors := make(map[string]color.Color, len(sc.Colors))
	for group, c := range sc.Colors {
		if c != nil && c.Color != nil {
			colors[group] = c.Color
		}
	}
	for i, group := range sc.Grid.Groups {
		if _, ok := colors[group]; !ok {
			colors[group] = fallbackColors[i%len(fallbackColors)]
		}
	}

	g.world = world
	g.scenario = sc
	g.colors = colors
	g.hits = 0
	g.despawns = 0
	g.flash = make(map[int]int)
	g.pauseUI = NewPauseUI(g)
	g.track()
	return nil
}

// track points the watcher at the files the running scenario uses.
func (g *Game) track() {
	if g.watcher == nil {
		return
	}
	g.watcher.Track(append(g.scenario.Files(g.world.Rules()), g.scenarioName)...)
}

// restart loads name, keeping the current scenario if that fails.
func (g *Game) restart(name string) {
	prev := g.scenarioName
	g.scenarioName = name
	if err := g.load(); err != nil {
		log.Printf("restart %s: %v", name, err)
		g.scenarioName = prev
		return
	}
	g.paused = false
}

func (g *Game) setDebug(on bool) {
	g.debug = on
	g.world.Debug = on
}

// Watch starts hot reload for the given directories.
func (g *Game) Watch(dirs ...string) error {
	w, err := prefabs.NewWatcher(dirs...)
	if err != nil {
		return err
	}
	g.watcher = w
	g.track()
	return nil
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) Name() string {
	return g.world.Name
}

func (g *Game) Size() (int, int) {
	bb := g.world.Keeper().Bounds()
	return int(math.Ceil(bb.R - bb.L)), int(math.Ceil(bb.T - bb.B))
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.reload(name)
		case err, ok := <-g.watcher.Errors:
			if ok {
				log.Printf("watch: %v", err)
			}
		default:
			return
		}
	}
}

func (g *Game) reload(name string) {
	if name == g.scenarioName || name == g.scenario.Registry {
		if err := g.load(); err != nil {
			log.Printf("reload %s: %v", name, err)
		}
		return
	}
	if err := g.world.ReloadRules(); err != nil {
		log.Printf("reload %s: %v", name, err)
		return
	}
	g.track()
}

func (g *Game) Update() error {
	g.pollWatcher()

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.restart(g.scenarioName)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		g.setDebug(!g.debug)
	}
	if g.paused && g.pauseUI != nil {
		g.pauseUI.Update()
	}
	step := !g.paused || inpututil.IsKeyJustPressed(ebiten.KeyPeriod)
	if !step {
		return nil
	}

	g.world.Update(frameDT)
	for id, n := range g.flash {
		if n <= 1 {
			delete(g.flash, id)
			continue
		}
		g.flash[id] = n - 1
	}
	for _, evt := range g.world.Events().Drain() {
		switch data := evt.Data.(type) {
		case sim.CollisionEvent:
			g.hits++
			g.flash[data.Thing.ID] = 6
			g.flash[data.Other.ID] = 6
		case sim.DespawnEvent:
			g.despawns++
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Black)
	bb := g.world.Keeper().Bounds()

	if g.debug {
		for _, q := range g.world.Keeper().Quadrants() {
			qb := q.Bounds()
			vector.StrokeRect(screen,
				float32(qb.L-bb.L), float32(qb.B-bb.B),
				float32(qb.R-qb.L), float32(qb.T-qb.B),
				1, colornames.Darkslategray, false)
		}
	}

	for _, t := range g.world.Things() {
		c, ok := g.colors[t.Group]
		if !ok {
			c = colornames.Gray
		}
		if n := g.flash[t.ID]; n > 0 {
			c = blend(c, colornames.White, float32(n)/6)
		}
		vector.DrawFilledRect(screen,
			float32(t.Box.L-bb.L), float32(t.Box.B-bb.B),
			float32(t.Width()), float32(t.Height()),
			c, false)
	}

	stats := g.world.Hittr().Stats()
	msg := fmt.Sprintf("%s  frame %d  FPS %.1f\nthings %d  hits %d  despawns %d\ncached checks %d  callbacks %d  hits checks %d",
		g.world.Name, g.world.Frame, ebiten.ActualFPS(),
		len(g.world.Things()), g.hits, g.despawns,
		stats.CachedHitChecks, stats.CachedHitCallbacks, stats.CachedHitsChecks)
	ebitenutil.DebugPrint(screen, msg)

	if g.paused && g.pauseUI != nil {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.Size()
}

func blend(a, b color.Color, t float32) color.Color {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	mix := func(x, y uint32) uint8 {
		return uint8(common.Lerp(float32(x>>8), float32(y>>8), t))
	}
	return color.RGBA{R: mix(ar, br), G: mix(ag, bg), B: mix(ab, bb), A: mix(aa, ba)}
}
