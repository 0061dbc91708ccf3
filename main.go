package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/thinghittr/prefabs"
)

func main() {
	scenario := flag.String("scenario", "scenario_breakout.yaml", "scenario file in prefabs/ (embedded copy used if missing on disk)")
	debug := flag.Bool("debug", false, "draw quadrants and log first sightings and despawns")
	watch := flag.Bool("watch", false, "reload rules and scenario when files in prefabs/ change")
	list := flag.Bool("list", false, "list scenarios and exit")
	flag.Parse()

	if *list {
		for _, name := range prefabs.Scenarios() {
			log.Println(name)
		}
		return
	}

	game, err := NewGame(*scenario, *debug)
	if err != nil {
		log.Fatal(err)
	}
	if *watch {
		if err := game.Watch(prefabs.Dir, prefabs.Dir+"/scripts"); err != nil {
			log.Printf("watch %s: %v", prefabs.Dir, err)
		}
	}
	defer game.Close()

	w, h := game.Size()
	ebiten.SetWindowSize(w*2, h*2)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("thinghittr - " + game.Name())

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
