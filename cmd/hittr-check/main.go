// Command hittr-check loads a rules file and asks the Hittr whether two
// thing types would hit each other when placed at the given offset.
//
//	hittr-check -a ball -b wall
//	hittr-check -a walker -b coin -dx 10 -react
//	hittr-check -validate
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/milk9111/thinghittr/hittr"
	"github.com/milk9111/thinghittr/prefabs"
	"github.com/milk9111/thinghittr/rules"
	"github.com/milk9111/thinghittr/things"
)

func main() {
	rulesFile := flag.String("rules", "rules.yaml", "rules file in prefabs/")
	registryFile := flag.String("registry", "registry.yaml", "registry file in prefabs/")
	a := flag.String("a", "", "type of the scanning thing")
	b := flag.String("b", "", "type of the other thing")
	dx := flag.Float64("dx", 0, "x offset of b from a")
	dy := flag.Float64("dy", 0, "y offset of b from a")
	size := flag.Float64("size", 8, "width and height of both things")
	react := flag.Bool("react", false, "run the hit callback when the check passes")
	validate := flag.Bool("validate", false, "report every missing generator and exit")
	flag.Parse()

	log.SetFlags(0)

	rs, err := prefabs.LoadRulesSpec(*rulesFile)
	if err != nil {
		log.Fatal(err)
	}
	h, err := rules.New(rs, rules.Options{
		Notify: func(thing, other *things.Thing, callback string) {
			fmt.Printf("callback %s: %v -> %v\n", callback, thing, other)
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	if *validate {
		for _, group := range h.Groups() {
			fmt.Printf("%s: %v\n", group, h.GroupHitList(group))
		}
		if err := h.Validate(true); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("ok")
		return
	}

	if *a == "" || *b == "" {
		flag.Usage()
		os.Exit(2)
	}

	spec, err := prefabs.LoadRegistrySpec(*registryFile)
	if err != nil {
		log.Fatal(err)
	}
	reg, err := things.NewRegistry(spec.Types)
	if err != nil {
		log.Fatal(err)
	}
	thing, err := reg.New(*a, things.Box(0, 0, *size, *size))
	if err != nil {
		log.Fatal(err)
	}
	other, err := reg.New(*b, things.Box(*dx, *dy, *size, *size))
	if err != nil {
		log.Fatal(err)
	}

	test := h.TestPair
	if *react {
		test = h.TestAndReact
	}
	hit, err := test(thing, other)
	if err != nil {
		var missing *hittr.MissingDispatchError
		if errors.As(err, &missing) {
			fmt.Fprintf(os.Stderr, "no %s for %s (%s) -> %s (%s)\n",
				missing.Kind, missing.ThingType, missing.ThingGroup, missing.OtherType, missing.OtherGroup)
			os.Exit(1)
		}
		log.Fatal(err)
	}
	fmt.Printf("%v -> %v: hit=%t\n", thing, other, hit)
}
