// Package rules turns a rules spec into hittr generator tables. Checks and
// callbacks are named in YAML: either a built-in (overlap, bounce, ...) or
// a tengo script ("script:name.tengo"). Callbacks may be chained with "+".
package rules

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/milk9111/thinghittr/hittr"
	"github.com/milk9111/thinghittr/prefabs"
	"github.com/milk9111/thinghittr/things"
)

var ErrUnknownRule = errors.New("rules: unknown rule")

// Options tweak the generated functions.
type Options struct {
	// Notify, if set, runs after every callback with the callback's name.
	Notify func(thing, other *things.Thing, callback string)
}

// Build compiles spec into generator tables. Every name is resolved and
// every script compiled here, so configuration mistakes surface before the
// first frame.
func Build(spec *prefabs.RulesSpec, opts Options) (hittr.Generators, error) {
	gens := hittr.Generators{
		GlobalChecks:  map[string]hittr.GlobalCheckGenerator{},
		HitChecks:     map[string]map[string]hittr.HitCheckGenerator{},
		HitCallbacks:  map[string]map[string]hittr.HitCallbackGenerator{},
		HitCheckOrder: map[string][]string{},
	}
	if spec == nil {
		return gens, fmt.Errorf("rules: nil spec")
	}
	if err := spec.Validate(); err != nil {
		return gens, err
	}

	var errs []error
	for _, group := range sortedKeys(spec.GlobalChecks) {
		name := spec.GlobalChecks[group]
		maker, ok := globalRegistry[name]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: global check %q for %s", ErrUnknownRule, name, group))
			continue
		}
		gens.GlobalChecks[group] = func() hittr.GlobalCheck { return maker() }
	}

	for _, group := range sortedKeys(spec.HitChecks) {
		pairs := spec.HitChecks[group]
		checks := make(map[string]hittr.HitCheckGenerator, len(pairs))
		callbacks := make(map[string]hittr.HitCallbackGenerator, len(pairs))
		order := make([]string, 0, len(pairs))
		for _, pair := range pairs {
			order = append(order, pair.With)

			check, err := checkGenerator(pair)
			if err != nil {
				errs = append(errs, fmt.Errorf("rules: %s -> %s: %w", group, pair.With, err))
				continue
			}
			checks[pair.With] = check

			if strings.TrimSpace(pair.Callback) == "" {
				continue
			}
			callback, err := callbackGenerator(pair, opts)
			if err != nil {
				errs = append(errs, fmt.Errorf("rules: %s -> %s: %w", group, pair.With, err))
				continue
			}
			callbacks[pair.With] = callback
		}
		gens.HitChecks[group] = checks
		gens.HitCallbacks[group] = callbacks
		gens.HitCheckOrder[group] = order
	}

	return gens, errors.Join(errs...)
}

// New builds the generator tables and a Hittr from them.
func New(spec *prefabs.RulesSpec, opts Options) (*hittr.Hittr, error) {
	gens, err := Build(spec, opts)
	if err != nil {
		return nil, err
	}
	return hittr.New(gens), nil
}

func checkGenerator(pair prefabs.PairRuleSpec) (hittr.HitCheckGenerator, error) {
	name := strings.TrimSpace(pair.Check)
	if isScript(name) {
		compiled, err := compileScript(name, pair.Params)
		if err != nil {
			return nil, err
		}
		return scriptCheckGenerator(name, compiled), nil
	}

	maker, ok := checkRegistry[name]
	if !ok {
		return nil, fmt.Errorf("%w: hit check %q", ErrUnknownRule, name)
	}
	// Params are decoded here so bad params fail the build.
	if _, err := maker(pair.Params); err != nil {
		return nil, fmt.Errorf("hit check %q params: %w", name, err)
	}
	params := pair.Params
	return func() hittr.HitCheck {
		check, _ := maker(params)
		return check
	}, nil
}

func callbackGenerator(pair prefabs.PairRuleSpec, opts Options) (hittr.HitCallbackGenerator, error) {
	parts := strings.Split(pair.Callback, "+")
	gens := make([]hittr.HitCallbackGenerator, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if isScript(name) {
			compiled, err := compileScript(name, pair.Params)
			if err != nil {
				return nil, err
			}
			gens = append(gens, scriptCallbackGenerator(name, compiled))
			continue
		}

		maker, ok := callbackRegistry[name]
		if !ok {
			return nil, fmt.Errorf("%w: hit callback %q", ErrUnknownRule, name)
		}
		if _, err := maker(pair.Params); err != nil {
			return nil, fmt.Errorf("hit callback %q params: %w", name, err)
		}
		params := pair.Params
		gens = append(gens, func() hittr.HitCallback {
			callback, _ := maker(params)
			return callback
		})
	}

	label := strings.TrimSpace(pair.Callback)
	notify := opts.Notify
	return func() hittr.HitCallback {
		callbacks := make([]hittr.HitCallback, 0, len(gens))
		for _, gen := range gens {
			callbacks = append(callbacks, gen())
		}
		return func(thing, other hittr.Thing) {
			for _, callback := range callbacks {
				callback(thing, other)
			}
			if notify == nil {
				return
			}
			a, aok := thing.(*things.Thing)
			b, bok := other.(*things.Thing)
			if aok && bok {
				notify(a, b, label)
			}
		}
	}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
