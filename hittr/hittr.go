// Package hittr decides which things may collide each frame and dispatches
// pair-specific hit checks and callbacks between them.
//
// Check and callback functions are produced by caller-supplied generators,
// one per group or group pair. Each generator runs at most once per distinct
// type (or type pair); the realized functions are cached for the lifetime of
// the Hittr.
//
// A Hittr is not safe for concurrent use. It is meant to be driven from a
// single simulation loop that calls EnsureType when a type is first seen and
// Scan once per thing per frame.
package hittr

import (
	"errors"
	"fmt"
	"sort"
)

// Hittr owns the generator tables, the group hit lists and the dispatch
// cache.
type Hittr struct {
	gens     Generators
	hitLists map[string][]string
	cache    *cache
}

// New builds a Hittr from gens. The tables are copied; later changes to
// gens have no effect.
func New(gens Generators) *Hittr {
	h := &Hittr{
		gens:  copyGenerators(gens),
		cache: newCache(),
	}
	h.hitLists = buildGroupHitLists(h.gens.HitChecks, h.gens.HitCheckOrder)
	return h
}

func copyGenerators(gens Generators) Generators {
	out := Generators{
		GlobalChecks:  make(map[string]GlobalCheckGenerator, len(gens.GlobalChecks)),
		HitChecks:     make(map[string]map[string]HitCheckGenerator, len(gens.HitChecks)),
		HitCallbacks:  make(map[string]map[string]HitCallbackGenerator, len(gens.HitCallbacks)),
		HitCheckOrder: make(map[string][]string, len(gens.HitCheckOrder)),
	}
	for group, gen := range gens.GlobalChecks {
		out.GlobalChecks[group] = gen
	}
	for group, row := range gens.HitChecks {
		copied := make(map[string]HitCheckGenerator, len(row))
		for other, gen := range row {
			copied[other] = gen
		}
		out.HitChecks[group] = copied
	}
	for group, row := range gens.HitCallbacks {
		copied := make(map[string]HitCallbackGenerator, len(row))
		for other, gen := range row {
			copied[other] = gen
		}
		out.HitCallbacks[group] = copied
	}
	for group, order := range gens.HitCheckOrder {
		out.HitCheckOrder[group] = append([]string(nil), order...)
	}
	return out
}

// Scan runs the collision scan for thing: every eligible candidate sharing
// a cell with thing, in a group thing's group is configured to hit, is
// checked and, on a hit, passed to the pair's callback.
//
// Pairs whose generators are missing are skipped here; use TestPair or
// Validate to surface them.
func (h *Hittr) Scan(thing Thing) {
	if thing == nil {
		return
	}
	h.hitsCheckFor(thing.HitType()).run(thing)
}

// TestPair runs the hit check between thing and other without applying
// global checks or firing callbacks. It returns a *MissingDispatchError when
// no hit check is configured for the pair's groups.
func (h *Hittr) TestPair(thing, other Thing) (bool, error) {
	if thing == nil || other == nil {
		return false, fmt.Errorf("hittr: test pair: nil thing")
	}
	check, err := h.resolveHitCheck(thing.HitType(), other.HitType(), thing.HitGroup(), other.HitGroup())
	if err != nil {
		return false, err
	}
	if check == nil {
		return false, nil
	}
	return check(thing, other), nil
}

// TestAndReact is TestPair followed by the pair's callback when the check
// passes. A missing callback generator is an error.
func (h *Hittr) TestAndReact(thing, other Thing) (bool, error) {
	hit, err := h.TestPair(thing, other)
	if err != nil || !hit {
		return hit, err
	}
	callback, err := h.resolveHitCallback(thing.HitType(), other.HitType(), thing.HitGroup(), other.HitGroup())
	if err != nil {
		return true, err
	}
	if callback != nil {
		callback(thing, other)
	}
	return true, nil
}

// GroupHitList returns the groups that group is checked against, in scan
// order.
func (h *Hittr) GroupHitList(group string) []string {
	return append([]string(nil), h.hitLists[group]...)
}

// Groups returns every group that has a hit list, sorted.
func (h *Hittr) Groups() []string {
	groups := make([]string, 0, len(h.hitLists))
	for group := range h.hitLists {
		groups = append(groups, group)
	}
	sort.Strings(groups)
	return groups
}

// Validate reports configuration gaps: hit list entries without a hit check
// generator, order entries naming unconfigured groups and, when
// callbacksRequired is set, hit checks without a matching callback.
func (h *Hittr) Validate(callbacksRequired bool) error {
	var errs []error
	for _, group := range h.Groups() {
		for _, other := range h.hitLists[group] {
			if h.gens.HitChecks[group][other] == nil {
				errs = append(errs, fmt.Errorf("hittr: %q lists %q without a hit check generator", group, other))
				continue
			}
			if callbacksRequired && h.gens.HitCallbacks[group][other] == nil {
				errs = append(errs, fmt.Errorf("hittr: %q against %q has no hit callback generator", group, other))
			}
		}
	}

	orderGroups := make([]string, 0, len(h.gens.HitCheckOrder))
	for group := range h.gens.HitCheckOrder {
		orderGroups = append(orderGroups, group)
	}
	sort.Strings(orderGroups)
	for _, group := range orderGroups {
		for _, other := range h.gens.HitCheckOrder[group] {
			if _, ok := h.gens.HitChecks[group][other]; !ok {
				errs = append(errs, fmt.Errorf("hittr: order for %q names unconfigured group %q", group, other))
			}
		}
	}
	return errors.Join(errs...)
}
