package hittr

import "reflect"

// hitsCheck is the per-type collision scan. The type name is bound when it
// is synthesized and never changes.
type hitsCheck struct {
	typeName string
	h        *Hittr
}

func (h *Hittr) synthesizeHitsCheck(typeName string) *hitsCheck {
	h.cache.stats.HitsCheckSyntheses++
	return &hitsCheck{typeName: typeName, h: h}
}

func (h *Hittr) hitsCheckFor(typeName string) *hitsCheck {
	hc, ok := h.cache.hitsChecks[typeName]
	if !ok {
		hc = h.synthesizeHitsCheck(typeName)
		h.cache.hitsChecks[typeName] = hc
	}
	return hc
}

// run scans every candidate sharing a cell with thing and fires callbacks
// for confirmed hits.
//
// Within a cell, members of a group are listed in the same order in every
// cell. When thing meets itself in its own group's list the scan stops:
// everything after it in that list will scan thing when its own turn comes.
func (hc *hitsCheck) run(thing Thing) {
	h := hc.h
	if check, ok := h.cache.globalChecks[hc.typeName]; ok && check != nil && !check(thing) {
		return
	}

	cells := thing.Cells()
	if len(cells) == 0 {
		return
	}
	byPointer := reflect.TypeOf(thing).Kind() == reflect.Pointer
	thingGroup := thing.HitGroup()
	groups := h.hitLists[thingGroup]
	if len(groups) == 0 {
		return
	}

	for _, cell := range cells {
		if cell == nil {
			continue
		}
		for _, otherGroup := range groups {
			if h.gens.HitChecks[thingGroup][otherGroup] == nil {
				continue
			}
			for _, other := range cell.Members(otherGroup) {
				if other == nil {
					continue
				}
				if byPointer && other == thing || !byPointer && sameThing(other, thing) {
					break
				}
				if !h.eligible(other) {
					continue
				}
				hc.checkPair(thing, other, thingGroup, otherGroup)
			}
		}
	}
}

func (hc *hitsCheck) checkPair(thing, other Thing, thingGroup, otherGroup string) {
	h := hc.h
	otherType := other.HitType()

	check, err := h.resolveHitCheck(hc.typeName, otherType, thingGroup, otherGroup)
	if err != nil || check == nil || !check(thing, other) {
		return
	}

	callback, err := h.resolveHitCallback(hc.typeName, otherType, thingGroup, otherGroup)
	if err != nil || callback == nil {
		return
	}
	callback(thing, other)
}

// sameThing compares things held by value. Values that cannot be compared
// with == are compared field by field.
func sameThing(a, b Thing) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
