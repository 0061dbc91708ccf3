package hittr

const (
	kindHitCheck    = "hit check"
	kindHitCallback = "hit callback"
)

// Stats counts generator invocations and cached entries.
type Stats struct {
	GlobalCheckGenerations int
	HitCheckGenerations    int
	HitCallbackGenerations int
	HitsCheckSyntheses     int

	CachedGlobalChecks int
	CachedHitsChecks   int
	CachedHitChecks    int
	CachedHitCallbacks int
}

// cache holds every realized function, keyed by type name. Entries are
// populated on first use and never evicted.
type cache struct {
	globalChecks map[string]GlobalCheck
	hitsChecks   map[string]*hitsCheck
	hitChecks    map[string]map[string]HitCheck
	hitCallbacks map[string]map[string]HitCallback

	stats Stats
}

func newCache() *cache {
	return &cache{
		globalChecks: make(map[string]GlobalCheck),
		hitsChecks:   make(map[string]*hitsCheck),
		hitChecks:    make(map[string]map[string]HitCheck),
		hitCallbacks: make(map[string]map[string]HitCallback),
	}
}

func (c *cache) hitCheckRow(thingType string) map[string]HitCheck {
	row, ok := c.hitChecks[thingType]
	if !ok {
		row = make(map[string]HitCheck)
		c.hitChecks[thingType] = row
	}
	return row
}

func (c *cache) hitCallbackRow(thingType string) map[string]HitCallback {
	row, ok := c.hitCallbacks[thingType]
	if !ok {
		row = make(map[string]HitCallback)
		c.hitCallbacks[thingType] = row
	}
	return row
}

// EnsureType caches the global check and hits check for typeName the first
// time it is seen. Groups without a global check generator are skipped;
// their types get a hits check lazily on first Scan.
func (h *Hittr) EnsureType(typeName, groupName string) {
	if _, ok := h.cache.globalChecks[typeName]; ok {
		return
	}
	gen := h.gens.GlobalChecks[groupName]
	if gen == nil {
		return
	}

	check := gen()
	h.cache.stats.GlobalCheckGenerations++
	h.cache.globalChecks[typeName] = check
	h.hitsCheckFor(typeName)
}

// HasGlobalCheck reports whether a global check is cached for typeName.
func (h *Hittr) HasGlobalCheck(typeName string) bool {
	_, ok := h.cache.globalChecks[typeName]
	return ok
}

func (h *Hittr) eligible(thing Thing) bool {
	check, ok := h.cache.globalChecks[thing.HitType()]
	return !ok || check == nil || check(thing)
}

func (h *Hittr) resolveHitCheck(thingType, otherType, thingGroup, otherGroup string) (HitCheck, error) {
	row := h.cache.hitCheckRow(thingType)
	if check, ok := row[otherType]; ok {
		return check, nil
	}

	gen := h.gens.HitChecks[thingGroup][otherGroup]
	if gen == nil {
		return nil, &MissingDispatchError{
			Kind:       kindHitCheck,
			ThingType:  thingType,
			OtherType:  otherType,
			ThingGroup: thingGroup,
			OtherGroup: otherGroup,
		}
	}

	check := gen()
	h.cache.stats.HitCheckGenerations++
	row[otherType] = check
	return check, nil
}

func (h *Hittr) resolveHitCallback(thingType, otherType, thingGroup, otherGroup string) (HitCallback, error) {
	row := h.cache.hitCallbackRow(thingType)
	if callback, ok := row[otherType]; ok {
		return callback, nil
	}

	gen := h.gens.HitCallbacks[thingGroup][otherGroup]
	if gen == nil {
		return nil, &MissingDispatchError{
			Kind:       kindHitCallback,
			ThingType:  thingType,
			OtherType:  otherType,
			ThingGroup: thingGroup,
			OtherGroup: otherGroup,
		}
	}

	callback := gen()
	h.cache.stats.HitCallbackGenerations++
	row[otherType] = callback
	return callback, nil
}

// Stats returns a snapshot of generator invocation counts and cache sizes.
func (h *Hittr) Stats() Stats {
	s := h.cache.stats
	s.CachedGlobalChecks = len(h.cache.globalChecks)
	s.CachedHitsChecks = len(h.cache.hitsChecks)
	for _, row := range h.cache.hitChecks {
		s.CachedHitChecks += len(row)
	}
	for _, row := range h.cache.hitCallbacks {
		s.CachedHitCallbacks += len(row)
	}
	return s
}
