package hittr

// Thing is anything that can be scanned for collisions. Type and group must
// stay the same for the lifetime of the thing.
//
// A scan recognizes the thing itself in a cell by pointer identity when the
// thing is a pointer, and by value otherwise.
type Thing interface {
	HitType() string
	HitGroup() string
	// Cells returns the spatial cells the thing currently occupies, in the
	// order the spatial index assigned them.
	Cells() []Cell
}

// Cell is a spatial partition unit that holds things grouped by group name.
type Cell interface {
	// Members returns the things of group inside the cell, or nil.
	// The caller must not modify the returned slice.
	Members(group string) []Thing
}

// GlobalCheck decides whether a thing takes part in collisions this frame.
type GlobalCheck func(thing Thing) bool

// HitCheck decides whether thing and other are colliding.
type HitCheck func(thing, other Thing) bool

// HitCallback reacts to a confirmed collision between thing and other.
type HitCallback func(thing, other Thing)

type (
	GlobalCheckGenerator func() GlobalCheck
	HitCheckGenerator    func() HitCheck
	HitCallbackGenerator func() HitCallback
)

// Generators holds the generator tables a Hittr is built from. Missing
// entries are legal and mean the feature is not used for that group or
// pair.
type Generators struct {
	// GlobalChecks is keyed by group.
	GlobalChecks map[string]GlobalCheckGenerator
	// HitChecks is keyed by thing group, then other group.
	HitChecks map[string]map[string]HitCheckGenerator
	// HitCallbacks is keyed by thing group, then other group.
	HitCallbacks map[string]map[string]HitCallbackGenerator

	// HitCheckOrder optionally fixes the order other groups are scanned in
	// for a group. Groups without an entry here are scanned in sorted order.
	HitCheckOrder map[string][]string
}
