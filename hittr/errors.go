package hittr

import (
	"errors"
	"fmt"
)

var ErrMissingDispatch = errors.New("hittr: missing dispatch")

// MissingDispatchError is returned when a pair of types is explicitly
// resolved but no generator is configured for their groups.
type MissingDispatchError struct {
	// Kind is "hit check" or "hit callback".
	Kind       string
	ThingType  string
	OtherType  string
	ThingGroup string
	OtherGroup string
}

func (e *MissingDispatchError) Error() string {
	return fmt.Sprintf("hittr: no %s generator for %q (group %q) against %q (group %q)",
		e.Kind, e.ThingType, e.ThingGroup, e.OtherType, e.OtherGroup)
}

func (e *MissingDispatchError) Is(target error) bool {
	return target == ErrMissingDispatch
}
