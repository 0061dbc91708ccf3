package things

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jakecoffman/cp"
)

var (
	ErrUnknownType = errors.New("things: unknown type")
	ErrEmptyName   = errors.New("things: empty type or group name")
)

// Registry classifies every thing type into a group and hands out ids.
type Registry struct {
	groups map[string]string
	nextID int
}

// NewRegistry builds a registry from a type to group mapping.
func NewRegistry(types map[string]string) (*Registry, error) {
	r := &Registry{groups: make(map[string]string, len(types))}
	for typ, group := range types {
		if typ == "" || group == "" {
			return nil, fmt.Errorf("%w: %q -> %q", ErrEmptyName, typ, group)
		}
		r.groups[typ] = group
	}
	return r, nil
}

// GroupOf returns the group of typ.
func (r *Registry) GroupOf(typ string) (string, error) {
	group, ok := r.groups[typ]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	return group, nil
}

// Types returns every registered type, sorted.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.groups))
	for typ := range r.groups {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

// New allocates a live thing of typ with the given box.
func (r *Registry) New(typ string, box cp.BB) (*Thing, error) {
	group, err := r.GroupOf(typ)
	if err != nil {
		return nil, err
	}
	r.nextID++
	return &Thing{
		ID:    r.nextID,
		Type:  typ,
		Group: group,
		Box:   box,
		Alive: true,
	}, nil
}
