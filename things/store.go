package things

// Store keeps things keyed by id in a sparse set. Unlike a swap-remove
// sparse set, removal keeps the dense slice in insertion order so every
// frame places things in the same relative order.
type Store struct {
	dense  []*Thing
	sparse []int
}

// Has returns true if a thing with id is stored.
func (s *Store) Has(id int) bool {
	if s == nil || id <= 0 || id-1 >= len(s.sparse) {
		return false
	}
	idx := s.sparse[id-1]
	return idx >= 0 && idx < len(s.dense) && s.dense[idx].ID == id
}

// Get returns the thing for id, or nil.
func (s *Store) Get(id int) *Thing {
	if !s.Has(id) {
		return nil
	}
	return s.dense[s.sparse[id-1]]
}

// Set inserts or replaces a thing, keyed by its ID.
func (s *Store) Set(t *Thing) {
	if s == nil || t == nil || t.ID <= 0 {
		return
	}
	id := t.ID
	for id-1 >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	if s.Has(id) {
		s.dense[s.sparse[id-1]] = t
		return
	}
	s.dense = append(s.dense, t)
	s.sparse[id-1] = len(s.dense) - 1
}

// Remove deletes the thing for id if present.
func (s *Store) Remove(id int) {
	if s == nil || !s.Has(id) {
		return
	}
	idx := s.sparse[id-1]
	copy(s.dense[idx:], s.dense[idx+1:])
	s.dense[len(s.dense)-1] = nil
	s.dense = s.dense[:len(s.dense)-1]
	s.sparse[id-1] = -1
	for i := idx; i < len(s.dense); i++ {
		s.sparse[s.dense[i].ID-1] = i
	}
}

// Len returns the number of stored things.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.dense)
}

// Things returns the dense list in insertion order. The caller must not
// modify it.
func (s *Store) Things() []*Thing {
	if s == nil {
		return nil
	}
	return s.dense
}
