package domain

import (
	"maps"
	"slices"
)

// IDSet is an unordered set of genre IDs.
// Iteration helpers always return ascending order so traversals are deterministic.
type IDSet map[int]struct{}

// NewIDSet creates a set from the given IDs, dropping duplicates.
func NewIDSet(ids ...int) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s IDSet) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id into the set.
func (s IDSet) Add(id int) {
	s[id] = struct{}{}
}

// Remove deletes id from the set.
func (s IDSet) Remove(id int) {
	delete(s, id)
}

// Len returns the number of IDs in the set.
func (s IDSet) Len() int {
	return len(s)
}

// Sorted returns the IDs in ascending order. A nil or empty set yields an empty slice.
func (s IDSet) Sorted() []int {
	if len(s) == 0 {
		return []int{}
	}
	return slices.Sorted(maps.Keys(s))
}

// Clone returns an independent copy of the set.
func (s IDSet) Clone() IDSet {
	c := make(IDSet, len(s))
	maps.Copy(c, s)
	return c
}

// Equal reports whether both sets hold exactly the same IDs.
func (s IDSet) Equal(other IDSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// FirstShared returns the smallest ID present in both sets.
func (s IDSet) FirstShared(other IDSet) (int, bool) {
	for _, id := range s.Sorted() {
		if other.Has(id) {
			return id, true
		}
	}
	return 0, false
}
