// Package nameset provides an unordered set of component names that
// serializes as a sorted JSON or YAML array.
package nameset

import (
	"encoding/json"
	"slices"
)

// Set is a set of component names. The zero value is an empty set ready to use
// for reads; use [New] or [Set.Add] on a non-nil set for writes.
type Set map[string]struct{}

// New returns a set containing names.
func New(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Add inserts names into s.
func (s Set) Add(names ...string) {
	for _, n := range names {
		s[n] = struct{}{}
	}
}

// Has reports whether name is in s.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of names in s.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the names in s in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Clone returns a copy of s. Cloning a nil set yields an empty, non-nil set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for n := range s {
		out[n] = struct{}{}
	}
	return out
}

// Union returns a new set with the names of s and other.
func (s Set) Union(other Set) Set {
	out := s.Clone()
	for n := range other {
		out[n] = struct{}{}
	}
	return out
}

// Intersect returns a new set with the names present in both s and other.
func (s Set) Intersect(other Set) Set {
	out := make(Set)
	for n := range s {
		if other.Has(n) {
			out[n] = struct{}{}
		}
	}
	return out
}

// Minus returns a new set with the names of s that are not in other.
func (s Set) Minus(other Set) Set {
	out := make(Set)
	for n := range s {
		if !other.Has(n) {
			out[n] = struct{}{}
		}
	}
	return out
}

// Equal reports whether s and other contain the same names.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for n := range s {
		if !other.Has(n) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as a sorted array. A nil set encodes as [].
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of names. Duplicates collapse.
func (s *Set) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*s = New(names...)
	return nil
}

// MarshalYAML encodes the set as a sorted sequence.
func (s Set) MarshalYAML() (any, error) {
	return s.Sorted(), nil
}
