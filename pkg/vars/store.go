// Package vars holds the run-scoped variable store and the ${NAME}
// substitution applied to commands and templated file content.
//
// The store is global to one execution run: values captured by an action
// stay visible to every later action, across step boundaries, until the
// run ends. There is no per-step scoping and no deletion.
package vars

import "sort"

// Store is a run-scoped mapping of variable name to string value.
// Names are case-sensitive. The executor is strictly sequential, so the
// store needs no locking.
type Store struct {
	values map[string]string
}

// NewStore creates a store seeded with the given initial variables,
// typically from repeated --var flags.
func NewStore(initial map[string]string) *Store {
	values := make(map[string]string, len(initial))
	for name, value := range initial {
		values[name] = value
	}
	return &Store{values: values}
}

// Set stores a value, overwriting any previous value for the same name.
func (s *Store) Set(name, value string) {
	s.values[name] = value
}

// Get returns the stored value and whether the name is set.
func (s *Store) Get(name string) (string, bool) {
	value, ok := s.values[name]
	return value, ok
}

// Len returns the number of stored variables.
func (s *Store) Len() int {
	return len(s.values)
}

// Names returns the stored variable names in sorted order, for reporting.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
