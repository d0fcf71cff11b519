package store

import (
	"sort"
)

// Snapshot is an immutable copy of the value at a path
type Snapshot struct {
	path  string
	value any
}

// NewSnapshot wraps a canonical value read at path. The value must not be
// mutated afterwards.
func NewSnapshot(path string, value any) Snapshot {
	return Snapshot{path: path, value: value}
}

// Path returns the path the snapshot was taken at
func (s Snapshot) Path() string {
	return s.path
}

// Exists reports whether any value is present
func (s Snapshot) Exists() bool {
	return s.value != nil
}

// Value returns a deep copy of the raw value
func (s Snapshot) Value() any {
	return Clone(s.value)
}

// String returns the value as a string, or "" if it is not one
func (s Snapshot) String() string {
	str, _ := s.value.(string)
	return str
}

// Bool returns the value as a bool, or false if it is not one
func (s Snapshot) Bool() bool {
	b, _ := s.value.(bool)
	return b
}

// Int returns the value as an int64, or 0 if it is not an integer
func (s Snapshot) Int() int64 {
	n, _ := s.value.(int64)
	return n
}

// Child returns a snapshot of a direct child
func (s Snapshot) Child(name string) Snapshot {
	m, _ := s.value.(map[string]any)
	return Snapshot{path: s.path + "/" + name, value: m[name]}
}

// Keys returns the sorted child names
func (s Snapshot) Keys() []string {
	m, _ := s.value.(map[string]any)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
