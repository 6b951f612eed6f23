package model

import (
	"bytes"
	"encoding/json"
)

// Snapshots is the embedded phlebotomist history of a sample. It behaves as a
// set: two entries are equal when their canonical JSON encodings are equal.
type Snapshots []Phlebotomist

// Contains reports whether an entry equal to p is already present.
func (s Snapshots) Contains(p Phlebotomist) bool {
	want, err := canonical(p)
	if err != nil {
		return false
	}
	for _, e := range s {
		got, err := canonical(e)
		if err != nil {
			continue
		}
		if bytes.Equal(got, want) {
			return true
		}
	}
	return false
}

// AddIfAbsent appends p unless an equal entry exists. It returns the resulting
// set and whether p was added.
func (s Snapshots) AddIfAbsent(p Phlebotomist) (Snapshots, bool) {
	if s.Contains(p) {
		return s, false
	}
	return append(s, p), true
}

// json.Marshal sorts map keys, so attribute order never affects equality.
func canonical(p Phlebotomist) ([]byte, error) {
	return json.Marshal(p)
}
