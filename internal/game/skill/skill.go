// Package skill enumerates the trainable gathering skills.
package skill

import (
	"fmt"
	"strings"
)

// Skill identifies one trainable skill. The string value is the display name
// and the key used in save data.
type Skill string

const (
	Woodcutting Skill = "Woodcutting"
	Mining      Skill = "Mining"
	Fishing     Skill = "Fishing"
	Firemaking  Skill = "Firemaking"
)

// All returns every skill in display order.
//
// Postcondition: the returned slice is a fresh copy.
func All() []Skill {
	return []Skill{Woodcutting, Mining, Fishing, Firemaking}
}

// Valid reports whether s is one of the known skills.
func (s Skill) Valid() bool {
	switch s {
	case Woodcutting, Mining, Fishing, Firemaking:
		return true
	default:
		return false
	}
}

// String returns the display name.
func (s Skill) String() string {
	return string(s)
}

// Parse resolves a skill name case-insensitively.
//
// Postcondition: returns a valid Skill or a non-nil error.
func Parse(name string) (Skill, error) {
	trimmed := strings.TrimSpace(name)
	for _, s := range All() {
		if strings.EqualFold(trimmed, string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown skill %q", name)
}
