// Package dice provides the randomness abstraction and weighted selection used
// to resolve gathering outcomes.
package dice

import (
	"errors"
	"fmt"
)

// ErrNoWeight is returned when a weighted selection has no positive weight.
var ErrNoWeight = errors.New("dice: total weight must be > 0")

// Source is the randomness provider for outcome selection.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Float64 returns a uniformly distributed value in [0, 1).
	Float64() float64
}

// WeightedIndex picks an index of weights with probability proportional to
// its weight. A point r is drawn uniformly in [0, total) and the first index
// whose cumulative weight is >= r is returned.
//
// Precondition: src must be non-nil.
// Postcondition: the returned index refers to an entry with weight > 0, or
// ErrNoWeight is returned when no such entry exists.
func WeightedIndex(weights []float64, src Source) (int, error) {
	total := 0.0
	last := -1
	for i, w := range weights {
		if w > 0 {
			total += w
			last = i
		}
	}
	if last < 0 {
		return 0, fmt.Errorf("selecting from %d weights: %w", len(weights), ErrNoWeight)
	}

	r := src.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cumulative += w
		if r <= cumulative {
			return i, nil
		}
	}
	// Floating point drift can leave r a hair above the final cumulative sum.
	return last, nil
}
