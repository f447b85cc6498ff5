package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrNoMatch is returned when no candidate is close to the input.
var ErrNoMatch = errors.New("no matching target")

// ErrAmbiguous is returned when several candidates match equally well.
var ErrAmbiguous = errors.New("ambiguous target")

// ResolveTarget maps free text onto one of candidates. It tries, in order, a
// case-insensitive exact match, a unique prefix match, and the closest
// candidate within a length-scaled edit distance.
//
// Postcondition: returns a member of candidates, or an error wrapping
// ErrNoMatch or ErrAmbiguous that names the options.
func ResolveTarget(input string, candidates []string) (string, error) {
	in := normaliseInput(input)
	if in == "" {
		return "", fmt.Errorf("expected one of %s: %w", strings.Join(candidates, ", "), ErrNoMatch)
	}

	for _, c := range candidates {
		if normaliseInput(c) == in {
			return c, nil
		}
	}

	var prefixed []string
	for _, c := range candidates {
		if strings.HasPrefix(normaliseInput(c), in) {
			prefixed = append(prefixed, c)
		}
	}
	switch len(prefixed) {
	case 0:
	case 1:
		return prefixed[0], nil
	default:
		return "", fmt.Errorf("%q could mean %s: %w", input, strings.Join(prefixed, ", "), ErrAmbiguous)
	}

	best, bestDist := []string(nil), -1
	if len(in) >= 3 {
		for _, c := range candidates {
			norm := normaliseInput(c)
			dist := levenshtein.ComputeDistance(in, norm)
			if dist > levenshteinLimit(len(norm)) {
				continue
			}
			switch {
			case bestDist < 0 || dist < bestDist:
				best, bestDist = []string{c}, dist
			case dist == bestDist:
				best = append(best, c)
			}
		}
	}
	switch len(best) {
	case 0:
		return "", fmt.Errorf("%q matches nothing; try %s: %w", input, strings.Join(candidates, ", "), ErrNoMatch)
	case 1:
		return best[0], nil
	default:
		return "", fmt.Errorf("%q could mean %s: %w", input, strings.Join(best, ", "), ErrAmbiguous)
	}
}

func normaliseInput(s string) string {
	s = strings.ReplaceAll(strings.ToLower(s), "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
