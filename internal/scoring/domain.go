package scoring

import (
	"math"
	"sort"
)

// Validate checks that the set is non-empty and has no repeated categories.
func (cs CategorySet) Validate() error {
	if len(cs) == 0 {
		return &ValidationError{Kind: ErrEmptyCategorySet}
	}
	seen := make(map[Category]struct{}, len(cs))
	for _, c := range cs {
		if _, dup := seen[c]; dup {
			return &ValidationError{Kind: ErrDuplicateCategory, Category: c}
		}
		seen[c] = struct{}{}
	}
	return nil
}

// Contains reports whether c is in the set.
func (cs CategorySet) Contains(c Category) bool {
	for _, x := range cs {
		if x == c {
			return true
		}
	}
	return false
}

// checkDomain requires the keys of m to equal the category set exactly.
// The set itself must already be valid.
func checkDomain(cs CategorySet, vector string, m map[Category]float64) error {
	for _, c := range cs {
		if _, ok := m[c]; !ok {
			return &ValidationError{Kind: ErrMissingCategory, Vector: vector, Category: c}
		}
	}
	if len(m) == len(cs) {
		return nil
	}

	// report the lexically first stray key so the error is stable
	extra := make([]string, 0, len(m)-len(cs))
	for k := range m {
		if !cs.Contains(k) {
			extra = append(extra, string(k))
		}
	}
	sort.Strings(extra)
	return &ValidationError{Kind: ErrUnknownCategory, Vector: vector, Category: Category(extra[0])}
}

// checkFinite rejects NaN and infinities; finite out-of-range scores pass.
func checkFinite(cs CategorySet, vector string, m map[Category]float64) error {
	for _, c := range cs {
		if v := m[c]; math.IsNaN(v) || math.IsInf(v, 0) {
			return &ValidationError{Kind: ErrInvalidScore, Vector: vector, Category: c, Value: v}
		}
	}
	return nil
}
