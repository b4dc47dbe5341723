package suggest

import (
	"fmt"

	"github.com/jonathan/resume-editor/internal/types"
)

// Set is an ordered, immutable list of candidate descriptions.
type Set struct {
	items []string
}

// NewSet builds a set from candidates, copying them.
func NewSet(candidates ...string) Set {
	if len(candidates) == 0 {
		return Set{}
	}
	return Set{items: append([]string(nil), candidates...)}
}

// Len returns the number of candidates.
func (s Set) Len() int { return len(s.items) }

// Empty reports whether the set has no candidates.
func (s Set) Empty() bool { return len(s.items) == 0 }

// At returns the i-th candidate.
func (s Set) At(i int) (string, bool) {
	if i < 0 || i >= len(s.items) {
		return "", false
	}
	return s.items[i], true
}

// Candidates returns a copy of the candidates in order.
func (s Set) Candidates() []string {
	return append([]string{}, s.items...)
}

// Accept copies the i-th candidate into a copy of rec's description and returns it
// with an empty set. rec itself is not modified.
func Accept(rec types.Record, set Set, i int) (types.Record, Set, error) {
	candidate, ok := set.At(i)
	if !ok {
		return rec, set, fmt.Errorf("%w: %d of %d", ErrNoSuchCandidate, i, set.Len())
	}
	out := rec.Clone()
	if out == nil {
		out = types.Record{}
	}
	out[types.FieldDescription] = candidate
	return out, Set{}, nil
}
