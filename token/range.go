package token

import "fmt"

// Range is a half-open byte-offset span [Start, End).
type Range struct {
	Start int
	End   int
}

func (r Range) Empty() bool {
	return r.End <= r.Start
}

// Contains reports whether off falls within the span.
func (r Range) Contains(off int) bool {
	return off >= r.Start && off < r.End
}

// Touches is Contains with the end offset included, so a cursor
// sitting just past the last byte still addresses the span.
func (r Range) Touches(off int) bool {
	return off >= r.Start && off <= r.End
}

// Union widens r to cover other. Empty spans contribute nothing, so a
// zero-valued accumulator never drags a union toward offset 0.
func (r Range) Union(other Range) Range {
	if other.Empty() {
		return r
	}
	if r.Empty() {
		return other
	}
	if other.Start < r.Start {
		r.Start = other.Start
	}
	if other.End > r.End {
		r.End = other.End
	}
	return r
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}
