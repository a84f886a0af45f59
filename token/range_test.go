package token

import "testing"

func TestRangeEmpty(t *testing.T) {
	if !(Range{Start: 3, End: 3}).Empty() {
		t.Error("zero-width range should be empty")
	}
	if (Range{Start: 3, End: 4}).Empty() {
		t.Error("one-byte range should not be empty")
	}
}

func TestRangeTouchesEmpty(t *testing.T) {
	r := Range{Start: 7, End: 7}
	if !r.Touches(7) {
		t.Error("empty range should touch its own offset")
	}
	if r.Contains(7) {
		t.Error("empty range contains nothing")
	}
}

func TestRangeUnionIgnoresEmpty(t *testing.T) {
	r := Range{Start: 10, End: 20}
	if got := r.Union(Range{}); got != r {
		t.Errorf("union with zero range = %v, want %v", got, r)
	}
	if got := (Range{}).Union(r); got != r {
		t.Errorf("zero range union = %v, want %v", got, r)
	}
	if got := r.Union(Range{Start: 5, End: 5}); got != r {
		t.Errorf("union with empty range = %v, want %v", got, r)
	}
}

func TestRangeString(t *testing.T) {
	if got := (Range{Start: 2, End: 5}).String(); got != "[2,5)" {
		t.Errorf("String() = %q", got)
	}
}
