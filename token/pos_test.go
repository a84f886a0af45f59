package token

import "testing"

type lineColTest struct {
	off  int
	line int
	col  int
}

func TestLineCol(t *testing.T) {
	doc := NewPosDoc([]byte("abc\ndef\n\nxy"))
	tests := []lineColTest{
		{off: 0, line: 0, col: 0},
		{off: 2, line: 0, col: 2},
		{off: 4, line: 1, col: 0},
		{off: 6, line: 1, col: 2},
		{off: 8, line: 2, col: 0},
		{off: 9, line: 3, col: 0},
		{off: 10, line: 3, col: 1},
	}
	for _, tt := range tests {
		l, c := doc.LineCol(tt.off)
		if l != tt.line || c != tt.col {
			t.Errorf("LineCol(%d) = (%d,%d), want (%d,%d)", tt.off, l, c, tt.line, tt.col)
		}
	}
}

func TestOffsetRoundTrip(t *testing.T) {
	src := []byte("alpha: 1\nbeta:\n  gamma: true\n")
	doc := NewPosDoc(src)
	for off := 0; off < len(src); off++ {
		l, c := doc.LineCol(off)
		if got := doc.Offset(l, c); got != off {
			t.Fatalf("Offset(%d,%d) = %d, want %d", l, c, got, off)
		}
	}
}

func TestOffsetClamp(t *testing.T) {
	doc := NewPosDoc([]byte("ab\ncd"))
	if got := doc.Offset(0, 99); got != 2 {
		t.Errorf("Offset(0,99) = %d, want 2", got)
	}
	if got := doc.Offset(9, 0); got != 5 {
		t.Errorf("Offset(9,0) = %d, want 5", got)
	}
}

func TestLine(t *testing.T) {
	doc := NewPosDoc([]byte("ab\ncd\n"))
	if got := doc.Line(0); got != "ab" {
		t.Errorf("Line(0) = %q", got)
	}
	if got := doc.Line(1); got != "cd" {
		t.Errorf("Line(1) = %q", got)
	}
}

func TestRange(t *testing.T) {
	r := Range{Start: 2, End: 5}
	if !r.Contains(2) || r.Contains(5) || !r.Touches(5) {
		t.Errorf("range boundary behavior wrong: %v", r)
	}
	u := r.Union(Range{Start: 4, End: 9})
	if u.Start != 2 || u.End != 9 {
		t.Errorf("union = %v", u)
	}
}
