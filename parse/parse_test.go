package parse

import (
	"strings"
	"testing"

	"github.com/yamlkit/yls/ir"
)

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	d, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return d
}

func TestParseScalars(t *testing.T) {
	d := mustParse(t, "a: 1\nb: true\nc: hello\nd: null\ne: 2.5\n")
	if len(d.Roots) != 1 {
		t.Fatalf("roots = %d", len(d.Roots))
	}
	root := d.Roots[0]
	if root.Kind != ir.MappingKind {
		t.Fatalf("root kind = %s", root.Kind)
	}
	a := ir.Get(root, "a")
	if a.Kind != ir.NumberKind || a.Int64 == nil || *a.Int64 != 1 {
		t.Errorf("a = %+v", a)
	}
	if b := ir.Get(root, "b"); b.Kind != ir.BoolKind || !b.Bool {
		t.Errorf("b = %+v", b)
	}
	if c := ir.Get(root, "c"); c.Kind != ir.StringKind || c.String != "hello" {
		t.Errorf("c = %+v", c)
	}
	if dd := ir.Get(root, "d"); dd.Kind != ir.NullKind {
		t.Errorf("d = %+v", dd)
	}
	if e := ir.Get(root, "e"); e.Kind != ir.NumberKind || e.Float64 == nil {
		t.Errorf("e = %+v", e)
	}
}

func TestParsePositions(t *testing.T) {
	src := "name: value\nnested:\n  inner: 42\n"
	d := mustParse(t, src)
	root := d.Roots[0]
	key := root.Fields[0]
	if got := src[key.Range.Start:key.Range.End]; got != "name" {
		t.Errorf("key range covers %q", got)
	}
	inner := ir.Get(ir.Get(root, "nested"), "inner")
	if got := src[inner.Range.Start:inner.Range.End]; got != "42" {
		t.Errorf("inner range covers %q", got)
	}
	// node lookup by offset: cursor inside "42"
	off := strings.Index(src, "42") + 1
	if hit := root.AtOffset(off); hit != inner {
		t.Errorf("AtOffset = %+v", hit)
	}
}

func TestParseSequence(t *testing.T) {
	d := mustParse(t, "- 1\n- two\n- [3, 4]\n")
	root := d.Roots[0]
	if root.Kind != ir.SequenceKind || len(root.Values) != 3 {
		t.Fatalf("root = %+v", root)
	}
	if root.Values[2].Kind != ir.SequenceKind {
		t.Errorf("flow sequence kind = %s", root.Values[2].Kind)
	}
	if root.Values[1].ParentField != "1" {
		t.Errorf("sequence parent field = %q", root.Values[1].ParentField)
	}
}

func TestDuplicateKeys(t *testing.T) {
	d := mustParse(t, "a: 1\nb: 2\na: 3\n")
	var dups []ir.Problem
	for _, p := range d.Problems {
		if p.Code == ir.CodeDuplicateKey {
			dups = append(dups, p)
		}
	}
	if len(dups) != 1 {
		t.Fatalf("duplicate problems = %+v", d.Problems)
	}
	if !strings.Contains(dups[0].Message, `"a"`) {
		t.Errorf("message = %q", dups[0].Message)
	}
	// the duplicate never aborts the parse
	for _, p := range d.Problems {
		if p.Code == ir.CodeParseError {
			t.Fatalf("parse aborted: %+v", p)
		}
	}
	if len(d.Roots) != 1 {
		t.Fatalf("roots = %d", len(d.Roots))
	}
	if b := ir.Get(d.Roots[0], "b"); b == nil || b.Number != "2" {
		t.Errorf("sibling key lost: %+v", b)
	}
}

func TestAnchorsAndAliases(t *testing.T) {
	d := mustParse(t, "base: &b\n  x: 1\nother: *b\n")
	root := d.Roots[0]
	other := ir.Get(root, "other")
	if other.Kind != ir.AliasKind {
		t.Fatalf("other kind = %s", other.Kind)
	}
	if other.Target == nil || other.Deref().Kind != ir.MappingKind {
		t.Errorf("alias target = %+v", other.Target)
	}
	if len(d.Problems) != 0 {
		t.Errorf("problems = %+v", d.Problems)
	}
}

func TestUnresolvedAlias(t *testing.T) {
	d := mustParse(t, "a: *missing\n")
	found := false
	for _, p := range d.Problems {
		if p.Code == ir.CodeUnresolvedAlias {
			found = true
		}
	}
	if !found {
		t.Errorf("no unresolved alias problem: %+v", d.Problems)
	}
}

func TestMultiDocument(t *testing.T) {
	src := "a: 1\n---\nb: 2\n"
	d := mustParse(t, src)
	if len(d.Roots) != 2 {
		t.Fatalf("roots = %d", len(d.Roots))
	}
	second := d.RootAt(strings.Index(src, "b:"))
	if second == nil || ir.Get(second, "b") == nil {
		t.Errorf("RootAt did not find second document")
	}
}

func TestParseError(t *testing.T) {
	d, err := Parse([]byte("a: [unclosed\n"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(d.Problems) == 0 || d.Problems[0].Code != ir.CodeParseError {
		t.Errorf("problems = %+v", d.Problems)
	}
}

func TestCustomTagPreserved(t *testing.T) {
	d := mustParse(t, "a: !vault secret\n")
	a := ir.Get(d.Roots[0], "a")
	if a.Tag != "!vault" {
		t.Errorf("tag = %q", a.Tag)
	}
}
