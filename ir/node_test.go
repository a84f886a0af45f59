package ir

import (
	"testing"

	"github.com/yamlkit/yls/token"
)

func TestFromKeyValsGet(t *testing.T) {
	m := FromKeyVals([]KeyVal{
		{Key: FromString("a"), Val: FromInt(1)},
		{Key: FromString("b"), Val: FromBool(true)},
	})
	if m.Kind != MappingKind {
		t.Fatalf("kind = %s", m.Kind)
	}
	v := Get(m, "a")
	if v == nil || v.Int64 == nil || *v.Int64 != 1 {
		t.Errorf("Get(a) = %+v", v)
	}
	if Get(m, "zzz") != nil {
		t.Errorf("Get(zzz) should be nil")
	}
	if !m.Fields[0].IsKey {
		t.Errorf("key node not marked")
	}
	if m.Values[1].Parent != m || m.Values[1].ParentField != "b" {
		t.Errorf("parent back-ref wrong: %+v", m.Values[1])
	}
}

func TestPath(t *testing.T) {
	seq := FromSlice([]*Node{
		FromKeyVals([]KeyVal{{Key: FromString("name"), Val: FromString("x")}}),
	})
	root := FromKeyVals([]KeyVal{{Key: FromString("items"), Val: seq}})
	name := Get(Get(root, "items").Values[0], "name")
	if got := name.Path(); got != "$.items[0].name" {
		t.Errorf("path = %q", got)
	}
}

func TestAtOffset(t *testing.T) {
	// synthetic layout: root mapping spans [0,20), key "a" at [0,1),
	// value mapping [3,20) with key "b" [5,6) and value [8,10)
	inner := FromKeyVals([]KeyVal{{Key: FromString("b"), Val: FromInt(2)}})
	inner.Range = token.Range{Start: 3, End: 20}
	inner.Fields[0].Range = token.Range{Start: 5, End: 6}
	inner.Values[0].Range = token.Range{Start: 8, End: 10}
	root := FromKeyVals([]KeyVal{{Key: FromString("a"), Val: inner}})
	root.Range = token.Range{Start: 0, End: 20}
	root.Fields[0].Range = token.Range{Start: 0, End: 1}

	if got := root.AtOffset(9); got != inner.Values[0] {
		t.Errorf("AtOffset(9) = %+v", got)
	}
	if got := root.AtOffset(5); got != inner.Fields[0] {
		t.Errorf("AtOffset(5) = %+v", got)
	}
	if got := root.AtOffset(2); got != root {
		t.Errorf("AtOffset(2) = %+v", got)
	}
	if got := root.AtOffset(50); got != nil {
		t.Errorf("AtOffset(50) = %+v", got)
	}
}

func TestDeref(t *testing.T) {
	target := FromString("anchored")
	alias := &Node{Kind: AliasKind, AliasName: "x", Target: target}
	if alias.Deref() != target {
		t.Errorf("deref did not reach target")
	}
	dangling := &Node{Kind: AliasKind, AliasName: "y"}
	if dangling.Deref() != dangling {
		t.Errorf("unresolved alias should deref to itself")
	}
}

func TestToAny(t *testing.T) {
	m := FromKeyVals([]KeyVal{
		{Key: FromString("n"), Val: FromInt(3)},
		{Key: FromString("s"), Val: FromSlice([]*Node{FromBool(false), Null()})},
	})
	got := ToAny(m).(map[string]any)
	if got["n"] != int64(3) {
		t.Errorf("n = %v", got["n"])
	}
	s := got["s"].([]any)
	if s[0] != false || s[1] != nil {
		t.Errorf("s = %v", s)
	}
}

func TestScalarEqual(t *testing.T) {
	if !ScalarEqual(FromInt(2), FromFloat(2)) {
		// both numbers, equal value
		t.Errorf("2 != 2.0")
	}
	if ScalarEqual(FromString("2"), FromInt(2)) {
		t.Errorf("string 2 == number 2")
	}
}
