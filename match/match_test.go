package match

import (
	"strings"
	"testing"

	"github.com/yamlkit/yls/ir"
	"github.com/yamlkit/yls/parse"
	"github.com/yamlkit/yls/schema"
)

func mustRoot(t *testing.T, src string) *ir.Node {
	t.Helper()
	doc, err := parse.Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Roots) != 1 {
		t.Fatalf("roots = %d", len(doc.Roots))
	}
	return doc.Roots[0]
}

func mustSchema(t *testing.T, content string) *schema.Resolved {
	t.Helper()
	doc, err := schema.ParseDocument("test://s", []byte(content))
	if err != nil {
		t.Fatal(err)
	}
	return &schema.Resolved{URI: doc.URI, Schema: doc.Schema}
}

func codes(problems []ir.Problem) []string {
	res := make([]string, len(problems))
	for i, p := range problems {
		res[i] = p.Code
	}
	return res
}

func TestAllOfUnionsProblems(t *testing.T) {
	res := Match(
		mustRoot(t, "c: 1\n"),
		mustSchema(t, `{"allOf": [{"required": ["a"]}, {"required": ["b"]}]}`),
	)
	if len(res.Problems) != 2 {
		t.Fatalf("problems = %v", res.Problems)
	}
	for _, p := range res.Problems {
		if p.Code != ir.CodeRequired {
			t.Errorf("code = %q", p.Code)
		}
	}
}

func TestOneOfSelectsMatchingBranch(t *testing.T) {
	root := mustRoot(t, "v: hello\n")
	res := Match(root, mustSchema(t,
		`{"properties": {"v": {"oneOf": [{"type": "string"}, {"type": "number"}]}}}`))
	if len(res.Problems) != 0 {
		t.Fatalf("problems = %v", res.Problems)
	}
	v := ir.Get(root, "v")
	sel := res.SchemaFor(v)
	if sel == nil || sel.Type != "string" {
		t.Errorf("selected = %+v", sel)
	}
}

func TestOneOfNoBranchCollapsesToOneDiagnostic(t *testing.T) {
	root := mustRoot(t, "v: true\n")
	res := Match(root, mustSchema(t,
		`{"properties": {"v": {"oneOf": [{"type": "string"}, {"type": "number"}]}}}`))
	if len(res.Problems) != 1 {
		t.Fatalf("problems = %v", res.Problems)
	}
	p := res.Problems[0]
	if p.Code != ir.CodeUnionNoMatch {
		t.Errorf("code = %q", p.Code)
	}
	if !strings.Contains(p.Message, "string") || !strings.Contains(p.Message, "number") {
		t.Errorf("message = %q", p.Message)
	}
	v := ir.Get(root, "v")
	if p.Range != v.Range {
		t.Errorf("range = %v, want %v", p.Range, v.Range)
	}
}

func TestOneOfAmbiguous(t *testing.T) {
	res := Match(
		mustRoot(t, "hello\n"),
		mustSchema(t, `{"oneOf": [{"type": "string"}, {"pattern": "^h"}]}`),
	)
	if len(res.Problems) != 1 || res.Problems[0].Code != ir.CodeUnionAmbiguous {
		t.Fatalf("problems = %v", res.Problems)
	}
	if res.Problems[0].Severity != ir.SeverityWarning {
		t.Errorf("severity = %v", res.Problems[0].Severity)
	}
}

func TestAnyOfSurfacesOnlyBestBranch(t *testing.T) {
	res := Match(
		mustRoot(t, "a: 1\n"),
		mustSchema(t, `{"anyOf": [
			{"type": "object", "properties": {"a": {"type": "integer"}, "b": {}}, "required": ["a", "b"]},
			{"type": "object", "properties": {"x": {}}, "required": ["x"]}
		]}`),
	)
	if len(res.Problems) != 1 {
		t.Fatalf("problems = %v", res.Problems)
	}
	p := res.Problems[0]
	if p.Code != ir.CodeRequired || !strings.Contains(p.Message, `"b"`) {
		t.Errorf("problem = %+v", p)
	}
}

func TestCircularBranchAccepts(t *testing.T) {
	s := &schema.Schema{
		Type: "object",
		Properties: map[string]*schema.Schema{
			"next": {Circular: true},
		},
	}
	root := mustRoot(t, "next:\n  next: 1\n")
	res := Match(root, &schema.Resolved{URI: "test://rec", Schema: s})
	if len(res.Problems) != 0 {
		t.Fatalf("problems = %v", res.Problems)
	}
	next := ir.Get(root, "next")
	as := res.At(next)
	if len(as) != 1 || !as[0].Exact {
		t.Errorf("annotations = %+v", as)
	}
}

func TestPlaceholderYieldsWarning(t *testing.T) {
	s := &schema.Schema{
		Type: "object",
		Properties: map[string]*schema.Schema{
			"v": {ResolutionErr: &schema.ResolutionError{
				URI: "test://gone", Err: schema.ErrSchemaUnavailable,
			}},
		},
	}
	res := Match(mustRoot(t, "v: 1\n"), &schema.Resolved{Schema: s})
	if len(res.Problems) != 1 {
		t.Fatalf("problems = %v", res.Problems)
	}
	p := res.Problems[0]
	if p.Code != ir.CodeSchemaUnavailable || p.Severity != ir.SeverityWarning {
		t.Errorf("problem = %+v", p)
	}
}

func TestUnknownKeyWarning(t *testing.T) {
	root := mustRoot(t, "a: 1\nb: 2\n")
	res := Match(root, mustSchema(t,
		`{"type": "object", "properties": {"a": {}}, "additionalProperties": false}`))
	if len(res.Problems) != 1 {
		t.Fatalf("problems = %v", res.Problems)
	}
	p := res.Problems[0]
	if p.Code != ir.CodeUnknownKey || p.Severity != ir.SeverityWarning {
		t.Errorf("problem = %+v", p)
	}
	b := root.Fields[1]
	if p.Range != b.Range {
		t.Errorf("range = %v, want key range %v", p.Range, b.Range)
	}
}

func TestUnknownKeyWithoutProperties(t *testing.T) {
	root := mustRoot(t, "a: 1\nb: 2\n")
	res := Match(root, mustSchema(t, `{"additionalProperties": false}`))
	if got := codes(res.Problems); len(got) != 2 {
		t.Fatalf("problems = %v", res.Problems)
	}
	for i, p := range res.Problems {
		if p.Code != ir.CodeUnknownKey {
			t.Errorf("problem = %+v", p)
		}
		if p.Range != root.Fields[i].Range {
			t.Errorf("range = %v, want key range %v", p.Range, root.Fields[i].Range)
		}
	}
}

func TestDeprecatedIsInformational(t *testing.T) {
	res := Match(
		mustRoot(t, "old: 1\n"),
		mustSchema(t, `{"properties": {"old": {"deprecated": true}}}`),
	)
	if len(res.Problems) != 1 {
		t.Fatalf("problems = %v", res.Problems)
	}
	p := res.Problems[0]
	if p.Code != ir.CodeDeprecated || p.Severity != ir.SeverityInfo {
		t.Errorf("problem = %+v", p)
	}
	if p.Message != "old is deprecated" {
		t.Errorf("message = %q", p.Message)
	}
}

func TestScalarConstraints(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		doc    string
		want   []string
	}{
		{"minLength", `{"type": "string", "minLength": 5}`, "hi\n", []string{ir.CodeTooShort}},
		{"maxLength", `{"maxLength": 2}`, "hello\n", []string{ir.CodeTooLong}},
		{"pattern", `{"pattern": "^[a-z]+$"}`, "Hello\n", []string{ir.CodePattern}},
		{"enum", `{"enum": ["a", "b"]}`, "c\n", []string{ir.CodeInvalidEnum}},
		{"const", `{"const": 3}`, "4\n", []string{ir.CodeInvalidEnum}},
		{"constOK", `{"const": 3}`, "3\n", nil},
		{"minimum", `{"minimum": 2}`, "1\n", []string{ir.CodeTooSmall}},
		{"maximum", `{"maximum": 3}`, "5\n", []string{ir.CodeTooBig}},
		{"exclusive", `{"exclusiveMinimum": 2}`, "2\n", []string{ir.CodeTooSmall}},
		{"multipleOf", `{"multipleOf": 2}`, "3\n", []string{ir.CodeMultipleOf}},
		{"integerRejectsFloat", `{"type": "integer"}`, "3.5\n", []string{ir.CodeInvalidType}},
		{"numberAcceptsInteger", `{"type": "number"}`, "3\n", nil},
		{"typeList", `{"type": ["string", "null"]}`, "null\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Match(mustRoot(t, tt.doc), mustSchema(t, tt.schema))
			got := codes(res.Problems)
			if len(got) != len(tt.want) {
				t.Fatalf("codes = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("codes = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestSequenceItems(t *testing.T) {
	res := Match(
		mustRoot(t, "- a\n- 2\n"),
		mustSchema(t, `{"type": "array", "items": {"type": "string"}}`),
	)
	if got := codes(res.Problems); len(got) != 1 || got[0] != ir.CodeInvalidType {
		t.Fatalf("codes = %v", got)
	}
}

func TestPositionalItemsOverflow(t *testing.T) {
	root := mustRoot(t, "- a\n- 2\n- x\n")
	res := Match(root, mustSchema(t,
		`{"items": [{"type": "string"}, {"type": "number"}], "additionalItems": false}`))
	if len(res.Problems) != 1 {
		t.Fatalf("problems = %v", res.Problems)
	}
	p := res.Problems[0]
	if p.Code != ir.CodeTooManyItems {
		t.Errorf("code = %q", p.Code)
	}
	if p.Range != root.Values[2].Range {
		t.Errorf("range = %v, want %v", p.Range, root.Values[2].Range)
	}
}

func TestPatternProperties(t *testing.T) {
	root := mustRoot(t, "x-trace: verbose\nplain: 1\n")
	res := Match(root, mustSchema(t, `{
		"type": "object",
		"properties": {"plain": {"type": "number"}},
		"patternProperties": {"^x-": {"type": "string"}},
		"additionalProperties": false
	}`))
	if len(res.Problems) != 0 {
		t.Fatalf("problems = %v", res.Problems)
	}
}

func TestNotRejectsMatch(t *testing.T) {
	res := Match(
		mustRoot(t, "hello\n"),
		mustSchema(t, `{"not": {"type": "string"}}`),
	)
	if got := codes(res.Problems); len(got) != 1 || got[0] != ir.CodeNotMatched {
		t.Fatalf("codes = %v", got)
	}
}

func TestTypeMismatchPenalizedAboveMissingProperty(t *testing.T) {
	// with one branch of the right shape missing a property and one of
	// the wrong shape, the right shape wins even though both have one
	// problem each
	root := mustRoot(t, "a: 1\n")
	res := Match(root, mustSchema(t, `{"anyOf": [
		{"type": "string"},
		{"type": "object", "required": ["b"]}
	]}`))
	if got := codes(res.Problems); len(got) != 1 || got[0] != ir.CodeRequired {
		t.Fatalf("codes = %v", got)
	}
}
