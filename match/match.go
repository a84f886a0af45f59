// Package match computes which schema fragments apply to which nodes
// of a parsed document. It is synchronous and side-effect-free over an
// already resolved schema graph; all suspension (fetching, reference
// resolution) happens before a Match call.
package match

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/yamlkit/yls/debug"
	"github.com/yamlkit/yls/ir"
	"github.com/yamlkit/yls/schema"
	"github.com/yamlkit/yls/token"
)

// Annotation records one schema fragment applied to one node. Exact
// means the fragment accepted the node's whole subtree without
// problems.
type Annotation struct {
	Schema *schema.Schema
	Exact  bool
}

// Result is the outcome of matching one document root against one
// resolved root schema.
type Result struct {
	// ByNode lists every fragment applied to each node, in
	// application order.
	ByNode map[*ir.Node][]Annotation

	// Selected records the branch chosen at nodes where a union
	// forced a choice.
	Selected map[*ir.Node]*schema.Schema

	// Problems are the surfaced validation problems: the selected
	// branch's problems at unions, all branches' under allOf.
	Problems []ir.Problem
}

// Match applies res to the document tree rooted at root.
func Match(root *ir.Node, res *schema.Resolved) *Result {
	e := &evaluator{regexps: map[string]*regexp.Regexp{}}
	out := e.eval(root, res.Schema)
	return &Result{
		ByNode:   out.annots,
		Selected: out.selects,
		Problems: out.problems,
	}
}

// At returns the annotations recorded for n.
func (r *Result) At(n *ir.Node) []Annotation {
	return r.ByNode[n]
}

// SchemaFor returns the fragment governing n: the union-selected
// branch when one exists, otherwise the first exact annotation,
// otherwise the first annotation.
func (r *Result) SchemaFor(n *ir.Node) *schema.Schema {
	if s := r.Selected[n]; s != nil {
		return s
	}
	as := r.ByNode[n]
	for _, a := range as {
		if a.Exact {
			return a.Schema
		}
	}
	if len(as) > 0 {
		return as[0].Schema
	}
	return nil
}

type evaluator struct {
	regexps map[string]*regexp.Regexp
}

// outcome accumulates the effect of applying one schema fragment to
// one subtree. matched counts structural units the fragment accounted
// for (a typed scalar, a recognized mapping key, a covered sequence
// element) and feeds the union fitness score.
type outcome struct {
	problems []ir.Problem
	matched  int
	annots   map[*ir.Node][]Annotation
	selects  map[*ir.Node]*schema.Schema
}

func (o *outcome) add(code, msg string, sev ir.Severity, r token.Range) {
	o.problems = append(o.problems, ir.Problem{
		Code:     code,
		Message:  msg,
		Severity: sev,
		Range:    r,
	})
}

func (o *outcome) annotate(n *ir.Node, s *schema.Schema, exact bool) {
	if o.annots == nil {
		o.annots = map[*ir.Node][]Annotation{}
	}
	o.annots[n] = append(o.annots[n], Annotation{Schema: s, Exact: exact})
}

// selectBranch records a union choice for n. First choice wins so
// inner, more specific unions take precedence over enclosing ones.
func (o *outcome) selectBranch(n *ir.Node, s *schema.Schema) {
	if o.selects == nil {
		o.selects = map[*ir.Node]*schema.Schema{}
	}
	if _, ok := o.selects[n]; !ok {
		o.selects[n] = s
	}
}

func (o *outcome) merge(other outcome) {
	o.problems = append(o.problems, other.problems...)
	o.matched += other.matched
	for n, as := range other.annots {
		for _, a := range as {
			o.annotate(n, a.Schema, a.Exact)
		}
	}
	for n, s := range other.selects {
		o.selectBranch(n, s)
	}
}

// score is the union fitness: structural units accounted for, minus a
// penalty per problem. Type mismatches weigh double so a branch of the
// wrong shape loses to one merely missing optional detail.
func (o *outcome) score() int {
	res := o.matched
	for _, p := range o.problems {
		if p.Code == ir.CodeInvalidType {
			res -= 2
		} else {
			res--
		}
	}
	return res
}

func (o *outcome) exact() bool {
	return len(o.problems) == 0
}

func (e *evaluator) eval(n *ir.Node, s *schema.Schema) outcome {
	var out outcome
	if n == nil || s == nil {
		return out
	}
	n = n.Deref()
	if n.Kind == ir.AliasKind {
		// unresolved alias, already reported structurally
		return out
	}

	switch {
	case s.Circular:
		// cyclic branches always accept, so legitimately recursive
		// schemas do not produce false positives at the cut point
		out.matched++
		out.annotate(n, s, true)
		return out
	case s.ResolutionErr != nil:
		code := ir.CodeSchemaUnavailable
		if s.ResolutionErr.Dangling() {
			code = ir.CodeRefNotFound
		}
		out.add(code, s.ResolutionErr.Error(), ir.SeverityWarning, n.Range)
		out.annotate(n, s, false)
		return out
	}
	if s.Always != nil {
		if *s.Always {
			out.matched++
			out.annotate(n, s, true)
		} else {
			out.add(ir.CodeNotMatched, "schema accepts no value", ir.SeverityError, n.Range)
			out.annotate(n, s, false)
		}
		return out
	}

	out.merge(e.core(n, s))
	for _, b := range s.AllOf {
		out.merge(e.eval(n, b))
	}
	if s.Not != nil {
		neg := e.eval(n, s.Not)
		if neg.exact() {
			out.add(ir.CodeNotMatched, "value matches a disallowed schema", ir.SeverityError, n.Range)
		}
	}
	if len(s.AnyOf) > 0 {
		out.merge(e.union(n, s.AnyOf, false))
	}
	if len(s.OneOf) > 0 {
		out.merge(e.union(n, s.OneOf, true))
	}

	out.annotate(n, s, out.exact())
	return out
}

// union scores each branch independently against n and keeps the best,
// first declared winning ties. The rejected branches' problems are
// dropped; when no branch comes close they are summarized into a
// single diagnostic instead.
func (e *evaluator) union(n *ir.Node, branches []*schema.Schema, oneOf bool) outcome {
	outs := make([]outcome, len(branches))
	best, exactCount := 0, 0
	for i, b := range branches {
		outs[i] = e.eval(n, b)
		if outs[i].exact() {
			exactCount++
		}
		if outs[i].score() > outs[best].score() {
			best = i
		}
	}
	if debug.Match() {
		debug.Logf("match: union at %s: %d branches, best=%d score=%d exact=%d\n",
			n.Path(), len(branches), best, outs[best].score(), exactCount)
	}

	sel := outs[best]
	sel.selectBranch(n, branches[best])
	if oneOf && exactCount > 1 {
		sel.add(ir.CodeUnionAmbiguous,
			fmt.Sprintf("%d schemas match this value exactly, expected exactly one", exactCount),
			ir.SeverityWarning, n.Range)
		return sel
	}
	if exactCount == 0 {
		if msg, ok := noMatchSummary(n, branches, outs); ok {
			sel.problems = []ir.Problem{{
				Code:     ir.CodeUnionNoMatch,
				Message:  msg,
				Severity: ir.SeverityError,
				Range:    n.Range,
			}}
		}
	}
	return sel
}

// noMatchSummary collapses an all-branches-type-mismatch union into
// one diagnostic. It applies only when every branch failed solely on
// the node's type, so partial matches keep their specific problems.
func noMatchSummary(n *ir.Node, branches []*schema.Schema, outs []outcome) (string, bool) {
	if len(outs) == 0 {
		return "", false
	}
	for _, o := range outs {
		if len(o.problems) == 0 {
			return "", false
		}
		for _, p := range o.problems {
			if p.Code != ir.CodeInvalidType || p.Range != n.Range {
				return "", false
			}
		}
	}
	var expected []string
	seen := map[string]bool{}
	for _, b := range branches {
		for _, t := range b.TypeSet() {
			if !seen[t] {
				seen[t] = true
				expected = append(expected, t)
			}
		}
	}
	return fmt.Sprintf("%s matches no branch of the union, expected %s",
		typeName(n), orList(expected)), true
}

// core checks the non-composition keywords. A type mismatch returns
// early; deeper structural checks against a wrongly shaped node would
// only pile misleading problems onto the same finding.
func (e *evaluator) core(n *ir.Node, s *schema.Schema) outcome {
	var out outcome

	if types := s.TypeSet(); types != nil {
		if !typeAccepts(types, n) {
			out.add(ir.CodeInvalidType,
				fmt.Sprintf("expected %s, got %s", orList(types), typeName(n)),
				ir.SeverityError, n.Range)
			return out
		}
		out.matched++
	}

	if len(s.Enum) > 0 {
		v := ir.ToAny(n)
		found := false
		for _, allowed := range s.Enum {
			if anyEqual(v, allowed) {
				found = true
				break
			}
		}
		if !found {
			out.add(ir.CodeInvalidEnum,
				fmt.Sprintf("value must be one of %s", enumList(s.Enum)),
				ir.SeverityError, n.Range)
		}
	}
	if s.Const != nil && !anyEqual(ir.ToAny(n), *s.Const) {
		out.add(ir.CodeInvalidEnum,
			fmt.Sprintf("value must be %v", *s.Const),
			ir.SeverityError, n.Range)
	}
	if s.Deprecated {
		name := n.ParentField
		if name == "" {
			name = "value"
		}
		out.add(ir.CodeDeprecated, fmt.Sprintf("%s is deprecated", name),
			ir.SeverityInfo, n.Range)
	}

	switch n.Kind {
	case ir.StringKind:
		e.checkString(&out, n, s)
	case ir.NumberKind:
		checkNumber(&out, n, s)
	case ir.MappingKind:
		e.checkMapping(&out, n, s)
	case ir.SequenceKind:
		e.checkSequence(&out, n, s)
	}
	return out
}

func (e *evaluator) checkString(out *outcome, n *ir.Node, s *schema.Schema) {
	if s.Pattern != "" {
		if re := e.regexp(s.Pattern); re != nil && !re.MatchString(n.String) {
			out.add(ir.CodePattern,
				fmt.Sprintf("%q does not match pattern %q", n.String, s.Pattern),
				ir.SeverityError, n.Range)
		}
	}
	length := utf8.RuneCountInString(n.String)
	if s.MinLength != nil && length < *s.MinLength {
		out.add(ir.CodeTooShort,
			fmt.Sprintf("string is shorter than %d characters", *s.MinLength),
			ir.SeverityError, n.Range)
	}
	if s.MaxLength != nil && length > *s.MaxLength {
		out.add(ir.CodeTooLong,
			fmt.Sprintf("string is longer than %d characters", *s.MaxLength),
			ir.SeverityError, n.Range)
	}
}

func checkNumber(out *outcome, n *ir.Node, s *schema.Schema) {
	v := n.Float()
	if s.Minimum != nil && v < *s.Minimum {
		out.add(ir.CodeTooSmall,
			fmt.Sprintf("value is below minimum %v", *s.Minimum),
			ir.SeverityError, n.Range)
	}
	if s.ExclusiveMinimum != nil && v <= *s.ExclusiveMinimum {
		out.add(ir.CodeTooSmall,
			fmt.Sprintf("value must be above %v", *s.ExclusiveMinimum),
			ir.SeverityError, n.Range)
	}
	if s.Maximum != nil && v > *s.Maximum {
		out.add(ir.CodeTooBig,
			fmt.Sprintf("value is above maximum %v", *s.Maximum),
			ir.SeverityError, n.Range)
	}
	if s.ExclusiveMaximum != nil && v >= *s.ExclusiveMaximum {
		out.add(ir.CodeTooBig,
			fmt.Sprintf("value must be below %v", *s.ExclusiveMaximum),
			ir.SeverityError, n.Range)
	}
	if s.MultipleOf != nil && *s.MultipleOf != 0 {
		if rem := math.Mod(v, *s.MultipleOf); rem != 0 {
			out.add(ir.CodeMultipleOf,
				fmt.Sprintf("value is not a multiple of %v", *s.MultipleOf),
				ir.SeverityError, n.Range)
		}
	}
}

func (e *evaluator) checkMapping(out *outcome, n *ir.Node, s *schema.Schema) {
	var patterns []string
	for pat := range s.PatternProperties {
		patterns = append(patterns, pat)
	}
	sort.Strings(patterns)

	for i := range n.Fields {
		key, val := n.Fields[i], n.Values[i]
		if sub, ok := s.Properties[key.String]; ok {
			out.matched++
			out.merge(e.eval(val, sub))
			continue
		}
		covered := false
		for _, pat := range patterns {
			re := e.regexp(pat)
			if re == nil || !re.MatchString(key.String) {
				continue
			}
			covered = true
			out.matched++
			out.merge(e.eval(val, s.PatternProperties[pat]))
		}
		if covered {
			continue
		}
		if s.AdditionalProperties != nil {
			out.matched++
			out.merge(e.eval(val, s.AdditionalProperties))
			continue
		}
		if s.AdditionalPropertiesAllowed != nil && !*s.AdditionalPropertiesAllowed {
			out.add(ir.CodeUnknownKey,
				fmt.Sprintf("property %s is not allowed", key.String),
				ir.SeverityWarning, key.Range)
		}
	}

	for _, req := range s.Required {
		if ir.Get(n, req) == nil {
			out.add(ir.CodeRequired,
				fmt.Sprintf("missing required property %q", req),
				ir.SeverityError, n.Range)
		}
	}
	if s.MinProperties != nil && len(n.Fields) < *s.MinProperties {
		out.add(ir.CodeTooFewProps,
			fmt.Sprintf("object has fewer than %d properties", *s.MinProperties),
			ir.SeverityError, n.Range)
	}
	if s.MaxProperties != nil && len(n.Fields) > *s.MaxProperties {
		out.add(ir.CodeTooManyProps,
			fmt.Sprintf("object has more than %d properties", *s.MaxProperties),
			ir.SeverityError, n.Range)
	}
}

func (e *evaluator) checkSequence(out *outcome, n *ir.Node, s *schema.Schema) {
	switch {
	case s.Items != nil:
		for _, v := range n.Values {
			out.matched++
			out.merge(e.eval(v, s.Items))
		}
	case len(s.PrefixItems) > 0:
		for i, v := range n.Values {
			if i < len(s.PrefixItems) {
				out.matched++
				out.merge(e.eval(v, s.PrefixItems[i]))
				continue
			}
			if s.AdditionalItems != nil {
				out.matched++
				out.merge(e.eval(v, s.AdditionalItems))
				continue
			}
			if s.AdditionalItemsAllowed != nil && !*s.AdditionalItemsAllowed {
				out.add(ir.CodeTooManyItems,
					fmt.Sprintf("no schema for item %d, expected at most %d items",
						i, len(s.PrefixItems)),
					ir.SeverityError, v.Range)
			}
		}
	}
	if s.MinItems != nil && len(n.Values) < *s.MinItems {
		out.add(ir.CodeTooFewItems,
			fmt.Sprintf("array has fewer than %d items", *s.MinItems),
			ir.SeverityError, n.Range)
	}
	if s.MaxItems != nil && len(n.Values) > *s.MaxItems {
		out.add(ir.CodeTooManyItems,
			fmt.Sprintf("array has more than %d items", *s.MaxItems),
			ir.SeverityError, n.Range)
	}
}

// regexp compiles and caches pat. Invalid patterns cache as nil and
// constrain nothing rather than failing validation of the document.
func (e *evaluator) regexp(pat string) *regexp.Regexp {
	re, ok := e.regexps[pat]
	if !ok {
		re, _ = regexp.Compile(pat)
		e.regexps[pat] = re
	}
	return re
}

func typeAccepts(types []string, n *ir.Node) bool {
	for _, t := range types {
		if t == "integer" {
			if n.Kind == ir.NumberKind && n.Int64 != nil {
				return true
			}
			continue
		}
		if t == n.Kind.SchemaType() {
			return true
		}
	}
	return false
}

func typeName(n *ir.Node) string {
	if n.Kind == ir.NumberKind && n.Int64 != nil {
		return "integer"
	}
	return n.Kind.SchemaType()
}

// anyEqual compares lowered document values against schema-declared
// values, bridging the int64/float64 split between the two decoders.
func anyEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !anyEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !anyEqual(v, bvv) {
				return false
			}
		}
		return true
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

func orList(items []string) string {
	switch len(items) {
	case 0:
		return "nothing"
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " or " + items[len(items)-1]
}

func enumList(vals []any) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return strings.Join(parts, ", ")
}
