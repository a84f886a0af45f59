package language

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/yamlkit/yls/debug"
	"github.com/yamlkit/yls/ir"
	"github.com/yamlkit/yls/match"
	"github.com/yamlkit/yls/parse"
	"github.com/yamlkit/yls/schema"
)

// CompletionItem is one suggestion at a cursor position. InsertText is
// plain text with indentation already applied; SortText orders items
// with exact-branch candidates first.
type CompletionItem struct {
	Label         string
	Detail        string
	Documentation string
	InsertText    string
	SortText      string
	IsProperty    bool
}

// Complete suggests property names or values at offset. The node under
// the cursor is usually incomplete, so suggestions come from the
// schemas matched against its parent.
func (s *Service) Complete(ctx context.Context, location string, doc *parse.Document, offset int) []CompletionItem {
	settings, ix, _ := s.snapshot()
	if !settings.Completion {
		return nil
	}

	root := doc.RootAt(offset)
	uris := s.candidateURIs(ix, location, doc.Source, root)
	resolved, _ := s.resolveCandidates(ctx, uris)
	if len(resolved) == 0 {
		return nil
	}

	cc := &completer{
		doc:    doc,
		offset: offset,
		unit:   settings.Indentation,
	}
	for _, r := range resolved {
		if root == nil {
			// empty document: offer the root schema's properties
			cc.properties(r.Schema, true, nil)
			continue
		}
		cc.fromMatch(root, match.Match(root, r))
	}
	return cc.finish()
}

type completer struct {
	doc    *parse.Document
	offset int
	unit   string
	items  []CompletionItem
	seq    int
}

func (cc *completer) fromMatch(root *ir.Node, res *match.Result) {
	node := root.AtOffset(cc.offset)
	if node == nil {
		node = root
	}

	switch {
	case node.Kind == ir.MappingKind:
		if val := cc.pendingValue(node); val != nil {
			cc.valueItems(res.SchemaFor(val), res.At(val))
			return
		}
		cc.keyItems(node, nil, res)
	case node.IsKey:
		// the key being typed does not exclude itself
		cc.keyItems(node.Parent, node, res)
	case node.Parent != nil && node.Parent.Kind == ir.SequenceKind:
		cc.itemItems(node.Parent, res)
	case node.Parent != nil && node.Parent.Kind == ir.MappingKind:
		cc.valueItems(res.SchemaFor(node), res.At(node))
	default:
		// scalar or empty root document
		cc.valueItems(res.SchemaFor(node), res.At(node))
	}
}

// pendingValue finds a pair whose value is still empty on the cursor's
// line, which makes the position a value context even though the
// deepest node at the offset is the enclosing mapping.
func (cc *completer) pendingValue(m *ir.Node) *ir.Node {
	line, _ := cc.doc.Pos.LineCol(cc.offset)
	for i, val := range m.Values {
		if val.Kind != ir.NullKind || !val.Range.Empty() {
			continue
		}
		keyLine, _ := cc.doc.Pos.LineCol(m.Fields[i].Range.Start)
		if keyLine == line && cc.offset >= m.Fields[i].Range.End {
			return val
		}
	}
	return nil
}

// keyItems offers property names for mapping m, skipping keys already
// present. typed is the partially written key under the cursor, if any.
func (cc *completer) keyItems(m *ir.Node, typed *ir.Node, res *match.Result) {
	if m == nil {
		return
	}
	present := map[string]bool{}
	for _, f := range m.Fields {
		if typed != nil && f == typed {
			continue
		}
		present[f.String] = true
	}
	for _, a := range res.At(m) {
		cc.properties(a.Schema, a.Exact, present)
	}
	if sel := res.Selected[m]; sel != nil {
		cc.properties(sel, true, present)
	}
}

func (cc *completer) properties(s *schema.Schema, exact bool, present map[string]bool) {
	if s == nil || len(s.Properties) == 0 {
		return
	}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		if !present[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		sub := s.Properties[name]
		cc.push(CompletionItem{
			Label:         name,
			Detail:        detailFor(sub),
			Documentation: docFor(sub),
			InsertText:    cc.propertyInsert(name, sub),
			IsProperty:    true,
		}, exact)
	}
}

// propertyInsert renders "name: " plus a skeleton appropriate to the
// property's own schema, nested one indentation unit below the
// cursor's current indent.
func (cc *completer) propertyInsert(name string, sub *schema.Schema) string {
	indent := cc.lineIndent() + cc.unit
	if sub == nil {
		return name + ": "
	}
	if sub.Default != nil {
		return fmt.Sprintf("%s: %s", name, literal(sub.Default))
	}
	switch {
	case typeIs(sub, "object"):
		return name + ":\n" + indent
	case typeIs(sub, "array"):
		return name + ":\n" + indent + "- "
	default:
		return name + ": "
	}
}

func (cc *completer) lineIndent() string {
	line, _ := cc.doc.Pos.LineCol(cc.offset)
	text := cc.doc.Pos.Line(line)
	for i := range len(text) {
		if text[i] != ' ' && text[i] != '\t' {
			return text[:i]
		}
	}
	return text
}

// valueItems offers literal values for a value position from enum,
// const, boolean type or default.
func (cc *completer) valueItems(sel *schema.Schema, annots []match.Annotation) {
	offer := func(s *schema.Schema, exact bool) {
		if s == nil {
			return
		}
		for _, v := range s.Enum {
			cc.push(CompletionItem{
				Label:         literal(v),
				Documentation: docFor(s),
				InsertText:    literal(v),
			}, exact)
		}
		if s.Const != nil {
			cc.push(CompletionItem{
				Label:      literal(*s.Const),
				InsertText: literal(*s.Const),
			}, exact)
		}
		if typeIs(s, "boolean") {
			cc.push(CompletionItem{Label: "true", InsertText: "true"}, exact)
			cc.push(CompletionItem{Label: "false", InsertText: "false"}, exact)
		}
		if s.Default != nil {
			cc.push(CompletionItem{
				Label:         literal(s.Default),
				Documentation: docFor(s),
				InsertText:    literal(s.Default),
			}, exact)
		}
	}
	offer(sel, true)
	for _, a := range annots {
		if a.Schema != sel {
			offer(a.Schema, a.Exact)
		}
	}
}

// itemItems offers values for a new sequence element.
func (cc *completer) itemItems(seq *ir.Node, res *match.Result) {
	for _, a := range res.At(seq) {
		if a.Schema == nil {
			continue
		}
		if a.Schema.Items != nil {
			cc.valueItems(a.Schema.Items, nil)
		}
	}
}

func (cc *completer) push(item CompletionItem, exact bool) {
	rank := 1
	if exact {
		rank = 0
	}
	item.SortText = fmt.Sprintf("%d_%04d_%s", rank, cc.seq, item.Label)
	cc.seq++
	cc.items = append(cc.items, item)
}

func (cc *completer) finish() []CompletionItem {
	items := lo.UniqBy(cc.items, func(it CompletionItem) string {
		return it.Label
	})
	sort.Slice(items, func(i, j int) bool {
		return items[i].SortText < items[j].SortText
	})
	if debug.Complete() {
		debug.Logf("complete: %d items at offset %d\n", len(items), cc.offset)
	}
	return items
}

func typeIs(s *schema.Schema, t string) bool {
	for _, st := range s.TypeSet() {
		if st == t {
			return true
		}
	}
	return false
}

func detailFor(s *schema.Schema) string {
	if s == nil {
		return ""
	}
	if s.Title != "" {
		return s.Title
	}
	return strings.Join(s.TypeSet(), " | ")
}

func docFor(s *schema.Schema) string {
	if s == nil {
		return ""
	}
	return s.Description
}

// literal renders a schema-declared value as YAML scalar text.
func literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%v", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
