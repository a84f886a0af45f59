package language

import (
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/yamlkit/yls/ir"
	"github.com/yamlkit/yls/parse"
	"github.com/yamlkit/yls/token"
)

// TextEdit is one replacement of an offset range with new text.
type TextEdit struct {
	Range   token.Range
	NewText string
}

// Format re-emits the document through the external YAML encoder and
// returns the minimal edits turning the source into the rendered form.
// Documents with parse errors format to no edits; rewriting a broken
// document would destroy what the author is still typing.
func (s *Service) Format(doc *parse.Document) ([]TextEdit, error) {
	settings, _, _ := s.snapshot()
	if !settings.Format {
		return nil, nil
	}
	for _, p := range doc.Problems {
		if p.Code == ir.CodeParseError {
			return nil, nil
		}
	}
	if len(doc.Roots) == 0 {
		return nil, nil
	}

	indent := len(settings.Indentation)
	if indent < 1 {
		indent = 2
	}
	var rendered []string
	for _, root := range doc.Roots {
		out, err := yaml.MarshalWithOptions(encodable(root), yaml.Indent(indent))
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, string(out))
	}
	formatted := strings.Join(rendered, "---\n")
	return diffEdits(string(doc.Source), formatted), nil
}

// encodable lowers the node tree for the encoder, keeping mapping key
// order with yaml.MapSlice where a plain map would shuffle it.
func encodable(n *ir.Node) any {
	n = n.Deref()
	switch n.Kind {
	case ir.MappingKind:
		ms := make(yaml.MapSlice, 0, len(n.Fields))
		for i := range n.Fields {
			ms = append(ms, yaml.MapItem{
				Key:   n.Fields[i].String,
				Value: encodable(n.Values[i]),
			})
		}
		return ms
	case ir.SequenceKind:
		res := make([]any, len(n.Values))
		for i, v := range n.Values {
			res[i] = encodable(v)
		}
		return res
	default:
		return ir.ToAny(n)
	}
}

// diffEdits lowers a text diff into replacement edits against old, so
// editors apply small changes instead of a whole-file rewrite.
func diffEdits(old, formatted string) []TextEdit {
	if old == formatted {
		return nil
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(old, formatted, false)

	var edits []TextEdit
	off := 0
	start, end := -1, 0
	var pending strings.Builder
	flush := func() {
		if start < 0 {
			return
		}
		edits = append(edits, TextEdit{
			Range:   token.Range{Start: start, End: end},
			NewText: pending.String(),
		})
		start = -1
		pending.Reset()
	}
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			off += len(d.Text)
		case diffmatchpatch.DiffDelete:
			if start < 0 {
				start, end = off, off
			}
			off += len(d.Text)
			end = off
		case diffmatchpatch.DiffInsert:
			if start < 0 {
				start, end = off, off
			}
			pending.WriteString(d.Text)
		}
	}
	flush()
	return edits
}
