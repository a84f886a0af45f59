package language

import (
	"context"
	"strings"

	"github.com/yamlkit/yls/ir"
	"github.com/yamlkit/yls/match"
	"github.com/yamlkit/yls/parse"
	"github.com/yamlkit/yls/schema"
	"github.com/yamlkit/yls/token"
)

// Hover is the descriptive text for the node under a cursor, rendered
// as markdown.
type Hover struct {
	Markdown string
	Range    token.Range
}

// Hover describes the schema fragment selected at offset, or nil when
// no schema applies there.
func (s *Service) Hover(ctx context.Context, location string, doc *parse.Document, offset int) *Hover {
	settings, ix, _ := s.snapshot()
	if !settings.Hover {
		return nil
	}
	root := doc.RootAt(offset)
	if root == nil {
		return nil
	}
	node := root.AtOffset(offset)
	if node == nil {
		return nil
	}
	// hovering a key describes the property's value schema
	target := node
	if node.IsKey && node.Parent != nil && node.ParentIndex < len(node.Parent.Values) {
		target = node.Parent.Values[node.ParentIndex]
	}

	uris := s.candidateURIs(ix, location, doc.Source, root)
	resolved, _ := s.resolveCandidates(ctx, uris)
	for _, r := range resolved {
		res := match.Match(root, r)
		if md := hoverMarkdown(res, target); md != "" {
			return &Hover{Markdown: md, Range: node.Range}
		}
	}
	return nil
}

func hoverMarkdown(res *match.Result, target *ir.Node) string {
	if md := renderSchema(res.SchemaFor(target)); md != "" {
		return md
	}
	// fall back to any annotated fragment carrying text
	for _, a := range res.At(target) {
		if md := renderSchema(a.Schema); md != "" {
			return md
		}
	}
	return ""
}

func renderSchema(s *schema.Schema) string {
	if s == nil {
		return ""
	}
	var parts []string
	if s.Title != "" {
		parts = append(parts, "**"+s.Title+"**")
	}
	if s.Description != "" {
		parts = append(parts, s.Description)
	}
	if len(s.Enum) > 0 {
		vals := make([]string, len(s.Enum))
		for i, v := range s.Enum {
			vals[i] = "`" + literal(v) + "`"
		}
		parts = append(parts, "Allowed values: "+strings.Join(vals, ", "))
	}
	if s.Default != nil {
		parts = append(parts, "Default: `"+literal(s.Default)+"`")
	}
	return strings.Join(parts, "\n\n")
}
