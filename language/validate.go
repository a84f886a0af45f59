package language

import (
	"context"
	"sort"
	"strings"

	"github.com/yamlkit/yls/ir"
	"github.com/yamlkit/yls/match"
	"github.com/yamlkit/yls/parse"
	"github.com/yamlkit/yls/token"
)

// Diagnostic is one finding against a document, lowered from a match
// problem or a structural check. SchemaURI names the root schema that
// produced it, empty for schema-independent findings.
type Diagnostic struct {
	Code      string
	Message   string
	Severity  ir.Severity
	Range     token.Range
	SchemaURI string
}

// Validate runs every candidate root schema over every document in the
// stream and merges the results with the structural checks. With no
// associated schemas only the structural checks remain. It always
// returns a result; schema failures degrade to warnings.
func (s *Service) Validate(ctx context.Context, location string, doc *parse.Document) []Diagnostic {
	settings, ix, customTags := s.snapshot()
	if !settings.Validate {
		return nil
	}

	var diags []Diagnostic
	for _, p := range doc.Problems {
		diags = append(diags, Diagnostic{
			Code:     p.Code,
			Message:  p.Message,
			Severity: p.Severity,
			Range:    p.Range,
		})
	}

	for _, root := range doc.Roots {
		diags = append(diags, tagProblems(root, customTags)...)
		uris := s.candidateURIs(ix, location, doc.Source, root)
		resolved, errs := s.resolveCandidates(ctx, uris)
		for _, err := range errs {
			diags = append(diags, Diagnostic{
				Code:     ir.CodeSchemaUnavailable,
				Message:  err.Error(),
				Severity: ir.SeverityWarning,
				Range:    root.Range,
			})
		}
		for _, r := range resolved {
			res := match.Match(root, r)
			for _, p := range res.Problems {
				diags = append(diags, Diagnostic{
					Code:      p.Code,
					Message:   p.Message,
					Severity:  p.Severity,
					Range:     p.Range,
					SchemaURI: r.URI,
				})
			}
		}
	}
	return dedupeDiagnostics(diags)
}

// builtin YAML core and common library tags
var builtinTags = map[string]bool{
	"!!str": true, "!!int": true, "!!float": true, "!!bool": true,
	"!!null": true, "!!map": true, "!!seq": true, "!!binary": true,
	"!!timestamp": true, "!!set": true, "!!merge": true,
}

// tagProblems flags node tags that are neither core YAML tags nor
// configured custom tags.
func tagProblems(root *ir.Node, customTags map[string]bool) []Diagnostic {
	var diags []Diagnostic
	_ = root.Visit(func(n *ir.Node, isPost bool) (bool, error) {
		if isPost || n.Tag == "" {
			return true, nil
		}
		if builtinTags[n.Tag] || customTags[n.Tag] {
			return true, nil
		}
		diags = append(diags, Diagnostic{
			Code:     ir.CodeUnknownTag,
			Message:  "unknown tag " + n.Tag,
			Severity: ir.SeverityWarning,
			Range:    n.Range,
		})
		return true, nil
	})
	return diags
}

// dedupeDiagnostics drops findings several candidate roots agree on
// and orders the rest by position for stable output.
func dedupeDiagnostics(diags []Diagnostic) []Diagnostic {
	seen := map[string]bool{}
	res := diags[:0]
	for _, d := range diags {
		key := strings.Join([]string{d.Code, d.Message, d.Range.String()}, "\x00")
		if seen[key] {
			continue
		}
		seen[key] = true
		res = append(res, d)
	}
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].Range.Start != res[j].Range.Start {
			return res[i].Range.Start < res[j].Range.Start
		}
		return res[i].Code < res[j].Code
	})
	return res
}
