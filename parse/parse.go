// Package parse adapts the goccy/go-yaml parser into the ir node
// model. It never tokenizes YAML itself; it only repositions the
// external parser's AST into position-tagged ir nodes and runs the
// schema-independent structural checks (duplicate mapping keys,
// unresolvable aliases).
package parse

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	yamltoken "github.com/goccy/go-yaml/token"

	"github.com/yamlkit/yls/ir"
	"github.com/yamlkit/yls/token"
)

// Document is one parsed source text: a stream of zero or more
// document roots plus the structural problems found while building
// them. A failed parse still yields a Document carrying the parse
// error as a problem.
type Document struct {
	Source   []byte
	Pos      *token.PosDoc
	Roots    []*ir.Node
	Problems []ir.Problem
}

// Parse converts src into a Document. The returned error mirrors the
// parser's fatal syntax errors; the Document is always usable.
func Parse(src []byte) (*Document, error) {
	d := &Document{
		Source: src,
		Pos:    token.NewPosDoc(src),
	}
	f, err := parser.ParseBytes(src, 0, parser.AllowDuplicateMapKey())
	if err != nil {
		d.Problems = append(d.Problems, ir.Problem{
			Code:     ir.CodeParseError,
			Message:  fmt.Sprintf("%v", err),
			Severity: ir.SeverityError,
			Range:    token.Range{Start: 0, End: 0},
		})
		return d, fmt.Errorf("%w: %v", ErrParse, err)
	}
	for _, astDoc := range f.Docs {
		if astDoc == nil || astDoc.Body == nil {
			continue
		}
		c := &converter{doc: d, anchors: map[string]*ir.Node{}}
		root := c.node(astDoc.Body)
		if root == nil {
			continue
		}
		d.Roots = append(d.Roots, root)
	}
	return d, nil
}

// RootAt returns the document root whose range touches off. With a
// single root it is returned regardless, so cursors in leading or
// trailing whitespace still address the document.
func (d *Document) RootAt(off int) *ir.Node {
	if len(d.Roots) == 1 {
		return d.Roots[0]
	}
	for _, r := range d.Roots {
		if r.Range.Touches(off) {
			return r
		}
	}
	return nil
}

type converter struct {
	doc     *Document
	anchors map[string]*ir.Node
}

func (c *converter) offset(p *yamltoken.Position) int {
	if p == nil {
		return 0
	}
	return c.doc.Pos.Offset(p.Line-1, p.Column-1)
}

func (c *converter) tokenRange(tok *yamltoken.Token) token.Range {
	if tok == nil {
		return token.Range{}
	}
	start := c.offset(tok.Position)
	return token.Range{Start: start, End: start + len(tok.Value)}
}

func (c *converter) problem(code, msg string, sev ir.Severity, r token.Range) {
	c.doc.Problems = append(c.doc.Problems, ir.Problem{
		Code:     code,
		Message:  msg,
		Severity: sev,
		Range:    r,
	})
}

func (c *converter) node(n ast.Node) *ir.Node {
	if n == nil {
		return nil
	}
	switch v := n.(type) {
	case *ast.MappingNode:
		return c.mapping(v.Values, n.GetToken())
	case *ast.MappingValueNode:
		// single-pair mapping body
		return c.mapping([]*ast.MappingValueNode{v}, n.GetToken())
	case *ast.SequenceNode:
		return c.sequence(v)
	case *ast.TagNode:
		res := c.node(v.Value)
		if res != nil && v.Start != nil {
			res.Tag = v.Start.Value
			res.Range = res.Range.Union(c.tokenRange(v.Start))
		}
		return res
	case *ast.AnchorNode:
		res := c.node(v.Value)
		if res != nil && v.Name != nil {
			name := v.Name.GetToken().Value
			res.Anchor = name
			c.anchors[name] = res
		}
		return res
	case *ast.AliasNode:
		return c.alias(v)
	case *ast.StringNode:
		res := &ir.Node{Kind: ir.StringKind, String: v.Value}
		res.Range = c.tokenRange(v.GetToken())
		return res
	case *ast.LiteralNode:
		res := &ir.Node{Kind: ir.StringKind}
		if v.Value != nil {
			res.String = v.Value.Value
		}
		res.Range = c.tokenRange(v.GetToken())
		return res
	case *ast.IntegerNode:
		res := &ir.Node{Kind: ir.NumberKind}
		tok := v.GetToken()
		res.Number = tok.Value
		switch num := v.Value.(type) {
		case int64:
			res.Int64 = &num
		case uint64:
			i := int64(num)
			res.Int64 = &i
		case int:
			i := int64(num)
			res.Int64 = &i
		}
		res.Range = c.tokenRange(tok)
		return res
	case *ast.FloatNode:
		f := v.Value
		res := &ir.Node{Kind: ir.NumberKind, Float64: &f}
		res.Number = v.GetToken().Value
		res.Range = c.tokenRange(v.GetToken())
		return res
	case *ast.BoolNode:
		res := &ir.Node{Kind: ir.BoolKind, Bool: v.Value}
		res.Range = c.tokenRange(v.GetToken())
		return res
	case *ast.NullNode:
		res := ir.Null()
		res.Range = c.tokenRange(v.GetToken())
		return res
	case *ast.InfinityNode:
		f := v.Value
		res := &ir.Node{Kind: ir.NumberKind, Float64: &f, Number: v.GetToken().Value}
		res.Range = c.tokenRange(v.GetToken())
		return res
	case *ast.NanNode:
		res := &ir.Node{Kind: ir.NumberKind, Number: v.GetToken().Value}
		f := 0.0
		res.Float64 = &f
		res.Range = c.tokenRange(v.GetToken())
		return res
	case *ast.MappingKeyNode:
		return c.node(v.Value)
	case *ast.CommentNode:
		return nil
	default:
		return nil
	}
}

func (c *converter) mapping(pairs []*ast.MappingValueNode, start *yamltoken.Token) *ir.Node {
	res := &ir.Node{Kind: ir.MappingKind}
	seen := map[string]bool{}
	for i, pair := range pairs {
		if pair == nil {
			continue
		}
		key := c.key(pair.Key)
		val := c.node(pair.Value)
		if val == nil {
			val = ir.Null()
			val.Range = token.Range{Start: key.Range.End, End: key.Range.End}
		}
		if key.Kind == ir.StringKind {
			if seen[key.String] {
				c.problem(ir.CodeDuplicateKey,
					fmt.Sprintf("duplicate key %q", key.String),
					ir.SeverityError, key.Range)
			}
			seen[key.String] = true
			key.ParentField = key.String
			val.ParentField = key.String
		}
		key.IsKey = true
		key.Parent = res
		key.ParentIndex = i
		val.Parent = res
		val.ParentIndex = i
		res.Fields = append(res.Fields, key)
		res.Values = append(res.Values, val)
		res.Range = res.Range.Union(key.Range).Union(val.Range)
	}
	if len(pairs) == 0 {
		res.Range = c.tokenRange(start)
	}
	return res
}

func (c *converter) key(n ast.MapKeyNode) *ir.Node {
	if n == nil {
		return ir.Null()
	}
	if _, ok := n.(*ast.MergeKeyNode); ok {
		res := ir.FromString("<<")
		res.Range = c.tokenRange(n.GetToken())
		return res
	}
	res := c.node(n)
	if res == nil {
		res = ir.Null()
		res.Range = c.tokenRange(n.GetToken())
	}
	// YAML allows non-string keys; schema matching treats them by
	// their string form.
	if res.Kind != ir.StringKind && res.Kind.IsScalar() {
		res.String = scalarText(res)
	}
	return res
}

func (c *converter) sequence(v *ast.SequenceNode) *ir.Node {
	res := &ir.Node{Kind: ir.SequenceKind}
	for i, el := range v.Values {
		child := c.node(el)
		if child == nil {
			child = ir.Null()
			if el != nil {
				child.Range = c.tokenRange(el.GetToken())
			}
		}
		child.Parent = res
		child.ParentIndex = i
		child.ParentField = strconv.Itoa(i)
		res.Values = append(res.Values, child)
		res.Range = res.Range.Union(child.Range)
	}
	if len(v.Values) == 0 {
		res.Range = c.tokenRange(v.GetToken())
	}
	return res
}

func (c *converter) alias(v *ast.AliasNode) *ir.Node {
	name := ""
	if v.Value != nil {
		name = v.Value.GetToken().Value
	}
	res := &ir.Node{Kind: ir.AliasKind, AliasName: name}
	res.Range = c.tokenRange(v.GetToken())
	if v.Value != nil {
		res.Range = res.Range.Union(c.tokenRange(v.Value.GetToken()))
	}
	target, ok := c.anchors[name]
	if !ok {
		c.problem(ir.CodeUnresolvedAlias,
			fmt.Sprintf("unresolved alias %q", name),
			ir.SeverityError, res.Range)
		return res
	}
	res.Target = target
	return res
}

func scalarText(n *ir.Node) string {
	switch n.Kind {
	case ir.StringKind:
		return n.String
	case ir.BoolKind:
		return strconv.FormatBool(n.Bool)
	case ir.NumberKind:
		return n.Number
	case ir.NullKind:
		return "null"
	}
	return ""
}
