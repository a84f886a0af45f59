package language

import (
	"strconv"

	"github.com/yamlkit/yls/ir"
	"github.com/yamlkit/yls/parse"
	"github.com/yamlkit/yls/token"
)

// Symbol is one outline entry: a mapping key or sequence index and the
// kind of its value. Leaf entries carry a short value preview in
// Detail.
type Symbol struct {
	Name     string
	Kind     ir.Kind
	Range    token.Range
	Detail   string
	Children []Symbol
}

// Symbols builds the nested outline for every document in the stream.
// Purely structural; no schema association is consulted.
func Symbols(doc *parse.Document) []Symbol {
	var res []Symbol
	for _, root := range doc.Roots {
		res = append(res, childSymbols(root)...)
	}
	return res
}

// FlatSymbols is the outline flattened depth-first.
func FlatSymbols(doc *parse.Document) []Symbol {
	var res []Symbol
	var walk func(syms []Symbol)
	walk = func(syms []Symbol) {
		for _, sym := range syms {
			children := sym.Children
			sym.Children = nil
			res = append(res, sym)
			walk(children)
		}
	}
	walk(Symbols(doc))
	return res
}

func childSymbols(n *ir.Node) []Symbol {
	n = n.Deref()
	var res []Symbol
	switch n.Kind {
	case ir.MappingKind:
		for i := range n.Fields {
			key, val := n.Fields[i], n.Values[i]
			res = append(res, valueSymbol(key.String, key.Range, val))
		}
	case ir.SequenceKind:
		for i, val := range n.Values {
			res = append(res, valueSymbol(strconv.Itoa(i), val.Range, val))
		}
	}
	return res
}

func valueSymbol(name string, keyRange token.Range, val *ir.Node) Symbol {
	v := val.Deref()
	sym := Symbol{
		Name:  name,
		Kind:  v.Kind,
		Range: keyRange.Union(val.Range),
	}
	if v.Kind.IsScalar() {
		sym.Detail = preview(v)
	} else {
		sym.Children = childSymbols(v)
	}
	return sym
}

func preview(n *ir.Node) string {
	switch n.Kind {
	case ir.StringKind:
		if len(n.String) > 40 {
			return n.String[:40] + "..."
		}
		return n.String
	case ir.NumberKind:
		return n.Number
	case ir.BoolKind:
		return strconv.FormatBool(n.Bool)
	case ir.NullKind:
		return "null"
	}
	return ""
}
