package ir

import (
	"strconv"

	"github.com/yamlkit/yls/token"
)

// Node is a position-tagged element of a parsed document tree.
//
// Mappings keep their keys in Fields and values in Values, index
// aligned. Sequences use Values only. Parent, ParentIndex and
// ParentField form a non-owning upward index; ownership always runs
// parent to child through Fields/Values.
type Node struct {
	Kind        Kind
	Parent      *Node
	ParentIndex int
	ParentField string

	Fields []*Node
	Values []*Node

	// IsKey marks mapping key nodes, which live in their parent's
	// Fields array rather than Values.
	IsKey bool

	Tag    string
	Anchor string

	// AliasName and Target are set on AliasKind nodes. Target is a
	// non-owning link to the anchored node, nil when unresolved.
	AliasName string
	Target    *Node

	String  string
	Bool    bool
	Number  string
	Float64 *float64
	Int64   *int64

	Range token.Range
}

// Deref follows alias links to the anchored node. Unresolved aliases
// dereference to themselves.
func (n *Node) Deref() *Node {
	seen := 0
	res := n
	for res.Kind == AliasKind && res.Target != nil {
		res = res.Target
		seen++
		if seen > 64 {
			return n
		}
	}
	return res
}

func FromString(v string) *Node {
	return &Node{Kind: StringKind, String: v}
}

func FromInt(v int64) *Node {
	return &Node{
		Kind:  NumberKind,
		Int64: &v,
	}
}

func FromFloat(f float64) *Node {
	return &Node{
		Kind:    NumberKind,
		Float64: &f,
	}
}

func FromBool(v bool) *Node {
	return &Node{
		Kind: BoolKind,
		Bool: v,
	}
}

func Null() *Node {
	return &Node{Kind: NullKind}
}

type KeyVal struct {
	Key *Node
	Val *Node
}

func FromKeyVals(kvs []KeyVal) *Node {
	res := &Node{}
	return FromKeyValsAt(res, kvs)
}

func FromKeyValsAt(res *Node, kvs []KeyVal) *Node {
	res.Kind = MappingKind
	res.Fields = make([]*Node, len(kvs))
	res.Values = make([]*Node, len(kvs))
	for i := range kvs {
		kv := &kvs[i]
		if kv.Key == nil {
			kv.Key = Null()
		}
		kv.Key.IsKey = true
		if kv.Key.Kind == StringKind {
			kv.Key.ParentField = kv.Key.String
			kv.Val.ParentField = kv.Key.String
		}
		kv.Key.Parent = res
		kv.Key.ParentIndex = i
		kv.Val.Parent = res
		kv.Val.ParentIndex = i
		res.Fields[i] = kv.Key
		res.Values[i] = kv.Val
	}
	return res
}

func FromSlice(vals []*Node) *Node {
	res := &Node{
		Kind: SequenceKind,
	}
	res.Values = make([]*Node, len(vals))
	for i, v := range vals {
		res.Values[i] = v
		v.Parent = res
		v.ParentIndex = i
		v.ParentField = strconv.Itoa(i)
	}
	return res
}

// Get returns the value for a string key of a mapping node, nil when
// absent or when n is not a mapping.
func Get(n *Node, field string) *Node {
	if n == nil {
		return nil
	}
	n = n.Deref()
	N := len(n.Fields)
	for i := range N {
		if n.Fields[i].String == field {
			return n.Values[i]
		}
	}
	return nil
}

// ToMap collapses a mapping node to a field-keyed map. Later duplicate
// keys win, mirroring most YAML loaders.
func ToMap(n *Node) map[string]*Node {
	if n == nil || n.Kind != MappingKind {
		return nil
	}
	res := make(map[string]*Node, len(n.Fields))
	for i := range n.Fields {
		field := n.Fields[i]
		if field.Kind == NullKind {
			continue
		}
		res[field.String] = n.Values[i]
	}
	return res
}

func (n *Node) Root() *Node {
	res := n
	for res.Parent != nil {
		res = res.Parent
	}
	return res
}

// Visit walks the tree pre and post order. Returning dive=false from
// the pre visit skips the node's children.
func (n *Node) Visit(f func(n *Node, isPost bool) (bool, error)) error {
	dive, err := f(n, false)
	if err != nil {
		return err
	}
	if dive {
		for _, field := range n.Fields {
			if err := field.Visit(f); err != nil {
				return err
			}
		}
		for _, v := range n.Values {
			if err := v.Visit(f); err != nil {
				return err
			}
		}
	}
	if _, err := f(n, true); err != nil {
		return err
	}
	return nil
}

// AtOffset returns the deepest node whose range touches off, or nil.
// Keys win over their mapping when both touch.
func (n *Node) AtOffset(off int) *Node {
	if !n.Range.Touches(off) {
		return nil
	}
	for i := len(n.Values) - 1; i >= 0; i-- {
		if hit := n.Values[i].AtOffset(off); hit != nil {
			return hit
		}
	}
	for i := len(n.Fields) - 1; i >= 0; i-- {
		if hit := n.Fields[i].AtOffset(off); hit != nil {
			return hit
		}
	}
	return n
}

// ScalarEqual reports scalar value equality for leaf nodes.
func ScalarEqual(a, b *Node) bool {
	a, b = a.Deref(), b.Deref()
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case NullKind:
		return true
	case BoolKind:
		return a.Bool == b.Bool
	case StringKind:
		return a.String == b.String
	case NumberKind:
		if a.Int64 != nil && b.Int64 != nil {
			return *a.Int64 == *b.Int64
		}
		return a.Float() == b.Float()
	}
	return false
}

// Float returns the numeric value of a number node as a float64.
func (n *Node) Float() float64 {
	if n.Float64 != nil {
		return *n.Float64
	}
	if n.Int64 != nil {
		return float64(*n.Int64)
	}
	f, _ := strconv.ParseFloat(n.Number, 64)
	return f
}
