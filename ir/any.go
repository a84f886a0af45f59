package ir

// ToAny lowers a node tree to plain Go values: map[string]any for
// mappings, []any for sequences, scalars otherwise. Aliases lower to
// their target's value.
func ToAny(n *Node) any {
	if n == nil {
		return nil
	}
	n = n.Deref()
	switch n.Kind {
	case NullKind:
		return nil
	case BoolKind:
		return n.Bool
	case StringKind:
		return n.String
	case NumberKind:
		if n.Int64 != nil {
			return *n.Int64
		}
		return n.Float()
	case SequenceKind:
		res := make([]any, len(n.Values))
		for i, v := range n.Values {
			res[i] = ToAny(v)
		}
		return res
	case MappingKind:
		res := make(map[string]any, len(n.Fields))
		for i, f := range n.Fields {
			res[f.String] = ToAny(n.Values[i])
		}
		return res
	}
	return nil
}
