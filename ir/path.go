package ir

import (
	"strconv"
	"strings"
)

// Path renders the location of a node as a dollar-rooted object path,
// e.g. $.spec.containers[0].name.
func (n *Node) Path() string {
	if n.Parent == nil {
		return "$"
	}
	switch n.Parent.Kind {
	case MappingKind:
		f := n.ParentField
		prefix := n.Parent.Path() + "."
		if f != "" && strings.IndexAny(f, "'.*$[]") == -1 {
			return prefix + f
		}
		return prefix + "'" + strings.Replace(f, "'", "\\'", -1) + "'"
	case SequenceKind:
		return n.Parent.Path() + "[" + strconv.Itoa(n.ParentIndex) + "]"
	default:
		return n.Parent.Path()
	}
}
