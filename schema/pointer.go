package schema

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// SplitRef splits a reference value into its target URI and JSON
// pointer. An empty URI part targets the current document.
func SplitRef(base, ref string) (uri, pointer string) {
	uri = base
	pointer = ""
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		if i > 0 {
			uri = ref[:i]
		}
		pointer = ref[i+1:]
	} else if ref != "" {
		uri = ref
	}
	return uri, pointer
}

func unescapeSegment(seg string) string {
	if u, err := url.PathUnescape(seg); err == nil {
		seg = u
	}
	seg = strings.ReplaceAll(seg, "~1", "/")
	seg = strings.ReplaceAll(seg, "~0", "~")
	return seg
}

// Lookup navigates a JSON pointer through the typed schema model.
// Only keyword containers that can hold subschemas are traversable.
func Lookup(s *Schema, pointer string) (*Schema, error) {
	if pointer == "" || pointer == "/" {
		if s == nil {
			return nil, fmt.Errorf("%w: empty document", ErrReferenceNotFound)
		}
		return s, nil
	}
	segs := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	cur := s
	for i := 0; i < len(segs); i++ {
		if cur == nil {
			return nil, fmt.Errorf("%w: %s", ErrReferenceNotFound, pointer)
		}
		seg := unescapeSegment(segs[i])
		named := func(m map[string]*Schema) (*Schema, bool) {
			if i+1 >= len(segs) {
				return nil, false
			}
			i++
			sub, ok := m[unescapeSegment(segs[i])]
			return sub, ok
		}
		indexed := func(list []*Schema) (*Schema, bool) {
			if i+1 >= len(segs) {
				return nil, false
			}
			i++
			idx, err := strconv.Atoi(segs[i])
			if err != nil || idx < 0 || idx >= len(list) {
				return nil, false
			}
			return list[idx], true
		}
		var (
			next *Schema
			ok   bool
		)
		switch seg {
		case "definitions":
			next, ok = named(cur.Definitions)
		case "$defs":
			next, ok = named(cur.Defs)
		case "properties":
			next, ok = named(cur.Properties)
		case "patternProperties":
			next, ok = named(cur.PatternProperties)
		case "items":
			if cur.Items != nil {
				next, ok = cur.Items, true
			} else {
				next, ok = indexed(cur.PrefixItems)
			}
		case "prefixItems":
			next, ok = indexed(cur.PrefixItems)
		case "additionalItems":
			next, ok = cur.AdditionalItems, cur.AdditionalItems != nil
		case "additionalProperties":
			next, ok = cur.AdditionalProperties, cur.AdditionalProperties != nil
		case "allOf":
			next, ok = indexed(cur.AllOf)
		case "anyOf":
			next, ok = indexed(cur.AnyOf)
		case "oneOf":
			next, ok = indexed(cur.OneOf)
		case "not":
			next, ok = cur.Not, cur.Not != nil
		default:
			return nil, fmt.Errorf("%w: unsupported pointer segment %q in %q", ErrReferenceNotFound, seg, pointer)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrReferenceNotFound, pointer)
		}
		cur = next
	}
	if cur == nil {
		return nil, fmt.Errorf("%w: %s", ErrReferenceNotFound, pointer)
	}
	return cur, nil
}
