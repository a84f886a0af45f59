package schema

import (
	"context"
	"errors"
	"sync"

	"github.com/yamlkit/yls/debug"
)

// Resolved is a schema document with every reachable reference
// replaced by a direct link to its target, plus the notes gathered on
// the way: cycles, dangling pointers, unreachable documents. A
// Resolved value is immutable; content changes produce a new one.
type Resolved struct {
	URI    string
	Schema *Schema
	Errs   []*ResolutionError

	// deps snapshots the store generation of every URI the resolution
	// touched, the root included.
	deps map[string]uint64
}

// Circular reports whether any reference cycle was found.
func (r *Resolved) Circular() bool {
	for _, e := range r.Errs {
		if errors.Is(e.Err, errCircular) {
			return true
		}
	}
	return false
}

var errCircular = errors.New("circular reference")

type refState int

const (
	stateResolving refState = iota + 1
	stateResolved
)

type refKey struct {
	uri     string
	pointer string
}

type refEntry struct {
	state  refState
	schema *Schema
}

// Resolver dereferences schema documents against a Store and caches
// the result per root URI. Cache entries are checked against store
// generations on every lookup; a stale entry is re-resolved, and an
// in-flight resolution whose inputs changed underneath it is discarded
// rather than cached.
type Resolver struct {
	store *Store

	mu    sync.Mutex
	cache map[string]*Resolved
}

func NewResolver(store *Store) *Resolver {
	return &Resolver{
		store: store,
		cache: map[string]*Resolved{},
	}
}

// Resolve returns the fully dereferenced schema for uri. Resolution
// failures inside the graph degrade to placeholder nodes and notes;
// only an unreachable root document is an error.
func (r *Resolver) Resolve(ctx context.Context, uri string) (*Resolved, error) {
	r.mu.Lock()
	if cached := r.cache[uri]; cached != nil && r.freshLocked(cached) {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	doc, err := r.store.ResolveURI(ctx, uri)
	if err != nil {
		return nil, err
	}
	if debug.Resolve() {
		debug.Logf("resolver: resolving %s\n", uri)
	}
	run := &resolution{
		r:    r,
		memo: map[refKey]*refEntry{},
		res: &Resolved{
			URI:  uri,
			deps: map[string]uint64{uri: r.store.Generation(uri)},
		},
		docs: map[string]*Document{uri: doc},
	}
	run.res.Schema = run.resolve(ctx, uri, doc.Schema)

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.freshLocked(run.res) {
		// the content changed while we were resolving; hand the
		// snapshot result to the caller but do not cache it
		return run.res, nil
	}
	r.cache[uri] = run.res
	return run.res, nil
}

// ResetAll drops all cached resolutions.
func (r *Resolver) ResetAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = map[string]*Resolved{}
}

func (r *Resolver) freshLocked(res *Resolved) bool {
	for uri, gen := range res.deps {
		if r.store.Generation(uri) != gen {
			return false
		}
	}
	return true
}

type resolution struct {
	r    *Resolver
	res  *Resolved
	memo map[refKey]*refEntry
	docs map[string]*Document
}

func (rr *resolution) note(uri, pointer string, err error) {
	rr.res.Errs = append(rr.res.Errs, &ResolutionError{
		URI:     uri,
		Pointer: pointer,
		Err:     err,
	})
}

func (rr *resolution) document(ctx context.Context, uri string) (*Document, error) {
	if doc, ok := rr.docs[uri]; ok {
		return doc, nil
	}
	doc, err := rr.r.store.ResolveURI(ctx, uri)
	rr.res.deps[uri] = rr.r.store.Generation(uri)
	if err != nil {
		return nil, err
	}
	rr.docs[uri] = doc
	return doc, nil
}

// resolve dereferences s. Unchanged subtrees are returned as-is so a
// reference-free schema resolves to the identical graph; subtrees with
// resolved references are rebuilt by shallow copy, never mutated in
// place.
func (rr *resolution) resolve(ctx context.Context, base string, s *Schema) *Schema {
	if s == nil {
		return nil
	}
	if s.Ref != "" {
		return rr.deref(ctx, base, s.Ref)
	}

	out := s
	cow := func() *Schema {
		if out == s {
			cp := *s
			out = &cp
		}
		return out
	}

	resolveList := func(list []*Schema) ([]*Schema, bool) {
		changed := false
		res := make([]*Schema, len(list))
		for i, sub := range list {
			res[i] = rr.resolve(ctx, base, sub)
			if res[i] != sub {
				changed = true
			}
		}
		return res, changed
	}
	resolveMap := func(m map[string]*Schema) (map[string]*Schema, bool) {
		changed := false
		res := make(map[string]*Schema, len(m))
		for k, sub := range m {
			res[k] = rr.resolve(ctx, base, sub)
			if res[k] != sub {
				changed = true
			}
		}
		return res, changed
	}

	if m, changed := resolveMap(s.Properties); changed {
		cow().Properties = m
	}
	if m, changed := resolveMap(s.PatternProperties); changed {
		cow().PatternProperties = m
	}
	if sub := rr.resolve(ctx, base, s.AdditionalProperties); sub != s.AdditionalProperties {
		cow().AdditionalProperties = sub
	}
	if sub := rr.resolve(ctx, base, s.Items); sub != s.Items {
		cow().Items = sub
	}
	if list, changed := resolveList(s.PrefixItems); changed {
		cow().PrefixItems = list
	}
	if sub := rr.resolve(ctx, base, s.AdditionalItems); sub != s.AdditionalItems {
		cow().AdditionalItems = sub
	}
	if list, changed := resolveList(s.AllOf); changed {
		cow().AllOf = list
	}
	if list, changed := resolveList(s.AnyOf); changed {
		cow().AnyOf = list
	}
	if list, changed := resolveList(s.OneOf); changed {
		cow().OneOf = list
	}
	if sub := rr.resolve(ctx, base, s.Not); sub != s.Not {
		cow().Not = sub
	}
	return out
}

func (rr *resolution) deref(ctx context.Context, base, ref string) *Schema {
	uri, pointer := SplitRef(base, ref)
	key := refKey{uri: uri, pointer: pointer}
	if e := rr.memo[key]; e != nil {
		if e.state == stateResolving {
			rr.note(uri, pointer, errCircular)
			return &Schema{Circular: true}
		}
		return e.schema
	}
	e := &refEntry{state: stateResolving}
	rr.memo[key] = e

	placeholder := func(err error) *Schema {
		rr.note(uri, pointer, err)
		out := &Schema{ResolutionErr: rr.res.Errs[len(rr.res.Errs)-1]}
		e.state = stateResolved
		e.schema = out
		return out
	}

	doc, err := rr.document(ctx, uri)
	if err != nil {
		return placeholder(err)
	}
	target, err := Lookup(doc.Schema, pointer)
	if err != nil {
		return placeholder(err)
	}
	resolved := rr.resolve(ctx, uri, target)
	e.state = stateResolved
	e.schema = resolved
	return resolved
}
