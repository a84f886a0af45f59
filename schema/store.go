package schema

import (
	"context"
	"fmt"
	"sync"
	"time"

	jsonpatch "github.com/evanphx/json-patch"
	json "github.com/goccy/go-json"

	"github.com/yamlkit/yls/debug"
)

// FetchFunc retrieves raw schema content by URI. It is the injected
// network/file collaborator; failures surface as plain errors and are
// wrapped into ErrSchemaUnavailable by the store.
type FetchFunc func(ctx context.Context, uri string) (string, error)

const defaultNegativeTTL = 15 * time.Second

// Store is the in-memory registry of raw schema documents keyed by
// URI. It deduplicates fetches (one outstanding fetch per URI, fan-in
// for concurrent callers), briefly caches failures, and tracks a
// generation counter per URI so resolved-schema caches can detect
// staleness.
type Store struct {
	fetch FetchFunc

	mu      sync.Mutex
	entries map[string]*entry
	gens    map[string]uint64
	negTTL  time.Duration
}

type entry struct {
	ready    chan struct{}
	doc      *Document
	err      error
	failedAt time.Time
}

func NewStore(fetch FetchFunc) *Store {
	return &Store{
		fetch:   fetch,
		entries: map[string]*entry{},
		gens:    map[string]uint64{},
		negTTL:  defaultNegativeTTL,
	}
}

// ResolveURI returns the schema document for uri, fetching it at most
// once. Concurrent callers for the same URI share one in-flight fetch.
func (s *Store) ResolveURI(ctx context.Context, uri string) (*Document, error) {
	s.mu.Lock()
	if e := s.entries[uri]; e != nil {
		expired := false
		select {
		case <-e.ready:
			expired = e.err != nil && time.Since(e.failedAt) > s.negTTL
		default:
		}
		if !expired {
			s.mu.Unlock()
			<-e.ready
			return e.doc, e.err
		}
		delete(s.entries, uri)
	}
	e := &entry{ready: make(chan struct{})}
	s.entries[uri] = e
	s.mu.Unlock()

	if debug.Store() {
		debug.Logf("store: fetching %s\n", uri)
	}
	doc, err := s.fetchDocument(ctx, uri)

	s.mu.Lock()
	e.doc, e.err = doc, err
	if err != nil {
		e.failedAt = time.Now()
	}
	// If the entry was invalidated while the fetch was in flight the
	// result is handed to waiters but not kept: s.entries[uri] no
	// longer points at e, so the next caller refetches.
	close(e.ready)
	s.mu.Unlock()
	return doc, err
}

func (s *Store) fetchDocument(ctx context.Context, uri string) (*Document, error) {
	if s.fetch == nil {
		return nil, fmt.Errorf("%w: %s: no fetch capability configured", ErrSchemaUnavailable, uri)
	}
	content, err := s.fetch(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchemaUnavailable, uri, err)
	}
	return ParseDocument(uri, []byte(content))
}

// PutInline registers schema content directly, bypassing fetch.
func (s *Store) PutInline(uri string, content []byte) error {
	doc, err := ParseDocument(uri, content)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.install(uri, doc)
	return nil
}

// Delete removes a schema and invalidates dependents.
func (s *Store) Delete(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, uri)
	s.gens[uri]++
}

// Invalidate drops any cached content for uri so the next access
// refetches, and bumps the generation so resolved caches refresh.
func (s *Store) Invalidate(uri string) {
	s.Delete(uri)
}

// PatchContent applies an RFC 6902 patch to a schema's content. The
// stored document is replaced wholesale; readers of the old document
// are unaffected.
func (s *Store) PatchContent(ctx context.Context, uri string, patch []byte) error {
	ops, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return fmt.Errorf("decoding patch for %s: %w", uri, err)
	}
	doc, err := s.ResolveURI(ctx, uri)
	if err != nil {
		return err
	}
	raw, err := ops.Apply(doc.Raw)
	if err != nil {
		return fmt.Errorf("patching %s: %w", uri, err)
	}
	next, err := ParseDocument(uri, raw)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.install(uri, next)
	return nil
}

// RemoveContent deletes the given JSON pointer paths from a schema's
// content.
func (s *Store) RemoveContent(ctx context.Context, uri string, pointers []string) error {
	type op struct {
		Op   string `json:"op"`
		Path string `json:"path"`
	}
	ops := make([]op, len(pointers))
	for i, p := range pointers {
		ops[i] = op{Op: "remove", Path: p}
	}
	patch, err := json.Marshal(ops)
	if err != nil {
		return err
	}
	return s.PatchContent(ctx, uri, patch)
}

// Generation returns the current generation for uri. Any mutation of
// the schema's content bumps it; resolved caches compare snapshots
// against it.
func (s *Store) Generation(uri string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[uri]
}

func (s *Store) install(uri string, doc *Document) {
	e := &entry{ready: make(chan struct{}), doc: doc}
	close(e.ready)
	s.entries[uri] = e
	s.gens[uri]++
}
