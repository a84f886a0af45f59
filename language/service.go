// Package language implements the producers an editor host consumes:
// validation, completion, hover, symbols and formatting. A Service
// owns one schema store, one resolver cache and one association index
// per embedding session; independent sessions get independent
// Services, there is no ambient state.
package language

import (
	"bufio"
	"bytes"
	"context"
	"regexp"
	"sync"

	"github.com/yamlkit/yls/debug"
	"github.com/yamlkit/yls/ir"
	"github.com/yamlkit/yls/parse"
	"github.com/yamlkit/yls/schema"
)

// SchemaSetting is one statically configured schema association.
// Content, when set, registers the schema inline so no fetch is needed.
type SchemaSetting struct {
	URI       string
	FileMatch []string
	Content   []byte
	Priority  int
}

// Settings is the host-facing configuration surface.
type Settings struct {
	Validate   bool
	Hover      bool
	Completion bool
	Format     bool

	// IsKubernetes switches on the built-in content-based association
	// keyed on apiVersion/kind.
	IsKubernetes bool

	// SchemaExpr, when set, adds an expression-based association
	// provider evaluated over each document root.
	SchemaExpr string

	Schemas    []SchemaSetting
	CustomTags []string

	// Indentation is the unit completion uses when inserting nested
	// structure. Defaults to two spaces.
	Indentation string
}

// DefaultSettings enables all producers with two-space indentation.
func DefaultSettings() Settings {
	return Settings{
		Validate:    true,
		Hover:       true,
		Completion:  true,
		Format:      true,
		Indentation: "  ",
	}
}

type Service struct {
	store    *schema.Store
	resolver *schema.Resolver

	mu         sync.RWMutex
	settings   Settings
	assoc      *schema.Index
	providers  []schema.Provider
	customTags map[string]bool
}

func NewService(fetch schema.FetchFunc) *Service {
	store := schema.NewStore(fetch)
	s := &Service{
		store:    store,
		resolver: schema.NewResolver(store),
		assoc:    schema.NewIndex(),
		settings: DefaultSettings(),
	}
	return s
}

// Configure replaces the settings and rebuilds the association index.
// Providers registered through RegisterProvider survive reconfiguration.
func (s *Service) Configure(settings Settings) error {
	if settings.Indentation == "" {
		settings.Indentation = "  "
	}
	ix := schema.NewIndex()
	for _, sc := range settings.Schemas {
		if len(sc.Content) > 0 {
			if err := s.store.PutInline(sc.URI, sc.Content); err != nil {
				return err
			}
		}
		if err := ix.Add(schema.Rule{
			URI:       sc.URI,
			FileMatch: sc.FileMatch,
			Priority:  sc.Priority,
		}); err != nil {
			return err
		}
	}
	if settings.IsKubernetes {
		ix.AddProvider(&schema.KubernetesProvider{})
	}
	if settings.SchemaExpr != "" {
		p, err := schema.NewExprProvider(settings.SchemaExpr)
		if err != nil {
			return err
		}
		ix.AddProvider(p)
	}

	tags := map[string]bool{}
	for _, t := range settings.CustomTags {
		tags[t] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.customTags = tags
	for _, p := range s.providers {
		ix.AddProvider(p)
	}
	s.assoc = ix
	return nil
}

// RegisterProvider adds a content-based association provider.
func (s *Service) RegisterProvider(p schema.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers = append(s.providers, p)
	s.assoc.AddProvider(p)
}

// ResetSchema drops uri from the store. Resolutions that touched it
// become stale through the store's generation counter and re-resolve
// on next use.
func (s *Service) ResetSchema(uri string) {
	s.store.Delete(uri)
}

func (s *Service) AddSchema(uri string, content []byte) error {
	return s.store.PutInline(uri, content)
}

func (s *Service) DeleteSchema(uri string) {
	s.store.Delete(uri)
	s.mu.Lock()
	s.assoc.Remove(uri)
	s.mu.Unlock()
}

// ModifySchemaContent applies a JSON patch to a registered schema's
// content, invalidating dependent resolutions.
func (s *Service) ModifySchemaContent(ctx context.Context, uri string, patch []byte) error {
	return s.store.PatchContent(ctx, uri, patch)
}

// DeleteSchemaContent removes the named pointer paths from a
// registered schema's content.
func (s *Service) DeleteSchemaContent(ctx context.Context, uri string, pointers []string) error {
	return s.store.RemoveContent(ctx, uri, pointers)
}

// Parse converts source text into a document. Thin wrapper so hosts
// need not import the parse package directly.
func (s *Service) Parse(src []byte) (*parse.Document, error) {
	return parse.Parse(src)
}

func (s *Service) snapshot() (Settings, *schema.Index, map[string]bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, s.assoc, s.customTags
}

var modelineRe = regexp.MustCompile(`^#\s*yaml-language-server\s*:\s*\$schema=(\S+)`)

// modelineURI scans leading comment lines for a declared schema URI.
func modelineURI(src []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(src))
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if line[0] != '#' {
			return ""
		}
		if m := modelineRe.FindSubmatch(line); m != nil {
			return string(m[1])
		}
	}
	return ""
}

// candidateURIs computes the candidate root schemas for one document
// root: a declared modeline URI first, then the association index.
func (s *Service) candidateURIs(ix *schema.Index, location string, src []byte, root *ir.Node) []string {
	var uris []string
	seen := map[string]bool{}
	if uri := modelineURI(src); uri != "" {
		uris = append(uris, uri)
		seen[uri] = true
	}
	for _, uri := range ix.Candidates(location, root) {
		if !seen[uri] {
			seen[uri] = true
			uris = append(uris, uri)
		}
	}
	return uris
}

// resolveCandidates resolves each candidate URI, collecting the roots
// that resolved and a note for each that did not.
func (s *Service) resolveCandidates(ctx context.Context, uris []string) ([]*schema.Resolved, []error) {
	var res []*schema.Resolved
	var errs []error
	for _, uri := range uris {
		r, err := s.resolver.Resolve(ctx, uri)
		if err != nil {
			if debug.Store() {
				debug.Logf("language: schema %s unavailable: %v\n", uri, err)
			}
			errs = append(errs, err)
			continue
		}
		res = append(res, r)
	}
	return res, errs
}
