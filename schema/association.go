package schema

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/yamlkit/yls/debug"
	"github.com/yamlkit/yls/ir"
)

// Provider resolves a schema for a document from its content or
// identifier, for documents that static file patterns cannot address.
// Implementations must be safe for concurrent use.
type Provider interface {
	SchemaURI(location string, root *ir.Node) (string, bool)
}

// Rule associates documents with a root schema: by file-match globs,
// or bare (matched only when the document names the URI itself).
type Rule struct {
	URI       string
	FileMatch []string
	Priority  int
}

// Index is the ordered association registry. Higher priority rules
// contribute earlier; within one priority, registration order holds.
type Index struct {
	mu        sync.RWMutex
	rules     []Rule
	providers []Provider
}

func NewIndex() *Index {
	return &Index{}
}

func (ix *Index) Add(r Rule) error {
	if r.URI == "" {
		return fmt.Errorf("association rule must name a schema URI")
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.rules = append(ix.rules, r)
	return nil
}

func (ix *Index) Remove(uri string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	res := ix.rules[:0]
	for _, r := range ix.rules {
		if r.URI != uri {
			res = append(res, r)
		}
	}
	ix.rules = res
}

func (ix *Index) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.rules = nil
}

func (ix *Index) AddProvider(p Provider) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.providers = append(ix.providers, p)
}

// Candidates returns the candidate root schema URIs for a document,
// ordered and deduplicated. All candidates apply simultaneously; the
// document is validated against each.
func (ix *Index) Candidates(location string, root *ir.Node) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	type cand struct {
		uri  string
		prio int
		ord  int
	}
	var cands []cand
	for i, r := range ix.rules {
		if !matchLocation(r.FileMatch, location) {
			continue
		}
		cands = append(cands, cand{uri: r.URI, prio: r.Priority, ord: i})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].prio != cands[j].prio {
			return cands[i].prio > cands[j].prio
		}
		return cands[i].ord < cands[j].ord
	})

	var res []string
	seen := map[string]bool{}
	push := func(uri string) {
		if uri == "" || seen[uri] {
			return
		}
		seen[uri] = true
		res = append(res, uri)
	}
	for _, c := range cands {
		push(c.uri)
	}
	for _, p := range ix.providers {
		if uri, ok := p.SchemaURI(location, root); ok {
			if debug.Assoc() {
				debug.Logf("assoc: provider matched %s -> %s\n", location, uri)
			}
			push(uri)
		}
	}
	return res
}

// matchLocation implements fileMatch globs: path.Match style patterns,
// matched against both the full location and its base name, with a
// leading "**/" matching any directory prefix.
func matchLocation(globs []string, location string) bool {
	if len(globs) == 0 {
		return false
	}
	location = strings.TrimPrefix(location, "file://")
	base := path.Base(location)
	for _, g := range globs {
		if g == "" {
			continue
		}
		if strings.HasPrefix(g, "**/") {
			rest := strings.TrimPrefix(g, "**/")
			if ok, _ := path.Match(rest, base); ok {
				return true
			}
			if matchSuffix(rest, location) {
				return true
			}
			continue
		}
		if ok, _ := path.Match(g, location); ok {
			return true
		}
		if !strings.Contains(g, "/") {
			if ok, _ := path.Match(g, base); ok {
				return true
			}
		}
	}
	return false
}

func matchSuffix(pattern, location string) bool {
	segs := strings.Split(location, "/")
	n := strings.Count(pattern, "/") + 1
	if n > len(segs) {
		return false
	}
	tail := strings.Join(segs[len(segs)-n:], "/")
	ok, _ := path.Match(pattern, tail)
	return ok
}

// KubernetesProvider associates manifests by their apiVersion/kind
// discriminator fields, the built-in content-based association used
// when the host flags a document set as Kubernetes manifests.
type KubernetesProvider struct {
	// BaseURI prefixes the generated schema URI. Defaults to
	// "kubernetes://schema".
	BaseURI string
}

func (p *KubernetesProvider) SchemaURI(location string, root *ir.Node) (string, bool) {
	if root == nil {
		return "", false
	}
	apiVersion := ir.Get(root, "apiVersion")
	kind := ir.Get(root, "kind")
	if apiVersion == nil || kind == nil {
		return "", false
	}
	if apiVersion.Deref().Kind != ir.StringKind || kind.Deref().Kind != ir.StringKind {
		return "", false
	}
	base := p.BaseURI
	if base == "" {
		base = "kubernetes://schema"
	}
	return fmt.Sprintf("%s/%s/%s", base,
		strings.ToLower(apiVersion.Deref().String),
		strings.ToLower(kind.Deref().String)), true
}

// ExprProvider evaluates a configured expression over the document to
// produce a schema URI. The expression sees `filename` and `doc` (the
// document root lowered to plain values) and yields a URI string, or
// anything else for no association.
type ExprProvider struct {
	src string
	prg *vm.Program
}

func NewExprProvider(src string) (*ExprProvider, error) {
	prg, err := expr.Compile(src, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compiling schema expression: %w", err)
	}
	return &ExprProvider{src: src, prg: prg}, nil
}

func (p *ExprProvider) SchemaURI(location string, root *ir.Node) (string, bool) {
	env := map[string]any{
		"filename": location,
		"doc":      ir.ToAny(root),
	}
	out, err := expr.Run(p.prg, env)
	if err != nil {
		if debug.Assoc() {
			debug.Logf("assoc: expression %q failed: %v\n", p.src, err)
		}
		return "", false
	}
	uri, ok := out.(string)
	return uri, ok && uri != ""
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(location string, root *ir.Node) (string, bool)

func (f ProviderFunc) SchemaURI(location string, root *ir.Node) (string, bool) {
	return f(location, root)
}
