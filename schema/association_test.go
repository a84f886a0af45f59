package schema

import (
	"testing"

	"github.com/yamlkit/yls/ir"
)

func TestCandidatesFileMatch(t *testing.T) {
	ix := NewIndex()
	if err := ix.Add(Rule{URI: "test://deploy", FileMatch: []string{"*.deploy.yaml"}}); err != nil {
		t.Fatal(err)
	}
	if err := ix.Add(Rule{URI: "test://generic", FileMatch: []string{"**/config/*.yaml"}}); err != nil {
		t.Fatal(err)
	}
	got := ix.Candidates("file:///work/app.deploy.yaml", nil)
	if len(got) != 1 || got[0] != "test://deploy" {
		t.Errorf("candidates = %v", got)
	}
	got = ix.Candidates("file:///work/config/app.yaml", nil)
	if len(got) != 1 || got[0] != "test://generic" {
		t.Errorf("candidates = %v", got)
	}
	if got = ix.Candidates("file:///work/other.yaml", nil); len(got) != 0 {
		t.Errorf("candidates = %v", got)
	}
}

func TestCandidatesPriorityAndDedup(t *testing.T) {
	ix := NewIndex()
	_ = ix.Add(Rule{URI: "test://low", FileMatch: []string{"*.yaml"}})
	_ = ix.Add(Rule{URI: "test://high", FileMatch: []string{"*.yaml"}, Priority: 10})
	_ = ix.Add(Rule{URI: "test://low", FileMatch: []string{"**/x.yaml"}})
	got := ix.Candidates("a/x.yaml", nil)
	if len(got) != 2 || got[0] != "test://high" || got[1] != "test://low" {
		t.Errorf("candidates = %v", got)
	}
}

func TestKubernetesProvider(t *testing.T) {
	p := &KubernetesProvider{}
	root := ir.FromKeyVals([]ir.KeyVal{
		{Key: ir.FromString("apiVersion"), Val: ir.FromString("apps/v1")},
		{Key: ir.FromString("kind"), Val: ir.FromString("Deployment")},
	})
	uri, ok := p.SchemaURI("file:///m.yaml", root)
	if !ok || uri != "kubernetes://schema/apps/v1/deployment" {
		t.Errorf("uri = %q ok = %v", uri, ok)
	}
	if _, ok := p.SchemaURI("file:///m.yaml", ir.FromKeyVals(nil)); ok {
		t.Errorf("provider matched a document without discriminators")
	}
}

func TestExprProvider(t *testing.T) {
	p, err := NewExprProvider(`doc.kind == "Pipeline" ? "test://pipeline" : nil`)
	if err != nil {
		t.Fatal(err)
	}
	root := ir.FromKeyVals([]ir.KeyVal{
		{Key: ir.FromString("kind"), Val: ir.FromString("Pipeline")},
	})
	uri, ok := p.SchemaURI("p.yaml", root)
	if !ok || uri != "test://pipeline" {
		t.Errorf("uri = %q ok = %v", uri, ok)
	}
	other := ir.FromKeyVals([]ir.KeyVal{
		{Key: ir.FromString("kind"), Val: ir.FromString("Other")},
	})
	if _, ok := p.SchemaURI("p.yaml", other); ok {
		t.Errorf("expression matched unexpected document")
	}
}

func TestProviderContributesAfterRules(t *testing.T) {
	ix := NewIndex()
	_ = ix.Add(Rule{URI: "test://static", FileMatch: []string{"*.yaml"}})
	ix.AddProvider(ProviderFunc(func(location string, root *ir.Node) (string, bool) {
		return "test://dynamic", true
	}))
	got := ix.Candidates("a.yaml", nil)
	if len(got) != 2 || got[0] != "test://static" || got[1] != "test://dynamic" {
		t.Errorf("candidates = %v", got)
	}
}
