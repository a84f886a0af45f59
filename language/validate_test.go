package language

import (
	"context"
	"testing"

	"github.com/yamlkit/yls/ir"
)

func TestValidateStructuralOnly(t *testing.T) {
	svc := newService(t, nil)
	diags := svc.Validate(context.Background(), "a.yaml", mustParse(t, "a: 1\na: 2\n"))
	if len(diags) != 1 || diags[0].Code != ir.CodeDuplicateKey {
		t.Errorf("diags = %v", diags)
	}
	if diags[0].SchemaURI != "" {
		t.Errorf("structural diagnostic carries schema URI %q", diags[0].SchemaURI)
	}
}

func TestValidateAgainstAssociatedSchema(t *testing.T) {
	svc := newService(t, map[string]string{
		"test://person": `{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`,
	})
	settings := DefaultSettings()
	settings.Schemas = []SchemaSetting{{URI: "test://person", FileMatch: []string{"*.yaml"}}}
	configure(t, svc, settings)

	diags := svc.Validate(context.Background(), "p.yaml", mustParse(t, "age: 3\n"))
	if len(diags) != 1 {
		t.Fatalf("diags = %v", diags)
	}
	if diags[0].Code != ir.CodeRequired || diags[0].SchemaURI != "test://person" {
		t.Errorf("diag = %+v", diags[0])
	}

	diags = svc.Validate(context.Background(), "p.yaml", mustParse(t, "name: joe\n"))
	if len(diags) != 0 {
		t.Errorf("diags = %v", diags)
	}
}

func TestValidateModelineAssociation(t *testing.T) {
	svc := newService(t, map[string]string{
		"test://m": `{"type": "object", "required": ["kind"]}`,
	})
	configure(t, svc, DefaultSettings())

	src := "# yaml-language-server: $schema=test://m\nother: 1\n"
	diags := svc.Validate(context.Background(), "any.yaml", mustParse(t, src))
	if len(diags) != 1 || diags[0].Code != ir.CodeRequired {
		t.Errorf("diags = %v", diags)
	}
}

func TestValidateDisabled(t *testing.T) {
	svc := newService(t, nil)
	settings := DefaultSettings()
	settings.Validate = false
	configure(t, svc, settings)

	if diags := svc.Validate(context.Background(), "a.yaml", mustParse(t, "a: 1\na: 2\n")); diags != nil {
		t.Errorf("diags = %v", diags)
	}
}

func TestValidateCustomTags(t *testing.T) {
	svc := newService(t, nil)
	doc := mustParse(t, "secret: !vault encrypted\n")

	diags := svc.Validate(context.Background(), "a.yaml", doc)
	if len(diags) != 1 || diags[0].Code != ir.CodeUnknownTag {
		t.Fatalf("diags = %v", diags)
	}

	settings := DefaultSettings()
	settings.CustomTags = []string{"!vault"}
	configure(t, svc, settings)
	if diags := svc.Validate(context.Background(), "a.yaml", doc); len(diags) != 0 {
		t.Errorf("diags = %v", diags)
	}
}

func TestValidatePatchContentInvalidates(t *testing.T) {
	svc := newService(t, nil)
	if err := svc.AddSchema("test://p", []byte(`{"type": "object", "properties": {"a": {}}}`)); err != nil {
		t.Fatal(err)
	}
	settings := DefaultSettings()
	settings.Schemas = []SchemaSetting{{URI: "test://p", FileMatch: []string{"*.yaml"}}}
	configure(t, svc, settings)

	doc := mustParse(t, "a: 1\n")
	if diags := svc.Validate(context.Background(), "x.yaml", doc); len(diags) != 0 {
		t.Fatalf("diags before patch = %v", diags)
	}

	patch := []byte(`[{"op": "add", "path": "/required", "value": ["b"]}]`)
	if err := svc.ModifySchemaContent(context.Background(), "test://p", patch); err != nil {
		t.Fatal(err)
	}
	diags := svc.Validate(context.Background(), "x.yaml", doc)
	if len(diags) != 1 || diags[0].Code != ir.CodeRequired {
		t.Errorf("diags after patch = %v", diags)
	}
}

func TestValidateMultiDocumentStream(t *testing.T) {
	svc := newService(t, map[string]string{
		"test://s": `{"type": "object", "required": ["id"]}`,
	})
	settings := DefaultSettings()
	settings.Schemas = []SchemaSetting{{URI: "test://s", FileMatch: []string{"*.yaml"}}}
	configure(t, svc, settings)

	diags := svc.Validate(context.Background(), "s.yaml",
		mustParse(t, "id: 1\n---\nname: second\n"))
	if len(diags) != 1 || diags[0].Code != ir.CodeRequired {
		t.Errorf("diags = %v", diags)
	}
}

func TestValidateUnavailableSchemaWarns(t *testing.T) {
	svc := newService(t, nil)
	settings := DefaultSettings()
	settings.Schemas = []SchemaSetting{{URI: "test://gone", FileMatch: []string{"*.yaml"}}}
	configure(t, svc, settings)

	diags := svc.Validate(context.Background(), "a.yaml", mustParse(t, "a: 1\n"))
	if len(diags) != 1 {
		t.Fatalf("diags = %v", diags)
	}
	d := diags[0]
	if d.Code != ir.CodeSchemaUnavailable || d.Severity != ir.SeverityWarning {
		t.Errorf("diag = %+v", d)
	}
}

func TestValidateKubernetesProvider(t *testing.T) {
	svc := newService(t, map[string]string{
		"kubernetes://schema/v1/pod": `{"type": "object", "required": ["spec"]}`,
	})
	settings := DefaultSettings()
	settings.IsKubernetes = true
	configure(t, svc, settings)

	diags := svc.Validate(context.Background(), "pod.yaml",
		mustParse(t, "apiVersion: v1\nkind: Pod\n"))
	if len(diags) != 1 || diags[0].Code != ir.CodeRequired {
		t.Errorf("diags = %v", diags)
	}
}
