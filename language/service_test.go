package language

import (
	"context"
	"errors"
	"testing"

	"github.com/yamlkit/yls/ir"
	"github.com/yamlkit/yls/parse"
	"github.com/yamlkit/yls/schema"
)

func staticProvider(uri string) schema.ProviderFunc {
	return func(location string, root *ir.Node) (string, bool) {
		return uri, true
	}
}

func newService(t *testing.T, docs map[string]string) *Service {
	t.Helper()
	return NewService(func(ctx context.Context, uri string) (string, error) {
		content, ok := docs[uri]
		if !ok {
			return "", errors.New("no such schema")
		}
		return content, nil
	})
}

func configure(t *testing.T, svc *Service, settings Settings) {
	t.Helper()
	if err := svc.Configure(settings); err != nil {
		t.Fatal(err)
	}
}

func mustParse(t *testing.T, src string) *parse.Document {
	t.Helper()
	doc, err := parse.Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestModelineURI(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"# yaml-language-server: $schema=test://m\na: 1\n", "test://m"},
		{"#yaml-language-server: $schema=test://m\na: 1\n", "test://m"},
		{"\n# comment\n# yaml-language-server: $schema=test://m\na: 1\n", "test://m"},
		{"a: 1\n# yaml-language-server: $schema=test://m\n", ""},
		{"a: 1\n", ""},
	}
	for _, tt := range tests {
		if got := modelineURI([]byte(tt.src)); got != tt.want {
			t.Errorf("modelineURI(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestConfigureKeepsRegisteredProviders(t *testing.T) {
	svc := newService(t, map[string]string{
		"test://custom": `{"type": "object", "required": ["x"]}`,
	})
	svc.RegisterProvider(staticProvider("test://custom"))
	configure(t, svc, DefaultSettings())

	diags := svc.Validate(context.Background(), "a.yaml", mustParse(t, "y: 1\n"))
	if len(diags) != 1 || diags[0].Code != "required" {
		t.Errorf("diags = %v", diags)
	}
}
