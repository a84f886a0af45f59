package main

import (
	"context"

	json "github.com/goccy/go-json"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/yamlkit/yls/language"
)

// wireSettings mirrors the client configuration shape under the "yaml"
// section. Pointers distinguish absent toggles from explicit false.
type wireSettings struct {
	YAML struct {
		Validate   *bool `json:"validate"`
		Hover      *bool `json:"hover"`
		Completion *bool `json:"completion"`
		Format     struct {
			Enable *bool `json:"enable"`
		} `json:"format"`
		Kubernetes  bool     `json:"isKubernetes"`
		SchemaExpr  string   `json:"schemaExpr"`
		CustomTags  []string `json:"customTags"`
		Indentation string   `json:"indentation"`

		// schema URI -> glob or glob list
		Schemas map[string]any `json:"schemas"`
	} `json:"yaml"`
}

func (s *Server) DidChangeConfiguration(ctx context.Context, params *protocol.DidChangeConfigurationParams) error {
	settings, err := decodeSettings(params.Settings)
	if err != nil {
		s.logger.Warn("ignoring malformed configuration", zap.Error(err))
		return nil
	}
	if err := s.svc.Configure(settings); err != nil {
		s.logger.Warn("configuration rejected", zap.Error(err))
		return nil
	}
	for _, doc := range s.docs.all() {
		s.publishDiagnostics(ctx, doc)
	}
	return nil
}

func decodeSettings(raw interface{}) (language.Settings, error) {
	settings := language.DefaultSettings()
	if raw == nil {
		return settings, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return settings, err
	}
	var wire wireSettings
	if err := json.Unmarshal(data, &wire); err != nil {
		return settings, err
	}

	y := wire.YAML
	if y.Validate != nil {
		settings.Validate = *y.Validate
	}
	if y.Hover != nil {
		settings.Hover = *y.Hover
	}
	if y.Completion != nil {
		settings.Completion = *y.Completion
	}
	if y.Format.Enable != nil {
		settings.Format = *y.Format.Enable
	}
	settings.IsKubernetes = y.Kubernetes
	settings.SchemaExpr = y.SchemaExpr
	settings.CustomTags = y.CustomTags
	if y.Indentation != "" {
		settings.Indentation = y.Indentation
	}
	for uri, globs := range y.Schemas {
		settings.Schemas = append(settings.Schemas, language.SchemaSetting{
			URI:       uri,
			FileMatch: globList(globs),
		})
	}
	return settings, nil
}

func globList(v any) []string {
	switch x := v.(type) {
	case string:
		return []string{x}
	case []any:
		var res []string
		for _, g := range x {
			if s, ok := g.(string); ok {
				res = append(res, s)
			}
		}
		return res
	}
	return nil
}
