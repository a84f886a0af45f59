package schema

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
)

// Schema is the JSON Schema subset the engine consumes. Fields with a
// `json:"-"` tag take several wire shapes and are filled in by
// UnmarshalJSON.
//
// Nil slices and maps mean the keyword is absent and constrains
// nothing; empty ones are present and constrain vacuously.
type Schema struct {
	ID          string             `json:"$id,omitempty"`
	Ref         string             `json:"$ref,omitempty"`
	Defs        map[string]*Schema `json:"$defs,omitempty"`
	Definitions map[string]*Schema `json:"definitions,omitempty"`

	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
	Deprecated  bool   `json:"deprecated,omitempty"`
	Examples    []any  `json:"examples,omitempty"`

	// Type and Types are mutually exclusive: Type holds the single
	// string form, Types the array form.
	Type  string   `json:"-"`
	Types []string `json:"-"`

	Enum    []any  `json:"enum,omitempty"`
	Const   *any   `json:"-"`
	Pattern string `json:"pattern,omitempty"`
	Format  string `json:"format,omitempty"`

	MultipleOf       *float64 `json:"multipleOf,omitempty"`
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum,omitempty"`
	MinLength        *int     `json:"minLength,omitempty"`
	MaxLength        *int     `json:"maxLength,omitempty"`

	MinItems *int `json:"minItems,omitempty"`
	MaxItems *int `json:"maxItems,omitempty"`

	MinProperties *int `json:"minProperties,omitempty"`
	MaxProperties *int `json:"maxProperties,omitempty"`

	Required          []string           `json:"required,omitempty"`
	Properties        map[string]*Schema `json:"properties,omitempty"`
	PatternProperties map[string]*Schema `json:"patternProperties,omitempty"`

	// AdditionalProperties holds the schema form; Allowed the boolean
	// form. Both nil means unconstrained.
	AdditionalProperties        *Schema `json:"-"`
	AdditionalPropertiesAllowed *bool   `json:"-"`

	// Items holds the single-schema form. The positional array form
	// lands in PrefixItems with AdditionalItems covering overflow.
	Items                  *Schema   `json:"-"`
	PrefixItems            []*Schema `json:"prefixItems,omitempty"`
	AdditionalItems        *Schema   `json:"-"`
	AdditionalItemsAllowed *bool     `json:"-"`

	AllOf []*Schema `json:"allOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty"`
	Not   *Schema   `json:"not,omitempty"`

	// Always marks a boolean schema: true accepts everything, false
	// accepts nothing.
	Always *bool `json:"-"`

	// Circular marks the placeholder produced when resolution
	// re-enters a reference already on the resolution chain.
	Circular bool `json:"-"`

	// ResolutionErr marks the placeholder left behind for a reference
	// that could not be dereferenced.
	ResolutionErr *ResolutionError `json:"-"`
}

func (s *Schema) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("true")):
		t := true
		s.Always = &t
		return nil
	case bytes.Equal(data, []byte("false")):
		f := false
		s.Always = &f
		return nil
	}

	type plain Schema
	var aux struct {
		plain
		Type            json.RawMessage `json:"type,omitempty"`
		Const           json.RawMessage `json:"const,omitempty"`
		Items           json.RawMessage `json:"items,omitempty"`
		AdditionalProps json.RawMessage `json:"additionalProperties,omitempty"`
		AdditionalItems json.RawMessage `json:"additionalItems,omitempty"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = Schema(aux.plain)

	if len(aux.Type) > 0 {
		if aux.Type[0] == '[' {
			if err := json.Unmarshal(aux.Type, &s.Types); err != nil {
				return fmt.Errorf("type: %w", err)
			}
		} else if err := json.Unmarshal(aux.Type, &s.Type); err != nil {
			return fmt.Errorf("type: %w", err)
		}
	}
	if len(aux.Const) > 0 {
		var v any
		if err := json.Unmarshal(aux.Const, &v); err != nil {
			return fmt.Errorf("const: %w", err)
		}
		s.Const = &v
	}
	if len(aux.Items) > 0 {
		if aux.Items[0] == '[' {
			var list []*Schema
			if err := json.Unmarshal(aux.Items, &list); err != nil {
				return fmt.Errorf("items: %w", err)
			}
			// draft-07 positional form; prefixItems wins if both given
			if s.PrefixItems == nil {
				s.PrefixItems = list
			}
		} else {
			var one Schema
			if err := json.Unmarshal(aux.Items, &one); err != nil {
				return fmt.Errorf("items: %w", err)
			}
			s.Items = &one
		}
	}
	var err error
	s.AdditionalProperties, s.AdditionalPropertiesAllowed, err = boolOrSchema(aux.AdditionalProps)
	if err != nil {
		return fmt.Errorf("additionalProperties: %w", err)
	}
	s.AdditionalItems, s.AdditionalItemsAllowed, err = boolOrSchema(aux.AdditionalItems)
	if err != nil {
		return fmt.Errorf("additionalItems: %w", err)
	}
	return nil
}

func boolOrSchema(data json.RawMessage) (*Schema, *bool, error) {
	if len(data) == 0 {
		return nil, nil, nil
	}
	switch data[0] {
	case 't':
		t := true
		return nil, &t, nil
	case 'f':
		f := false
		return nil, &f, nil
	default:
		var sub Schema
		if err := json.Unmarshal(data, &sub); err != nil {
			return nil, nil, err
		}
		return &sub, nil, nil
	}
}

// TypeSet returns the declared type names, nil when unconstrained.
func (s *Schema) TypeSet() []string {
	if len(s.Types) > 0 {
		return s.Types
	}
	if s.Type != "" {
		return []string{s.Type}
	}
	return nil
}

// IsPlaceholder reports whether s stands in for something resolution
// could not reach: a cycle or a failed reference.
func (s *Schema) IsPlaceholder() bool {
	return s != nil && (s.Circular || s.ResolutionErr != nil)
}

// Document is one raw schema document: canonical JSON content plus its
// source URI. Immutable once built; edits produce a new Document.
type Document struct {
	URI    string
	Raw    []byte
	Schema *Schema
}

// ParseDocument parses JSON or YAML schema content. YAML is converted
// to JSON first so one decode path serves both.
func ParseDocument(uri string, content []byte) (*Document, error) {
	raw := bytes.TrimSpace(content)
	if !json.Valid(raw) {
		j, err := yaml.YAMLToJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrSchemaUnavailable, uri, err)
		}
		raw = j
	}
	var s Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchemaUnavailable, uri, err)
	}
	return &Document{URI: uri, Raw: raw, Schema: &s}, nil
}
