package ir

import "fmt"

type Kind int

const (
	NullKind Kind = iota
	BoolKind
	NumberKind
	StringKind
	MappingKind
	SequenceKind
	AliasKind
)

func (k Kind) String() string {
	s, ok := map[Kind]string{
		NullKind:     "Null",
		BoolKind:     "Bool",
		NumberKind:   "Number",
		StringKind:   "String",
		MappingKind:  "Mapping",
		SequenceKind: "Sequence",
		AliasKind:    "Alias",
	}[k]
	if ok {
		return s
	}
	return "<unknown kind>"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(d []byte) error {
	kk, ok := map[string]Kind{
		"Null":     NullKind,
		"Bool":     BoolKind,
		"Number":   NumberKind,
		"String":   StringKind,
		"Mapping":  MappingKind,
		"Sequence": SequenceKind,
		"Alias":    AliasKind,
	}[string(d)]
	if !ok {
		return fmt.Errorf("unrecognized kind %q", d)
	}
	*k = kk
	return nil
}

func Kinds() []Kind {
	return []Kind{
		NullKind,
		BoolKind,
		NumberKind,
		StringKind,
		MappingKind,
		SequenceKind,
		AliasKind,
	}
}

func (k Kind) IsScalar() bool {
	switch k {
	case MappingKind, SequenceKind, AliasKind:
		return false
	default:
		return true
	}
}

// SchemaType returns the JSON Schema type name this kind corresponds to.
func (k Kind) SchemaType() string {
	switch k {
	case NullKind:
		return "null"
	case BoolKind:
		return "boolean"
	case NumberKind:
		return "number"
	case StringKind:
		return "string"
	case MappingKind:
		return "object"
	case SequenceKind:
		return "array"
	default:
		return ""
	}
}
