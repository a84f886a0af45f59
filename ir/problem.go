package ir

import "github.com/yamlkit/yls/token"

// Problem codes. Stable strings so hosts can key behavior off them.
const (
	CodeInvalidType       = "invalid_type"
	CodeRequired          = "required"
	CodeUnknownKey        = "unknown_key"
	CodeDuplicateKey      = "duplicate_key"
	CodeInvalidEnum       = "invalid_enum"
	CodePattern           = "pattern"
	CodeTooSmall          = "too_small"
	CodeTooBig            = "too_big"
	CodeMultipleOf        = "multiple_of"
	CodeTooShort          = "too_short"
	CodeTooLong           = "too_long"
	CodeTooFewItems       = "too_few_items"
	CodeTooManyItems      = "too_many_items"
	CodeTooFewProps       = "too_few_properties"
	CodeTooManyProps      = "too_many_properties"
	CodeNotMatched        = "not_matched"
	CodeUnionAmbiguous    = "union_ambiguous"
	CodeUnionNoMatch      = "union_no_match"
	CodeUnresolvedAlias   = "unresolved_alias"
	CodeUnknownTag        = "unknown_tag"
	CodeDeprecated        = "deprecated"
	CodeSchemaUnavailable = "schema_unavailable"
	CodeRefNotFound       = "ref_not_found"
	CodeParseError        = "parse_error"
)

type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "<unknown severity>"
	}
}

// Problem is a single finding against a document node, either
// structural (duplicate key, unresolved alias) or schema driven.
type Problem struct {
	Code     string
	Message  string
	Severity Severity
	Range    token.Range
}
