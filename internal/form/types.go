package form

import (
	"strings"
)

// LogicalType is the closed-set classification assigned to a field.
type LogicalType string

const (
	TypeString     LogicalType = "string"
	TypeInteger    LogicalType = "integer"
	TypeNumber     LogicalType = "number"
	TypeDate       LogicalType = "date"
	TypeTime       LogicalType = "time"
	TypeDateTime   LogicalType = "datetime"
	TypeGeopoint   LogicalType = "geopoint"
	TypeGeotrace   LogicalType = "geotrace"
	TypeGeoshape   LogicalType = "geoshape"
	TypeBinary     LogicalType = "binary"
	TypeBoolean    LogicalType = "boolean"
	TypeCalculated LogicalType = "calculated"
	TypeNote       LogicalType = "note"
	TypeRank       LogicalType = "rank"
	TypeEnum       LogicalType = "enum"
	TypeEnumList   LogicalType = "enum[]"
	TypeUnknown    LogicalType = "unknown"
)

var allLogicalTypes = []LogicalType{
	TypeString, TypeInteger, TypeNumber, TypeDate, TypeTime, TypeDateTime,
	TypeGeopoint, TypeGeotrace, TypeGeoshape, TypeBinary, TypeBoolean,
	TypeCalculated, TypeNote, TypeRank, TypeEnum, TypeEnumList, TypeUnknown,
}

// AllLogicalTypes returns every member of the closed set, in declaration order.
func AllLogicalTypes() []LogicalType {
	out := make([]LogicalType, len(allLogicalTypes))
	copy(out, allLogicalTypes)

	return out
}

// Valid reports whether t is a member of the closed set.
func (t LogicalType) Valid() bool {
	for _, lt := range allLogicalTypes {
		if lt == t {
			return true
		}
	}

	return false
}

// IsEnum reports whether t selects from a choice list.
func (t LogicalType) IsEnum() bool {
	return t == TypeEnum || t == TypeEnumList
}

// String returns the logical type name.
func (t LogicalType) String() string {
	return string(t)
}

// Node is one row of the survey sheet: a question or a structural marker.
type Node struct {
	Type     string `json:"type" yaml:"type"`
	Name     string `json:"name" yaml:"name"`
	AutoName string `json:"$autoname" yaml:"$autoname"`
	Label    Label  `json:"label" yaml:"label"`
	Required Flag   `json:"required" yaml:"required"`
	ListName string `json:"select_from_list_name" yaml:"select_from_list_name"`
}

// ExtractName returns the node's name, falling back to the generated
// "$autoname". The result is trimmed and may be empty.
func (n Node) ExtractName() string {
	if name := strings.TrimSpace(n.Name); name != "" {
		return name
	}

	return strings.TrimSpace(n.AutoName)
}

// ChoiceEntry is one row of the choices sheet.
type ChoiceEntry struct {
	ListID string
	Value  string
	Label  Label
}

// Content is the form definition: ordered survey nodes plus choice entries.
type Content struct {
	Survey  []Node        `json:"survey" yaml:"survey"`
	Choices []ChoiceEntry `json:"choices" yaml:"choices"`
}

// Asset is a form definition as published by the server.
type Asset struct {
	UID     string  `json:"uid" yaml:"uid"`
	Name    string  `json:"name" yaml:"name"`
	Content Content `json:"content" yaml:"content"`
}

// Choice is one resolved value/label pair of a choice list.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldRecord is one flattened question. Records are created once per walk
// and are not mutated afterwards.
type FieldRecord struct {
	Path         []string    `json:"path"`
	Label        string      `json:"label"`
	RawType      string      `json:"raw_type"`
	LogicalType  LogicalType `json:"logical_type"`
	ChoiceListID string      `json:"choice_list_id,omitempty"`
	Choices      []Choice    `json:"choices,omitempty"`
	Required     bool        `json:"required"`
	Diagnostic   string      `json:"diagnostic,omitempty"`
}

// Name returns the field's own name (the last path segment).
func (f *FieldRecord) Name() string {
	if len(f.Path) == 0 {
		return ""
	}

	return f.Path[len(f.Path)-1]
}

// Groups returns the enclosing group/repeat names, outermost first.
func (f *FieldRecord) Groups() []string {
	if len(f.Path) == 0 {
		return nil
	}

	return f.Path[:len(f.Path)-1]
}

// PathString returns the path joined with "/".
func (f *FieldRecord) PathString() string {
	return strings.Join(f.Path, "/")
}

// ChoiceCodes returns the non-empty choice values in order.
func (f *FieldRecord) ChoiceCodes() []string {
	var codes []string

	for _, c := range f.Choices {
		if c.Value != "" {
			codes = append(codes, c.Value)
		}
	}

	return codes
}
