package columns

import (
	"formflat/internal/form"
)

// Kind tells where a column came from.
type Kind int

const (
	KindReserved Kind = iota // leading system column
	KindQuestion             // derived from a field record
	KindExtra                // trailing free-form column
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindReserved:
		return "reserved"
	case KindQuestion:
		return "question"
	case KindExtra:
		return "extra"
	default:
		return "unknown"
	}
}

// Column is one header of the flat schema.
type Column struct {
	Header string
	Kind   Kind
	// Field is the record behind a question column; nil otherwise.
	Field *form.FieldRecord
	// Index is the position of Field in the records given to Assign.
	Index int
}

// ChoiceColumn lists the codes offered for one enum-bearing header.
type ChoiceColumn struct {
	Header string   `json:"header"`
	Codes  []string `json:"codes"`
}

// Schema is the ordered, unique header list with per-header metadata.
type Schema struct {
	Headers []string
	Columns []Column
	meta    map[string]*form.FieldRecord
}

func (s *Schema) add(c Column) {
	s.Headers = append(s.Headers, c.Header)
	s.Columns = append(s.Columns, c)
	s.meta[c.Header] = c.Field
}

// Meta returns the record behind header. The record is nil for reserved and
// extra columns; ok is false for headers not in the schema.
func (s *Schema) Meta(header string) (*form.FieldRecord, bool) {
	rec, ok := s.meta[header]
	return rec, ok
}

// QuestionHeaders returns the headers derived from field records, in order.
func (s *Schema) QuestionHeaders() []string {
	var out []string

	for _, c := range s.Columns {
		if c.Kind == KindQuestion {
			out = append(out, c.Header)
		}
	}

	return out
}

// Questions returns the question columns in order.
func (s *Schema) Questions() []Column {
	var out []Column

	for _, c := range s.Columns {
		if c.Kind == KindQuestion {
			out = append(out, c)
		}
	}

	return out
}

// ChoiceColumns returns, in header order, the codes of every question column
// whose field resolved a non-empty choice list.
func (s *Schema) ChoiceColumns() []ChoiceColumn {
	var out []ChoiceColumn

	for _, c := range s.Columns {
		if c.Field == nil || !c.Field.LogicalType.IsEnum() {
			continue
		}

		if codes := c.Field.ChoiceCodes(); len(codes) > 0 {
			out = append(out, ChoiceColumn{Header: c.Header, Codes: codes})
		}
	}

	return out
}
