package xmlfrag

import (
	"encoding/xml"
	"strings"

	"formflat/internal/form"
)

// FlatTag is the single-element view of a field used by the XML_Formula
// export.
type FlatTag struct {
	Name            string `json:"name"`
	Path            string `json:"path"`
	OpenTag         string `json:"open_tag"`
	ValueExpression string `json:"value_expression"`
	CloseTag        string `json:"close_tag"`
}

// Fragment returns the nested element for rec holding value. The value is
// escaped as character data.
func Fragment(rec *form.FieldRecord, value string) string {
	var b strings.Builder

	// strings.Builder never returns a write error.
	_ = xml.EscapeText(&b, []byte(value))

	return wrap(rec.Path, b.String())
}

// Template is Fragment with expr inserted verbatim, for placeholder
// expressions such as "{age}".
func Template(rec *form.FieldRecord, expr string) string {
	return wrap(rec.Path, expr)
}

// Flat returns the flat tag triple for rec under the given column header.
func Flat(rec *form.FieldRecord, header string) FlatTag {
	name := rec.Name()

	return FlatTag{
		Name:            name,
		Path:            rec.PathString(),
		OpenTag:         open(name),
		ValueExpression: Expression(header),
		CloseTag:        closing(name),
	}
}

// Expression is the placeholder standing for the cell under header.
func Expression(header string) string {
	return "{" + header + "}"
}

func wrap(path []string, inner string) string {
	if len(path) == 0 {
		return inner
	}

	var b strings.Builder

	for _, seg := range path {
		b.WriteString(open(seg))
	}

	b.WriteString(inner)

	for i := len(path) - 1; i >= 0; i-- {
		b.WriteString(closing(path[i]))
	}

	return b.String()
}

func open(name string) string {
	return "<" + name + ">"
}

func closing(name string) string {
	return "</" + name + ">"
}
