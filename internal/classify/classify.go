package classify

import (
	"strings"

	"formflat/internal/form"
)

// Choice-question prefixes, in XLSForm and KoBo asset spellings.
const (
	selectOne              = "select_one"
	selectMultiple         = "select_multiple"
	selectOneFromFile      = "select_one_from_file"
	selectMultipleFromFile = "select_multiple_from_file"
	orOther                = "or_other"
)

// table maps every recognized non-choice raw type to its logical type.
var table = map[string]form.LogicalType{
	"text":        form.TypeString,
	"string":      form.TypeString,
	"barcode":     form.TypeString,
	"url":         form.TypeString,
	"hidden":      form.TypeString,
	"integer":     form.TypeInteger,
	"int":         form.TypeInteger,
	"decimal":     form.TypeNumber,
	"range":       form.TypeNumber,
	"date":        form.TypeDate,
	"time":        form.TypeTime,
	"datetime":    form.TypeDateTime,
	"geopoint":    form.TypeGeopoint,
	"geotrace":    form.TypeGeotrace,
	"geoshape":    form.TypeGeoshape,
	"image":       form.TypeBinary,
	"audio":       form.TypeBinary,
	"video":       form.TypeBinary,
	"file":        form.TypeBinary,
	"acknowledge": form.TypeBoolean,
	"calculate":   form.TypeCalculated,
	"note":        form.TypeNote,
	"rank":        form.TypeRank,
}

// Table returns a copy of the raw-type table.
func Table() map[string]form.LogicalType {
	out := make(map[string]form.LogicalType, len(table))
	for k, v := range table {
		out[k] = v
	}

	return out
}

// Classify returns the logical type for a raw type token. A multiple-choice
// prefix yields enum[]; a single-choice prefix, or any question carrying an
// explicit choice list, yields enum. Unrecognized tokens yield unknown.
func Classify(rawType string, hasExplicitListID bool) form.LogicalType {
	t := strings.TrimSpace(rawType)

	if hasPrefix(t, selectMultiple) || hasPrefix(t, selectMultipleFromFile) {
		return form.TypeEnumList
	}

	if hasPrefix(t, selectOne) || hasPrefix(t, selectOneFromFile) || hasExplicitListID {
		return form.TypeEnum
	}

	if lt, ok := table[t]; ok {
		return lt
	}

	return form.TypeUnknown
}

// ListID returns the choice list a question selects from: the explicit id
// when present, else the raw-type suffix after a choice prefix, with a
// trailing "or_other" dropped. Returns "" when neither yields a name.
func ListID(rawType, explicit string) string {
	if id := strings.TrimSpace(explicit); id != "" {
		return id
	}

	fields := strings.Fields(rawType)
	if len(fields) < 2 {
		return ""
	}

	switch fields[0] {
	case selectOne, selectMultiple, selectOneFromFile, selectMultipleFromFile:
	default:
		return ""
	}

	rest := fields[1:]
	if len(rest) > 1 && rest[len(rest)-1] == orOther {
		rest = rest[:len(rest)-1]
	}

	return strings.Join(rest, " ")
}

// hasPrefix matches a bare choice keyword or the keyword followed by a list name.
func hasPrefix(t, keyword string) bool {
	return t == keyword || strings.HasPrefix(t, keyword+" ")
}
