package form

// LabelKind discriminates the shapes a label value can take.
type LabelKind uint8

const (
	LabelAbsent    LabelKind = iota // missing or null
	LabelScalar                     // plain string (numbers and booleans are kept as text)
	LabelLocalized                  // mapping keyed by locale
	LabelVariants                   // ordered list of variants
)

// Label is a tagged variant over the label shapes found in form definitions.
type Label struct {
	Kind     LabelKind
	Text     string
	Entries  []LocalizedEntry
	Variants []Label
}

// LocalizedEntry is one locale/value pair of a localized label, in source order.
type LocalizedEntry struct {
	Key   string
	Value Label
}

// ScalarLabel builds a scalar label.
func ScalarLabel(s string) Label {
	return Label{Kind: LabelScalar, Text: s}
}

// LocalizedLabel builds a localized label from ordered entries.
func LocalizedLabel(entries ...LocalizedEntry) Label {
	return Label{Kind: LabelLocalized, Entries: entries}
}

// VariantLabel builds a label from ordered variants.
func VariantLabel(variants ...Label) Label {
	return Label{Kind: LabelVariants, Variants: variants}
}

// Entry builds a localized entry holding a scalar value.
func Entry(key, value string) LocalizedEntry {
	return LocalizedEntry{Key: key, Value: ScalarLabel(value)}
}

// IsZero reports whether the label carries nothing: absent, an empty string,
// or an empty mapping/list.
func (l Label) IsZero() bool {
	switch l.Kind {
	case LabelScalar:
		return l.Text == ""
	case LabelLocalized:
		return len(l.Entries) == 0
	case LabelVariants:
		return len(l.Variants) == 0
	default:
		return true
	}
}
