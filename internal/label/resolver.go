// Package label normalizes label values of any shape into a display string.
package label

import (
	"strings"

	"formflat/internal/form"
)

// variantSeparator joins the resolved variants of a list label.
const variantSeparator = ", "

// DefaultPreferredLocales are tried in order when a label is keyed by locale.
var DefaultPreferredLocales = []string{"English (en)", "en", "label", "English"}

// Resolver resolves labels using an ordered list of preferred locale keys.
type Resolver struct {
	preferred []string
}

// NewResolver creates a resolver. A nil list selects DefaultPreferredLocales;
// an empty non-nil list disables locale preference.
func NewResolver(preferred []string) *Resolver {
	if preferred == nil {
		preferred = DefaultPreferredLocales
	}

	return &Resolver{preferred: append([]string(nil), preferred...)}
}

// Resolve returns the display string for l. It is total: every shape,
// including an absent label, yields a (possibly empty) trimmed string.
func (r *Resolver) Resolve(l form.Label) string {
	switch l.Kind {
	case form.LabelLocalized:
		return r.resolveLocalized(l.Entries)
	case form.LabelVariants:
		return r.resolveVariants(l.Variants)
	default:
		return strings.TrimSpace(l.Text)
	}
}

func (r *Resolver) resolveLocalized(entries []form.LocalizedEntry) string {
	for _, key := range r.preferred {
		for _, e := range entries {
			if e.Key != key {
				continue
			}

			if v := r.Resolve(e.Value); v != "" {
				return v
			}
		}
	}

	for _, e := range entries {
		if v := r.Resolve(e.Value); v != "" {
			return v
		}
	}

	return ""
}

func (r *Resolver) resolveVariants(variants []form.Label) string {
	parts := make([]string, 0, len(variants))

	for _, v := range variants {
		if s := r.Resolve(v); s != "" {
			parts = append(parts, s)
		}
	}

	return strings.Join(parts, variantSeparator)
}
