package classify

import (
	"strings"
)

// Marker classifies survey nodes that shape the form rather than hold data.
type Marker int

const (
	MarkerNone     Marker = iota // a data-bearing question
	MarkerBegin                  // opens a group or repeat scope
	MarkerEnd                    // closes the innermost scope
	MarkerMetadata               // auto-collected metadata with no data-entry column
)

// String returns a human-readable marker name.
func (m Marker) String() string {
	switch m {
	case MarkerBegin:
		return "begin"
	case MarkerEnd:
		return "end"
	case MarkerMetadata:
		return "metadata"
	default:
		return "none"
	}
}

// ScopeKind names the kind of scope a begin marker opens.
type ScopeKind string

const (
	ScopeGroup  ScopeKind = "group"
	ScopeRepeat ScopeKind = "repeat"
)

var markers = map[string]Marker{
	"begin_group":  MarkerBegin,
	"begin group":  MarkerBegin,
	"begin_repeat": MarkerBegin,
	"begin repeat": MarkerBegin,
	"end_group":    MarkerEnd,
	"end group":    MarkerEnd,
	"end_repeat":   MarkerEnd,
	"end repeat":   MarkerEnd,
	"start":        MarkerMetadata,
	"end":          MarkerMetadata,
	"today":        MarkerMetadata,
	"deviceid":     MarkerMetadata,
	"username":     MarkerMetadata,
	"simserial":    MarkerMetadata,
	"subscriberid": MarkerMetadata,
	"phonenumber":  MarkerMetadata,
	"audit":        MarkerMetadata,
}

// Structural reports how a raw type token shapes the walk.
func Structural(rawType string) Marker {
	return markers[normalizeMarker(rawType)]
}

// Scope returns the kind of scope a begin marker opens.
func Scope(rawType string) ScopeKind {
	if strings.Contains(normalizeMarker(rawType), "repeat") {
		return ScopeRepeat
	}

	return ScopeGroup
}

func normalizeMarker(rawType string) string {
	return strings.Join(strings.Fields(strings.ToLower(rawType)), " ")
}
