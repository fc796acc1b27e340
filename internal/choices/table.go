// Package choices groups choice entries into ordered lists keyed by list id.
package choices

import (
	"formflat/internal/form"
	"formflat/internal/label"
	"formflat/internal/match"
)

// maxSuggestions caps how many near-miss list ids are offered.
const maxSuggestions = 3

// Table maps list ids to their ordered choices.
type Table struct {
	lists map[string][]form.Choice
	order []string // list ids in first-seen order
}

// Index groups entries by list id, preserving the source order of entries
// that share a list. Entries without a list id are dropped.
func Index(entries []form.ChoiceEntry, resolver *label.Resolver) *Table {
	t := &Table{lists: make(map[string][]form.Choice)}

	for _, e := range entries {
		if e.ListID == "" {
			continue
		}

		if _, seen := t.lists[e.ListID]; !seen {
			t.order = append(t.order, e.ListID)
		}

		t.lists[e.ListID] = append(t.lists[e.ListID], form.Choice{
			Value: e.Value,
			Label: resolver.Resolve(e.Label),
		})
	}

	return t
}

// Lookup returns a copy of the ordered choices for listID, or false when the
// list has no entries.
func (t *Table) Lookup(listID string) ([]form.Choice, bool) {
	list, ok := t.lists[listID]
	if !ok {
		return nil, false
	}

	out := make([]form.Choice, len(list))
	copy(out, list)

	return out, true
}

// Suggest returns known list ids that look like listID, best match first.
func (t *Table) Suggest(listID string) []string {
	return match.RankCandidates(listID, t.order, match.DefaultSuggestThreshold).Names(maxSuggestions)
}
