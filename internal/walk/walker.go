package walk

import (
	"fmt"
	"strings"

	"formflat/internal/choices"
	"formflat/internal/classify"
	"formflat/internal/diagnostic"
	"formflat/internal/form"
	"formflat/internal/label"
	"formflat/internal/match"
)

// Options configures a Walker.
type Options struct {
	// PreferredLocales is the ordered list of locale keys tried when a label
	// is keyed by locale. Nil selects label.DefaultPreferredLocales.
	PreferredLocales []string
}

// Walker turns form content into ordered field records.
type Walker struct {
	resolver *label.Resolver
}

// Result holds the records emitted by a walk and what was noticed on the way.
type Result struct {
	Fields      []form.FieldRecord
	Diagnostics diagnostic.Diagnostics
}

// New creates a Walker.
func New(opts Options) *Walker {
	return &Walker{resolver: label.NewResolver(opts.PreferredLocales)}
}

// walkState is the per-invocation state threaded through each step.
type walkState struct {
	open   *scope
	table  *choices.Table
	result *Result
}

// Walk flattens content. Identical input always yields an identical result.
func (w *Walker) Walk(content form.Content) *Result {
	st := walkState{
		table:  choices.Index(content.Choices, w.resolver),
		result: &Result{},
	}

	for i, node := range content.Survey {
		st.open = w.step(st, i, node)
	}

	if st.open.Depth() > 0 {
		st.result.Diagnostics.AddInfo(diagnostic.CodeUnclosedScope,
			fmt.Sprintf("%d scope(s) still open at end of survey", st.open.Depth()),
			-1, st.open.String())
	}

	return st.result
}

// step applies one node and returns the resulting scope stack.
func (w *Walker) step(st walkState, index int, node form.Node) *scope {
	diags := &st.result.Diagnostics

	switch classify.Structural(node.Type) {
	case classify.MarkerBegin:
		return st.open.push(w.scopeName(index, node))

	case classify.MarkerEnd:
		parent, ok := st.open.pop()
		if !ok {
			diags.AddWarning(diagnostic.CodeUnbalancedEnd,
				fmt.Sprintf("%q with no open group or repeat", strings.TrimSpace(node.Type)), index, "")
		}

		return parent

	case classify.MarkerMetadata:
		diags.AddInfo(diagnostic.CodeMetadataSkipped,
			fmt.Sprintf("metadata question %q is collected automatically", strings.TrimSpace(node.Type)),
			index, st.open.String())

		return st.open
	}

	name := node.ExtractName()
	if name == "" {
		diags.AddWarning(diagnostic.CodeMissingName,
			fmt.Sprintf("%q node has no name; skipped", strings.TrimSpace(node.Type)), index, st.open.String())

		return st.open
	}

	st.result.Fields = append(st.result.Fields, w.record(st, index, node, name))

	return st.open
}

// record builds the field record for a data-bearing node.
func (w *Walker) record(st walkState, index int, node form.Node, name string) form.FieldRecord {
	diags := &st.result.Diagnostics
	rawType := strings.TrimSpace(node.Type)
	explicit := strings.TrimSpace(node.ListName)

	rec := form.FieldRecord{
		Path:        st.open.path(name),
		Label:       w.resolver.Resolve(node.Label),
		RawType:     rawType,
		LogicalType: classify.Classify(rawType, explicit != ""),
		Required:    bool(node.Required),
	}

	fieldPath := rec.PathString()

	if rec.LogicalType == form.TypeUnknown {
		diags.AddInfo(diagnostic.CodeUnknownType,
			fmt.Sprintf("unrecognized type %q classified as unknown", rawType), index, fieldPath)
	}

	if !rec.LogicalType.IsEnum() {
		return rec
	}

	rec.ChoiceListID = classify.ListID(rawType, explicit)
	if rec.ChoiceListID == "" {
		rec.Diagnostic = "No list name found for this select."
		diags.AddWarning(diagnostic.CodeMissingListName, rec.Diagnostic, index, fieldPath)

		return rec
	}

	list, ok := st.table.Lookup(rec.ChoiceListID)
	if !ok {
		rec.Diagnostic = fmt.Sprintf("Choices not found for list '%s'.", rec.ChoiceListID)
		diags.AddWarning(diagnostic.CodeChoicesNotFound, rec.Diagnostic, index, fieldPath,
			st.table.Suggest(rec.ChoiceListID)...)

		return rec
	}

	rec.Choices = list

	return rec
}

// scopeName names a group or repeat: its own name, else a slug of its label,
// else a positional placeholder such as "group_3".
func (w *Walker) scopeName(index int, node form.Node) string {
	if name := node.ExtractName(); name != "" {
		return name
	}

	if slug := match.Slug(w.resolver.Resolve(node.Label)); slug != "" {
		return slug
	}

	return fmt.Sprintf("%s_%d", classify.Scope(node.Type), index+1)
}
