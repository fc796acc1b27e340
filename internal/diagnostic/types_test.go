package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "unknown", Severity(42).String())
}

func TestDiagnostics_AddAndCount(t *testing.T) {
	var d Diagnostics

	d.AddInfo(CodeMetadataSkipped, "skipped", 0, "start")
	d.AddWarning(CodeChoicesNotFound, "Choices not found for list 'yes_no'.", 3, "grp/q1", "yesno")
	d.AddWarning(CodeMissingName, "node has no name", 4, "")

	assert.False(t, d.HasErrors())
	require.NoError(t, d.Error())
	assert.Equal(t, 1, d.Count(CodeChoicesNotFound))
	assert.Len(t, d.All(), 3)
	assert.Equal(t, SeverityWarning, d.All()[0].Severity)

	d.AddError("boom", "bad", -1, "")
	assert.True(t, d.HasErrors())
	assert.EqualError(t, d.Error(), "[boom] bad")
}

func TestDiagnostic_String(t *testing.T) {
	d := Diagnostic{
		Code:        CodeChoicesNotFound,
		Message:     "Choices not found for list 'yes_no'.",
		Node:        3,
		FieldPath:   "grp/q1",
		Suggestions: []string{"yesno"},
	}

	assert.Equal(t,
		"[node 3] grp/q1: [choices_not_found] Choices not found for list 'yes_no'. (did you mean yesno?)",
		d.String())
}

func TestDiagnostics_Merge(t *testing.T) {
	var a, b Diagnostics

	a.AddInfo("x", "one", -1, "")
	b.AddWarning("y", "two", -1, "")
	a.Merge(b)

	assert.Len(t, a.Infos, 1)
	assert.Len(t, a.Warnings, 1)
}
