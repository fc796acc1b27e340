package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"formflat/internal/form"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		rawType  string
		explicit bool
		expected form.LogicalType
	}{
		{"text", false, form.TypeString},
		{" integer ", false, form.TypeInteger},
		{"decimal", false, form.TypeNumber},
		{"range", false, form.TypeNumber},
		{"image", false, form.TypeBinary},
		{"acknowledge", false, form.TypeBoolean},
		{"calculate", false, form.TypeCalculated},
		{"note", false, form.TypeNote},
		{"select_one", true, form.TypeEnum},
		{"select_one yesno", false, form.TypeEnum},
		{"select_one_from_file villages.csv", false, form.TypeEnum},
		{"select_multiple", true, form.TypeEnumList},
		{"select_multiple crops", false, form.TypeEnumList},
		{"rank", true, form.TypeEnum},
		{"select_oneyesno", false, form.TypeUnknown},
		{"xml-external", false, form.TypeUnknown},
		{"", false, form.TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.rawType, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.rawType, tt.explicit))
		})
	}
}

func TestClassify_TableIsClosed(t *testing.T) {
	for raw, lt := range Table() {
		assert.True(t, lt.Valid(), "raw type %q maps outside the closed set", raw)
		assert.Equal(t, lt, Classify(raw, false))
	}
}

func TestClassify_Total(t *testing.T) {
	inputs := []string{"", " ", "begin_group", "??", "select_one ", "TEXT", "geopoint extra", "\x00"}

	for _, in := range inputs {
		for _, explicit := range []bool{false, true} {
			assert.True(t, Classify(in, explicit).Valid(), "input %q", in)
		}
	}
}

func TestListID(t *testing.T) {
	tests := []struct {
		rawType  string
		explicit string
		expected string
	}{
		{"select_one yesno", "", "yesno"},
		{"select_multiple crops or_other", "", "crops"},
		{"select_one", " region ", "region"},
		{"select_one yesno", "override", "override"},
		{"select_one_from_file villages.csv", "", "villages.csv"},
		{"select_one", "", ""},
		{"text", "", ""},
		{"text notalist", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.rawType, func(t *testing.T) {
			assert.Equal(t, tt.expected, ListID(tt.rawType, tt.explicit))
		})
	}
}

func TestStructural(t *testing.T) {
	assert.Equal(t, MarkerBegin, Structural("begin_group"))
	assert.Equal(t, MarkerBegin, Structural("Begin  Repeat"))
	assert.Equal(t, MarkerEnd, Structural("end_repeat"))
	assert.Equal(t, MarkerEnd, Structural("end group"))
	assert.Equal(t, MarkerMetadata, Structural("start"))
	assert.Equal(t, MarkerMetadata, Structural("deviceid"))
	assert.Equal(t, MarkerNone, Structural("text"))
	assert.Equal(t, MarkerNone, Structural(""))

	assert.Equal(t, ScopeRepeat, Scope("begin_repeat"))
	assert.Equal(t, ScopeGroup, Scope("begin_group"))
	assert.Equal(t, "metadata", MarkerMetadata.String())
}
