package choices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formflat/internal/form"
	"formflat/internal/label"
)

func TestIndex_PreservesSourceOrder(t *testing.T) {
	entries := []form.ChoiceEntry{
		{ListID: "yesno", Value: "1", Label: form.ScalarLabel("Yes")},
		{ListID: "region", Value: "n", Label: form.VariantLabel(form.ScalarLabel("North"))},
		{ListID: "yesno", Value: "0", Label: form.ScalarLabel("No")},
		{ListID: "", Value: "orphan"},
	}

	table := Index(entries, label.NewResolver(nil))

	yesno, ok := table.Lookup("yesno")
	require.True(t, ok)
	assert.Equal(t, []form.Choice{{Value: "1", Label: "Yes"}, {Value: "0", Label: "No"}}, yesno)

	region, ok := table.Lookup("region")
	require.True(t, ok)
	assert.Equal(t, []form.Choice{{Value: "n", Label: "North"}}, region)
}

func TestTable_LookupMissing(t *testing.T) {
	table := Index(nil, label.NewResolver(nil))

	list, ok := table.Lookup("region")
	assert.False(t, ok)
	assert.Nil(t, list)
}

func TestTable_LookupReturnsCopy(t *testing.T) {
	table := Index([]form.ChoiceEntry{{ListID: "l", Value: "a"}}, label.NewResolver(nil))

	first, _ := table.Lookup("l")
	first[0].Value = "mutated"

	second, _ := table.Lookup("l")
	assert.Equal(t, "a", second[0].Value)
}

func TestTable_Suggest(t *testing.T) {
	table := Index([]form.ChoiceEntry{
		{ListID: "yesno", Value: "1"},
		{ListID: "districts", Value: "d1"},
	}, label.NewResolver(nil))

	assert.Equal(t, []string{"yesno"}, table.Suggest("yes_no"))
	assert.Empty(t, table.Suggest("crops"))
}
