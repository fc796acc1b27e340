package workbook

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSheetFromGrid(t *testing.T) {
	grid := [][]string{
		{"start", " q1 ", "", "q2"},
		{"", "a", "ignored", ""},
		{},
		{"", "  ", "x"},
		{"s", "b", "", " c "},
	}

	s := sheetFromGrid(grid)
	assert.Equal(t, []string{"start", "q1", "", "q2"}, s.Headers)

	rows := s.Rows
	require.Len(t, rows, 2)
	assert.Equal(t, Row{Number: 2, Values: map[string]string{"start": "", "q1": "a", "q2": ""}}, rows[0])
	assert.Equal(t, Row{Number: 5, Values: map[string]string{"start": "s", "q1": "b", "q2": "c"}}, rows[1])
}

func TestSheetFromGrid_Empty(t *testing.T) {
	empty := sheetFromGrid(nil)
	assert.Nil(t, empty.Headers)
	assert.Nil(t, empty.Rows)

	headersOnly := sheetFromGrid([][]string{{"only", "headers"}})
	assert.Equal(t, []string{"only", "headers"}, headersOnly.Headers)
	assert.Nil(t, headersOnly.Rows)
}

func TestReadSheet_MissingFile(t *testing.T) {
	_, err := ReadSheet(filepath.Join(t.TempDir(), "none.xlsx"), "")
	assert.Error(t, err)
}
