package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"formflat/internal/workbook"
)

func fillRow(t *testing.T, path string) {
	t.Helper()

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)

	defer f.Close()

	require.NoError(t, f.SetSheetRow(workbook.SheetTemplate, "A2", &[]any{"", "", "Ann"}))
	require.NoError(t, f.Save())
}
