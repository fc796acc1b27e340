package workbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one filled data row of a template sheet.
type Row struct {
	// Number is the 1-based sheet row, for messages.
	Number int
	Values map[string]string
}

// Sheet is the content of a filled template sheet.
type Sheet struct {
	Name string
	// Headers is the trimmed first row, blanks included, in sheet order.
	Headers []string
	Rows    []Row
}

// ReadSheet reads a filled template sheet; an empty name selects the first
// sheet. The first row holds the headers; rows with every cell blank are
// skipped. Values are trimmed.
func ReadSheet(path, sheet string) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	grid, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	s := sheetFromGrid(grid)
	s.Name = sheet

	return s, nil
}

func sheetFromGrid(grid [][]string) *Sheet {
	s := &Sheet{}
	if len(grid) == 0 {
		return s
	}

	s.Headers = make([]string, len(grid[0]))
	for i, h := range grid[0] {
		s.Headers[i] = strings.TrimSpace(h)
	}

	for i, cells := range grid[1:] {
		values := make(map[string]string, len(s.Headers))
		blank := true

		for j, h := range s.Headers {
			if h == "" {
				continue
			}

			var v string
			if j < len(cells) {
				v = strings.TrimSpace(cells[j])
			}

			if v != "" {
				blank = false
			}

			values[h] = v
		}

		if !blank {
			s.Rows = append(s.Rows, Row{Number: i + 2, Values: values})
		}
	}

	return s
}
