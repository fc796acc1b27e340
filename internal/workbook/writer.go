package workbook

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"formflat/internal/columns"
	"formflat/internal/flatten"
	"formflat/internal/form"
)

// Sheet names.
const (
	SheetTemplate   = "template"
	SheetChoices    = "choices"
	SheetCatalog    = "fields_catalog"
	SheetXMLFormula = "XML_Formula"
)

const (
	// DefaultDropdownRows is the last template row covered by dropdowns.
	DefaultDropdownRows = 1000

	commentAuthor = "formflat"
	minColWidth   = 12
	maxColWidth   = 48
)

var (
	catalogHeaders = []any{"name", "label", "path", "logical_type", "required", "enum_list_name", "enum_choices_codes"}
	xmlHeaders     = []any{"name", "path", "start_tag", "value_expr", "end_tag"}
)

// Options configures the written workbook.
type Options struct {
	DropdownRows int
}

// Write builds the workbook for res and saves it to path.
func Write(path string, res *flatten.Result, opts Options) error {
	f, err := Build(res, opts)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}

	return nil
}

// Build assembles the workbook in memory.
func Build(res *flatten.Result, opts Options) (*excelize.File, error) {
	if opts.DropdownRows < 2 {
		opts.DropdownRows = DefaultDropdownRows
	}

	f := excelize.NewFile()

	steps := []func(*excelize.File, *flatten.Result, Options) error{
		writeTemplate,
		writeChoices,
		writeCatalog,
		writeXMLFormula,
	}

	for _, step := range steps {
		if err := step(f, res, opts); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

func writeTemplate(f *excelize.File, res *flatten.Result, _ Options) error {
	if err := f.SetSheetName("Sheet1", SheetTemplate); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}

	if err := setRow(f, SheetTemplate, 1, toRow(res.Schema.Headers)); err != nil {
		return err
	}

	if err := f.SetPanes(SheetTemplate, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header row: %w", err)
	}

	for i, col := range res.Schema.Columns {
		letter, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}

		if text := HeaderComment(col); text != "" {
			if err := f.AddComment(SheetTemplate, excelize.Comment{
				Cell:   letter + "1",
				Author: commentAuthor,
				Text:   text,
			}); err != nil {
				return fmt.Errorf("failed to add comment to %s: %w", col.Header, err)
			}
		}

		if err := f.SetColWidth(SheetTemplate, letter, letter, ColumnWidth(col)); err != nil {
			return fmt.Errorf("failed to set width of %s: %w", col.Header, err)
		}
	}

	return nil
}

func writeChoices(f *excelize.File, res *flatten.Result, opts Options) error {
	choiceCols := res.Schema.ChoiceColumns()
	if len(choiceCols) == 0 {
		return nil
	}

	if _, err := f.NewSheet(SheetChoices); err != nil {
		return fmt.Errorf("failed to add %s sheet: %w", SheetChoices, err)
	}

	position := make(map[string]int, len(res.Schema.Headers))
	for i, h := range res.Schema.Headers {
		position[h] = i + 1
	}

	for i, cc := range choiceCols {
		letter, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}

		values := make([]any, 0, len(cc.Codes)+1)
		values = append(values, cc.Header)

		for _, code := range cc.Codes {
			values = append(values, code)
		}

		if err := f.SetSheetCol(SheetChoices, letter+"1", &values); err != nil {
			return fmt.Errorf("failed to write choices of %s: %w", cc.Header, err)
		}

		target, err := excelize.ColumnNumberToName(position[cc.Header])
		if err != nil {
			return err
		}

		dv := excelize.NewDataValidation(true)
		dv.Sqref = fmt.Sprintf("%s2:%s%d", target, target, opts.DropdownRows)
		dv.SetSqrefDropList(fmt.Sprintf("%s!$%s$2:$%s$%d", SheetChoices, letter, letter, len(cc.Codes)+1))

		if err := f.AddDataValidation(SheetTemplate, dv); err != nil {
			return fmt.Errorf("failed to add dropdown for %s: %w", cc.Header, err)
		}
	}

	return nil
}

func writeCatalog(f *excelize.File, res *flatten.Result, _ Options) error {
	if _, err := f.NewSheet(SheetCatalog); err != nil {
		return fmt.Errorf("failed to add %s sheet: %w", SheetCatalog, err)
	}

	if err := setRow(f, SheetCatalog, 1, catalogHeaders); err != nil {
		return err
	}

	for i, r := range res.Catalog() {
		row := []any{r.Name, r.Label, r.Path, string(r.LogicalType), r.Required, r.ListID, r.Codes}
		if err := setRow(f, SheetCatalog, i+2, row); err != nil {
			return err
		}
	}

	return nil
}

func writeXMLFormula(f *excelize.File, res *flatten.Result, _ Options) error {
	if _, err := f.NewSheet(SheetXMLFormula); err != nil {
		return fmt.Errorf("failed to add %s sheet: %w", SheetXMLFormula, err)
	}

	if err := setRow(f, SheetXMLFormula, 1, xmlHeaders); err != nil {
		return err
	}

	for i, t := range res.XMLRows() {
		row := []any{t.Name, t.Path, t.OpenTag, t.ValueExpression, t.CloseTag}
		if err := setRow(f, SheetXMLFormula, i+2, row); err != nil {
			return err
		}
	}

	return nil
}

// HeaderComment returns the note attached to a template header cell.
func HeaderComment(col columns.Column) string {
	switch col.Kind {
	case columns.KindReserved:
		return "System meta field (auto-filled at submit time if left blank)."
	case columns.KindExtra:
		return "Custom column (not in schema)."
	}

	rec := col.Field
	if rec == nil {
		return ""
	}

	var lines []string

	if rec.Label != "" {
		lines = append(lines, "Label: "+rec.Label)
	}

	if p := rec.PathString(); p != rec.Name() {
		lines = append(lines, "Path: "+p)
	}

	lines = append(lines, "Type: "+rec.LogicalType.String())

	required := "No"
	if rec.Required {
		required = "Yes"
	}

	lines = append(lines, "Required: "+required)

	if codes := rec.ChoiceCodes(); len(codes) > 0 {
		lines = append(lines, "Choices (codes): "+strings.Join(codes, ", "))

		if rec.LogicalType == form.TypeEnumList {
			lines = append(lines, "For select_multiple, enter space-separated codes (e.g., a b c).")
		}
	}

	if rec.Diagnostic != "" {
		lines = append(lines, "Note: "+rec.Diagnostic)
	}

	return strings.Join(lines, "\n")
}

// ColumnWidth sizes a template column to fit its header and label.
func ColumnWidth(col columns.Column) float64 {
	width := utf8.RuneCountInString(col.Header)
	if col.Field != nil {
		width = max(width, utf8.RuneCountInString(col.Field.Label))
	}

	return float64(min(max(minColWidth, width+2), maxColWidth))
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}

	return nil
}

func toRow(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}

	return out
}
