package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"formflat/internal/columns"
	"formflat/internal/common"
	"formflat/internal/diagnostic"
	"formflat/internal/flatten"
	"formflat/internal/form"
	"formflat/internal/xmlfrag"
)

type diagnosticView struct {
	Severity    string   `json:"severity"`
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Node        int      `json:"node"`
	FieldPath   string   `json:"field_path,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// columnView ties a header to its kind and, for question columns, to the
// position of its record in fields.
type columnView struct {
	Header     string `json:"header"`
	Kind       string `json:"kind"`
	FieldIndex *int   `json:"field_index,omitempty"`
}

type flattenResponse struct {
	UID           string                 `json:"uid,omitempty"`
	Name          string                 `json:"name,omitempty"`
	Headers       []string               `json:"headers"`
	Columns       []columnView           `json:"columns"`
	Fields        []form.FieldRecord     `json:"fields"`
	ChoiceColumns []columns.ChoiceColumn `json:"choice_columns"`
	Catalog       []flatten.CatalogRow   `json:"catalog"`
	XMLRows       []xmlfrag.FlatTag      `json:"xml_rows"`
	Diagnostics   []diagnosticView       `json:"diagnostics"`
}

type fragmentsRequest struct {
	Form json.RawMessage     `json:"form"`
	Rows []map[string]string `json:"rows"`
}

type fragmentsResponse struct {
	Headers []string                `json:"headers"`
	Rows    [][]flatten.RowFragment `json:"rows"`
}

// flattenHandler accepts a form definition as JSON, or YAML when the
// content type says so.
func (s *Server) flattenHandler(c *fiber.Ctx) error {
	format := form.FormatJSON
	if ct := strings.ToLower(c.Get(fiber.HeaderContentType)); strings.Contains(ct, "yaml") {
		format = form.FormatYAML
	}

	asset, err := parseForm(c.Body(), format)
	if err != nil {
		return err
	}

	res := s.flattener.Flatten(asset.Content)

	return c.JSON(flattenResponse{
		UID:           asset.UID,
		Name:          asset.Name,
		Headers:       common.NonNil(res.Schema.Headers),
		Columns:       columnViews(res.Schema),
		Fields:        common.NonNil(res.Fields),
		ChoiceColumns: common.NonNil(res.Schema.ChoiceColumns()),
		Catalog:       common.NonNil(res.Catalog()),
		XMLRows:       common.NonNil(res.XMLRows()),
		Diagnostics:   diagnosticViews(res.Diagnostics),
	})
}

func (s *Server) fragmentsHandler(c *fiber.Ctx) error {
	var req fragmentsRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
	}

	if len(req.Form) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "missing form")
	}

	asset, err := parseForm(req.Form, form.FormatJSON)
	if err != nil {
		return err
	}

	res := s.flattener.Flatten(asset.Content)

	out := fragmentsResponse{
		Headers: common.NonNil(res.Schema.Headers),
		Rows:    make([][]flatten.RowFragment, 0, len(req.Rows)),
	}

	for _, row := range req.Rows {
		out.Rows = append(out.Rows, res.FragmentsForRow(row))
	}

	return c.JSON(out)
}

func parseForm(body []byte, format form.Format) (*form.Asset, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "empty form definition")
	}

	asset, err := form.Parse(body, format)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return asset, nil
}

func diagnosticViews(d diagnostic.Diagnostics) []diagnosticView {
	all := d.All()
	out := make([]diagnosticView, 0, len(all))

	for _, x := range all {
		out = append(out, diagnosticView{
			Severity:    x.Severity.String(),
			Code:        x.Code,
			Message:     x.Message,
			Node:        x.Node,
			FieldPath:   x.FieldPath,
			Suggestions: x.Suggestions,
		})
	}

	return out
}

func columnViews(schema *columns.Schema) []columnView {
	out := make([]columnView, 0, len(schema.Columns))

	for _, c := range schema.Columns {
		v := columnView{Header: c.Header, Kind: c.Kind.String()}
		if c.Kind == columns.KindQuestion {
			idx := c.Index
			v.FieldIndex = &idx
		}

		out = append(out, v)
	}

	return out
}
