package flatten

import (
	"strings"

	"formflat/internal/columns"
	"formflat/internal/common"
	"formflat/internal/diagnostic"
	"formflat/internal/form"
	"formflat/internal/walk"
	"formflat/internal/xmlfrag"
)

// DefaultCatalogExcluded are the logical types left out of the catalog and
// XML exports.
var DefaultCatalogExcluded = []form.LogicalType{form.TypeNote}

// codeSeparator joins choice codes in catalog rows.
const codeSeparator = ", "

// Config configures a Flattener. Nil slices select the package defaults of
// the stage that uses them; empty non-nil slices select none.
type Config struct {
	PreferredLocales     []string
	ExcludedTypes        []form.LogicalType
	ExtraColumns         []string
	ReservedColumns      []string
	CatalogExcludedTypes []form.LogicalType
}

// Flattener turns form content into a column schema and its exports.
type Flattener struct {
	walker          *walk.Walker
	namer           *columns.Namer
	catalogExcluded map[form.LogicalType]struct{}
}

// New creates a Flattener.
func New(cfg Config) *Flattener {
	catalogExcluded := cfg.CatalogExcludedTypes
	if catalogExcluded == nil {
		catalogExcluded = DefaultCatalogExcluded
	}

	return &Flattener{
		walker: walk.New(walk.Options{PreferredLocales: cfg.PreferredLocales}),
		namer: columns.New(columns.Options{
			Reserved: cfg.ReservedColumns,
			Excluded: cfg.ExcludedTypes,
			Extra:    cfg.ExtraColumns,
		}),
		catalogExcluded: common.Set(catalogExcluded),
	}
}

// Result is the outcome of one Flatten call.
type Result struct {
	Fields      []form.FieldRecord
	Schema      *columns.Schema
	Diagnostics diagnostic.Diagnostics

	headers         map[int]string // record index -> header
	catalogExcluded map[form.LogicalType]struct{}
}

// Flatten walks content and assigns headers to the emitted fields.
func (f *Flattener) Flatten(content form.Content) *Result {
	walked := f.walker.Walk(content)

	res := &Result{
		Fields:          walked.Fields,
		Diagnostics:     walked.Diagnostics,
		headers:         make(map[int]string),
		catalogExcluded: f.catalogExcluded,
	}

	res.Schema = f.namer.Assign(res.Fields)
	for _, c := range res.Schema.Questions() {
		res.headers[c.Index] = c.Header
	}

	return res
}

// Header returns the column header of Fields[i], if it has one.
func (r *Result) Header(i int) (string, bool) {
	h, ok := r.headers[i]
	return h, ok
}

// CatalogRow is one line of the fields_catalog export.
type CatalogRow struct {
	Name        string           `json:"name"`
	Label       string           `json:"label"`
	Path        string           `json:"path"`
	LogicalType form.LogicalType `json:"logical_type"`
	Required    bool             `json:"required"`
	ListID      string           `json:"list_id,omitempty"`
	Codes       string           `json:"codes,omitempty"`
}

// Catalog returns one row per field not excluded from the catalog.
func (r *Result) Catalog() []CatalogRow {
	var rows []CatalogRow

	for i := range r.Fields {
		rec := &r.Fields[i]
		if r.excluded(rec) {
			continue
		}

		rows = append(rows, CatalogRow{
			Name:        rec.Name(),
			Label:       rec.Label,
			Path:        rec.PathString(),
			LogicalType: rec.LogicalType,
			Required:    rec.Required,
			ListID:      rec.ChoiceListID,
			Codes:       strings.Join(rec.ChoiceCodes(), codeSeparator),
		})
	}

	return rows
}

// XMLRows returns, per catalog field, its flat tag followed by a row whose
// only value is the nested template. Fields without a column fall back to
// their own name in the value expression.
func (r *Result) XMLRows() []xmlfrag.FlatTag {
	var rows []xmlfrag.FlatTag

	for i := range r.Fields {
		rec := &r.Fields[i]
		if r.excluded(rec) {
			continue
		}

		header, ok := r.headers[i]
		if !ok {
			header = rec.Name()
		}

		rows = append(rows,
			xmlfrag.Flat(rec, header),
			xmlfrag.FlatTag{ValueExpression: xmlfrag.Template(rec, xmlfrag.Expression(header))},
		)
	}

	return rows
}

// RowFragment is the rendered element of one question column for one row.
type RowFragment struct {
	Header string            `json:"header"`
	Field  *form.FieldRecord `json:"-"`
	Path   string            `json:"path"`
	XML    string            `json:"xml"`
}

// FragmentsForRow renders the question columns of a filled row, in column
// order. Values are trimmed; blank or missing values produce no fragment.
func (r *Result) FragmentsForRow(values map[string]string) []RowFragment {
	questions := r.Schema.Questions()
	out := make([]RowFragment, 0, len(questions))

	for _, c := range questions {
		v := strings.TrimSpace(values[c.Header])
		if v == "" {
			continue
		}

		out = append(out, RowFragment{
			Header: c.Header,
			Field:  c.Field,
			Path:   c.Field.PathString(),
			XML:    xmlfrag.Fragment(c.Field, v),
		})
	}

	return out
}

func (r *Result) excluded(rec *form.FieldRecord) bool {
	_, ok := r.catalogExcluded[rec.LogicalType]
	return ok
}
