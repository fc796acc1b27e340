package submit

import (
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"formflat/internal/columns"
	"formflat/internal/flatten"
)

// timestampLayout matches what data collection clients send for start/end.
const timestampLayout = "2006-01-02T15:04:05-07:00"

// Envelope is one rendered XML instance.
type Envelope struct {
	InstanceID string
	XML        []byte
}

// Builder renders rows of one flattened form.
type Builder struct {
	res     *flatten.Result
	formUID string
	merge   bool

	now   func() time.Time
	newID func() string
}

// NewBuilder creates a builder for the form formUID. With merge set, group
// elements shared by several fields are emitted once.
func NewBuilder(res *flatten.Result, formUID string, merge bool) *Builder {
	return &Builder{
		res:     res,
		formUID: formUID,
		merge:   merge,
		now:     time.Now,
		newID:   func() string { return "uuid:" + uuid.NewString() },
	}
}

// Headers returns the schema headers of the form.
func (b *Builder) Headers() []string {
	return b.res.Schema.Headers
}

// Schema returns the column schema rows are keyed by.
func (b *Builder) Schema() *columns.Schema {
	return b.res.Schema
}

// BuildEnvelope renders values, keyed by header, as a new instance. Blank
// reserved columns are filled with the current UTC time; extra columns are
// not part of the instance.
func (b *Builder) BuildEnvelope(values map[string]string) (*Envelope, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement(b.formUID)
	root.CreateAttr("id", b.formUID)

	now := b.now().UTC().Truncate(time.Second).Format(timestampLayout)

	for _, col := range b.res.Schema.Columns {
		if col.Kind != columns.KindReserved {
			continue
		}

		v := strings.TrimSpace(values[col.Header])
		if v == "" {
			v = now
		}

		root.CreateElement(col.Header).SetText(v)
	}

	for _, frag := range b.res.FragmentsForRow(values) {
		part := etree.NewDocument()
		if err := part.ReadFromString(frag.XML); err != nil {
			return nil, fmt.Errorf("failed to parse fragment for %s: %w", frag.Header, err)
		}

		el := part.Root()
		if el == nil {
			return nil, fmt.Errorf("empty fragment for %s", frag.Header)
		}

		part.RemoveChild(el)

		if b.merge {
			mergeInto(root, el)
		} else {
			root.AddChild(el)
		}
	}

	id := b.newID()
	root.CreateElement("meta").CreateElement("instanceID").SetText(id)

	doc.Indent(2)

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render instance: %w", err)
	}

	return &Envelope{InstanceID: id, XML: out}, nil
}

// mergeInto appends el under parent, reusing an existing group element of
// the same tag. Leaf elements are always appended.
func mergeInto(parent, el *etree.Element) {
	children := el.ChildElements()
	if len(children) == 0 {
		parent.AddChild(el)
		return
	}

	existing := parent.SelectElement(el.Tag)
	if existing == nil || len(existing.ChildElements()) == 0 {
		parent.AddChild(el)
		return
	}

	for _, c := range children {
		el.RemoveChild(c)
		mergeInto(existing, c)
	}
}
