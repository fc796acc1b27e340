package columns

import (
	"fmt"
	"strconv"
	"strings"

	"formflat/internal/common"
	"formflat/internal/form"
)

// DefaultSeparator joins a name with its disambiguation suffix.
const DefaultSeparator = "__"

var (
	// DefaultReserved are the leading system columns.
	DefaultReserved = []string{"start", "end"}
	// DefaultExcluded are logical types left out of the template.
	DefaultExcluded = []form.LogicalType{form.TypeNote, form.TypeCalculated}
	// DefaultExtra are the trailing free-form columns.
	DefaultExtra = []string{"Comments"}
)

// Options configures a Namer. Nil slices select the defaults; empty
// non-nil slices select none.
type Options struct {
	Reserved  []string
	Excluded  []form.LogicalType
	Extra     []string
	Separator string
}

// Namer assigns headers to field records.
type Namer struct {
	reserved  []string
	excluded  map[form.LogicalType]struct{}
	extra     []string
	separator string
}

// New creates a Namer.
func New(opts Options) *Namer {
	if opts.Reserved == nil {
		opts.Reserved = DefaultReserved
	}

	if opts.Excluded == nil {
		opts.Excluded = DefaultExcluded
	}

	if opts.Extra == nil {
		opts.Extra = DefaultExtra
	}

	if opts.Separator == "" {
		opts.Separator = DefaultSeparator
	}

	return &Namer{
		reserved:  append([]string(nil), opts.Reserved...),
		excluded:  common.Set(opts.Excluded),
		extra:     append([]string(nil), opts.Extra...),
		separator: opts.Separator,
	}
}

// Excludes reports whether records of type t are left out of the schema.
func (n *Namer) Excludes(t form.LogicalType) bool {
	_, ok := n.excluded[t]
	return ok
}

// InvariantError reports that no unique header could be found. The search
// bound exceeds the number of taken headers, so this cannot happen for any
// input; it signals a bug in the namer itself.
type InvariantError struct {
	Name     string
	Attempts int
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("columns: no unique header for %q after %d attempts", e.Name, e.Attempts)
}

// assignment is the per-invocation state of Assign.
type assignment struct {
	used   map[string]struct{}
	claims map[string]int // bare name -> index of the root-level record owning it
}

// free reports whether header h may be given to record i.
func (a *assignment) free(h string, i int) bool {
	if _, taken := a.used[h]; taken {
		return false
	}

	owner, claimed := a.claims[h]

	return !claimed || owner == i
}

// Assign derives the column schema from records. Records are read, never
// modified, and must not be modified while the schema is in use.
func (n *Namer) Assign(records []form.FieldRecord) *Schema {
	s := &Schema{meta: make(map[string]*form.FieldRecord)}
	a := &assignment{
		used:   make(map[string]struct{}),
		claims: make(map[string]int),
	}

	for _, h := range n.reserved {
		if _, dup := a.used[h]; dup {
			continue
		}

		a.used[h] = struct{}{}
		s.add(Column{Header: h, Kind: KindReserved})
	}

	var trailing []string

	for _, h := range n.extra {
		if _, dup := a.used[h]; dup {
			continue
		}

		a.used[h] = struct{}{}
		trailing = append(trailing, h)
	}

	for i := range records {
		rec := &records[i]
		if n.Excludes(rec.LogicalType) || len(rec.Groups()) > 0 {
			continue
		}

		if _, claimed := a.claims[rec.Name()]; !claimed {
			a.claims[rec.Name()] = i
		}
	}

	for i := range records {
		rec := &records[i]
		if n.Excludes(rec.LogicalType) {
			continue
		}

		h := n.header(a, i, rec)
		a.used[h] = struct{}{}
		s.add(Column{Header: h, Kind: KindQuestion, Field: rec, Index: i})
	}

	for _, h := range trailing {
		s.add(Column{Header: h, Kind: KindExtra})
	}

	return s
}

// header picks the header for records[i].
func (n *Namer) header(a *assignment, i int, rec *form.FieldRecord) string {
	name := rec.Name()
	if a.free(name, i) {
		return name
	}

	candidate := name
	if groups := rec.Groups(); len(groups) > 0 {
		candidate = name + n.separator + strings.Join(groups, n.separator)
		if a.free(candidate, i) {
			return candidate
		}
	}

	// Each taken header blocks at most one suffix, so bound+1 attempts always succeed.
	bound := len(a.used) + len(a.claims) + 1
	for k := 2; k <= bound+1; k++ {
		numbered := candidate + n.separator + strconv.Itoa(k)
		if a.free(numbered, i) {
			return numbered
		}
	}

	panic(&InvariantError{Name: name, Attempts: bound})
}
