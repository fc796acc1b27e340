package columns

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formflat/internal/form"
)

func field(lt form.LogicalType, path ...string) form.FieldRecord {
	return form.FieldRecord{Path: path, LogicalType: lt, RawType: string(lt)}
}

func str(path ...string) form.FieldRecord {
	return field(form.TypeString, path...)
}

func assertUnique(t *testing.T, headers []string) {
	t.Helper()

	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		assert.False(t, seen[h], "duplicate header %q", h)
		seen[h] = true
	}
}

func TestNamer_GroupedThenRootCollision(t *testing.T) {
	records := []form.FieldRecord{str("g1", "q1"), str("q1")}

	s := New(Options{}).Assign(records)

	assert.Equal(t, []string{"q1__g1", "q1"}, s.QuestionHeaders())
	assert.Equal(t, []string{"start", "end", "q1__g1", "q1", "Comments"}, s.Headers)
}

func TestNamer_FirstGroupedKeepsBareName(t *testing.T) {
	records := []form.FieldRecord{
		str("hh", "name"),
		str("hh", "member", "name"),
		str("visit", "name"),
	}

	s := New(Options{}).Assign(records)

	assert.Equal(t, []string{"name", "name__hh__member", "name__visit"}, s.QuestionHeaders())
}

func TestNamer_NumericSuffix(t *testing.T) {
	records := []form.FieldRecord{
		str("rep", "age"),
		str("rep", "age"),
		str("rep", "age"),
		str("dup"),
		str("dup"),
	}

	s := New(Options{}).Assign(records)

	assert.Equal(t, []string{"age", "age__rep", "age__rep__2", "dup", "dup__2"}, s.QuestionHeaders())
}

func TestNamer_ReservedAndExtraNeverCollide(t *testing.T) {
	records := []form.FieldRecord{
		str("start"),
		str("grp", "end"),
		str("Comments"),
	}

	s := New(Options{}).Assign(records)

	assert.Equal(t, []string{"start", "end", "start__2", "end__grp", "Comments__2", "Comments"}, s.Headers)
	assertUnique(t, s.Headers)

	rec, ok := s.Meta("start")
	assert.True(t, ok)
	assert.Nil(t, rec)

	rec, ok = s.Meta("Comments")
	assert.True(t, ok)
	assert.Nil(t, rec)
}

func TestNamer_RootClaimsLiteralSuffixName(t *testing.T) {
	records := []form.FieldRecord{
		str("g1", "q1"),
		str("q1"),
		str("q1__g1"),
	}

	s := New(Options{}).Assign(records)

	assert.Equal(t, []string{"q1__g1__2", "q1", "q1__g1"}, s.QuestionHeaders())
}

func TestNamer_Exclusions(t *testing.T) {
	records := []form.FieldRecord{
		field(form.TypeNote, "intro"),
		field(form.TypeCalculated, "total"),
		str("q1"),
	}

	s := New(Options{}).Assign(records)
	assert.Equal(t, []string{"q1"}, s.QuestionHeaders())

	s = New(Options{Excluded: []form.LogicalType{}, Reserved: []string{}, Extra: []string{}}).Assign(records)
	assert.Equal(t, []string{"intro", "total", "q1"}, s.Headers)
}

func TestNamer_ExcludedRootDoesNotClaim(t *testing.T) {
	records := []form.FieldRecord{
		str("g", "x"),
		field(form.TypeNote, "x"),
	}

	s := New(Options{}).Assign(records)
	assert.Equal(t, []string{"x"}, s.QuestionHeaders())
}

func TestNamer_MetaTraceability(t *testing.T) {
	records := []form.FieldRecord{str("a", "q"), str("b", "q"), str("q")}

	s := New(Options{}).Assign(records)

	for _, c := range s.Questions() {
		rec, ok := s.Meta(c.Header)
		require.True(t, ok)
		require.NotNil(t, rec)
		assert.Same(t, &records[c.Index], rec)
	}

	byPath := map[string]string{}
	for _, c := range s.Questions() {
		byPath[c.Field.PathString()] = c.Header
	}

	assert.Equal(t, map[string]string{"a/q": "q__a", "b/q": "q__b", "q": "q"}, byPath)

	_, ok := s.Meta("nope")
	assert.False(t, ok)
}

func TestNamer_AlwaysUnique(t *testing.T) {
	var records []form.FieldRecord

	groups := [][]string{nil, {"g"}, {"g", "h"}, {"r"}, {"g"}}
	for i := 0; i < 60; i++ {
		g := groups[i%len(groups)]
		name := fmt.Sprintf("q%d", i%4)
		records = append(records, str(append(append([]string{}, g...), name)...))
	}

	records = append(records, str("q0__g"), str("q1__g__2"), str("start"))

	first := New(Options{}).Assign(records)
	assertUnique(t, first.Headers)
	assert.Len(t, first.QuestionHeaders(), len(records))

	second := New(Options{}).Assign(records)
	assert.Equal(t, first.Headers, second.Headers)
}

func TestSchema_ChoiceColumns(t *testing.T) {
	yesno := field(form.TypeEnum, "consent")
	yesno.Choices = []form.Choice{{Value: "1", Label: "Yes"}, {Value: "0", Label: "No"}}

	empty := field(form.TypeEnumList, "blank")
	empty.Choices = []form.Choice{{Value: "", Label: "?"}}

	missing := field(form.TypeEnum, "region")

	s := New(Options{}).Assign([]form.FieldRecord{yesno, empty, missing, str("t")})

	assert.Equal(t, []ChoiceColumn{{Header: "consent", Codes: []string{"1", "0"}}}, s.ChoiceColumns())
}

func TestInvariantError(t *testing.T) {
	err := &InvariantError{Name: "q", Attempts: 3}
	assert.Equal(t, `columns: no unique header for "q" after 3 attempts`, err.Error())
	assert.Equal(t, "question", KindQuestion.String())
}
