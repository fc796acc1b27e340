package submit

import (
	"fmt"

	"formflat/internal/columns"
	"formflat/internal/diagnostic"
	"formflat/internal/match"
)

const maxHeaderSuggestions = 3

// CheckHeaders compares the header row of a filled sheet with schema.
//
// A sheet holding none of the question columns, or repeating a header, is an
// error: its rows cannot be mapped back to the form. Headers unknown to the
// schema are warnings, since their values are dropped. Question columns the
// sheet lacks are infos; those questions are sent unanswered.
func CheckHeaders(schema *columns.Schema, headers []string) diagnostic.Diagnostics {
	var d diagnostic.Diagnostics

	present := make(map[string]int, len(headers))

	for i, h := range headers {
		if h == "" {
			continue
		}

		if first, dup := present[h]; dup {
			d.AddError(diagnostic.CodeDuplicateColumn,
				fmt.Sprintf("header %q in column %d repeats column %d", h, i+1, first+1), -1, "")

			continue
		}

		present[h] = i

		if _, ok := schema.Meta(h); !ok {
			d.AddWarning(diagnostic.CodeUnknownColumn,
				fmt.Sprintf("column %q is not part of the form; its values are ignored", h), -1, "",
				match.RankCandidates(h, schema.Headers, match.DefaultSuggestThreshold).Names(maxHeaderSuggestions)...)
		}
	}

	questions := schema.Questions()
	found := 0

	for _, c := range questions {
		if _, ok := present[c.Header]; ok {
			found++
			continue
		}

		d.AddInfo(diagnostic.CodeMissingColumn,
			fmt.Sprintf("question column %q is not in the sheet", c.Header), -1, c.Field.PathString())
	}

	if len(questions) > 0 && found == 0 {
		d.AddError(diagnostic.CodeNoQuestionColumns,
			fmt.Sprintf("sheet has none of the form's %d question columns", len(questions)), -1, "")
	}

	return d
}
