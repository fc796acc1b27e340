// Package match provides name normalization, Levenshtein distance calculation,
// and candidate ranking for near-miss identifiers in form definitions.
//
// Key functions:
//   - NormalizeIdent: normalizes identifiers for fuzzy matching
//   - Slug: derives an element-safe name from free text such as a label
//   - Levenshtein: computes edit distance between strings
//   - RankCandidates: ranks known names by similarity to a missing one
package match
