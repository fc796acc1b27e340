package match

import (
	"strings"
	"unicode"
)

// NormalizeIdent normalizes an identifier for fuzzy matching.
// The normalization pipeline:
// 1. Tokenize on separators and CamelCase boundaries.
// 2. Case-fold to lower.
// 3. Join without separators.
func NormalizeIdent(s string) string {
	return strings.ToLower(strings.Join(tokenize(s), ""))
}

// Slug derives a lowercase, underscore-separated name usable as an XML
// element name from free text. Returns "" when s has no letters or digits.
// Examples:
//   - "Household Member" -> "household_member"
//   - "Section A: Roster" -> "section_a_roster"
//   - "2nd visit" -> "_2nd_visit"
func Slug(s string) string {
	var words []string

	for _, tok := range tokenize(s) {
		words = append(words, strings.ToLower(tok))
	}

	slug := strings.Join(words, "_")
	if slug == "" {
		return ""
	}

	if r := []rune(slug)[0]; unicode.IsDigit(r) {
		slug = "_" + slug
	}

	return slug
}

// tokenize splits text into tokens on any rune that is not a letter or
// digit, and on CamelCase boundaries.
// Examples:
//   - "OrderID" -> ["Order", "ID"]
//   - "yes_no" -> ["yes", "no"]
//   - "XMLParser" -> ["XML", "Parser"]
func tokenize(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string

	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()

			continue
		}

		if i > 0 && shouldStartNewToken(runes, i) {
			flush()
		}

		current.WriteRune(r)
	}

	flush()

	return tokens
}

// isSeparator returns true for any rune that cannot be part of a token.
func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// shouldStartNewToken determines if a new token should start at position i.
func shouldStartNewToken(runes []rune, i int) bool {
	r := runes[i]
	prevRune := runes[i-1]
	isUpper := unicode.IsUpper(r)
	isPrevUpper := unicode.IsUpper(prevRune)
	isPrevSep := isSeparator(prevRune)

	// "orderID" -> split before 'I'
	if isUpper && !isPrevUpper && !isPrevSep {
		return true
	}

	// End of acronym: "XMLParser" -> "XML" + "Parser", split before 'P'
	hasNextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
	if isUpper && isPrevUpper && hasNextLower {
		return true
	}

	return false
}
