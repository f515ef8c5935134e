// Package normalizer prepares raw address text for parsing. Addresses
// pasted from forms and spreadsheets often carry full-width ASCII digits
// and punctuation (１２３ＡＢＣ), NBSP padding and decorative separators;
// the parser expects plain text.
package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// separators commonly used to delimit address levels in user input. They
// carry no information once the levels are matched by prefix.
var separators = map[rune]bool{
	',': true, '，': true, ';': true, '；': true,
	'、': true, '|': true, '/': true, '\\': true,
}

// Clean folds full-width characters to their half-width forms, replaces
// level separators with nothing and collapses all whitespace. The result
// contains no leading or trailing spaces.
func Clean(text string) string {
	folded := width.Fold.String(text)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsSpace(r):
			// dropped; Chinese addresses do not use spaces as delimiters
		case separators[r]:
			// level separators add nothing to prefix matching
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanKeepDetail folds widths and trims outer whitespace but preserves
// interior characters, for callers that want the original detail text back.
func CleanKeepDetail(text string) string {
	return strings.TrimSpace(width.Fold.String(text))
}
