// Package normalize converts free-form Japanese listing text into typed
// values. Every function is pure; unrecognized non-empty input yields a
// *ParseError carrying the offending string.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// ParseError reports text that matched none of the accepted grammars.
type ParseError struct {
	Kind  string
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable %s %q", e.Kind, e.Input)
}

func parseErr(kind, input string) *ParseError {
	return &ParseError{Kind: kind, Input: input}
}

// compact folds full-width characters to their narrow forms and drops all
// whitespace, so "５，０００ 円" and "5,000円" compare equal.
func compact(s string) string {
	s = width.Fold.String(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// rangeSeparators are the tildes used between the two ends of a range.
var rangeSeparators = []string{"〜", "~", "～"}

func cutRange(s string) (string, string, bool) {
	for _, sep := range rangeSeparators {
		if left, right, ok := strings.Cut(s, sep); ok {
			return left, right, true
		}
	}
	return "", "", false
}

// atoi fails on digit runs too long for an int.
func atoi(s string) (int, error) {
	return strconv.Atoi(s)
}
