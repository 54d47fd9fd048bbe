// Package strcase converts identifiers between the TitleCamelCase names used by
// typed enumerations and the snake_case strings Firebase uses on the wire.
package strcase

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrBlankIdentifier is returned when an empty or whitespace-only identifier is
// passed to either conversion. Callers must never pass blank identifiers.
var ErrBlankIdentifier = errors.New("identifier must not be blank")

// TitleCamelToSnake converts a TitleCamelCase identifier such as "ChildAdded"
// into "child_added". Every uppercase letter starts a new word, so runs of
// capitals become single-letter words ("URLPath" -> "u_r_l_path").
func TitleCamelToSnake(s string) (string, error) {
	if isBlank(s) {
		return "", ErrBlankIdentifier
	}

	var words []string
	var current strings.Builder
	for _, r := range s {
		if unicode.IsUpper(r) && current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
		current.WriteRune(r)
	}
	words = append(words, current.String())

	lower := cases.Lower(language.Und)
	for i, w := range words {
		words[i] = mapFirstRune(w, lower)
	}
	return strings.Join(words, "_"), nil
}

// SnakeToTitleCamel converts a snake_case identifier such as "child_added" into
// "ChildAdded" by capitalising the first letter of every segment.
func SnakeToTitleCamel(s string) (string, error) {
	if isBlank(s) {
		return "", ErrBlankIdentifier
	}

	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	b.Grow(len(s))
	for segment := range strings.SplitSeq(s, "_") {
		b.WriteString(mapFirstRune(segment, title))
	}
	return b.String(), nil
}

// MustTitleCamelToSnake is like TitleCamelToSnake but panics on blank input.
func MustTitleCamelToSnake(s string) string {
	out, err := TitleCamelToSnake(s)
	if err != nil {
		panic(err)
	}
	return out
}

// MustSnakeToTitleCamel is like SnakeToTitleCamel but panics on blank input.
func MustSnakeToTitleCamel(s string) string {
	out, err := SnakeToTitleCamel(s)
	if err != nil {
		panic(err)
	}
	return out
}

// mapFirstRune applies c to the leading rune of s only.
func mapFirstRune(s string, c cases.Caser) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return c.String(string(r)) + s[size:]
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
