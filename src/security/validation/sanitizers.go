// src/security/validation/sanitizers.go
package validation

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// Definition of strict sanitization policy
	strictHTMLPolicy *bluemonday.Policy
)

func init() {
	// Initialize strict policy once at startup
	strictHTMLPolicy = bluemonday.StrictPolicy() // Removes all HTML tags, escapes the remaining text
}

// EscapeText makes a payload text field safe to interpolate into an HTML fragment.
// Every character is kept; HTML special characters are escaped, so "A<B" renders as typed.
func EscapeText(s string) string {
	return html.EscapeString(StripUnprintable(s))
}

// ContainsMarkup reports whether the strict policy would change s beyond entity escaping,
// i.e. s carries something a browser would parse as a tag.
func ContainsMarkup(s string) bool {
	return html.UnescapeString(strictHTMLPolicy.Sanitize(s)) != html.UnescapeString(s)
}

// StripUnprintable removes non-printable characters, allowing common whitespace
// like space, tab, newline, and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1 // Drop the rune
	}, s)
}
