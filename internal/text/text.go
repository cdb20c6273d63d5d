package text

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Ellipsis is appended by Truncate when a string gets cut.
const Ellipsis = "…"

// Normalize trims the string and collapses internal whitespace runs to a
// single space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate normalizes s and cuts it to at most max runes, replacing the tail
// with an ellipsis when something was dropped. max must be positive; config
// validation guarantees that for all callers.
func Truncate(s string, max int) string {
	s = Normalize(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + Ellipsis
}

// StripHTML extracts the text content of an HTML fragment and normalizes it.
// Feed titles and descriptions often ship markup and entities; we only want
// the words.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return Normalize(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return Normalize(s)
	}
	return Normalize(doc.Text())
}
