package textnorm

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var reTagLike = regexp.MustCompile(`<\s*/?\s*[a-zA-Z][^>]*>`)

// StripMarkup extracts the text content from a string that still carries HTML
// tags, which happens when a scraper dumps an element's inner HTML instead of
// its text. Strings without tag-like markup pass through untouched, and any
// parse trouble falls back to the original input.
func StripMarkup(s string) string {
	if !reTagLike.MatchString(s) {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	// Script/style bodies are noise, not article text.
	doc.Find("script, style, noscript").Remove()
	return doc.Text()
}
