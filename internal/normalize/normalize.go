// Package normalize cleans dataset text fields and derives display text from them.
package normalize

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// htmlTagPattern matches common HTML tags to detect if a string contains HTML.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

// ContainsHTML reports whether s appears to contain HTML markup.
func ContainsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// Synopsis cleans a raw synopsis: null bytes are dropped and HTML markup is converted to Markdown.
// Plain text passes through trimmed and is never reinterpreted as Markdown; the second
// result reports whether the text is Markdown.
func Synopsis(raw string) (string, bool) {
	s := strings.TrimSpace(sanitizeString(raw))
	if s == "" || !ContainsHTML(s) {
		return s, false
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return StripTags(s), false
	}
	return strings.TrimSpace(markdown), true
}

// Tags trims every tag and drops blank ones. Order is kept, and so is a nil slice.
func Tags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(sanitizeString(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Excerpt shortens text to at most limit runes, cutting at the last word boundary and
// appending an ellipsis. Whitespace runs collapse to single spaces.
func Excerpt(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}

	cut := runes[:limit]
	if i := lastSpace(cut); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(string(cut), " ,;:.-") + "…"
}

func lastSpace(r []rune) int {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i] == ' ' {
			return i
		}
	}
	return -1
}

// sanitizeString removes null bytes, which some dataset exporters leave behind.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
}
