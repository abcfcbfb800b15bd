package normalize

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// Raw HTML inside Markdown is escaped because WithUnsafe is not set.
var md = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkhtml.WithHardWraps(),
	),
)

var (
	richPolicy  = newRichPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

func newRichPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// MarkdownToHTML renders Markdown and sanitises the result for direct inclusion in a page.
func MarkdownToHTML(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	//nolint:gosec // output is sanitised by the UGC policy
	return template.HTML(richPolicy.SanitizeBytes(buf.Bytes())), nil
}

// MarkdownToText renders Markdown and strips every tag, leaving readable text.
func MarkdownToText(src string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return src
	}
	text := plainPolicy.Sanitize(buf.String())
	return strings.TrimSpace(html.UnescapeString(text))
}

// TextToHTML escapes plain text for a page, keeping its line breaks.
func TextToHTML(src string) template.HTML {
	escaped := template.HTMLEscapeString(src)
	//nolint:gosec // every byte of src is escaped above
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>\n"))
}

// StripTags removes every HTML tag from s and decodes entities.
func StripTags(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainPolicy.Sanitize(s)))
}
