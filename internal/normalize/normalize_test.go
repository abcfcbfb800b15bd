package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"empty string", "", false},
		{"plain text", "A heist goes wrong.", false},
		{"angle brackets but not HTML", "Use <stdin> and 2 > 1", false},
		{"paragraph", "<p>A heist.</p>", true},
		{"break", "One<br>Two", true},
		{"self-closing break", "One<br/>Two", true},
		{"uppercase", "<P>Loud</P>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContainsHTML(tt.input))
		})
	}
}

func TestSynopsis(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     string
		markdown bool
	}{
		{"plain text trimmed", "  Plain text.\x00 ", "Plain text.", false},
		{"empty", "", "", false},
		{"html converted", "<p>A <b>bold</b> move.</p>", "A **bold** move.", true},
		{"leading year kept", "1984. Winston rewrites history.", "1984. Winston rewrites history.", false},
		{"markdown-looking text kept", "- Fast cars and *big* explosions", "- Fast cars and *big* explosions", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, markdown := Synopsis(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.markdown, markdown)
		})
	}
}

func TestTextToHTML(t *testing.T) {
	got := string(TextToHTML("1984. <b>Big</b> *brother*\nis watching"))
	assert.Equal(t, "1984. &lt;b&gt;Big&lt;/b&gt; *brother*<br>\nis watching", got)
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "Tom & Jerry", StripTags("<p>Tom &amp; <i>Jerry</i></p>"))
}

func TestTags(t *testing.T) {
	assert.Nil(t, Tags(nil))
	assert.Equal(t, []string{}, Tags([]string{" ", ""}))
	assert.Equal(t, []string{"drama", "sci-fi"}, Tags([]string{" drama ", "", "sci-fi"}))
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{"short text untouched", "A short one.", 50, "A short one."},
		{"whitespace collapsed", "A\n\n  spaced   text", 50, "A spaced text"},
		{"cut at word boundary", "The quick brown fox jumps", 12, "The quick…"},
		{"trailing punctuation dropped", "Hello, world and more", 7, "Hello…"},
		{"single long word cut hard", "Supercalifragilistic", 5, "Super…"},
		{"runes not bytes", "Ação épica em três atos", 9, "Ação…"},
		{"zero limit disables", "anything goes", 0, "anything goes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Excerpt(tt.text, tt.limit))
		})
	}
}

func TestMarkdownToHTML_Sanitises(t *testing.T) {
	out, err := MarkdownToHTML("A **bold** move.\n\n<script>alert(1)</script>\n\n[link](javascript:alert(1))")
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "javascript:")
}

func TestMarkdownToText(t *testing.T) {
	got := MarkdownToText("A **bold** move & a [link](https://example.com).")
	assert.Equal(t, "A bold move & a link.", got)
	assert.False(t, strings.Contains(got, "<"))
}
