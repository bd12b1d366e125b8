// Package richtext handles project descriptions, which the API stores as
// HTML. Descriptions are sanitized before display, rendered as markdown in
// the terminal, and typed by users as plain paragraphs.
package richtext

import (
	"fmt"
	"html"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// Sanitize removes scripts, event handlers and other unsafe markup while
// keeping basic formatting.
func Sanitize(s string) string {
	return ugc.Sanitize(s)
}

// ToMarkdown sanitizes an HTML description and converts it to markdown
// for terminal display.
func ToMarkdown(s string) (string, error) {
	out, err := md.NewConverter("", true, nil).ConvertString(Sanitize(s))
	if err != nil {
		return "", fmt.Errorf("failed to convert description: %w", err)
	}

	return strings.TrimSpace(out), nil
}

// PlainText strips every tag and decodes entities.
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// IsBlank reports whether s has no visible text.
func IsBlank(s string) bool {
	return PlainText(s) == ""
}

// FromPlainText turns typed text into HTML: blank lines separate
// paragraphs and single newlines become line breaks.
func FromPlainText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var b strings.Builder

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		lines := strings.Split(para, "\n")
		for i, l := range lines {
			lines[i] = html.EscapeString(strings.TrimSpace(l))
		}

		b.WriteString("<p>")
		b.WriteString(strings.Join(lines, "<br>"))
		b.WriteString("</p>")
	}

	return b.String()
}
