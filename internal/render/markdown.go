package render

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
)

// Markdown converts comment content to HTML. Raw HTML in the source is
// not passed through; on conversion failure the escaped text is returned.
func Markdown(md string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTMLEscapeString(md)
	}
	return buf.String()
}
