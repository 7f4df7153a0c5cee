package services

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))

	// Columns are written by contributors; rendered HTML goes through the UGC policy.
	ugcPolicy = bluemonday.UGCPolicy()

	stripPolicy = bluemonday.StrictPolicy()
)

// RenderMarkdown converts column markdown to sanitized HTML.
func RenderMarkdown(source string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return ugcPolicy.Sanitize(html.EscapeString(source))
	}
	return ugcPolicy.Sanitize(buf.String())
}

// StripMarkdown reduces markdown to plain text on a single line.
func StripMarkdown(source string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return strings.Join(strings.Fields(source), " ")
	}
	text := html.UnescapeString(stripPolicy.Sanitize(buf.String()))
	return strings.Join(strings.Fields(text), " ")
}

// Excerpt returns the first max runes of the stripped text, with "..." when cut.
func Excerpt(content string, max int) string {
	plain := []rune(StripMarkdown(content))
	if len(plain) <= max {
		return string(plain)
	}
	return string(plain[:max]) + "..."
}
