package model

import (
	markdown "github.com/MichaelMure/go-term-markdown"
	"github.com/charmbracelet/glamour"
)

func renderMarkdown(md, style string, width int) (string, error) {
	if width < 40 {
		width = 40
	}
	if style == "" {
		style = "dark"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

func renderMarkdownToANSI(md string, width int) string {
	if width < 40 {
		width = 40
	}
	return string(markdown.Render(md, width-4, 4))
}

// renderNote prefers glamour and falls back to go-term-markdown.
func renderNote(content, style string, width int) string {
	if out, err := renderMarkdown(content, style, width); err == nil {
		return out
	}
	return renderMarkdownToANSI(content, width)
}
