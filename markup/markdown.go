package markup

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Markdown fields may carry raw editor HTML (images with data URIs, aligned
// paragraphs), so unsafe rendering is on.
var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
	),
	goldmark.WithRendererOptions(
		gmhtml.WithHardWraps(),
		gmhtml.WithUnsafe(),
	),
)

// MarkdownToHTML renders CommonMark with GitHub extensions (tables,
// strikethrough, autolinks, task lists) to HTML fragment.
func MarkdownToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("unable to render markdown: %w", err)
	}
	return buf.String(), nil
}

// ParseMarkdown renders Markdown and parses the result.
func ParseMarkdown(src string) (*Node, error) {
	out, err := MarkdownToHTML(src)
	if err != nil {
		return nil, err
	}
	return Parse(out)
}
