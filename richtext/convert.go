// Package richtext converts editor markup into paragraphs and tables of a
// word processing document. Conversion never fails: malformed input
// degrades locally (skipped image, ignored declaration) and markup which
// cannot be parsed at all becomes a single literal paragraph.
package richtext

import (
	"strings"

	"go.uber.org/zap"

	"cradoc/css"
	"cradoc/markup"
)

// Converter turns markup into blocks. It keeps no state between calls and
// may be used concurrently.
type Converter struct {
	log *zap.Logger
	res resolver
}

// New creates converter, log may be nil.
func New(log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("richtext")
	return &Converter{log: log, res: resolver{css: css.NewParser(log)}}
}

// Convert parses HTML fragment and converts its top level elements in order.
// Blank input produces nothing.
func (c *Converter) Convert(src string) []Block {
	if strings.TrimSpace(src) == "" {
		return nil
	}
	root, err := markup.Parse(src)
	if err != nil {
		c.log.Debug("Markup parsing failed, using literal text", zap.Error(err))
		return []Block{literal(src)}
	}
	return c.ConvertNode(root)
}

// ConvertMarkdown renders Markdown to HTML and converts the result.
func (c *Converter) ConvertMarkdown(src string) []Block {
	if strings.TrimSpace(src) == "" {
		return nil
	}
	root, err := markup.ParseMarkdown(src)
	if err != nil {
		c.log.Debug("Markdown conversion failed, using literal text", zap.Error(err))
		return []Block{literal(src)}
	}
	return c.ConvertNode(root)
}

// ConvertNode converts already parsed fragment root.
func (c *Converter) ConvertNode(root *markup.Node) []Block {
	w := &walker{log: c.log, res: c.res}
	w.container(root, blockContext{})
	return w.blocks
}

// Append converts src and sends result to sink.
func (c *Converter) Append(sink Sink, src string) {
	Flush(sink, c.Convert(src))
}

// AppendMarkdown converts Markdown src and sends result to sink.
func (c *Converter) AppendMarkdown(sink Sink, src string) {
	Flush(sink, c.ConvertMarkdown(src))
}

func literal(src string) *Paragraph {
	return &Paragraph{Items: []Item{{Kind: ItemText, Text: src}}}
}

type walker struct {
	log    *zap.Logger
	res    resolver
	blocks []Block
}

func (w *walker) emit(b Block) {
	w.blocks = append(w.blocks, b)
}
