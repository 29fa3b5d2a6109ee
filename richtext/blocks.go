package richtext

import (
	"strconv"
	"strings"

	"cradoc/utils/debug"
)

// ItemKind distinguishes paragraph content items.
type ItemKind int

const (
	ItemText ItemKind = iota
	ItemBreak
	ItemImage
)

// Image is an embedded picture. Zero dimension means "not specified", when
// both are zero intrinsic size is used.
type Image struct {
	ImageData
	WidthMM  float64
	HeightMM float64
}

// Item is a single piece of paragraph content: styled text, hard line break
// or image.
type Item struct {
	Kind  ItemKind
	Text  string
	Style Style
	Image *Image
}

// Block is a unit appended to the document: *Paragraph or *Table.
type Block interface {
	isBlock()
}

// Paragraph is a sequence of items with paragraph level properties. Indent
// is left indent in points, 0 means none.
type Paragraph struct {
	Align  Alignment
	Indent float64
	Items  []Item
}

func (*Paragraph) isBlock() {}

func (p *Paragraph) addText(text string, style Style) {
	if text == "" {
		return
	}
	p.Items = append(p.Items, Item{Kind: ItemText, Text: strings.ReplaceAll(text, "\u00a0", " "), Style: style})
}

func (p *Paragraph) addBreak() {
	p.Items = append(p.Items, Item{Kind: ItemBreak})
}

func (p *Paragraph) addImage(img *Image) {
	p.Items = append(p.Items, Item{Kind: ItemImage, Image: img})
}

// HasContent reports whether paragraph holds any non-blank text. Breaks and
// images do not count.
func (p *Paragraph) HasContent() bool {
	for _, it := range p.Items {
		if it.Kind == ItemText && strings.TrimSpace(it.Text) != "" {
			return true
		}
	}
	return false
}

// Text returns paragraph text with breaks as new lines.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, it := range p.Items {
		switch it.Kind {
		case ItemText:
			sb.WriteString(it.Text)
		case ItemBreak:
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Cell is a table cell, Header is set for th.
type Cell struct {
	Header    bool
	Paragraph Paragraph
}

// Table is a rectangular grid. Every row has Cols entries, nil entries are
// positions missing in the source row. Widths are in millimeters per
// column, 0 when unknown.
type Table struct {
	Cols   int
	Rows   [][]*Cell
	Widths []float64
}

func (*Table) isBlock() {}

// Width returns width of column j in millimeters, 0 when unknown.
func (t *Table) Width(j int) float64 {
	if j < 0 || j >= len(t.Widths) {
		return 0
	}
	return t.Widths[j]
}

// HasWidths reports whether width of at least one column is known.
func (t *Table) HasWidths() bool {
	for _, w := range t.Widths {
		if w > 0 {
			return true
		}
	}
	return false
}

// Sink receives converted blocks in document order.
type Sink interface {
	AddParagraph(p *Paragraph)
	AddTable(t *Table)
}

// Flush sends blocks to sink.
func Flush(sink Sink, blocks []Block) {
	for _, b := range blocks {
		switch v := b.(type) {
		case *Paragraph:
			sink.AddParagraph(v)
		case *Table:
			sink.AddTable(v)
		}
	}
}

// Collector is a Sink keeping everything in memory.
type Collector struct {
	Blocks []Block
}

func (c *Collector) AddParagraph(p *Paragraph) {
	c.Blocks = append(c.Blocks, p)
}

func (c *Collector) AddTable(t *Table) {
	c.Blocks = append(c.Blocks, t)
}

// String dumps collected blocks in readable form.
func (c *Collector) String() string {
	return Dump(c.Blocks)
}

// Dump returns indented representation of blocks.
func Dump(blocks []Block) string {
	tw := debug.NewTreeWriter()
	for _, b := range blocks {
		switch v := b.(type) {
		case *Paragraph:
			dumpParagraph(tw, 0, "paragraph", v)
		case *Table:
			tw.Fields(0, "table", "cols", strconv.Itoa(v.Cols), "rows", strconv.Itoa(len(v.Rows)), "widths", formatWidths(v.Widths))
			for i, row := range v.Rows {
				tw.Line(1, "row %d", i)
				for _, cell := range row {
					if cell == nil {
						tw.Line(2, "<empty>")
						continue
					}
					label := "td"
					if cell.Header {
						label = "th"
					}
					dumpParagraph(tw, 2, label, &cell.Paragraph)
				}
			}
		}
	}
	return tw.String()
}

func dumpParagraph(tw *debug.TreeWriter, depth int, label string, p *Paragraph) {
	indent := ""
	if p.Indent != 0 {
		indent = strconv.FormatFloat(p.Indent, 'f', -1, 64) + "pt"
	}
	tw.Fields(depth, label, "align", p.Align.String(), "indent", indent)
	for _, it := range p.Items {
		switch it.Kind {
		case ItemText:
			tw.Fields(depth+1, "text "+debug.Quote(it.Text), "style", it.Style.String())
		case ItemBreak:
			tw.Line(depth+1, "break")
		case ItemImage:
			tw.Fields(depth+1, "image", "type", it.Image.MimeType, "bytes", strconv.Itoa(len(it.Image.Data)),
				"width", formatMM(it.Image.WidthMM), "height", formatMM(it.Image.HeightMM))
		}
	}
}

func formatMM(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64) + "mm"
}

func formatWidths(widths []float64) string {
	known := false
	parts := make([]string, len(widths))
	for i, w := range widths {
		if w == 0 {
			parts[i] = "-"
			continue
		}
		known = true
		parts[i] = formatMM(w)
	}
	if !known {
		return ""
	}
	return strings.Join(parts, ",")
}
