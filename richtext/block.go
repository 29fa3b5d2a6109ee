package richtext

import (
	"strings"

	"go.uber.org/zap"

	"cradoc/markup"
)

// blockContext carries paragraph properties div/section pass to
// descendants which do not set their own.
type blockContext struct {
	indent    float64
	hasIndent bool
	align     Alignment
}

func (bc blockContext) resolve(n *markup.Node, r resolver) blockContext {
	res := bc
	if pt, ok := r.indent(n); ok {
		res.indent, res.hasIndent = pt, true
	}
	res.align = r.alignment(n).Or(bc.align)
	return res
}

func (bc blockContext) paragraph() *Paragraph {
	p := &Paragraph{Align: bc.align}
	if bc.hasIndent {
		p.Indent = bc.indent
	}
	return p
}

// container emits loose text of n and its children, used for the fragment
// root and div/section.
func (w *walker) container(n *markup.Node, bc blockContext) {
	w.loose(n.Text, bc)
	for _, c := range n.Children {
		w.block(c, bc)
		w.loose(c.Tail, bc)
	}
}

// loose emits character data sitting directly in block context as a plain
// paragraph.
func (w *walker) loose(text string, bc blockContext) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	p := bc.paragraph()
	p.addText(text, Style{})
	w.emit(p)
}

func (w *walker) block(n *markup.Node, inherited blockContext) {
	bc := inherited.resolve(n, w.res)

	switch n.Tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		p := bc.paragraph()
		w.inline(p, n, Style{Bold: true, Size: HeadingSize(n.Tag)}, false)
		w.emit(p)

	case "p":
		if !n.HasElements() && strings.TrimSpace(n.Text) == "" {
			w.emit(&Paragraph{})
			return
		}
		p := bc.paragraph()
		if w.res.alignment(n) == AlignUnset && len(n.Children) == 1 && n.Children[0].Is("img") && strings.TrimSpace(n.Text) == "" {
			p.Align = w.res.imageAlignment(n.Children[0]).Or(p.Align)
		}
		w.inline(p, n, Style{}, false)
		w.emit(p)

	case "div", "section":
		w.container(n, bc)

	case "ul", "ol":
		for i, li := range n.ChildrenByTag("li") {
			p := bc.paragraph()
			p.addText(listPrefix(n.Tag, i+1), Style{})
			w.inline(p, li, Style{}, false)
			w.emit(p)
		}

	case "table":
		w.table(n)

	case "img":
		img, ok := w.image(n)
		if !ok {
			return
		}
		p := bc.paragraph()
		p.Align = w.res.imageAlignment(n).Or(inherited.align)
		p.addImage(img)
		w.emit(p)

	case "br":
		w.emit(&Paragraph{})

	default:
		p := bc.paragraph()
		w.inline(p, n, Style{}, false)
		w.emit(p)
	}
}

func (w *walker) table(n *markup.Node) {
	rows := tableRows(n)
	if len(rows) == 0 {
		w.log.Debug("Skipping table without rows")
		return
	}

	cells := make([][]*markup.Node, len(rows))
	cols := 0
	for i, row := range rows {
		cells[i] = row.ChildrenByTag("th", "td")
		cols = max(cols, len(cells[i]))
	}
	if cols == 0 {
		w.log.Debug("Skipping table without cells", zap.Int("rows", len(rows)))
		return
	}

	t := &Table{Cols: cols, Rows: make([][]*Cell, len(rows))}
	for i, rowCells := range cells {
		t.Rows[i] = make([]*Cell, cols)
		for j, cn := range rowCells {
			cell := &Cell{Header: cn.Tag == "th"}
			cell.Paragraph.Align = w.res.alignment(cn)
			w.inline(&cell.Paragraph, cn, Style{Bold: cell.Header}, false)
			t.Rows[i][j] = cell
		}
	}

	for _, px := range w.res.columnWidths(n, cols) {
		t.Widths = append(t.Widths, PxToMM(px))
	}
	w.emit(t)
}
