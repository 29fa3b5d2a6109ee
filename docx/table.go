package docx

import (
	"strconv"

	"github.com/beevik/etree"

	"cradoc/richtext"
)

// AddTable appends converted table. Missing cells of ragged rows are written
// as empty cells so every row spans all columns.
func (d *Document) AddTable(t *richtext.Table) {
	if t == nil || t.Cols == 0 || len(t.Rows) == 0 {
		return
	}

	tbl := etree.NewElement("w:tbl")

	tblPr := tbl.CreateElement("w:tblPr")
	tblPr.CreateElement("w:tblStyle").CreateAttr("w:val", tableStyleID)
	tblW := tblPr.CreateElement("w:tblW")
	if t.HasWidths() {
		tblW.CreateAttr("w:w", "0")
		tblW.CreateAttr("w:type", "auto")
		tblPr.CreateElement("w:tblLayout").CreateAttr("w:type", "fixed")
	} else {
		tblW.CreateAttr("w:w", "5000")
		tblW.CreateAttr("w:type", "pct")
	}
	look := tblPr.CreateElement("w:tblLook")
	look.CreateAttr("w:val", "04A0")
	look.CreateAttr("w:firstRow", "1")
	look.CreateAttr("w:lastRow", "0")
	look.CreateAttr("w:firstColumn", "1")
	look.CreateAttr("w:lastColumn", "0")
	look.CreateAttr("w:noHBand", "0")
	look.CreateAttr("w:noVBand", "1")

	widths := d.columnWidths(t)
	grid := tbl.CreateElement("w:tblGrid")
	for _, w := range widths {
		grid.CreateElement("w:gridCol").CreateAttr("w:w", strconv.Itoa(w))
	}

	for _, row := range t.Rows {
		tr := tbl.CreateElement("w:tr")
		for j := range t.Cols {
			var cell *richtext.Cell
			if j < len(row) {
				cell = row[j]
			}
			tc := tr.CreateElement("w:tc")
			tcPr := tc.CreateElement("w:tcPr")
			tcW := tcPr.CreateElement("w:tcW")
			if w := widths[j]; w > 0 && t.HasWidths() {
				tcW.CreateAttr("w:w", strconv.Itoa(w))
				tcW.CreateAttr("w:type", "dxa")
			} else {
				tcW.CreateAttr("w:w", "0")
				tcW.CreateAttr("w:type", "auto")
			}
			if cell == nil {
				// every cell must hold at least one paragraph
				tc.CreateElement("w:p")
				continue
			}
			tc.AddChild(d.paragraph(&cell.Paragraph))
		}
	}
	d.appendBlock(tbl)
}

// columnWidths returns grid column widths in twips. Columns without known
// width share what is left of printable width.
func (d *Document) columnWidths(t *richtext.Table) []int {
	res := make([]int, t.Cols)
	printable := d.cfg.Page.PrintableWidth()

	known, unknown := 0.0, 0
	for j := range t.Cols {
		if w := t.Width(j); w > 0 {
			known += w
		} else {
			unknown++
		}
	}
	rest := 0.0
	if unknown > 0 && printable > known {
		rest = (printable - known) / float64(unknown)
	}
	for j := range t.Cols {
		if w := t.Width(j); w > 0 {
			res[j] = mmToTwips(w)
		} else {
			res[j] = mmToTwips(rest)
		}
	}
	return res
}
