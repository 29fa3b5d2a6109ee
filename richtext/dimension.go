package richtext

import (
	"strconv"
	"strings"

	"cradoc/markup"
)

// dimension returns node width or height in CSS pixels. Sources in order: px
// style declaration, same named attribute holding a plain number and, for
// width only, colwidth/data-colwidth lists (first entry). A source which
// fails to parse or holds non-positive value is skipped.
func (r resolver) dimension(n *markup.Node, attr string) (float64, bool) {
	if n == nil {
		return 0, false
	}
	if v, ok := r.declarations(n).Last(attr); ok {
		if px, ok := v.Px(); ok && px > 0 {
			return px, true
		}
	}
	if v, ok := n.Attr(attr); ok {
		if px, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && px > 0 {
			return px, true
		}
	}
	if attr != "width" {
		return 0, false
	}
	for _, key := range []string{"colwidth", "data-colwidth"} {
		v, ok := n.Attr(key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		if px, ok := firstColWidth(v); ok {
			return px, true
		}
		// only the first present attribute is consulted
		break
	}
	return 0, false
}

// firstColWidth parses comma separated list and returns its first entry.
// Any malformed entry invalidates the whole list.
func firstColWidth(list string) (float64, bool) {
	var widths []float64
	for part := range strings.SplitSeq(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		px, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, false
		}
		widths = append(widths, px)
	}
	if len(widths) == 0 || widths[0] <= 0 {
		return 0, false
	}
	return widths[0], true
}

// columnWidths returns one pixel width per column, 0 for unknown. The
// first direct colgroup provides widths by position, remaining columns take
// the width of the first cell in that position which declares one.
func (r resolver) columnWidths(table *markup.Node, cols int) []float64 {
	if cols <= 0 {
		return nil
	}
	widths := make([]float64, cols)

	if groups := table.ChildrenByTag("colgroup"); len(groups) > 0 {
		for i, col := range groups[0].ChildrenByTag("col") {
			if i >= cols {
				break
			}
			if px, ok := r.dimension(col, "width"); ok {
				widths[i] = px
			}
		}
	}

	for _, row := range tableRows(table) {
		for i, cell := range row.ChildrenByTag("th", "td") {
			if i >= cols {
				break
			}
			if widths[i] > 0 {
				continue
			}
			if px, ok := r.dimension(cell, "width"); ok {
				widths[i] = px
			}
		}
	}
	return widths
}

// tableRows collects tr elements in document order without descending into
// nested tables.
func tableRows(table *markup.Node) []*markup.Node {
	var rows []*markup.Node
	var walk func(n *markup.Node)
	walk = func(n *markup.Node) {
		for _, c := range n.Children {
			switch c.Tag {
			case "tr":
				rows = append(rows, c)
			case "table":
			default:
				walk(c)
			}
		}
	}
	walk(table)
	return rows
}
