package richtext

import (
	"math"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"cradoc/markup"
)

const fakePNG = "data:image/png;base64,ZmFrZXBuZw=="

func convert(t *testing.T, src string) []Block {
	t.Helper()
	return New(zaptest.NewLogger(t)).Convert(src)
}

func paragraphs(t *testing.T, blocks []Block) []*Paragraph {
	t.Helper()
	res := make([]*Paragraph, 0, len(blocks))
	for i, b := range blocks {
		p, ok := b.(*Paragraph)
		if !ok {
			t.Fatalf("block %d is %T, want *Paragraph", i, b)
		}
		res = append(res, p)
	}
	return res
}

func texts(ps []*Paragraph) []string {
	res := make([]string, len(ps))
	for i, p := range ps {
		res[i] = p.Text()
	}
	return res
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func images(p *Paragraph) []*Image {
	var res []*Image
	for _, it := range p.Items {
		if it.Kind == ItemImage {
			res = append(res, it.Image)
		}
	}
	return res
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestConvert_Blank(t *testing.T) {
	for _, src := range []string{"", "   ", "\n\t"} {
		if got := convert(t, src); len(got) != 0 {
			t.Errorf("Convert(%q) produced %d blocks", src, len(got))
		}
	}
}

func TestConvert_TailPreservation(t *testing.T) {
	ps := paragraphs(t, convert(t, `<p>A<b>B</b>C</p>`))
	if len(ps) != 1 {
		t.Fatalf("got %d paragraphs, want 1", len(ps))
	}
	want := []Item{
		{Kind: ItemText, Text: "A"},
		{Kind: ItemText, Text: "B", Style: Style{Bold: true}},
		{Kind: ItemText, Text: "C"},
	}
	got := ps[0].Items
	if len(got) != len(want) {
		t.Fatalf("got %d items, want %d:\n%s", len(got), len(want), Dump([]Block{ps[0]}))
	}
	for i := range want {
		if got[i].Kind != want[i].Kind || got[i].Text != want[i].Text || got[i].Style != want[i].Style {
			t.Errorf("item %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestConvert_TailAfterNestedElements(t *testing.T) {
	ps := paragraphs(t, convert(t, `<h2>x<i>y<b>z</b>w</i>v</h2>`))
	items := ps[0].Items
	want := []struct {
		text  string
		style Style
	}{
		{"x", Style{Bold: true, Size: 20}},
		{"y", Style{Bold: true, Italic: true, Size: 20}},
		{"z", Style{Bold: true, Italic: true, Size: 20}},
		{"w", Style{Bold: true, Italic: true, Size: 20}},
		{"v", Style{Bold: true, Size: 20}},
	}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i, w := range want {
		if items[i].Text != w.text || items[i].Style != w.style {
			t.Errorf("item %d = %q %v, want %q %v", i, items[i].Text, items[i].Style, w.text, w.style)
		}
	}
}

func TestConvert_EmptyParagraphPreserved(t *testing.T) {
	ps := paragraphs(t, convert(t, `<p></p><p>X</p>`))
	if len(ps) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(ps))
	}
	if len(ps[0].Items) != 0 {
		t.Errorf("first paragraph has items: %+v", ps[0].Items)
	}
	if got := ps[1].Text(); got != "X" {
		t.Errorf("second paragraph = %q, want X", got)
	}
}

func TestConvert_NestedStyles(t *testing.T) {
	ps := paragraphs(t, convert(t, `<p><span style="color:#f00"><b><i><u>x</u></i></b></span></p>`))
	want := Style{Bold: true, Italic: true, Underline: true, Color: RGB(255, 0, 0)}
	if got := ps[0].Items[0].Style; got != want {
		t.Errorf("style = %+v, want %+v", got, want)
	}
}

func TestConvert_NonBreakingSpace(t *testing.T) {
	ps := paragraphs(t, convert(t, `<p>a&nbsp;b<b>&nbsp;</b></p>`))
	if got := ps[0].Text(); got != "a b " {
		t.Errorf("text = %q", got)
	}
}

func TestConvert_Headings(t *testing.T) {
	ps := paragraphs(t, convert(t, `<h1>One</h1><h6 style="text-align: right">Six</h6>`))
	if len(ps) != 2 {
		t.Fatalf("got %d paragraphs", len(ps))
	}
	if s := ps[0].Items[0].Style; !s.Bold || s.Size != 24 {
		t.Errorf("h1 style = %+v", s)
	}
	if s := ps[1].Items[0].Style; !s.Bold || s.Size != 12 {
		t.Errorf("h6 style = %+v", s)
	}
	if ps[1].Align != AlignRight {
		t.Errorf("h6 align = %v", ps[1].Align)
	}
}

func TestConvert_BlockLists(t *testing.T) {
	ps := paragraphs(t, convert(t, `<ol style="margin-left: 40px"><li>one</li><li>two <b>b</b></li><p>ignored</p></ol><ul><li>x</li></ul>`))
	got := texts(ps)
	want := []string{"1. one", "2. two b", "• x"}
	if !equalStrings(got, want) {
		t.Fatalf("texts = %q, want %q", got, want)
	}
	if ps[0].Indent != 30 || ps[1].Indent != 30 || ps[2].Indent != 0 {
		t.Errorf("indents = %v %v %v", ps[0].Indent, ps[1].Indent, ps[2].Indent)
	}
	if !ps[0].Items[0].Style.IsPlain() {
		t.Errorf("prefix style = %+v", ps[0].Items[0].Style)
	}
	if last := ps[1].Items[len(ps[1].Items)-1]; last.Text != "b" || !last.Style.Bold {
		t.Errorf("last item = %+v", last)
	}
}

func TestConvert_InlineListInCell(t *testing.T) {
	blocks := convert(t, `<table><tr><td>items:<ol><li>a</li><li>b</li></ol>done</td></tr></table>`)
	tbl, ok := blocks[0].(*Table)
	if !ok {
		t.Fatalf("block is %T", blocks[0])
	}
	if got := tbl.Rows[0][0].Paragraph.Text(); got != "items:\n1. a\n2. bdone" {
		t.Errorf("cell text = %q", got)
	}
}

func TestConvert_InlineBlocksInCell(t *testing.T) {
	blocks := convert(t, `<table><tr><td><p>a</p><p>b</p><div>c</div></td><td><p></p><p>x</p></td></tr></table>`)
	tbl := blocks[0].(*Table)
	if got := tbl.Rows[0][0].Paragraph.Text(); got != "a\nb\nc" {
		t.Errorf("cell 0 = %q", got)
	}
	if got := tbl.Rows[0][1].Paragraph.Text(); got != "x" {
		t.Errorf("cell 1 = %q", got)
	}
}

func TestConvert_ListItemSuppressesLeadingBreak(t *testing.T) {
	ps := paragraphs(t, convert(t, `<ul><li><p>a</p></li></ul>`))
	if got := ps[0].Text(); got != "• a" {
		t.Errorf("text = %q, want %q", got, "• a")
	}
}

func TestConvert_TableRaggedRows(t *testing.T) {
	blocks := convert(t, `<table>
		<tr><td>a</td><td>b</td></tr>
		<tr><th>c</th><td>d</td><td>e</td></tr>
		<tr><td>f</td></tr>
	</table>`)
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks", len(blocks))
	}
	tbl := blocks[0].(*Table)
	if tbl.Cols != 3 || len(tbl.Rows) != 3 {
		t.Fatalf("table %dx%d, want 3x3", len(tbl.Rows), tbl.Cols)
	}
	for i, row := range tbl.Rows {
		if len(row) != 3 {
			t.Errorf("row %d has %d cells", i, len(row))
		}
	}
	if tbl.Rows[0][2] != nil {
		t.Error("row 1 cell 3 should be empty")
	}
	if tbl.Rows[2][1] != nil || tbl.Rows[2][2] != nil {
		t.Error("row 3 cells 2-3 should be empty")
	}
	th := tbl.Rows[1][0]
	if !th.Header || !th.Paragraph.Items[0].Style.Bold {
		t.Errorf("th cell = %+v", th)
	}
	if tbl.Rows[1][1].Header || tbl.Rows[1][1].Paragraph.Items[0].Style.Bold {
		t.Error("td cell rendered as header")
	}
}

func TestConvert_EmptyTablesSkipped(t *testing.T) {
	for _, src := range []string{
		`<table></table>`,
		`<table><tr></tr><tr></tr></table>`,
	} {
		if got := convert(t, src); len(got) != 0 {
			t.Errorf("Convert(%q) = %s", src, Dump(got))
		}
	}
}

func TestConvert_TableColumnWidths(t *testing.T) {
	blocks := convert(t, `<table>
		<colgroup><col style="width: 96px"><col></colgroup>
		<tr><td colwidth="200">a</td><td>b</td><td>c</td><td>d</td></tr>
		<tr><td>e</td><td width="48">f</td><td data-colwidth="abc">g</td><td style="width:192px">h</td></tr>
	</table>`)
	tbl := blocks[0].(*Table)
	want := []float64{25.399968, 12.699984, 0, 50.799936}
	if len(tbl.Widths) != len(want) {
		t.Fatalf("widths = %v", tbl.Widths)
	}
	for i := range want {
		if !near(tbl.Widths[i], want[i]) {
			t.Errorf("width[%d] = %v, want %v", i, tbl.Widths[i], want[i])
		}
	}
}

func TestTableColumnWidths_NestedTableIgnored(t *testing.T) {
	root, err := markup.Parse(`<table><tr><td><table><tr><td width="500">x</td></tr></table></td></tr></table>`)
	if err != nil {
		t.Fatal(err)
	}
	widths := plain.columnWidths(root.Children[0], 1)
	if len(widths) != 1 || widths[0] != 0 {
		t.Errorf("widths = %v", widths)
	}
	blocks := New(nil).ConvertNode(root)
	tbl := blocks[0].(*Table)
	if len(tbl.Rows) != 1 {
		t.Errorf("outer table rows = %d, want 1", len(tbl.Rows))
	}
}

func TestConvert_ImageFallback(t *testing.T) {
	ps := paragraphs(t, convert(t, `<p>x<img src="not-a-data-uri">tail</p>`))
	if len(ps) != 1 {
		t.Fatalf("got %d paragraphs", len(ps))
	}
	if got := ps[0].Text(); got != "xtail" {
		t.Errorf("text = %q", got)
	}
	if len(images(ps[0])) != 0 {
		t.Error("unexpected image")
	}

	ps = paragraphs(t, convert(t, `<img src="http://example.com/a.png">after`))
	if len(ps) != 1 || ps[0].Text() != "after" || len(images(ps[0])) != 0 {
		t.Errorf("unexpected result:\n%s", Dump([]Block{ps[0]}))
	}
}

func TestConvert_InlineImage(t *testing.T) {
	ps := paragraphs(t, convert(t, `<p>a<img src="`+fakePNG+`" height="96"><br>b</p>`))
	items := ps[0].Items
	if len(items) != 4 {
		t.Fatalf("got %d items:\n%s", len(items), Dump([]Block{ps[0]}))
	}
	if items[1].Kind != ItemImage || items[2].Kind != ItemBreak {
		t.Fatalf("unexpected kinds %v %v", items[1].Kind, items[2].Kind)
	}
	img := items[1].Image
	if img.WidthMM != 0 || !near(img.HeightMM, 25.399968) {
		t.Errorf("image size = %v x %v", img.WidthMM, img.HeightMM)
	}
	if string(img.Data) != "fakepng" || img.MimeType != "image/png" {
		t.Errorf("image data = %q %q", img.MimeType, img.Data)
	}
}

func TestConvert_BlockImage(t *testing.T) {
	ps := paragraphs(t, convert(t, `<img src="`+fakePNG+`" width="96" height="10" style="margin:0 auto">`))
	if len(ps) != 1 {
		t.Fatalf("got %d paragraphs", len(ps))
	}
	if ps[0].Align != AlignCenter {
		t.Errorf("align = %v, want center", ps[0].Align)
	}
	imgs := images(ps[0])
	if len(imgs) != 1 || !near(imgs[0].WidthMM, 25.399968) || imgs[0].HeightMM != 0 {
		t.Errorf("images = %+v", imgs)
	}
}

func TestConvert_ParagraphWithSingleImage(t *testing.T) {
	tests := []struct {
		src  string
		want Alignment
	}{
		{`<p><img src="` + fakePNG + `" style="margin-left:auto;margin-right:auto"></p>`, AlignCenter},
		{`<p><img src="` + fakePNG + `" containerstyle="margin-left: auto"></p>`, AlignRight},
		{`<p align="left"><img src="` + fakePNG + `" style="margin:0 auto"></p>`, AlignLeft},
		{`<p>x<img src="` + fakePNG + `" style="margin:0 auto"></p>`, AlignUnset},
	}
	for _, tt := range tests {
		ps := paragraphs(t, convert(t, tt.src))
		if ps[0].Align != tt.want {
			t.Errorf("%s: align = %v, want %v", tt.src, ps[0].Align, tt.want)
		}
	}
}

func TestConvert_IndentInheritance(t *testing.T) {
	ps := paragraphs(t, convert(t, `<div style="margin-left:40px"><p>x</p><section><p style="margin-left: 20px">y</p><p>z</p></section><p style="margin-left:0px">w</p></div><p>v</p>`))
	got := texts(ps)
	if !equalStrings(got, []string{"x", "y", "z", "w", "v"}) {
		t.Fatalf("texts = %q", got)
	}
	want := []float64{30, 15, 30, 0, 0}
	for i, p := range ps {
		if p.Indent != want[i] {
			t.Errorf("paragraph %q indent = %v, want %v", p.Text(), p.Indent, want[i])
		}
	}
}

func TestConvert_AlignmentInheritance(t *testing.T) {
	ps := paragraphs(t, convert(t, `<div align="center"><p>x</p><p style="text-align: right">y</p></div><p>z</p>`))
	want := []Alignment{AlignCenter, AlignRight, AlignUnset}
	for i, p := range ps {
		if p.Align != want[i] {
			t.Errorf("paragraph %q align = %v, want %v", p.Text(), p.Align, want[i])
		}
	}
}

func TestConvert_LooseText(t *testing.T) {
	ps := paragraphs(t, convert(t, "lead<p>x</p> tail <div style=\"margin-left:8px\">inner<p>y</p>after</div>\n"))
	got := texts(ps)
	want := []string{"lead", "x", "tail", "inner", "y", "after"}
	if !equalStrings(got, want) {
		t.Fatalf("texts = %q, want %q", got, want)
	}
	if ps[3].Indent != 6 || ps[5].Indent != 6 {
		t.Errorf("loose text in div not indented: %v %v", ps[3].Indent, ps[5].Indent)
	}
}

func TestConvert_BlockBreakAndFallback(t *testing.T) {
	ps := paragraphs(t, convert(t, `<br><blockquote style="margin-left: 4px; text-align: center">q <em>e</em></blockquote><span>s</span>`))
	if len(ps) != 3 {
		t.Fatalf("got %d paragraphs", len(ps))
	}
	if len(ps[0].Items) != 0 {
		t.Error("br paragraph not empty")
	}
	if ps[1].Text() != "q e" || ps[1].Indent != 3 || ps[1].Align != AlignCenter {
		t.Errorf("fallback paragraph = %q indent=%v align=%v", ps[1].Text(), ps[1].Indent, ps[1].Align)
	}
	if !ps[1].Items[1].Style.Italic {
		t.Error("em lost")
	}
	if ps[2].Text() != "s" {
		t.Errorf("span paragraph = %q", ps[2].Text())
	}
}

func TestConvert_MalformedMarkupFallback(t *testing.T) {
	src := strings.Repeat("<div>", markup.MaxDepth+1) + "<span>unterminated"
	ps := paragraphs(t, convert(t, src))
	if len(ps) != 1 {
		t.Fatalf("got %d paragraphs", len(ps))
	}
	if len(ps[0].Items) != 1 || ps[0].Items[0].Text != src {
		t.Errorf("fallback paragraph does not hold input verbatim")
	}
}

func TestConvert_UnterminatedMarkupRecovered(t *testing.T) {
	ps := paragraphs(t, convert(t, `<div><span>unterminated`))
	if len(ps) != 1 || ps[0].Text() != "unterminated" {
		t.Errorf("unexpected result:\n%s", Dump([]Block{ps[0]}))
	}
}

func TestConvertMarkdown(t *testing.T) {
	blocks := New(zaptest.NewLogger(t)).ConvertMarkdown("## Scope\n\nSome **bold** text\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks:\n%s", len(blocks), Dump(blocks))
	}
	h := blocks[0].(*Paragraph)
	if h.Text() != "Scope" || h.Items[0].Style.Size != 20 {
		t.Errorf("heading = %q %+v", h.Text(), h.Items[0].Style)
	}
	p := blocks[1].(*Paragraph)
	if p.Text() != "Some bold text" || !p.Items[1].Style.Bold {
		t.Errorf("paragraph = %q", p.Text())
	}
	tbl := blocks[2].(*Table)
	if tbl.Cols != 2 || len(tbl.Rows) != 2 || !tbl.Rows[0][0].Header {
		t.Errorf("table = %s", Dump([]Block{tbl}))
	}
}

func TestAppend_Collector(t *testing.T) {
	var c Collector
	New(zaptest.NewLogger(t)).Append(&c, `<p align="center">A<b>B</b></p><table><tr><td>x</td><td></td></tr><tr><td>y</td></tr></table>`)
	if len(c.Blocks) != 2 {
		t.Fatalf("got %d blocks", len(c.Blocks))
	}
	want := "paragraph align=center\n" +
		"  text \"A\"\n" +
		"  text \"B\" style=bold\n" +
		"table cols=2 rows=2\n" +
		"  row 0\n" +
		"    td\n" +
		"      text \"x\"\n" +
		"    td\n" +
		"  row 1\n" +
		"    td\n" +
		"      text \"y\"\n" +
		"    <empty>\n"
	if got := c.String(); got != want {
		t.Errorf("dump =\n%s\nwant:\n%s", got, want)
	}
}
