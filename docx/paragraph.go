package docx

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"cradoc/richtext"
)

// TextOptions describe a single-run paragraph added by AddText.
type TextOptions struct {
	Style       richtext.Style
	Align       richtext.Alignment
	SpaceBefore float64 // points
	SpaceAfter  float64 // points
	KeepNext    bool
}

// AddParagraph appends converted paragraph.
func (d *Document) AddParagraph(p *richtext.Paragraph) {
	d.appendBlock(d.paragraph(p))
}

// Run is a piece of text with its own formatting.
type Run struct {
	Text  string
	Style richtext.Style
}

// AddText appends paragraph with single run of text, used for headings and
// other fixed content.
func (d *Document) AddText(text string, opts TextOptions) {
	d.AddRuns(opts, Run{Text: text, Style: opts.Style})
}

// AddRuns is AddText for paragraphs mixing formatting, opts.Style is not
// used. Empty runs are dropped.
func (d *Document) AddRuns(opts TextOptions, runs ...Run) {
	p := etree.NewElement("w:p")
	pPr := paragraphProps(opts.Align, 0)
	if opts.KeepNext {
		pPr.CreateElement("w:keepNext")
	}
	if opts.SpaceBefore > 0 || opts.SpaceAfter > 0 {
		spacing := pPr.CreateElement("w:spacing")
		spacing.CreateAttr("w:before", strconv.Itoa(ptToTwips(opts.SpaceBefore)))
		spacing.CreateAttr("w:after", strconv.Itoa(ptToTwips(opts.SpaceAfter)))
	}
	reorderParagraphProps(pPr)
	if len(pPr.ChildElements()) > 0 {
		p.AddChild(pPr)
	}
	for _, r := range runs {
		if len(r.Text) > 0 {
			p.AddChild(textRun(r.Text, r.Style))
		}
	}
	d.appendBlock(p)
}

// AddPageBreak appends paragraph holding page break.
func (d *Document) AddPageBreak() {
	p := etree.NewElement("w:p")
	r := p.CreateElement("w:r")
	r.CreateElement("w:br").CreateAttr("w:type", "page")
	d.appendBlock(p)
}

// paragraph renders converted paragraph. Text following a break loses its
// leading newline: markup serializers put one after <br> and it is not
// content.
func (d *Document) paragraph(src *richtext.Paragraph) *etree.Element {
	p := etree.NewElement("w:p")
	if pPr := paragraphProps(src.Align, src.Indent); len(pPr.ChildElements()) > 0 {
		p.AddChild(pPr)
	}

	afterBreak := false
	for _, item := range src.Items {
		switch item.Kind {
		case richtext.ItemBreak:
			p.CreateElement("w:r").CreateElement("w:br")
			afterBreak = true
		case richtext.ItemText:
			text := item.Text
			if afterBreak {
				text = strings.TrimLeft(text, "\r\n")
			}
			afterBreak = false
			if len(text) == 0 {
				continue
			}
			p.AddChild(textRun(text, item.Style))
		case richtext.ItemImage:
			afterBreak = false
			if r := d.imageRun(item.Image); r != nil {
				p.AddChild(r)
			}
		}
	}
	return p
}

func paragraphProps(align richtext.Alignment, indent float64) *etree.Element {
	pPr := etree.NewElement("w:pPr")
	if indent > 0 {
		pPr.CreateElement("w:ind").CreateAttr("w:left", strconv.Itoa(ptToTwips(indent)))
	}
	if jc := justification(align); len(jc) > 0 {
		pPr.CreateElement("w:jc").CreateAttr("w:val", jc)
	}
	return pPr
}

// pPrOrder is sequence of paragraph properties required by schema, only
// elements produced here are listed.
var pPrOrder = map[string]int{
	"keepNext": 1,
	"spacing":  2,
	"ind":      3,
	"jc":       4,
}

func reorderParagraphProps(pPr *etree.Element) {
	children := pPr.ChildElements()
	for _, c := range children {
		pPr.RemoveChild(c)
	}
	sortElements(children, pPrOrder)
	for _, c := range children {
		pPr.AddChild(c)
	}
}

func sortElements(els []*etree.Element, order map[string]int) {
	// insertion sort, lists are tiny
	for i := 1; i < len(els); i++ {
		for j := i; j > 0 && order[els[j].Tag] < order[els[j-1].Tag]; j-- {
			els[j], els[j-1] = els[j-1], els[j]
		}
	}
}

func justification(a richtext.Alignment) string {
	switch a {
	case richtext.AlignLeft:
		return "left"
	case richtext.AlignCenter:
		return "center"
	case richtext.AlignRight:
		return "right"
	case richtext.AlignJustify:
		return "both"
	default:
		return ""
	}
}

// textRun renders text with style. Tabs become w:tab, line feeds are
// whitespace.
func textRun(text string, style richtext.Style) *etree.Element {
	r := etree.NewElement("w:r")
	if rPr := runProps(style); rPr != nil {
		r.AddChild(rPr)
	}

	text = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(text)
	for i, chunk := range strings.Split(text, "\t") {
		if i > 0 {
			r.CreateElement("w:tab")
		}
		if len(chunk) == 0 {
			continue
		}
		t := r.CreateElement("w:t")
		if strings.TrimSpace(chunk) != chunk {
			t.CreateAttr("xml:space", "preserve")
		}
		t.SetText(chunk)
	}
	return r
}

// runProps follows CT_RPr element order: b, i, strike, color, sz, szCs, u.
func runProps(style richtext.Style) *etree.Element {
	if style.IsPlain() {
		return nil
	}
	rPr := etree.NewElement("w:rPr")
	if style.Bold {
		rPr.CreateElement("w:b")
	}
	if style.Italic {
		rPr.CreateElement("w:i")
	}
	if style.Strike {
		rPr.CreateElement("w:strike")
	}
	if style.Color.Valid {
		rPr.CreateElement("w:color").CreateAttr("w:val", style.Color.Hex())
	}
	if style.Size > 0 {
		sz := strconv.Itoa(ptToHalfPoints(style.Size))
		rPr.CreateElement("w:sz").CreateAttr("w:val", sz)
		rPr.CreateElement("w:szCs").CreateAttr("w:val", sz)
	}
	if style.Underline {
		rPr.CreateElement("w:u").CreateAttr("w:val", "single")
	}
	return rPr
}

// imageRun prepares picture and returns run with inline drawing, nil when
// image cannot be used.
func (d *Document) imageRun(img *richtext.Image) *etree.Element {
	if img == nil {
		return nil
	}
	part, err := d.addMedia(img.ImageData)
	if err != nil {
		d.log.Debug("Skipping image", zap.String("type", img.MimeType), zap.Int("size", len(img.Data)), zap.Error(err))
		return nil
	}
	w, h := d.extent(part, img.WidthMM, img.HeightMM)
	r := etree.NewElement("w:r")
	r.AddChild(d.drawing(part, w, h))
	return r
}

// AddImage appends paragraph holding single picture of given width in
// millimeters (0 - intrinsic). Returns false when image could not be used,
// nothing is appended then.
func (d *Document) AddImage(img richtext.ImageData, widthMM float64, align richtext.Alignment) bool {
	r := d.imageRun(&richtext.Image{ImageData: img, WidthMM: widthMM})
	if r == nil {
		return false
	}
	p := etree.NewElement("w:p")
	if pPr := paragraphProps(align, 0); len(pPr.ChildElements()) > 0 {
		p.AddChild(pPr)
	}
	p.AddChild(r)
	d.appendBlock(p)
	return true
}

// AddImageFile is AddImage for pictures stored in files.
func (d *Document) AddImageFile(path string, widthMM float64, align richtext.Alignment) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read image: %w", err)
	}
	img := richtext.ImageData{MimeType: mime.TypeByExtension(filepath.Ext(path)), Data: data}
	if !d.AddImage(img, widthMM, align) {
		return fmt.Errorf("unable to use image %s", path)
	}
	return nil
}
