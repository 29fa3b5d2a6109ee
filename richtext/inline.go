package richtext

import (
	"strconv"

	"go.uber.org/zap"

	"cradoc/markup"
)

// inline appends content of n to a single paragraph. It never emits n's own
// tail: whoever iterates n's siblings does that with its own style, so every
// tail is written exactly once.
func (w *walker) inline(p *Paragraph, n *markup.Node, inherited Style, suppressLeadingBreak bool) {
	style := Merge(inherited, w.res.style(n))

	switch n.Tag {
	case "img":
		if img, ok := w.image(n); ok {
			p.addImage(img)
		}

	case "br":
		p.addBreak()

	case "p", "div":
		if p.HasContent() && !suppressLeadingBreak {
			p.addBreak()
		}
		p.addText(n.Text, style)
		w.inlineChildren(p, n, style, false)

	case "ul", "ol":
		for i, li := range n.ChildrenByTag("li") {
			if p.HasContent() {
				p.addBreak()
			}
			p.addText(listPrefix(n.Tag, i+1), style)
			w.inline(p, li, style, false)
		}

	case "li":
		p.addText(n.Text, style)
		w.inlineChildren(p, n, style, true)

	default:
		p.addText(n.Text, style)
		w.inlineChildren(p, n, style, false)
	}
}

func (w *walker) inlineChildren(p *Paragraph, n *markup.Node, style Style, suppressLeadingBreak bool) {
	for _, c := range n.Children {
		w.inline(p, c, style, suppressLeadingBreak)
		p.addText(c.Tail, style)
	}
}

func listPrefix(tag string, n int) string {
	if tag == "ol" {
		return strconv.Itoa(n) + ". "
	}
	return "• "
}

// image decodes img source and sizes it: width wins over height, neither
// means intrinsic size.
func (w *walker) image(n *markup.Node) (*Image, bool) {
	data, ok := DecodeImage(n.AttrValue("src"))
	if !ok {
		w.log.Debug("Skipping image without usable data URI", zap.Int("src_len", len(n.AttrValue("src"))))
		return nil, false
	}
	img := &Image{ImageData: data}
	if px, ok := w.res.dimension(n, "width"); ok {
		img.WidthMM = PxToMM(px)
	} else if px, ok := w.res.dimension(n, "height"); ok {
		img.HeightMM = PxToMM(px)
	}
	return img, true
}
