package docx

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"cradoc/misc"
)

const (
	tableStyleID = "TableGrid"

	relOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relCoreProps      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relExtendedProps  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
	relStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relSettings       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/settings"

	nsContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"
)

func newXMLDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	return doc
}

func (d *Document) contentTypesPart() *etree.Document {
	doc := newXMLDocument()
	types := doc.CreateElement("Types")
	types.CreateAttr("xmlns", nsContentTypes)

	addDefault := func(ext, ct string) {
		def := types.CreateElement("Default")
		def.CreateAttr("Extension", ext)
		def.CreateAttr("ContentType", ct)
	}
	addDefault("rels", "application/vnd.openxmlformats-package.relationships+xml")
	addDefault("xml", "application/xml")

	var exts []string
	for _, m := range d.media {
		if !slices.Contains(exts, m.ext) {
			exts = append(exts, m.ext)
		}
	}
	slices.Sort(exts)
	for _, ext := range exts {
		addDefault(ext, contentType(ext))
	}

	addOverride := func(name, ct string) {
		o := types.CreateElement("Override")
		o.CreateAttr("PartName", name)
		o.CreateAttr("ContentType", ct)
	}
	addOverride("/word/document.xml", "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml")
	addOverride("/word/styles.xml", "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml")
	addOverride("/word/settings.xml", "application/vnd.openxmlformats-officedocument.wordprocessingml.settings+xml")
	addOverride("/docProps/core.xml", "application/vnd.openxmlformats-package.core-properties+xml")
	addOverride("/docProps/app.xml", "application/vnd.openxmlformats-officedocument.extended-properties+xml")
	return doc
}

func relationships() (*etree.Document, func(id, typ, target string)) {
	doc := newXMLDocument()
	rels := doc.CreateElement("Relationships")
	rels.CreateAttr("xmlns", nsRelationships)
	return doc, func(id, typ, target string) {
		r := rels.CreateElement("Relationship")
		r.CreateAttr("Id", id)
		r.CreateAttr("Type", typ)
		r.CreateAttr("Target", target)
	}
}

func packageRelsPart() *etree.Document {
	doc, add := relationships()
	add("rId1", relOfficeDocument, "word/document.xml")
	add("rId2", relCoreProps, "docProps/core.xml")
	add("rId3", relExtendedProps, "docProps/app.xml")
	return doc
}

func (d *Document) documentRelsPart() *etree.Document {
	doc, add := relationships()
	add("rId1", relStyles, "styles.xml")
	add("rId2", relSettings, "settings.xml")
	for _, m := range d.media {
		add(m.relID, relImage, "media/"+m.name)
	}
	return doc
}

// documentPart moves accumulated body blocks into new document.xml tree.
func (d *Document) documentPart() *etree.Document {
	doc := newXMLDocument()
	root := doc.CreateElement("w:document")
	root.CreateAttr("xmlns:w", nsW)
	root.CreateAttr("xmlns:r", nsR)
	root.CreateAttr("xmlns:wp", nsWP)
	root.CreateAttr("xmlns:a", nsA)
	root.CreateAttr("xmlns:pic", nsPic)

	body := root.CreateElement("w:body")
	for _, el := range d.body {
		body.AddChild(el)
	}
	body.AddChild(d.sectionProps())
	return doc
}

func (d *Document) sectionProps() *etree.Element {
	page := &d.cfg.Page
	w, h := page.Size()

	sectPr := etree.NewElement("w:sectPr")
	pgSz := sectPr.CreateElement("w:pgSz")
	pgSz.CreateAttr("w:w", strconv.Itoa(mmToTwips(w)))
	pgSz.CreateAttr("w:h", strconv.Itoa(mmToTwips(h)))
	if page.Orientation.Landscape() {
		pgSz.CreateAttr("w:orient", "landscape")
	}
	pgMar := sectPr.CreateElement("w:pgMar")
	pgMar.CreateAttr("w:top", strconv.Itoa(mmToTwips(page.Margins.Top)))
	pgMar.CreateAttr("w:right", strconv.Itoa(mmToTwips(page.Margins.Right)))
	pgMar.CreateAttr("w:bottom", strconv.Itoa(mmToTwips(page.Margins.Bottom)))
	pgMar.CreateAttr("w:left", strconv.Itoa(mmToTwips(page.Margins.Left)))
	pgMar.CreateAttr("w:header", "709")
	pgMar.CreateAttr("w:footer", "709")
	pgMar.CreateAttr("w:gutter", "0")
	return sectPr
}

func (d *Document) stylesPart() *etree.Document {
	font := &d.cfg.Font

	doc := newXMLDocument()
	styles := doc.CreateElement("w:styles")
	styles.CreateAttr("xmlns:w", nsW)

	rPrDefault := styles.CreateElement("w:docDefaults").CreateElement("w:rPrDefault").CreateElement("w:rPr")
	fonts := rPrDefault.CreateElement("w:rFonts")
	for _, k := range []string{"w:ascii", "w:hAnsi", "w:eastAsia", "w:cs"} {
		fonts.CreateAttr(k, font.Name)
	}
	sz := strconv.Itoa(ptToHalfPoints(font.Size))
	rPrDefault.CreateElement("w:sz").CreateAttr("w:val", sz)
	rPrDefault.CreateElement("w:szCs").CreateAttr("w:val", sz)
	rPrDefault.CreateElement("w:lang").CreateAttr("w:val", d.cfg.LanguageTag().String())

	normal := styles.CreateElement("w:style")
	normal.CreateAttr("w:type", "paragraph")
	normal.CreateAttr("w:default", "1")
	normal.CreateAttr("w:styleId", "Normal")
	normal.CreateElement("w:name").CreateAttr("w:val", "Normal")
	normal.CreateElement("w:qFormat")
	spacing := normal.CreateElement("w:pPr").CreateElement("w:spacing")
	spacing.CreateAttr("w:after", "120")
	spacing.CreateAttr("w:line", "259")
	spacing.CreateAttr("w:lineRule", "auto")

	tableNormal := styles.CreateElement("w:style")
	tableNormal.CreateAttr("w:type", "table")
	tableNormal.CreateAttr("w:default", "1")
	tableNormal.CreateAttr("w:styleId", "TableNormal")
	tableNormal.CreateElement("w:name").CreateAttr("w:val", "Normal Table")
	tableNormal.CreateElement("w:uiPriority").CreateAttr("w:val", "99")
	tableNormal.CreateElement("w:semiHidden")
	tableNormal.AddChild(cellMargins())

	grid := styles.CreateElement("w:style")
	grid.CreateAttr("w:type", "table")
	grid.CreateAttr("w:styleId", tableStyleID)
	grid.CreateElement("w:name").CreateAttr("w:val", "Table Grid")
	grid.CreateElement("w:basedOn").CreateAttr("w:val", "TableNormal")
	grid.CreateElement("w:uiPriority").CreateAttr("w:val", "39")
	gridPPr := grid.CreateElement("w:pPr").CreateElement("w:spacing")
	gridPPr.CreateAttr("w:after", "0")
	gridPPr.CreateAttr("w:line", "240")
	gridPPr.CreateAttr("w:lineRule", "auto")
	tblPr := cellMargins()
	borders := etree.NewElement("w:tblBorders")
	for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		b := borders.CreateElement("w:" + side)
		b.CreateAttr("w:val", "single")
		b.CreateAttr("w:sz", "4")
		b.CreateAttr("w:space", "0")
		b.CreateAttr("w:color", "auto")
	}
	// borders precede cell margins in CT_TblPr
	tblPr.InsertChildAt(0, borders)
	grid.AddChild(tblPr)

	return doc
}

func cellMargins() *etree.Element {
	tblPr := etree.NewElement("w:tblPr")
	mar := tblPr.CreateElement("w:tblCellMar")
	for _, m := range []struct{ side, w string }{
		{"top", "0"}, {"left", "108"}, {"bottom", "0"}, {"right", "108"},
	} {
		el := mar.CreateElement("w:" + m.side)
		el.CreateAttr("w:w", m.w)
		el.CreateAttr("w:type", "dxa")
	}
	return tblPr
}

func (d *Document) settingsPart() *etree.Document {
	doc := newXMLDocument()
	settings := doc.CreateElement("w:settings")
	settings.CreateAttr("xmlns:w", nsW)
	settings.CreateElement("w:defaultTabStop").CreateAttr("w:val", "709")
	settings.CreateElement("w:characterSpacingControl").CreateAttr("w:val", "doNotCompress")
	cs := settings.CreateElement("w:compat").CreateElement("w:compatSetting")
	cs.CreateAttr("w:name", "compatibilityMode")
	cs.CreateAttr("w:uri", "http://schemas.microsoft.com/office/word")
	cs.CreateAttr("w:val", "15")
	return doc
}

func (d *Document) corePart() *etree.Document {
	doc := newXMLDocument()
	cp := doc.CreateElement("cp:coreProperties")
	cp.CreateAttr("xmlns:cp", "http://schemas.openxmlformats.org/package/2006/metadata/core-properties")
	cp.CreateAttr("xmlns:dc", "http://purl.org/dc/elements/1.1/")
	cp.CreateAttr("xmlns:dcterms", "http://purl.org/dc/terms/")
	cp.CreateAttr("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")

	optional := func(tag, value string) {
		if len(value) > 0 {
			cp.CreateElement(tag).SetText(value)
		}
	}
	optional("dc:title", d.props.Title)
	optional("dc:subject", d.props.Subject)
	optional("dc:creator", d.props.Creator)
	optional("cp:keywords", strings.Join(d.props.Keywords, ", "))
	optional("dc:description", d.props.Description)
	cp.CreateElement("dc:identifier").SetText("urn:uuid:" + d.id.String())
	cp.CreateElement("dc:language").SetText(d.cfg.LanguageTag().String())
	optional("cp:lastModifiedBy", d.props.Creator)

	stamp := d.props.Created.UTC().Format(time.RFC3339)
	for _, tag := range []string{"dcterms:created", "dcterms:modified"} {
		el := cp.CreateElement(tag)
		el.CreateAttr("xsi:type", "dcterms:W3CDTF")
		el.SetText(stamp)
	}
	return doc
}

func (d *Document) appPart() *etree.Document {
	doc := newXMLDocument()
	props := doc.CreateElement("Properties")
	props.CreateAttr("xmlns", "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties")
	props.CreateElement("Application").SetText(misc.GetAppName())
	props.CreateElement("AppVersion").SetText(appVersion(misc.GetVersion()))
	return doc
}

// appVersion converts program version to XX.YYYY form required by extended
// properties schema, anything unparsable becomes 1.0000.
func appVersion(v string) string {
	v = strings.TrimPrefix(v, "v")
	major, minor, _ := strings.Cut(v, ".")
	minor, _, _ = strings.Cut(minor, ".")
	ma, err1 := strconv.Atoi(major)
	mi, err2 := strconv.Atoi(minor)
	if err1 != nil || err2 != nil || ma < 0 || ma > 99 || mi < 0 || mi > 9999 {
		return "1.0000"
	}
	return strconv.Itoa(ma) + "." + strings.Repeat("0", 4-len(strconv.Itoa(mi))) + strconv.Itoa(mi)
}
