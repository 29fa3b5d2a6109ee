// Package report assembles CRA conformity documentation from payload: cover
// page followed by numbered sections whose content is converted from
// rich-text fields.
package report

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"cradoc/common"
	"cradoc/config"
	"cradoc/docx"
	"cradoc/richtext"
)

const (
	coverTitleSize    = 24
	defaultCoverTitle = "CRA Documentation Title"
	documentSubject   = "CRA Documentation"
)

// Builder produces documents sharing configuration. It is safe to use
// concurrently, every Build works on its own document.
type Builder struct {
	cfg          *config.DocumentConfig
	log          *zap.Logger
	conv         *richtext.Converter
	defaultCover []byte
}

// Options tune a single Build.
type Options struct {
	// Dir resolves relative cover image path.
	Dir string
	// Title of document properties, cover title when empty.
	Title string
}

// NewBuilder returns builder. defaultCover is SVG used for cover without
// image when placeholder is requested by configuration.
func NewBuilder(cfg *config.DocumentConfig, log *zap.Logger, defaultCover []byte) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		cfg:          cfg,
		log:          log.Named("report"),
		conv:         richtext.New(log),
		defaultCover: defaultCover,
	}
}

// assembly is the state of a single Build.
type assembly struct {
	*Builder
	doc    *docx.Document
	format common.PayloadFormat
	dir    string
}

func (b *Builder) newAssembly(format common.PayloadFormat, dir string) *assembly {
	return &assembly{
		Builder: b,
		doc:     docx.New(b.cfg, b.log),
		format:  format,
		dir:     dir,
	}
}

// Build lays out complete document. Empty sections are skipped, payload
// without any content is an error.
func (b *Builder) Build(p *Payload, opts Options) (*docx.Document, error) {
	if p == nil || p.IsEmpty() {
		return nil, ErrEmptyPayload
	}

	a := b.newAssembly(p.Format, opts.Dir)

	if p.Cover != nil {
		a.cover(p.Cover)
	}
	a.introduction(&p.Introduction)
	a.section("2.", "Security Problem Definition", p.SecurityProblemDefinition)
	a.section("3.", "Conformance Claims", p.ConformanceClaims)
	a.section("4.", "Security Objectives", p.SecurityObjectives)
	a.riskManagement(p.RiskManagement, p.ProductName())
	a.securityRequirements(&p.SecurityRequirements)
	a.summarySpecification(p.SummarySpecification)

	title := opts.Title
	props := docx.Properties{Subject: documentSubject, Keywords: []string{"CRA"}}
	if p.Cover != nil {
		if len(title) == 0 {
			title = strings.TrimSpace(p.Cover.Title)
		}
		props.Description = strings.TrimSpace(p.Cover.Description)
		if m := strings.TrimSpace(p.Cover.Manufacturer); m != "" {
			props.Keywords = append(props.Keywords, m)
		}
	}
	props.Title = title
	a.doc.SetProperties(props)

	b.log.Debug("Report assembled", zap.Int("blocks", a.doc.Len()), zap.Stringer("format", p.Format))
	return a.doc, nil
}

// BuildFragment converts single markup fragment into document with base page
// setup.
func (b *Builder) BuildFragment(src string, format common.PayloadFormat, title string) *docx.Document {
	a := b.newAssembly(format, "")
	a.field(src)
	a.doc.SetProperties(docx.Properties{Title: title})
	return a.doc
}

// field appends converted rich-text field.
func (a *assembly) field(src string) {
	if blank(src) {
		return
	}
	switch a.format {
	case common.PayloadFormatMarkdown:
		a.conv.AppendMarkdown(a.doc, src)
	default:
		a.conv.Append(a.doc, src)
	}
}

// pageBreak starts new page unless nothing was written yet.
func (a *assembly) pageBreak() {
	if a.doc.Len() > 0 {
		a.doc.AddPageBreak()
	}
}

func (a *assembly) heading(text string, size float64, before, after float64) {
	a.doc.AddText(text, docx.TextOptions{
		Style:       richtext.Style{Bold: true, Size: size},
		SpaceBefore: before,
		SpaceAfter:  after,
		KeepNext:    true,
	})
}

func (a *assembly) sectionHeading(text string) {
	a.heading(text, a.cfg.Font.SectionSize, 12, 8)
}

func (a *assembly) subsectionHeading(text string) {
	a.heading(text, a.cfg.Font.SubsectionSize, 8, 6)
}

// label is bold body sized heading of a block inside subsection.
func (a *assembly) label(text string) {
	a.heading(text, 0, 10, 4)
}

func (a *assembly) text(text string, after float64) {
	a.doc.AddText(text, docx.TextOptions{SpaceAfter: after})
}

// reference is bold clause reference line.
func (a *assembly) reference(text string) {
	a.doc.AddText(text, docx.TextOptions{Style: richtext.Style{Bold: true}, SpaceAfter: 10})
}

var requirementStyle = richtext.Style{Color: richtext.RGB(0, 0, 255)}

// requirement is quoted normative text set apart by color.
func (a *assembly) requirement(text string) {
	a.doc.AddText(text, docx.TextOptions{Style: requirementStyle, SpaceAfter: 2})
}

// section is top level numbered section holding single field.
func (a *assembly) section(number, title, src string) {
	if blank(src) {
		return
	}
	a.pageBreak()
	a.sectionHeading(number + " " + title)
	a.field(src)
}

func (a *assembly) cover(c *Cover) {
	a.coverImage(strings.TrimSpace(c.Image))

	title := strings.TrimSpace(c.Title)
	if title == "" {
		title = defaultCoverTitle
	}
	a.doc.AddText(title, docx.TextOptions{
		Style:      richtext.Style{Bold: true, Size: coverTitleSize},
		Align:      richtext.AlignCenter,
		SpaceAfter: 12,
	})
	if d := strings.TrimSpace(c.Description); d != "" {
		a.doc.AddText(d, docx.TextOptions{Align: richtext.AlignCenter, SpaceAfter: 18})
	}

	for _, item := range []struct{ label, value string }{
		{"Version", orDash(c.Version)},
		{"Revision", orDash(c.Revision)},
		{"Manufacturer/Laboratory", orDash(c.Manufacturer)},
		{"Date", formatDate(c.Date, a.cfg.Cover.DateFormat, a.cfg.LanguageTag())},
	} {
		a.doc.AddRuns(docx.TextOptions{SpaceAfter: 6},
			docx.Run{Text: item.label + ": ", Style: richtext.Style{Bold: true}},
			docx.Run{Text: item.value},
		)
	}
}

// coverImage adds cover picture: payload image (data URI or file), then
// configured default image, then built-in placeholder when enabled. Image
// problems never fail the build.
func (a *assembly) coverImage(src string) {
	width := a.cfg.Cover.ImageWidth

	switch {
	case strings.HasPrefix(src, "data:"):
		if img, ok := richtext.DecodeImage(src); ok && a.doc.AddImage(img, width, richtext.AlignCenter) {
			return
		}
		a.log.Warn("Unable to use cover image from payload, ignoring")
		return
	case src != "":
		if !filepath.IsAbs(src) {
			src = filepath.Join(a.dir, src)
		}
		if err := a.doc.AddImageFile(src, width, richtext.AlignCenter); err != nil {
			a.log.Warn("Unable to use cover image, ignoring", zap.String("path", src), zap.Error(err))
		}
		return
	}

	if path := a.cfg.Cover.DefaultImagePath; path != "" {
		if err := a.doc.AddImageFile(path, width, richtext.AlignCenter); err != nil {
			a.log.Warn("Unable to use default cover image, ignoring", zap.String("path", path), zap.Error(err))
		}
		return
	}
	if a.cfg.Cover.Placeholder && len(a.defaultCover) > 0 {
		a.doc.AddImage(richtext.ImageData{MimeType: "image/svg+xml", Data: a.defaultCover}, width, richtext.AlignCenter)
	}
}

func orDash(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return emDash
	}
	return s
}
