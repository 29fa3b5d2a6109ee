// Package docx builds WordprocessingML (DOCX) packages. Document implements
// richtext.Sink so converted markup can be appended directly.
package docx

import (
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"cradoc/config"
	"cradoc/richtext"
)

const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"

	relImage = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	// TwipsPerPoint converts points (indents) to twentieths of a point.
	TwipsPerPoint = 20
	// TwipsPerMM converts millimeters (page geometry, table columns) to twips.
	TwipsPerMM = 1440 / 25.4
	// EMUPerMM converts millimeters (drawing extents) to English Metric Units.
	EMUPerMM = 36000
)

// Properties end up in docProps/core.xml.
type Properties struct {
	Title       string
	Subject     string
	Creator     string
	Description string
	Keywords    []string
	Created     time.Time
}

// Document accumulates body content and media until written.
type Document struct {
	cfg *config.DocumentConfig
	log *zap.Logger

	id    uuid.UUID
	props Properties

	body   []*etree.Element
	media  []*mediaPart
	nextID int
}

var _ richtext.Sink = (*Document)(nil)

// New creates empty document with page setup and image processing taken from
// configuration.
func New(cfg *config.DocumentConfig, log *zap.Logger) *Document {
	if log == nil {
		log = zap.NewNop()
	}
	return &Document{
		cfg:   cfg,
		log:   log.Named("docx"),
		id:    uuid.New(),
		props: Properties{Creator: cfg.Metainformation.Creator, Created: time.Now()},
	}
}

// SetProperties replaces document properties, zero Created keeps current
// time stamp.
func (d *Document) SetProperties(p Properties) {
	if p.Created.IsZero() {
		p.Created = d.props.Created
	}
	if len(p.Creator) == 0 {
		p.Creator = d.props.Creator
	}
	d.props = p
}

// ID returns unique identifier of the document.
func (d *Document) ID() uuid.UUID {
	return d.id
}

// Len returns number of body blocks (paragraphs and tables) added so far.
func (d *Document) Len() int {
	return len(d.body)
}

func (d *Document) appendBlock(el *etree.Element) {
	d.body = append(d.body, el)
}

func (d *Document) newDrawingID() int {
	d.nextID++
	return d.nextID
}

func mmToTwips(mm float64) int {
	return int(mm*TwipsPerMM + 0.5)
}

func mmToEMU(mm float64) int64 {
	return int64(mm*EMUPerMM + 0.5)
}

func ptToTwips(pt float64) int {
	return int(pt*TwipsPerPoint + 0.5)
}

// ptToHalfPoints converts font size to w:sz units.
func ptToHalfPoints(pt float64) int {
	return int(pt*2 + 0.5)
}
