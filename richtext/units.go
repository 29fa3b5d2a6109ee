package richtext

// CSS reference pixel is 1/96 inch.
const (
	PointsPerPixel = 0.75
	MMPerPixel     = 0.264583
)

// PxToPt converts CSS pixels to typographic points.
func PxToPt(px float64) float64 {
	return px * PointsPerPixel
}

// PxToMM converts CSS pixels to millimeters.
func PxToMM(px float64) float64 {
	return px * MMPerPixel
}

// Heading font sizes in points, indexed by level.
var headingSizes = map[string]float64{
	"h1": 24,
	"h2": 20,
	"h3": 18,
	"h4": 16,
	"h5": 14,
	"h6": 12,
}

// HeadingSize returns font size for heading tag or 0 for other tags.
func HeadingSize(tag string) float64 {
	return headingSizes[tag]
}
