package richtext

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mazznoer/csscolorparser"
	"cradoc/markup"
)

// Color is an optional RGB triple.
type Color struct {
	R, G, B uint8
	Valid   bool
}

// RGB makes a valid color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, Valid: true}
}

// Hex returns "RRGGBB" or empty string for unset color.
func (c Color) Hex() string {
	if !c.Valid {
		return ""
	}
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// Style is the character formatting contributed by a node or accumulated
// from its ancestors. Zero Size means unset.
type Style struct {
	Bold      bool
	Italic    bool
	Underline bool
	Strike    bool
	Color     Color
	Size      float64
}

// Merge combines inherited style with the one a child node declares: flags
// are OR-ed, color and size of the child win when present.
func Merge(parent, child Style) Style {
	res := Style{
		Bold:      parent.Bold || child.Bold,
		Italic:    parent.Italic || child.Italic,
		Underline: parent.Underline || child.Underline,
		Strike:    parent.Strike || child.Strike,
		Color:     parent.Color,
		Size:      parent.Size,
	}
	if child.Color.Valid {
		res.Color = child.Color
	}
	if child.Size > 0 {
		res.Size = child.Size
	}
	return res
}

func (s Style) IsPlain() bool {
	return s == Style{}
}

func (s Style) String() string {
	var parts []string
	for _, f := range []struct {
		on   bool
		name string
	}{{s.Bold, "bold"}, {s.Italic, "italic"}, {s.Underline, "underline"}, {s.Strike, "strike"}} {
		if f.on {
			parts = append(parts, f.name)
		}
	}
	if s.Color.Valid {
		parts = append(parts, "#"+s.Color.Hex())
	}
	if s.Size > 0 {
		parts = append(parts, strconv.FormatFloat(s.Size, 'f', -1, 64)+"pt")
	}
	return strings.Join(parts, ",")
}

// style returns formatting the node itself contributes, without
// ancestors.
func (r resolver) style(n *markup.Node) Style {
	var s Style
	switch n.Tag {
	case "strong", "b":
		s.Bold = true
	case "em", "i":
		s.Italic = true
	case "u", "ins":
		s.Underline = true
	case "s", "strike", "del":
		s.Strike = true
	}

	for _, decl := range r.declarations(n) {
		src := strings.ToLower(decl.Source)
		if strings.Contains(src, "bold") {
			s.Bold = true
		}
		if strings.Contains(src, "italic") {
			s.Italic = true
		}
		if strings.Contains(src, "underline") {
			s.Underline = true
		}
		if strings.Contains(src, "line-through") {
			s.Strike = true
		}
		if decl.Property == "color" {
			if c := ParseColor(decl.Value.Raw); c.Valid {
				s.Color = c
			}
		}
	}

	// legacy <font color=...> wins over CSS
	if c := ParseColor(n.AttrValue("color")); c.Valid {
		s.Color = c
	}
	return s
}

var rgbComponent = regexp.MustCompile(`-?[0-9]{1,3}`)

// ParseColor accepts "#rgb", "#rrggbb" and "rgb(r, g, b)" with components
// clamped to 0..255. Anything else, named colors included, yields invalid
// color.
func ParseColor(value string) Color {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case strings.HasPrefix(v, "#"):
		if len(v) != 4 && len(v) != 7 {
			return Color{}
		}
		c, err := csscolorparser.Parse(v)
		if err != nil {
			return Color{}
		}
		r, g, b, _ := c.RGBA255()
		return RGB(r, g, b)
	case strings.HasPrefix(v, "rgb("):
		groups := rgbComponent.FindAllString(v, -1)
		if len(groups) < 3 {
			return Color{}
		}
		var comp [3]uint8
		for i := range comp {
			n, err := strconv.Atoi(groups[i])
			if err != nil {
				return Color{}
			}
			comp[i] = uint8(min(255, max(0, n)))
		}
		return RGB(comp[0], comp[1], comp[2])
	}
	return Color{}
}
