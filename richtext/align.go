package richtext

import (
	"strings"

	"cradoc/markup"
)

// Alignment is horizontal paragraph alignment.
type Alignment int

const (
	AlignUnset Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
	AlignJustify
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustify:
		return "justify"
	default:
		return ""
	}
}

// Or returns a if set, otherwise fallback.
func (a Alignment) Or(fallback Alignment) Alignment {
	if a != AlignUnset {
		return a
	}
	return fallback
}

func parseAlignment(s string) Alignment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return AlignLeft
	case "center":
		return AlignCenter
	case "right":
		return AlignRight
	case "justify":
		return AlignJustify
	}
	return AlignUnset
}

// alignment checks align attribute, then the last text-align
// declaration of the style attribute. Unrecognized values count as absent.
func (r resolver) alignment(n *markup.Node) Alignment {
	if a := parseAlignment(n.AttrValue("align")); a != AlignUnset {
		return a
	}
	if v, ok := r.declarations(n).Last("text-align"); ok {
		return parseAlignment(v.Raw)
	}
	return AlignUnset
}

// imageAlignment extends alignment with margin conventions used by
// editor image resize extension: container style first, then own style.
func (r resolver) imageAlignment(n *markup.Node) Alignment {
	if a := r.alignment(n); a != AlignUnset {
		return a
	}
	// parser lowercases attribute names, containerStyle included
	if a := r.marginAlignment(n.AttrValue("containerstyle")); a != AlignUnset {
		return a
	}
	return r.marginAlignment(n.AttrValue("style"))
}

// marginAlignment infers alignment from auto margins: both sides auto is
// center, only left auto is right and only right auto is left. Explicit
// margin-left/margin-right are checked before the margin shorthand.
func (r resolver) marginAlignment(style string) Alignment {
	decls := r.css.ParseInline(style)
	if len(decls) == 0 {
		return AlignUnset
	}

	if decls.Has("margin-left") || decls.Has("margin-right") {
		left, _ := decls.Last("margin-left")
		right, _ := decls.Last("margin-right")
		if a := alignFromMargins(left.IsKeyword("auto"), right.IsKeyword("auto")); a != AlignUnset {
			return a
		}
	}

	margin, ok := decls.Last("margin")
	if !ok {
		return AlignUnset
	}
	tokens := margin.Fields()
	switch len(tokens) {
	case 0:
		return AlignUnset
	case 1:
		return alignFromMargins(tokens[0] == "auto", tokens[0] == "auto")
	case 2, 3:
		return alignFromMargins(tokens[1] == "auto", tokens[1] == "auto")
	default:
		return alignFromMargins(tokens[3] == "auto", tokens[1] == "auto")
	}
}

func alignFromMargins(leftAuto, rightAuto bool) Alignment {
	switch {
	case leftAuto && rightAuto:
		return AlignCenter
	case leftAuto:
		return AlignRight
	case rightAuto:
		return AlignLeft
	}
	return AlignUnset
}

// indent returns left indent in points from a px margin-left
// declaration. Negative or non-px values are ignored.
func (r resolver) indent(n *markup.Node) (float64, bool) {
	v, ok := r.declarations(n).Last("margin-left")
	if !ok {
		return 0, false
	}
	px, ok := v.Px()
	if !ok || px < 0 {
		return 0, false
	}
	return PxToPt(px), true
}
