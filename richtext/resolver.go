package richtext

import (
	"cradoc/css"
	"cradoc/markup"
)

// resolver evaluates node attributes. Its css parser reports malformed
// declarations to the converter log.
type resolver struct {
	css *css.Parser
}

func (r resolver) declarations(n *markup.Node) css.Declarations {
	return r.css.ParseInline(n.AttrValue("style"))
}
