// Package markup holds the read-only element tree the rich-text converter
// walks, and the parsers producing it from editor HTML or Markdown.
package markup

import (
	"strings"

	"cradoc/utils/debug"
)

// Attr is a single element attribute. Keys are lowercase.
type Attr struct {
	Key   string
	Value string
}

// Node is one element of a parsed fragment. Text is the character data
// before the first child element, Tail is the character data following the
// element's end tag up to the next sibling. Tail belongs to the parent's
// content stream.
type Node struct {
	Tag      string
	Attrs    []Attr
	Text     string
	Children []*Node
	Tail     string
}

// Attr returns the value of the first attribute with the given key.
func (n *Node) Attr(key string) (string, bool) {
	if n == nil {
		return "", false
	}
	key = strings.ToLower(key)
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// AttrValue returns the attribute value or an empty string.
func (n *Node) AttrValue(key string) string {
	v, _ := n.Attr(key)
	return v
}

// Is reports whether node tag is one of the given (lowercase) names.
func (n *Node) Is(tags ...string) bool {
	if n == nil {
		return false
	}
	for _, t := range tags {
		if n.Tag == t {
			return true
		}
	}
	return false
}

// ChildrenByTag returns direct children with one of the given tags.
func (n *Node) ChildrenByTag(tags ...string) []*Node {
	var res []*Node
	for _, c := range n.Children {
		if c.Is(tags...) {
			res = append(res, c)
		}
	}
	return res
}

// HasElements reports whether node has any child elements.
func (n *Node) HasElements() bool {
	return len(n.Children) > 0
}

// TextContent returns all character data of the subtree excluding the
// node's own tail.
func (n *Node) TextContent() string {
	var sb strings.Builder
	n.textContent(&sb)
	return sb.String()
}

func (n *Node) textContent(sb *strings.Builder) {
	sb.WriteString(n.Text)
	for _, c := range n.Children {
		c.textContent(sb)
		sb.WriteString(c.Tail)
	}
}

// Dump returns an indented representation of the subtree, used in debug
// logs and reports.
func (n *Node) Dump() string {
	tw := debug.NewTreeWriter()
	n.dump(tw, 0)
	return tw.String()
}

func (n *Node) dump(tw *debug.TreeWriter, depth int) {
	tag := n.Tag
	if tag == "" {
		tag = "#fragment"
	}
	if len(n.Attrs) == 0 {
		tw.Line(depth, "<%s>", tag)
	} else {
		var sb strings.Builder
		for i, a := range n.Attrs {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(a.Key)
			sb.WriteString("=")
			sb.WriteString(debug.Quote(a.Value))
		}
		tw.Line(depth, "<%s %s>", tag, sb.String())
	}
	if n.Text != "" {
		tw.TextBlock(depth+1, "text", n.Text)
	}
	for _, c := range n.Children {
		c.dump(tw, depth+1)
	}
	if n.Tail != "" {
		tw.TextBlock(depth, "tail", n.Tail)
	}
}
