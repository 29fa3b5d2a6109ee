package markup

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MaxDepth limits element nesting accepted by Parse. It is below the open
// element stack limit of the HTML tokenizer so deep markup is reported as
// ErrTooDeep.
const MaxDepth = 256

// ErrTooDeep is returned when markup nests deeper than MaxDepth.
var ErrTooDeep = errors.New("markup nesting is too deep")

var bodyContext = &html.Node{
	Type:     html.ElementNode,
	Data:     "body",
	DataAtom: atom.Body,
}

// Parse builds element tree from HTML fragment. Returned root has empty tag
// and holds fragment top level elements as children, any text preceding the
// first element becomes root text. Comments, doctypes and processing
// instructions are dropped, text around them is joined.
func Parse(src string) (*Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(src), bodyContext)
	if err != nil {
		return nil, fmt.Errorf("unable to parse markup: %w", err)
	}
	root := &Node{}
	if err := fill(root, nodes, 1); err != nil {
		return nil, err
	}
	return root, nil
}

func fill(parent *Node, nodes []*html.Node, depth int) error {
	var last *Node
	for _, hn := range nodes {
		switch hn.Type {
		case html.TextNode:
			if last == nil {
				parent.Text += hn.Data
			} else {
				last.Tail += hn.Data
			}
		case html.ElementNode:
			if depth > MaxDepth {
				return ErrTooDeep
			}
			n := &Node{Tag: strings.ToLower(hn.Data)}
			if len(hn.Attr) > 0 {
				n.Attrs = make([]Attr, 0, len(hn.Attr))
				for _, a := range hn.Attr {
					key := strings.ToLower(a.Key)
					if a.Namespace != "" {
						key = a.Namespace + ":" + key
					}
					n.Attrs = append(n.Attrs, Attr{Key: key, Value: a.Val})
				}
			}
			if err := fill(n, childNodes(hn), depth+1); err != nil {
				return err
			}
			parent.Children = append(parent.Children, n)
			last = n
		}
	}
	return nil
}

func childNodes(hn *html.Node) []*html.Node {
	var res []*html.Node
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		res = append(res, c)
	}
	return res
}
