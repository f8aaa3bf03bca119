package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse reads an HTML document and returns its root element. Whitespace-only
// text between elements is dropped; directive templates are positional and
// must not count formatting runs as template nodes.
func Parse(r io.Reader) (*Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return convert(c), nil
		}
	}
	return New("html"), nil
}

// ParseFragment parses markup in a body context and returns the top-level
// nodes.
func ParseFragment(markup string) ([]*Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	parsed, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, err
	}
	var nodes []*Node
	for _, hn := range parsed {
		if n := convert(hn); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

func convert(hn *html.Node) *Node {
	switch hn.Type {
	case html.TextNode:
		if strings.TrimSpace(hn.Data) == "" {
			return nil
		}
		return NewText(hn.Data)
	case html.ElementNode:
		n := New(hn.Data)
		for _, a := range hn.Attr {
			if a.Key == "style" {
				parseStyle(n, a.Val)
				continue
			}
			n.SetAttr(a.Key, a.Val)
		}
		for c := hn.FirstChild; c != nil; c = c.NextSibling {
			if child := convert(c); child != nil {
				n.AppendChild(child)
			}
		}
		return n
	default:
		return nil
	}
}

// parseStyle splits an inline style attribute into ordered properties.
func parseStyle(n *Node, style string) {
	for _, decl := range strings.Split(style, ";") {
		key, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key != "" && value != "" {
			n.SetStyle(key, value)
		}
	}
}
