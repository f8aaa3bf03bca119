package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/rebind-dev/rebind/pkg/dom"
)

// Config configures the HTML renderer.
type Config struct {
	// Pretty enables pretty-printed output with indentation. Development
	// only; it increases output size.
	Pretty bool

	// Indent is the string used per indentation level in pretty mode.
	// Defaults to two spaces.
	Indent string

	// StampIDs emits each element's patch-target ID as a data-rid
	// attribute so mirror clients can address nodes.
	StampIDs bool

	// Doctype prepends <!DOCTYPE html> when rendering a full document.
	Doctype bool
}

// Renderer serializes dom.Node trees to HTML.
type Renderer struct {
	config Config
}

// New creates a Renderer with the given configuration.
func New(config Config) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// NodeToString renders a single subtree to an HTML string with IDs stamped.
// The protocol encoder uses it to carry inserted subtrees on the wire.
func NodeToString(node *dom.Node) string {
	var buf bytes.Buffer
	r := New(Config{StampIDs: true})
	_ = r.renderNode(&buf, node, 0)
	return buf.String()
}

// ToString renders a node tree to a complete HTML string.
func (r *Renderer) ToString(node *dom.Node) (string, error) {
	var buf bytes.Buffer
	if err := r.ToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ToWriter streams a node tree to the given writer.
func (r *Renderer) ToWriter(w io.Writer, node *dom.Node) error {
	if r.config.Doctype {
		if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
			return err
		}
	}
	return r.renderNode(w, node, 0)
}

func (r *Renderer) renderNode(w io.Writer, node *dom.Node, depth int) error {
	if node == nil {
		return nil
	}
	switch node.Kind {
	case dom.KindElement:
		return r.renderElement(w, node, depth)
	case dom.KindText:
		_, err := io.WriteString(w, escapeHTML(node.Text))
		return err
	default:
		return fmt.Errorf("render: unknown node kind: %d", node.Kind)
	}
}

func (r *Renderer) renderElement(w io.Writer, node *dom.Node, depth int) error {
	tag := node.Tag
	if r.config.Pretty && depth > 0 {
		if err := r.writeIndent(w, depth); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "<"+tag); err != nil {
		return err
	}
	if err := r.renderAttributes(w, node); err != nil {
		return err
	}
	if isVoidElement(tag) {
		_, err := io.WriteString(w, ">")
		if err == nil && r.config.Pretty {
			_, err = io.WriteString(w, "\n")
		}
		return err
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}
	blockChildren := r.config.Pretty && hasElementChild(node)
	if blockChildren {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	for _, child := range node.Children {
		if err := r.renderNode(w, child, depth+1); err != nil {
			return err
		}
		if blockChildren && child.Kind == dom.KindText {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
	}
	if blockChildren {
		if err := r.writeIndent(w, depth); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "</"+tag+">"); err != nil {
		return err
	}
	if r.config.Pretty {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}

func (r *Renderer) renderAttributes(w io.Writer, node *dom.Node) error {
	for _, a := range node.Attrs {
		if _, err := fmt.Fprintf(w, ` %s="%s"`, a.Key, escapeAttr(a.Value)); err != nil {
			return err
		}
	}
	if style := node.StyleString(); style != "" {
		if _, err := fmt.Fprintf(w, ` style="%s"`, escapeAttr(style)); err != nil {
			return err
		}
	}
	if r.config.StampIDs && node.ID != "" {
		if _, err := fmt.Fprintf(w, ` data-rid="%s"`, escapeAttr(node.ID)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) writeIndent(w io.Writer, depth int) error {
	for i := 0; i < depth; i++ {
		if _, err := io.WriteString(w, r.config.Indent); err != nil {
			return err
		}
	}
	return nil
}

func hasElementChild(node *dom.Node) bool {
	for _, c := range node.Children {
		if c.Kind == dom.KindElement {
			return true
		}
	}
	return false
}

// isVoidElement returns true for HTML elements that never take a closing
// tag.
func isVoidElement(tag string) bool {
	switch tag {
	case "area", "base", "br", "col", "embed", "hr", "img", "input",
		"link", "meta", "param", "source", "track", "wbr":
		return true
	default:
		return false
	}
}
