package dom

import "strings"

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement Kind = iota // <div>, <li>, etc.
	KindText                // Plain text node
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// Attr is a single ordered key/value entry. It backs attributes and inline
// style properties, both of which preserve declaration order.
type Attr struct {
	Key   string
	Value string
}

// Prop is a runtime property on an element. Unlike attributes, property
// values are arbitrary Go values and are never serialized to HTML.
type Prop struct {
	Key   string
	Value any
}

// Node is a concrete, mutable rendering element. The binding engine mounts
// onto Nodes and mutates them in place; there is no virtual tree.
type Node struct {
	Kind     Kind
	Tag      string // Element tag name (e.g., "div")
	Text     string // For KindText
	ID       string // Patch-target ID (assigned via AssignIDs)
	Attrs    []Attr
	Props    []Prop
	Styles   []Attr // Inline style properties, declaration order
	Parent   *Node
	Children []*Node
}

// New creates an element node with the given tag and children.
func New(tag string, children ...*Node) *Node {
	n := &Node{Kind: KindElement, Tag: tag}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

// NewText creates a text node.
func NewText(text string) *Node {
	return &Node{Kind: KindText, Text: text}
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, preserving the position of an existing entry.
func (n *Node) SetAttr(key, value string) {
	for i, a := range n.Attrs {
		if a.Key == key {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: key, Value: value})
}

// RemoveAttr removes an attribute. Returns true if it was present.
func (n *Node) RemoveAttr(key string) bool {
	for i, a := range n.Attrs {
		if a.Key == key {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return true
		}
	}
	return false
}

// Prop returns the value of the named property.
func (n *Node) Prop(key string) (any, bool) {
	for _, p := range n.Props {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// SetProp sets a property, preserving the position of an existing entry.
func (n *Node) SetProp(key string, value any) {
	for i, p := range n.Props {
		if p.Key == key {
			n.Props[i].Value = value
			return
		}
	}
	n.Props = append(n.Props, Prop{Key: key, Value: value})
}

// RemoveProp removes a property. Returns true if it was present.
func (n *Node) RemoveProp(key string) bool {
	for i, p := range n.Props {
		if p.Key == key {
			n.Props = append(n.Props[:i], n.Props[i+1:]...)
			return true
		}
	}
	return false
}

// Style returns the value of an inline style property.
func (n *Node) Style(key string) (string, bool) {
	for _, s := range n.Styles {
		if s.Key == key {
			return s.Value, true
		}
	}
	return "", false
}

// SetStyle sets an inline style property.
func (n *Node) SetStyle(key, value string) {
	for i, s := range n.Styles {
		if s.Key == key {
			n.Styles[i].Value = value
			return
		}
	}
	n.Styles = append(n.Styles, Attr{Key: key, Value: value})
}

// RemoveStyle removes an inline style property. Returns true if present.
func (n *Node) RemoveStyle(key string) bool {
	for i, s := range n.Styles {
		if s.Key == key {
			n.Styles = append(n.Styles[:i], n.Styles[i+1:]...)
			return true
		}
	}
	return false
}

// StyleString serializes the inline style properties in declaration order.
func (n *Node) StyleString() string {
	if len(n.Styles) == 0 {
		return ""
	}
	var b strings.Builder
	for i, s := range n.Styles {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(s.Key)
		b.WriteString(": ")
		b.WriteString(s.Value)
	}
	return b.String()
}

// TextContent returns the concatenated text of the node and its descendants.
func (n *Node) TextContent() string {
	if n.Kind == KindText {
		return n.Text
	}
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// SetTextContent replaces the node's content with a single text node.
// On a text node it sets the text directly.
func (n *Node) SetTextContent(text string) {
	if n.Kind == KindText {
		n.Text = text
		return
	}
	for _, c := range n.Children {
		c.Parent = nil
	}
	n.Children = n.Children[:0]
	n.AppendChild(NewText(text))
}

// AppendChild appends a child node, reparenting it.
func (n *Node) AppendChild(c *Node) {
	if c == nil {
		return
	}
	c.Detach()
	c.Parent = n
	n.Children = append(n.Children, c)
}

// InsertChildrenAt inserts nodes at index i (clamped to the child range).
func (n *Node) InsertChildrenAt(i int, nodes ...*Node) {
	if i < 0 {
		i = 0
	}
	if i > len(n.Children) {
		i = len(n.Children)
	}
	for _, c := range nodes {
		c.Detach()
		c.Parent = n
	}
	n.Children = append(n.Children[:i], append(append([]*Node{}, nodes...), n.Children[i:]...)...)
}

// RemoveChildrenAt removes count children starting at index i and returns
// them, detached. Out-of-range requests are clamped.
func (n *Node) RemoveChildrenAt(i, count int) []*Node {
	if i < 0 || i >= len(n.Children) || count <= 0 {
		return nil
	}
	if i+count > len(n.Children) {
		count = len(n.Children) - i
	}
	removed := make([]*Node, count)
	copy(removed, n.Children[i:i+count])
	n.Children = append(n.Children[:i], n.Children[i+count:]...)
	for _, c := range removed {
		c.Parent = nil
	}
	return removed
}

// Detach removes the node from its parent's child list, if any.
func (n *Node) Detach() {
	p := n.Parent
	if p == nil {
		return
	}
	for i, c := range p.Children {
		if c == n {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			break
		}
	}
	n.Parent = nil
}

// ChildIndex returns the node's position in its parent, or -1 if detached.
func (n *Node) ChildIndex() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// Clone deep-copies the node. The clone is detached and carries no ID so a
// fresh one can be assigned when it is inserted.
func (n *Node) Clone() *Node {
	c := &Node{
		Kind: n.Kind,
		Tag:  n.Tag,
		Text: n.Text,
	}
	if len(n.Attrs) > 0 {
		c.Attrs = append([]Attr{}, n.Attrs...)
	}
	if len(n.Props) > 0 {
		c.Props = append([]Prop{}, n.Props...)
	}
	if len(n.Styles) > 0 {
		c.Styles = append([]Attr{}, n.Styles...)
	}
	for _, child := range n.Children {
		c.AppendChild(child.Clone())
	}
	return c
}

// Walk visits the node and its descendants depth-first. Returning false from
// fn stops descent into that node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
