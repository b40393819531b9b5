package markup

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement  Kind = iota // <div>, <my-header>, etc.
	KindText                 // Character data
	KindComment              // <!-- ... -->
	KindDoctype              // <!DOCTYPE html>
	KindDocument             // Root of a parsed document
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	case KindDoctype:
		return "Doctype"
	case KindDocument:
		return "Document"
	default:
		return "Unknown"
	}
}

// Attr is a single attribute. Attributes keep their source order.
type Attr struct {
	Key string
	Val string
}

// Node is a markup tree node.
type Node struct {
	Kind     Kind    // Node type
	Tag      string  // Element tag name, lower-case
	Attrs    []Attr  // Element attributes in source order
	Children []*Node // Child nodes in document order
	Text     string  // For KindText, KindComment and KindDoctype
}

// Element creates an element node.
func Element(tag string, attrs []Attr, children ...*Node) *Node {
	node := &Node{
		Kind:  KindElement,
		Tag:   tag,
		Attrs: attrs,
	}
	for _, child := range children {
		if child != nil {
			node.Children = append(node.Children, child)
		}
	}
	return node
}

// Text creates a text node.
func Text(content string) *Node {
	return &Node{
		Kind: KindText,
		Text: content,
	}
}

// Comment creates a comment node.
func Comment(content string) *Node {
	return &Node{
		Kind: KindComment,
		Text: content,
	}
}

// IsElement reports whether n is an element with the given tag.
func (n *Node) IsElement(tag string) bool {
	return n != nil && n.Kind == KindElement && n.Tag == tag
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether the named attribute is present.
func (n *Node) HasAttr(key string) bool {
	_, ok := n.Attr(key)
	return ok
}

// SetAttr sets an attribute, replacing an existing value in place or
// appending a new one at the end.
func (n *Node) SetAttr(key, val string) {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Val = val
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: key, Val: val})
}

// RemoveAttr removes every attribute with the given key.
func (n *Node) RemoveAttr(key string) {
	kept := n.Attrs[:0]
	for _, a := range n.Attrs {
		if a.Key != key {
			kept = append(kept, a)
		}
	}
	n.Attrs = kept
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Kind: n.Kind,
		Tag:  n.Tag,
		Text: n.Text,
	}
	if len(n.Attrs) > 0 {
		c.Attrs = make([]Attr, len(n.Attrs))
		copy(c.Attrs, n.Attrs)
	}
	c.Children = CloneAll(n.Children)
	return c
}

// CloneAll deep-copies a node list.
func CloneAll(nodes []*Node) []*Node {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n.Clone())
		}
	}
	return out
}
