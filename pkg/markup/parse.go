package markup

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrInvalidUTF8 is returned when the input is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("markup: input is not valid UTF-8")

// ParseFragment parses s as the inner HTML of a <body> element.
func ParseFragment(s string) ([]*Node, error) {
	return ParseFragmentIn(s, "body")
}

// ParseFragmentIn parses s as the inner HTML of a tag element. Table
// parts, for example, only survive parsing inside a table context.
func ParseFragmentIn(s, tag string) ([]*Node, error) {
	if !utf8.ValidString(s) {
		return nil, ErrInvalidUTF8
	}

	tag = strings.ToLower(tag)
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	parsed, err := html.ParseFragment(strings.NewReader(s), context)
	if err != nil {
		return nil, err
	}

	nodes := make([]*Node, 0, len(parsed))
	for _, p := range parsed {
		if n := convert(p); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

// ParseDocument parses s as a complete HTML document. Missing <html>,
// <head> and <body> elements are synthesized by the parser.
func ParseDocument(s string) (*Node, error) {
	if !utf8.ValidString(s) {
		return nil, ErrInvalidUTF8
	}

	root, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return nil, err
	}
	return convert(root), nil
}

// IsDocument reports whether s looks like a whole document rather than a
// fragment, i.e. it starts with a doctype or an <html> tag.
func IsDocument(s string) bool {
	s = strings.TrimLeft(s, " \t\r\n\f\ufeff")
	if len(s) < 5 {
		return false
	}
	head := strings.ToLower(s[:min(len(s), 9)])
	return strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html")
}

// convert copies an x/net/html node and its subtree into a Node.
func convert(h *html.Node) *Node {
	var n *Node

	switch h.Type {
	case html.ElementNode:
		n = &Node{Kind: KindElement, Tag: h.Data}
		if len(h.Attr) > 0 {
			n.Attrs = make([]Attr, 0, len(h.Attr))
			for _, a := range h.Attr {
				key := a.Key
				if a.Namespace != "" {
					key = a.Namespace + ":" + a.Key
				}
				n.Attrs = append(n.Attrs, Attr{Key: key, Val: a.Val})
			}
		}
	case html.TextNode:
		return Text(h.Data)
	case html.CommentNode:
		return Comment(h.Data)
	case html.DoctypeNode:
		return &Node{Kind: KindDoctype, Text: h.Data}
	case html.DocumentNode:
		n = &Node{Kind: KindDocument}
	default:
		return nil
	}

	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if child := convert(c); child != nil {
			n.Children = append(n.Children, child)
		}
	}
	return n
}
