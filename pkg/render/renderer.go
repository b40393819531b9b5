package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/vango-dev/enhance/pkg/markup"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables pretty-printed HTML output with indentation.
	// Should only be used in development as it changes whitespace in
	// the output.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string
}

// Renderer serializes markup trees to HTML. A Renderer holds no per-call
// state and is safe for concurrent use.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

var defaultRenderer = NewRenderer(RendererConfig{})

// String renders nodes with the default compact configuration.
func String(nodes ...*markup.Node) string {
	var sb strings.Builder
	// strings.Builder never fails, so neither can the render.
	_ = defaultRenderer.RenderNodes(&sb, nodes)
	return sb.String()
}

// RenderToString renders a tree to an HTML string.
func (r *Renderer) RenderToString(node *markup.Node) (string, error) {
	var sb strings.Builder
	if err := r.RenderToWriter(&sb, node); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderToWriter streams a tree to the given writer.
func (r *Renderer) RenderToWriter(w io.Writer, node *markup.Node) error {
	ew := &errWriter{w: w}
	r.renderNode(ew, node, 0)
	return ew.err
}

// RenderNodes streams a node list to the given writer.
func (r *Renderer) RenderNodes(w io.Writer, nodes []*markup.Node) error {
	ew := &errWriter{w: w}
	for _, n := range nodes {
		r.renderNode(ew, n, 0)
	}
	return ew.err
}

// errWriter remembers the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) WriteString(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

// renderNode dispatches rendering based on node kind.
func (r *Renderer) renderNode(w *errWriter, node *markup.Node, depth int) {
	if node == nil || w.err != nil {
		return
	}

	switch node.Kind {
	case markup.KindElement:
		r.renderElement(w, node, depth)
	case markup.KindText:
		w.WriteString(EscapeText(node.Text))
	case markup.KindComment:
		w.WriteString("<!--")
		w.WriteString(node.Text)
		w.WriteString("-->")
	case markup.KindDoctype:
		w.WriteString("<!DOCTYPE ")
		w.WriteString(node.Text)
		w.WriteString(">")
		if r.config.Pretty {
			w.WriteString("\n")
		}
	case markup.KindDocument:
		for _, child := range node.Children {
			r.renderNode(w, child, depth)
		}
	default:
		if w.err == nil {
			w.err = fmt.Errorf("unknown node kind: %d", node.Kind)
		}
	}
}

// renderElement renders an element with its attributes and children.
func (r *Renderer) renderElement(w *errWriter, node *markup.Node, depth int) {
	tag := node.Tag

	if r.config.Pretty && depth > 0 && !isInlineElement(tag) {
		r.writeIndent(w, depth)
	}

	w.WriteString("<")
	w.WriteString(tag)
	renderAttributes(w, node.Attrs)
	w.WriteString(">")

	if isVoidElement(tag) {
		if r.config.Pretty && !isInlineElement(tag) {
			w.WriteString("\n")
		}
		return
	}

	if isRawTextElement(tag) {
		for _, child := range node.Children {
			if child.Kind == markup.KindText {
				w.WriteString(child.Text)
			}
		}
	} else {
		hasBlockChildren := len(node.Children) > 0 && !isInlineElement(tag) && hasElementChild(node)
		if r.config.Pretty && hasBlockChildren {
			w.WriteString("\n")
		}

		for _, child := range node.Children {
			r.renderNode(w, child, depth+1)
		}

		if r.config.Pretty && hasBlockChildren {
			r.writeIndent(w, depth)
		}
	}

	w.WriteString("</")
	w.WriteString(tag)
	w.WriteString(">")
	if r.config.Pretty && !isInlineElement(tag) {
		w.WriteString("\n")
	}
}

// renderAttributes renders attributes in source order.
func renderAttributes(w *errWriter, attrs []markup.Attr) {
	for _, a := range attrs {
		w.WriteString(" ")
		w.WriteString(a.Key)
		if a.Val == "" && isBooleanAttr(a.Key) {
			continue
		}
		w.WriteString(`="`)
		w.WriteString(EscapeAttr(a.Val))
		w.WriteString(`"`)
	}
}

func hasElementChild(node *markup.Node) bool {
	for _, c := range node.Children {
		if c.Kind == markup.KindElement {
			return true
		}
	}
	return false
}

// writeIndent writes indentation for pretty printing.
func (r *Renderer) writeIndent(w *errWriter, depth int) {
	for i := 0; i < depth; i++ {
		w.WriteString(r.config.Indent)
	}
}
