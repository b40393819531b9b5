package enhance

import (
	"context"
	"strings"

	"github.com/vango-dev/enhance/pkg/component"
	"github.com/vango-dev/enhance/pkg/markup"
	"github.com/vango-dev/enhance/pkg/render"
	"github.com/vango-dev/enhance/pkg/style"
)

// Reserved attributes. They are never passed to render functions.
const (
	// MarkerAttr is set on every expanded element.
	MarkerAttr = "enhanced"

	// SSRAttr marks host page elements for the tag helper.
	SSRAttr = "enhance-ssr"
)

// expander holds the state of one Process call. It is never shared.
type expander struct {
	ctx      context.Context
	reg      *component.Registry
	state    any
	cfg      Config
	styles   []style.Fragment
	rendered int

	// stated records, for nodes projected into a slot, whether they came
	// from the input markup. Components from the input receive the initial
	// state wherever a slot moves them to.
	stated map[*markup.Node]bool
}

// expandNodes expands nodes top-down. stated reports whether components
// found here came from the input markup.
func (e *expander) expandNodes(nodes []*markup.Node, depth int, stated bool) error {
	for _, n := range nodes {
		if err := e.expandNode(n, depth, stated); err != nil {
			return err
		}
	}
	return nil
}

func (e *expander) expandNode(n *markup.Node, depth int, stated bool) error {
	if s, ok := e.stated[n]; ok {
		stated = s
	}

	switch n.Kind {
	case markup.KindElement:
	case markup.KindDocument:
		return e.expandNodes(n.Children, depth, stated)
	default:
		return nil
	}

	def, ok := e.reg.Lookup(n.Tag)
	if !ok {
		return e.expandNodes(n.Children, depth, stated)
	}
	if n.HasAttr(MarkerAttr) {
		return nil
	}
	return e.invoke(n, def, depth, stated)
}

// invoke replaces the children of n with the expanded output of def.
func (e *expander) invoke(n *markup.Node, def component.Definition, depth int, stated bool) error {
	if depth >= e.cfg.MaxDepth {
		return &RenderDepthExceededError{Tag: n.Tag, Depth: depth}
	}
	if err := e.ctx.Err(); err != nil {
		return err
	}

	rc := &component.RenderContext{
		Attributes: attributes(n),
		Slot:       render.String(n.Children...),
	}
	if stated || e.cfg.PropagateState {
		rc.State.Store = e.state
	}

	out, err := call(def, rc)
	if err != nil {
		return &RenderError{Tag: n.Tag, Cause: err}
	}
	e.rendered++

	nodes, err := markup.ParseFragment(out)
	if err != nil {
		return &RenderError{Tag: n.Tag, Cause: err}
	}
	if nodes, err = e.extractStyles(n.Tag, nodes); err != nil {
		return &RenderError{Tag: n.Tag, Cause: err}
	}

	nodes = e.projectSlot(nodes, n.Children, stated)
	if err := e.expandNodes(nodes, depth+1, false); err != nil {
		return err
	}

	n.RemoveAttr(SSRAttr)
	n.SetAttr(MarkerAttr, style.Marker)
	n.Children = nodes
	return nil
}

func call(def component.Definition, rc *component.RenderContext) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return def.Render(rc)
}

func attributes(n *markup.Node) map[string]string {
	attrs := make(map[string]string, len(n.Attrs))
	for _, a := range n.Attrs {
		if a.Key == MarkerAttr || a.Key == SSRAttr {
			continue
		}
		attrs[a.Key] = a.Val
	}
	return attrs
}

// extractStyles removes top-level <style> elements from nodes and records
// them as fragments scoped to host.
func (e *expander) extractStyles(host string, nodes []*markup.Node) ([]*markup.Node, error) {
	kept := nodes[:0]
	for _, n := range nodes {
		if !n.IsElement("style") {
			kept = append(kept, n)
			continue
		}

		raw := textContent(n)
		if strings.TrimSpace(raw) == "" {
			continue
		}
		scope, _ := n.Attr("scope")
		frag, err := style.NewFragment(raw, host, scope == "global")
		if err != nil {
			return nil, err
		}
		e.styles = append(e.styles, frag)
	}
	return kept, nil
}

func textContent(n *markup.Node) string {
	var sb strings.Builder
	for _, c := range n.Children {
		if c.Kind == markup.KindText {
			sb.WriteString(c.Text)
		}
	}
	return sb.String()
}

// projectSlot replaces <slot> placeholders in nodes. The first unnamed slot
// receives copies of children, or keeps its fallback content when children
// is empty. Every other slot is replaced by its fallback content. The
// copies keep the origin of the children they were made from; stated is
// the origin of children without a recorded one.
func (e *expander) projectSlot(nodes []*markup.Node, children []*markup.Node, stated bool) []*markup.Node {
	filled := false
	var walk func([]*markup.Node) []*markup.Node
	walk = func(nodes []*markup.Node) []*markup.Node {
		out := make([]*markup.Node, 0, len(nodes))
		for _, n := range nodes {
			if !n.IsElement("slot") {
				if n.Kind == markup.KindElement {
					n.Children = walk(n.Children)
				}
				out = append(out, n)
				continue
			}

			_, named := n.Attr("name")
			if !named && !filled && len(children) > 0 {
				filled = true
				for _, c := range children {
					if c == nil {
						continue
					}
					clone := c.Clone()
					e.inherit(c, clone, stated)
					out = append(out, clone)
				}
				continue
			}
			if !named {
				filled = true
			}
			out = append(out, walk(n.Children)...)
		}
		return out
	}
	return walk(nodes)
}

// inherit records the origin of every node of orig on its twin in clone.
func (e *expander) inherit(orig, clone *markup.Node, stated bool) {
	if s, ok := e.stated[orig]; ok {
		stated = s
	}
	if e.stated == nil {
		e.stated = make(map[*markup.Node]bool)
	}
	e.stated[clone] = stated

	i := 0
	for _, c := range orig.Children {
		if c == nil {
			continue
		}
		e.inherit(c, clone.Children[i], stated)
		i++
	}
}

// stylesheets returns the distinct scoped fragments of this call in
// first-seen order.
func (e *expander) stylesheets() []string {
	texts := make([]string, 0, len(e.styles))
	for _, f := range e.styles {
		texts = append(texts, f.Scoped)
	}
	return style.Distinct(texts)
}
