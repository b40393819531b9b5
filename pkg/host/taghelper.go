package host

import (
	"context"
	"fmt"

	enhance "github.com/vango-dev/enhance"
	"github.com/vango-dev/enhance/pkg/markup"
	"github.com/vango-dev/enhance/pkg/render"
)

// TagHelper renders the elements of a page that are marked with the
// enhance-ssr attribute, leaving the rest of the page as written.
type TagHelper struct {
	Processor enhance.Processor
}

// Apply processes every marked element of page and removes the marker.
// If Processor is an enhance.NodeProcessor the element is expanded where
// it stands. Otherwise it is serialized, processed, and replaced by the
// returned body parsed in the context of its parent. Marked elements
// nested in a marked element are left to the outer call. Results are
// added to the RequestContext of ctx, if any.
func (h *TagHelper) Apply(ctx context.Context, page string, state any) (string, error) {
	if markup.IsDocument(page) {
		doc, err := markup.ParseDocument(page)
		if err != nil {
			return "", &enhance.MalformedMarkupError{Cause: err}
		}
		if err := h.replace(ctx, doc, state); err != nil {
			return "", err
		}
		return render.String(doc), nil
	}

	nodes, err := markup.ParseFragment(page)
	if err != nil {
		return "", &enhance.MalformedMarkupError{Cause: err}
	}
	root := &markup.Node{Kind: markup.KindDocument, Children: nodes}
	if err := h.replace(ctx, root, state); err != nil {
		return "", err
	}
	return render.String(root.Children...), nil
}

// replace rewrites the children of parent in place.
func (h *TagHelper) replace(ctx context.Context, parent *markup.Node, state any) error {
	children := make([]*markup.Node, 0, len(parent.Children))
	for _, child := range parent.Children {
		if child.Kind != markup.KindElement || !child.HasAttr(enhance.SSRAttr) {
			if err := h.replace(ctx, child, state); err != nil {
				return err
			}
			children = append(children, child)
			continue
		}

		nodes, err := h.process(ctx, parent, child, state)
		if err != nil {
			return err
		}
		children = append(children, nodes...)
	}
	parent.Children = children
	return nil
}

func (h *TagHelper) process(ctx context.Context, parent, el *markup.Node, state any) ([]*markup.Node, error) {
	unmark(el)

	if np, ok := h.Processor.(enhance.NodeProcessor); ok {
		res, err := np.ProcessNode(ctx, el, state)
		if err != nil {
			return nil, fmt.Errorf("<%s %s>: %w", el.Tag, enhance.SSRAttr, err)
		}
		FromContext(ctx).Add(res)
		return []*markup.Node{el}, nil
	}

	res, err := h.Processor.Process(ctx, render.String(el), state)
	if err != nil {
		return nil, fmt.Errorf("<%s %s>: %w", el.Tag, enhance.SSRAttr, err)
	}
	FromContext(ctx).Add(res)

	nodes, err := markup.ParseFragmentIn(res.Body, contextTag(parent))
	if err != nil {
		return nil, &enhance.MalformedMarkupError{Cause: err}
	}
	return nodes, nil
}

// contextTag names the element whose content model applies to the
// children of parent.
func contextTag(parent *markup.Node) string {
	if parent.Kind == markup.KindElement {
		return parent.Tag
	}
	return "body"
}

// unmark removes the marker from el and everything below it.
func unmark(el *markup.Node) {
	el.RemoveAttr(enhance.SSRAttr)
	for _, c := range el.Children {
		if c.Kind == markup.KindElement {
			unmark(c)
		}
	}
}
