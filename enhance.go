package enhance

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/vango-dev/enhance/pkg/component"
	"github.com/vango-dev/enhance/pkg/markup"
	"github.com/vango-dev/enhance/pkg/render"
	"github.com/vango-dev/enhance/pkg/style"
)

// Result is the output of one Process call.
type Result struct {
	// Document is a complete HTML document with the style block in <head>.
	Document string `json:"document"`

	// Body is the expanded markup. For document input it is the inner
	// markup of <body>.
	Body string `json:"body"`

	// Styles holds this call's distinct scoped stylesheets, newline
	// separated.
	Styles string `json:"styles"`

	// Fragments lists every stylesheet extracted during the call in
	// document order, duplicates included.
	Fragments []style.Fragment `json:"-"`

	// Rendered counts render function invocations.
	Rendered int `json:"-"`
}

// Processor renders markup containing custom elements.
type Processor interface {
	Process(ctx context.Context, markup string, initialState any) (*Result, error)
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(ctx context.Context, markup string, initialState any) (*Result, error)

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, markup string, initialState any) (*Result, error) {
	return f(ctx, markup, initialState)
}

// NodeProcessor is implemented by processors that can expand an element
// that is already parsed. The element is modified in place and the Result
// describes it after expansion.
type NodeProcessor interface {
	ProcessNode(ctx context.Context, n *markup.Node, initialState any) (*Result, error)
}

// Renderer expands custom elements using a component registry. It is safe
// for concurrent use.
type Renderer struct {
	reg atomic.Pointer[component.Registry]
	cfg Config
}

var (
	_ Processor     = (*Renderer)(nil)
	_ NodeProcessor = (*Renderer)(nil)
)

// New creates a Renderer backed by reg.
func New(reg *component.Registry, opts ...Option) *Renderer {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if reg == nil {
		reg = component.NewRegistry()
	}

	r := &Renderer{cfg: cfg}
	r.reg.Store(reg)
	return r
}

// Registry returns the registry currently in use.
func (r *Renderer) Registry() *component.Registry {
	return r.reg.Load()
}

// SetRegistry swaps the registry. Calls already in progress finish with
// the registry they started with.
func (r *Renderer) SetRegistry(reg *component.Registry) {
	if reg != nil {
		r.reg.Store(reg)
	}
}

// Config returns the renderer configuration.
func (r *Renderer) Config() Config {
	return r.cfg
}

// Process expands every registered custom element in input. Input that
// starts with a doctype or <html> tag is treated as a whole document;
// anything else is a body fragment.
func (r *Renderer) Process(ctx context.Context, input string, initialState any) (*Result, error) {
	exp := r.expander(ctx, initialState)
	if markup.IsDocument(input) {
		return exp.processDocument(input)
	}
	return exp.processFragment(input)
}

// ProcessNode expands n and its subtree in place, as if n had been the
// input markup. Result.Body is n serialized after expansion.
func (r *Renderer) ProcessNode(ctx context.Context, n *markup.Node, initialState any) (*Result, error) {
	if n == nil {
		return nil, &MalformedMarkupError{Cause: errNilNode}
	}
	exp := r.expander(ctx, initialState)
	if err := exp.expandNode(n, 0, true); err != nil {
		return nil, err
	}
	return exp.result(render.String(n)), nil
}

func (r *Renderer) expander(ctx context.Context, state any) *expander {
	return &expander{
		ctx:   ctx,
		reg:   r.reg.Load(),
		state: state,
		cfg:   r.cfg,
	}
}

func (e *expander) processFragment(input string) (*Result, error) {
	nodes, err := markup.ParseFragment(input)
	if err != nil {
		return nil, &MalformedMarkupError{Cause: err}
	}
	if err := e.expandNodes(nodes, 0, true); err != nil {
		return nil, err
	}
	return e.result(render.String(nodes...)), nil
}

// result wraps an expanded body in a page carrying this call's styles.
func (e *expander) result(body string) *Result {
	sheets := e.stylesheets()

	var head []string
	if block := style.Block(sheets); block != "" {
		head = append(head, block)
	}

	return &Result{
		Document:  render.Page(render.PageData{Head: head, Body: body}),
		Body:      body,
		Styles:    strings.Join(sheets, "\n"),
		Fragments: e.styles,
		Rendered:  e.rendered,
	}
}

func (e *expander) processDocument(input string) (*Result, error) {
	doc, err := markup.ParseDocument(input)
	if err != nil {
		return nil, &MalformedMarkupError{Cause: err}
	}

	body := markup.FindElement(doc, "body")
	if body == nil {
		return nil, &MalformedMarkupError{Cause: errNoBody}
	}
	if err := e.expandNodes(body.Children, 0, true); err != nil {
		return nil, err
	}

	sheets := e.stylesheets()
	if len(sheets) > 0 {
		if head := markup.FindElement(doc, "head"); head != nil {
			head.Children = append(head.Children, styleNode(sheets))
		}
	}

	return &Result{
		Document:  render.String(doc),
		Body:      render.String(body.Children...),
		Styles:    strings.Join(sheets, "\n"),
		Fragments: e.styles,
		Rendered:  e.rendered,
	}, nil
}

// styleNode builds the node form of style.Block.
func styleNode(sheets []string) *markup.Node {
	return markup.Element("style",
		[]markup.Attr{{Key: MarkerAttr, Val: style.Marker}},
		markup.Text("\n"+strings.Join(sheets, "\n")+"\n"),
	)
}
