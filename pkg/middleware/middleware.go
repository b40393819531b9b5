package middleware

import (
	"context"

	enhance "github.com/vango-dev/enhance"
	"github.com/vango-dev/enhance/pkg/markup"
	"github.com/vango-dev/enhance/pkg/render"
)

// Middleware wraps a Processor.
type Middleware func(next enhance.Processor) enhance.Processor

// Chain wraps p with mws. The first middleware is the outermost.
//
// When p is also an enhance.NodeProcessor, so is the returned processor:
// ProcessNode runs the same middlewares around an in-place expansion.
// They see the serialized element as their markup argument.
func Chain(p enhance.Processor, mws ...Middleware) enhance.Processor {
	wrapped := wrap(p, mws)
	np, ok := p.(enhance.NodeProcessor)
	if !ok {
		return wrapped
	}
	return &chain{Processor: wrapped, base: np, mws: mws}
}

func wrap(p enhance.Processor, mws []Middleware) enhance.Processor {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			p = mws[i](p)
		}
	}
	return p
}

type chain struct {
	enhance.Processor

	base enhance.NodeProcessor
	mws  []Middleware
}

var _ enhance.NodeProcessor = (*chain)(nil)

func (c *chain) ProcessNode(ctx context.Context, n *markup.Node, state any) (*enhance.Result, error) {
	called := false
	inner := enhance.ProcessorFunc(func(ctx context.Context, _ string, state any) (*enhance.Result, error) {
		called = true
		return c.base.ProcessNode(ctx, n, state)
	})

	res, err := wrap(inner, c.mws).Process(withNodeCall(ctx), render.String(n), state)
	if err == nil && !called {
		// A middleware answered on its own; n still has to be expanded.
		return c.base.ProcessNode(ctx, n, state)
	}
	return res, err
}

type nodeCallKey struct{}

func withNodeCall(ctx context.Context) context.Context {
	return context.WithValue(ctx, nodeCallKey{}, true)
}

// isNodeCall reports whether ctx belongs to a ProcessNode call. Results
// of such calls are tied to a node and are not cached.
func isNodeCall(ctx context.Context) bool {
	v, _ := ctx.Value(nodeCallKey{}).(bool)
	return v
}
