// Package enhance server-renders HTML that contains custom elements.
//
// A Renderer walks the markup, and for every element whose tag is
// registered in a component.Registry it calls the component's render
// function, parses the returned markup, projects the element's original
// children into the first <slot>, and expands the result again. Expanded
// elements keep their tag and attributes and are marked with
// enhanced="✨". Style blocks emitted by a component are removed from its
// output and scoped to the component's tag.
//
// Basic usage:
//
//	reg := component.NewRegistry()
//	reg.MustRegister("my-header", func(ctx *component.RenderContext) (string, error) {
//	    return `<style>h1{color:red;}</style><h1><slot></slot></h1>`, nil
//	})
//
//	r := enhance.New(reg)
//	res, err := r.Process(ctx, `<my-header>Hello World</my-header>`, nil)
//	// res.Body:   <my-header enhanced="✨"><h1>Hello World</h1></my-header>
//	// res.Styles: my-header h1 {
//	//               color: red;
//	//             }
//
// # State
//
// The initial state passed to Process is visible as ctx.State.Store to
// components found in the input markup, including those a slot moves into
// another component's output. Components emitted by other components see
// a nil store unless the Renderer was built with
// WithStatePropagation(true).
//
// # Errors
//
// Process fails as a whole; no partial result is returned. Render
// failures surface as *RenderError, runaway recursion as
// *RenderDepthExceededError and unparseable input as
// *MalformedMarkupError. Tags that are not registered are not errors and
// pass through unchanged.
package enhance
