// Package component defines render definitions for custom elements and the
// registry that maps tag names to them.
//
// A render definition is a pure function from a RenderContext to markup:
//
//	reg := component.NewRegistry()
//	reg.MustRegister("my-header", func(ctx *component.RenderContext) (string, error) {
//	    return ctx.HTML.Compose(`<style>h1{color:red;}</style><h1><slot></slot></h1>`), nil
//	})
//
// The context gives the function its helpers (HTML), the initial state
// (State.Store), the element's attributes, and the serialized children
// (Slot). Only tags containing a hyphen are custom elements; the registry
// refuses anything else.
//
// The registry is populated at startup and read concurrently afterwards.
package component
