// Package render serializes markup trees back to HTML.
//
// The render package is the inverse of markup parsing. It writes
// elements, text, comments and doctypes in document order and takes care
// of the details that make the output valid HTML:
//
//   - Text and attribute escaping
//   - Void element handling (input, br, img, etc.)
//   - Raw text elements (style, script) written without escaping
//   - Boolean attributes written without a value
//   - Optional pretty printing for development output
//
// # Basic Usage
//
// To render a tree to a string:
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(node)
//
// To render a node list (a fragment):
//
//	html := render.String(nodes...)
//
// # Pages
//
// WritePage wraps already-rendered body markup in a minimal document with
// optional head content, which is how fragment renders produce their
// document envelope.
package render
