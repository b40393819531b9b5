// Package markup provides the tree model the enhance renderer expands.
//
// A Node is a small tagged variant over elements, text, comments, doctypes
// and documents. It carries just enough of the DOM to locate custom
// elements, project slot content, and serialize the result back to HTML.
//
// # Parsing
//
// ParseFragment parses a markup fragment the way a browser parses
// innerHTML of <body>; ParseDocument parses a whole page:
//
//	nodes, err := markup.ParseFragment(`<my-header>Hello</my-header>`)
//	doc, err := markup.ParseDocument(`<!DOCTYPE html><html>...</html>`)
//
// Parsing is delegated to golang.org/x/net/html, so tag and attribute
// names come back lower-cased and malformed markup is repaired the same
// way an HTML5 parser would repair it.
//
// # Building
//
// Element and Text construct nodes directly, which is mostly useful in
// tests:
//
//	markup.Element("my-header", nil, markup.Text("Hello"))
package markup
