package render

import (
	"io"
	"strings"
)

// PageData contains the pieces of a minimal HTML document whose body has
// already been rendered.
type PageData struct {
	// Lang is the language attribute for the html element.
	// Omitted when empty.
	Lang string

	// Title is the page title. Omitted when empty.
	Title string

	// Head contains trusted markup appended to <head>, e.g. a style block.
	Head []string

	// Body is trusted, already-rendered body markup.
	Body string
}

// WritePage writes a complete HTML document to w.
func WritePage(w io.Writer, page PageData) error {
	ew := &errWriter{w: w}

	ew.WriteString("<!DOCTYPE html><html")
	if page.Lang != "" {
		ew.WriteString(` lang="`)
		ew.WriteString(EscapeAttr(page.Lang))
		ew.WriteString(`"`)
	}
	ew.WriteString("><head>")
	if page.Title != "" {
		ew.WriteString("<title>")
		ew.WriteString(EscapeText(page.Title))
		ew.WriteString("</title>")
	}
	for _, h := range page.Head {
		ew.WriteString(h)
	}
	ew.WriteString("</head><body>")
	ew.WriteString(page.Body)
	ew.WriteString("</body></html>")

	return ew.err
}

// Page renders page to a string.
func Page(page PageData) string {
	var sb strings.Builder
	_ = WritePage(&sb, page)
	return sb.String()
}
