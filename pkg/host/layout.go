package host

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/vango-dev/enhance/internal/dev"
	"github.com/vango-dev/enhance/pkg/render"
)

// LayoutData is the content of a page rendered by Layout.
type LayoutData struct {
	Lang  string
	Title string

	// Styles is the aggregated style block, as returned by
	// RequestContext.Styles.
	Styles string

	// Body is trusted, already rendered markup.
	Body string

	// Dev adds the hot reload client.
	Dev bool
}

// Layout wraps a rendered body fragment in a complete document. It adapts
// render.WritePage to templ.Component so hosts can serve it with
// templ.Handler or nest it in their own templ components.
func Layout(d LayoutData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return render.WritePage(w, render.PageData{
			Lang:  d.Lang,
			Title: d.Title,
			Head:  headExtras(d.Styles, d.Dev),
			Body:  d.Body,
		})
	})
}

// InjectHead inserts the style block, and in dev mode the reload client,
// before the closing </head> of a rendered document.
func InjectHead(document, styles string, devMode bool) string {
	extras := strings.Join(headExtras(styles, devMode), "")
	if extras == "" {
		return document
	}
	i := strings.LastIndex(strings.ToLower(document), "</head>")
	if i < 0 {
		return extras + document
	}
	return document[:i] + extras + document[i:]
}

func headExtras(styles string, devMode bool) []string {
	var head []string
	if styles != "" {
		head = append(head, styles)
	}
	if devMode {
		head = append(head, strings.TrimSpace(dev.ClientScript))
	}
	return head
}
