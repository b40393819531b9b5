// Package host integrates enhance into an HTTP server.
//
// A host collects styles per request: Middleware attaches a
// RequestContext to every request, each Process result is added to it,
// and the page layout renders the aggregated style block once in <head>.
//
//	r := chi.NewRouter()
//	r.Use(host.Middleware)
//	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
//	    helper := &host.TagHelper{Processor: renderer}
//	    body, err := helper.Apply(r.Context(), `<my-header enhance-ssr>Hi</my-header>`, nil)
//	    ...
//	    host.Layout(host.LayoutData{
//	        Styles: host.FromContext(r.Context()).Styles(),
//	        Body:   body,
//	    }).Render(r.Context(), w)
//	})
//
// Server bundles this with page files, a JSON render API, metrics and
// hot reload.
package host
