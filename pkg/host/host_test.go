package host

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enhance "github.com/vango-dev/enhance"
	"github.com/vango-dev/enhance/internal/dev"
	"github.com/vango-dev/enhance/pkg/component"
	"github.com/vango-dev/enhance/pkg/markup"
)

const headerStyle = "my-header h1 {\n  color: red;\n}"

const headerBlock = "<style enhanced=\"✨\">\n" + headerStyle + "\n</style>"

func newRenderer(t *testing.T) *enhance.Renderer {
	t.Helper()
	reg := component.NewRegistry()
	reg.MustRegister("my-header", func(*component.RenderContext) (string, error) {
		return "<style>h1 { color: red; }</style><h1><slot></slot></h1>", nil
	})
	reg.MustRegister("my-greeting", func(ctx *component.RenderContext) (string, error) {
		name := ctx.State.String("name")
		if name == "" {
			name = "stranger"
		}
		return ctx.HTML.Sprintf("<p>Hello %s</p>", name), nil
	})
	reg.MustRegister("my-loop", func(*component.RenderContext) (string, error) {
		return "<my-loop></my-loop>", nil
	})
	return enhance.New(reg)
}

// =============================================================================
// RequestContext
// =============================================================================

func TestRequestContextAggregates(t *testing.T) {
	r := newRenderer(t)
	rc := NewRequestContext()

	for i := 0; i < 2; i++ {
		res, err := r.Process(context.Background(), "<my-header>Hi</my-header>", nil)
		require.NoError(t, err)
		rc.Add(res)
	}
	rc.Add(nil)

	assert.Equal(t, []string{headerStyle}, rc.Entries())
	assert.Equal(t, headerBlock, rc.Styles())
}

func TestRequestContextNil(t *testing.T) {
	var rc *RequestContext
	rc.Add(&enhance.Result{})
	assert.Equal(t, "", rc.Styles())
	assert.Nil(t, rc.Entries())
	assert.Nil(t, FromContext(context.Background()))
}

func TestMiddlewareAttachesFreshContext(t *testing.T) {
	var seen []*RequestContext
	h := Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = append(seen, FromContext(r.Context()))
	}))

	for i := 0; i < 2; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	require.Len(t, seen, 2)
	assert.NotNil(t, seen[0])
	assert.NotSame(t, seen[0], seen[1])
}

// =============================================================================
// TagHelper
// =============================================================================

func TestTagHelperFragment(t *testing.T) {
	helper := &TagHelper{Processor: newRenderer(t)}
	rc := NewRequestContext()
	ctx := WithRequestContext(context.Background(), rc)

	out, err := helper.Apply(ctx,
		`<main><my-header enhance-ssr title="x">Hi</my-header><my-header>left</my-header></main>`,
		nil)
	require.NoError(t, err)

	assert.Equal(t,
		`<main><my-header title="x" enhanced="✨"><h1>Hi</h1></my-header><my-header>left</my-header></main>`,
		out)
	assert.Equal(t, headerBlock, rc.Styles())
}

func TestTagHelperState(t *testing.T) {
	helper := &TagHelper{Processor: newRenderer(t)}

	out, err := helper.Apply(context.Background(),
		`<my-greeting enhance-ssr></my-greeting>`,
		map[string]any{"name": "Khalid"})
	require.NoError(t, err)
	assert.Equal(t, `<my-greeting enhanced="✨"><p>Hello Khalid</p></my-greeting>`, out)
}

func TestTagHelperNestedMarkers(t *testing.T) {
	calls := 0
	r := newRenderer(t)
	helper := &TagHelper{Processor: enhance.ProcessorFunc(func(ctx context.Context, markup string, state any) (*enhance.Result, error) {
		calls++
		return r.Process(ctx, markup, state)
	})}

	out, err := helper.Apply(context.Background(),
		`<my-header enhance-ssr><my-greeting enhance-ssr></my-greeting></my-header>`, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t,
		`<my-header enhanced="✨"><h1><my-greeting enhanced="✨"><p>Hello stranger</p></my-greeting></h1></my-header>`,
		out)
}

// nodeOnly expands through ProcessNode and fails the test on string calls.
type nodeOnly struct {
	t     *testing.T
	r     *enhance.Renderer
	calls int
}

func (n *nodeOnly) Process(context.Context, string, any) (*enhance.Result, error) {
	n.t.Error("Process called; want in-place expansion")
	return nil, errors.New("unexpected Process call")
}

func (n *nodeOnly) ProcessNode(ctx context.Context, el *markup.Node, state any) (*enhance.Result, error) {
	n.calls++
	return n.r.ProcessNode(ctx, el, state)
}

func TestTagHelperTableRowInPlace(t *testing.T) {
	p := &nodeOnly{t: t, r: newRenderer(t)}
	helper := &TagHelper{Processor: p}

	out, err := helper.Apply(context.Background(),
		`<table><tbody><tr enhance-ssr class="r"><td><my-greeting></my-greeting></td></tr></tbody></table>`,
		map[string]any{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t,
		`<table><tbody><tr class="r"><td><my-greeting enhanced="✨"><p>Hello Ada</p></my-greeting></td></tr></tbody></table>`,
		out)
}

func TestTagHelperFallbackParsesInParentContext(t *testing.T) {
	helper := &TagHelper{Processor: enhance.ProcessorFunc(func(context.Context, string, any) (*enhance.Result, error) {
		return &enhance.Result{Body: `<tr><td>y</td></tr>`}, nil
	})}

	out, err := helper.Apply(context.Background(),
		`<table><tbody><tr enhance-ssr><td>x</td></tr></tbody></table>`, nil)
	require.NoError(t, err)
	assert.Equal(t, `<table><tbody><tr><td>y</td></tr></tbody></table>`, out)
}

func TestTagHelperDocument(t *testing.T) {
	helper := &TagHelper{Processor: newRenderer(t)}

	out, err := helper.Apply(context.Background(),
		`<!DOCTYPE html><html><head><title>T</title></head><body><my-header enhance-ssr>Hi</my-header></body></html>`,
		nil)
	require.NoError(t, err)
	assert.Equal(t,
		`<!DOCTYPE html><html><head><title>T</title></head><body><my-header enhanced="✨"><h1>Hi</h1></my-header></body></html>`,
		out)
}

func TestTagHelperError(t *testing.T) {
	helper := &TagHelper{Processor: newRenderer(t)}

	_, err := helper.Apply(context.Background(), `<my-loop enhance-ssr></my-loop>`, nil)
	var depth *enhance.RenderDepthExceededError
	require.ErrorAs(t, err, &depth)
	assert.Contains(t, err.Error(), "<my-loop enhance-ssr>")
}

// =============================================================================
// Layout and state
// =============================================================================

func TestLayout(t *testing.T) {
	var sb strings.Builder
	err := Layout(LayoutData{Lang: "en", Title: "Home", Styles: headerBlock, Body: "<p>x</p>"}).
		Render(context.Background(), &sb)
	require.NoError(t, err)

	assert.Equal(t,
		`<!DOCTYPE html><html lang="en"><head><title>Home</title>`+headerBlock+`</head><body><p>x</p></body></html>`,
		sb.String())
}

func TestLayoutDev(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, Layout(LayoutData{Dev: true}).Render(context.Background(), &sb))
	assert.Contains(t, sb.String(), dev.ReloadPath)
}

func TestLayoutServesThroughTemplHandler(t *testing.T) {
	h := templ.Handler(Layout(LayoutData{Title: "T", Body: "<p>x</p>"}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<title>T</title>")
	assert.Contains(t, rec.Body.String(), "<body><p>x</p></body>")
}

func TestInjectHead(t *testing.T) {
	assert.Equal(t, "<html><HEAD><title></title>S</HEAD></html>",
		InjectHead("<html><HEAD><title></title></HEAD></html>", "S", false))
	assert.Equal(t, "<p></p>", InjectHead("<p></p>", "", false))
	assert.Equal(t, "S<p></p>", InjectHead("<p></p>", "S", false))
}

func TestLoadStateFile(t *testing.T) {
	dir := t.TempDir()
	yamlFile := filepath.Join(dir, "a.yaml")
	jsonFile := filepath.Join(dir, "b.json")
	require.NoError(t, os.WriteFile(yamlFile, []byte("name: Khalid\ntags: [a, b]\n"), 0o644))
	require.NoError(t, os.WriteFile(jsonFile, []byte(`{"name":"Ada"}`), 0o644))

	state, err := LoadStateFile(yamlFile)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Khalid", "tags": []any{"a", "b"}}, state)

	state, err = LoadStateFile(jsonFile)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Ada"}, state)

	_, err = LoadStateFile(filepath.Join(dir, "c.toml"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{`), 0o644))
	_, err = LoadStateFile(filepath.Join(dir, "bad.json"))
	assert.Error(t, err)
}

func TestPageState(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "about.html")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "about.state.yml"), []byte("name: Ada\n"), 0o644))

	state, err := PageState(page)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Ada"}, state)

	state, err = PageState(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Nil(t, state)
}

// =============================================================================
// Server
// =============================================================================

func newTestServer(t *testing.T, opts Options) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()
	pages := filepath.Join(dir, "pages")
	static := filepath.Join(dir, "public")
	require.NoError(t, os.MkdirAll(filepath.Join(pages, "blog"), 0o755))
	require.NoError(t, os.MkdirAll(static, 0o755))

	files := map[string]string{
		"pages/index.html":          `<my-header>Home</my-header>`,
		"pages/greet.html":          `<my-greeting></my-greeting>`,
		"pages/greet.state.yaml":    "name: Khalid\n",
		"pages/doc.html":            `<!DOCTYPE html><html><head><title>Doc</title></head><body><my-header>Doc</my-header></body></html>`,
		"pages/marked.html":         `<div><my-header enhance-ssr>A</my-header><my-header>B</my-header></div>`,
		"pages/loop.html":           `<my-loop></my-loop>`,
		"pages/blog/index.html":     `<p>blog</p>`,
		"pages/badstate.html":       `<p></p>`,
		"pages/badstate.state.json": `{`,
		"public/site.css":           `body { margin: 0; }`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, filepath.FromSlash(name)), []byte(content), 0o644))
	}

	if opts.Processor == nil {
		opts.Processor = newRenderer(t)
	}
	opts.PagesDir = pages
	opts.StaticDir = static
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.NewRegistry()
	}

	srv := httptest.NewServer(NewServer(opts))
	t.Cleanup(srv.Close)
	return srv, dir
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var sb strings.Builder
	_, err = io.Copy(&sb, resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, sb.String()
}

func TestServerHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	status, body := get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body)

	status, _ = get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, status)
}

func TestServerPages(t *testing.T) {
	srv, _ := newTestServer(t, Options{Lang: "en", Title: "Site"})

	status, body := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t,
		`<!DOCTYPE html><html lang="en"><head><title>Site</title>`+headerBlock+
			`</head><body><my-header enhanced="✨"><h1>Home</h1></my-header></body></html>`,
		body)

	_, body = get(t, srv.URL+"/greet")
	assert.Contains(t, body, "<p>Hello Khalid</p>")

	_, body = get(t, srv.URL+"/doc")
	assert.Equal(t,
		`<!DOCTYPE html><html><head><title>Doc</title>`+headerBlock+
			`</head><body><my-header enhanced="✨"><h1>Doc</h1></my-header></body></html>`,
		body)

	_, body = get(t, srv.URL+"/marked")
	assert.Contains(t, body, headerBlock)
	assert.Contains(t, body, `<div><my-header enhanced="✨"><h1>A</h1></my-header><my-header>B</my-header></div>`)

	_, body = get(t, srv.URL+"/blog/")
	assert.Contains(t, body, "<p>blog</p>")
	assert.NotContains(t, body, "<style")

	status, body = get(t, srv.URL+"/static/site.css")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "body { margin: 0; }", body)
}

func TestServerPageErrors(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	status, _ := get(t, srv.URL+"/missing")
	assert.Equal(t, http.StatusNotFound, status)

	status, body := get(t, srv.URL+"/loop")
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, http.StatusText(http.StatusUnprocessableEntity), body)

	status, _ = get(t, srv.URL+"/badstate")
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestServerDevShowsDetails(t *testing.T) {
	srv, _ := newTestServer(t, Options{Dev: true, Reload: dev.NewReloadServer()})

	_, body := get(t, srv.URL+"/loop")
	assert.Contains(t, body, "E301")

	_, body = get(t, srv.URL+"/")
	assert.Contains(t, body, dev.ReloadPath)
}

func postRender(t *testing.T, url string, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url+"/api/render", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var sb strings.Builder
	_, err = io.Copy(&sb, resp.Body)
	require.NoError(t, err)
	return resp, []byte(sb.String())
}

func TestServerRenderAPI(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	resp, data := postRender(t, srv.URL, `{"markup":"<my-greeting></my-greeting>","initialState":{"name":"Khalid"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out RenderResponse
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, `<my-greeting enhanced="✨"><p>Hello Khalid</p></my-greeting>`, out.Body)
	assert.Equal(t, "", out.Styles)
	assert.Contains(t, out.Document, "<body>"+out.Body+"</body>")

	resp, data = postRender(t, srv.URL, `{"markup":"<my-loop></my-loop>"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(data, &e))
	assert.Equal(t, "E301", e.Code)

	resp, _ = postRender(t, srv.URL, `{`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClassify(t *testing.T) {
	code, status := classify(&enhance.MalformedMarkupError{Cause: errors.New("x")})
	assert.Equal(t, "E302", code)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	code, status = classify(context.Canceled)
	assert.Equal(t, "E305", code)
	assert.Equal(t, http.StatusServiceUnavailable, status)

	code, status = classify(&enhance.RenderError{Tag: "x-a", Cause: errors.New("boom")})
	assert.Equal(t, "E300", code)
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestPageFile(t *testing.T) {
	tests := map[string]string{
		"/":           "index.html",
		"/about":      "about.html",
		"/about.html": "about.html",
		"/blog/":      "blog/index.html",
		"/blog/post":  "blog/post.html",
		"/../secret":  "secret.html",
	}
	for in, want := range tests {
		assert.Equal(t, want, pageFile(in), in)
	}
}
