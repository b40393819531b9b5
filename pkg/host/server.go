package host

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	enhance "github.com/vango-dev/enhance"
	"github.com/vango-dev/enhance/internal/dev"
	"github.com/vango-dev/enhance/internal/errors"
	"github.com/vango-dev/enhance/pkg/markup"
)

// MaxRenderRequestSize limits the body of a render API request.
const MaxRenderRequestSize = 1 << 20

// Options configures a Server.
type Options struct {
	// Processor renders markup. Required.
	Processor enhance.Processor

	// PagesDir holds the page files. Pages are read on every request.
	PagesDir string

	// StaticDir is served under /static/. Optional.
	StaticDir string

	// Lang and Title are used when a fragment page is wrapped in the
	// layout.
	Lang  string
	Title string

	// Dev shows error details and enables hot reload.
	Dev bool

	// Reload serves the hot reload socket in dev mode. Optional.
	Reload *dev.ReloadServer

	// Gatherer is served at /metrics. Default: prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer

	// ShutdownTimeout bounds graceful shutdown. Default: 10s
	ShutdownTimeout time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Server serves pages with their custom elements expanded.
type Server struct {
	opts   Options
	helper *TagHelper
	router chi.Router
	logger *slog.Logger
}

// NewServer builds the routes.
func NewServer(opts Options) *Server {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		opts:   opts,
		helper: &TagHelper{Processor: opts.Processor},
		logger: logger.With("component", "host"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)
	r.Use(Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	r.Post("/api/render", s.handleRender)

	if s.opts.Dev && s.opts.Reload != nil {
		r.Handle(dev.ReloadPath, s.opts.Reload)
	}
	if s.opts.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.opts.StaticDir))))
	}

	r.Get("/*", s.handlePage)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", addr, "dev", s.opts.Dev)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()

		if s.opts.Reload != nil {
			s.opts.Reload.Close()
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
		s.logger.Info("server shutdown complete")
		return nil
	}
}

// =============================================================================
// Render API
// =============================================================================

// RenderRequest is the body of POST /api/render.
type RenderRequest struct {
	Markup       string `json:"markup"`
	InitialState any    `json:"initialState,omitempty"`
}

// RenderResponse is the reply to a successful render request.
type RenderResponse struct {
	Document string `json:"document"`
	Body     string `json:"body"`
	Styles   string `json:"styles"`
}

// ErrorResponse is the reply to a failed request.
type ErrorResponse struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRenderRequestSize))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	res, err := s.opts.Processor.Process(r.Context(), req.Markup, req.InitialState)
	if err != nil {
		code, status := classify(err)
		s.logger.Warn("render failed", "code", code, "error", err)
		writeJSON(w, status, ErrorResponse{Code: code, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, RenderResponse{
		Document: res.Document,
		Body:     res.Body,
		Styles:   res.Styles,
	})
}

// classify maps a Process error to an error code and HTTP status.
func classify(err error) (string, int) {
	var (
		depth     *enhance.RenderDepthExceededError
		malformed *enhance.MalformedMarkupError
	)
	switch {
	case stderrors.As(err, &depth):
		return "E301", http.StatusUnprocessableEntity
	case stderrors.As(err, &malformed):
		return "E302", http.StatusUnprocessableEntity
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return "E305", http.StatusServiceUnavailable
	default:
		return "E300", http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// =============================================================================
// Pages
// =============================================================================

// pageFile maps a request path to a file below PagesDir: "/" is
// index.html, "/about" is about.html, "/blog/" is blog/index.html.
func pageFile(urlPath string) string {
	clean := path.Clean("/" + urlPath)
	switch {
	case clean == "/":
		return "index.html"
	case strings.HasSuffix(urlPath, "/"):
		return strings.TrimPrefix(clean, "/") + "/index.html"
	case path.Ext(clean) == ".html":
		return strings.TrimPrefix(clean, "/")
	default:
		return strings.TrimPrefix(clean, "/") + ".html"
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	file := filepath.Join(s.opts.PagesDir, filepath.FromSlash(pageFile(r.URL.Path)))

	data, err := os.ReadFile(file)
	if stderrors.Is(err, fs.ErrNotExist) {
		s.fail(w, r, http.StatusNotFound, errors.New("E303").WithDetail(r.URL.Path))
		return
	}
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	state, err := PageState(file)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, errors.New("E304").Wrap(err))
		return
	}

	page := string(data)
	document := markup.IsDocument(page)
	ctx := r.Context()
	rc := FromContext(ctx)

	// Pages with marked elements only have those rendered. Other pages are
	// processed whole, and a whole document already carries its styles.
	var out, styles string
	if strings.Contains(page, enhance.SSRAttr) {
		out, err = s.helper.Apply(ctx, page, state)
		styles = rc.Styles()
	} else {
		var res *enhance.Result
		if res, err = s.opts.Processor.Process(ctx, page, state); err == nil {
			rc.Add(res)
			out, styles = res.Body, rc.Styles()
			if document {
				out, styles = res.Document, ""
			}
		}
	}
	if err != nil {
		code, status := classify(err)
		s.fail(w, r, status, errors.New(code).Wrap(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if document {
		_, _ = w.Write([]byte(InjectHead(out, styles, s.reloadEnabled())))
		return
	}

	layout := Layout(LayoutData{
		Lang:   s.opts.Lang,
		Title:  s.opts.Title,
		Styles: styles,
		Body:   out,
		Dev:    s.reloadEnabled(),
	})
	if err := layout.Render(ctx, w); err != nil {
		s.logger.Error("write page", "path", r.URL.Path, "error", err)
	}
}

// fail logs err and writes an error page. Details are only shown in dev
// mode.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	}

	msg := http.StatusText(status)
	if s.opts.Dev {
		msg = err.Error()
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

func (s *Server) reloadEnabled() bool {
	return s.opts.Dev && s.opts.Reload != nil
}

// logRequests logs one line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}
