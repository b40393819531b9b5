package host

import (
	"context"
	"net/http"

	enhance "github.com/vango-dev/enhance"
	"github.com/vango-dev/enhance/pkg/style"
)

// RequestContext collects the styles of every Process call made while
// serving one request.
type RequestContext struct {
	styles *style.Aggregator
}

// NewRequestContext creates an empty RequestContext.
func NewRequestContext() *RequestContext {
	return &RequestContext{styles: style.NewAggregator()}
}

// Add records the stylesheets of res. Stylesheets already seen during the
// request are kept once.
func (rc *RequestContext) Add(res *enhance.Result) {
	if rc == nil || res == nil {
		return
	}
	rc.styles.AddFragments(res.Fragments...)
}

// Entries returns the distinct stylesheets in first-seen order.
func (rc *RequestContext) Entries() []string {
	if rc == nil {
		return nil
	}
	return rc.styles.Entries()
}

// Styles returns the aggregated style block, or "" when no component
// emitted styles.
func (rc *RequestContext) Styles() string {
	if rc == nil {
		return ""
	}
	return rc.styles.Render()
}

type requestContextKey struct{}

// WithRequestContext returns a copy of ctx carrying rc.
func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// FromContext returns the RequestContext stored in ctx, or nil. The
// methods of a nil RequestContext are no-ops.
func FromContext(ctx context.Context) *RequestContext {
	rc, _ := ctx.Value(requestContextKey{}).(*RequestContext)
	return rc
}

// Middleware attaches a fresh RequestContext to every request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithRequestContext(r.Context(), NewRequestContext())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
