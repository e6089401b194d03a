// Package routing maps route table entries onto a chi router and dispatches
// matched requests to controllers.
package routing

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/route"
)

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-Id"

// Router wraps chi.Router and registers route configurations with a
// Dispatcher.
type Router struct {
	mux        chi.Router
	dispatcher *Dispatcher
}

// New creates a Router with the default middleware stack (RequestID,
// RealIP, AccessLog, Recoverer).
func New(dispatcher *Dispatcher) *Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog(dispatcher.logger))
	r.Use(middleware.Recoverer)
	return &Router{mux: r, dispatcher: dispatcher}
}

// ── Route configurations ─────────────────────────────────────────────────────

// Handle registers cfg for method and pattern.
func (r *Router) Handle(method, pattern string, cfg route.Configuration) {
	r.mux.Method(strings.ToUpper(method), pattern, r.dispatcher.Handler(cfg))
}

// Get registers cfg for GET.
func (r *Router) Get(pattern string, cfg route.Configuration) { r.Handle(http.MethodGet, pattern, cfg) }

// Register adds every entry of a route table.
func (r *Router) Register(entries ...route.Entry) {
	for _, e := range entries {
		r.Handle(e.Method, e.Pattern, e.Configuration)
	}
}

// ── Prefixes & middleware ────────────────────────────────────────────────────

// Prefix creates a sub-router mounted at pattern.
func (r *Router) Prefix(pattern string, fn func(r *Router)) {
	r.mux.Route(pattern, func(mx chi.Router) {
		fn(&Router{mux: mx, dispatcher: r.dispatcher})
	})
}

// Middleware adds one or more middleware to the router.
func (r *Router) Middleware(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

// ── Static files ─────────────────────────────────────────────────────────────

// Static serves the files under dir at prefix, e.g.
// router.Static("/public", "./public").
func (r *Router) Static(prefix, dir string) {
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	r.mux.Get(prefix+"/*", func(w http.ResponseWriter, req *http.Request) {
		fs.ServeHTTP(w, req)
	})
}

// ── Serve ────────────────────────────────────────────────────────────────────

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler returns the underlying http.Handler (for testing etc.).
func (r *Router) Handler() http.Handler {
	return r.mux
}

// ── Middleware ───────────────────────────────────────────────────────────────

type requestIDKey struct{}

// RequestID keeps an incoming X-Request-Id or assigns a new uuid, and
// echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestIDFromContext returns the id set by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// AccessLog logs one line per request at info level.
func AccessLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("request_id", RequestIDFromContext(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
