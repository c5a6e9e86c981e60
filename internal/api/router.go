package api

import (
	"net/http"
	"time"

	"github.com/cristianoliveira/smarthome-dash/internal/logging"
	"github.com/cristianoliveira/smarthome-dash/internal/preferences"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Options configures the router.
type Options struct {
	Dashboard Dashboard
	Faces     FaceFetcher
	Layout    *preferences.Layout
	Events    EventBus
	Logger    logging.Logger
}

// NewRouter creates and returns the HTTP router.
func NewRouter(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(opts.Logger))
	r.Use(corsMiddleware)
	r.Use(middleware.CleanPath)

	h := &Handlers{
		dash:   opts.Dashboard,
		faces:  opts.Faces,
		layout: opts.Layout,
		events: opts.Events,
		log:    opts.Logger,
	}

	r.Get("/healthz", h.health)
	r.Get("/view", h.getView)
	r.Get("/events", h.sseEvents)

	r.Route("/overlay", func(r chi.Router) {
		r.Get("/", h.getOverlay)
		r.Get("/face", h.getFace)
		r.Post("/resolve", h.resolveOverlay)
	})

	r.Route("/preferences", func(r chi.Router) {
		r.Get("/", h.getPreferences)
		r.Put("/", h.putPreferences)
		r.Post("/theme/toggle", h.toggleTheme)
	})

	r.Route("/layout", func(r chi.Router) {
		r.Get("/", h.getLayout)
		r.Post("/resize", h.resize)
		r.Post("/sidebar/toggle", h.toggleSidebar)
		r.Post("/menu", h.setMenu)
	})

	return r
}

// requestLogger logs each request through the structured logger.
func requestLogger(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"remote", r.RemoteAddr,
				"elapsed", time.Since(start).String(),
			)
		})
	}
}

// corsMiddleware adds permissive CORS headers for local network access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
