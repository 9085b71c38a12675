/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client IP from proxy headers
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the dispatch frontend
  5. RateLimit:  Per-IP token bucket

SEE ALSO:
  - handlers.go: Handler implementations
  - ratelimit.go: Rate limit middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions tunes the middleware stack.
type RouterOptions struct {
	AllowedOrigins  []string
	RateLimitPerSec float64
	RateLimitBurst  int
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
		}))
	}
	if opts.RateLimitPerSec > 0 {
		rl := NewIPRateLimiter(opts.RateLimitPerSec, opts.RateLimitBurst)
		r.Use(rl.Middleware)
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Limit resolution
		r.Get("/limits/resolve", h.ResolveLimit)

		// Request routes
		r.Route("/requests", func(r chi.Router) {
			r.Post("/", h.SubmitRequest)
			r.Post("/validate", h.ValidateRequest)
			r.Delete("/{id}", h.WithdrawRequest)
		})

		// Driver routes
		r.Route("/drivers", func(r chi.Router) {
			r.Get("/", h.ListDrivers)
			r.Post("/", h.CreateDriver)
			r.Get("/{id}", h.GetDriver)
			r.Get("/{id}/stats", h.GetDriverStats)
		})

		// Team routes
		r.Get("/teams/{team}/capacity", h.GetTeamCapacity)

		// Settings routes
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.GetSettings)
			r.Put("/", h.UpdateSettings)
		})
	})

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
