// Package httpapi composes the domain handlers into the public router.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"abhaya/internal/platform/metrics"
	"abhaya/internal/platform/middleware"
	"abhaya/pkg/platform/httputil"
	"abhaya/pkg/platform/middleware/device"
	"abhaya/pkg/platform/middleware/metadata"
	"abhaya/pkg/platform/middleware/requesttime"
)

// Routes mounts a domain handler. requireSession authenticates the bearer
// token of the request.
type Routes interface {
	Register(r chi.Router, requireSession func(http.Handler) http.Handler)
}

// AuthRoutes mounts the login and session endpoints, which guard themselves.
type AuthRoutes interface {
	Register(r chi.Router)
}

// Deps carries what NewRouter wires together.
type Deps struct {
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	Gatherer      prometheus.Gatherer
	Authenticator middleware.SessionAuthenticator
	Auth          AuthRoutes
	Domains       []Routes
}

// NewRouter wires all public endpoints behind the shared middleware chain.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logger(d.Logger))
	r.Use(metadata.ClientMetadata)
	r.Use(device.Slot)
	r.Use(requesttime.Middleware)
	r.Use(middleware.LatencyMiddleware(d.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	if d.Auth != nil {
		d.Auth.Register(r)
	}
	requireSession := middleware.RequireSession(d.Authenticator, d.Logger)
	for _, routes := range d.Domains {
		routes.Register(r, requireSession)
	}
	return r
}
