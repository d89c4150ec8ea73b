package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Overland-East-Bay/geo-projects-view/internal/platform/logger"
	"github.com/Overland-East-Bay/geo-projects-view/internal/platform/metrics"
)

type RouterOptions struct {
	// Logger receives one access line per request. Nil disables access logging.
	Logger *slog.Logger
	// Metrics mounts the Prometheus handler at /metrics.
	Metrics bool
}

// NewRouter constructs the API HTTP router.
func NewRouter(s *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if opts.Logger != nil {
		r.Use(logger.AccessMiddleware(opts.Logger))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	r.Post("/load", s.Load)
	r.Get("/state", s.GetState)
	r.Patch("/filter", s.PatchFilter)
	r.Post("/sort/{key}", s.PostSort)
	r.Put("/selection", s.PutSelection)
	r.Delete("/selection", s.DeleteSelection)
	r.Get("/rows", s.GetRows)
	r.Post("/rows/measurements", s.PostMeasurements)
	r.Get("/markers", s.GetMarkers)
	r.Get("/camera", s.GetCamera)
	r.Get("/export/{format}", s.GetExport)
	r.Post("/export/{format}/save", s.SaveExport)
	r.Get("/notifications", s.GetNotifications)

	return r
}
