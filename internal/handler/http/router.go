package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MAH-7/JPKWT-Rating-Reviews/pkg/health"
	"github.com/MAH-7/JPKWT-Rating-Reviews/pkg/middleware"

	"github.com/MAH-7/JPKWT-Rating-Reviews/internal/service"
)

// RouterConfig carries the cross-cutting settings the router needs.
type RouterConfig struct {
	ServiceName    string
	Environment    string
	AllowedOrigins []string
}

// NewRouter creates a chi router with all review service routes registered.
func NewRouter(
	cfg RouterConfig,
	reviewService *service.ReviewService,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		Environment:    cfg.Environment,
	}))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))

	// Health check and metrics endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	// Review API endpoints
	reviewHandler := NewReviewHandler(reviewService, logger)

	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", reviewHandler.SubmitReview)
		r.Get("/", reviewHandler.ListReviews)
		r.Get("/approved", reviewHandler.ListApproved)
		r.Get("/stats", reviewHandler.GetStats)
		r.Get("/search", reviewHandler.SearchReviews)
		r.Get("/filter", reviewHandler.FilterReviews)
		r.Get("/{id}", reviewHandler.GetReview)
		r.Patch("/{id}/status", reviewHandler.UpdateStatus)
		r.Delete("/{id}", reviewHandler.DeleteReview)
	})

	return r
}
