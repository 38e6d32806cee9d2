package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sabbirhsn/blood-aid/donation-service/internal/adapters/metrics"
	"github.com/sabbirhsn/blood-aid/donation-service/internal/adapters/middleware"
)

// NewRouter assembles the full HTTP surface. The route table is documented
// in the README.
func NewRouter(
	auth *middleware.AuthMiddleware,
	users *UserHandler,
	requests *RequestHandler,
	health *HealthHandler,
	m *metrics.Metrics,
	allowedOrigins []string,
) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.CORS(allowedOrigins))
	r.Use(middleware.Metrics(m))

	// Health endpoints (OpenShift compatible)
	r.Get("/health", health.Health)
	r.Get("/health/ready", health.Ready)
	r.Get("/health/live", health.Live)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public reads
		r.Get("/donors/search", users.SearchDonors)
		r.Get("/donation-requests/pending", requests.ListPending)

		// Everything else requires a verified identity
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Post("/users", users.Register)
			r.Get("/users", users.ListUsers)
			r.Get("/users/me", users.Profile)
			r.Patch("/users/me", users.UpdateProfile)
			r.Get("/users/me/role", users.Role)
			r.Patch("/users/{id}/role", users.SetRole)
			r.Patch("/users/{id}/status", users.SetStatus)
			r.Get("/admin/stats", users.Stats)

			r.Post("/donation-requests", requests.Create)
			r.Get("/donation-requests", requests.ListAll)
			r.Get("/donation-requests/mine", requests.ListMine)
			r.Get("/donation-requests/{id}", requests.Get)
			r.Patch("/donation-requests/{id}", requests.Update)
			r.Delete("/donation-requests/{id}", requests.Delete)
			r.Patch("/donation-requests/{id}/donate", requests.Donate)
			r.Patch("/donation-requests/{id}/status", requests.UpdateStatus)
		})
	})

	return r
}
