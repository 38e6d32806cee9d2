// Package metrics holds the Prometheus instruments for the API process.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	UsersRegistered     prometheus.Counter
	RequestsCreated     prometheus.Counter
	RequestsClaimed     prometheus.Counter
}

// New creates and registers all metrics on the default registerer.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on the given registerer; tests pass a fresh
// registry so repeated construction does not collide.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "donation_service_http_requests_total",
			Help: "Total number of HTTP requests handled, by route, method and status",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "donation_service_http_request_duration_seconds",
			Help:    "HTTP request latency, by route and method",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		UsersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "donation_service_users_registered_total",
			Help: "Total number of users registered",
		}),
		RequestsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "donation_service_requests_created_total",
			Help: "Total number of donation requests created",
		}),
		RequestsClaimed: factory.NewCounter(prometheus.CounterOpts{
			Name: "donation_service_requests_claimed_total",
			Help: "Total number of donation requests claimed by a donor",
		}),
	}
}
