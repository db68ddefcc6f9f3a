package gateway

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_gateway_requests_total",
			Help: "Total number of gateway requests",
		},
		[]string{"operation", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "client_gateway_request_duration_seconds",
			Help:    "Duration of gateway requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// errorLabel collapses the error taxonomy into a metric label value.
func errorLabel(err error) string {
	var srvErr *ServerError
	var valErr *ValidationError
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrUnreachable):
		return "unreachable"
	case errors.As(err, &srvErr):
		return "server_error"
	case errors.As(err, &valErr):
		return "validation"
	default:
		return "unknown"
	}
}
