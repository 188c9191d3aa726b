package commentary

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpsduel_commentary_requests_total",
			Help: "Total number of commentary requests to the text-generation service.",
		},
		[]string{"model", "status"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rpsduel_commentary_request_duration_seconds",
			Help:    "Histogram of commentary request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)
)

const (
	statusSuccess = "success"
	statusError   = "error"
	statusEmpty   = "error_empty_response"
	statusTimeout = "timeout"
)
