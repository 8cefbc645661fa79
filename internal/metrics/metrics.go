package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "addressbook"

var (
	// Mutations counts successful store mutations by operation
	// (create, update, delete, bookmark, import).
	Mutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Successful contact store mutations.",
		},
		[]string{"op"},
	)

	// ImportRecords counts import candidates by outcome (imported, skipped, invalid).
	ImportRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_records_total",
			Help:      "Import candidates processed, by outcome.",
		},
		[]string{"result"},
	)

	// StorageWrites counts full-collection writes by result (ok, error).
	StorageWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_writes_total",
			Help:      "Whole-collection writes to the key-value backend.",
		},
		[]string{"result"},
	)

	// Contacts is the current collection size.
	Contacts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "contacts",
			Help:      "Number of contacts in the collection.",
		},
	)

	// RateLimited counts requests rejected by a rate limiter, by route.
	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected with 429.",
		},
		[]string{"route"},
	)

	// HTTPRequestDuration observes request latency by method, route pattern and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
