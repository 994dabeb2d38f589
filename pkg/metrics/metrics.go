package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	LinksClassifiedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_links_classified_total",
			Help: "Total number of resource anchors classified.",
		},
		[]string{"verdict"}, // downloadable, skipped, no_icon, no_href
	)

	TabsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_tabs_dispatched_total",
			Help: "Total number of download tabs opened.",
		},
		[]string{"status"}, // success, failure
	)

	ConvergencePollsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "harvester_convergence_polls_total",
			Help: "Total number of download directory snapshots taken.",
		},
	)

	DownloadDirBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "harvester_download_dir_bytes",
			Help: "Bytes present in the download directory at the last poll.",
		},
	)

	StepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "harvester_step_duration_seconds",
			Help:    "Duration of session steps.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"step"},
	)
)
