// Package metrics exposes the engine's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playdeck_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "playdeck_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Playlist metrics
var (
	PlaylistsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playdeck_playlists_created_total",
			Help: "Total number of playlists created",
		},
	)

	ItemsAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playdeck_items_added_total",
			Help: "Total number of items added to playlists",
		},
	)

	ImportsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playdeck_imports_completed_total",
			Help: "Total number of completed playlist imports",
		},
	)

	SearchRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playdeck_search_requests_total",
			Help: "Total number of filter requests",
		},
	)

	PlaybackAdvances = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playdeck_playback_advances_total",
			Help: "Total number of next/previous resolutions",
		},
		[]string{"direction"},
	)
)
