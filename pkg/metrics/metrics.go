// Package metrics defines Prometheus metrics for the keyframe search service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts processed HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyframe_search_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures server response time per route.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "keyframe_search_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// SearchesTotal counts fused searches by kind (text or image).
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyframe_search_searches_total",
			Help: "Total number of fused searches served",
		},
		[]string{"kind"},
	)

	// PointsUploaded counts keyframe points uploaded by the ingestion pipeline.
	PointsUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "keyframe_search_points_uploaded_total",
			Help: "Total number of keyframe points uploaded to the vector index",
		},
	)

	// VideosIngested counts ingested videos by outcome.
	VideosIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyframe_search_videos_ingested_total",
			Help: "Total number of videos processed by the ingestion pipeline",
		},
		[]string{"outcome"},
	)
)
