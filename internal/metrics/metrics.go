// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "album_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "album_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// PhotoUploadsTotal counts ingestion attempts by outcome (ok or an error kind).
	PhotoUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "album_photo_uploads_total",
			Help: "Total number of photo submissions by outcome",
		},
		[]string{"outcome"},
	)

	PhotoUploadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "album_photo_upload_duration_seconds",
			Help:    "Duration of photo ingestion",
			Buckets: prometheus.DefBuckets,
		},
	)

	PhotoUploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "album_photo_upload_bytes",
			Help:    "Decoded size of submitted photos",
			Buckets: prometheus.ExponentialBuckets(64*1024, 2, 10),
		},
	)

	ArchiveExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "album_archive_exports_total",
			Help: "Total number of album archive exports by outcome",
		},
		[]string{"outcome"},
	)

	EventCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "album_event_cache_hits_total",
		Help: "Event lookups answered from the cache",
	})

	EventCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "album_event_cache_misses_total",
		Help: "Event lookups that went to the record store",
	})
)

// Middleware records request count and latency per route pattern.
// The pattern (e.g. /api/events/:id) keeps label cardinality bounded.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := c.Route().Path
		httpRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
