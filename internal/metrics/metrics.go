// Package metrics exposes the Prometheus collectors used across the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "margin_orders_ingested_total",
		Help: "Orders persisted during sync runs.",
	}, []string{"tenant"})

	OrdersSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "margin_orders_skipped_total",
		Help: "Orders skipped during sync runs, by reason.",
	}, []string{"tenant", "reason"})

	LineItemsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "margin_line_items_skipped_total",
		Help: "Line items rejected during normalization, by reason.",
	}, []string{"tenant", "reason"})

	FetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "margin_fetch_errors_total",
		Help: "Upstream API fetch failures, by source.",
	}, []string{"tenant", "source"})

	VariantCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "margin_variant_cache_hits_total",
		Help: "Variant SKU lookups served from the in-process cache.",
	})

	SyncDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "margin_sync_duration_seconds",
		Help:    "Wall time of a full tenant sync run.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"tenant"})

	MarginReportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "margin_report_duration_seconds",
		Help:    "Wall time of a daily margin report build.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"tenant"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "margin_http_requests_total",
		Help: "HTTP requests served, by route and status class.",
	}, []string{"route", "status"})
)
