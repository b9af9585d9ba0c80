package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salesflow_orders_submitted_total",
		Help: "Total number of orders submitted by sales",
	}, []string{"type"})

	OrderTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salesflow_order_transitions_total",
		Help: "Total number of accepted order status transitions",
	}, []string{"from", "to"})

	OrderTransitionsDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salesflow_order_transitions_denied_total",
		Help: "Total number of refused order operations",
	}, []string{"reason"})

	NotificationsEmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salesflow_notifications_emitted_total",
		Help: "Total number of notifications emitted",
	}, []string{"type"})

	ImportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salesflow_imports_total",
		Help: "Total number of catalog and return imports",
	}, []string{"kind", "result"})

	ImportRowsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salesflow_import_rows_skipped_total",
		Help: "Total number of malformed import rows skipped",
	}, []string{"kind"})

	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salesflow_logins_total",
		Help: "Total number of login attempts",
	}, []string{"result"})

	StatePersistLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "salesflow_state_persist_latency_seconds",
		Help:    "Latency of persisting the state document",
		Buckets: prometheus.DefBuckets,
	})

	EventsPublishFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salesflow_events_publish_failed_total",
		Help: "Total number of domain events that could not be published",
	}, []string{"type"})

	EventsConsumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salesflow_events_consumed_total",
		Help: "Total number of domain events consumed by the audit worker",
	}, []string{"type"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
