// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket events received, by event type",
		},
		[]string{"event"},
	)

	// WSEventsDropped counts inbound events discarded without a reply.
	WSEventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_events_dropped_total",
			Help: "Total number of WebSocket events dropped",
		},
		[]string{"event", "reason"}, // reason: invalid, unauthorized, not_found, disconnected, timeout, storage, storage_unavailable, rate_limited, unknown_event, panic
	)

	WSSendBufferFull = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_send_buffer_full_total",
			Help: "Total number of outbound messages dropped because a client send buffer was full",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Realtime State Metrics
	PresenceOnlineUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "presence_online_users",
			Help: "Current number of users in the presence registry",
		},
	)

	LiveViewers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "live_viewers",
			Help: "Current number of tracked viewers across all chats",
		},
	)

	// Participant Cache Metrics
	ParticipantCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "participant_cache_hits_total",
			Help: "Total number of participant cache hits",
		},
	)

	ParticipantCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "participant_cache_misses_total",
			Help: "Total number of participant cache misses (storage lookups)",
		},
	)

	ParticipantCacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "participant_cache_evictions_total",
			Help: "Total number of participant cache entries removed",
		},
		[]string{"reason"}, // expired, invalidated
	)

	// Message Batch Metrics
	BatchFlushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "message_batch_flushes_total",
			Help: "Total number of message batch flushes",
		},
		[]string{"trigger", "outcome"}, // trigger: size, timer, manual, stop; outcome: broadcast, no_audience
	)

	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "message_batch_size",
			Help:    "Number of messages per flushed batch",
			Buckets: []float64{1, 2, 3, 4, 5, 10, 25},
		},
	)

	// Event Bus Metrics
	BusMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_bus_messages_published_total",
			Help: "Total number of messages published on the event bus",
		},
		[]string{"topic"},
	)

	BusMessagesDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_bus_messages_delivered_total",
			Help: "Total number of event bus messages handled by subscribers",
		},
		[]string{"topic", "result"}, // result: delivered, malformed
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Storage Metrics
	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_operation_duration_seconds",
			Help:    "Duration of document store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StorageOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_operation_errors_total",
			Help: "Total number of document store errors (not-found excluded)",
		},
		[]string{"operation"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordDroppedEvent records an inbound socket event that was discarded.
func RecordDroppedEvent(event, reason string) {
	WSEventsDropped.WithLabelValues(event, reason).Inc()
}

// RecordBatchFlush records one flush of a chat's pending message batch.
func RecordBatchFlush(trigger string, size int, delivered bool) {
	outcome := "broadcast"
	if !delivered {
		outcome = "no_audience"
	}
	BatchFlushes.WithLabelValues(trigger, outcome).Inc()
	BatchSize.Observe(float64(size))
}

// RecordStorageOperation records a document store call. Pass notFound=true
// when err is a missing document so it is not counted as an error.
func RecordStorageOperation(operation string, duration time.Duration, err error, notFound bool) {
	StorageOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil && !notFound {
		StorageOperationErrors.WithLabelValues(operation).Inc()
	}
}

// RecordCircuitBreakerTransition records a breaker state change and updates the state gauge.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}
