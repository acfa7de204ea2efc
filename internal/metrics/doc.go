// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and are
exposed at /metrics in Prometheus text format:

	curl http://localhost:4000/metrics

# Available Metrics

HTTP:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests

WebSocket:
  - websocket_connections
  - websocket_messages_sent_total, websocket_messages_received_total{event}
  - websocket_events_dropped_total{event,reason}
  - websocket_send_buffer_full_total
  - websocket_errors_total{error_type}

Realtime state:
  - presence_online_users, live_viewers
  - participant_cache_hits_total, participant_cache_misses_total,
    participant_cache_evictions_total{reason}
  - message_batch_flushes_total{trigger,outcome}, message_batch_size

Event bus:
  - event_bus_messages_published_total{topic}
  - event_bus_messages_delivered_total{topic,result}

Storage:
  - storage_operation_duration_seconds{operation}
  - storage_operation_errors_total{operation}
  - circuit_breaker_state{name}, circuit_breaker_requests_total{name,result},
    circuit_breaker_state_transitions_total{name,from_state,to_state}
*/
package metrics
