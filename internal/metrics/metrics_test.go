// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// histogramSnapshot extracts sample count and sum from a Prometheus histogram
func histogramSnapshot(t *testing.T, h prometheus.Histogram) (uint64, float64) {
	t.Helper()
	var m io_prometheus_client.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum()
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/health/live", "200"))

	RecordAPIRequest("GET", "/api/v1/health/live", 200, 5*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/health/live", "200"))
	if after-before != 1 {
		t.Errorf("api_requests_total delta = %v, want 1", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("after inc = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("after dec = %v, want %v", got, before)
	}
}

func TestRecordBatchFlush_ObservesSize(t *testing.T) {
	countBefore, sumBefore := histogramSnapshot(t, BatchSize)

	RecordBatchFlush("size", 5, true)

	count, sum := histogramSnapshot(t, BatchSize)
	if count-countBefore != 1 {
		t.Errorf("message_batch_size samples delta = %d, want 1", count-countBefore)
	}
	if sum-sumBefore != 5 {
		t.Errorf("message_batch_size sum delta = %v, want 5", sum-sumBefore)
	}
}

func TestRecordBatchFlush(t *testing.T) {
	tests := []struct {
		name      string
		trigger   string
		delivered bool
		outcome   string
	}{
		{"size flush with audience", "size", true, "broadcast"},
		{"timer flush with audience", "timer", true, "broadcast"},
		{"timer flush without viewers", "timer", false, "no_audience"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := BatchFlushes.WithLabelValues(tt.trigger, tt.outcome)
			before := testutil.ToFloat64(c)
			RecordBatchFlush(tt.trigger, 3, tt.delivered)
			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("flush counter delta = %v, want 1", got)
			}
		})
	}
}

func TestRecordStorageOperation(t *testing.T) {
	c := StorageOperationErrors.WithLabelValues("get_chat")
	before := testutil.ToFloat64(c)

	RecordStorageOperation("get_chat", time.Millisecond, nil, false)
	RecordStorageOperation("get_chat", time.Millisecond, errors.New("not found"), true)
	if got := testutil.ToFloat64(c) - before; got != 0 {
		t.Errorf("errors delta after success and not-found = %v, want 0", got)
	}

	RecordStorageOperation("get_chat", time.Millisecond, errors.New("disk gone"), false)
	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("errors delta after failure = %v, want 1", got)
	}
}

func TestRecordCircuitBreakerTransition(t *testing.T) {
	tests := []struct {
		to   string
		want float64
	}{
		{"open", 2},
		{"half-open", 1},
		{"closed", 0},
	}
	for _, tt := range tests {
		RecordCircuitBreakerTransition("test-breaker", "x", tt.to)
		if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("test-breaker")); got != tt.want {
			t.Errorf("state after transition to %s = %v, want %v", tt.to, got, tt.want)
		}
	}
}

func TestRecordDroppedEvent(t *testing.T) {
	c := WSEventsDropped.WithLabelValues("message", "unauthorized")
	before := testutil.ToFloat64(c)
	RecordDroppedEvent("message", "unauthorized")
	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("dropped delta = %v, want 1", got)
	}
}
