// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/cohortbox/internal/logging"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		upstream string
		keep     bool
	}{
		{"generates when absent", "", false},
		{"keeps upstream id", "proxy-1234", true},
		{"replaces oversized id", strings.Repeat("x", maxRequestIDLength+1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ctxID, logID, correlationID string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxID = GetRequestID(r.Context())
				logID = logging.RequestIDFromContext(r.Context())
				correlationID = logging.CorrelationIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.upstream != "" {
				req.Header.Set(RequestIDHeader, tt.upstream)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if tt.keep {
				if got != tt.upstream {
					t.Errorf("header = %q, want upstream %q", got, tt.upstream)
				}
			} else if _, err := uuid.Parse(got); err != nil {
				t.Errorf("header %q is not a generated UUID: %v", got, err)
			}
			if ctxID != got || logID != got {
				t.Errorf("context ids %q/%q do not match header %q", ctxID, logID, got)
			}
			if correlationID == "" {
				t.Error("correlation id should be set for logging")
			}
		})
	}
}

func TestRequestID_Unique(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		id := rec.Header().Get(RequestIDHeader)
		if seen[id] {
			t.Fatalf("duplicate request id %s", id)
		}
		seen[id] = true
	}
}

func TestGetRequestID_Missing(t *testing.T) {
	if id := GetRequestID(context.Background()); id != "" {
		t.Errorf("GetRequestID() = %q, want empty", id)
	}
	ctx := context.WithValue(context.Background(), RequestIDKey, 42)
	if id := GetRequestID(ctx); id != "" {
		t.Errorf("GetRequestID() with wrong type = %q, want empty", id)
	}
}
