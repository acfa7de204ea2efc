// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var (
	_ suture.Service = (*HubService)(nil)
	_ suture.Service = (*BusService)(nil)
	_ suture.Service = (*StorageGCService)(nil)
)

type stubRunner struct {
	err   error
	block bool
}

func (r *stubRunner) RunWithContext(ctx context.Context) error { return r.Run(ctx) }

func (r *stubRunner) Run(ctx context.Context) error {
	if r.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return r.err
}

func TestHubService_Serve(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	svc := NewHubService(&stubRunner{block: true})
	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() error = %v, want context.DeadlineExceeded", err)
	}
	if svc.String() != "websocket-hub" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestBusService_Serve(t *testing.T) {
	subscribeErr := errors.New("subscribe failed")

	tests := []struct {
		name    string
		runner  *stubRunner
		cancel  bool
		wantErr error
	}{
		{"canceled", &stubRunner{block: true}, true, context.Canceled},
		{"subscription error", &stubRunner{err: subscribeErr}, false, subscribeErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			if tt.cancel {
				cancel()
			}
			defer cancel()

			if err := NewBusService(tt.runner).Serve(ctx); !errors.Is(err, tt.wantErr) {
				t.Errorf("Serve() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("unexpected clean return is a failure", func(t *testing.T) {
		if err := NewBusService(&stubRunner{}).Serve(context.Background()); err == nil {
			t.Error("Serve() = nil, want error so suture restarts the subscriber")
		}
	})
}

type stubGC struct {
	runs atomic.Int32
	err  error
}

func (g *stubGC) RunGC(context.Context) error {
	g.runs.Add(1)
	return g.err
}

func TestStorageGCService_Serve(t *testing.T) {
	for _, gcErr := range []error{nil, errors.New("value log busy")} {
		gc := &stubGC{err: gcErr}
		svc := NewStorageGCService(gc, 5*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		deadline := time.Now().Add(2 * time.Second)
		for gc.runs.Load() < 2 {
			if time.Now().After(deadline) {
				t.Fatalf("RunGC called %d times, want >= 2", gc.runs.Load())
			}
			time.Sleep(5 * time.Millisecond)
		}
		cancel()

		if err := <-errCh; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	}
}
