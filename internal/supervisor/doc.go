// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

/*
Package supervisor runs the long-lived parts of the server under a
suture v4 supervision tree.

# Tree Layout

	cohortbox (root)
	├── data-layer
	│   └── storage-gc          (services.StorageGCService)
	├── messaging-layer
	│   ├── websocket-hub       (services.HubService)
	│   └── notification-bus    (services.BusService)
	└── api-layer
	    └── http-server         (services.HTTPServerService)

A service that returns an error is restarted. Repeated failures put its
layer into backoff without stopping the other layers. Supervisor events are
logged through sutureslog on the application slog logger, which writes via
zerolog.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(cfg.Supervisor))
	if err != nil {
	    return err
	}
	tree.AddMessagingService(services.NewHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh

Canceling ctx stops the tree. Each service gets ShutdownTimeout to return;
UnstoppedServiceReport names the ones that did not.
*/
package supervisor
