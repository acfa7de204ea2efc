// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

/*
Package services adapts server components to suture.Service.

Each wrapper translates a component's lifecycle into Serve(ctx) error and
names itself through fmt.Stringer for suture's log messages:

  - HTTPServerService: ListenAndServe with graceful Shutdown
  - HubService: websocket hub housekeeping loop
  - BusService: notification bus subscriber
  - StorageGCService: periodic Badger value log GC

The package imports no component packages; each wrapper declares the
small interface it needs.
*/
package services
