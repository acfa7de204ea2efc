// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

/*
Package websocket is the realtime delivery core: it routes chat events
between authenticated socket connections.

Key Components:

  - Hub: owns all realtime state and runs the event handlers
  - Client: one authenticated connection with read and write goroutines
  - Presence: online users mapped to their most recent connection
  - Viewers: distinct live viewers per chat
  - Rooms: named groups of connections used for broadcasts
  - Batcher: per-chat message batches delivered to viewers

Rooms:

Every chat has two rooms and every user one:

	chat:<chatId>:members   participants with the chat open
	chat:<chatId>:viewers   live viewers, participants or not
	<userId>                every connection of the user, joined on Attach

Wire Format:

Frames are JSON envelopes in both directions:

	{"type": "joinChat", "data": {"chatId": "...", "role": "viewer"}}

A frame that fails to parse, names an unknown event, fails validation or
is not authorized is dropped silently; the drop is logged and counted in
the websocket_events_dropped_total metric. No error is sent back.

Message Delivery:

A chat message reaches participants directly through the presence
registry, whatever room they are in. Viewers get messages in batches: a
batch is delivered when it reaches five messages or five seconds after its
first message, and only if the viewers room is not empty at that moment.

Each Client has two goroutines:

  - readPump: reads frames and dispatches them one at a time, in order
  - writePump: writes queued frames and keepalive pings

A client whose send buffer fills up is disconnected rather than blocking
the broadcast.

Usage Example:

	hub := websocket.NewHub(store, cfg.Realtime)
	go hub.RunWithContext(ctx)

	// in the upgrade handler, after authenticating claims:
	client := websocket.NewClient(hub, conn, claims)
	if err := hub.Attach(client); err != nil {
	    return
	}
	client.Start()

Thread Safety:

Registries each hold their own lock and no lock is held across a storage
call. Disconnect cleanup runs on the client's read goroutine after its
last event handler returned.
*/
package websocket
