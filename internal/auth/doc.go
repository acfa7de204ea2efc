// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

/*
Package auth authenticates socket connections and HTTP requests with HS256
JSON Web Tokens issued by the account service.

Tokens carry the user's id, email, first and last name, and username. The id
claim is the identity every realtime handler trusts; client-supplied user IDs
in event payloads are checked against it.

Tokens are read from the Authorization header ("Bearer <token>") or, for
browser websocket upgrades that cannot set headers, the token query parameter.
A missing or invalid token fails the request with 401 before any upgrade.

	jwtManager, err := auth.NewJWTManager(cfg.Security.JWTSecret, 10*time.Minute)
	r.With(func(h http.Handler) http.Handler { return jwtManager.Authenticate(h) })
*/
package auth
