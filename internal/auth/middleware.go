// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/cohortbox/internal/logging"
)

type contextKey string

// ClaimsContextKey holds the *Claims of an authenticated request.
const ClaimsContextKey contextKey = "claims"

// TokenQueryParam is the query parameter browsers use to pass a token on the
// websocket upgrade, since they cannot set headers on it.
const TokenQueryParam = "token"

// TokenFromRequest extracts a bearer token from the Authorization header or,
// failing that, the token query parameter.
func TokenFromRequest(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", ErrInvalidToken
		}
		return strings.TrimSpace(parts[1]), nil
	}

	if token := r.URL.Query().Get(TokenQueryParam); token != "" {
		return token, nil
	}

	return "", ErrMissingToken
}

// Authenticate validates the request token and stores the claims in the
// request context. Requests without a valid token get 401.
func (m *JWTManager) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.ClaimsFromRequest(r)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Request authentication failed")
			http.Error(w, "Unauthorized: "+reason(err), http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	})
}

// ClaimsFromRequest extracts and validates the request token.
func (m *JWTManager) ClaimsFromRequest(r *http.Request) (*Claims, error) {
	token, err := TokenFromRequest(r)
	if err != nil {
		return nil, err
	}
	return m.ValidateToken(token)
}

// ContextWithClaims returns a copy of ctx carrying claims.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsContextKey, claims)
}

// ClaimsFromContext returns the claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

func reason(err error) string {
	if errors.Is(err, ErrMissingToken) {
		return "missing token"
	}
	return "invalid token"
}
