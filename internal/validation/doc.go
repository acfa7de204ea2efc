// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

// Package validation provides struct validation using go-playground/validator v10
// and text sanitization using bluemonday.
//
// # Overview
//
// The package provides:
//   - Thread-safe singleton validator (initialized once, cached struct info)
//   - The objectid tag for 24-character hex document IDs
//   - Error messages keyed by JSON field name
//   - APIError conversion matching the HTTP error envelope
//   - SanitizeComment for live comments (strict policy, no markup survives)
//
// # Quick Start
//
//	type notificationRequest struct {
//	    User string `json:"user" validate:"required,objectid"`
//	    Type string `json:"type" validate:"required,oneof=welcome system"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := err.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
//
// Socket handlers use IsID directly; they drop invalid events
// instead of answering with an error.
package validation
