// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package models

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// IDLength is the length of a document ID: 12 bytes, hex encoded.
const IDLength = 24

// NewID returns a 24-character hex document ID. The first four bytes are the
// creation time in seconds, so IDs sort roughly by age; the remaining eight
// come from a random UUID.
func NewID() string {
	var b [12]byte
	binary.BigEndian.PutUint32(b[:4], uint32(time.Now().Unix()))
	u := uuid.New()
	copy(b[4:], u[:8])
	return hex.EncodeToString(b[:])
}

// IsID reports whether s is a well-formed document ID: 24 lowercase hex
// characters, the shape the objectid validation tag accepts.
func IsID(s string) bool {
	if len(s) != IDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}
