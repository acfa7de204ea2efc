// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package validation

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// MaxCommentLength caps a live comment after sanitization, in bytes.
const MaxCommentLength = 1000

// commentPolicy strips all markup; live comments are plain text.
var commentPolicy = bluemonday.StrictPolicy()

// SanitizeComment removes HTML from a live comment and trims it. An empty
// result means the comment had no visible text and should be dropped.
func SanitizeComment(comment string) string {
	if comment == "" {
		return ""
	}

	decoded := html.UnescapeString(comment)
	sanitized := strings.TrimSpace(commentPolicy.Sanitize(decoded))

	if len(sanitized) > MaxCommentLength {
		sanitized = truncateUTF8(sanitized, MaxCommentLength)
	}
	return sanitized
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	for n > 0 && n < len(s) && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
