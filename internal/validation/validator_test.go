// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package validation

import (
	"strings"
	"testing"

	"github.com/tomtom215/cohortbox/internal/models"
)

// ===================================================================================================
// Singleton Validator Tests
// ===================================================================================================

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

// ===================================================================================================
// ValidateStruct Tests
// ===================================================================================================

func TestValidateStruct_Notification(t *testing.T) {
	tests := []struct {
		name      string
		input     models.Notification
		wantField string
		wantTag   string
	}{
		{
			name:  "valid",
			input: models.Notification{User: "64a000000000000000000001", Type: "welcome"},
		},
		{
			name:  "valid with optional ids",
			input: models.Notification{User: "64a000000000000000000001", Sender: "64a000000000000000000002", Chat: "64b000000000000000000001", Type: "mention"},
		},
		{
			name:      "missing user",
			input:     models.Notification{Type: "welcome"},
			wantField: "user",
			wantTag:   "required",
		},
		{
			name:      "malformed user",
			input:     models.Notification{User: "not-an-id", Type: "welcome"},
			wantField: "user",
			wantTag:   "objectid",
		},
		{
			name:      "malformed sender",
			input:     models.Notification{User: "64a000000000000000000001", Sender: "xyz", Type: "welcome"},
			wantField: "sender",
			wantTag:   "objectid",
		},
		{
			name:      "unknown type",
			input:     models.Notification{User: "64a000000000000000000001", Type: "party"},
			wantField: "type",
			wantTag:   "oneof",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateStruct() returned unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateStruct() should have returned an error")
			}

			found := false
			for _, e := range err.Errors() {
				if e.Field() == tt.wantField && e.Tag() == tt.wantTag {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("Expected error on field %s with tag %s, got: %v", tt.wantField, tt.wantTag, err.Errors())
			}
		})
	}
}

func TestValidateStruct_ChatParticipants(t *testing.T) {
	chat := models.Chat{
		ID:           "64b000000000000000000001",
		Admin:        "64a000000000000000000001",
		Participants: []string{"64a000000000000000000001", "bogus"},
	}
	err := ValidateStruct(&chat)
	if err == nil {
		t.Fatal("ValidateStruct() should reject a malformed participant id")
	}
	if err.Errors()[0].Tag() != "objectid" {
		t.Errorf("Tag() = %q, want objectid", err.Errors()[0].Tag())
	}
}

// ===================================================================================================
// ToAPIError Tests
// ===================================================================================================

func TestToAPIError_SingleError(t *testing.T) {
	err := ValidateStruct(&models.Notification{User: "nope", Type: "system"})
	if err == nil {
		t.Fatal("Expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Expected code VALIDATION_ERROR, got %s", apiErr.Code)
	}
	if apiErr.Message != "user must be a valid id" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "user must be a valid id")
	}
	if apiErr.Details["field"] != "user" {
		t.Errorf("Details[field] = %v, want user", apiErr.Details["field"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	err := ValidateStruct(&models.Notification{User: "nope", Type: "party"})
	if err == nil {
		t.Fatal("Expected validation error")
	}

	apiErr := err.ToAPIError()
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Error("Expected details to contain 'fields' key")
	}
	if !strings.Contains(apiErr.Message, "type must be one of") {
		t.Errorf("Message = %q, want oneof text", apiErr.Message)
	}
}

// ===================================================================================================
// ID Tests
// ===================================================================================================

func TestIsID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"507f1f77bcf86cd799439011", true},
		{models.NewID(), true},
		{"", false},
		{"507f1f77bcf86cd79943901", false},
		{"507f1f77bcf86cd79943901z", false},
		{"507F1F77BCF86CD799439011", false},
	}
	for _, tt := range tests {
		if got := IsID(tt.in); got != tt.want {
			t.Errorf("IsID(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// ===================================================================================================
// Sanitization Tests
// ===================================================================================================

func TestSanitizeComment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "great stream", "great stream"},
		{"trims", "  hello  ", "hello"},
		{"strips tags", "<b>nice</b> stream", "nice stream"},
		{"drops script", "<script>alert(1)</script>hello", "hello"},
		{"only markup", "<img src=x onerror=alert(1)>", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeComment(tt.in); got != tt.want {
				t.Errorf("SanitizeComment(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeComment_Truncates(t *testing.T) {
	long := strings.Repeat("é", MaxCommentLength)
	got := SanitizeComment(long)
	if len(got) > MaxCommentLength {
		t.Fatalf("len = %d, want <= %d", len(got), MaxCommentLength)
	}
	if !strings.HasPrefix(long, got) {
		t.Error("truncated comment is not a prefix of the input")
	}
	if got[len(got)-1] == 0xC3 {
		t.Error("truncation split a multi-byte rune")
	}
}
