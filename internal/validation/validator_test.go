// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

type sinkSection struct {
	Region  string `koanf:"region" validate:"required,awsregion"`
	Retries int    `koanf:"max_retries" validate:"gte=0,lte=10"`
}

type rootSection struct {
	Backend string      `koanf:"backend" validate:"oneof=timestream duckdb none"`
	Sink    sinkSection `koanf:"timestream"`
}

func TestValidateStruct_Valid(t *testing.T) {
	cfg := rootSection{
		Backend: "timestream",
		Sink:    sinkSection{Region: "eu-west-1", Retries: 4},
	}
	if err := ValidateStruct(&cfg); err != nil {
		t.Errorf("ValidateStruct() unexpected error: %v", err)
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     rootSection
		wantField string
		wantTag   string
	}{
		{
			name:      "unknown backend",
			input:     rootSection{Backend: "redis", Sink: sinkSection{Region: "eu-west-1"}},
			wantField: "backend",
			wantTag:   "oneof",
		},
		{
			name:      "missing region",
			input:     rootSection{Backend: "none"},
			wantField: "timestream.region",
			wantTag:   "required",
		},
		{
			name:      "malformed region",
			input:     rootSection{Backend: "none", Sink: sinkSection{Region: "Europe"}},
			wantField: "timestream.region",
			wantTag:   "awsregion",
		},
		{
			name:      "too many retries",
			input:     rootSection{Backend: "none", Sink: sinkSection{Region: "us-east-2", Retries: 11}},
			wantField: "timestream.max_retries",
			wantTag:   "lte",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() expected error, got nil")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %d: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
		})
	}
}

func TestRequestValidationError_JoinsMessages(t *testing.T) {
	err := ValidateStruct(&rootSection{Backend: "bogus"})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(err.Errors()) != 2 {
		t.Fatalf("len(Errors()) = %d, want 2", len(err.Errors()))
	}
	msg := err.Error()
	if !strings.Contains(msg, "backend must be one of") || !strings.Contains(msg, "; ") {
		t.Errorf("Error() = %q, want both field messages joined", msg)
	}
}
