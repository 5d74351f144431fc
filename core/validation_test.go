package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const validDigest = "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"

func TestValidateFingerprint(t *testing.T) {
	tests := []struct {
		name    string
		value   Fingerprint
		wantErr bool
	}{
		{name: "sha256 digest", value: validDigest},
		{name: "too short", value: "abcd", wantErr: true},
		{name: "upper case", value: Fingerprint(strings.ToUpper(validDigest)), wantErr: true},
		{name: "odd length", value: Fingerprint(validDigest[:33]), wantErr: true},
		{name: "non hex", value: Fingerprint(strings.Repeat("z", 64)), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFingerprint(tt.value)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFingerprint) {
					t.Errorf("expected ErrInvalidFingerprint, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateLedgerEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   *LedgerEntry
		wantErr error
	}{
		{
			name:  "valid entry",
			entry: &LedgerEntry{Fingerprint: validDigest, Name: "a.pdf"},
		},
		{
			name: "valid entry with metadata",
			entry: &LedgerEntry{
				Fingerprint:  validDigest,
				Name:         "a.pdf",
				FileID:       "file-1",
				CollectionID: "kb-1",
				RecordedAt:   time.Now().Add(-time.Minute),
			},
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantErr: ErrInvalidLedgerEntry,
		},
		{
			name:    "empty name",
			entry:   &LedgerEntry{Fingerprint: validDigest},
			wantErr: ErrEmptyName,
		},
		{
			name:    "bad fingerprint",
			entry:   &LedgerEntry{Fingerprint: "nope", Name: "a.pdf"},
			wantErr: ErrInvalidFingerprint,
		},
		{
			name: "future timestamp",
			entry: &LedgerEntry{
				Fingerprint: validDigest,
				Name:        "a.pdf",
				RecordedAt:  time.Now().Add(time.Hour),
			},
			wantErr: ErrInvalidLedgerEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLedgerEntry(tt.entry)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
