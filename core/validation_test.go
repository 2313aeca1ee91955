package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		wantErr error
	}{
		{
			name:    "valid company",
			entry:   &CompanyPage{Page: Page{Id: 1, Name: "Acme"}},
			wantErr: nil,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantErr: ErrInvalidEntry,
		},
		{
			name:    "zero id",
			entry:   &ProductPage{Page: Page{Id: 0, Name: "Widget"}},
			wantErr: ErrInvalidID,
		},
		{
			name:    "negative id",
			entry:   &IncidentPage{Page: Page{Id: -3, Name: "Outage"}},
			wantErr: ErrInvalidID,
		},
		{
			name:    "empty name",
			entry:   &ProductLinePage{Page: Page{Id: 4}},
			wantErr: ErrEmptyName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntry(tt.entry)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateEntry() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEntry() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidEntry) {
				t.Errorf("ValidateEntry() error should wrap ErrInvalidEntry, got %v", err)
			}
		})
	}
}

func TestValidateEntries_DuplicateAcrossKinds(t *testing.T) {
	entries := []Entry{
		&CompanyPage{Page: Page{Id: 7, Name: "Acme"}},
		&ProductPage{Page: Page{Id: 8, Name: "Acme Phone"}},
		&IncidentPage{Page: Page{Id: 7, Name: "Acme outage"}},
	}

	err := ValidateEntries(entries)
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("ValidateEntries() error = %v, want %v", err, ErrDuplicateID)
	}

	if err := ValidateEntries(entries[:2]); err != nil {
		t.Errorf("ValidateEntries() unexpected error = %v", err)
	}
}

func TestValidateSuppression(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name    string
		s       *Suppression
		wantErr error
	}{
		{"valid mute", &Suppression{PageID: 3, MutedAt: past}, nil},
		{"valid hide", &Suppression{PageID: 3, MutedAt: past, Revision: 3}, nil},
		{"nil", nil, ErrInvalidSuppression},
		{"zero page", &Suppression{MutedAt: past}, ErrInvalidID},
		{"future timestamp", &Suppression{PageID: 3, MutedAt: future}, nil},
		{"zero timestamp", &Suppression{PageID: 3, Revision: 3}, nil},
		{"before epoch", &Suppression{PageID: 3, MutedAt: time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC)}, ErrInvalidTimestamp},
		{"mismatched revision", &Suppression{PageID: 3, MutedAt: past, Revision: 4}, ErrInvalidSuppression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSuppression(tt.s)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateSuppression() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSuppression() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
