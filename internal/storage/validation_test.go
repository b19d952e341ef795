package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/folderly/internal/model"
)

func TestValidateContext(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	//nolint:staticcheck // nil context is the case under test
	if err := validateContext(nil); !errors.Is(err, ErrNilContext) {
		t.Errorf("validateContext(nil) = %v, want ErrNilContext", err)
	}
	if err := validateContext(cancelled); err != nil {
		t.Errorf("a cancelled context is still a valid argument, got %v", err)
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "user name", value: "alice"},
		{name: "padded", value: "  alice  "},
		{name: "empty", value: "", wantErr: true},
		{name: "blank", value: " \t ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.value, "user")
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "user") {
				t.Errorf("error should name the parameter, got %v", err)
			}
		})
	}
}

func TestValidateEntry(t *testing.T) {
	now := time.Now()
	tests := []struct {
		entry   *model.HistoryEntry
		wantErr error
		name    string
	}{
		{name: "nil", entry: nil, wantErr: ErrNilParameter},
		{name: "classification", entry: &model.HistoryEntry{Timestamp: now, Type: model.ActionClassification}},
		{name: "empty folder", entry: &model.HistoryEntry{Timestamp: now, Type: model.ActionEmptyFolder}},
		{name: "unknown type", entry: &model.HistoryEntry{Timestamp: now, Type: "rename"}, wantErr: ErrInvalidEntry},
		{name: "zero time", entry: &model.HistoryEntry{Type: model.ActionEmptyFolder}, wantErr: ErrInvalidEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateEntry(tt.entry)
			if tt.wantErr == nil && err != nil {
				t.Errorf("validateEntry() unexpected error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("validateEntry() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
