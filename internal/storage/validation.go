// Package storage persists rules and history in SQLite, scoped per user.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/folderly/internal/model"
	"github.com/Veraticus/folderly/internal/pattern"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidEntry  = errors.New("invalid history entry")
	ErrNegativeLimit = errors.New("limit cannot be negative")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateRules(rules []model.ClassificationRule) error {
	return pattern.ValidateRules(rules)
}

func validateEntry(entry *model.HistoryEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry", ErrNilParameter)
	}
	switch entry.Type {
	case model.ActionClassification, model.ActionEmptyFolder:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEntry, entry.Type)
	}
	if entry.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidEntry)
	}
	return nil
}
