// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/folderly/internal/model"
)

// DefaultHistoryLimit is the number of entries returned when no limit is given.
const DefaultHistoryLimit = 200

// RuleStore persists a user's ordered classification rules.
type RuleStore interface {
	Load(ctx context.Context) ([]model.ClassificationRule, error)
	// Save replaces every stored rule with the given list.
	Save(ctx context.Context, rules []model.ClassificationRule) error
}

// HistoryRecorder appends entries to the action log.
type HistoryRecorder interface {
	Record(ctx context.Context, entry model.HistoryEntry) error
}

// HistoryReader reads the action log.
type HistoryReader interface {
	// List returns up to limit entries, newest first.
	List(ctx context.Context, limit int) ([]model.HistoryEntry, error)
	Get(ctx context.Context, id int64) (*model.HistoryEntry, error)
}

// History is the full action log contract.
type History interface {
	HistoryRecorder
	HistoryReader
}
