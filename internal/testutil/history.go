package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Veraticus/folderly/internal/common"
	"github.com/Veraticus/folderly/internal/model"
)

// MemoryHistory is a thread-safe in-memory history log.
type MemoryHistory struct {
	// FailWith makes Record return this error without storing anything.
	FailWith error
	entries  []model.HistoryEntry
	mu       sync.Mutex
}

// ErrHistoryUnavailable is a convenience error for FailWith.
var ErrHistoryUnavailable = errors.New("history unavailable")

// Record stores the entry and assigns it the next ID.
func (h *MemoryHistory) Record(_ context.Context, entry model.HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.FailWith != nil {
		return h.FailWith
	}
	entry.ID = int64(len(h.entries) + 1)
	h.entries = append(h.entries, entry)
	return nil
}

// List returns up to limit entries, newest first.
func (h *MemoryHistory) List(_ context.Context, limit int) ([]model.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]model.HistoryEntry, 0, len(h.entries))
	for i := len(h.entries) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, h.entries[i])
	}
	return out, nil
}

// Get returns the entry with the given ID.
func (h *MemoryHistory) Get(_ context.Context, id int64) (*model.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, e := range h.entries {
		if e.ID == id {
			entry := e
			return &entry, nil
		}
	}
	return nil, fmt.Errorf("history entry %d: %w", id, common.ErrNotFound)
}

// Entries returns every recorded entry in insertion order.
func (h *MemoryHistory) Entries() []model.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]model.HistoryEntry(nil), h.entries...)
}
