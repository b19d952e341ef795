package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Veraticus/folderly/internal/common"
	"github.com/Veraticus/folderly/internal/model"
	"github.com/Veraticus/folderly/internal/service"
)

// HistoryRepository is one user's append-only action log.
type HistoryRepository struct {
	store *SQLiteStorage
	user  string
}

// NewHistoryRepository binds the history table to a user.
func NewHistoryRepository(store *SQLiteStorage, user string) *HistoryRepository {
	return &HistoryRepository{store: store, user: user}
}

// Record appends an entry.
func (h *HistoryRepository) Record(ctx context.Context, entry model.HistoryEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(h.user, "user"); err != nil {
		return err
	}
	if err := validateEntry(&entry); err != nil {
		return err
	}

	detail, err := json.Marshal(entry.Detail)
	if err != nil {
		return fmt.Errorf("failed to marshal history detail: %w", err)
	}

	_, err = h.store.db.ExecContext(ctx, `
		INSERT INTO history (user_name, created_at, type, detail, source_path, dest_path, quarantine_path)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, h.user, entry.Timestamp, string(entry.Type), string(detail),
		nullString(entry.SourcePath), nullString(entry.DestPath), nullString(entry.QuarantinePath))
	if err != nil {
		return fmt.Errorf("failed to record history entry: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first. Zero means service.DefaultHistoryLimit.
func (h *HistoryRepository) List(ctx context.Context, limit int) ([]model.HistoryEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, ErrNegativeLimit
	}
	if limit == 0 {
		limit = service.DefaultHistoryLimit
	}

	rows, err := h.store.db.QueryContext(ctx, `
		SELECT id, created_at, type, detail, source_path, dest_path, quarantine_path
		FROM history
		WHERE user_name = ?
		ORDER BY id DESC
		LIMIT ?
	`, h.user, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.HistoryEntry
	for rows.Next() {
		entry, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}
	return entries, nil
}

// Get returns a single entry of this user.
func (h *HistoryRepository) Get(ctx context.Context, id int64) (*model.HistoryEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := h.store.db.QueryRowContext(ctx, `
		SELECT id, created_at, type, detail, source_path, dest_path, quarantine_path
		FROM history
		WHERE user_name = ? AND id = ?
	`, h.user, id)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("history entry %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*model.HistoryEntry, error) {
	var (
		entry      model.HistoryEntry
		entryType  string
		detail     string
		source     sql.NullString
		dest       sql.NullString
		quarantine sql.NullString
	)

	if err := row.Scan(&entry.ID, &entry.Timestamp, &entryType, &detail, &source, &dest, &quarantine); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan history entry: %w", err)
	}

	entry.Type = model.ActionType(entryType)
	entry.SourcePath = source.String
	entry.DestPath = dest.String
	entry.QuarantinePath = quarantine.String

	if detail != "" {
		if err := json.Unmarshal([]byte(detail), &entry.Detail); err != nil {
			return nil, fmt.Errorf("failed to unmarshal detail of history entry %d: %w", entry.ID, err)
		}
	}
	return &entry, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ service.History = (*HistoryRepository)(nil)
