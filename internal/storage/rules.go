package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Veraticus/folderly/internal/model"
	"github.com/Veraticus/folderly/internal/service"
)

// RuleRepository stores one user's ordered rule list.
type RuleRepository struct {
	store *SQLiteStorage
	user  string
}

// NewRuleRepository binds the rule table to a user.
func NewRuleRepository(store *SQLiteStorage, user string) *RuleRepository {
	return &RuleRepository{store: store, user: user}
}

// Load returns the user's rules in their saved order.
func (r *RuleRepository) Load(ctx context.Context) ([]model.ClassificationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(r.user, "user"); err != nil {
		return nil, err
	}

	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, name, destination, extensions, min_kb, max_kb, from_date, to_date
		FROM rules
		WHERE user_name = ?
		ORDER BY position, id
	`, r.user)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.ClassificationRule
	for rows.Next() {
		rule, scanErr := scanRule(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return rules, nil
}

// Save replaces the user's whole rule list, keeping the given order.
func (r *RuleRepository) Save(ctx context.Context, rules []model.ClassificationRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(r.user, "user"); err != nil {
		return err
	}

	normalized := make([]model.ClassificationRule, len(rules))
	for i, rule := range rules {
		normalized[i] = rule.Normalized()
	}
	if err := validateRules(normalized); err != nil {
		return err
	}

	return r.store.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM rules WHERE user_name = ?`, r.user); err != nil {
			return fmt.Errorf("failed to clear rules: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO rules (user_name, position, name, destination, extensions, min_kb, max_kb, from_date, to_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare rule insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i, rule := range normalized {
			extensions := rule.Extensions
			if extensions == nil {
				extensions = []string{}
			}
			extJSON, err := json.Marshal(extensions)
			if err != nil {
				return fmt.Errorf("failed to marshal extensions: %w", err)
			}

			if _, err := stmt.ExecContext(ctx,
				r.user, i, rule.Name, rule.Destination, string(extJSON),
				nullInt64(rule.MinSizeKB), nullInt64(rule.MaxSizeKB),
				nullDate(rule.From), nullDate(rule.To),
			); err != nil {
				return fmt.Errorf("failed to save rule %q: %w", rule.Name, err)
			}
		}
		return nil
	})
}

func scanRule(rows *sql.Rows) (model.ClassificationRule, error) {
	var (
		rule     model.ClassificationRule
		extJSON  string
		minKB    sql.NullInt64
		maxKB    sql.NullInt64
		fromDate sql.NullString
		toDate   sql.NullString
	)

	if err := rows.Scan(&rule.ID, &rule.Name, &rule.Destination, &extJSON, &minKB, &maxKB, &fromDate, &toDate); err != nil {
		return rule, fmt.Errorf("failed to scan rule: %w", err)
	}

	if err := json.Unmarshal([]byte(extJSON), &rule.Extensions); err != nil {
		return rule, fmt.Errorf("failed to unmarshal extensions of rule %q: %w", rule.Name, err)
	}
	if len(rule.Extensions) == 0 {
		rule.Extensions = nil
	}

	if minKB.Valid {
		v := minKB.Int64
		rule.MinSizeKB = &v
	}
	if maxKB.Valid {
		v := maxKB.Int64
		rule.MaxSizeKB = &v
	}

	var err error
	if rule.From, err = parseNullDate(fromDate); err != nil {
		return rule, fmt.Errorf("rule %q: invalid from date: %w", rule.Name, err)
	}
	if rule.To, err = parseNullDate(toDate); err != nil {
		return rule, fmt.Errorf("rule %q: invalid to date: %w", rule.Name, err)
	}

	return rule, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(model.DateLayout), Valid: true}
}

func parseNullDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	d, err := model.ParseDate(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

var _ service.RuleStore = (*RuleRepository)(nil)
