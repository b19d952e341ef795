package pattern

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Veraticus/folderly/internal/common"
)

// ValidateRule checks the invariants the matcher itself does not enforce.
func ValidateRule(rule Rule) error {
	if strings.TrimSpace(rule.Name) == "" {
		return fmt.Errorf("%w: name is required", common.ErrInvalidRule)
	}

	dest := strings.TrimSpace(rule.Destination)
	if dest == "" {
		return fmt.Errorf("%w: destination folder is required", common.ErrInvalidRule)
	}
	if dest == "." || dest == ".." || strings.ContainsAny(dest, `/\`) || filepath.Base(dest) != dest {
		return fmt.Errorf("%w: destination %q must be a single folder name", common.ErrInvalidRule, dest)
	}

	if rule.MinSizeKB != nil && *rule.MinSizeKB < 0 {
		return fmt.Errorf("%w: minimum size cannot be negative", common.ErrInvalidRule)
	}
	if rule.MaxSizeKB != nil && *rule.MaxSizeKB < 0 {
		return fmt.Errorf("%w: maximum size cannot be negative", common.ErrInvalidRule)
	}
	if rule.MinSizeKB != nil && rule.MaxSizeKB != nil && *rule.MinSizeKB > *rule.MaxSizeKB {
		return fmt.Errorf("%w: minimum size must be less than or equal to maximum size", common.ErrInvalidRule)
	}

	if rule.From != nil && rule.To != nil && rule.From.After(*rule.To) {
		return fmt.Errorf("%w: from date must not be after to date", common.ErrInvalidRule)
	}

	return nil
}

// ValidateRules validates every rule and rejects duplicate names.
func ValidateRules(rules []Rule) error {
	seen := make(map[string]struct{}, len(rules))
	for i, rule := range rules {
		if err := ValidateRule(rule); err != nil {
			return fmt.Errorf("rule at index %d: %w", i, err)
		}
		key := strings.ToLower(strings.TrimSpace(rule.Name))
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate rule name %q", common.ErrInvalidRule, rule.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}
