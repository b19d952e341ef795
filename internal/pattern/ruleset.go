package pattern

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Veraticus/folderly/internal/common"
)

// RuleSet is the session's ordered, editable rule list. Runs must work on a
// Snapshot so edits made while a run is in flight cannot reach it.
type RuleSet struct {
	rules []Rule
	mu    sync.RWMutex
}

// NewRuleSet creates a rule set holding copies of rules.
func NewRuleSet(rules []Rule) *RuleSet {
	s := &RuleSet{}
	s.Replace(rules)
	return s
}

// Len returns the number of rules.
func (s *RuleSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

// Snapshot returns a deep copy of the rules in order.
func (s *RuleSet) Snapshot() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRules(s.rules)
}

// Names returns rule names in order.
func (s *RuleSet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.rules))
	for i, r := range s.rules {
		names[i] = r.Name
	}
	return names
}

// Add validates and appends a rule.
func (s *RuleSet) Add(rule Rule) error {
	rule = rule.Normalized()
	if err := ValidateRule(rule); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(rule.Name) >= 0 {
		return fmt.Errorf("%w: rule %q already exists", common.ErrInvalidRule, rule.Name)
	}
	s.rules = append(s.rules, rule)
	return nil
}

// Update replaces the rule at index.
func (s *RuleSet) Update(index int, rule Rule) error {
	rule = rule.Normalized()
	if err := ValidateRule(rule); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.rules) {
		return fmt.Errorf("rule index %d: %w", index, common.ErrNotFound)
	}
	if other := s.indexOf(rule.Name); other >= 0 && other != index {
		return fmt.Errorf("%w: rule %q already exists", common.ErrInvalidRule, rule.Name)
	}
	s.rules[index] = rule
	return nil
}

// Remove deletes the rule with the given name (case-insensitive).
func (s *RuleSet) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(name)
	if i < 0 {
		return fmt.Errorf("rule %q: %w", name, common.ErrNotFound)
	}
	s.rules = append(s.rules[:i], s.rules[i+1:]...)
	return nil
}

// Replace swaps the whole list for copies of rules.
func (s *RuleSet) Replace(rules []Rule) {
	normalized := make([]Rule, len(rules))
	for i, r := range rules {
		normalized[i] = r.Normalized()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = normalized
}

func (s *RuleSet) indexOf(name string) int {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, r := range s.rules {
		if strings.ToLower(r.Name) == key {
			return i
		}
	}
	return -1
}

func cloneRules(rules []Rule) []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = r.Clone()
	}
	return out
}
