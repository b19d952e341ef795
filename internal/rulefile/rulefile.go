// Package rulefile reads and writes rule lists as YAML documents.
package rulefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/folderly/internal/common"
	"github.com/Veraticus/folderly/internal/model"
	"github.com/Veraticus/folderly/internal/pattern"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// CurrentVersion is written into every exported document.
const CurrentVersion = 1

// Document is the on-disk layout.
type Document struct {
	Rules   []RuleDoc `yaml:"rules"`
	Version int       `yaml:"version"`
}

// RuleDoc is a rule with its dates spelled out as YYYY-MM-DD.
type RuleDoc struct {
	MinSizeKB   *int64   `yaml:"min_size_kb,omitempty"`
	MaxSizeKB   *int64   `yaml:"max_size_kb,omitempty"`
	Name        string   `yaml:"name"`
	Destination string   `yaml:"destination"`
	From        string   `yaml:"from,omitempty"`
	To          string   `yaml:"to,omitempty"`
	Extensions  []string `yaml:"extensions,omitempty,flow"`
}

// Encode writes rules as a YAML document.
func Encode(w io.Writer, rules []model.ClassificationRule) error {
	doc := Document{Version: CurrentVersion, Rules: make([]RuleDoc, len(rules))}
	for i, r := range rules {
		doc.Rules[i] = RuleDoc{
			Name:        r.Name,
			Destination: r.Destination,
			Extensions:  r.Extensions,
			MinSizeKB:   r.MinSizeKB,
			MaxSizeKB:   r.MaxSizeKB,
			From:        model.FormatDate(r.From),
			To:          model.FormatDate(r.To),
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}
	return enc.Close()
}

// Decode parses a YAML document and returns its normalized, validated rules.
func Decode(r io.Reader) ([]model.ClassificationRule, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse rules yaml: %w", err)
	}
	if doc.Version > CurrentVersion {
		return nil, fmt.Errorf("%w: rules file version %d is newer than supported version %d",
			common.ErrInvalidRule, doc.Version, CurrentVersion)
	}

	rules := make([]model.ClassificationRule, 0, len(doc.Rules))
	for i, d := range doc.Rules {
		rule := model.ClassificationRule{
			Name:        d.Name,
			Destination: d.Destination,
			Extensions:  d.Extensions,
			MinSizeKB:   d.MinSizeKB,
			MaxSizeKB:   d.MaxSizeKB,
		}
		var err error
		if rule.From, err = parseDate(d.From); err != nil {
			return nil, fmt.Errorf("%w: rule %d: from: %v", common.ErrInvalidRule, i, err)
		}
		if rule.To, err = parseDate(d.To); err != nil {
			return nil, fmt.Errorf("%w: rule %d: to: %v", common.ErrInvalidRule, i, err)
		}
		rules = append(rules, rule.Normalized())
	}

	if err := pattern.ValidateRules(rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// Load reads the rules file at path.
func Load(fs afero.Fs, path string) ([]model.ClassificationRule, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

// Save writes rules to path, replacing any existing file.
func Save(fs afero.Fs, path string, rules []model.ClassificationRule) error {
	var buf bytes.Buffer
	if err := Encode(&buf, rules); err != nil {
		return err
	}
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write rules file: %w", err)
	}
	return nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
