// Package model defines the core data structures for the folderly application.
package model

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used for rule date bounds.
const DateLayout = "2006-01-02"

// ClassificationRule routes files that satisfy its extension, size and
// modification date constraints into a destination subfolder.
type ClassificationRule struct {
	MinSizeKB   *int64     `json:"min_size_kb,omitempty" yaml:"min_size_kb,omitempty"`
	MaxSizeKB   *int64     `json:"max_size_kb,omitempty" yaml:"max_size_kb,omitempty"`
	From        *time.Time `json:"from,omitempty" yaml:"-"`
	To          *time.Time `json:"to,omitempty" yaml:"-"`
	Name        string     `json:"name" yaml:"name"`
	Destination string     `json:"destination" yaml:"destination"`
	Extensions  []string   `json:"extensions" yaml:"extensions,omitempty"`
	ID          int64      `json:"id,omitempty" yaml:"-"`
}

// NormalizeExtension lowercases an extension and strips surrounding space and
// leading dots, so "PDF", ".pdf" and "pdf" all become "pdf".
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimLeft(strings.TrimSpace(ext), "."))
}

// NormalizeExtensions normalizes a list of extensions, dropping blanks and duplicates
// while keeping the original order.
func NormalizeExtensions(exts []string) []string {
	if len(exts) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(exts))
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		n := NormalizeExtension(ext)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Normalized returns a copy of the rule with normalized extensions and
// date bounds truncated to calendar dates.
func (r ClassificationRule) Normalized() ClassificationRule {
	out := r.Clone()
	out.Name = strings.TrimSpace(out.Name)
	out.Destination = strings.TrimSpace(out.Destination)
	out.Extensions = NormalizeExtensions(out.Extensions)
	if out.From != nil {
		d := DateOf(*out.From)
		out.From = &d
	}
	if out.To != nil {
		d := DateOf(*out.To)
		out.To = &d
	}
	return out
}

// Clone returns a deep copy of the rule.
func (r ClassificationRule) Clone() ClassificationRule {
	out := r
	if r.Extensions != nil {
		out.Extensions = append([]string(nil), r.Extensions...)
	}
	if r.MinSizeKB != nil {
		v := *r.MinSizeKB
		out.MinSizeKB = &v
	}
	if r.MaxSizeKB != nil {
		v := *r.MaxSizeKB
		out.MaxSizeKB = &v
	}
	if r.From != nil {
		v := *r.From
		out.From = &v
	}
	if r.To != nil {
		v := *r.To
		out.To = &v
	}
	return out
}

// AcceptsExtension reports whether ext satisfies the rule's extension set.
// An empty set accepts any extension.
func (r ClassificationRule) AcceptsExtension(ext string) bool {
	if len(r.Extensions) == 0 {
		return true
	}
	ext = NormalizeExtension(ext)
	for _, e := range r.Extensions {
		if NormalizeExtension(e) == ext {
			return true
		}
	}
	return false
}

// DateOf returns midnight of t's calendar date in the local time zone.
func DateOf(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// ParseDate parses a YYYY-MM-DD calendar date in the local time zone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
}

// FormatDate renders an optional date bound, or "" when unset.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
