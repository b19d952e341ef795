package pattern

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/folderly/internal/fsutil"
	"github.com/Veraticus/folderly/internal/model"
	"github.com/spf13/afero"
)

// Matcher evaluates files against classification rules.
// Matching never fails: anything that cannot be inspected does not match.
type Matcher struct {
	fs afero.Fs
}

// NewMatcher creates a matcher reading file metadata from fs.
func NewMatcher(fs afero.Fs) *Matcher {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Matcher{fs: fs}
}

// Matches reports whether the file at path satisfies rule.
func (m *Matcher) Matches(rule Rule, path string) bool {
	info, ok := m.stat(path)
	if !ok {
		return false
	}
	return MatchesInfo(rule, filepath.Base(path), info)
}

// First returns the first rule, in list order, that the file at path satisfies.
func (m *Matcher) First(rules []Rule, path string) (*Rule, bool) {
	if len(rules) == 0 {
		return nil, false
	}
	info, ok := m.stat(path)
	if !ok {
		return nil, false
	}
	return FirstInfo(rules, filepath.Base(path), info)
}

// FirstInfo is First for an already inspected file.
func FirstInfo(rules []Rule, name string, info os.FileInfo) (*Rule, bool) {
	for i := range rules {
		if MatchesInfo(rules[i], name, info) {
			return &rules[i], true
		}
	}
	return nil, false
}

// MatchesInfo reports whether a file with the given name and metadata satisfies rule.
func MatchesInfo(rule Rule, name string, info os.FileInfo) bool {
	if info == nil || !info.Mode().IsRegular() {
		return false
	}

	if !rule.AcceptsExtension(fsutil.Extension(name)) {
		return false
	}

	sizeKB := info.Size() / 1024
	if rule.MinSizeKB != nil && sizeKB < *rule.MinSizeKB {
		return false
	}
	if rule.MaxSizeKB != nil && sizeKB > *rule.MaxSizeKB {
		return false
	}

	if rule.From != nil || rule.To != nil {
		modified := model.DateOf(info.ModTime())
		if rule.From != nil && modified.Before(model.DateOf(*rule.From)) {
			return false
		}
		if rule.To != nil && modified.After(model.DateOf(*rule.To)) {
			return false
		}
	}

	return true
}

func (m *Matcher) stat(path string) (info os.FileInfo, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("Recovered while inspecting file", "path", path, "panic", r)
			info, ok = nil, false
		}
	}()

	info, err := m.fs.Stat(path)
	if err != nil {
		slog.Debug("Cannot inspect file for rule matching", "path", path, "error", err)
		return nil, false
	}
	return info, true
}
