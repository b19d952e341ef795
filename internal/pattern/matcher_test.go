package pattern

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, fs afero.Fs, path string, sizeBytes int, modified time.Time) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, make([]byte, sizeBytes), 0o644))
	require.NoError(t, fs.Chtimes(path, modified, modified))
}

func TestMatcher_Matches(t *testing.T) {
	int64Ptr := func(v int64) *int64 { return &v }
	datePtr := func(s string) *time.Time {
		d, err := time.ParseInLocation("2006-01-02", s, time.Local)
		require.NoError(t, err)
		return &d
	}

	modified := time.Date(2024, 6, 15, 18, 30, 0, 0, time.Local)

	tests := []struct {
		name  string
		file  string
		rule  Rule
		size  int
		match bool
	}{
		{
			name:  "empty extension set accepts anything",
			file:  "/data/notes.xyz",
			rule:  Rule{Name: "any", Destination: "Any"},
			size:  10,
			match: true,
		},
		{
			name:  "extension in set",
			file:  "/data/report.pdf",
			rule:  Rule{Name: "pdf", Destination: "Docs", Extensions: []string{"pdf"}},
			match: true,
		},
		{
			name:  "uppercase rule extension",
			file:  "/data/report.pdf",
			rule:  Rule{Name: "pdf", Destination: "Docs", Extensions: []string{"PDF"}},
			match: true,
		},
		{
			name:  "dotted rule extension",
			file:  "/data/report.pdf",
			rule:  Rule{Name: "pdf", Destination: "Docs", Extensions: []string{".pdf"}},
			match: true,
		},
		{
			name:  "uppercase file extension",
			file:  "/data/REPORT.PDF",
			rule:  Rule{Name: "pdf", Destination: "Docs", Extensions: []string{"pdf"}},
			match: true,
		},
		{
			name:  "extension not in set",
			file:  "/data/photo.jpg",
			rule:  Rule{Name: "pdf", Destination: "Docs", Extensions: []string{"pdf", "docx"}},
			match: false,
		},
		{
			name:  "size below minimum",
			file:  "/data/small.jpg",
			rule:  Rule{Name: "big", Destination: "Big", MinSizeKB: int64Ptr(2)},
			size:  2047,
			match: false,
		},
		{
			name:  "size truncates to whole kilobytes",
			file:  "/data/edge.jpg",
			rule:  Rule{Name: "big", Destination: "Big", MinSizeKB: int64Ptr(2)},
			size:  2048,
			match: true,
		},
		{
			name:  "size above maximum",
			file:  "/data/huge.jpg",
			rule:  Rule{Name: "small", Destination: "Small", MaxSizeKB: int64Ptr(1)},
			size:  2048,
			match: false,
		},
		{
			name:  "size at maximum",
			file:  "/data/max.jpg",
			rule:  Rule{Name: "small", Destination: "Small", MaxSizeKB: int64Ptr(1)},
			size:  2047,
			match: true,
		},
		{
			name:  "modified before from date",
			file:  "/data/old.txt",
			rule:  Rule{Name: "recent", Destination: "Recent", From: datePtr("2024-06-16")},
			match: false,
		},
		{
			name:  "modified on from date",
			file:  "/data/same.txt",
			rule:  Rule{Name: "recent", Destination: "Recent", From: datePtr("2024-06-15")},
			match: true,
		},
		{
			name:  "modified on to date later in the day",
			file:  "/data/evening.txt",
			rule:  Rule{Name: "old", Destination: "Old", To: datePtr("2024-06-15")},
			match: true,
		},
		{
			name:  "modified after to date",
			file:  "/data/new.txt",
			rule:  Rule{Name: "old", Destination: "Old", To: datePtr("2024-06-14")},
			match: false,
		},
		{
			name:  "dotfile has no extension",
			file:  "/data/.bashrc",
			rule:  Rule{Name: "sh", Destination: "Shell", Extensions: []string{"bashrc"}},
			match: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writeFile(t, fs, tt.file, tt.size, modified)

			m := NewMatcher(fs)
			assert.Equal(t, tt.match, m.Matches(tt.rule, tt.file))
		})
	}
}

func TestMatcher_FailsClosed(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/data/folder.pdf", 0o755))
	writeFile(t, fs, "/data/gone.pdf", 10, time.Now())

	m := NewMatcher(fs)
	rule := Rule{Name: "all", Destination: "All"}

	assert.False(t, m.Matches(rule, "/data/folder.pdf"), "directories never match")
	assert.False(t, m.Matches(rule, "/data/missing.pdf"), "missing files never match")

	require.NoError(t, fs.Remove("/data/gone.pdf"))
	assert.False(t, m.Matches(rule, "/data/gone.pdf"), "deleted files never match")
}

func TestMatcher_FirstMatchWins(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/data/a.txt", 1, time.Now())
	writeFile(t, fs, "/data/b.md", 1, time.Now())

	rules := []Rule{
		{Name: "R1", Destination: "First", Extensions: []string{"txt"}},
		{Name: "R2", Destination: "Second", Extensions: []string{"txt"}},
	}

	m := NewMatcher(fs)
	got, ok := m.First(rules, "/data/a.txt")
	require.True(t, ok)
	assert.Equal(t, "R1", got.Name)

	_, ok = m.First(rules, "/data/b.md")
	assert.False(t, ok)

	_, ok = m.First(nil, "/data/a.txt")
	assert.False(t, ok)
}
