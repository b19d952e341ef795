package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryEntry_Restorable(t *testing.T) {
	tests := []struct {
		name  string
		entry HistoryEntry
		want  bool
	}{
		{
			name: "quarantined delete",
			entry: HistoryEntry{
				Type:           ActionEmptyFolder,
				QuarantinePath: "/q/slot/old",
				Detail:         HistoryDetail{Action: FolderActionDelete},
			},
			want: true,
		},
		{
			name: "permanent delete",
			entry: HistoryEntry{
				Type:   ActionEmptyFolder,
				Detail: HistoryDetail{Action: FolderActionDelete},
			},
		},
		{
			name: "restore",
			entry: HistoryEntry{
				Type:           ActionEmptyFolder,
				QuarantinePath: "/q/slot/old",
				Detail:         HistoryDetail{Action: FolderActionRestore},
			},
		},
		{
			name:  "classification",
			entry: HistoryEntry{Type: ActionClassification, QuarantinePath: "/q/slot/old"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.Restorable())
		})
	}
}

func TestSelectedCandidates(t *testing.T) {
	candidates := []EmptyDirectoryCandidate{
		{Path: "/a", Selected: true},
		{Path: "/b"},
		{Path: "/c", Selected: true},
	}

	got := SelectedCandidates(candidates)
	assert.Len(t, got, 2)
	assert.Equal(t, "/a", got[0].Path)
	assert.Equal(t, "/c", got[1].Path)
	assert.Empty(t, SelectedCandidates(nil))
}

func TestClassificationResult_MovedByRule(t *testing.T) {
	r := &ClassificationResult{Moves: []MovedFile{
		{Rule: "Big images"},
		{Rule: BasicRuleName},
		{Rule: "Big images"},
	}}
	assert.Equal(t, map[string]int{"Big images": 2, BasicRuleName: 1}, r.MovedByRule())
}
