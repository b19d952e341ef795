package pattern

import (
	"testing"
	"time"

	"github.com/Veraticus/folderly/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestValidateRule(t *testing.T) {
	int64Ptr := func(v int64) *int64 { return &v }
	day := func(d int) *time.Time {
		v := time.Date(2024, 1, d, 0, 0, 0, 0, time.Local)
		return &v
	}

	tests := []struct {
		name    string
		rule    Rule
		wantErr bool
	}{
		{name: "valid", rule: Rule{Name: "Docs", Destination: "Docs", Extensions: []string{"pdf"}}},
		{name: "missing name", rule: Rule{Destination: "Docs"}, wantErr: true},
		{name: "missing destination", rule: Rule{Name: "Docs"}, wantErr: true},
		{name: "nested destination", rule: Rule{Name: "Docs", Destination: "a/b"}, wantErr: true},
		{name: "parent destination", rule: Rule{Name: "Docs", Destination: ".."}, wantErr: true},
		{name: "negative size", rule: Rule{Name: "Docs", Destination: "Docs", MinSizeKB: int64Ptr(-1)}, wantErr: true},
		{name: "min above max", rule: Rule{Name: "Docs", Destination: "Docs", MinSizeKB: int64Ptr(10), MaxSizeKB: int64Ptr(5)}, wantErr: true},
		{name: "min equals max", rule: Rule{Name: "Docs", Destination: "Docs", MinSizeKB: int64Ptr(5), MaxSizeKB: int64Ptr(5)}},
		{name: "from after to", rule: Rule{Name: "Docs", Destination: "Docs", From: day(10), To: day(2)}, wantErr: true},
		{name: "from before to", rule: Rule{Name: "Docs", Destination: "Docs", From: day(2), To: day(10)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRule(tt.rule)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidRule)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateRules_DuplicateNames(t *testing.T) {
	err := ValidateRules([]Rule{
		{Name: "Docs", Destination: "A"},
		{Name: "docs", Destination: "B"},
	})
	assert.ErrorIs(t, err, common.ErrInvalidRule)

	assert.NoError(t, ValidateRules([]Rule{
		{Name: "Docs", Destination: "A"},
		{Name: "Images", Destination: "B"},
	}))
}
