package pattern

import (
	"sync"
	"testing"

	"github.com/Veraticus/folderly/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleSet_AddUpdateRemove(t *testing.T) {
	set := NewRuleSet(nil)

	require.NoError(t, set.Add(Rule{Name: "Docs", Destination: "Docs", Extensions: []string{".PDF", "pdf", "Docx"}}))
	require.NoError(t, set.Add(Rule{Name: "Images", Destination: "Images"}))
	assert.Equal(t, 2, set.Len())

	err := set.Add(Rule{Name: "docs", Destination: "Other"})
	assert.ErrorIs(t, err, common.ErrInvalidRule)

	rules := set.Snapshot()
	assert.Equal(t, []string{"pdf", "docx"}, rules[0].Extensions)

	require.NoError(t, set.Update(1, Rule{Name: "Pictures", Destination: "Pictures"}))
	assert.Equal(t, []string{"Docs", "Pictures"}, set.Names())

	assert.ErrorIs(t, set.Update(5, Rule{Name: "X", Destination: "X"}), common.ErrNotFound)
	assert.ErrorIs(t, set.Update(1, Rule{Name: "Docs", Destination: "X"}), common.ErrInvalidRule)

	require.NoError(t, set.Remove("DOCS"))
	assert.Equal(t, []string{"Pictures"}, set.Names())
	assert.ErrorIs(t, set.Remove("Docs"), common.ErrNotFound)
}

func TestRuleSet_SnapshotIsIsolated(t *testing.T) {
	set := NewRuleSet([]Rule{{Name: "Docs", Destination: "Docs", Extensions: []string{"pdf"}}})

	snap := set.Snapshot()
	snap[0].Extensions[0] = "exe"
	snap[0].Name = "changed"

	again := set.Snapshot()
	assert.Equal(t, "Docs", again[0].Name)
	assert.Equal(t, []string{"pdf"}, again[0].Extensions)
}

func TestRuleSet_ConcurrentAccess(t *testing.T) {
	set := NewRuleSet(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = set.Add(Rule{Name: string(rune('a' + i)), Destination: "D"})
		}(i)
		go func() {
			defer wg.Done()
			_ = set.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, set.Len())
}
