package tui

import (
	"testing"

	"github.com/Veraticus/folderly/internal/model"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidates(paths ...string) []model.EmptyDirectoryCandidate {
	out := make([]model.EmptyDirectoryCandidate, len(paths))
	for i, p := range paths {
		out[i] = model.EmptyDirectoryCandidate{Path: p, Selected: true}
	}
	return out
}

func press(t *testing.T, p Picker, keys ...tea.KeyMsg) (Picker, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = p.Update(k)
		var ok bool
		p, ok = next.(Picker)
		require.True(t, ok)
	}
	return p, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPicker_ToggleAndConfirm(t *testing.T) {
	p := NewPicker("/root", candidates("/root/a", "/root/b", "/root/c"))

	p, _ = press(t, p, runes("j"), runes(" "))
	assert.Len(t, p.Selected(), 2)

	p, cmd := press(t, p, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, p.Confirmed())

	selected := p.Selected()
	require.Len(t, selected, 2)
	assert.Equal(t, "/root/a", selected[0].Path)
	assert.Equal(t, "/root/c", selected[1].Path)
}

func TestPicker_SelectNoneAndAll(t *testing.T) {
	p := NewPicker("/root", candidates("/root/a", "/root/b"))

	p, _ = press(t, p, runes("n"))
	assert.Empty(t, p.Selected())

	p, _ = press(t, p, runes("a"))
	assert.Len(t, p.Selected(), 2)
}

func TestPicker_Cancel(t *testing.T) {
	p := NewPicker("/root", candidates("/root/a"))
	p, cmd := press(t, p, runes("q"))
	require.NotNil(t, cmd)
	assert.False(t, p.Confirmed())
	assert.Empty(t, p.View())
}

func TestPicker_CursorBounds(t *testing.T) {
	p := NewPicker("/root", candidates("/root/a", "/root/b", "/root/c"))

	p, _ = press(t, p, runes("k"))
	assert.Equal(t, 0, p.cursor)

	p, _ = press(t, p, runes("G"))
	assert.Equal(t, 2, p.cursor)

	p, _ = press(t, p, runes("j"))
	assert.Equal(t, 2, p.cursor)

	p, _ = press(t, p, runes("g"))
	assert.Equal(t, 0, p.cursor)
}

func TestPicker_Scrolls(t *testing.T) {
	p := NewPicker("/root", candidates("/root/1", "/root/2", "/root/3", "/root/4", "/root/5"))
	next, _ := p.Update(tea.WindowSizeMsg{Width: 80, Height: 9})
	p = next.(Picker)
	assert.Equal(t, 3, p.height)

	p, _ = press(t, p, runes("j"), runes("j"), runes("j"))
	assert.Equal(t, 3, p.cursor)
	assert.Equal(t, 1, p.offset)

	view := p.View()
	assert.Contains(t, view, "4")
	assert.NotContains(t, view, "/root/1")
}

func TestPicker_ViewShowsRelativePaths(t *testing.T) {
	p := NewPicker("/root", candidates("/root/photos/2019", "/elsewhere/x"))
	view := p.View()

	assert.Contains(t, view, "photos/2019")
	assert.Contains(t, view, "/elsewhere/x")
	assert.Contains(t, view, "2 of 2 selected")
}

func TestPicker_Empty(t *testing.T) {
	p := NewPicker("/root", nil)
	p, _ = press(t, p, runes(" "), runes("j"))
	assert.Contains(t, p.View(), "Nothing to remove.")
	assert.Empty(t, p.Selected())
}

func TestNewPicker_CopiesCandidates(t *testing.T) {
	in := candidates("/root/a")
	p := NewPicker("/root", in)
	p, _ = press(t, p, runes(" "))

	assert.True(t, in[0].Selected, "the caller's slice is not modified")
	assert.Empty(t, p.Selected())
}
