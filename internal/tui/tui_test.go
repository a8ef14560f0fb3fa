package tui

import (
	"errors"
	"math"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dressi-app/dressi/internal/outfit"
	"github.com/dressi-app/dressi/internal/queue"
	"github.com/dressi-app/dressi/internal/swipe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardSize(t *testing.T) {
	tests := []struct {
		name           string
		viewH, viewW   float64
		header, footer float64
		width, height  float64
	}{
		{"roomy desktop", 1000, 1400, 80, 60, 302.4, 420},
		{"narrow phone", 800, 240, 60, 60, 200, 420},
		{"mid height clamps to available", 400, 1000, 60, 60, 200, 248},
		{"just above the floor", 300, 1000, 50, 50, 200, 168},
		{"below the floor", 250, 1000, 50, 50, 200, 118},
		{"tiny available", 150, 1000, 50, 50, 200, 18},
		{"no room at all", 100, 1000, 50, 50, 200, 200},
		{"infinite viewport", math.Inf(1), 1000, 0, 0, 259.2, 360},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := CardSize(tt.viewH, tt.viewW, tt.header, tt.footer)
			assert.InDelta(t, tt.width, w, 1e-9)
			assert.InDelta(t, tt.height, h, 1e-9)
		})
	}
}

func TestCardSizeNaN(t *testing.T) {
	w, h := CardSize(math.NaN(), 1000, 0, 0)
	assert.Equal(t, 360.0, h)
	assert.InDelta(t, 259.2, w, 1e-9)
}

type fakeDeck struct {
	snap    swipe.Snapshot
	err     error
	calls   []string
	updates chan struct{}
	results chan []outfit.Outfit
}

func newFakeDeck() *fakeDeck {
	return &fakeDeck{
		snap:    swipe.Snapshot{Total: 20},
		updates: make(chan struct{}, 1),
		results: make(chan []outfit.Outfit, 1),
	}
}

func (d *fakeDeck) Snapshot() swipe.Snapshot { return d.snap }
func (d *fakeDeck) Like() error               { d.calls = append(d.calls, "like"); return d.err }
func (d *fakeDeck) Pass() error               { d.calls = append(d.calls, "pass"); return d.err }
func (d *fakeDeck) Next() error               { d.calls = append(d.calls, "next"); return d.err }
func (d *fakeDeck) Back() error               { d.calls = append(d.calls, "back"); return d.err }
func (d *fakeDeck) Updates() <-chan struct{}  { return d.updates }
func (d *fakeDeck) Results() <-chan []outfit.Outfit {
	return d.results
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeysDriveTheDeck(t *testing.T) {
	deck := newFakeDeck()
	var m tea.Model = New(deck)

	for _, k := range []string{"l", "right", "x", "left", "n", "b", "z"} {
		m, _ = m.Update(key(k))
	}
	assert.Equal(t, []string{"like", "like", "pass", "pass", "next", "back"}, deck.calls)
}

func TestDeckErrorsBecomeStatus(t *testing.T) {
	tests := []struct {
		err    error
		status string
	}{
		{queue.ErrPlaceholder, "Still styling this look, hang tight."},
		{queue.ErrAtStart, "This is the first look."},
		{queue.ErrExhausted, "You've seen every look."},
	}
	for _, tt := range tests {
		deck := newFakeDeck()
		deck.err = tt.err
		m, _ := New(deck).Update(key("l"))
		assert.Equal(t, tt.status, m.(Model).status)
		assert.NoError(t, m.(Model).err)
	}

	deck := newFakeDeck()
	deck.err = errors.New("disk full")
	m, _ := New(deck).Update(key("x"))
	assert.EqualError(t, m.(Model).err, "disk full")
	assert.Contains(t, m.View(), "disk full")
}

func TestResultsQuit(t *testing.T) {
	deck := newFakeDeck()
	liked := []outfit.Outfit{{Name: "A", Image: "a.png"}}
	deck.results <- liked

	m := New(deck)
	msg := m.waitForResults()()
	next, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	got, done := next.(Model).Results()
	assert.True(t, done)
	assert.Equal(t, liked, got)
}

func TestQuitBeforeResults(t *testing.T) {
	m, cmd := New(newFakeDeck()).Update(key("q"))
	require.NotNil(t, cmd)
	_, done := m.(Model).Results()
	assert.False(t, done)
	assert.Empty(t, m.View())
}

func TestUpdateSignalRearms(t *testing.T) {
	deck := newFakeDeck()
	deck.updates <- struct{}{}

	m := New(deck)
	next, cmd := m.Update(m.waitForUpdate()())
	assert.NotNil(t, cmd)
	assert.Equal(t, "New looks just arrived.", next.(Model).status)
}

func TestViewRendersCurrentCard(t *testing.T) {
	deck := newFakeDeck()
	deck.snap = swipe.Snapshot{
		Total:   20,
		Cursor:  2,
		Pending: 4,
		Liked:   []outfit.Outfit{{Name: "A"}},
		Current: &swipe.Card{ID: "c", Outfit: &outfit.Outfit{Image: "https://cdn.example.com/looks/denim.png", Tags: []string{"casual", "denim"}}},
	}
	m, _ := New(deck).Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	view := m.View()
	assert.Contains(t, view, "3/20 · 1 liked · 4 loading")
	assert.Contains(t, view, "denim.png")
	assert.Contains(t, view, "casual, denim")

	deck.snap.Current = &swipe.Card{ID: "p", Placeholder: true}
	assert.Contains(t, m.View(), "Styling more looks...")

	deck.snap.Current = nil
	assert.Contains(t, m.View(), "That's every look for now.")
}
