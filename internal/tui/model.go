// Package tui renders a swipe session in the terminal.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dressi-app/dressi/internal/outfit"
	"github.com/dressi-app/dressi/internal/queue"
	"github.com/dressi-app/dressi/internal/swipe"
)

// Deck is the session surface the screen drives. *swipe.Session implements
// it.
type Deck interface {
	Snapshot() swipe.Snapshot
	Like() error
	Pass() error
	Next() error
	Back() error
	Updates() <-chan struct{}
	Results() <-chan []outfit.Outfit
}

const (
	headerRows = 3
	footerRows = 3
)

type updatedMsg struct{}

type resultsMsg []outfit.Outfit

// Model is the bubbletea model for the swipe screen.
type Model struct {
	deck    Deck
	spinner spinner.Model
	styles  Styles

	width  int
	height int

	status  string
	err     error
	results []outfit.Outfit
	done    bool
	quit    bool
}

func New(deck Deck) Model {
	styles := DefaultStyles()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return Model{
		deck:    deck,
		spinner: sp,
		styles:  styles,
		width:   80,
		height:  24,
	}
}

// Results returns the liked outfits once the deck ran out, and whether it
// did. It is false when the user quit early.
func (m Model) Results() ([]outfit.Outfit, bool) {
	return m.results, m.done
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.waitForUpdate(),
		m.waitForResults(),
	)
}

func (m Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-m.deck.Updates(); !ok {
			return nil
		}
		return updatedMsg{}
	}
}

func (m Model) waitForResults() tea.Cmd {
	return func() tea.Msg {
		liked, ok := <-m.deck.Results()
		if !ok {
			return nil
		}
		return resultsMsg(liked)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case updatedMsg:
		m.status = "New looks just arrived."
		return m, m.waitForUpdate()

	case resultsMsg:
		m.results = []outfit.Outfit(msg)
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var err error
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.quit = true
		return m, tea.Quit
	case "l", "right", "enter":
		err = m.deck.Like()
		m.status = "Liked."
	case "x", "left":
		err = m.deck.Pass()
		m.status = "Passed."
	case "n", "down", " ":
		err = m.deck.Next()
		m.status = ""
	case "b", "up", "backspace":
		err = m.deck.Back()
		m.status = ""
	default:
		return m, nil
	}

	m.err = nil
	switch {
	case errors.Is(err, queue.ErrPlaceholder):
		m.status = "Still styling this look, hang tight."
	case errors.Is(err, queue.ErrAtStart):
		m.status = "This is the first look."
	case errors.Is(err, queue.ErrExhausted):
		m.status = "You've seen every look."
	case err != nil:
		m.status = ""
		m.err = err
	}
	return m, nil
}

func (m Model) View() string {
	if m.quit {
		return ""
	}
	snap := m.deck.Snapshot()

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Dressi"))
	b.WriteString("  ")
	b.WriteString(m.styles.Progress.Render(progress(snap)))
	b.WriteString("\n\n")

	b.WriteString(m.renderCard(snap))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(m.styles.Error.Render(m.err.Error()))
	case m.status != "":
		b.WriteString(m.styles.Status.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("l like · x pass · n skip · b back · q quit"))
	return b.String()
}

func progress(snap swipe.Snapshot) string {
	pos := min(snap.Cursor+1, snap.Total)
	s := fmt.Sprintf("%d/%d · %d liked", pos, snap.Total, len(snap.Liked))
	if snap.Pending > 0 {
		s += fmt.Sprintf(" · %d loading", snap.Pending)
	}
	if snap.Weather != nil && snap.Weather.Applied {
		s += " · " + snap.Weather.Tag + " weather"
	}
	return s
}

func (m Model) renderCard(snap swipe.Snapshot) string {
	cols, rows := cardCells(m.width, m.height, headerRows, footerRows)
	// Border and padding take two rows and four columns.
	inner := lipgloss.NewStyle().Width(max(cols-4, 1)).Height(max(rows-2, 1))

	if snap.Current == nil {
		return m.styles.Placeholder.Render(inner.Render("That's every look for now."))
	}
	if snap.Current.Placeholder || snap.Current.Outfit == nil {
		return m.styles.Placeholder.Render(inner.Render(m.spinner.View() + " Styling more looks..."))
	}

	o := snap.Current.Outfit
	var body strings.Builder
	name := o.Name
	if name == "" {
		name = outfit.InferFilename(*o, "Untitled look")
	}
	body.WriteString(m.styles.OutfitName.Render(name))
	if len(o.Tags) > 0 {
		body.WriteString("\n")
		body.WriteString(m.styles.Tags.Render(strings.Join(o.Tags, ", ")))
	}
	if o.Image != "" {
		body.WriteString("\n\n")
		body.WriteString(o.Image)
	}
	return m.styles.Card.Render(inner.Render(body.String()))
}
