package swipe

import (
	"time"

	"github.com/dressi-app/dressi/internal/backend"
	"github.com/dressi-app/dressi/internal/outfit"
	"github.com/dressi-app/dressi/internal/queue"
	"github.com/dressi-app/dressi/internal/quiz"
)

// Card is the slot under the cursor as clients render it.
type Card struct {
	ID          string         `json:"id"`
	Placeholder bool           `json:"placeholder"`
	Outfit      *outfit.Outfit `json:"outfit,omitempty"`
}

// Snapshot is a point-in-time view of a session.
type Snapshot struct {
	ID        string           `json:"id"`
	State     string           `json:"state"`
	Cursor    int              `json:"cursor"`
	Total     int              `json:"total"`
	Pending   int              `json:"pending"`
	Current   *Card            `json:"current,omitempty"`
	Liked     []outfit.Outfit  `json:"liked"`
	Passed    []outfit.Outfit  `json:"passed"`
	Answers   quiz.Answers     `json:"answers"`
	Weather   *backend.Weather `json:"weather,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:        s.ID,
		State:     s.q.State().String(),
		Cursor:    s.q.Cursor(),
		Total:     s.q.Len(),
		Pending:   s.q.Pending(),
		Liked:     s.q.Liked(),
		Passed:    s.q.Passed(),
		Answers:   s.answers,
		Weather:   s.weather,
		CreatedAt: s.CreatedAt,
	}
	if slot, err := s.q.CurrentSlot(); err == nil {
		card := &Card{ID: slot.ID, Placeholder: slot.Placeholder}
		if !slot.Placeholder {
			o := slot.Outfit
			card.Outfit = &o
		}
		snap.Current = card
	}
	return snap
}

// IsExhausted reports whether every slot has been passed.
func (s *Session) IsExhausted() bool {
	return s.q.State() == queue.Exhausted
}
