// Package instant picks a single outfit for a vibe, avoiding names already
// shown in this run.
package instant

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/dressi-app/dressi/internal/backend"
	"github.com/dressi-app/dressi/internal/outfit"
)

// MaxTries bounds the requests made for one pick.
const MaxTries = 5

var (
	// ErrNoOutfit is returned when no request produced an outfit.
	ErrNoOutfit = errors.New("no outfit found for that combo, try another option")
	// ErrCycled is returned when the backend reported it had shown every
	// look for the vibe and still returned nothing usable.
	ErrCycled = errors.New("we just cycled through every available look, give it another moment or try a different vibe")
)

// Vibe is one of the one-tap options.
type Vibe struct {
	Key      string
	Label    string
	Style    string
	Occasion string
}

var Vibes = []Vibe{
	{Key: "sunny", Label: "Sunny Vibes", Style: "Casual", Occasion: "Weekend"},
	{Key: "cloudy", Label: "Cloudy Vibes", Style: "Formal", Occasion: "Work"},
	{Key: "cold", Label: "Cold Vibes", Style: "Sporty", Occasion: "Casual"},
	{Key: "work", Label: "Work", Style: "Formal", Occasion: "Work"},
	{Key: "casual", Label: "Casual", Style: "Casual", Occasion: "Casual"},
	{Key: "date", Label: "Date Night", Style: "Party", Occasion: "Date"},
}

// LookupVibe finds a vibe by key or label, ignoring case.
func LookupVibe(s string) (Vibe, bool) {
	s = strings.TrimSpace(s)
	for _, v := range Vibes {
		if strings.EqualFold(v.Key, s) || strings.EqualFold(v.Label, s) {
			return v, true
		}
	}
	return Vibe{}, false
}

// Source is the backend call used for picks.
type Source interface {
	InstantOutfits(ctx context.Context, req backend.InstantRequest) (*backend.InstantResponse, error)
}

// Picker remembers which outfit names it has shown.
type Picker struct {
	src Source

	mu    sync.Mutex
	shown []string
}

func NewPicker(src Source) *Picker {
	return &Picker{src: src}
}

// Shown returns the names currently excluded.
func (p *Picker) Shown() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.shown)
}

// Reset forgets every shown name.
func (p *Picker) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shown = nil
}

// Pick asks for one outfit for vibe, retrying up to MaxTries times until
// one comes back. An unseen name is preferred; failing that the first
// returned outfit is used. When the backend reports it has run out of
// unseen looks, the exclusion list restarts from the outfit just returned,
// or from empty if none was.
func (p *Picker) Pick(ctx context.Context, vibe string) (outfit.Outfit, error) {
	exclude := p.Shown()
	exhausted := false

	for try := 1; try <= MaxTries; try++ {
		resp, err := p.src.InstantOutfits(ctx, backend.InstantRequest{
			Vibe:         vibe,
			ImageCount:   1,
			ExcludeNames: exclude,
		})
		if err != nil {
			return outfit.Outfit{}, err
		}
		if resp.UniqueExhausted {
			exhausted = true
		}

		candidate, ok := choose(resp.Outfits, exclude)
		if ok {
			p.record(candidate.Name, resp.UniqueExhausted)
			slog.Debug("Picked instant outfit", "vibe", vibe, "name", candidate.Name, "try", try)
			return candidate, nil
		}
		if resp.UniqueExhausted {
			p.Reset()
			exclude = nil
		}
	}

	if exhausted {
		return outfit.Outfit{}, ErrCycled
	}
	return outfit.Outfit{}, ErrNoOutfit
}

func choose(outfits []outfit.Outfit, exclude []string) (outfit.Outfit, bool) {
	for _, o := range outfits {
		if o.Name != "" && !slices.Contains(exclude, o.Name) {
			return o, true
		}
	}
	if len(outfits) > 0 {
		return outfits[0], true
	}
	return outfit.Outfit{}, false
}

// record remembers a shown name. Unnamed outfits are never excluded.
func (p *Picker) record(name string, uniqueExhausted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if uniqueExhausted {
		p.shown = nil
		if name != "" {
			p.shown = []string{name}
		}
		return
	}
	if name != "" && !slices.Contains(p.shown, name) {
		p.shown = append(p.shown, name)
	}
}
