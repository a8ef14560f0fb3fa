// Package curated is the results view behind the swipe flow: it resolves the
// liked outfits to show and tracks saving them to the user's wardrobe.
package curated

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dressi-app/dressi/internal/localstore"
	"github.com/dressi-app/dressi/internal/outfit"
)

// ErrNoStyleTest is returned when the results are requested before the quiz
// has been completed.
var ErrNoStyleTest = errors.New("you haven't taken the style test yet")

// RequireCompleted reports ErrNoStyleTest unless the quiz completion flag is
// set.
func RequireCompleted(store *localstore.Store) error {
	value, ok, err := store.Get(localstore.KeyStyleTestCompleted)
	if err != nil {
		return err
	}
	if !ok || value == "" {
		return ErrNoStyleTest
	}
	return nil
}

// MarkCompleted sets the quiz completion flag.
func MarkCompleted(store *localstore.Store) error {
	return store.Set(localstore.KeyStyleTestCompleted, "true")
}

// Retake clears the completion flag so the quiz runs again.
func Retake(store *localstore.Store) error {
	if err := store.Remove(localstore.KeyStyleTestCompleted); err != nil {
		return fmt.Errorf("failed to reset style test: %w", err)
	}
	return nil
}

// ResolveLiked returns the outfits to show, deduplicated. A non-empty
// incoming list comes straight from a finished swipe session and replaces the
// stored one; otherwise the stored list is used, and an unreadable one counts
// as empty.
func ResolveLiked(store *localstore.Store, incoming []outfit.Outfit) ([]outfit.Outfit, error) {
	if len(incoming) > 0 {
		liked := outfit.Dedupe(incoming)
		if err := StoreLiked(store, liked); err != nil {
			return nil, err
		}
		return liked, nil
	}

	raw, ok, err := store.Get(localstore.KeyLikedOutfits)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []outfit.Outfit{}, nil
	}
	var stored []outfit.Outfit
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		slog.Warn("Ignoring unreadable liked outfits", "error", err)
		return []outfit.Outfit{}, nil
	}
	return outfit.Dedupe(stored), nil
}

// StoreLiked persists the liked list.
func StoreLiked(store *localstore.Store, liked []outfit.Outfit) error {
	if liked == nil {
		liked = []outfit.Outfit{}
	}
	data, err := json.Marshal(liked)
	if err != nil {
		return fmt.Errorf("failed to encode liked outfits: %w", err)
	}
	if err := store.Set(localstore.KeyLikedOutfits, string(data)); err != nil {
		return fmt.Errorf("failed to store liked outfits: %w", err)
	}
	return nil
}
