package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dressi-app/dressi/internal/curated"
	"github.com/dressi-app/dressi/internal/models"
	"github.com/dressi-app/dressi/internal/outfit"
)

// HandleCurated returns the liked outfits of the last finished session with
// their save state.
func (h *Handler) HandleCurated(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := curated.RequireCompleted(h.opts.Store); err != nil {
		if errors.Is(err, curated.ErrNoStyleTest) {
			h.writeError(w, err.Error(), http.StatusConflict)
			return
		}
		h.writeError(w, "Failed to read style test state: "+err.Error(), http.StatusInternalServerError)
		return
	}

	liked, err := curated.ResolveLiked(h.opts.Store, nil)
	if err != nil {
		h.writeError(w, "Failed to read liked outfits: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.reapSessions(false)

	response := models.CuratedResponse{Entries: h.opts.Tracker.Entries(liked)}
	if h.opts.Banner != nil {
		if b, ok := h.opts.Banner.Current(); ok {
			response.Banner = &models.Banner{Kind: b.Kind.String(), Message: b.Message}
		}
	}
	h.writeJSON(w, response)
}

func (h *Handler) HandleCuratedSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request models.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	status, err := h.opts.Tracker.Save(r.Context(), request.Outfit)
	switch {
	case errors.Is(err, curated.ErrLoginRequired):
		h.writeError(w, err.Error(), http.StatusUnauthorized)
		return
	case errors.Is(err, curated.ErrMissingImage):
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.writeError(w, "Failed to save outfit: "+err.Error(), http.StatusBadGateway)
		return
	}

	h.writeJSON(w, models.SaveResponse{
		Key:    outfit.IdentityKey(request.Outfit),
		Status: status,
	})
}
