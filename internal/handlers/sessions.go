package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/dressi-app/dressi/internal/models"
	"github.com/dressi-app/dressi/internal/queue"
	"github.com/dressi-app/dressi/internal/quiz"
	"github.com/dressi-app/dressi/internal/swipe"
)

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		sessions := h.sessionStore.GetAll()
		sessionList := make([]models.SessionSummary, 0, len(sessions))
		for _, session := range sessions {
			snap := session.Snapshot()
			sessionList = append(sessionList, models.SessionSummary{
				ID:        snap.ID,
				State:     snap.State,
				Cursor:    snap.Cursor,
				Total:     snap.Total,
				Liked:     len(snap.Liked),
				CreatedAt: snap.CreatedAt,
			})
		}
		sort.Slice(sessionList, func(i, j int) bool {
			return sessionList[i].CreatedAt.Before(sessionList[j].CreatedAt)
		})
		h.writeJSON(w, sessionList)
	case "POST":
		h.startSession(w, r)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	var request models.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	useWeather := h.opts.UseWeather
	if request.UseWeather != nil {
		useWeather = *request.UseWeather
	}

	session, err := swipe.Start(r.Context(), h.opts.Fetcher, swipe.Config{
		Answers: quiz.Answers{
			quiz.KeyStyle:     request.Style,
			quiz.KeyBodyShape: request.BodyShape,
		},
		UseWeather: useWeather,
		Queue:      h.opts.Queue,
		Store:      h.opts.Store,
		Prefetcher: h.opts.Prefetcher,
	})
	if err != nil {
		if errors.Is(err, quiz.ErrInvalidAnswer) {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.writeError(w, "Failed to start session: "+err.Error(), http.StatusBadGateway)
		return
	}

	h.reapSessions(true)
	h.sessionStore.Set(session.ID, session)
	h.writeJSONStatus(w, http.StatusCreated, session.Snapshot())
}

func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/sessions/"), "/")
	sessionID, action, _ := strings.Cut(rest, "/")

	session, ok := h.getSessionOrError(w, sessionID)
	if !ok {
		return
	}

	if action != "" {
		if r.Method != "POST" {
			h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.applyAction(w, session, action)
		return
	}

	switch r.Method {
	case "GET":
		h.writeJSON(w, session.Snapshot())
	case "DELETE":
		h.sessionStore.Delete(sessionID)
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) applyAction(w http.ResponseWriter, session *swipe.Session, action string) {
	var err error
	switch action {
	case "like":
		err = session.Like()
	case "pass":
		err = session.Pass()
	case "next":
		err = session.Next()
	case "back":
		err = session.Back()
	default:
		h.writeError(w, "Unknown action: "+action, http.StatusNotFound)
		return
	}

	switch {
	case err == nil:
		h.writeJSON(w, session.Snapshot())
	case errors.Is(err, queue.ErrPlaceholder),
		errors.Is(err, queue.ErrAtStart),
		errors.Is(err, queue.ErrExhausted),
		errors.Is(err, queue.ErrDisposed):
		h.writeError(w, err.Error(), http.StatusConflict)
	default:
		h.writeError(w, err.Error(), http.StatusInternalServerError)
	}
}
