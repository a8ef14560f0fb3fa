package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dressi-app/dressi/internal/curated"
	"github.com/dressi-app/dressi/internal/localstore"
	"github.com/dressi-app/dressi/internal/notify"
	"github.com/dressi-app/dressi/internal/queue"
	"github.com/dressi-app/dressi/internal/storage"
	"github.com/dressi-app/dressi/internal/swipe"
)

// Options wire the handler to the backend and the local store.
type Options struct {
	Fetcher    swipe.Fetcher
	Store      *localstore.Store
	Tracker    *curated.Tracker
	Banner     *notify.Notifier
	Prefetcher swipe.Prefetcher
	// ImageDir serves prefetched images under /images/. Empty disables it.
	ImageDir   string
	Queue      queue.Options
	UseWeather bool
	// SessionTTL bounds how long an unfinished session is kept. Zero means
	// DefaultSessionTTL.
	SessionTTL time.Duration
}

// DefaultSessionTTL is how long an abandoned swipe session stays live.
const DefaultSessionTTL = 24 * time.Hour

type Handler struct {
	sessionStore *storage.SessionStore
	opts         Options
}

func New(opts Options) *Handler {
	if opts.SessionTTL == 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	return &Handler{
		sessionStore: storage.New(),
		opts:         opts,
	}
}

// Close ends every live session.
func (h *Handler) Close() {
	h.sessionStore.CloseAll()
}

// reapSessions drops finished sessions, and with stale set also the ones
// started more than SessionTTL ago.
func (h *Handler) reapSessions(stale bool) {
	cutoff := time.Now().Add(-h.opts.SessionTTL)
	n := h.sessionStore.Reap(func(s *swipe.Session) bool {
		if s.Queue().State() == queue.Exhausted {
			return true
		}
		return stale && s.CreatedAt.Before(cutoff)
	})
	if n > 0 {
		slog.Debug("Reaped swipe sessions", "count", n)
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Debug(message, "status", code)
	}
	http.Error(w, message, code)
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, sessionID string) (*swipe.Session, bool) {
	session, exists := h.sessionStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

// Routes registers every endpoint of the local web service.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sessions", h.HandleSessions)
	mux.HandleFunc("/api/sessions/", h.HandleSessionDetail)
	mux.HandleFunc("/api/curated", h.HandleCurated)
	mux.HandleFunc("/api/curated/save", h.HandleCuratedSave)
	mux.HandleFunc("/images/", h.HandleImage)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	return mux
}
