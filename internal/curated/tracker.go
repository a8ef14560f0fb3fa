package curated

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dressi-app/dressi/internal/backend"
	"github.com/dressi-app/dressi/internal/localstore"
	"github.com/dressi-app/dressi/internal/notify"
	"github.com/dressi-app/dressi/internal/outfit"
)

var (
	// ErrLoginRequired is returned by Save without a session token. Callers
	// send the user to login instead of showing an error.
	ErrLoginRequired = errors.New("log in to save outfits")
	ErrMissingImage  = errors.New("outfit is missing an image URL")
)

const (
	msgSaved      = "Saved to wardrobe."
	msgSaveFailed = "Could not save outfit. Please try again."
)

// Status is the save state of one outfit.
type Status int

const (
	Idle Status = iota
	Saving
	Saved
	Failed
)

func (s Status) String() string {
	switch s {
	case Saving:
		return "saving"
	case Saved:
		return "saved"
	case Failed:
		return "error"
	default:
		return "idle"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = Idle
	case "saving":
		*s = Saving
	case "saved":
		*s = Saved
	case "error":
		*s = Failed
	default:
		return fmt.Errorf("unknown save status %q", text)
	}
	return nil
}

// Saver stores an outfit in the wardrobe. *backend.Client implements it.
type Saver interface {
	SaveImage(ctx context.Context, token string, req backend.SaveImageRequest) error
}

// Entry is one liked outfit as the view renders it.
type Entry struct {
	Key    string        `json:"key"`
	Outfit outfit.Outfit `json:"outfit"`
	Status Status        `json:"status"`
}

// Tracker holds the per-outfit save state for a results view. Outfits
// confirmed saved are remembered in the local store and shared with every
// other tracker on the same store directory.
type Tracker struct {
	store  *localstore.Store
	saver  Saver
	token  func() string
	banner *notify.Notifier
	now    func() time.Time

	mu     sync.Mutex
	status map[string]Status
	saved  *outfit.KeySet

	stopOnce sync.Once
	unsub    func()
	done     chan struct{}
}

// NewTracker loads the persisted saved set. token is read on every save so
// a login during the session takes effect. banner may be nil.
func NewTracker(store *localstore.Store, saver Saver, token func() string, banner *notify.Notifier) *Tracker {
	t := &Tracker{
		store:  store,
		saver:  saver,
		token:  token,
		banner: banner,
		now:    time.Now,
		status: make(map[string]Status),
		saved:  outfit.NewKeySet(),
	}
	t.saved = t.loadSaved()
	return t
}

func (t *Tracker) loadSaved() *outfit.KeySet {
	raw, _, err := t.store.Get(localstore.KeySavedWardrobeKeys)
	if err != nil {
		slog.Warn("Failed to read saved wardrobe keys", "error", err)
		return outfit.NewKeySet()
	}
	return outfit.ParseKeySet(raw)
}

// Follow keeps the saved set in step with writes from other processes until
// ctx is done or Close is called. The store must be watching for the
// changes to arrive.
func (t *Tracker) Follow(ctx context.Context) {
	changes, unsub := t.store.Subscribe(localstore.KeySavedWardrobeKeys)
	done := make(chan struct{})

	t.mu.Lock()
	t.unsub = unsub
	t.done = done
	t.mu.Unlock()

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				unsub()
				return
			case change, ok := <-changes:
				if !ok {
					return
				}
				t.applyExternal(change)
			}
		}
	}()
}

func (t *Tracker) applyExternal(change localstore.Change) {
	next := outfit.NewKeySet()
	if change.Present {
		next = outfit.ParseKeySet(change.Value)
	}
	t.mu.Lock()
	t.saved = next
	t.mu.Unlock()
	slog.Debug("Saved wardrobe keys changed elsewhere", "count", next.Len())
}

// Close stops following external changes.
func (t *Tracker) Close() {
	t.stopOnce.Do(func() {
		t.mu.Lock()
		unsub, done := t.unsub, t.done
		t.mu.Unlock()
		if unsub == nil {
			return
		}
		unsub()
		<-done
	})
}

// Status returns the state of o. A key in the persisted saved set is always
// saved, whatever this session has seen.
func (t *Tracker) Status(o outfit.Outfit) Status {
	key := outfit.IdentityKey(o)
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusLocked(key)
}

func (t *Tracker) statusLocked(key string) Status {
	if t.saved.Has(key) {
		return Saved
	}
	return t.status[key]
}

// Entries pairs each liked outfit with its key and status.
func (t *Tracker) Entries(liked []outfit.Outfit) []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, 0, len(liked))
	for _, o := range liked {
		key := outfit.IdentityKey(o)
		out = append(out, Entry{Key: key, Outfit: o, Status: t.statusLocked(key)})
	}
	return out
}

// SavedKeys returns the persisted saved set as last observed.
func (t *Tracker) SavedKeys() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saved.Keys()
}

// Save stores o in the wardrobe. Without a token it returns ErrLoginRequired
// and changes nothing. A save already running or finished for the same
// outfit returns the current status without another request. A failed save
// may be retried.
func (t *Tracker) Save(ctx context.Context, o outfit.Outfit) (Status, error) {
	key := outfit.IdentityKey(o)
	token := ""
	if t.token != nil {
		token = strings.TrimSpace(t.token())
	}
	if token == "" {
		return Idle, ErrLoginRequired
	}

	t.mu.Lock()
	if current := t.statusLocked(key); current == Saving || current == Saved {
		t.mu.Unlock()
		return current, nil
	}
	t.status[key] = Saving
	t.mu.Unlock()

	if err := t.send(ctx, token, o); err != nil {
		t.mu.Lock()
		t.status[key] = Failed
		t.mu.Unlock()
		t.show(notify.Error, msgSaveFailed)
		slog.Error("Failed to save outfit", "key", key, "error", err)
		return Failed, err
	}

	err := t.store.Update(localstore.KeySavedWardrobeKeys, func(current string, _ bool) (string, error) {
		set := outfit.ParseKeySet(current)
		set.Add(key)
		data, err := set.MarshalJSON()
		if err != nil {
			return "", err
		}
		return string(data), nil
	})
	if err != nil {
		slog.Warn("Failed to persist saved wardrobe key", "key", key, "error", err)
	}

	t.mu.Lock()
	t.status[key] = Saved
	t.saved.Add(key)
	t.mu.Unlock()
	t.show(notify.Success, msgSaved)
	slog.Info("Saved outfit to wardrobe", "key", key)
	return Saved, nil
}

func (t *Tracker) send(ctx context.Context, token string, o outfit.Outfit) error {
	if strings.TrimSpace(o.Image) == "" {
		return ErrMissingImage
	}
	tags := o.Tags
	if tags == nil {
		tags = []string{}
	}
	req := backend.SaveImageRequest{
		Filename: outfit.InferFilename(o, fmt.Sprintf("wardrobe_%d", t.now().UnixMilli())),
		ImageURL: o.Image,
		Tags:     tags,
	}
	return t.saver.SaveImage(ctx, token, req)
}

func (t *Tracker) show(kind notify.Kind, msg string) {
	if t.banner != nil {
		t.banner.Show(kind, msg)
	}
}
