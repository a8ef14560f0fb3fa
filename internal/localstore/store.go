// Package localstore is the on-disk stand-in for browser local storage: one
// file per key under a directory, atomic writes, and a subscription that
// reports values changed by another process sharing the directory.
package localstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Keys shared by the swipe, curated and auth flows.
const (
	KeyLikedOutfits       = "likedOutfits"
	KeySavedWardrobeKeys  = "savedWardrobeKeys"
	KeyStyleTestCompleted = "styleTestCompleted"
	KeyUser               = "dressi:user"
)

const fileSuffix = ".val"

// Change describes a value observed on disk. Present is false when the key
// was removed.
type Change struct {
	Key     string
	Value   string
	Present bool
}

type observed struct {
	value   string
	present bool
}

type Store struct {
	dir string

	mu      sync.Mutex
	seen    map[string]observed
	subs    map[string][]chan Change
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
	writeMu sync.Mutex
}

// Open prepares dir and returns a store rooted there.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &Store{
		dir:  dir,
		seen: make(map[string]observed),
		subs: make(map[string][]chan Change),
	}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, url.QueryEscape(key)+fileSuffix)
}

func keyFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || !strings.HasSuffix(base, fileSuffix) {
		return "", false
	}
	key, err := url.QueryUnescape(strings.TrimSuffix(base, fileSuffix))
	if err != nil {
		return "", false
	}
	return key, true
}

// Get returns the value stored under key and whether it exists.
func (s *Store) Get(key string) (string, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set replaces the value under key.
func (s *Store) Set(key, value string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.setLocked(key, value)
}

func (s *Store) setLocked(key, value string) error {
	tmp, err := os.CreateTemp(s.dir, ".write-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	s.remember(key, observed{value: value, present: true})
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *Store) Remove(key string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.remember(key, observed{})
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Update reads the latest value under key, passes it to fn and writes the
// result back. Writers in this process are serialized; across processes the
// last writer wins.
func (s *Store) Update(key string, fn func(current string, ok bool) (string, error)) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, ok, err := s.Get(key)
	if err != nil {
		return err
	}
	next, err := fn(current, ok)
	if err != nil {
		return err
	}
	if ok && next == current {
		return nil
	}
	return s.setLocked(key, next)
}

// remember records a value this store wrote so the watcher does not report
// it back as an external change.
func (s *Store) remember(key string, o observed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[key] = o
}

// Subscribe returns a channel of external changes to key. The channel holds
// only the most recent undelivered change. Call the returned func to stop.
func (s *Store) Subscribe(key string) (<-chan Change, func()) {
	ch := make(chan Change, 1)

	s.mu.Lock()
	s.subs[key] = append(s.subs[key], ch)
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			subs := s.subs[key]
			for i, c := range subs {
				if c == ch {
					s.subs[key] = append(subs[:i], subs[i+1:]...)
					close(ch)
					return
				}
			}
		})
	}
}

// Watch starts observing the directory for writes made by other processes.
// It returns immediately; the watch ends when ctx is cancelled or Close is
// called.
func (s *Store) Watch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	s.watcher = watcher
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.running = true

	go s.run(ctx, watcher, s.stopCh, s.doneCh)
	slog.Debug("Watching local store", "dir", s.dir)
	return nil
}

// Close stops the watcher and closes every subscription channel.
func (s *Store) Close() error {
	s.mu.Lock()
	running := s.running
	s.running = false
	stopCh, doneCh, watcher := s.stopCh, s.doneCh, s.watcher
	s.mu.Unlock()

	var closeErr error
	if running {
		close(stopCh)
		<-doneCh
		if err := watcher.Close(); err != nil {
			closeErr = fmt.Errorf("failed to close watcher: %w", err)
		}
	}

	s.mu.Lock()
	for key, subs := range s.subs {
		for _, ch := range subs {
			close(ch)
		}
		delete(s.subs, key)
	}
	s.mu.Unlock()

	return closeErr
}

func (s *Store) run(ctx context.Context, watcher *fsnotify.Watcher, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			s.handleEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Local store watcher error", "dir", s.dir, "error", err)
		}
	}
}

func (s *Store) handleEvent(event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return
	}
	key, ok := keyFromPath(event.Name)
	if !ok {
		return
	}

	value, present, err := s.Get(key)
	if err != nil {
		slog.Error("Failed to read changed key", "key", key, "error", err)
		return
	}
	current := observed{value: value, present: present}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, known := s.seen[key]; known && prev == current {
		return
	}
	if _, known := s.seen[key]; !known && !present {
		return
	}
	s.seen[key] = current

	change := Change{Key: key, Value: value, Present: present}
	for _, ch := range s.subs[key] {
		select {
		case <-ch:
		default:
		}
		ch <- change
	}
}
