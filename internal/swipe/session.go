// Package swipe hosts one swipe run: it seeds the outfit queue from the
// eager recommendation, backfills placeholders from the slower generate
// call, and hands the liked outfits to the results view when the deck runs
// out.
package swipe

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dressi-app/dressi/internal/backend"
	"github.com/dressi-app/dressi/internal/curated"
	"github.com/dressi-app/dressi/internal/localstore"
	"github.com/dressi-app/dressi/internal/outfit"
	"github.com/dressi-app/dressi/internal/queue"
	"github.com/dressi-app/dressi/internal/quiz"
	"github.com/google/uuid"
)

// Fetcher is the part of the backend client a session needs.
type Fetcher interface {
	Recommend(ctx context.Context, req backend.QuizRequest) (*backend.Recommendation, error)
	Generate(ctx context.Context, req backend.QuizRequest) ([]outfit.Outfit, error)
}

// Prefetcher warms an image cache. *images.Fetcher implements it.
type Prefetcher interface {
	Prefetch(ctx context.Context, urls []string)
}

type Config struct {
	Answers    quiz.Answers
	UseWeather bool
	// Queue sizes the deck. OnExhausted is owned by the session and ignored.
	Queue queue.Options
	// Store receives the completion flag and liked list. May be nil.
	Store *localstore.Store
	// Prefetcher may be nil.
	Prefetcher Prefetcher
}

// Batch is one delivery of generated outfits.
type Batch struct {
	Outfits []outfit.Outfit
	Err     error
}

type Session struct {
	ID        string
	CreatedAt time.Time

	answers    quiz.Answers
	useWeather bool
	weather    *backend.Weather
	q          *queue.Queue
	store      *localstore.Store
	prefetcher Prefetcher

	batches chan Batch
	updates chan struct{}
	results chan []outfit.Outfit

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Start fetches the eager batch and builds the queue, then starts the
// background generate call. ctx bounds only the eager call; the background
// work lives until Close.
func Start(ctx context.Context, fetcher Fetcher, cfg Config) (*Session, error) {
	answers, err := quiz.Normalize(cfg.Answers)
	if err != nil {
		return nil, err
	}

	rec, err := fetcher.Recommend(ctx, quiz.RecommendRequest(answers, cfg.UseWeather))
	if err != nil {
		return nil, err
	}

	bg, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &Session{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now(),
		answers:    answers,
		useWeather: cfg.UseWeather,
		weather:    rec.Weather,
		store:      cfg.Store,
		prefetcher: cfg.Prefetcher,
		batches:    make(chan Batch),
		updates:    make(chan struct{}, 1),
		results:    make(chan []outfit.Outfit, 1),
		ctx:        bg,
		cancel:     cancel,
	}

	opts := cfg.Queue
	opts.OnExhausted = s.handleExhausted

	s.q, err = queue.New(outfit.Dedupe(rec.Outfits), opts)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to build outfit queue: %w", err)
	}

	slog.Info("Started swipe session",
		"session_id", s.ID,
		"style", answers.Style(),
		"body_shape", answers.BodyShape(),
		"outfits", len(rec.Outfits),
		"pending", s.q.Pending())

	s.wg.Add(2)
	go s.generate(fetcher, quiz.GenerateRequest(answers))
	go s.mergeLoop()
	s.prefetch()

	return s, nil
}

// generate runs the slow backend call and delivers its result over the
// batch channel.
func (s *Session) generate(fetcher Fetcher, req backend.QuizRequest) {
	defer s.wg.Done()

	outfits, err := fetcher.Generate(s.ctx, req)
	select {
	case s.batches <- Batch{Outfits: outfits, Err: err}:
	case <-s.ctx.Done():
	}
}

// Deliver hands an extra batch to the session, as a retried generate would.
// It returns false once the session is closed.
func (s *Session) Deliver(b Batch) bool {
	select {
	case s.batches <- b:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *Session) mergeLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case b := <-s.batches:
			s.merge(b)
		}
	}
}

func (s *Session) merge(b Batch) {
	if b.Err != nil {
		slog.Warn("Background outfit generation failed", "session_id", s.ID, "error", b.Err)
		return
	}
	if s.ctx.Err() != nil {
		return
	}
	placed, err := s.q.MergeBatch(outfit.Dedupe(b.Outfits))
	if err != nil {
		slog.Debug("Dropped generated outfits", "session_id", s.ID, "error", err)
		return
	}
	slog.Info("Merged generated outfits",
		"session_id", s.ID,
		"received", len(b.Outfits),
		"placed", placed,
		"pending", s.q.Pending())
	if placed > 0 {
		s.notify()
		s.prefetch()
	}
}

func (s *Session) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

func (s *Session) prefetch() {
	if s.prefetcher == nil {
		return
	}
	var urls []string
	for _, slot := range s.q.Slots() {
		if !slot.Placeholder && slot.Outfit.Image != "" {
			urls = append(urls, slot.Outfit.Image)
		}
	}
	if len(urls) == 0 {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.prefetcher.Prefetch(s.ctx, urls)
	}()
}

// handleExhausted runs once, on the goroutine that made the last decision.
func (s *Session) handleExhausted(liked []outfit.Outfit) {
	if s.store != nil {
		if err := curated.MarkCompleted(s.store); err != nil {
			slog.Error("Failed to mark style test completed", "session_id", s.ID, "error", err)
		}
		if err := curated.StoreLiked(s.store, liked); err != nil {
			slog.Error("Failed to store liked outfits", "session_id", s.ID, "error", err)
		}
	}
	slog.Info("Swipe session finished", "session_id", s.ID, "liked", len(liked))

	s.results <- liked
	s.notify()
}

// Updates signals after generated outfits land in the deck. Signals
// coalesce.
func (s *Session) Updates() <-chan struct{} {
	return s.updates
}

// Results yields the liked outfits once, when the deck is exhausted.
func (s *Session) Results() <-chan []outfit.Outfit {
	return s.results
}

func (s *Session) Queue() *queue.Queue {
	return s.q
}

func (s *Session) Answers() quiz.Answers {
	return s.answers
}

func (s *Session) Weather() *backend.Weather {
	return s.weather
}

func (s *Session) UseWeather() bool {
	return s.useWeather
}

func (s *Session) Like() error { return s.q.Decide(queue.Like) }
func (s *Session) Pass() error { return s.q.Decide(queue.Pass) }
func (s *Session) Next() error { return s.q.Advance() }
func (s *Session) Back() error { return s.q.Rewind() }

// Close stops the background work and disposes the queue, so a generate
// result arriving later is never applied.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.q.Dispose()
		s.wg.Wait()
		slog.Debug("Closed swipe session", "session_id", s.ID)
	})
}
