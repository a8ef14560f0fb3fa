package storage

import (
	"context"
	"testing"

	"github.com/dressi-app/dressi/internal/backend"
	"github.com/dressi-app/dressi/internal/outfit"
	"github.com/dressi-app/dressi/internal/queue"
	"github.com/dressi-app/dressi/internal/quiz"
	"github.com/dressi-app/dressi/internal/swipe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type blockingFetcher struct{}

func (blockingFetcher) Recommend(ctx context.Context, req backend.QuizRequest) (*backend.Recommendation, error) {
	return &backend.Recommendation{Outfits: []outfit.Outfit{{Name: "Linen set", Image: "linen.png"}}}, nil
}

func (blockingFetcher) Generate(ctx context.Context, req backend.QuizRequest) ([]outfit.Outfit, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func startSession(t *testing.T) *swipe.Session {
	t.Helper()
	s, err := swipe.Start(context.Background(), blockingFetcher{}, swipe.Config{
		Answers: quiz.Answers{quiz.KeyStyle: "Casual", quiz.KeyBodyShape: "Pear"},
	})
	require.NoError(t, err)
	return s
}

func TestSessionStore(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := New()
	a, b := startSession(t), startSession(t)
	store.Set(a.ID, a)
	store.Set(b.ID, b)

	got, ok := store.Get(a.ID)
	require.True(t, ok)
	assert.Same(t, a, got)

	all := store.GetAll()
	assert.Len(t, all, 2)
	delete(all, a.ID)
	assert.Len(t, store.GetAll(), 2, "GetAll returns a copy")

	assert.True(t, store.Delete(a.ID))
	assert.False(t, store.Delete(a.ID))
	_, ok = store.Get(a.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, a.Like(), queue.ErrDisposed)

	store.CloseAll()
	assert.Empty(t, store.GetAll())
	assert.ErrorIs(t, b.Like(), queue.ErrDisposed)
}

func TestReap(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := New()
	keep, drop := startSession(t), startSession(t)
	store.Set(keep.ID, keep)
	store.Set(drop.ID, drop)

	n := store.Reap(func(s *swipe.Session) bool { return s.ID == drop.ID })
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, drop.Like(), queue.ErrDisposed)

	got, ok := store.Get(keep.ID)
	require.True(t, ok)
	assert.NoError(t, got.Like())

	assert.Zero(t, store.Reap(func(*swipe.Session) bool { return false }))
	store.CloseAll()
}
