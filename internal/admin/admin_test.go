package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dressi-app/dressi/internal/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	total int

	mu      sync.Mutex
	blockOn map[int]chan struct{}
	started chan int
	failOn  map[int]error
	export  string
}

func (f *fakeSource) ListEarlyAccess(ctx context.Context, token string, page, pageSize int) (*backend.EarlyAccessPage, error) {
	f.mu.Lock()
	gate := f.blockOn[page]
	fail := f.failOn[page]
	f.mu.Unlock()

	if f.started != nil {
		f.started <- page
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail != nil {
		return nil, fail
	}

	var items []backend.EarlyAccessEntry
	for i := (page-1)*pageSize + 1; i <= min(page*pageSize, f.total); i++ {
		items = append(items, backend.EarlyAccessEntry{
			ID:      fmt.Sprint(i),
			Email:   fmt.Sprintf("user%d@example.com", i),
			Consent: true,
		})
	}
	return &backend.EarlyAccessPage{Items: items, Total: f.total, Page: page, PageSize: pageSize}, nil
}

func (f *fakeSource) ExportEarlyAccess(ctx context.Context, token string, w io.Writer) (int64, error) {
	if f.export == "" {
		return 0, errors.New("export failed")
	}
	n, err := io.WriteString(w, f.export)
	return int64(n), err
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name     string
		view     View
		expected string
	}{
		{"nothing yet", View{Page: 1}, "No early-access registrations captured yet."},
		{"empty page", View{Page: 3, Total: 25}, "No registrations on this page."},
		{"second page", View{Page: 2, Total: 25, Entries: make([]backend.EarlyAccessEntry, 5)}, "Showing 21 to 25 of 25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.Summary())
		})
	}

	assert.Equal(t, 1, TotalPages(0))
	assert.Equal(t, 1, TotalPages(20))
	assert.Equal(t, 2, TotalPages(21))
}

func TestLoadAndNavigate(t *testing.T) {
	l := NewLister(&fakeSource{total: 45}, "tok")

	v, err := l.Load(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, v.Entries, 20)
	assert.Equal(t, 3, v.TotalPages())

	v, err = l.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, v.Page)

	_, _ = l.Next(context.Background())
	v, err = l.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, v.Page)
	assert.Equal(t, "Showing 41 to 45 of 45", v.Summary())

	v, err = l.Prev(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, v.Page)
}

func TestLoadClampsPastLastPage(t *testing.T) {
	l := NewLister(&fakeSource{total: 30}, "tok")

	v, err := l.Load(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Page)
	assert.Len(t, v.Entries, 10)
	assert.Equal(t, 2, l.View().Page)
}

func TestLoadCancelsPreviousRequest(t *testing.T) {
	src := &fakeSource{
		total:   45,
		blockOn: map[int]chan struct{}{1: make(chan struct{})},
		started: make(chan int, 4),
	}
	l := NewLister(src, "tok")

	firstErr := make(chan error, 1)
	go func() {
		_, err := l.Load(context.Background(), 1)
		firstErr <- err
	}()
	require.Equal(t, 1, <-src.started)

	v, err := l.Load(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Page)

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("first load was not cancelled")
	}
	assert.Equal(t, 2, l.View().Page)
}

func TestLoadErrorKeepsTotal(t *testing.T) {
	boom := errors.New("forbidden")
	src := &fakeSource{total: 45, failOn: map[int]error{2: boom}}
	l := NewLister(src, "tok")

	_, err := l.Load(context.Background(), 1)
	require.NoError(t, err)
	_, err = l.Load(context.Background(), 2)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, l.View().Entries)
	assert.Equal(t, 45, l.View().Total)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 3, 4, 5, 6, 7, 890_000_000, time.UTC)

	assert.Equal(t, "early-access-2025-03-04T05-06-07-890Z.xlsx", ExportFilename(now))

	path, err := Export(context.Background(), &fakeSource{export: "PK-data"}, "tok", dir, now)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "PK-data", string(data))

	_, err = Export(context.Background(), &fakeSource{}, "tok", filepath.Join(dir, "failed"), now)
	assert.Error(t, err)
	entries, _ := os.ReadDir(filepath.Join(dir, "failed"))
	assert.Empty(t, entries)
}

func TestDumpRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump", "early-access.parquet")

	n, err := Dump(context.Background(), &fakeSource{total: 87}, "tok", path)
	require.NoError(t, err)
	assert.Equal(t, 87, n)

	rows, err := ReadDump(path)
	require.NoError(t, err)
	require.Len(t, rows, 87)
	for i, row := range rows {
		assert.Equal(t, fmt.Sprint(i+1), row.ID)
	}
	assert.True(t, rows[0].Consent)
}

func TestDumpFailsOnAnyPage(t *testing.T) {
	boom := errors.New("page gone")
	src := &fakeSource{total: 70, failOn: map[int]error{3: boom}}

	_, err := Dump(context.Background(), src, "tok", filepath.Join(t.TempDir(), "x.parquet"))
	assert.ErrorIs(t, err, boom)
}
