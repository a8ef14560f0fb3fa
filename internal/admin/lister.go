// Package admin backs the early-access admin screen: a paginated list that
// abandons superseded page loads, the spreadsheet export and a parquet dump
// of every registration.
package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/dressi-app/dressi/internal/backend"
)

// PageSize is the number of registrations per page.
const PageSize = 20

// ErrSuperseded is returned by a Load overtaken by a later Load.
var ErrSuperseded = errors.New("page load superseded by a newer request")

// Source is the backend surface the admin screen uses.
type Source interface {
	ListEarlyAccess(ctx context.Context, token string, page, pageSize int) (*backend.EarlyAccessPage, error)
	ExportEarlyAccess(ctx context.Context, token string, w io.Writer) (int64, error)
}

// View is the state of the list after a load.
type View struct {
	Page    int
	Total   int
	Entries []backend.EarlyAccessEntry
}

// TotalPages is never less than one.
func (v View) TotalPages() int {
	return TotalPages(v.Total)
}

func TotalPages(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + PageSize - 1) / PageSize
}

// Summary is the line under the table.
func (v View) Summary() string {
	if len(v.Entries) == 0 {
		if v.Total > 0 {
			return "No registrations on this page."
		}
		return "No early-access registrations captured yet."
	}
	start := (v.Page-1)*PageSize + 1
	end := start + len(v.Entries) - 1
	return fmt.Sprintf("Showing %d to %d of %d", start, end, v.Total)
}

// Lister loads pages for one admin. Starting a load cancels the one before
// it, and a cancelled load never replaces the current view.
type Lister struct {
	src   Source
	token string

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	view   View
}

func NewLister(src Source, token string) *Lister {
	return &Lister{src: src, token: token, view: View{Page: 1}}
}

// View returns the last successfully loaded view.
func (l *Lister) View() View {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.view
}

// Load fetches page. When page is past the last page the list is reloaded
// at the last page instead.
func (l *Lister) Load(ctx context.Context, page int) (View, error) {
	if page < 1 {
		page = 1
	}

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.seq++
	seq := l.seq
	reqCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.mu.Unlock()
	defer cancel()

	resp, err := l.src.ListEarlyAccess(reqCtx, l.token, page, PageSize)

	l.mu.Lock()
	if seq != l.seq {
		l.mu.Unlock()
		slog.Debug("Discarded superseded page load", "page", page)
		return View{}, ErrSuperseded
	}
	if err != nil {
		l.view = View{Page: page, Total: l.view.Total}
		l.mu.Unlock()
		return View{}, err
	}

	view := View{Page: page, Total: max(resp.Total, 0), Entries: resp.Items}
	l.view = view
	l.mu.Unlock()

	if last := view.TotalPages(); view.Total > 0 && page > last {
		slog.Info("Requested page past the end, loading last page", "page", page, "last", last)
		return l.Load(ctx, last)
	}
	return view, nil
}

// Next and Prev move one page, staying within bounds.
func (l *Lister) Next(ctx context.Context) (View, error) {
	v := l.View()
	return l.Load(ctx, min(v.Page+1, v.TotalPages()))
}

func (l *Lister) Prev(ctx context.Context) (View, error) {
	v := l.View()
	return l.Load(ctx, max(v.Page-1, 1))
}
