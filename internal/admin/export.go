package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dressi-app/dressi/internal/backend"
	"github.com/parquet-go/parquet-go"
	"golang.org/x/sync/errgroup"
)

// ExportFilename names a spreadsheet export after its creation time.
func ExportFilename(now time.Time) string {
	stamp := now.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return "early-access-" + stamp + ".xlsx"
}

// Export downloads the spreadsheet into dir and returns its path. A failed
// download leaves no file behind.
func Export(ctx context.Context, src Source, token, dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, ExportFilename(now))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}

	n, err := src.ExportEarlyAccess(ctx, token, file)
	closeErr := file.Close()
	if err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close export file: %w", closeErr)
	}
	if err != nil {
		os.Remove(path)
		return "", err
	}

	slog.Info("Exported early-access registrations", "path", path, "bytes", n)
	return path, nil
}

// DumpConcurrency bounds parallel page fetches during a dump.
const DumpConcurrency = 4

// Dump fetches every page of registrations and writes them to a parquet file
// at path, in page order. It returns the number of rows written.
func Dump(ctx context.Context, src Source, token, path string) (int, error) {
	first, err := src.ListEarlyAccess(ctx, token, 1, PageSize)
	if err != nil {
		return 0, err
	}
	pages := TotalPages(first.Total)

	results := make([][]backend.EarlyAccessEntry, pages)
	results[0] = first.Items

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DumpConcurrency)
	for page := 2; page <= pages; page++ {
		g.Go(func() error {
			resp, err := src.ListEarlyAccess(gctx, token, page, PageSize)
			if err != nil {
				return fmt.Errorf("failed to fetch page %d: %w", page, err)
			}
			mu.Lock()
			results[page-1] = resp.Items
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var rows []backend.EarlyAccessEntry
	for _, items := range results {
		rows = append(rows, items...)
	}

	if err := writeParquet(path, rows); err != nil {
		return 0, err
	}
	slog.Info("Dumped early-access registrations", "path", path, "rows", len(rows), "pages", pages)
	return len(rows), nil
}

func writeParquet(path string, rows []backend.EarlyAccessEntry) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create dump directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[backend.EarlyAccessEntry](file)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}

// ReadDump loads a dump written by Dump.
func ReadDump(path string) ([]backend.EarlyAccessEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[backend.EarlyAccessEntry](pf)
	defer reader.Close()

	records := make([]backend.EarlyAccessEntry, 0, pf.NumRows())
	rows := make([]backend.EarlyAccessEntry, 128)
	for {
		n, err := reader.Read(rows)
		records = append(records, rows[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}
	return records, nil
}
