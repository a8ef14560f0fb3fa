package images

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Fetcher downloads outfit images into a cache directory so the swipe
// screen can show the next card without waiting on the network. Each URL is
// fetched at most once per Fetcher.
type Fetcher struct {
	HTTPClient *http.Client
	CacheDir   string

	mu      sync.Mutex
	started map[string]struct{}
	paths   map[string]string
}

// NewFetcher creates a new image fetcher writing into cacheDir
func NewFetcher(cacheDir string) *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		CacheDir: cacheDir,
		started:  make(map[string]struct{}),
		paths:    make(map[string]string),
	}
}

// Prefetch downloads every URL not fetched before. Failures are logged and
// skipped; an image that failed is not retried by this Fetcher.
func (f *Fetcher) Prefetch(ctx context.Context, urls []string) {
	for _, u := range urls {
		if ctx.Err() != nil {
			return
		}
		u = strings.TrimSpace(u)
		if u == "" || !f.claim(u) {
			continue
		}

		outputPath := filepath.Join(f.CacheDir, CacheName(u))
		if err := f.downloadImage(ctx, u, outputPath); err != nil {
			slog.Warn("Failed to prefetch outfit image", "url", u, "error", err)
			continue
		}

		f.mu.Lock()
		f.paths[u] = outputPath
		f.mu.Unlock()
		slog.Debug("Prefetched outfit image", "url", u, "path", outputPath)
	}
}

func (f *Fetcher) claim(u string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.started[u]; ok {
		return false
	}
	f.started[u] = struct{}{}
	return true
}

// Path returns the cached file for u once it has been downloaded.
func (f *Fetcher) Path(u string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.paths[strings.TrimSpace(u)]
	return p, ok
}

// CacheName maps an image URL to a stable file name: the MD5 of the URL
// plus the extension of its path, if any.
func CacheName(imageURL string) string {
	sum := md5.Sum([]byte(imageURL))
	name := hex.EncodeToString(sum[:])

	p := imageURL
	if parsed, err := url.Parse(imageURL); err == nil {
		p = parsed.Path
	}
	ext := strings.ToLower(path.Ext(p))
	if len(ext) > 1 && len(ext) <= 5 {
		name += ext
	}
	return name
}

// downloadImage downloads an image from a URL to a file
func (f *Fetcher) downloadImage(ctx context.Context, imageURL, outputPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("image URL returned status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read image data: %w", err)
	}
	if len(imageData) == 0 {
		return fmt.Errorf("image is empty")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(outputPath, imageData, 0644); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}

	return nil
}
