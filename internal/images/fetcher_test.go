package images

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefetchDownloadsOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	look := srv.URL + "/looks/a.png"
	missing := srv.URL + "/missing.png"

	f.Prefetch(context.Background(), []string{look, "", look, missing})
	f.Prefetch(context.Background(), []string{look, missing})

	assert.EqualValues(t, 2, hits.Load())

	p, ok := f.Path(look)
	require.True(t, ok)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	_, ok = f.Path(missing)
	assert.False(t, ok)
}

func TestPrefetchStopsOnCancel(t *testing.T) {
	f := NewFetcher(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f.Prefetch(ctx, []string{"http://127.0.0.1:1/a.png"})
	_, ok := f.Path("http://127.0.0.1:1/a.png")
	assert.False(t, ok)
}

func TestCacheName(t *testing.T) {
	a := CacheName("https://cdn.example.com/looks/a.PNG?v=2")
	assert.True(t, strings.HasSuffix(a, ".png"))
	assert.Len(t, a, 32+4)
	assert.Equal(t, a, CacheName("https://cdn.example.com/looks/a.PNG?v=2"))
	assert.NotEqual(t, a, CacheName("https://cdn.example.com/looks/a.PNG?v=3"))
	assert.Len(t, CacheName("https://cdn.example.com/render"), 32)
}
