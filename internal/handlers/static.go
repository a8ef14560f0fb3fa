package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dressi-app/dressi/internal/images"
)

// HandleImage serves a prefetched outfit image. The path is either a cache
// name or, with ?url=, the original image URL.
func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	if h.opts.ImageDir == "" {
		h.writeError(w, "Image cache disabled", http.StatusNotFound)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/images/")
	if imageURL := r.URL.Query().Get("url"); imageURL != "" {
		name = images.CacheName(imageURL)
	}

	// Prevent directory traversal attacks
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		h.writeError(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, filepath.Join(h.opts.ImageDir, name))
}
