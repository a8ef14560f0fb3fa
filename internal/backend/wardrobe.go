package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// SaveImageRequest is the body of /api/save_image/.
type SaveImageRequest struct {
	Filename string   `json:"filename"`
	ImageURL string   `json:"image_url"`
	Tags     []string `json:"tags"`
}

// WardrobeItem is one saved outfit. The backend has no separate ID, so the
// item name doubles as its key.
type WardrobeItem struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Image string   `json:"image"`
	Tags  []string `json:"tags"`
}

// SaveImage stores an outfit image in the signed-in user's wardrobe.
func (c *Client) SaveImage(ctx context.Context, token string, reqBody SaveImageRequest) error {
	if reqBody.Tags == nil {
		reqBody.Tags = []string{}
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/save_image/", token, reqBody, nil); err != nil {
		return fmt.Errorf("failed to save outfit: %w", err)
	}
	return nil
}

// Wardrobe lists the signed-in user's saved outfits. A rejected token is
// reported as ErrUnauthorized.
func (c *Client) Wardrobe(ctx context.Context, token string) ([]WardrobeItem, error) {
	var resp struct {
		Wardrobe json.RawMessage `json:"wardrobe"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/api/get_wardrobe/", token, nil, &resp)
	if errors.Is(err, ErrUnauthorized) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wardrobe: %w", err)
	}

	var raw []struct {
		Name  string   `json:"name"`
		Image string   `json:"image"`
		Tags  []string `json:"tags"`
	}
	if err := json.Unmarshal(resp.Wardrobe, &raw); err != nil {
		return []WardrobeItem{}, nil
	}

	items := make([]WardrobeItem, 0, len(raw))
	for _, r := range raw {
		tags := r.Tags
		if tags == nil {
			tags = []string{}
		}
		items = append(items, WardrobeItem{ID: r.Name, Name: r.Name, Image: r.Image, Tags: tags})
	}
	return items, nil
}

// DeleteWardrobeItem removes one item by ID.
func (c *Client) DeleteWardrobeItem(ctx context.Context, token, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("wardrobe item id is required")
	}
	path := "/api/wardrobe/" + url.PathEscape(id) + "/"
	if err := c.doJSON(ctx, http.MethodDelete, path, token, nil, nil); err != nil {
		return fmt.Errorf("failed to delete wardrobe item: %w", err)
	}
	return nil
}
