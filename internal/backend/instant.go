package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dressi-app/dressi/internal/outfit"
)

type InstantRequest struct {
	Vibe         string   `json:"vibe"`
	ImageCount   int      `json:"image_count"`
	ExcludeNames []string `json:"exclude_names"`
}

type InstantResponse struct {
	Outfits []outfit.Outfit
	// UniqueExhausted is set when the backend had no unseen outfit left for
	// the vibe and had to repeat one.
	UniqueExhausted bool
}

// InstantOutfits fetches outfits for a single vibe, skipping the excluded
// names where the backend can.
func (c *Client) InstantOutfits(ctx context.Context, reqBody InstantRequest) (*InstantResponse, error) {
	if reqBody.ExcludeNames == nil {
		reqBody.ExcludeNames = []string{}
	}
	var resp struct {
		Outfits         json.RawMessage `json:"outfits"`
		UniqueExhausted json.RawMessage `json:"uniqueExhausted"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/instant_outfits/", "", reqBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch instant outfit: %w", err)
	}
	return &InstantResponse{
		Outfits:         decodeOutfits(resp.Outfits),
		UniqueExhausted: truthy(resp.UniqueExhausted),
	}, nil
}
