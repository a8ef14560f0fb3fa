package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/dressi-app/dressi/internal/outfit"
)

// QuizRequest is the body of both /quiz/recommend/ and /quiz/generate/.
type QuizRequest struct {
	Styles     []string `json:"styles"`
	BodyShapes []string `json:"bodyShapes"`
	ImageCount int      `json:"image_count"`
	UseWeather *bool    `json:"use_weather,omitempty"`
}

// Weather describes how the backend applied local weather to a
// recommendation. Tag is "hot", "cold" or empty.
type Weather struct {
	Requested   bool     `json:"requested"`
	Applied     bool     `json:"applied"`
	Tag         string   `json:"tag,omitempty"`
	Source      string   `json:"source,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	City        string   `json:"city,omitempty"`
}

// Recommendation is the result of the recommend call.
type Recommendation struct {
	Outfits []outfit.Outfit
	Weather *Weather
}

type quizResponse struct {
	Outfits json.RawMessage `json:"outfits"`
	Weather json.RawMessage `json:"weather"`
}

// Recommend fetches the initial outfit batch for the swipe queue.
func (c *Client) Recommend(ctx context.Context, reqBody QuizRequest) (*Recommendation, error) {
	var resp quizResponse
	if err := c.doJSON(ctx, http.MethodPost, "/quiz/recommend/", "", reqBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch recommendations: %w", err)
	}
	return &Recommendation{
		Outfits: decodeOutfits(resp.Outfits),
		Weather: NormalizeWeather(resp.Weather),
	}, nil
}

// Generate asks the backend for freshly generated outfits. It is the slow
// call that backfills queue placeholders.
func (c *Client) Generate(ctx context.Context, reqBody QuizRequest) ([]outfit.Outfit, error) {
	var resp quizResponse
	if err := c.doJSON(ctx, http.MethodPost, "/quiz/generate/", "", reqBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to generate outfits: %w", err)
	}
	return decodeOutfits(resp.Outfits), nil
}

// NormalizeWeather reads the loosely typed weather object. It returns nil
// when raw is not an object. Unknown tags are dropped, the weather only
// counts as applied when a tag survived, temperature may arrive as a number
// or a numeric string, and a blank city is treated as absent.
func NormalizeWeather(raw json.RawMessage) *Weather {
	var data map[string]json.RawMessage
	if err := json.Unmarshal(raw, &data); err != nil || data == nil {
		return nil
	}

	w := &Weather{
		Requested: truthy(data["requested"]),
	}
	if tag, ok := jsonString(data["tag"]); ok {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "hot" || tag == "cold" {
			w.Tag = tag
		}
	}
	w.Applied = truthy(data["applied"]) && w.Tag != ""
	if source, ok := jsonString(data["source"]); ok {
		w.Source = source
	}
	if city, ok := jsonString(data["city"]); ok {
		w.City = strings.TrimSpace(city)
	}

	var temp float64
	if err := json.Unmarshal(data["temperature"], &temp); err == nil {
		w.Temperature = &temp
	} else if s, ok := jsonString(data["temperature"]); ok {
		if f, ok := parseLeadingFloat(s); ok {
			w.Temperature = &f
		}
	}
	if w.Temperature != nil && (math.IsInf(*w.Temperature, 0) || math.IsNaN(*w.Temperature)) {
		w.Temperature = nil
	}
	return w
}

func jsonString(raw json.RawMessage) (string, bool) {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	return s, true
}

// truthy follows loose boolean coercion: false, 0, "", null and missing
// values are false, everything else is true.
func truthy(raw json.RawMessage) bool {
	var v any
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	default:
		return true
	}
}

// parseLeadingFloat parses the longest numeric prefix of s, so "21.5C"
// reads as 21.5.
func parseLeadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	for end := len(s); end > 0; end-- {
		if f, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
