package models

import (
	"time"

	"github.com/dressi-app/dressi/internal/curated"
	"github.com/dressi-app/dressi/internal/outfit"
)

// StartSessionRequest starts a swipe session from quiz answers.
type StartSessionRequest struct {
	Style     string `json:"style"`
	BodyShape string `json:"bodyShape"`
	// UseWeather overrides the server default when set.
	UseWeather *bool `json:"use_weather,omitempty"`
}

// SessionSummary is one row of the session list.
type SessionSummary struct {
	ID        string    `json:"id"`
	State     string    `json:"state"`
	Cursor    int       `json:"cursor"`
	Total     int       `json:"total"`
	Liked     int       `json:"liked"`
	CreatedAt time.Time `json:"created_at"`
}

// CuratedResponse is the results view.
type CuratedResponse struct {
	Entries []curated.Entry `json:"entries"`
	Banner  *Banner         `json:"banner,omitempty"`
}

// Banner is the transient message shown above the results.
type Banner struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SaveRequest asks to save one liked outfit to the wardrobe.
type SaveRequest struct {
	Outfit outfit.Outfit `json:"outfit"`
}

// SaveResponse carries the outfit's save state after the request.
type SaveResponse struct {
	Key    string         `json:"key"`
	Status curated.Status `json:"status"`
}
