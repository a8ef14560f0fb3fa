package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/")
}

func TestNewClientBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, NewClient("").BaseURL)
	assert.Equal(t, "https://api.example.com", NewClient("https://api.example.com/").BaseURL)
	assert.Equal(t, "https://api.example.com/x", NewClient("https://api.example.com").URL("x"))
}

func TestRecommend(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/quiz/recommend/", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []any{"Casual"}, body["styles"])
		assert.Equal(t, []any{"Pear"}, body["bodyShapes"])
		assert.EqualValues(t, 16, body["image_count"])
		assert.Equal(t, true, body["use_weather"])

		io.WriteString(w, `{
			"outfits": [{"name":"A","image":"a.png","score":3}, null, "junk", {"image":"b.png"}],
			"weather": {"requested": true, "applied": true, "tag": " HOT ", "temperature": "31.5", "city": "  ", "source": "owm"}
		}`)
	})

	useWeather := true
	rec, err := c.Recommend(context.Background(), QuizRequest{
		Styles: []string{"Casual"}, BodyShapes: []string{"Pear"}, ImageCount: 16, UseWeather: &useWeather,
	})
	require.NoError(t, err)

	require.Len(t, rec.Outfits, 2)
	assert.Equal(t, "a.png", rec.Outfits[0].Image)
	assert.JSONEq(t, `3`, string(rec.Outfits[0].Extra["score"]))

	require.NotNil(t, rec.Weather)
	assert.True(t, rec.Weather.Applied)
	assert.Equal(t, "hot", rec.Weather.Tag)
	require.NotNil(t, rec.Weather.Temperature)
	assert.InDelta(t, 31.5, *rec.Weather.Temperature, 0.001)
	assert.Empty(t, rec.Weather.City)
	assert.Equal(t, "owm", rec.Weather.Source)
}

func TestGenerateCoercesMalformedOutfits(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quiz/generate/", r.URL.Path)
		io.WriteString(w, `{"outfits": {"not": "an array"}}`)
	})

	outfits, err := c.Generate(context.Background(), QuizRequest{ImageCount: 4})
	require.NoError(t, err)
	assert.NotNil(t, outfits)
	assert.Empty(t, outfits)
}

func TestNormalizeWeather(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected *Weather
	}{
		{"not an object", `"sunny"`, nil},
		{"null", `null`, nil},
		{"unknown tag is not applied", `{"requested":1,"applied":true,"tag":"mild"}`, &Weather{Requested: true}},
		{"cold with numeric temperature", `{"applied":true,"tag":"cold","temperature":-3,"city":" Oslo "}`,
			&Weather{Applied: true, Tag: "cold", Temperature: ptr(-3), City: "Oslo"}},
		{"unparseable temperature", `{"temperature":"warm"}`, &Weather{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeWeather(json.RawMessage(tt.raw)))
		})
	}
}

func ptr(f float64) *float64 { return &f }

func TestAPIErrorCarriesServerMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"Invalid credentials"}`)
	})

	_, err := c.Login(context.Background(), Credentials{Email: "a@b.co", Password: "x"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func TestLoginAndSignup(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		switch r.URL.Path {
		case "/api/login_mongo/":
			_, hasName := creds["displayName"]
			assert.False(t, hasName)
		case "/api/signup_mongo/":
			assert.Equal(t, "Jane", creds["displayName"])
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, `{"access":"acc","refresh":"ref","user":{"email":"jane@example.com","isAdmin":true}}`)
	})

	resp, err := c.Login(context.Background(), Credentials{Email: "jane@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "acc", resp.Access)
	assert.True(t, resp.User.IsAdmin)

	resp, err = c.Signup(context.Background(), Credentials{Email: "jane@example.com", Password: "pw", DisplayName: "Jane"})
	require.NoError(t, err)
	assert.Equal(t, "ref", resp.Refresh)
}

func TestWardrobe(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "/api/get_wardrobe/", r.URL.Path)
			io.WriteString(w, `{"wardrobe":[{"name":"Brunch","image":"b.png"}]}`)
		case http.MethodDelete:
			assert.Equal(t, "/api/wardrobe/Sunday%20Brunch/", r.URL.EscapedPath())
			w.WriteHeader(http.StatusNoContent)
		}
	})

	_, err := c.Wardrobe(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrUnauthorized)

	items, err := c.Wardrobe(context.Background(), "good")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Brunch", items[0].ID)
	assert.Equal(t, []string{}, items[0].Tags)

	require.NoError(t, c.DeleteWardrobeItem(context.Background(), "good", "Sunday Brunch"))
	assert.Error(t, c.DeleteWardrobeItem(context.Background(), "good", " "))
}

func TestSaveImage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/save_image/", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "look.png", body["filename"])
		assert.Equal(t, []any{}, body["tags"])
		w.WriteHeader(http.StatusCreated)
	})

	err := c.SaveImage(context.Background(), "tok", SaveImageRequest{Filename: "look.png", ImageURL: "https://cdn/look.png"})
	assert.NoError(t, err)
}

func TestInstantOutfits(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []any{}, body["exclude_names"])
		io.WriteString(w, `{"outfits":[{"name":"X","image":"x.png"}],"uniqueExhausted":true}`)
	})

	resp, err := c.InstantOutfits(context.Background(), InstantRequest{Vibe: "sunny", ImageCount: 1})
	require.NoError(t, err)
	assert.True(t, resp.UniqueExhausted)
	require.Len(t, resp.Outfits, 1)
}

func TestRegisterEarlyAccess(t *testing.T) {
	status := "ok"
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["consent"])
		json.NewEncoder(w).Encode(map[string]string{"status": status, "message": "Thanks!"})
	})

	_, err := c.RegisterEarlyAccess(context.Background(), "not-an-email")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	msg, err := c.RegisterEarlyAccess(context.Background(), "a@b.co")
	require.NoError(t, err)
	assert.Equal(t, "Thanks!", msg)

	status = "duplicate"
	_, err = c.RegisterEarlyAccess(context.Background(), "a@b.co")
	assert.ErrorContains(t, err, "Thanks!")
}

func TestListAndExportEarlyAccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/early_access/list/":
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			assert.Equal(t, "20", r.URL.Query().Get("page_size"))
			io.WriteString(w, `{"items":[{"id":"1","email":"a@b.co","consent":true}],"total":21,"page":2,"page_size":20}`)
		case "/api/early_access/export/":
			if r.Header.Get("Authorization") == "" {
				w.WriteHeader(http.StatusForbidden)
				io.WriteString(w, `{"detail":"Admin only"}`)
				return
			}
			w.Write([]byte("PK\x03\x04xlsx"))
		}
	})

	page, err := c.ListEarlyAccess(context.Background(), "tok", 2, 20)
	require.NoError(t, err)
	assert.Equal(t, 21, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "a@b.co", page.Items[0].Email)

	var buf bytes.Buffer
	n, err := c.ExportEarlyAccess(context.Background(), "tok", &buf)
	require.NoError(t, err)
	assert.EqualValues(t, buf.Len(), n)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))

	_, err = c.ExportEarlyAccess(context.Background(), "", &buf)
	assert.ErrorContains(t, err, "Admin only")
}
