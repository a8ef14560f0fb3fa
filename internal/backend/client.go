// Package backend is the REST/JSON client for the Dressi API: quiz
// recommendations, wardrobe, instant outfits, accounts and early access.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dressi-app/dressi/internal/outfit"
)

const DefaultBaseURL = "http://localhost:8000"

// ErrUnauthorized is returned when the backend rejects the bearer token.
var ErrUnauthorized = errors.New("login required")

// APIError is a non-2xx response. Message carries the server's own
// explanation when it sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Client talks to one backend base URL.
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

// NewClient creates a client. An empty baseURL means DefaultBaseURL; a
// trailing slash is dropped.
func NewClient(baseURL string) *Client {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// URL joins path onto the base URL.
func (c *Client) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.BaseURL + path
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// send performs the request and returns the body of a 2xx response. Any
// other status becomes an *APIError.
func (c *Client) send(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(body)}
	}
	return body, nil
}

// doJSON sends a request and decodes a 2xx body into out when out is not nil.
// An empty body decodes as nothing.
func (c *Client) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	req, err := c.newRequest(ctx, method, path, token, in)
	if err != nil {
		return err
	}
	body, err := c.send(req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeLenient decodes body into out, treating an empty body as an empty
// object.
func decodeLenient(body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// errorMessage pulls the first non-blank error, detail or message string out
// of an error body.
func errorMessage(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"error", "detail", "message"} {
		var s string
		if err := json.Unmarshal(payload[key], &s); err == nil && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// decodeOutfits turns the outfits field of a response into records. Anything
// that is not an array yields no records, and entries that are not objects
// are skipped.
func decodeOutfits(raw json.RawMessage) []outfit.Outfit {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []outfit.Outfit{}
	}
	out := make([]outfit.Outfit, 0, len(items))
	for _, item := range items {
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			continue
		}
		var o outfit.Outfit
		if err := json.Unmarshal(trimmed, &o); err != nil {
			continue
		}
		out = append(out, o)
	}
	return out
}
