package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidEmail is returned before any request is made when an early
// access email is obviously malformed.
var ErrInvalidEmail = errors.New("please enter a valid email address")

var earlyAccessEmail = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

type Credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

// AuthResponse is returned by both login and signup.
type AuthResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    struct {
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		IsAdmin     bool   `json:"isAdmin"`
	} `json:"user"`
}

func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/login_mongo/", "", creds, &resp); err != nil {
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	return &resp, nil
}

func (c *Client) Signup(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/signup_mongo/", "", creds, &resp); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return &resp, nil
}

// EarlyAccessEntry is one early-access registration.
type EarlyAccessEntry struct {
	ID        string `json:"id" parquet:"id"`
	Email     string `json:"email" parquet:"email"`
	Consent   bool   `json:"consent" parquet:"consent"`
	CreatedAt string `json:"created_at,omitempty" parquet:"created_at,optional"`
}

// EarlyAccessPage is one page of the registration list.
type EarlyAccessPage struct {
	Items    []EarlyAccessEntry `json:"items"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// RegisterEarlyAccess signs email up for early access and returns the
// server's confirmation message. Anything other than status "ok" is an error.
func (c *Client) RegisterEarlyAccess(ctx context.Context, email string) (string, error) {
	if !earlyAccessEmail.MatchString(email) {
		return "", ErrInvalidEmail
	}
	body := map[string]any{"email": email, "consent": true}
	var resp struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/early_access/", "", body)
	if err != nil {
		return "", err
	}
	data, sendErr := c.send(req)
	if sendErr != nil {
		return "", fmt.Errorf("failed to register for early access: %w", sendErr)
	}
	if err := decodeLenient(data, &resp); err != nil || resp.Status != "ok" {
		msg := strings.TrimSpace(resp.Message)
		if msg == "" {
			msg = "registration was not accepted"
		}
		return "", fmt.Errorf("failed to register for early access: %s", msg)
	}
	return resp.Message, nil
}

// ListEarlyAccess fetches one page of registrations. Requires an admin token.
func (c *Client) ListEarlyAccess(ctx context.Context, token string, page, pageSize int) (*EarlyAccessPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))

	var resp EarlyAccessPage
	if err := c.doJSON(ctx, http.MethodGet, "/api/early_access/list/?"+q.Encode(), token, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to load registrations: %w", err)
	}
	if resp.Items == nil {
		resp.Items = []EarlyAccessEntry{}
	}
	return &resp, nil
}

// ExportEarlyAccess streams the xlsx export into w.
func (c *Client) ExportEarlyAccess(ctx context.Context, token string, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/early_access/export/", token, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to export registrations: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("failed to export registrations: %w", &APIError{Status: resp.StatusCode, Message: errorMessage(body)})
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to write export: %w", err)
	}
	return n, nil
}
