// Package auth keeps the signed-in profile in the local store and checks
// signup form input before it is sent to the backend.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dressi-app/dressi/internal/backend"
	"github.com/dressi-app/dressi/internal/localstore"
)

var (
	ErrMissingCredentials = errors.New("please enter both email and password")
	ErrTermsNotAccepted   = errors.New("please accept the terms to continue")
	ErrInvalidEmail       = errors.New("please enter a valid email address")
	ErrWeakPassword       = errors.New("password must be at least 8 characters, include an uppercase letter and a special character")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const passwordSpecials = "!@#$%^&*(),.?\":{}|<>\\/~`_[]-+="

// User is the persisted session profile.
type User struct {
	Email        string `json:"email"`
	DisplayName  string `json:"displayName,omitempty"`
	Token        string `json:"token,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	IsAdmin      bool   `json:"isAdmin,omitempty"`
}

// SignedIn reports whether the profile carries an access token.
func (u *User) SignedIn() bool {
	return u != nil && strings.TrimSpace(u.Token) != ""
}

// Load returns the stored profile, or nil when none is stored or the stored
// value cannot be parsed.
func Load(store *localstore.Store) *User {
	raw, ok, err := store.Get(localstore.KeyUser)
	if err != nil || !ok || raw == "" {
		return nil
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		slog.Warn("Failed to load auth user", "error", err)
		return nil
	}
	return &u
}

func Save(store *localstore.Store, u User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return store.Set(localstore.KeyUser, string(data))
}

func Clear(store *localstore.Store) error {
	return store.Remove(localstore.KeyUser)
}

// FromAuthResponse builds the profile from a login or signup response. The
// submitted email and name fill in whatever the server left out; a missing
// display name defaults to the local part of the email.
func FromAuthResponse(resp *backend.AuthResponse, email, name string) User {
	u := User{Email: email, DisplayName: strings.TrimSpace(name)}
	if resp == nil {
		return u
	}
	if resp.User.Email != "" {
		u.Email = resp.User.Email
	}
	if resp.User.DisplayName != "" {
		u.DisplayName = resp.User.DisplayName
	}
	if u.DisplayName == "" {
		u.DisplayName, _, _ = strings.Cut(u.Email, "@")
	}
	u.Token = resp.Access
	u.RefreshToken = resp.Refresh
	u.IsAdmin = resp.User.IsAdmin
	return u
}

func ValidateLogin(email, password string) error {
	if email == "" || password == "" {
		return ErrMissingCredentials
	}
	return nil
}

// SignupForm mirrors the fields of the signup screen.
type SignupForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	AcceptTerms     bool
}

func (f SignupForm) Validate() error {
	if !f.AcceptTerms {
		return ErrTermsNotAccepted
	}
	if !ValidEmail(f.Email) {
		return ErrInvalidEmail
	}
	if !StrongPassword(f.Password) {
		return ErrWeakPassword
	}
	if f.Password != f.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return nil
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// StrongPassword requires eight characters, an uppercase letter and one of
// the accepted special characters.
func StrongPassword(password string) bool {
	if len([]rune(password)) < 8 {
		return false
	}
	var upper, special bool
	for _, r := range password {
		if r >= 'A' && r <= 'Z' {
			upper = true
		}
		if strings.ContainsRune(passwordSpecials, r) {
			special = true
		}
	}
	return upper && special
}
