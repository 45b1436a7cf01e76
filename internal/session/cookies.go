// Package session carries the per-flow secrets (PKCE verifier, signed state)
// in short-lived tamper-resistant browser cookies. The browser holds the only
// copy; nothing is stored server-side between the two legs of the flow.
package session

import (
	"crypto/sha256"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

// Cookie names for the two flow secrets.
const (
	StateCookie    = "link_state"
	VerifierCookie = "link_pkce_verifier"
)

// Manager encodes and decodes the flow cookies. Values are HMAC-authenticated
// by securecookie so a client cannot alter them, and age-limited both by the
// cookie Max-Age and by securecookie's own timestamp check.
type Manager struct {
	codec  *securecookie.SecureCookie
	maxAge time.Duration
	secure bool
}

// NewManager derives the cookie hash key from the signing secret. secure
// controls the Secure attribute and should only be false for local
// development over plain HTTP.
func NewManager(secret []byte, maxAge time.Duration, secure bool) *Manager {
	hashKey := sha256.Sum256(secret)
	codec := securecookie.New(hashKey[:], nil)
	codec.MaxAge(int(maxAge.Seconds()))

	return &Manager{
		codec:  codec,
		maxAge: maxAge,
		secure: secure,
	}
}

// Set writes one flow cookie: whole-application path, HTTP-only, SameSite=Lax,
// bounded Max-Age.
func (m *Manager) Set(w http.ResponseWriter, name, value string) error {
	encoded, err := m.codec.Encode(name, value)
	if err != nil {
		return fmt.Errorf("failed to encode %s cookie: %w", name, err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read returns the decoded value of one flow cookie. A missing, expired, or
// tampered cookie is an error; the flow cannot continue without it.
func (m *Manager) Read(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", fmt.Errorf("missing %s cookie: %w", name, err)
	}

	var value string
	if err := m.codec.Decode(name, c.Value, &value); err != nil {
		return "", fmt.Errorf("invalid %s cookie: %w", name, err)
	}
	return value, nil
}

// Clear expires one flow cookie (Max-Age=0) so the secrets do not outlive the
// callback.
func (m *Manager) Clear(w http.ResponseWriter, name string) {
	// MaxAge < 0 serializes as Max-Age=0, deleting the cookie.
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
