// Package identity resolves the application user behind a callback request.
// The identity provider is external; this package only verifies the bearer
// token it issued and extracts the stable subject identifier.
package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

// UnknownSubject is the sentinel recorded when a credential is persisted
// without a verified application user.
const UnknownSubject = "unknown"

var (
	ErrInvalidToken   = errors.New("invalid identity token")
	ErrNotInitialized = errors.New("identity verifier not initialized")
)

// Verifier validates identity-provider bearer tokens.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier for tokens signed with the given secret.
func NewVerifier(secret []byte) *Verifier {
	return &Verifier{secret: secret}
}

// Verify parses and validates an HS256 bearer token and returns its subject.
// Any parse, signature, or expiry failure maps to ErrInvalidToken.
func (v *Verifier) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

var (
	defaultMu       sync.Mutex
	defaultVerifier *Verifier
)

// Init sets up the process-wide verifier. Calling it again is a no-op, so
// independent request paths can initialize lazily without coordination.
func Init(secret []byte) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultVerifier != nil {
		return
	}
	defaultVerifier = NewVerifier(secret)
}

// Default returns the process-wide verifier, or an error if Init has not run.
func Default() (*Verifier, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultVerifier == nil {
		return nil, ErrNotInitialized
	}
	return defaultVerifier, nil
}

// BearerToken extracts the bearer credential from a request's Authorization
// header. ok is false when the header is absent or not a Bearer scheme.
func BearerToken(r *http.Request) (token string, ok bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}
	token = strings.TrimSpace(strings.TrimPrefix(h, prefix))
	return token, token != ""
}
