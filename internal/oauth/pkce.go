package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// PKCE is a verifier/challenge pair (RFC 7636). The verifier stays with the
// browser session; only the challenge is sent to the provider.
type PKCE struct {
	Verifier  string
	Challenge string
}

// GeneratePKCE produces a fresh pair from 32 bytes of crypto/rand entropy.
// The verifier is 43 characters of unpadded base64url; the challenge is the
// S256 transform of the verifier. Fails only if the random source does.
func GeneratePKCE() (*PKCE, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate code verifier: %w", err)
	}
	verifier := base64.RawURLEncoding.EncodeToString(b)
	return &PKCE{
		Verifier:  verifier,
		Challenge: S256Challenge(verifier),
	}, nil
}

// S256Challenge computes the S256 code challenge for a verifier.
func S256Challenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}
