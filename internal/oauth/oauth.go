// Package oauth implements the provider-facing half of the account link
// flow: PKCE pair generation, stateless HMAC-signed state tokens, and the
// authorization-code exchange (RFC 6749 + RFC 7636).
package oauth

import "fmt"

// Tokens holds the result of a successful code exchange. It exists only for
// the duration of the callback request; the persisted record is derived from
// it by the store.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64 // seconds; 0 when the provider omitted expires_in
}

// UpstreamError carries a non-success token-endpoint response unchanged so
// the callback handler can mirror it to the client.
type UpstreamError struct {
	StatusCode  int
	Body        []byte
	ContentType string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("token endpoint returned %d: %s", e.StatusCode, e.Body)
}
