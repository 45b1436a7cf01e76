package oauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Clock skew tolerated when checking a state token's issuedAt against the
// local clock. Callback and initiator may run on different hosts.
const stateClockSkew = time.Minute

// SignState issues a self-verifying CSRF state token of the form
// "id.issuedAtMs.signature", where signature is the unpadded base64url
// HMAC-SHA256 of "id.issuedAtMs" under secret. The token needs no server-side
// storage, so independent stateless instances can serve the two legs of the
// flow.
func SignState(secret []byte) string {
	raw := fmt.Sprintf("%s.%d", uuid.NewString(), time.Now().UnixMilli())
	return raw + "." + stateSignature(secret, raw)
}

// VerifyState reports whether token is a well-formed state token carrying a
// valid signature under secret and an issuedAt no older than maxAge. It never
// returns an error: any malformed input is simply invalid.
func VerifyState(token string, secret []byte, maxAge time.Duration) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	id, issuedAt, sig := parts[0], parts[1], parts[2]
	if id == "" || issuedAt == "" || sig == "" {
		return false
	}

	expected := stateSignature(secret, id+"."+issuedAt)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return false
	}

	// The cookie TTL already bounds the token's lifetime, but the embedded
	// timestamp is checked too so a leaked token cannot outlive the flow.
	ms, err := strconv.ParseInt(issuedAt, 10, 64)
	if err != nil {
		return false
	}
	issued := time.UnixMilli(ms)
	now := time.Now()
	if issued.After(now.Add(stateClockSkew)) {
		return false
	}
	if maxAge > 0 && now.Sub(issued) > maxAge+stateClockSkew {
		return false
	}
	return true
}

func stateSignature(secret []byte, data string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
