package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager() *Manager {
	return NewManager([]byte("test-session-secret-min-32-chars!"), 10*time.Minute, true)
}

func setAndCapture(t *testing.T, m *Manager, name, value string) *http.Cookie {
	w := httptest.NewRecorder()
	require.NoError(t, m.Set(w, name, value))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestSetCookieAttributes(t *testing.T) {
	m := testManager()
	c := setAndCapture(t, m, VerifierCookie, "some-verifier")

	assert.Equal(t, VerifierCookie, c.Name)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 600, c.MaxAge)
	// Value is codec-encoded, never the raw secret.
	assert.NotContains(t, c.Value, "some-verifier")
}

func TestRoundTrip(t *testing.T) {
	m := testManager()
	c := setAndCapture(t, m, StateCookie, "id.1234.sig")

	r := httptest.NewRequest("GET", "/auth/v1/link/callback", nil)
	r.AddCookie(c)

	got, err := m.Read(r, StateCookie)
	require.NoError(t, err)
	assert.Equal(t, "id.1234.sig", got)
}

func TestReadMissingCookie(t *testing.T) {
	m := testManager()
	r := httptest.NewRequest("GET", "/auth/v1/link/callback", nil)

	_, err := m.Read(r, VerifierCookie)
	assert.Error(t, err)
}

func TestReadTamperedCookie(t *testing.T) {
	m := testManager()
	c := setAndCapture(t, m, VerifierCookie, "verifier-value")

	c.Value = "x" + c.Value[1:]
	r := httptest.NewRequest("GET", "/auth/v1/link/callback", nil)
	r.AddCookie(c)

	_, err := m.Read(r, VerifierCookie)
	assert.Error(t, err)
}

func TestReadWrongKey(t *testing.T) {
	m := testManager()
	c := setAndCapture(t, m, VerifierCookie, "verifier-value")

	other := NewManager([]byte("entirely-different-secret-key-00"), 10*time.Minute, true)
	r := httptest.NewRequest("GET", "/auth/v1/link/callback", nil)
	r.AddCookie(c)

	_, err := other.Read(r, VerifierCookie)
	assert.Error(t, err)
}

func TestClear(t *testing.T) {
	m := testManager()
	w := httptest.NewRecorder()
	m.Clear(w, StateCookie)

	header := w.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(header, StateCookie+"="))
	assert.Contains(t, header, "Max-Age=0")
}
