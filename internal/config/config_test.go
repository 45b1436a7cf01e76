package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("SOCIALITE_CLIENT_ID", "cid")
	t.Setenv("SOCIALITE_SESSION_SECRET", "secret")
	t.Setenv("SOCIALITE_REDIRECT_URI", "https://example.com/auth/v1/link/callback")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "x", cfg.Provider)
	assert.Equal(t, "https://x.com/i/oauth2/authorize", cfg.AuthorizeURL)
	assert.Equal(t, "https://api.twitter.com/2/oauth2/token", cfg.TokenURL)
	assert.Equal(t, []string{"tweet.read", "tweet.write", "users.read", "offline.access"}, cfg.Scopes)
	assert.Equal(t, "params", cfg.ClientAuth)
	assert.Equal(t, 10*time.Minute, cfg.CookieTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, OnUnverifiedAnonymize, cfg.OnUnverifiedIdentity)
	assert.Equal(t, "/", cfg.HomeURL)
}

func TestCookieTTLClamped(t *testing.T) {
	setRequired(t)

	t.Setenv("SOCIALITE_COOKIE_TTL", "1m")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.CookieTTL)

	t.Setenv("SOCIALITE_COOKIE_TTL", "2h")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.CookieTTL)
}

func TestValidateMissingRequired(t *testing.T) {
	cases := []string{"SOCIALITE_CLIENT_ID", "SOCIALITE_SESSION_SECRET", "SOCIALITE_REDIRECT_URI"}
	for _, missing := range cases {
		t.Run(missing, func(t *testing.T) {
			setRequired(t)
			t.Setenv(missing, "")

			cfg, err := Load()
			require.NoError(t, err)
			assert.ErrorContains(t, cfg.Validate(), missing)
		})
	}
}

func TestValidateEnums(t *testing.T) {
	setRequired(t)

	t.Setenv("SOCIALITE_CLIENT_AUTH", "header")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())

	t.Setenv("SOCIALITE_CLIENT_AUTH", "basic")
	t.Setenv("SOCIALITE_ON_UNVERIFIED_IDENTITY", "panic")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())

	t.Setenv("SOCIALITE_ON_UNVERIFIED_IDENTITY", "reject")
	cfg, err = Load()
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}
