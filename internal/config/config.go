// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Behavior when the callback carries no verifiable application identity.
const (
	OnUnverifiedAnonymize = "anonymize" // persist under the "unknown" sentinel
	OnUnverifiedReject    = "reject"    // fail the callback with 401
)

// Cookie lifetime bounds. The flow secrets must outlive a consent screen
// round trip but not much more.
const (
	minCookieTTL = 5 * time.Minute
	maxCookieTTL = 15 * time.Minute
)

// Config is the full environment-driven configuration surface.
type Config struct {
	// Provider registration. RedirectURI must exactly match the URI
	// registered with the provider.
	ClientID     string `env:"SOCIALITE_CLIENT_ID"`
	ClientSecret string `env:"SOCIALITE_CLIENT_SECRET"`
	RedirectURI  string `env:"SOCIALITE_REDIRECT_URI"`

	// Provider endpoints; defaults target X.
	Provider     string   `env:"SOCIALITE_PROVIDER" envDefault:"x"`
	AuthorizeURL string   `env:"SOCIALITE_AUTHORIZE_URL" envDefault:"https://x.com/i/oauth2/authorize"`
	TokenURL     string   `env:"SOCIALITE_TOKEN_URL" envDefault:"https://api.twitter.com/2/oauth2/token"`
	Scopes       []string `env:"SOCIALITE_SCOPES" envSeparator:" " envDefault:"tweet.read tweet.write users.read offline.access"`
	ClientAuth   string   `env:"SOCIALITE_CLIENT_AUTH" envDefault:"params"`

	// Session secrets and cookies.
	SessionSecret string        `env:"SOCIALITE_SESSION_SECRET"`
	CookieTTL     time.Duration `env:"SOCIALITE_COOKIE_TTL" envDefault:"10m"`
	CookieSecure  bool          `env:"SOCIALITE_COOKIE_SECURE" envDefault:"true"`

	// Identity collaborator.
	IdentitySecret       string `env:"SOCIALITE_IDENTITY_SECRET"`
	OnUnverifiedIdentity string `env:"SOCIALITE_ON_UNVERIFIED_IDENTITY" envDefault:"anonymize"`

	// Where the browser lands after a successful link.
	HomeURL string `env:"SOCIALITE_HOME_URL" envDefault:"/"`

	// Logging.
	LogLevel  string `env:"SOCIALITE_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"SOCIALITE_LOG_FORMAT" envDefault:"text"`
}

// Load parses the environment, applies defaults, and clamps the cookie TTL to
// its allowed window. Missing required values are reported by Validate, not
// here, so callers can distinguish "unparseable" from "not configured".
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.CookieTTL < minCookieTTL {
		cfg.CookieTTL = minCookieTTL
	}
	if cfg.CookieTTL > maxCookieTTL {
		cfg.CookieTTL = maxCookieTTL
	}
	return &cfg, nil
}

// Validate checks the values the flow cannot run without.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("SOCIALITE_CLIENT_ID is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SOCIALITE_SESSION_SECRET is required")
	}
	if c.RedirectURI == "" {
		return fmt.Errorf("SOCIALITE_REDIRECT_URI is required")
	}
	if c.ClientAuth != "params" && c.ClientAuth != "basic" {
		return fmt.Errorf("SOCIALITE_CLIENT_AUTH must be params or basic, got %q", c.ClientAuth)
	}
	switch c.OnUnverifiedIdentity {
	case OnUnverifiedAnonymize, OnUnverifiedReject:
	default:
		return fmt.Errorf("SOCIALITE_ON_UNVERIFIED_IDENTITY must be anonymize or reject, got %q", c.OnUnverifiedIdentity)
	}
	return nil
}
