package oauth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// Client auth conventions for the token endpoint.
const (
	ClientAuthParams = "params" // client_id (+secret) in the form body
	ClientAuthBasic  = "basic"  // HTTP Basic Authorization header
)

// ProviderConfig describes one authorization-code+PKCE provider. A single
// canonical flow is parameterized by this instead of one implementation per
// provider.
type ProviderConfig struct {
	Name         string
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURL  string
	Scopes       []string
	ClientAuth   string
}

// DefaultXConfig returns the provider configuration for X (Twitter), the
// provider this service was originally deployed against. X treats the app as
// a public client: client_id goes in the token-request body and no secret is
// required.
func DefaultXConfig() ProviderConfig {
	return ProviderConfig{
		Name:       "x",
		AuthURL:    "https://x.com/i/oauth2/authorize",
		TokenURL:   "https://api.twitter.com/2/oauth2/token",
		Scopes:     []string{"tweet.read", "tweet.write", "users.read", "offline.access"},
		ClientAuth: ClientAuthParams,
	}
}

// Provider builds consent-screen URLs and exchanges authorization codes for
// one configured provider.
type Provider struct {
	name string
	conf *oauth2.Config
}

// NewProvider creates a provider from its configuration.
func NewProvider(cfg ProviderConfig) *Provider {
	authStyle := oauth2.AuthStyleInParams
	if cfg.ClientAuth == ClientAuthBasic {
		authStyle = oauth2.AuthStyleInHeader
	}

	return &Provider{
		name: cfg.Name,
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: authStyle,
			},
		},
	}
}

// Name returns the provider identifier used in persisted record keys.
func (p *Provider) Name() string {
	return p.name
}

// AuthCodeURL builds the fully-qualified consent-screen redirect URL with
// response_type=code, client_id, redirect_uri, scope, state, code_challenge
// and code_challenge_method=S256.
func (p *Provider) AuthCodeURL(state, challenge string) string {
	return p.conf.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// Exchange performs the single authorization_code POST to the token endpoint
// with the PKCE verifier. A non-success upstream status is returned as an
// *UpstreamError carrying the upstream status and body unchanged; the caller
// mirrors it rather than synthesizing a generic failure. No retries: a failed
// exchange ends the attempt and the user restarts from the initiator.
func (p *Provider) Exchange(ctx context.Context, code, verifier string) (*Tokens, error) {
	tok, err := p.conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil {
			return nil, &UpstreamError{
				StatusCode:  rerr.Response.StatusCode,
				Body:        rerr.Body,
				ContentType: rerr.Response.Header.Get("Content-Type"),
			}
		}
		return nil, fmt.Errorf("%s token request failed: %w", p.name, err)
	}

	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%s returned empty access token", p.name)
	}

	return &Tokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiresIn:    tok.ExpiresIn,
	}, nil
}
