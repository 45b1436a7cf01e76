package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/markb/socialite/internal/config"
	"github.com/markb/socialite/internal/identity"
	"github.com/markb/socialite/internal/log"
	"github.com/markb/socialite/internal/oauth"
	"github.com/markb/socialite/internal/session"
	"github.com/markb/socialite/internal/store"
)

// Deadline applied to the outbound token exchange. A timeout is a terminal
// failure of the attempt, never a partial success.
const exchangeTimeout = 20 * time.Second

// handleLinkStart initiates the account-link flow.
// GET /auth/v1/link
//
// Generates the PKCE pair, signs a state token, hands both to the browser as
// short-lived cookies, and redirects to the provider's consent screen. The
// only failure paths are missing configuration and an unavailable random
// source.
func (s *Server) handleLinkStart(w http.ResponseWriter, r *http.Request) {
	if s.cfg.ClientID == "" || s.cfg.SessionSecret == "" {
		s.linkError(w, http.StatusInternalServerError, "link flow not configured")
		return
	}

	pkce, err := oauth.GeneratePKCE()
	if err != nil {
		s.linkError(w, http.StatusInternalServerError, "failed to generate code verifier")
		return
	}

	state := oauth.SignState([]byte(s.cfg.SessionSecret))

	if err := s.sessions.Set(w, session.StateCookie, state); err != nil {
		s.linkError(w, http.StatusInternalServerError, "failed to issue session cookie")
		return
	}
	if err := s.sessions.Set(w, session.VerifierCookie, pkce.Verifier); err != nil {
		s.linkError(w, http.StatusInternalServerError, "failed to issue session cookie")
		return
	}

	http.Redirect(w, r, s.provider.AuthCodeURL(state, pkce.Challenge), http.StatusFound)
}

// handleLinkCallback consumes the provider redirect.
// GET /auth/v1/link/callback?code=...&state=...
//
// Progression: parameter checks, state verification against both the
// signature and the state cookie, verifier retrieval, code exchange, identity
// resolution, merge-upsert, redirect home. Every failure is terminal; the
// user restarts from the initiator, which mints fresh secrets.
func (s *Server) handleLinkCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// A provider denial arrives as error/error_description instead of a code.
	if errParam := q.Get("error"); errParam != "" {
		desc := q.Get("error_description")
		if desc == "" {
			desc = errParam
		}
		s.linkError(w, http.StatusBadRequest, "provider returned an error: "+desc)
		return
	}

	code := q.Get("code")
	state := q.Get("state")
	if code == "" || state == "" {
		s.linkError(w, http.StatusBadRequest, "code and state parameters are required")
		return
	}

	// CSRF gate. No detail beyond a generic message leaks to the client,
	// and nothing upstream is contacted.
	if !oauth.VerifyState(state, []byte(s.cfg.SessionSecret), s.cfg.CookieTTL) {
		log.Warn("rejected callback with invalid state signature",
			"request_id", log.GetRequestID(r.Context()), "remote_addr", r.RemoteAddr)
		s.linkError(w, http.StatusBadRequest, "invalid state")
		return
	}
	cookieState, err := s.sessions.Read(r, session.StateCookie)
	if err != nil || cookieState != state {
		log.Warn("rejected callback with missing or mismatched state cookie",
			"request_id", log.GetRequestID(r.Context()), "remote_addr", r.RemoteAddr)
		s.linkError(w, http.StatusBadRequest, "invalid state")
		return
	}

	verifier, err := s.sessions.Read(r, session.VerifierCookie)
	if err != nil {
		s.linkError(w, http.StatusBadRequest, "missing code verifier")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), exchangeTimeout)
	defer cancel()

	tokens, err := s.provider.Exchange(ctx, code, verifier)
	if err != nil {
		var uerr *oauth.UpstreamError
		if errors.As(err, &uerr) {
			// Mirror the upstream response so callers can diagnose the
			// rejection.
			s.mirrorUpstream(w, uerr)
			return
		}
		log.Error("token exchange failed", "error", err,
			"request_id", log.GetRequestID(r.Context()))
		s.linkError(w, http.StatusBadGateway, "token exchange failed")
		return
	}

	subject, ok := s.resolveSubject(r)
	if !ok {
		s.linkError(w, http.StatusUnauthorized, "identity verification required")
		return
	}

	var expiresAt *int64
	if tokens.ExpiresIn > 0 {
		ms := time.Now().UnixMilli() + tokens.ExpiresIn*1000
		expiresAt = &ms
	}

	conn := &store.Connection{
		Key:          store.Key(subject, s.provider.Name()),
		UID:          subject,
		Provider:     s.provider.Name(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
		ExpiresAtMs:  expiresAt,
	}
	if err := s.connections.Upsert(conn); err != nil {
		// The provider already issued the token; nothing to roll back. The
		// user can only re-run the flow.
		log.Error("failed to persist linked credential", "error", err,
			"key", conn.Key, "request_id", log.GetRequestID(r.Context()))
		s.linkError(w, http.StatusInternalServerError, "failed to store credential")
		return
	}

	log.Info("linked credential stored", "key", conn.Key, "provider", conn.Provider,
		"request_id", log.GetRequestID(r.Context()))

	s.sessions.Clear(w, session.StateCookie)
	s.sessions.Clear(w, session.VerifierCookie)
	http.Redirect(w, r, s.cfg.HomeURL, http.StatusFound)
}

// resolveSubject maps the callback's optional bearer credential to a subject
// identifier. An absent or unverifiable credential either degrades to the
// "unknown" sentinel or fails the flow, per configuration.
func (s *Server) resolveSubject(r *http.Request) (string, bool) {
	if token, present := identity.BearerToken(r); present {
		sub, err := s.verifier.Verify(token)
		if err == nil {
			return sub, true
		}
		log.Warn("identity verification failed", "error", err,
			"request_id", log.GetRequestID(r.Context()))
	}

	if s.cfg.OnUnverifiedIdentity == config.OnUnverifiedReject {
		return "", false
	}
	return identity.UnknownSubject, true
}

// linkError writes a JSON error response.
func (s *Server) linkError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":             http.StatusText(status),
		"error_description": message,
	})
}

// mirrorUpstream relays a token-endpoint rejection unchanged.
func (s *Server) mirrorUpstream(w http.ResponseWriter, uerr *oauth.UpstreamError) {
	ct := uerr.ContentType
	if ct == "" {
		ct = "application/json"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(uerr.StatusCode)
	w.Write(uerr.Body)
}
