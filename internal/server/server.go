// Package server wires the account-link flow onto an HTTP server: the
// authorization initiator, the provider callback, and the supporting
// middleware.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/markb/socialite/internal/config"
	"github.com/markb/socialite/internal/db"
	"github.com/markb/socialite/internal/identity"
	"github.com/markb/socialite/internal/log"
	"github.com/markb/socialite/internal/oauth"
	"github.com/markb/socialite/internal/session"
	"github.com/markb/socialite/internal/store"
)

type Server struct {
	cfg         *config.Config
	router      *chi.Mux
	provider    *oauth.Provider
	sessions    *session.Manager
	verifier    *identity.Verifier
	connections *store.Store

	// HTTP server(s) for graceful shutdown
	httpServer   *http.Server
	httpsServer  *http.Server
	httpRedirect *http.Server
}

// New assembles a server from configuration and an open database. Each
// request is stateless; the only cross-request state is the browser's flow
// cookies and the connections table.
func New(cfg *config.Config, database *db.DB) *Server {
	identity.Init([]byte(cfg.IdentitySecret))
	verifier, _ := identity.Default()

	s := &Server{
		cfg:    cfg,
		router: chi.NewRouter(),
		provider: oauth.NewProvider(oauth.ProviderConfig{
			Name:         cfg.Provider,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			AuthURL:      cfg.AuthorizeURL,
			TokenURL:     cfg.TokenURL,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			ClientAuth:   cfg.ClientAuth,
		}),
		sessions:    session.NewManager([]byte(cfg.SessionSecret), cfg.CookieTTL, cfg.CookieSecure),
		verifier:    verifier,
		connections: store.New(database.DB),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// CORS for browser-based apps
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS", "HEAD"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.router.Use(log.RequestLogger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/auth/v1", func(r chi.Router) {
		r.Get("/link", s.handleLinkStart)
		r.Get("/link/callback", s.handleLinkCallback)
	})
}

// Router returns the underlying router for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) ListenAndServe(addr string) error {
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server(s).
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.httpsServer != nil {
		if err := s.httpsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTPS server: %w", err))
		}
	}
	if s.httpRedirect != nil {
		if err := s.httpRedirect.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP redirect server: %w", err))
		}
	}
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP server: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}
