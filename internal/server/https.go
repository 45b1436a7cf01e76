package server

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strings"

	"golang.org/x/crypto/acme/autocert"

	"github.com/markb/socialite/internal/log"
)

// ValidateDomain checks that a domain can be used for a Let's Encrypt
// certificate: public name, not localhost, not an IP, not malformed. The
// callback redirect URI is https in any real deployment, so serving TLS
// directly is the common mode.
func ValidateDomain(domain string) error {
	if domain == "" {
		return fmt.Errorf("domain required for HTTPS")
	}

	lower := strings.ToLower(domain)
	if lower == "localhost" {
		return fmt.Errorf("Let's Encrypt requires a public domain, not localhost. Use a reverse proxy for local HTTPS")
	}
	if ip := net.ParseIP(domain); ip != nil {
		return fmt.Errorf("Let's Encrypt requires a domain name, not an IP address")
	}
	if strings.HasPrefix(domain, "[") && strings.HasSuffix(domain, "]") {
		return fmt.Errorf("Let's Encrypt requires a domain name, not an IP address")
	}
	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") ||
		strings.HasPrefix(domain, "-") || strings.HasSuffix(domain, "-") ||
		strings.Contains(domain, "..") {
		return fmt.Errorf("invalid domain format: %s", domain)
	}
	return nil
}

// ListenAndServeTLS serves the router over HTTPS with autocert-managed
// certificates, plus a plain HTTP listener that answers ACME challenges and
// redirects everything else to HTTPS.
func (s *Server) ListenAndServeTLS(domain, certDir, httpsAddr, httpAddr string) error {
	if err := ValidateDomain(domain); err != nil {
		return err
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domain),
		Cache:      autocert.DirCache(certDir),
	}

	s.httpsServer = &http.Server{
		Addr:    httpsAddr,
		Handler: s.router,
		TLSConfig: &tls.Config{
			GetCertificate: manager.GetCertificate,
			NextProtos:     []string{"h2", "http/1.1"},
		},
	}
	s.httpRedirect = &http.Server{
		Addr:    httpAddr,
		Handler: manager.HTTPHandler(httpsRedirectHandler(domain)),
	}

	go func() {
		if err := s.httpRedirect.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http redirect listener failed", "error", err)
		}
	}()

	return s.httpsServer.ListenAndServeTLS("", "")
}

// httpsRedirectHandler redirects plain-HTTP requests to the HTTPS origin.
func httpsRedirectHandler(domain string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := "https://" + domain + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusMovedPermanently)
	})
}
