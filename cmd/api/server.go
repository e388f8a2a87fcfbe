package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"dynamite/internal/shared/config"
	"dynamite/internal/shared/middleware"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Handler      http.Handler
	Addr         string
	TLSEnabled   bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
	AllowedHosts []string
}

// Servers is the API listener plus the optional HTTP to HTTPS redirect listener
type Servers struct {
	api      *http.Server
	redirect *http.Server
	cfg      ServerConfig
	logger   *zap.Logger
}

// NewServers builds the listeners without starting them
func NewServers(cfg ServerConfig, logger *zap.Logger) *Servers {
	s := &Servers{
		api: &http.Server{
			Addr:              cfg.Addr,
			Handler:           cfg.Handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		cfg:    cfg,
		logger: logger,
	}
	if cfg.TLSEnabled && cfg.RedirectHTTP {
		s.redirect = createRedirectServer(cfg.AllowedHosts)
	}
	return s
}

// Start serves in the background. The channel receives the API listener's
// error if it stops for any reason other than Shutdown.
func (s *Servers) Start() <-chan error {
	if s.redirect != nil {
		go func() {
			s.logger.Info("redirect listener starting", zap.String("addr", s.redirect.Addr))
			if err := s.redirect.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("redirect listener stopped", zap.Error(err))
			}
		}()
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("api listener starting", zap.String("addr", s.api.Addr), zap.Bool("tls", s.cfg.TLSEnabled))
		var err error
		if s.cfg.TLSEnabled {
			err = s.api.ListenAndServeTLS(s.cfg.CertPath, s.cfg.KeyPath)
		} else {
			err = s.api.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	return errc
}

// Shutdown drains in-flight requests, giving up after timeout
func (s *Servers) Shutdown(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if s.redirect != nil {
		if err := s.redirect.Shutdown(ctx); err != nil {
			s.logger.Error("redirect listener shutdown", zap.Error(err))
		}
	}
	if err := s.api.Shutdown(ctx); err != nil {
		s.logger.Error("api listener shutdown", zap.Error(err))
	}
	s.logger.Info("server stopped")
}

// createRedirectServer creates the plain HTTP listener that sends clients to HTTPS
func createRedirectServer(allowedHosts []string) *http.Server {
	return &http.Server{
		Addr:         ":80",
		Handler:      middleware.RedirectHTTPS(allowedHosts),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServerConfigFromConfig creates ServerConfig from application config.
func NewServerConfigFromConfig(handler http.Handler, cfg *config.Config) ServerConfig {
	return ServerConfig{
		Handler:      handler,
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		TLSEnabled:   cfg.TLS.Enabled,
		CertPath:     cfg.TLS.CertPath,
		KeyPath:      cfg.TLS.KeyPath,
		RedirectHTTP: cfg.TLS.RedirectHTTP,
		AllowedHosts: cfg.Server.AllowedHosts,
	}
}
