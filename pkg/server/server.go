package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/gateway-admin/pkg/access"
	"github.com/doodlesbykumbi/gateway-admin/pkg/config"
	"github.com/doodlesbykumbi/gateway-admin/pkg/resolver"
	"github.com/doodlesbykumbi/gateway-admin/pkg/secretbox"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/middleware"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/gateway-admin/pkg/server/store/gorm"
)

// Server wires the stores and services behind the admin REST API.
type Server struct {
	Router *mux.Router
	DB     *gorm.DB
	Cipher secretbox.SymmetricCipher

	PreferencesStore  store.PreferencesStore
	AccessGrantsStore store.AccessGrantsStore
	CredentialsStore  store.CredentialsStore
	CatalogStore      store.CatalogStore
	GroupsStore       store.GroupsStore
	HealthStore       store.HealthStore

	Resolver   *resolver.Resolver
	Registry   *access.Registry
	Aggregator *access.Aggregator

	JWTMiddleware *middleware.JWTAuthenticator
	Metrics       *middleware.Metrics
	Gatherer      prometheus.Gatherer

	config atomic.Pointer[config.GatewayConfig]
	srv    *http.Server
}

// Option customises a Server at construction.
type Option func(*Server)

// WithJWTAuthenticator overrides the authenticator built from the environment.
func WithJWTAuthenticator(j *middleware.JWTAuthenticator) Option {
	return func(s *Server) {
		s.JWTMiddleware = j
	}
}

// WithRegistry uses reg for request metrics instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.Metrics = middleware.NewMetrics(reg)
		s.Gatherer = reg
	}
}

// NewServer builds a Server backed by GORM stores on db. When
// cfg.AuthEnabled is set and no authenticator is supplied, the signing
// secret is read from GATEWAY_JWT_SECRET.
func NewServer(
	cfg *config.GatewayConfig,
	db *gorm.DB,
	cipher secretbox.SymmetricCipher,
	host string,
	port string,
	opts ...Option,
) (*Server, error) {
	router := mux.NewRouter().UseEncodedPath()

	s := &Server{
		Router:            router,
		DB:                db,
		Cipher:            cipher,
		PreferencesStore:  gormstore.NewPreferencesStore(db),
		AccessGrantsStore: gormstore.NewAccessGrantsStore(db),
		CredentialsStore:  gormstore.NewCredentialsStore(db, cipher),
		CatalogStore:      gormstore.NewCatalogStore(db),
		GroupsStore:       gormstore.NewGroupsStore(db),
		HealthStore:       gormstore.NewHealthStore(db),
	}
	s.config.Store(cfg)
	s.Resolver = resolver.New(s.PreferencesStore)
	s.Registry = access.NewRegistry(s.AccessGrantsStore, s.CredentialsStore)
	s.Aggregator = access.NewAggregator(s.AccessGrantsStore, s.CredentialsStore, s.GroupsStore, s.CatalogStore)

	for _, opt := range opts {
		opt(s)
	}

	if cfg.MetricsEnabled {
		if s.Metrics == nil {
			reg := prometheus.NewRegistry()
			s.Metrics = middleware.NewMetrics(reg)
			s.Gatherer = reg
		}
		router.Use(s.Metrics.Middleware)
	}

	if err := middleware.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	if cfg.AuthEnabled {
		if s.JWTMiddleware == nil {
			j, err := middleware.NewJWTAuthenticatorFromEnv(cfg.JWTIssuer, cfg.JWTAudience)
			if err != nil {
				return nil, err
			}
			s.JWTMiddleware = j
		}
		router.Use(s.JWTMiddleware.Middleware)
	} else {
		log.Warn("authentication is disabled; every request is anonymous")
	}

	s.srv = &http.Server{
		Handler:      s.Handler(),
		Addr:         net.JoinHostPort(host, port),
		WriteTimeout: cfg.RequestTimeout(),
		ReadTimeout:  cfg.RequestTimeout(),
	}

	return s, nil
}

// Config returns the active configuration.
func (s *Server) Config() *config.GatewayConfig {
	return s.config.Load()
}

// SetConfig swaps the active configuration, e.g. after a SIGHUP reload.
// Settings read per request (strict keys, CORS, trusted proxies) take effect
// immediately.
func (s *Server) SetConfig(cfg *config.GatewayConfig) {
	if err := middleware.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.WithError(err).Warn("keeping previous trusted proxies")
	}
	s.config.Store(cfg)
}

// Handler returns the router wrapped with recovery, access logging and CORS.
func (s *Server) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOriginValidator(func(origin string) bool {
			return s.Config().IsOriginAllowed(origin)
		}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(log.StandardLogger()),
		handlers.PrintRecoveryStack(true),
	)(handlers.LoggingHandler(log.StandardLogger().Writer(), cors(s.Router)))
}

// Start listens and serves until Shutdown is called.
func (s *Server) Start() error {
	log.Infof("gateway-admin listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartWithListener serves on l until Shutdown is called.
func (s *Server) StartWithListener(l net.Listener) error {
	log.Infof("gateway-admin listening on %s", l.Addr())
	if err := s.srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}
