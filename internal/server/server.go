// Package server serves the profile store REST API over gin.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/life-sheet/internal/common"
	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/Veraticus/life-sheet/internal/service"
	"github.com/gin-gonic/gin"
)

// Backend is the storage the server needs: the profile and scenario stores
// plus account management.
type Backend interface {
	service.ProfileStore
	service.ScenarioStore

	CreateUser(ctx context.Context, reg service.Registration) (*model.User, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	UpdateUser(ctx context.Context, id string, update service.UserUpdate) (*model.User, error)
	ChangePassword(ctx context.Context, id, current, next string) error
}

// Options configures a Server.
type Options struct {
	Now           func() time.Time
	Mode          string
	AllowedOrigin string
	Secret        []byte
	SessionTTL    time.Duration
	// SecureCookie marks the session cookie Secure; set when serving HTTPS.
	SecureCookie bool
}

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// Server is the profile store HTTP server.
type Server struct {
	store  Backend
	router *gin.Engine
	logger *slog.Logger
	opts   Options
}

// New builds the router.
func New(store Backend, opts Options, logger *slog.Logger) (*Server, error) {
	if len(opts.Secret) == 0 {
		return nil, fmt.Errorf("%w: session secret", common.ErrMissingConfig)
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 7 * 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}

	s := &Server{
		store:  store,
		opts:   opts,
		logger: common.ComponentLogger(logger, "server"),
	}
	s.router = s.routes()
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.cors())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	a := r.Group("/api")
	a.POST("/register", s.handleRegister)
	a.POST("/login", s.handleLogin)
	a.POST("/logout", s.handleLogout)

	authed := a.Group("", s.requireSession())
	authed.GET("/profile", s.handleGetUser)
	authed.PUT("/profile", s.handleUpdateUser)
	authed.POST("/change-password", s.handleChangePassword)

	f := authed.Group("/financial")
	f.POST("/profile", s.handleCreateProfile)
	f.GET("/profile/:userId", s.ownerOnly, s.handleGetProfile)
	f.PUT("/profile/:id", s.handleUpdateProfile)

	for _, kind := range model.EntryKinds {
		h := entryHandlers{s: s, kind: kind}
		resource := "/" + kind.Plural()
		f.POST(resource, h.create)
		f.GET(resource+"/:userId", s.ownerOnly, h.list)
		f.PUT(resource+"/:id", h.update)
		f.DELETE(resource+"/:id", h.remove)
	}

	f.POST("/scenarios", s.handleSaveScenario)
	f.GET("/scenarios/:userId", s.ownerOnly, s.handleListScenarios)

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
// A non-nil tlsConfig serves HTTPS.
func (s *Server) Run(ctx context.Context, addr string, tlsConfig *tls.Config) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		TLSConfig:         tlsConfig,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if tlsConfig != nil {
			s.logger.Info("Serving HTTPS", "addr", addr)
			err = srv.ListenAndServeTLS("", "")
		} else {
			s.logger.Info("Serving HTTP", "addr", addr)
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return <-errCh
}
