package config

import (
	"fmt"
	"time"

	"github.com/Veraticus/life-sheet/internal/common"
	"github.com/spf13/viper"
)

// Defaults for the store server.
const (
	DefaultServerAddress = ":10000"
	DefaultSessionTTL    = 7 * 24 * time.Hour
	DefaultServerMode    = "release"
	DefaultCertDir       = "$HOME/.local/share/lifesheet/certs"

	minSecretLength = 32
)

// Server configures the profile store server.
type Server struct {
	Address       string
	JWTSecret     string
	Mode          string
	AllowedOrigin string
	DatabasePath  string
	CertDir       string
	SessionTTL    time.Duration
	TLS           bool
}

// LoadServer reads the server configuration.
func LoadServer(v *viper.Viper) (*Server, error) {
	v.SetDefault("server.address", DefaultServerAddress)
	v.SetDefault("server.session_ttl", DefaultSessionTTL)
	v.SetDefault("server.mode", DefaultServerMode)
	v.SetDefault("server.cert_dir", DefaultCertDir)
	v.SetDefault("database.path", DefaultDatabasePath)

	cfg := &Server{
		Address:       v.GetString("server.address"),
		JWTSecret:     v.GetString("server.jwt_secret"),
		Mode:          v.GetString("server.mode"),
		AllowedOrigin: v.GetString("server.allowed_origin"),
		DatabasePath:  ExpandPath(v.GetString("database.path")),
		CertDir:       ExpandPath(v.GetString("server.cert_dir")),
		SessionTTL:    v.GetDuration("server.session_ttl"),
		TLS:           v.GetBool("server.tls"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the server configuration.
func (s *Server) Validate() error {
	if s.JWTSecret == "" {
		return fmt.Errorf("%w: server.jwt_secret", common.ErrMissingConfig)
	}
	if len(s.JWTSecret) < minSecretLength {
		return fmt.Errorf("%w: server.jwt_secret must be at least %d characters", common.ErrInvalidConfig, minSecretLength)
	}
	if s.SessionTTL <= 0 {
		return fmt.Errorf("%w: server.session_ttl must be positive", common.ErrInvalidConfig)
	}
	switch s.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("%w: server.mode %q", common.ErrInvalidConfig, s.Mode)
	}
	if s.DatabasePath == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	return nil
}
