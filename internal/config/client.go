package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/life-sheet/internal/common"
	"github.com/spf13/viper"
)

// Defaults for the client side.
const (
	DefaultAPIURL       = "http://localhost:10000/api"
	DefaultAPITimeout   = 30 * time.Second
	DefaultSessionPath  = "$HOME/.local/share/lifesheet/session.json"
	DefaultDatabasePath = "$HOME/.local/share/lifesheet/lifesheet.db"
	DefaultLocalUser    = "local"
)

// Client configures how the CLI reaches the profile store.
type Client struct {
	APIURL       string
	SessionPath  string
	DatabasePath string
	LocalUser    string
	Timeout      time.Duration
	Offline      bool
}

// SetClientDefaults registers client defaults with viper.
func SetClientDefaults(v *viper.Viper) {
	v.SetDefault("api.url", DefaultAPIURL)
	v.SetDefault("api.timeout", DefaultAPITimeout)
	v.SetDefault("session.path", DefaultSessionPath)
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("local_user", DefaultLocalUser)
}

// LoadClient reads the client configuration.
func LoadClient(v *viper.Viper) (*Client, error) {
	SetClientDefaults(v)

	cfg := &Client{
		APIURL:       strings.TrimRight(v.GetString("api.url"), "/"),
		Timeout:      v.GetDuration("api.timeout"),
		SessionPath:  ExpandPath(v.GetString("session.path")),
		DatabasePath: ExpandPath(v.GetString("database.path")),
		LocalUser:    v.GetString("local_user"),
		Offline:      v.GetBool("offline"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the client configuration.
func (c *Client) Validate() error {
	if c.Offline {
		if c.DatabasePath == "" {
			return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
		}
		return nil
	}

	if c.APIURL == "" {
		return fmt.Errorf("%w: api.url", common.ErrMissingConfig)
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api.url %q must be an http(s) URL", common.ErrInvalidConfig, c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: api.timeout must be positive", common.ErrInvalidConfig)
	}
	return nil
}
