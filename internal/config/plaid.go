package config

import (
	"os"

	"github.com/Veraticus/life-sheet/internal/plaid"
	"github.com/spf13/viper"
)

// LoadPlaid loads Plaid credentials from viper, falling back to PLAID_* env vars.
// The access token is optional here; linking an account produces one.
func LoadPlaid(v *viper.Viper) (*plaid.Config, error) {
	v.SetDefault("plaid.environment", "sandbox")

	cfg := &plaid.Config{
		ClientID:    v.GetString("plaid.client_id"),
		Secret:      v.GetString("plaid.secret"),
		Environment: v.GetString("plaid.environment"),
		AccessToken: v.GetString("plaid.access_token"),
	}
	if cfg.ClientID == "" {
		cfg.ClientID = os.Getenv("PLAID_CLIENT_ID")
	}
	if cfg.Secret == "" {
		cfg.Secret = os.Getenv("PLAID_SECRET")
	}
	if cfg.AccessToken == "" {
		cfg.AccessToken = os.Getenv("PLAID_ACCESS_TOKEN")
	}

	if err := cfg.ValidateCredentials(); err != nil {
		return nil, err
	}
	return cfg, nil
}
