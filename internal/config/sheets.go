package config

import (
	"github.com/Veraticus/life-sheet/internal/sheets"
	"github.com/spf13/viper"
)

// LoadSheetsConfig loads Google Sheets configuration. Precedence:
// 1. viper (config file or LIFESHEET_SHEETS_* env vars)
// 2. GOOGLE_SHEETS_* environment variables
// 3. defaults
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	cfg := sheets.DefaultConfig()

	if s := v.GetString("sheets.service_account_path"); s != "" {
		cfg.ServiceAccountPath = ExpandPath(s)
	}
	if s := v.GetString("sheets.client_id"); s != "" {
		cfg.ClientID = s
	}
	if s := v.GetString("sheets.client_secret"); s != "" {
		cfg.ClientSecret = s
	}
	if s := v.GetString("sheets.refresh_token"); s != "" {
		cfg.RefreshToken = s
	}
	if s := v.GetString("sheets.spreadsheet_id"); s != "" {
		cfg.SpreadsheetID = s
	}
	if s := v.GetString("sheets.spreadsheet_name"); s != "" {
		cfg.SpreadsheetName = s
	}
	if s := v.GetString("sheets.timezone"); s != "" {
		cfg.TimeZone = s
	}

	// A token saved by `auth sheets` supplies the refresh token.
	if cfg.RefreshToken == "" && cfg.ServiceAccountPath == "" {
		if tok, err := sheets.LoadToken(SheetsTokenPath(v)); err == nil {
			cfg.RefreshToken = tok.RefreshToken
		}
	}

	cfg.LoadFromEnv()
	if cfg.ServiceAccountPath != "" {
		cfg.ServiceAccountPath = ExpandPath(cfg.ServiceAccountPath)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SheetsTokenPath is where `auth sheets` stores the OAuth token.
func SheetsTokenPath(v *viper.Viper) string {
	v.SetDefault("sheets.token_file", "$HOME/.local/share/lifesheet/sheets_token.json")
	return ExpandPath(v.GetString("sheets.token_file"))
}
