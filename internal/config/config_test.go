package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/life-sheet/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("LIFESHEET_TEST_DIR", "/data")

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "~", want: home},
		{in: "~/x.db", want: filepath.Join(home, "x.db")},
		{in: "$LIFESHEET_TEST_DIR/x.db", want: "/data/x.db"},
		{in: "/abs/x.db", want: "/abs/x.db"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpandPath(tt.in), tt.in)
	}
}

func TestLoadClient(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadClient(viper.New())
		require.NoError(t, err)
		assert.Equal(t, DefaultAPIURL, cfg.APIURL)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
		assert.False(t, cfg.Offline)
		assert.NotContains(t, cfg.SessionPath, "$HOME")
	})

	t.Run("trailing slash trimmed", func(t *testing.T) {
		v := viper.New()
		v.Set("api.url", "https://plan.example.com/api/")
		cfg, err := LoadClient(v)
		require.NoError(t, err)
		assert.Equal(t, "https://plan.example.com/api", cfg.APIURL)
	})

	t.Run("bad url", func(t *testing.T) {
		v := viper.New()
		v.Set("api.url", "ftp://example.com")
		_, err := LoadClient(v)
		require.ErrorIs(t, err, common.ErrInvalidConfig)
	})

	t.Run("offline ignores url", func(t *testing.T) {
		v := viper.New()
		v.Set("offline", true)
		v.Set("api.url", "not a url")
		cfg, err := LoadClient(v)
		require.NoError(t, err)
		assert.True(t, cfg.Offline)
		assert.Equal(t, DefaultLocalUser, cfg.LocalUser)
	})
}

func TestLoadServer(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		_, err := LoadServer(viper.New())
		require.ErrorIs(t, err, common.ErrMissingConfig)
	})

	t.Run("short secret", func(t *testing.T) {
		v := viper.New()
		v.Set("server.jwt_secret", "short")
		_, err := LoadServer(v)
		require.ErrorIs(t, err, common.ErrInvalidConfig)
	})

	t.Run("valid", func(t *testing.T) {
		v := viper.New()
		v.Set("server.jwt_secret", "0123456789abcdef0123456789abcdef")
		v.Set("server.allowed_origin", "http://localhost:5173")
		cfg, err := LoadServer(v)
		require.NoError(t, err)
		assert.Equal(t, DefaultServerAddress, cfg.Address)
		assert.Equal(t, DefaultSessionTTL, cfg.SessionTTL)
		assert.Equal(t, "release", cfg.Mode)
		assert.Equal(t, "http://localhost:5173", cfg.AllowedOrigin)
	})

	t.Run("bad mode", func(t *testing.T) {
		v := viper.New()
		v.Set("server.jwt_secret", "0123456789abcdef0123456789abcdef")
		v.Set("server.mode", "verbose")
		_, err := LoadServer(v)
		require.ErrorIs(t, err, common.ErrInvalidConfig)
	})
}

func TestLoadSheetsConfig(t *testing.T) {
	for _, k := range []string{
		"GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN",
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "GOOGLE_SHEETS_SPREADSHEET_ID", "GOOGLE_SHEETS_SPREADSHEET_NAME",
	} {
		t.Setenv(k, "")
	}

	v := viper.New()
	v.Set("sheets.token_file", filepath.Join(t.TempDir(), "none.json"))
	_, err := LoadSheetsConfig(v)
	require.Error(t, err)

	v.Set("sheets.service_account_path", "/keys/sa.json")
	v.Set("sheets.spreadsheet_id", "sheet-123")
	cfg, err := LoadSheetsConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "/keys/sa.json", cfg.ServiceAccountPath)
	assert.Equal(t, "sheet-123", cfg.SpreadsheetID)
}

func TestLoadPlaid(t *testing.T) {
	t.Setenv("PLAID_CLIENT_ID", "")
	t.Setenv("PLAID_SECRET", "")
	t.Setenv("PLAID_ACCESS_TOKEN", "")

	_, err := LoadPlaid(viper.New())
	require.Error(t, err)

	t.Setenv("PLAID_CLIENT_ID", "client")
	t.Setenv("PLAID_SECRET", "secret")
	cfg, err := LoadPlaid(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "sandbox", cfg.Environment)
	assert.Empty(t, cfg.AccessToken)
}
