package main

import (
	"crypto/tls"
	"fmt"
	"log/slog"

	"github.com/Veraticus/life-sheet/internal/certs"
	"github.com/Veraticus/life-sheet/internal/config"
	"github.com/Veraticus/life-sheet/internal/server"
	"github.com/Veraticus/life-sheet/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the profile store server",
		Long: `Run the profile store server that the CLI and form sync against.

The server keeps users, profiles, goals, expenses, loans and saved scenarios
in a SQLite database and issues session tokens signed with server.jwt_secret.
With --tls it serves HTTPS using a self-signed certificate kept in
server.cert_dir.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default :10000)")
	cmd.Flags().Bool("tls", false, "serve HTTPS with a self-signed certificate")
	_ = viper.BindPFlag("server.address", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.tls", cmd.Flags().Lookup("tls"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadServer(viper.GetViper())
	if err != nil {
		return err
	}

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	}()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	var tlsConfig *tls.Config
	if cfg.TLS {
		tlsConfig, err = certs.TLSConfig(certs.NewFileManager(cfg.CertDir))
		if err != nil {
			return fmt.Errorf("failed to prepare certificate: %w", err)
		}
	}

	srv, err := server.New(store, server.Options{
		Mode:          cfg.Mode,
		AllowedOrigin: cfg.AllowedOrigin,
		Secret:        []byte(cfg.JWTSecret),
		SessionTTL:    cfg.SessionTTL,
		SecureCookie:  cfg.TLS,
	}, slog.Default())
	if err != nil {
		return err
	}

	slog.Info("Profile store ready", "addr", cfg.Address, "database", store.Path(), "tls", cfg.TLS)
	return srv.Run(ctx, cfg.Address, tlsConfig)
}
