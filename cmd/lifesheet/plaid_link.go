package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/Veraticus/life-sheet/internal/certs"
	"github.com/Veraticus/life-sheet/internal/cli"
	"github.com/Veraticus/life-sheet/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	plaidLinkAddr    = "localhost:8080"
	plaidLinkTimeout = 10 * time.Minute
)

var plaidLinkPage = template.Must(template.New("link").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Connect Your Accounts - Life Sheet</title>
    <script src="https://cdn.plaid.com/link/v2/stable/link-initialize.js"></script>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background-color: #f5f5f5; }
        .container { text-align: center; background: white; padding: 40px; border-radius: 8px;
                     box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
        button { background-color: #5B8DEF; color: white; padding: 12px 24px;
                 font-size: 16px; border: none; border-radius: 4px; cursor: pointer; }
        .error { color: #E63946; margin-top: 20px; }
        .success { color: #2EC4B6; margin-top: 20px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>📒 Connect Your Accounts</h1>
        <p>Balances from linked accounts are added to your assets and loans.</p>
        <button id="link-button">Connect Account</button>
        <div id="message"></div>
    </div>
    <script>
    const message = document.getElementById('message');
    const linkHandler = Plaid.create({
        token: {{.}},
        onSuccess: (public_token, metadata) => {
            message.innerHTML = '<div class="success">Processing connection...</div>';
            fetch('/exchange', {
                method: 'POST',
                headers: { 'Content-Type': 'application/json' },
                body: JSON.stringify({ public_token, institution: metadata.institution ? metadata.institution.name : '' })
            })
            .then(response => response.json())
            .then(data => {
                message.innerHTML = data.success
                    ? '<div class="success">Account connected. You can close this window.</div>'
                    : '<div class="error">' + (data.error || 'Connection failed') + '</div>';
            })
            .catch(error => { message.innerHTML = '<div class="error">Network error: ' + error + '</div>'; });
        },
        onExit: (err) => {
            if (err != null) { message.innerHTML = '<div class="error">Connection canceled or failed.</div>'; }
        }
    });
    document.getElementById('link-button').onclick = () => linkHandler.open();
    </script>
</body>
</html>`))

func authPlaidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plaid",
		Short: "Connect accounts via Plaid",
		Long: `Connect your bank, card and loan accounts using Plaid Link.

This starts a local web server, opens Plaid Link in your browser and saves the
access token to your config file so "lifesheet import plaid" can read balances.`,
		RunE: runAuthPlaid,
	}

	cmd.Flags().String("env", "", "Plaid environment (sandbox/production)")
	return cmd
}

type plaidLinkResult struct {
	AccessToken     string
	ItemID          string
	InstitutionName string
}

func runAuthPlaid(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if env, _ := cmd.Flags().GetString("env"); env != "" {
		viper.Set("plaid.environment", env)
	}
	cfg, err := config.LoadPlaid(viper.GetViper())
	if err != nil {
		return err
	}

	client, err := newPlaidClient(*cfg)
	if err != nil {
		return fmt.Errorf("failed to create Plaid client: %w", err)
	}
	linkToken, err := client.CreateLinkToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to create link token: %w", err)
	}

	results := make(chan plaidLinkResult, 1)
	errs := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if err := plaidLinkPage.Execute(w, linkToken); err != nil {
			slog.Warn("Failed to render link page", "error", err)
		}
	})
	mux.HandleFunc("/exchange", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PublicToken string `json:"public_token"`
			Institution string `json:"institution"`
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Invalid request"})
			return
		}
		accessToken, itemID, err := client.ExchangePublicToken(ctx, req.PublicToken)
		if err != nil {
			errs <- fmt.Errorf("failed to exchange token: %w", err)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Failed to exchange token"})
			return
		}
		results <- plaidLinkResult{AccessToken: accessToken, ItemID: itemID, InstitutionName: req.Institution}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	})

	srv := &http.Server{Addr: plaidLinkAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	browserURL := "http://" + plaidLinkAddr
	if cfg.Environment == "production" {
		// Production Link redirects only to https.
		certDir := config.ExpandPath(viper.GetString("server.cert_dir"))
		if certDir == "" {
			certDir = config.ExpandPath(config.DefaultCertDir)
		}
		tlsConfig, err := certs.NewFileManager(certDir).TLSConfig()
		if err != nil {
			return fmt.Errorf("failed to prepare certificate: %w", err)
		}
		srv.TLSConfig = tlsConfig
		browserURL = "https://" + plaidLinkAddr
		fmt.Fprintln(out, cli.FormatWarning("Your browser will warn about the self-signed certificate; proceed to localhost."))
	}

	go func() {
		var err error
		if srv.TLSConfig != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("failed to start link server: %w", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	fmt.Fprintln(out, cli.FormatInfo("Opening your browser to connect accounts. If it does not open, visit:"))
	fmt.Fprintln(out, browserURL)
	openBrowser(browserURL)

	var result plaidLinkResult
	select {
	case result = <-results:
	case err := <-errs:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(plaidLinkTimeout):
		return fmt.Errorf("timeout waiting for account connection")
	}

	viper.Set("plaid.access_token", result.AccessToken)
	viper.Set("plaid.item_id", result.ItemID)
	if err := saveConfig(); err != nil {
		slog.Warn("Failed to update config file", "error", err)
		fmt.Fprintln(out, cli.FormatWarning("Add this to your config.yaml manually:"))
		fmt.Fprintf(out, "plaid:\n  access_token: %q\n", result.AccessToken)
	}

	fmt.Fprintln(out, cli.FormatSuccess("Connected "+result.InstitutionName))
	fmt.Fprintln(out, cli.FormatInfo(`Run "lifesheet import plaid" to add balances to your sheet.`))
	return nil
}

func saveConfig() error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		configFile = filepath.Join(home, ".config", "lifesheet", "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0750); err != nil {
		return err
	}
	return viper.WriteConfigAs(configFile)
}

// openBrowser tries to open the URL in the default browser.
func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start() //nolint:gosec
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start() //nolint:gosec
	case "darwin":
		err = exec.Command("open", url).Start() //nolint:gosec
	}
	if err != nil {
		slog.Debug("Failed to open browser", "error", err)
	}
}
