package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/life-sheet/internal/cli"
	"github.com/Veraticus/life-sheet/internal/config"
	"github.com/Veraticus/life-sheet/internal/service"
	"github.com/Veraticus/life-sheet/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage your account and external connections",
		Long: `Register, log in and out of the profile store, and connect the
external services used for imports and exports (Plaid and Google Sheets).`,
	}

	cmd.AddCommand(authRegisterCmd())
	cmd.AddCommand(authLoginCmd())
	cmd.AddCommand(authLogoutCmd())
	cmd.AddCommand(authStatusCmd())
	cmd.AddCommand(authPasswdCmd())
	cmd.AddCommand(authSheetsCmd())
	cmd.AddCommand(authPlaidCmd())

	return cmd
}

// credentials reads flags, prompting for anything missing.
func credentials(cmd *cobra.Command, withEmail bool) (service.Registration, error) {
	ctx := cmd.Context()
	p := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

	var reg service.Registration
	var err error
	reg.Username, _ = cmd.Flags().GetString("username")
	reg.Password, _ = cmd.Flags().GetString("password")

	if reg.Username == "" {
		if reg.Username, err = p.Required(ctx, "Username"); err != nil {
			return reg, err
		}
	}
	if withEmail {
		reg.Email, _ = cmd.Flags().GetString("email")
		if reg.Email == "" {
			if reg.Email, err = p.Ask(ctx, "Email (optional)", ""); err != nil {
				return reg, err
			}
		}
	}
	if reg.Password == "" {
		if reg.Password, err = p.Required(ctx, "Password"); err != nil {
			return reg, err
		}
	}
	return reg, nil
}

func credentialFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("username", "u", "", "username")
	cmd.Flags().StringP("password", "p", "", "password (prompted when omitted)")
}

func authRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.auth == nil {
				return errOfflineAuth
			}

			reg, err := credentials(cmd, true)
			if err != nil {
				return err
			}
			sess, user, err := a.auth.Register(ctx, reg)
			if err != nil {
				return err
			}
			if err := a.sessions.Save(sess); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Welcome, %s! You are logged in.", user.DisplayName())))
			return nil
		},
	}
	credentialFlags(cmd)
	cmd.Flags().String("email", "", "email address")
	return cmd
}

func authLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the profile store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.auth == nil {
				return errOfflineAuth
			}

			reg, err := credentials(cmd, false)
			if err != nil {
				return err
			}
			sess, user, err := a.auth.Login(ctx, reg.Username, reg.Password)
			if err != nil {
				return err
			}
			if err := a.sessions.Save(sess); err != nil {
				return err
			}
			slog.Debug("Session saved", "path", a.sessions.Path())
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Logged in as "+user.DisplayName()))
			return nil
		},
	}
	credentialFlags(cmd)
	return cmd
}

func authLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.auth == nil {
				return errOfflineAuth
			}

			if a.session.Valid() {
				if err := a.auth.Logout(ctx, a.session); err != nil {
					slog.Warn("Server logout failed; clearing the local session anyway", "error", err)
				}
			}
			if err := a.sessions.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Logged out."))
			return nil
		},
	}
}

func authStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who is logged in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.auth == nil {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Offline as %s (%s)", a.session.Username, a.cfg.DatabasePath)))
				return nil
			}
			if err := a.requireSession(); err != nil {
				fmt.Fprintln(out, cli.FormatWarning("Not logged in."))
				return nil
			}
			user, err := a.auth.CurrentUser(ctx, a.session)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Logged in as %s at %s", user.DisplayName(), a.cfg.APIURL)))
			if !a.session.ExpiresAt.IsZero() {
				fmt.Fprintln(out, cli.FormatInfo("Session expires "+a.session.ExpiresAt.Local().Format("2006-01-02 15:04")))
			}
			return nil
		},
	}
}

func authPasswdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change your password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.auth == nil {
				return errOfflineAuth
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			p := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			current, err := p.Required(ctx, "Current password")
			if err != nil {
				return err
			}
			next, err := p.Required(ctx, "New password")
			if err != nil {
				return err
			}
			if err := a.auth.ChangePassword(ctx, a.session, current, next); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Password changed."))
			return nil
		},
	}
}

func authSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authenticate with Google Sheets",
		Long: `Authenticate with Google Sheets using OAuth2.

This opens your browser for Google consent and saves the refresh token so
"lifesheet export sheets" can write your spreadsheet.`,
		RunE: runAuthSheets,
	}

	cmd.Flags().String("client-id", "", "OAuth2 Client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 Client Secret (overrides config)")

	return cmd
}

func runAuthSheets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	clientID := viper.GetString("sheets.client_id")
	clientSecret := viper.GetString("sheets.client_secret")
	if flagID, _ := cmd.Flags().GetString("client-id"); flagID != "" {
		clientID = flagID
	}
	if flagSecret, _ := cmd.Flags().GetString("client-secret"); flagSecret != "" {
		clientSecret = flagSecret
	}
	if clientID == "" {
		clientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if clientSecret == "" {
		clientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("OAuth2 credentials not found. Set sheets.client_id and sheets.client_secret in config or use --client-id and --client-secret")
	}

	tokenFile := config.SheetsTokenPath(viper.GetViper())
	slog.Info("Starting Google Sheets authentication", "token_file", tokenFile)

	token, err := sheets.Authorize(ctx, sheets.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    tokenFile,
	}, func(url string) {
		fmt.Fprintln(out, cli.FormatInfo("Opening your browser for Google consent. If it does not open, visit:"))
		fmt.Fprintln(out, url)
		openBrowser(url)
	})
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	if token.RefreshToken == "" {
		return fmt.Errorf("google did not return a refresh token; revoke access and try again")
	}

	fmt.Fprintln(out, cli.FormatSuccess("Google Sheets is configured. Token saved to "+filepath.Clean(tokenFile)))
	fmt.Fprintln(out, cli.FormatInfo(`Run "lifesheet export sheets" to write your sheet.`))
	return nil
}
