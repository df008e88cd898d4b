package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/life-sheet/internal/cli"
	"github.com/Veraticus/life-sheet/internal/common"
	"github.com/Veraticus/life-sheet/internal/config"
	"github.com/Veraticus/life-sheet/internal/remote"
	"github.com/Veraticus/life-sheet/internal/service"
	"github.com/Veraticus/life-sheet/internal/storage"
	"github.com/Veraticus/life-sheet/internal/workflow"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// offlineToken marks sessions backed by the local database.
const offlineToken = "offline"

// errOfflineAuth is returned by account commands in offline mode.
var errOfflineAuth = common.NewUserError("accounts are managed by the server; offline mode always uses the local user", common.ErrInvalidInput)

// app is everything a command needs to reach the profile store.
type app struct {
	cfg       *config.Client
	store     service.ProfileStore
	scenarios service.ScenarioStore
	// auth is nil in offline mode.
	auth     service.Authenticator
	sessions *remote.SessionFile
	session  service.Session
	logger   *slog.Logger
	closer   func() error
}

// openApp connects to the remote store, or opens the local database when
// offline, and loads the session.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadClient(viper.GetViper())
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		sessions: remote.NewSessionFile(cfg.SessionPath),
		logger:   slog.Default(),
		closer:   func() error { return nil },
	}

	if cfg.Offline {
		return a, a.openLocal(ctx)
	}

	client := remote.NewClient(cfg.APIURL, cfg.Timeout, a.logger)
	a.store, a.scenarios, a.auth = client, client, client

	a.session, err = a.sessions.Load()
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) openLocal(ctx context.Context) error {
	store, err := storage.NewSQLiteStorage(a.cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	user, err := store.EnsureLocalUser(ctx, a.cfg.LocalUser)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to prepare local user: %w", err)
	}

	a.store, a.scenarios = store, store
	a.session = service.Session{Token: offlineToken, UserID: user.ID, Username: user.Username}
	a.closer = store.Close
	return nil
}

// Close releases the local database.
func (a *app) Close() {
	if err := a.closer(); err != nil {
		a.logger.Warn("Failed to close store", "error", err)
	}
}

// requireSession fails with a hint when nobody is logged in.
func (a *app) requireSession() error {
	if a.session.Valid() {
		return nil
	}
	return common.NewUserError(`not logged in. Run "lifesheet auth login" or use --offline`, common.ErrUnauthenticated)
}

// workflow builds a workflow over the store and loads the user's plan.
func (a *app) workflow(ctx context.Context, opts workflow.Options) (*workflow.Workflow, error) {
	if err := a.requireSession(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = a.logger
	}
	wf := workflow.New(a.store, opts)
	if err := wf.Load(ctx, a.session); err != nil {
		return nil, err
	}
	return wf, nil
}

// withWorkflow opens the app, loads the plan and runs fn.
func withWorkflow(cmd *cobra.Command, opts workflow.Options, fn func(ctx context.Context, a *app, wf *workflow.Workflow) error) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	wf, err := a.workflow(ctx, opts)
	if err != nil {
		return err
	}
	return fn(ctx, a, wf)
}

// autosave persists an edit the same way the form does when a field loses
// focus. The store rejects incomplete profiles, so a skipped save is reported.
func autosave(ctx context.Context, a *app, wf *workflow.Workflow, out io.Writer, field string) error {
	if err := wf.Autosave(ctx, a.session, field); err != nil {
		return err
	}
	if wf.Plan().Profile().ID == "" || wf.Unsaved() > 0 {
		fmt.Fprintln(out, cli.FormatWarning("Not stored yet: set age and current_annual_gross_income first."))
	}
	return nil
}
