// Package workflow keeps the in-memory plan in step with the profile store:
// loading on login, saving on demand or on field blur, deleting entries, and
// recomputing the summary after every edit.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Veraticus/life-sheet/internal/common"
	"github.com/Veraticus/life-sheet/internal/engine"
	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/Veraticus/life-sheet/internal/service"
)

// Options configures a Workflow.
type Options struct {
	Logger *slog.Logger
	// OnProgress is called after each record of a save with the number of
	// records written so far and the total for this save.
	OnProgress func(done, total int)
	// Now is the clock for banners, reports and the projection's first year.
	Now func() time.Time
	// BannerTTL is how long a status banner stays up. Defaults to DefaultBannerTTL.
	BannerTTL time.Duration
}

// SaveResult counts what a save wrote.
type SaveResult struct {
	Created int
	Updated int
	Skipped int
}

// Workflow owns the plan and the summary engine for one user session.
type Workflow struct {
	store  service.ProfileStore
	plan   *model.Plan
	engine *engine.Engine
	logger *slog.Logger
	opts   Options
	status Status

	pendingSess service.Session
	mu          sync.Mutex
	saving      bool
	pending     bool
}

// New creates a workflow around store with a default plan.
func New(store service.ProfileStore, opts Options) *Workflow {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.BannerTTL <= 0 {
		opts.BannerTTL = DefaultBannerTTL
	}
	logger := common.ComponentLogger(opts.Logger, "workflow")

	return &Workflow{
		store:  store,
		plan:   model.NewPlan(),
		engine: engine.New(opts.Logger),
		logger: logger,
		opts:   opts,
	}
}

// Plan exposes the underlying input model.
func (w *Workflow) Plan() *model.Plan {
	return w.plan
}

// Snapshot returns a copy of the current inputs.
func (w *Workflow) Snapshot() model.Snapshot {
	return w.plan.Snapshot()
}

// Summary returns the last computed summary and whether one exists yet.
func (w *Workflow) Summary() (model.Summary, bool) {
	return w.engine.Summary()
}

// Recompute refreshes the summary from the current inputs.
func (w *Workflow) Recompute() (model.Summary, bool) {
	return w.engine.Recompute(w.plan.Snapshot())
}

// Projection yields the year-by-year asset projection for the current inputs.
func (w *Workflow) Projection() iter.Seq[model.YearPoint] {
	return engine.Project(w.plan.Snapshot(), engine.Options{Now: w.opts.Now})
}

// Report captures inputs, summary and projection for an exporter.
func (w *Workflow) Report() model.Report {
	snap := w.plan.Snapshot()
	summary, ok := w.engine.Summary()
	if !ok {
		summary = engine.Summarize(snap)
	}
	return model.Report{
		GeneratedAt: w.opts.Now(),
		Snapshot:    snap,
		Summary:     summary,
		Projection:  slices.Collect(engine.Project(snap, engine.Options{Now: w.opts.Now})),
	}
}

// Unsaved counts entries a save would still create. Blank loans are not counted.
func (w *Workflow) Unsaved() int {
	snap := w.plan.Snapshot()
	n := 0
	for _, kind := range model.EntryKinds {
		for _, e := range snap.Entries(kind) {
			if e.Persisted() || (kind == model.KindLoan && e.Blank()) {
				continue
			}
			n++
		}
	}
	return n
}

// Load replaces the plan with the user's stored data. A missing session or a
// missing profile resets to defaults without error. Any other failure also
// resets, and is logged and returned.
func (w *Workflow) Load(ctx context.Context, sess service.Session) error {
	snap, err := w.fetch(ctx, sess)
	if err != nil {
		w.plan.Reset()
		w.engine.Reset()

		switch {
		case common.Classify(err) == common.ClassUnauthenticated, errors.Is(err, common.ErrNotFound):
			w.logger.Debug("No stored profile, starting from defaults", "reason", err)
			return nil
		}
		w.logger.Error("Failed to load financial data", "error", err)
		w.setStatus(StatusError, "Error loading data: "+common.UserMessage(err))
		return err
	}

	w.plan.Replace(snap)
	w.engine.Reset()
	w.engine.Recompute(snap)
	w.logger.Info("Loaded financial data",
		"goals", len(snap.Goals), "expenses", len(snap.Expenses), "loans", len(snap.Loans))
	return nil
}

func (w *Workflow) fetch(ctx context.Context, sess service.Session) (model.Snapshot, error) {
	if !sess.Valid() {
		return model.Snapshot{}, common.ErrUnauthenticated
	}

	profile, err := w.store.GetProfile(ctx, sess)
	if err != nil {
		return model.Snapshot{}, err
	}
	if profile == nil {
		return model.Snapshot{}, fmt.Errorf("%w: profile", common.ErrNotFound)
	}

	snap := model.Snapshot{Profile: profile.Clone()}
	for _, kind := range model.EntryKinds {
		entries, err := w.store.ListEntries(ctx, sess, kind)
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("failed to load %s: %w", kind.Plural(), err)
		}
		switch kind {
		case model.KindGoal:
			snap.Goals = entries
		case model.KindExpense:
			snap.Expenses = entries
		case model.KindLoan:
			snap.Loans = entries
		}
	}
	return snap, nil
}

// Save writes the profile and every entry. It fails with common.ErrSaveInProgress
// when another save is running. The first failing record aborts the rest.
func (w *Workflow) Save(ctx context.Context, sess service.Session) (SaveResult, error) {
	if !sess.Valid() {
		return SaveResult{}, common.ErrUnauthenticated
	}

	w.mu.Lock()
	if w.saving {
		w.mu.Unlock()
		return SaveResult{}, common.ErrSaveInProgress
	}
	w.saving = true
	w.mu.Unlock()

	result, err := w.saveOnce(ctx, sess)
	w.finishSave(ctx)

	if err != nil {
		w.logger.Error("Save failed", "error", err, "created", result.Created, "updated", result.Updated)
		w.setStatus(StatusError, "Error saving data: "+common.UserMessage(err))
		return result, err
	}
	w.setStatus(StatusSuccess, "Financial data saved successfully!")
	return result, nil
}

// Autosave is the save triggered when a field loses focus. If a save is
// already running the request is queued, and one trailing save runs after it
// no matter how many requests queued up. Without a session it does nothing.
// Validation failures from partially filled records are dropped.
func (w *Workflow) Autosave(ctx context.Context, sess service.Session, field string) error {
	if !sess.Valid() {
		return nil
	}

	w.mu.Lock()
	if w.saving {
		w.pending = true
		w.pendingSess = sess
		w.mu.Unlock()
		w.logger.Debug("Autosave queued", "field", field)
		return nil
	}
	w.saving = true
	w.mu.Unlock()

	_, err := w.saveOnce(ctx, sess)
	w.finishSave(ctx)
	return w.autosaveResult(field, err)
}

// finishSave runs queued autosaves until none are left, then releases the guard.
func (w *Workflow) finishSave(ctx context.Context) {
	for {
		w.mu.Lock()
		if !w.pending {
			w.saving = false
			w.mu.Unlock()
			return
		}
		sess := w.pendingSess
		w.pending = false
		w.pendingSess = service.Session{}
		w.mu.Unlock()

		_, err := w.saveOnce(ctx, sess)
		_ = w.autosaveResult("queued", err)
	}
}

func (w *Workflow) autosaveResult(field string, err error) error {
	switch common.Classify(err) {
	case common.ClassNone:
		w.logger.Debug("Autosaved", "field", field)
		return nil
	case common.ClassValidation, common.ClassUnauthenticated:
		w.logger.Debug("Autosave skipped", "field", field, "reason", err)
		return nil
	}
	w.logger.Error("Autosave failed", "field", field, "error", err)
	w.setStatus(StatusError, "Error saving data: "+common.UserMessage(err))
	return err
}

func (w *Workflow) saveOnce(ctx context.Context, sess service.Session) (SaveResult, error) {
	var result SaveResult
	snap := w.plan.Snapshot()

	total := 1
	for _, kind := range model.EntryKinds {
		total += len(snap.Entries(kind))
	}
	done := 0
	progress := func() {
		done++
		if w.opts.OnProgress != nil {
			w.opts.OnProgress(done, total)
		}
	}

	created, err := w.saveProfile(ctx, sess, snap.Profile)
	if err != nil {
		return result, err
	}
	if created {
		result.Created++
	} else {
		result.Updated++
	}
	progress()

	for _, kind := range model.EntryKinds {
		for _, e := range snap.Entries(kind) {
			switch {
			case e.Persisted():
				_, err := w.store.UpdateEntry(ctx, sess, e.ID, e)
				if errors.Is(err, common.ErrNotFound) && !w.inPlan(kind, e) {
					// Deleted locally after the snapshot was taken.
					w.logger.Debug("Entry removed during save", "kind", kind, "id", e.ID)
					result.Skipped++
					progress()
					continue
				}
				if err != nil {
					return result, fmt.Errorf("failed to update %s %s: %w", kind, e.ID, err)
				}
				result.Updated++
			case kind == model.KindLoan && e.Blank():
				result.Skipped++
			default:
				stored, err := w.store.CreateEntry(ctx, sess, e)
				if err != nil {
					return result, fmt.Errorf("failed to create %s: %w", kind, err)
				}
				if !w.plan.MarkSaved(kind, e.Ref(), stored.ID) {
					// Deleted locally while its create was in flight.
					w.logger.Info("Entry removed during save", "kind", kind, "id", stored.ID)
					if err := w.store.DeleteEntry(ctx, sess, kind, stored.ID); err != nil {
						w.logger.Error("Failed to delete stored entry", "kind", kind, "id", stored.ID, "error", err)
					}
				}
				result.Created++
			}
			progress()
		}
	}
	return result, nil
}

func (w *Workflow) inPlan(kind model.EntryKind, e model.Entry) bool {
	_, err := w.plan.Resolve(kind, model.HandleKey(e.Ref()))
	return err == nil
}

// saveProfile creates the profile the first time and updates it afterwards.
// A create rejected as a duplicate falls back to updating the stored profile.
func (w *Workflow) saveProfile(ctx context.Context, sess service.Session, p model.Profile) (bool, error) {
	if p.ID != "" {
		if _, err := w.store.UpdateProfile(ctx, sess, p.ID, p); err != nil {
			return false, fmt.Errorf("failed to update profile: %w", err)
		}
		return false, nil
	}

	stored, err := w.store.CreateProfile(ctx, sess, p)
	if errors.Is(err, common.ErrDuplicateEntry) {
		existing, getErr := w.store.GetProfile(ctx, sess)
		if getErr != nil {
			return false, fmt.Errorf("failed to create profile: %w", err)
		}
		w.plan.SetProfileID(existing.ID, existing.UserID)
		if _, err := w.store.UpdateProfile(ctx, sess, existing.ID, p); err != nil {
			return false, fmt.Errorf("failed to update profile: %w", err)
		}
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create profile: %w", err)
	}
	w.plan.SetProfileID(stored.ID, stored.UserID)
	return true, nil
}

// SetField changes one profile field and recomputes.
func (w *Workflow) SetField(name, value string) (model.Summary, error) {
	if err := w.plan.SetField(name, value); err != nil {
		return model.Summary{}, err
	}
	summary, _ := w.Recompute()
	return summary, nil
}

// Add appends an entry and recomputes.
func (w *Workflow) Add(kind model.EntryKind, e model.Entry) (model.EntryKey, error) {
	key, err := w.plan.Append(kind, e)
	if err != nil {
		return model.EntryKey{}, err
	}
	w.Recompute()
	return key, nil
}

// AddDefault appends a placeholder entry and recomputes.
func (w *Workflow) AddDefault(kind model.EntryKind) (model.EntryKey, error) {
	key, err := w.plan.AddDefault(kind)
	if err != nil {
		return model.EntryKey{}, err
	}
	w.Recompute()
	return key, nil
}

// Update changes one entry field and recomputes.
func (w *Workflow) Update(kind model.EntryKind, key model.EntryKey, field, value string) error {
	if err := w.plan.UpdateAt(kind, key, field, value); err != nil {
		return err
	}
	w.Recompute()
	return nil
}

// Delete removes an entry locally, then deletes it remotely when it was
// stored. A failed remote delete is logged and the local removal stands.
func (w *Workflow) Delete(ctx context.Context, sess service.Session, kind model.EntryKind, key model.EntryKey) (model.Entry, error) {
	removed, err := w.plan.RemoveAt(kind, key)
	if err != nil {
		return model.Entry{}, err
	}
	w.Recompute()

	if removed.Persisted() && sess.Valid() {
		if err := w.store.DeleteEntry(ctx, sess, kind, removed.ID); err != nil {
			w.logger.Error("Failed to delete stored entry", "kind", kind, "id", removed.ID, "error", err)
		}
	}
	return removed, nil
}

// ImportHoldings folds balances from src into the plan and recomputes.
// It returns the number of loans added.
func (w *Workflow) ImportHoldings(ctx context.Context, src service.BalanceSource) (int, error) {
	h, err := src.FetchHoldings(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch balances: %w", err)
	}
	added := w.plan.ApplyHoldings(h)
	w.Recompute()
	w.logger.Info("Imported balances", "accounts", len(h.Accounts), "loans_added", added)
	return added, nil
}

// Export writes the current report through out.
func (w *Workflow) Export(ctx context.Context, out service.ReportWriter) error {
	if err := out.Write(ctx, w.Report()); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	return nil
}

// SaveScenario stores the current summary under name.
func (w *Workflow) SaveScenario(ctx context.Context, sess service.Session, scenarios service.ScenarioStore, name string) (*model.Scenario, error) {
	if !sess.Valid() {
		return nil, common.ErrUnauthenticated
	}
	summary, ok := w.engine.Summary()
	if !ok {
		summary = engine.Summarize(w.plan.Snapshot())
	}
	return scenarios.SaveScenario(ctx, sess, model.Scenario{Name: name, Summary: summary})
}

// Logout clears the plan and summary. The caller ends the remote session.
func (w *Workflow) Logout() {
	w.plan.Reset()
	w.engine.Reset()
	w.mu.Lock()
	w.pending = false
	w.pendingSess = service.Session{}
	w.status = Status{}
	w.mu.Unlock()
}

// Classify maps err onto the error taxonomy used for banners and logging.
func Classify(err error) common.ErrorClass {
	return common.Classify(err)
}
