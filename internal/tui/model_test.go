package tui

import (
	"testing"
	"time"

	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/Veraticus/life-sheet/internal/service"
	"github.com/Veraticus/life-sheet/internal/testutil"
	"github.com/Veraticus/life-sheet/internal/workflow"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSession = service.Session{Token: "tok", UserID: "u1", Username: "asha"}

func newTestModel(t *testing.T, store *testutil.FakeStore, opts ...Option) Model {
	t.Helper()
	wf := workflow.New(store, workflow.Options{
		Now: func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) },
	})
	m, err := New(append([]Option{WithWorkflow(wf), WithSession(testSession), WithoutLoad()}, opts...)...)
	require.NoError(t, err)
	m.bannerDelay = 0
	return m
}

// run executes cmd and feeds every resulting message back into the model,
// stopping at quit.
func run(m Model, cmd tea.Cmd) (Model, bool) {
	for cmd != nil {
		msg := cmd()
		switch msg := msg.(type) {
		case nil:
			return m, false
		case tea.QuitMsg:
			return m, true
		case tea.BatchMsg:
			quit := false
			for _, c := range msg {
				var q bool
				m, q = run(m, c)
				quit = quit || q
			}
			return m, quit
		}
		next, c := m.Update(msg)
		m, cmd = next.(Model), c
	}
	return m, false
}

func send(m Model, msgs ...tea.Msg) (Model, bool) {
	quit := false
	for _, msg := range msgs {
		next, cmd := m.Update(msg)
		var q bool
		m, q = run(next.(Model), cmd)
		quit = quit || q
	}
	return m, quit
}

func typed(s string) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	tab      = tea.KeyMsg{Type: tea.KeyTab}
	shiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
)

func TestNew_RequiresWorkflow(t *testing.T) {
	_, err := New()
	assert.Error(t, err)
}

func TestBlurAppliesEditAndAutosaves(t *testing.T) {
	store := testutil.NewFakeStore()
	m := newTestModel(t, store)
	assert.Equal(t, "age", m.Focused())

	m, _ = send(m, typed("30"))
	assert.Nil(t, m.wf.Snapshot().Profile.Age, "edits apply on blur")
	assert.Zero(t, store.CallCount("CreateProfile"))

	m, _ = send(m, tab)
	assert.Equal(t, "current_annual_gross_income", m.Focused())
	assert.Equal(t, 30, model.IntValue(m.wf.Snapshot().Profile.Age))
	assert.Equal(t, 1, store.CallCount("CreateProfile"))

	// Leaving an unchanged field does not save again.
	m, _ = send(m, tab)
	assert.Equal(t, 1, store.CallCount("CreateProfile"))
	assert.Zero(t, store.CallCount("UpdateProfile"))
}

func TestSummaryRecomputesOnBlur(t *testing.T) {
	m := newTestModel(t, testutil.NewFakeStore())
	assert.Contains(t, m.View(), "Enter your age")

	m, _ = send(m, typed("30"), tab, typed("1200000"), tab)

	summary, ok := m.wf.Summary()
	require.True(t, ok)
	assert.Equal(t, 55, summary.RemainingLife)
	assert.Contains(t, m.View(), "Summary")
}

func TestFocusWraps(t *testing.T) {
	m := newTestModel(t, testutil.NewFakeStore())

	m, _ = send(m, shiftTab)
	assert.Equal(t, string(model.FieldAssetGrowthRate), m.Focused())

	m, _ = send(m, tab)
	assert.Equal(t, string(model.FieldAge), m.Focused())
}

func TestAddAndDeleteRows(t *testing.T) {
	store := testutil.NewFakeStore()
	m := newTestModel(t, store)

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyCtrlG})
	require.Len(t, m.wf.Snapshot().Goals, 1)
	assert.Equal(t, "Goal 1", m.wf.Snapshot().Goals[0].Description)
	assert.Equal(t, "goals[0].description", m.Focused())

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyCtrlL})
	require.Len(t, m.wf.Snapshot().Loans, 1)
	assert.Equal(t, "loans[0].description", m.Focused())

	m, _ = send(m, tab, tab)
	assert.Equal(t, "loans[0].emi", m.Focused())

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyCtrlD})
	assert.Empty(t, m.wf.Snapshot().Loans)
	assert.Len(t, m.wf.Snapshot().Goals, 1)
	assert.Zero(t, store.CallCount("DeleteEntry"), "unsaved rows are removed locally")

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyCtrlE})
	require.Len(t, m.wf.Snapshot().Expenses, 1)
	assert.Equal(t, "expenses[0].description", m.Focused())
}

func TestRepeatedDeleteRemovesOnlyFocusedRow(t *testing.T) {
	m := newTestModel(t, testutil.NewFakeStore())
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyCtrlG}, tea.KeyMsg{Type: tea.KeyCtrlG})
	require.Len(t, m.wf.Snapshot().Goals, 2)
	m.focusTarget(target{kind: model.KindGoal, pos: 0, column: model.EntryFieldDescription})
	require.Equal(t, "goals[0].description", m.Focused())

	// Both presses arrive before either delete has run.
	next, first := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	m = next.(Model)
	next, second := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	m = next.(Model)
	assert.Nil(t, second)

	m, _ = run(m, first)
	goals := m.wf.Snapshot().Goals
	require.Len(t, goals, 1)
	assert.Equal(t, "Goal 2", goals[0].Description)
}

func TestEditAfterPendingDeleteKeepsItsRow(t *testing.T) {
	m := newTestModel(t, testutil.NewFakeStore())
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyCtrlG}, tea.KeyMsg{Type: tea.KeyCtrlG})
	m.focusTarget(target{kind: model.KindGoal, pos: 0, column: model.EntryFieldDescription})

	next, del := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	m = next.(Model)

	// Move to the second goal and rename it while the delete is pending.
	m.focusTarget(target{kind: model.KindGoal, pos: 1, column: model.EntryFieldDescription})
	m.fields[m.focus].input.SetValue("Car")

	// The delete lands first, then the edit is applied on blur.
	del()
	_, changed := m.apply()
	assert.True(t, changed)

	goals := m.wf.Snapshot().Goals
	require.Len(t, goals, 1)
	assert.Equal(t, "Car", goals[0].Description)
}

func TestDeleteIgnoresProfileFields(t *testing.T) {
	m := newTestModel(t, testutil.NewFakeStore())
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyCtrlD})
	assert.Equal(t, "age", m.Focused())
}

func TestEntryEditsAutosave(t *testing.T) {
	store := testutil.NewFakeStore()
	m := newTestModel(t, store)

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyCtrlG}, tab, typed("5000000"), tab)

	goals := m.wf.Snapshot().Goals
	require.Len(t, goals, 1)
	assert.InDelta(t, 5_000_000, goals[0].Amount, 0.001)
	assert.True(t, goals[0].Persisted())
	require.Len(t, store.StoredEntries(model.KindGoal), 1)
}

func TestSaveShowsBanner(t *testing.T) {
	store := testutil.NewFakeStore()
	m := newTestModel(t, store)

	m, _ = send(m, typed("30"), tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.False(t, m.saving)
	require.NotNil(t, store.StoredProfile())
	assert.Equal(t, 30, model.IntValue(store.StoredProfile().Age))
	assert.Contains(t, m.View(), "Financial data saved successfully!")
}

func TestEscCommitsThenQuits(t *testing.T) {
	store := testutil.NewFakeStore()
	m := newTestModel(t, store)

	m, quit := send(m, typed("42"), tea.KeyMsg{Type: tea.KeyEsc})

	assert.True(t, quit)
	assert.Empty(t, m.View())
	assert.Equal(t, 42, model.IntValue(m.wf.Snapshot().Profile.Age))
	assert.Equal(t, 1, store.CallCount("CreateProfile"))
}

func TestInitLoadsPlan(t *testing.T) {
	store := testutil.NewFakeStore()
	p := model.NewProfile()
	p.Age = model.IntPtr(30)
	p.CurrentAnnualGrossIncome = model.FloatPtr(1_200_000)
	store.Seed(&p, model.NewGoal("House", 5_000_000))

	wf := workflow.New(store, workflow.Options{})
	m, err := New(WithWorkflow(wf), WithSession(testSession))
	require.NoError(t, err)
	m.bannerDelay = 0
	assert.Contains(t, m.View(), "Loading")

	m, _ = run(m, m.Init())

	assert.False(t, m.loading)
	view := m.View()
	assert.Contains(t, view, "House")
	assert.Contains(t, view, "Summary")
	assert.Contains(t, view, "asha")
}

func TestUnparseableValuesBecomeZero(t *testing.T) {
	m := newTestModel(t, testutil.NewFakeStore())
	m, _ = send(m, typed("abc"), tab)

	require.NotNil(t, m.wf.Snapshot().Profile.Age)
	assert.Zero(t, *m.wf.Snapshot().Profile.Age)
	assert.Equal(t, "0", m.fields[0].input.Value())
}
