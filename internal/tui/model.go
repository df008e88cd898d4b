// Package tui is the interactive Life Sheet form: profile fields and entry
// rows that recompute the summary as you type and autosave when a field
// loses focus.
package tui

import (
	"errors"
	"time"

	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/Veraticus/life-sheet/internal/workflow"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Model holds the form state.
type Model struct {
	wf          *workflow.Workflow
	lastError   error
	help        help.Model
	keymap      KeyMap
	fields      []formField
	deleting    map[uint64]struct{}
	config      Config
	bannerDelay time.Duration
	focus       int
	width       int
	height      int
	loading     bool
	saving      bool
	quitting    bool
}

// New creates the form model.
func New(opts ...Option) (Model, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Workflow == nil {
		return Model{}, errors.New("workflow is required")
	}

	m := Model{
		wf:          cfg.Workflow,
		config:      cfg,
		keymap:      DefaultKeyMap(),
		help:        help.New(),
		width:       cfg.Width,
		height:      cfg.Height,
		bannerDelay: workflow.DefaultBannerTTL + 100*time.Millisecond,
		loading:     !cfg.SkipLoad,
		deleting:    make(map[uint64]struct{}),
	}
	m.rebuild()
	return m, nil
}

// Init loads the plan unless the form starts from the current one.
func (m Model) Init() tea.Cmd {
	if m.config.SkipLoad {
		return nil
	}
	return m.loadCmd()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case loadedMsg:
		m.loading = false
		m.lastError = msg.err
		m.rebuild()
		return m, m.bannerCmd()

	case savedMsg:
		m.saving = false
		m.lastError = msg.err
		return m, m.bannerCmd()

	case autosavedMsg:
		if msg.err != nil {
			m.lastError = msg.err
		}
		return m, m.bannerCmd()

	case deletedMsg:
		delete(m.deleting, msg.ref)
		m.lastError = msg.err
		m.rebuild()
		return m, m.bannerCmd()

	case bannerExpiredMsg:
		return m, nil
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, m.quitCmd(m.commit())

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keymap.Next):
		cmd := m.commit()
		m.moveFocus(1)
		return m, cmd

	case key.Matches(msg, m.keymap.Prev):
		cmd := m.commit()
		m.moveFocus(-1)
		return m, cmd

	case key.Matches(msg, m.keymap.Save):
		if m.saving {
			return m, nil
		}
		m.apply()
		m.saving = true
		return m, m.saveCmd()

	case key.Matches(msg, m.keymap.AddGoal):
		return m.add(model.KindGoal)
	case key.Matches(msg, m.keymap.AddExpense):
		return m.add(model.KindExpense)
	case key.Matches(msg, m.keymap.AddLoan):
		return m.add(model.KindLoan)

	case key.Matches(msg, m.keymap.Delete):
		return m.remove()
	}

	return m.updateFocused(msg)
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	if len(m.fields) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.fields[m.focus].input, cmd = m.fields[m.focus].input.Update(msg)
	return m, cmd
}

// apply writes the focused input into the plan. It reports whether the value changed.
func (m *Model) apply() (string, bool) {
	if len(m.fields) == 0 {
		return "", false
	}
	f := m.fields[m.focus]
	value := f.input.Value()
	current, ok := currentValue(m.wf.Snapshot(), f)
	if !ok || value == current {
		return "", false
	}

	var err error
	if f.target.isProfile() {
		_, err = m.wf.SetField(string(f.target.profile), value)
	} else {
		err = m.wf.Update(f.target.kind, model.HandleKey(f.ref), f.target.column, value)
	}
	if err != nil {
		m.lastError = err
		return "", false
	}
	m.lastError = nil
	if normalized, ok := currentValue(m.wf.Snapshot(), f); ok {
		m.fields[m.focus].input.SetValue(normalized)
	}
	return f.target.name(), true
}

// commit applies the focused input and, when it changed, autosaves.
func (m *Model) commit() tea.Cmd {
	field, changed := m.apply()
	if !changed {
		return nil
	}
	return m.autosaveCmd(field)
}

func (m *Model) moveFocus(delta int) {
	if len(m.fields) == 0 {
		return
	}
	m.fields[m.focus].input.Blur()
	m.focus = (m.focus + delta + len(m.fields)) % len(m.fields)
	m.fields[m.focus].input.Focus()
}

func (m Model) add(kind model.EntryKind) (tea.Model, tea.Cmd) {
	cmd := m.commit()
	k, err := m.wf.AddDefault(kind)
	if err != nil {
		m.lastError = err
		return m, cmd
	}
	m.rebuild()
	if pos, ok := k.Index(); ok {
		m.focusTarget(target{kind: kind, pos: pos, column: model.EntryFieldDescription})
	}
	return m, cmd
}

func (m Model) remove() (tea.Model, tea.Cmd) {
	if len(m.fields) == 0 {
		return m, nil
	}
	f := m.fields[m.focus]
	if f.target.isProfile() {
		return m, nil
	}
	// The row stays on screen until its delete finishes; repeated presses are ignored.
	if _, busy := m.deleting[f.ref]; busy {
		return m, nil
	}
	m.deleting[f.ref] = struct{}{}
	return m, m.deleteCmd(f.target.kind, f.ref)
}

// rebuild recreates the inputs from the plan, keeping focus on the same position.
func (m *Model) rebuild() {
	m.fields = buildFields(m.wf.Snapshot())
	if m.focus >= len(m.fields) {
		m.focus = len(m.fields) - 1
	}
	if m.focus < 0 {
		m.focus = 0
	}
	if len(m.fields) > 0 {
		m.fields[m.focus].input.Focus()
	}
}

func (m *Model) focusTarget(t target) {
	for i, f := range m.fields {
		if f.target == t {
			m.fields[m.focus].input.Blur()
			m.focus = i
			m.fields[i].input.Focus()
			return
		}
	}
}

// Focused returns the name of the focused field.
func (m Model) Focused() string {
	if len(m.fields) == 0 {
		return ""
	}
	return m.fields[m.focus].target.name()
}
