package tui

import (
	"context"
	"time"

	"github.com/Veraticus/life-sheet/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.config.Timeout)
}

// loadCmd replaces the plan with the stored data.
func (m Model) loadCmd() tea.Cmd {
	wf, sess := m.wf, m.config.Session
	return func() tea.Msg {
		ctx, cancel := m.opContext()
		defer cancel()
		return loadedMsg{err: wf.Load(ctx, sess)}
	}
}

// saveCmd runs an explicit full save.
func (m Model) saveCmd() tea.Cmd {
	wf, sess := m.wf, m.config.Session
	return func() tea.Msg {
		ctx, cancel := m.opContext()
		defer cancel()
		result, err := wf.Save(ctx, sess)
		return savedMsg{result: result, err: err}
	}
}

// autosaveCmd saves after a field lost focus.
func (m Model) autosaveCmd(field string) tea.Cmd {
	wf, sess := m.wf, m.config.Session
	return func() tea.Msg {
		ctx, cancel := m.opContext()
		defer cancel()
		return autosavedMsg{field: field, err: wf.Autosave(ctx, sess, field)}
	}
}

// deleteCmd removes the entry with handle ref remotely and locally.
func (m Model) deleteCmd(kind model.EntryKind, ref uint64) tea.Cmd {
	wf, sess := m.wf, m.config.Session
	return func() tea.Msg {
		ctx, cancel := m.opContext()
		defer cancel()
		removed, err := wf.Delete(ctx, sess, kind, model.HandleKey(ref))
		return deletedMsg{removed: removed, err: err, ref: ref}
	}
}

// quitCmd finishes a pending autosave before quitting.
func (m Model) quitCmd(autosave tea.Cmd) tea.Cmd {
	return func() tea.Msg {
		if autosave != nil {
			autosave()
		}
		return tea.Quit()
	}
}

// bannerCmd redraws once the current banner has expired.
func (m Model) bannerCmd() tea.Cmd {
	if m.wf.Status().Message == "" {
		return nil
	}
	return tea.Tick(m.bannerDelay, func(time.Time) tea.Msg {
		return bannerExpiredMsg{}
	})
}
