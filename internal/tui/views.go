package tui

import (
	"strings"

	"github.com/Veraticus/life-sheet/internal/cli"
	"github.com/Veraticus/life-sheet/internal/common"
	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/Veraticus/life-sheet/internal/workflow"
	"github.com/charmbracelet/lipgloss"
)

var (
	labelStyle   = lipgloss.NewStyle().Width(32)
	focusedStyle = lipgloss.NewStyle().Foreground(cli.PrimaryColor).Bold(true)
	sectionStyle = cli.TitleStyle.MarginBottom(0).MarginTop(1)
	cellStyle    = lipgloss.NewStyle().PaddingRight(2)
)

// View renders the form.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(cli.FormatTitle("Life Sheet"))
	if name := m.config.Session.Username; name != "" {
		b.WriteString(cli.SubtleStyle.Render("  " + name))
	}
	b.WriteString("\n")

	if m.loading {
		b.WriteString(cli.FormatInfo("Loading...") + "\n")
		return b.String()
	}

	form := m.renderForm()
	side := m.renderSummary()
	if m.width >= 110 {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, form, "   ", side))
	} else {
		b.WriteString(form + "\n\n" + side)
	}
	b.WriteString("\n")

	if banner := m.renderBanner(); banner != "" {
		b.WriteString("\n" + banner + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keymap))
	return b.String()
}

func (m Model) renderForm() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Profile") + "\n")

	i := 0
	for ; i < len(m.fields) && m.fields[i].target.isProfile(); i++ {
		label := labelStyle.Render(m.fields[i].label)
		if i == m.focus {
			label = labelStyle.Inherit(focusedStyle).Render(m.fields[i].label)
		}
		b.WriteString(label + m.fields[i].input.View() + "\n")
	}

	snap := m.wf.Snapshot()
	for _, kind := range model.EntryKinds {
		b.WriteString(sectionStyle.Render(kind.Title()+"s") + "\n")
		n := len(snap.Entries(kind))
		if n == 0 {
			b.WriteString(cli.SubtleStyle.Render("none") + "\n")
			continue
		}
		for pos := 0; pos < n; pos++ {
			var cells []string
			for ; i < len(m.fields) && m.fields[i].target.kind == kind && m.fields[i].target.pos == pos; i++ {
				cell := m.fields[i].input.View()
				if i == m.focus {
					cell = focusedStyle.Render("›") + cell
				} else {
					cell = " " + cell
				}
				cells = append(cells, cellStyle.Render(cell))
			}
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderSummary() string {
	summary, ok := m.wf.Summary()
	if !ok {
		return cli.RenderIncomplete()
	}
	return cli.RenderSummary(summary, m.wf.Snapshot().Profile.Warnings())
}

func (m Model) renderBanner() string {
	status := m.wf.Status()
	switch status.Kind {
	case workflow.StatusSuccess:
		return cli.FormatSuccess(status.Message)
	case workflow.StatusError:
		return cli.FormatError(status.Message)
	case workflow.StatusInfo:
		return cli.FormatInfo(status.Message)
	}
	if m.saving {
		return cli.FormatInfo("Saving...")
	}
	if common.Classify(m.lastError) == common.ClassLocal {
		return cli.FormatWarning(common.UserMessage(m.lastError))
	}
	return ""
}
