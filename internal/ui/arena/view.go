// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package arena

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/learnlab/internal/api"
	"github.com/jeranaias/learnlab/internal/render"
	"github.com/jeranaias/learnlab/internal/ui/styles"
	"github.com/jeranaias/learnlab/internal/util"
)

const (
	editorHeight = 10
	statusHeight = 1
	minViewport  = 3
	barWidth     = 30
)

// layout sizes the panes for the current state and redraws the viewport.
func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}

	opts := m.renderOpts
	if opts.Width == 0 || opts.Width > m.width-4 {
		opts.Width = m.width - 4
	}
	m.renderer = render.New(opts, m.theme)
	m.help.Width = m.width

	vpHeight := m.height - statusHeight - 2
	if m.state == StateSolving || m.state == StateEvaluating {
		vpHeight -= editorHeight + 2
	}
	if vpHeight < minViewport {
		vpHeight = minViewport
	}
	m.viewport.Width = m.width
	m.viewport.Height = vpHeight
	m.editor.SetWidth(m.width - 2)
	m.editor.SetHeight(editorHeight)

	switch m.state {
	case StateSolving, StateEvaluating:
		m.viewport.SetContent(m.renderProblem())
	case StateReport:
		m.viewport.SetContent(RenderReport(m.renderer, m.theme, m.selected, m.evaluation))
	}
}

func (m Model) renderProblem() string {
	p := m.selected
	var b strings.Builder
	b.WriteString(m.theme.Title.Render(p.Title))
	b.WriteString("  ")
	b.WriteString(m.theme.Difficulty(difficultyLabel(p.Difficulty)))
	if p.Category != "" {
		b.WriteString(m.theme.Muted.Render("  " + p.Category))
	}
	b.WriteString("\n\n")
	if strings.TrimSpace(p.Description) == "" {
		b.WriteString(m.theme.Placeholder.Render("No description provided."))
	} else {
		b.WriteString(m.renderer.Message(p.Description))
	}
	return b.String()
}

// RenderReport formats an evaluation for display. The CLI uses it for
// non-interactive submissions too.
func RenderReport(r *render.Renderer, theme *styles.Theme, p api.Problem, eval *api.Evaluation) string {
	if eval == nil {
		return theme.Placeholder.Render("No evaluation yet.")
	}

	var b strings.Builder
	title := "Evaluation"
	if p.Title != "" {
		title += ": " + p.Title
	}
	b.WriteString(theme.Title.Render(title))
	b.WriteString("\n\n")

	b.WriteString(theme.Subtitle.Render("Accuracy "))
	b.WriteString(r.Accuracy(eval.Accuracy, barWidth))
	b.WriteString("\n")

	if eval.Complexity.Time != "" || eval.Complexity.Space != "" {
		b.WriteString(theme.Subtitle.Render("Complexity "))
		b.WriteString(fmt.Sprintf("time %s, space %s", orDash(eval.Complexity.Time), orDash(eval.Complexity.Space)))
		b.WriteString("\n")
	}

	writeList(&b, theme, "Strengths", eval.Strengths, theme.SuccessStyle)
	writeList(&b, theme, "Weaknesses", eval.Weaknesses, theme.WarningStyle)

	if strings.TrimSpace(eval.Feedback) != "" {
		b.WriteString("\n")
		b.WriteString(theme.Subtitle.Render("Feedback"))
		b.WriteString("\n")
		b.WriteString(r.Message(eval.Feedback))
		b.WriteString("\n")
	}

	writeList(&b, theme, "Suggestions", eval.Suggestions, theme.InfoStyle)
	return strings.TrimRight(b.String(), "\n")
}

func writeList(b *strings.Builder, theme *styles.Theme, heading string, items []string, bullet lipgloss.Style) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render(heading))
	b.WriteString("\n")
	for _, item := range items {
		b.WriteString(bullet.Render("  • "))
		b.WriteString(item)
		b.WriteString("\n")
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func difficultyLabel(d string) string {
	if d == "" {
		return "unrated"
	}
	return strings.ToLower(d)
}

// View renders the problems screen.
func (m Model) View() string {
	switch m.state {
	case StateLoading:
		return m.spinner.View() + m.theme.Muted.Render(" Loading problems...")
	case StateError:
		return m.theme.ErrorStyle.Render("Could not load problems: "+api.Message(m.err)) +
			"\n" + m.theme.Muted.Render("Press r to retry.")
	case StateList:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.listView(),
			m.statusLine(),
			m.help.ShortHelpView(m.keyMap.listHelp()),
		)
	case StateSolving, StateEvaluating:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.viewport.View(),
			m.editor.View(),
			m.statusLine(),
			m.help.ShortHelpView(m.keyMap.solveHelp()),
		)
	case StateReport:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.viewport.View(),
			m.help.ShortHelpView(m.keyMap.reportHelp()),
		)
	}
	return ""
}

func (m Model) listView() string {
	var b strings.Builder
	filter := "all"
	if d := Difficulties[m.filter]; d != "" {
		filter = d
	}
	b.WriteString(m.theme.Title.Render("Problems"))
	b.WriteString(m.theme.Muted.Render(fmt.Sprintf("  %d shown, difficulty: %s", len(m.visible), filter)))
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		b.WriteString(m.theme.Placeholder.Render("No problems match this filter."))
		return b.String()
	}

	// Keep the cursor on screen.
	rows := m.height - 6
	if rows < 3 {
		rows = len(m.visible)
	}
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := start + rows
	if end > len(m.visible) {
		end = len(m.visible)
	}

	titleWidth := m.width - 20
	if titleWidth < 20 {
		titleWidth = 40
	}
	for i := start; i < end; i++ {
		p := m.visible[i]
		line := fmt.Sprintf("%3d. %s", i+1, util.Truncate(p.Title, titleWidth))
		style := m.theme.ListItem
		if i == m.cursor {
			style = m.theme.ListSelected
		}
		b.WriteString(style.Render(line))
		b.WriteString("  ")
		b.WriteString(m.theme.Difficulty(difficultyLabel(p.Difficulty)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) statusLine() string {
	switch {
	case m.state == StateEvaluating:
		return m.spinner.View() + m.theme.Muted.Render(" Evaluating... ("+keyHelp(m.keyMap.Back)+" to cancel)")
	case m.statusMsg != "":
		return m.theme.Muted.Render(m.statusMsg)
	}
	return ""
}

func keyHelp(b key.Binding) string {
	return b.Help().Key
}
