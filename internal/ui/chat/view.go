// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/learnlab/internal/api"
	"github.com/jeranaias/learnlab/internal/render"
	"github.com/jeranaias/learnlab/internal/storage"
)

const (
	inputHeight  = 3
	statusHeight = 1
	minViewport  = 3
)

// emptyHint is shown before the first message.
const emptyHint = "Ask the tutor anything. Code in replies is highlighted and numbered; " +
	"press C-y then the number to copy a block."

// layout sizes the viewport and input to the current window and re-renders
// the conversation at the new width.
func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}

	m.help.Width = m.width
	helpHeight := lipgloss.Height(m.help.View(m.keyMap))

	vpHeight := m.height - inputHeight - statusHeight - helpHeight - 1
	if vpHeight < minViewport {
		vpHeight = minViewport
	}
	m.viewport.Width = m.width
	m.viewport.Height = vpHeight
	m.input.SetWidth(m.width - 2)

	// Code blocks are bordered, leave room for the frame.
	opts := m.renderOpts
	if opts.Width == 0 || opts.Width > m.width-4 {
		opts.Width = m.width - 4
	}
	m.renderer = render.New(opts, m.theme)
	for i := range m.messages {
		m.messages[i].rendered = ""
	}
	m.refresh()
}

// refresh renders messages that changed and scrolls to the bottom.
func (m *Model) refresh() {
	if len(m.messages) == 0 {
		m.viewport.SetContent(m.theme.Placeholder.Render(emptyHint))
		return
	}

	parts := make([]string, 0, len(m.messages))
	for i := range m.messages {
		msg := &m.messages[i]
		if msg.rendered == "" {
			msg.rendered = m.renderMessage(*msg)
		}
		parts = append(parts, msg.rendered)
	}
	m.viewport.SetContent(strings.Join(parts, "\n\n"))
	m.viewport.GotoBottom()
}

func (m Model) renderMessage(msg Message) string {
	label := m.theme.AssistantLabel.Render("Tutor")
	if msg.Role == storage.RoleUser {
		label = m.theme.UserLabel.Render("You")
	}
	header := label + " " + m.theme.Timestamp.Render(msg.Time.Format("15:04"))

	body := m.renderer.Message(msg.Content)
	if msg.Attachment != "" {
		body += "\n" + m.theme.Muted.Render("[attachment: "+msg.Attachment+"]")
	}
	return header + "\n" + body
}

// View renders the chat screen.
func (m Model) View() string {
	sections := []string{
		m.viewport.View(),
		m.statusLine(),
		m.input.View(),
		m.help.View(m.keyMap),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) statusLine() string {
	switch {
	case m.state == StateWaiting:
		return m.spinner.View() + m.theme.Muted.Render(" Waiting for the tutor...")
	case m.state == StateError && m.lastErr != nil:
		return m.theme.ErrorStyle.Render("Error: " + api.Message(m.lastErr) + " (Esc to dismiss)")
	case m.statusMsg != "":
		return m.theme.Muted.Render(m.statusMsg)
	}
	return ""
}
