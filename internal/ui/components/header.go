// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/learnlab/internal/ui/styles"
	"github.com/jeranaias/learnlab/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the single-line bar at the top of every screen: brand, screen
// tabs and the signed-in user.
type Header struct {
	Title  string
	Tabs   []string
	Active int
	User   string
	Width  int

	theme *styles.Theme
}

// NewHeader creates a header with the default title.
func NewHeader(theme *styles.Theme, tabs ...string) *Header {
	return &Header{
		Title: "learnlab",
		Tabs:  tabs,
		Width: 80,
		theme: theme,
	}
}

// SetWidth sets the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// View renders the header.
func (h *Header) View() string {
	brand := h.theme.HeaderBrand.Render("< " + h.Title + " >")

	tabs := make([]string, len(h.Tabs))
	for i, tab := range h.Tabs {
		if i == h.Active {
			tabs[i] = h.theme.ListSelected.Render(" " + tab + " ")
		} else {
			tabs[i] = h.theme.Muted.Render(" " + tab + " ")
		}
	}
	left := brand + "  " + strings.Join(tabs, "")

	right := ""
	if h.User != "" {
		// Keep the user name from pushing the tabs off a narrow terminal.
		room := h.Width - lipgloss.Width(left) - 4
		if room > 3 {
			right = h.theme.Subtitle.Render(util.Truncate(h.User, room))
		}
	}

	gap := h.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	line := left + strings.Repeat(" ", gap) + right

	return h.theme.Header.MaxWidth(h.Width).Render(line)
}
