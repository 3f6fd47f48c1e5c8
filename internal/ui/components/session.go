// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"errors"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/learnlab/internal/api"
	"github.com/jeranaias/learnlab/internal/auth"
	"github.com/jeranaias/learnlab/internal/ui/styles"
)

// =============================================================================
// SESSION MESSAGES
// =============================================================================

// SessionEndedMsg tells the application the session can no longer be used:
// the guard found it expired, or the backend answered 401.
type SessionEndedMsg struct {
	Err error
}

// SessionEndedIfUnauthorized returns a SessionEndedMsg for errors that mean
// the backend rejected the token, and nil otherwise.
func SessionEndedIfUnauthorized(err error) *SessionEndedMsg {
	if errors.Is(err, api.ErrUnauthorized) || errors.Is(err, api.ErrNotAuthenticated) {
		return &SessionEndedMsg{Err: err}
	}
	return nil
}

// SessionReason explains in plain words why a session ended.
func SessionReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrDayEnded):
		return "Sessions end at midnight. Sign in again to keep learning."
	case errors.Is(err, auth.ErrTokenExpired):
		return "Your sign-in has expired."
	case errors.Is(err, auth.ErrMalformedToken):
		return "The stored sign-in could not be read."
	case errors.Is(err, api.ErrUnauthorized), errors.Is(err, api.ErrNotAuthenticated):
		return "The server no longer accepts this session."
	case err == nil:
		return "You are signed out."
	default:
		return err.Error()
	}
}

// =============================================================================
// SESSION ENDED SCREEN
// =============================================================================

// SessionScreen is shown in place of every screen once the session ends.
type SessionScreen struct {
	reason error
	width  int
	height int
}

// NewSessionScreen creates the screen for the given reason.
func NewSessionScreen(reason error) SessionScreen {
	return SessionScreen{reason: reason}
}

// SetSize sets the screen dimensions.
func (s *SessionScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Reason returns the error that ended the session.
func (s SessionScreen) Reason() error {
	return s.reason
}

// View renders a centered box with the reason and how to continue.
func (s SessionScreen) View() string {
	width := s.width
	if width == 0 {
		width = 60
	}
	height := s.height
	if height == 0 {
		height = 24
	}

	maxWidth := width - 8
	if maxWidth < 40 {
		maxWidth = 40
	}
	if maxWidth > 60 {
		maxWidth = 60
	}

	title := lipgloss.NewStyle().Foreground(styles.Rose).Bold(true).
		Render(styles.StatusIndicators.Error + " Session Expired")
	msg := lipgloss.NewStyle().Foreground(styles.TextPrimary).
		Width(maxWidth - 8).Align(lipgloss.Center).
		Render(SessionReason(s.reason))
	hint := lipgloss.NewStyle().Foreground(styles.TextSecondary).Italic(true).
		Render("Run `learnlab login`, then start learnlab again.")
	quit := lipgloss.NewStyle().Foreground(styles.TextMuted).
		Render("Press q to quit")

	content := lipgloss.JoinVertical(lipgloss.Center, title, "", msg, "", hint, "", quit)

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(styles.Rose).
		Padding(1, 3).
		Width(maxWidth).
		Align(lipgloss.Center).
		Render(content)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
