// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/learnlab/internal/api"
	"github.com/jeranaias/learnlab/internal/auth"
	"github.com/jeranaias/learnlab/internal/render"
	"github.com/jeranaias/learnlab/internal/ui/components"
	"github.com/jeranaias/learnlab/internal/ui/styles"
)

type stubCatalog struct{}

func (stubCatalog) Problems(context.Context) ([]api.Problem, error) {
	return []api.Problem{{ID: "p1", Title: "Two Sum", Difficulty: "easy"}}, nil
}

func (stubCatalog) Evaluate(context.Context, api.EvaluationRequest) (*api.Evaluation, error) {
	return &api.Evaluation{Accuracy: 100}, nil
}

func newTestApp(t *testing.T, deps Deps) Model {
	t.Helper()
	deps.Theme = styles.NewTheme("dark")
	deps.RenderOptions = render.Options{Profile: termenv.Ascii}
	if deps.Catalog == nil {
		deps.Catalog = stubCatalog{}
	}
	m := New(context.Background(), deps)
	return update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func TestApp_HeaderAndDefaultScreen(t *testing.T) {
	m := newTestApp(t, Deps{User: "ada"})

	assert.Equal(t, ScreenChat, m.Screen())
	view := m.View()
	assert.Contains(t, view, "learnlab")
	assert.Contains(t, view, "Chat")
	assert.Contains(t, view, "Problems")
	assert.Contains(t, view, "ada")
}

func TestApp_SwitchScreens(t *testing.T) {
	m := newTestApp(t, Deps{})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, ScreenProblems, m.Screen())
	assert.Contains(t, m.View(), "Loading problems")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, ScreenChat, m.Screen())
}

func TestApp_ResultsReachScreens(t *testing.T) {
	m := newTestApp(t, Deps{})
	for _, msg := range collect(m.arena.Init()) {
		m = update(t, m, msg)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Contains(t, m.View(), "Two Sum")
}

func TestApp_SessionEnded(t *testing.T) {
	var reported error
	m := newTestApp(t, Deps{OnSessionEnd: func(err error) { reported = err }})

	m = update(t, m, components.SessionEndedMsg{Err: auth.ErrDayEnded})
	assert.Equal(t, ScreenSession, m.Screen())
	assert.ErrorIs(t, m.Ended(), auth.ErrDayEnded)
	assert.ErrorIs(t, reported, auth.ErrDayEnded)
	assert.Contains(t, m.View(), "Session Expired")

	// Screens no longer receive keys.
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, ScreenSession, m.Screen())

	// A second notice does not replace the first reason.
	m = update(t, m, components.SessionEndedMsg{Err: errors.New("later")})
	assert.ErrorIs(t, m.Ended(), auth.ErrDayEnded)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_GuardEndsSession(t *testing.T) {
	guard := auth.NewGuard(nil, nil, auth.DefaultPolicy, nil, nil)
	m := newTestApp(t, Deps{Guard: guard})

	msg := m.watchCmd()()
	ended, ok := msg.(components.SessionEndedMsg)
	require.True(t, ok)
	assert.ErrorIs(t, ended.Err, auth.ErrNoSession)
}

func TestApp_NoGuardNoWatcher(t *testing.T) {
	m := newTestApp(t, Deps{})
	assert.Nil(t, m.watchCmd())
}

func TestApp_CtrlCQuits(t *testing.T) {
	m := newTestApp(t, Deps{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}
