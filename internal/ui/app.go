// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/learnlab/internal/auth"
	"github.com/jeranaias/learnlab/internal/render"
	"github.com/jeranaias/learnlab/internal/ui/arena"
	"github.com/jeranaias/learnlab/internal/ui/chat"
	"github.com/jeranaias/learnlab/internal/ui/components"
	"github.com/jeranaias/learnlab/internal/ui/styles"
)

// Deps are the collaborators of the application.
type Deps struct {
	Theme         *styles.Theme
	RenderOptions render.Options
	Tutor         chat.Tutor
	History       chat.History
	Catalog       arena.Catalog
	Clipboard     func(string) error
	Logger        *zap.Logger

	// User is shown in the header.
	User string

	// Guard, when set, is polled every CheckInterval and ends the
	// application's session once it reports the sign-in invalid.
	Guard         *auth.Guard
	CheckInterval time.Duration

	// OnSessionEnd runs once when the session ends for any reason.
	OnSessionEnd func(error)
}

// Screen identifies the visible screen.
type Screen int

const (
	ScreenChat     Screen = iota // Tutor chat
	ScreenProblems               // Problem list and solver
	ScreenSession                // Session ended
)

var (
	switchKey = key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("C-t", "switch screen"))
	quitKey   = key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("C-c", "quit"))
	closeKey  = key.NewBinding(key.WithKeys("q", "esc", "enter"), key.WithHelp("q", "quit"))
)

// Model is the root Bubble Tea model.
type Model struct {
	ctx    context.Context
	deps   Deps
	logger *zap.Logger

	screen  Screen
	header  *components.Header
	chat    chat.Model
	arena   arena.Model
	session components.SessionScreen
	ended   error

	width  int
	height int
}

// New creates the application model. ctx bounds the session watcher.
func New(ctx context.Context, deps Deps) Model {
	if deps.Theme == nil {
		deps.Theme = styles.NewTheme("auto")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	header := components.NewHeader(deps.Theme, "Chat", "Problems")
	header.User = deps.User

	return Model{
		ctx:    ctx,
		deps:   deps,
		logger: deps.Logger,
		header: header,
		chat: chat.New(chat.Deps{
			Theme:         deps.Theme,
			RenderOptions: deps.RenderOptions,
			Tutor:         deps.Tutor,
			History:       deps.History,
			Logger:        deps.Logger,
			Clipboard:     deps.Clipboard,
		}),
		arena: arena.New(arena.Deps{
			Theme:         deps.Theme,
			RenderOptions: deps.RenderOptions,
			Catalog:       deps.Catalog,
			Logger:        deps.Logger,
		}),
	}
}

// Init starts both screens and the session watcher.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.chat.Init(), m.arena.Init(), m.watchCmd())
}

func (m Model) watchCmd() tea.Cmd {
	guard, interval, ctx := m.deps.Guard, m.deps.CheckInterval, m.ctx
	if guard == nil {
		return nil
	}
	return func() tea.Msg {
		if err := guard.Watch(ctx, interval); err != nil {
			return components.SessionEndedMsg{Err: err}
		}
		return nil
	}
}

// Screen returns the visible screen.
func (m Model) Screen() Screen {
	return m.screen
}

// Ended returns why the session ended, or nil while it is active.
func (m Model) Ended() error {
	return m.ended
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.header.SetWidth(msg.Width)
		m.session.SetSize(msg.Width, msg.Height)
		inner := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - lipgloss.Height(m.header.View())}
		m.chat, _ = m.chat.Update(inner)
		m.arena, _ = m.arena.Update(inner)
		return m, nil

	case components.SessionEndedMsg:
		return m.endSession(msg.Err), nil

	case tea.KeyMsg:
		if key.Matches(msg, quitKey) {
			return m, tea.Quit
		}
		if m.screen == ScreenSession {
			if key.Matches(msg, closeKey) {
				return m, tea.Quit
			}
			return m, nil
		}
		if key.Matches(msg, switchKey) {
			return m.switchScreen(), nil
		}

		var cmd tea.Cmd
		if m.screen == ScreenChat {
			m.chat, cmd = m.chat.Update(msg)
		} else {
			m.arena, cmd = m.arena.Update(msg)
		}
		return m, cmd
	}

	if m.screen == ScreenSession {
		return m, nil
	}

	// Everything else is a result or tick addressed to one of the screens;
	// each ignores what it does not own.
	var chatCmd, arenaCmd tea.Cmd
	m.chat, chatCmd = m.chat.Update(msg)
	m.arena, arenaCmd = m.arena.Update(msg)
	return m, tea.Batch(chatCmd, arenaCmd)
}

func (m Model) switchScreen() Model {
	if m.screen == ScreenChat {
		m.screen = ScreenProblems
		m.header.Active = 1
	} else {
		m.screen = ScreenChat
		m.header.Active = 0
	}
	return m
}

func (m Model) endSession(err error) Model {
	if m.screen == ScreenSession {
		return m
	}
	m.logger.Info("session ended", zap.Error(err))
	m.screen = ScreenSession
	m.ended = err
	if m.ended == nil {
		m.ended = auth.ErrNoSession
	}
	m.session = components.NewSessionScreen(m.ended)
	m.session.SetSize(m.width, m.height)
	if m.deps.OnSessionEnd != nil {
		m.deps.OnSessionEnd(m.ended)
	}
	return m
}

// View renders the application.
func (m Model) View() string {
	if m.screen == ScreenSession {
		return m.session.View()
	}

	body := m.chat.View()
	if m.screen == ScreenProblems {
		body = m.arena.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body)
}

// Run starts the application and blocks until it exits. It returns why the
// session ended when that is what closed the application.
func Run(ctx context.Context, deps Deps) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(
		New(ctx, deps),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok && m.ended != nil {
		return m.ended
	}
	return nil
}
