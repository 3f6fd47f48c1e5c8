// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/learnlab/internal/api"
	"github.com/jeranaias/learnlab/internal/content"
	"github.com/jeranaias/learnlab/internal/render"
	"github.com/jeranaias/learnlab/internal/storage"
	"github.com/jeranaias/learnlab/internal/ui/components"
	"github.com/jeranaias/learnlab/internal/ui/styles"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Tutor answers chat messages.
type Tutor interface {
	SendChat(ctx context.Context, message string) (*api.ChatMessage, error)
}

// History persists conversations.
type History interface {
	Save(ctx context.Context, conv *storage.StoredConversation) (string, error)
}

// Deps are the collaborators of the chat screen. Tutor is required; a nil
// History disables saving.
type Deps struct {
	Theme         *styles.Theme
	RenderOptions render.Options
	Tutor         Tutor
	History       History
	Logger        *zap.Logger

	// Clipboard writes text to the system clipboard. Defaults to atotto/clipboard.
	Clipboard func(string) error
}

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat screen.
type State int

const (
	StateReady   State = iota // Ready for input
	StateWaiting              // Waiting for the tutor's reply
	StateError                // Last request failed
)

// Message is one entry of the conversation on screen.
type Message struct {
	Role       string
	Content    string
	Attachment string // MIME type of an inline file, if any
	Time       time.Time

	rendered string
}

// =============================================================================
// BUBBLE TEA MESSAGES
// =============================================================================

type replyMsg struct {
	seq   int
	reply *api.ChatMessage
	err   error
}

type savedMsg struct {
	err error
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	state State

	theme      *styles.Theme
	renderOpts render.Options
	renderer   *render.Renderer
	tutor      Tutor
	history    History
	saver      *saver
	logger     *zap.Logger
	clipboard  func(string) error
	now        func() time.Time

	width  int
	height int

	messages    []Message
	convID      string
	convCreated time.Time

	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	help     help.Model
	keyMap   KeyMap

	// copyPending is set after ctrl+y while waiting for the block number.
	copyPending bool
	showHelp    bool
	statusMsg   string
	lastErr     error

	// seq identifies the in-flight request; replies for older ones are dropped.
	seq    int
	cancel context.CancelFunc
}

// New creates a new chat model.
func New(deps Deps) Model {
	if deps.Theme == nil {
		deps.Theme = styles.NewTheme("auto")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clipboard == nil {
		deps.Clipboard = clipboard.WriteAll
	}

	ta := textarea.New()
	ta.Placeholder = "Ask the tutor... (Enter to send, Alt+Enter for a new line)"
	ta.ShowLineNumbers = false
	ta.CharLimit = 8000
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Purple)

	m := Model{
		theme:      deps.Theme,
		renderOpts: deps.RenderOptions,
		tutor:      deps.Tutor,
		history:    deps.History,
		saver:      &saver{},
		logger:     deps.Logger.Named("chat"),
		clipboard:  deps.Clipboard,
		now:        time.Now,
		viewport:   viewport.New(80, 20),
		input:      ta,
		spinner:    sp,
		help:       help.New(),
		keyMap:     DefaultKeyMap(),
	}
	m.renderer = render.New(m.renderOpts, m.theme)
	m.refresh()
	return m
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// State returns the screen state.
func (m Model) State() State {
	return m.state
}

// Messages returns the conversation shown on screen.
func (m Model) Messages() []Message {
	return m.messages
}

// Status returns the status line text.
func (m Model) Status() string {
	return m.statusMsg
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.state != StateWaiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case replyMsg:
		return m.handleReply(msg)

	case savedMsg:
		if msg.err != nil {
			m.logger.Warn("failed to save conversation", zap.Error(msg.err))
			m.statusMsg = "History not saved: " + msg.err.Error()
		}
		return m, nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.copyPending {
		m.copyPending = false
		if n, err := strconv.Atoi(msg.String()); err == nil {
			m.copyBlock(n)
		} else {
			m.statusMsg = "Copy cancelled"
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.stopRequest()
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Copy):
		return m.startCopy(), nil

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.layout()
		return m, nil

	case key.Matches(msg, m.keyMap.Cancel):
		if m.state == StateWaiting {
			m.stopRequest()
			m.state = StateReady
			m.statusMsg = "Request cancelled"
		} else if m.state == StateError {
			m.state = StateReady
			m.lastErr = nil
		}
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
		return m, nil
	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
		return m, nil
	case key.Matches(msg, m.keyMap.Top):
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keyMap.Bottom):
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keyMap.Clear):
		return m.clear(), nil

	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// SENDING
// =============================================================================

func (m Model) submit() (Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if m.state == StateWaiting {
		m.statusMsg = "Still waiting for the tutor..."
		return m, nil
	}

	switch fields := strings.Fields(text); fields[0] {
	case "/clear", "/new":
		m.input.Reset()
		return m.clear(), nil
	case "/copy":
		m.input.Reset()
		if len(fields) == 2 {
			if n, err := strconv.Atoi(fields[1]); err == nil {
				m.copyBlock(n)
				return m, nil
			}
		}
		m.statusMsg = "Usage: /copy <block number>"
		return m, nil
	}

	if m.convID == "" {
		m.convID = uuid.NewString()
		m.convCreated = m.now()
	}
	m.messages = append(m.messages, Message{Role: storage.RoleUser, Content: text, Time: m.now()})
	m.input.Reset()
	m.state = StateWaiting
	m.lastErr = nil
	m.statusMsg = ""
	m.seq++

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.refresh()

	return m, tea.Batch(m.spinner.Tick, sendCmd(ctx, m.tutor, m.seq, text))
}

func sendCmd(ctx context.Context, tutor Tutor, seq int, text string) tea.Cmd {
	return func() tea.Msg {
		if tutor == nil {
			return replyMsg{seq: seq, err: api.ErrNotAuthenticated}
		}
		reply, err := tutor.SendChat(ctx, text)
		return replyMsg{seq: seq, reply: reply, err: err}
	}
}

func (m Model) handleReply(msg replyMsg) (Model, tea.Cmd) {
	if msg.seq != m.seq || m.state != StateWaiting {
		return m, nil
	}
	m.stopRequest()

	if msg.err != nil {
		m.logger.Debug("chat request failed", zap.Error(msg.err))
		m.state = StateError
		m.lastErr = msg.err
		if ended := components.SessionEndedIfUnauthorized(msg.err); ended != nil {
			return m, func() tea.Msg { return *ended }
		}
		return m, nil
	}

	reply := Message{Role: storage.RoleAssistant, Time: m.now()}
	if msg.reply != nil {
		reply.Content = msg.reply.Content
		reply.Attachment = msg.reply.FileMimeType
		if !msg.reply.CreatedAt.IsZero() {
			reply.Time = msg.reply.CreatedAt
		}
	}
	m.messages = append(m.messages, reply)
	m.state = StateReady

	if n := len(content.CodeBlocks(content.Parse(reply.Content))); n > 0 {
		m.statusMsg = fmt.Sprintf("%d code block(s): press C-y then a number to copy", n)
	}
	m.refresh()

	return m, m.saveCmd()
}

func (m *Model) stopRequest() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// =============================================================================
// HISTORY
// =============================================================================

// saver drops snapshots older than one already written, since save commands
// may finish out of order.
type saver struct {
	mu    sync.Mutex
	saved int
}

func (m Model) saveCmd() tea.Cmd {
	if m.history == nil {
		return nil
	}

	conv := &storage.StoredConversation{
		ID:        m.convID,
		CreatedAt: m.convCreated,
		Messages:  make([]storage.StoredMessage, 0, len(m.messages)),
	}
	for _, msg := range m.messages {
		conv.Messages = append(conv.Messages, storage.StoredMessage{
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.Time,
		})
	}

	history, s := m.history, m.saver
	return func() tea.Msg {
		s.mu.Lock()
		defer s.mu.Unlock()
		if len(conv.Messages) < s.saved {
			return nil
		}
		if _, err := history.Save(context.Background(), conv); err != nil {
			return savedMsg{err: err}
		}
		s.saved = len(conv.Messages)
		return savedMsg{}
	}
}

func (m Model) clear() Model {
	if m.state == StateWaiting {
		m.statusMsg = "Wait for the reply before starting over"
		return m
	}
	m.messages = nil
	m.convID = ""
	m.saver = &saver{}
	m.state = StateReady
	m.lastErr = nil
	m.statusMsg = "Started a new conversation"
	m.refresh()
	return m
}

// =============================================================================
// COPY
// =============================================================================

// lastReply returns the most recent tutor message, or "".
func (m Model) lastReply() string {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].Role == storage.RoleAssistant {
			return m.messages[i].Content
		}
	}
	return ""
}

func (m Model) startCopy() Model {
	blocks := content.CodeBlocks(content.Parse(m.lastReply()))
	switch len(blocks) {
	case 0:
		m.statusMsg = "The last reply has no code blocks"
	case 1:
		m.copyBlock(1)
	default:
		m.copyPending = true
		m.statusMsg = fmt.Sprintf("Copy which block? (1-%d)", len(blocks))
	}
	return m
}

// copyBlock copies code block n (1-based) of the last reply.
func (m *Model) copyBlock(n int) {
	blocks := content.CodeBlocks(content.Parse(m.lastReply()))
	if n < 1 || n > len(blocks) {
		m.statusMsg = fmt.Sprintf("No code block %d in the last reply", n)
		return
	}

	code := blocks[n-1].Code
	if err := m.clipboard(code); err != nil {
		m.logger.Warn("clipboard write failed", zap.Error(err))
		m.statusMsg = "Failed to copy: " + err.Error()
		return
	}
	lines := strings.Count(code, "\n") + 1
	m.statusMsg = fmt.Sprintf("Copied block %d (%d lines)", n, lines)
}
