// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package arena

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/learnlab/internal/api"
	"github.com/jeranaias/learnlab/internal/learn"
	"github.com/jeranaias/learnlab/internal/render"
	"github.com/jeranaias/learnlab/internal/ui/components"
	"github.com/jeranaias/learnlab/internal/ui/styles"
)

// Catalog lists problems and evaluates solutions.
type Catalog interface {
	Problems(ctx context.Context) ([]api.Problem, error)
	Evaluate(ctx context.Context, req api.EvaluationRequest) (*api.Evaluation, error)
}

// Deps are the collaborators of the problems screen.
type Deps struct {
	Theme         *styles.Theme
	RenderOptions render.Options
	Catalog       Catalog
	Logger        *zap.Logger
}

// State represents the current state of the problems screen.
type State int

const (
	StateLoading    State = iota // Fetching the problem list
	StateList                    // Browsing problems
	StateSolving                 // Editing a solution
	StateEvaluating              // Waiting for the evaluator
	StateReport                  // Showing the evaluation
	StateError                   // Loading failed
)

// Difficulties are cycled by the filter key; "" shows every problem.
var Difficulties = []string{"", "easy", "medium", "hard"}

type problemsMsg struct {
	problems []api.Problem
	err      error
}

type evaluationMsg struct {
	seq  int
	eval *api.Evaluation
	err  error
}

// Model is the Bubble Tea model for the problems screen.
type Model struct {
	state State

	theme      *styles.Theme
	renderOpts render.Options
	renderer   *render.Renderer
	catalog    Catalog
	logger     *zap.Logger

	width  int
	height int

	problems []api.Problem
	visible  []api.Problem
	cursor   int
	filter   int

	selected   api.Problem
	evaluation *api.Evaluation
	err        error
	statusMsg  string

	editor   textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	keyMap   KeyMap

	seq    int
	cancel context.CancelFunc
}

// New creates the problems screen.
func New(deps Deps) Model {
	if deps.Theme == nil {
		deps.Theme = styles.NewTheme("auto")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	ta := textarea.New()
	ta.Placeholder = "Write your solution here. C-s submits."
	ta.ShowLineNumbers = true
	ta.CharLimit = 20000
	ta.SetHeight(10)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Purple)

	return Model{
		state:      StateLoading,
		theme:      deps.Theme,
		renderOpts: deps.RenderOptions,
		renderer:   render.New(deps.RenderOptions, deps.Theme),
		catalog:    deps.Catalog,
		logger:     deps.Logger.Named("arena"),
		editor:     ta,
		viewport:   viewport.New(80, 10),
		spinner:    sp,
		help:       help.New(),
		keyMap:     DefaultKeyMap(),
	}
}

// Init loads the problem list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadCmd(m.catalog))
}

func loadCmd(catalog Catalog) tea.Cmd {
	return func() tea.Msg {
		if catalog == nil {
			return problemsMsg{err: api.ErrNotAuthenticated}
		}
		problems, err := catalog.Problems(context.Background())
		return problemsMsg{problems: problems, err: err}
	}
}

// State returns the screen state.
func (m Model) State() State {
	return m.state
}

// Visible returns the problems passing the current filter, in display order.
func (m Model) Visible() []api.Problem {
	return m.visible
}

// Selected returns the problem being solved or reported on.
func (m Model) Selected() api.Problem {
	return m.selected
}

// Evaluation returns the latest evaluation, or nil.
func (m Model) Evaluation() *api.Evaluation {
	return m.evaluation
}

// Capturing reports whether keys are going to the solution editor, so the
// application should not treat them as shortcuts.
func (m Model) Capturing() bool {
	return m.state == StateSolving
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case problemsMsg:
		return m.handleProblems(msg)

	case evaluationMsg:
		return m.handleEvaluation(msg)

	case spinner.TickMsg:
		if m.state != StateLoading && m.state != StateEvaluating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.state {
		case StateList:
			return m.updateList(msg)
		case StateSolving:
			return m.updateSolving(msg)
		case StateEvaluating:
			if key.Matches(msg, m.keyMap.Back) {
				m.stopRequest()
				m.state = StateSolving
				m.statusMsg = "Evaluation cancelled"
			}
			return m, nil
		case StateReport:
			return m.updateReport(msg)
		case StateError:
			if key.Matches(msg, m.keyMap.Reload) {
				return m.reload()
			}
		}
		return m, nil
	}

	if m.state == StateSolving {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleProblems(msg problemsMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Warn("failed to load problems", zap.Error(msg.err))
		m.state = StateError
		m.err = msg.err
		if ended := components.SessionEndedIfUnauthorized(msg.err); ended != nil {
			return m, func() tea.Msg { return *ended }
		}
		return m, nil
	}
	m.problems = msg.problems
	m.state = StateList
	m.err = nil
	m.applyFilter()
	return m, nil
}

func (m Model) reload() (Model, tea.Cmd) {
	m.state = StateLoading
	m.err = nil
	return m, tea.Batch(m.spinner.Tick, loadCmd(m.catalog))
}

// =============================================================================
// LIST
// =============================================================================

func (m *Model) applyFilter() {
	m.visible = learn.FilterProblems(m.problems, Difficulties[m.filter], "")
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) updateList(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keyMap.Down):
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keyMap.Filter):
		m.filter = (m.filter + 1) % len(Difficulties)
		m.cursor = 0
		m.applyFilter()
	case key.Matches(msg, m.keyMap.Reload):
		return m.reload()
	case key.Matches(msg, m.keyMap.Select):
		if len(m.visible) == 0 {
			return m, nil
		}
		return m.startSolving(m.visible[m.cursor])
	}
	return m, nil
}

// =============================================================================
// SOLVING
// =============================================================================

func (m Model) startSolving(p api.Problem) (Model, tea.Cmd) {
	if p.ID != m.selected.ID {
		m.editor.Reset()
		m.evaluation = nil
	}
	m.selected = p
	m.state = StateSolving
	m.statusMsg = ""
	m.layout()
	return m, m.editor.Focus()
}

func (m Model) updateSolving(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Back):
		m.editor.Blur()
		m.state = StateList
		return m, nil
	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
		return m, nil
	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
		return m, nil
	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	solution := m.editor.Value()
	if strings.TrimSpace(solution) == "" {
		m.statusMsg = "Write a solution before submitting"
		return m, nil
	}

	m.state = StateEvaluating
	m.statusMsg = ""
	m.seq++
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	req := api.EvaluationRequest{
		ProblemID:   m.selected.ID,
		Solution:    solution,
		ProblemType: m.selected.ProblemType,
		GridType:    m.selected.GridType,
	}
	catalog, seq := m.catalog, m.seq
	evaluate := func() tea.Msg {
		if catalog == nil {
			return evaluationMsg{seq: seq, err: api.ErrNotAuthenticated}
		}
		eval, err := catalog.Evaluate(ctx, req)
		return evaluationMsg{seq: seq, eval: eval, err: err}
	}
	return m, tea.Batch(m.spinner.Tick, evaluate)
}

func (m Model) handleEvaluation(msg evaluationMsg) (Model, tea.Cmd) {
	if msg.seq != m.seq || m.state != StateEvaluating {
		return m, nil
	}
	m.stopRequest()

	if msg.err != nil {
		m.logger.Debug("evaluation failed", zap.Error(msg.err))
		m.state = StateSolving
		m.statusMsg = "Evaluation failed: " + api.Message(msg.err)
		if ended := components.SessionEndedIfUnauthorized(msg.err); ended != nil {
			return m, func() tea.Msg { return *ended }
		}
		return m, nil
	}

	m.evaluation = msg.eval
	m.state = StateReport
	m.layout()
	m.viewport.GotoTop()
	return m, nil
}

func (m *Model) stopRequest() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// =============================================================================
// REPORT
// =============================================================================

func (m Model) updateReport(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Edit):
		return m.startSolving(m.selected)
	case key.Matches(msg, m.keyMap.Back), key.Matches(msg, m.keyMap.Select):
		m.state = StateList
	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
	}
	return m, nil
}
