// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/learnlab/internal/api"
	"github.com/jeranaias/learnlab/internal/auth"
	"github.com/jeranaias/learnlab/internal/config"
	"github.com/jeranaias/learnlab/internal/logging"
	"github.com/jeranaias/learnlab/internal/render"
	"github.com/jeranaias/learnlab/internal/storage"
	"github.com/jeranaias/learnlab/internal/ui/styles"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App carries what every command needs: streams, configuration and the
// logger. Commands receive it explicitly rather than reading globals.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Config and Logger are filled in before each command runs unless
	// already set.
	Config *config.Config
	Logger *zap.Logger

	// Now is the clock used for sessions.
	Now func() time.Time

	configPath string
	verbose    bool
	jsonOut    bool
}

// NewApp creates an App bound to the process's standard streams.
func NewApp() *App {
	return &App{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Now:    time.Now,
	}
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApp()
	root := NewRootCommand(app)
	err := root.ExecuteContext(ctx)
	if app.Logger != nil {
		_ = app.Logger.Sync()
	}
	if err != nil {
		displayError(app.Stderr, err, app.jsonOut)
		return ExitCode(err)
	}
	return ExitSuccess
}

// NewRootCommand builds the learnlab command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "learnlab",
		Short: "Terminal client for the learnlab AI tutor",
		Long: `learnlab talks to the learning platform from your terminal.

Run without a command to open the interactive client with the tutor chat
and the problem arena. Code in tutor replies is highlighted and numbered
so single blocks can be copied.`,
		Version:       fmt.Sprintf("%s (%s, %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup(cmd)
		},
		RunE: app.runTUI,
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&app.jsonOut, "json", false, "Print machine-readable JSON")
	flags.StringVar(&app.configPath, "config", "", "Config file (default ~/.learnlab/config.toml)")

	root.AddCommand(
		app.loginCommand(),
		app.registerCommand(),
		app.logoutCommand(),
		app.resetPasswordCommand(),
		app.profileCommand(),
		app.chatCommand(),
		app.learnCommand(),
		app.problemsCommand(),
		app.historyCommand(),
		app.renderCommand(),
		app.configCommand(),
	)
	return root
}

// setup loads configuration and builds the logger. The interactive client
// owns the terminal, so it logs to a file.
func (a *App) setup(cmd *cobra.Command) error {
	if a.Now == nil {
		a.Now = time.Now
	}
	configureStyles(a.Stdout)

	if a.Config == nil {
		var (
			cfg *config.Config
			err error
		)
		if a.configPath != "" {
			cfg, err = config.LoadFromPath(a.configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}
		a.Config = cfg
	}

	if a.Logger == nil {
		opts := logging.Options{Level: a.Config.Log.Level, Verbose: a.verbose}
		if !cmd.HasParent() {
			path := a.Config.Log.Path
			if path == "" {
				p, err := config.Path("learnlab.log")
				if err != nil {
					return err
				}
				path = p
			}
			opts.File = path
		}
		logger, err := logging.New(opts)
		if err != nil {
			return err
		}
		a.Logger = logger
	}

	a.Logger.Debug("command starting",
		zap.String("command", cmd.CommandPath()),
		zap.String("api", a.Config.API.BaseURL))
	return nil
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// client creates an API client from the configuration.
func (a *App) client(token string) *api.Client {
	cfg := a.Config.API
	return api.NewClient(cfg.BaseURL,
		api.WithTimeout(cfg.Timeout()),
		api.WithMaxRetries(cfg.MaxRetries),
		api.WithRateLimit(cfg.RequestsPerSecond, cfg.Burst),
		api.WithLogger(a.Logger.Named("api")),
		api.WithToken(token),
	)
}

func (a *App) sessionStore() (*auth.Store, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return auth.NewStore(dir), nil
}

func (a *App) policy() auth.Policy {
	return auth.Policy{ExpireAtMidnight: a.Config.Session.ExpireAtMidnight}
}

// session loads the stored session and checks it. An invalid session is
// removed from disk and its reason returned.
func (a *App) session() (*auth.Session, *auth.Store, error) {
	store, err := a.sessionStore()
	if err != nil {
		return nil, nil, err
	}
	sess, err := store.Load()
	if err != nil {
		return nil, store, err
	}

	guard := auth.NewGuard(sess, store, a.policy(), nil, a.Logger)
	guard.SetClock(a.Now)
	if err := guard.Check(); err != nil {
		return nil, store, err
	}
	return sess, store, nil
}

// authedClient returns a client carrying the signed-in user's token.
func (a *App) authedClient() (*api.Client, *auth.Session, error) {
	sess, _, err := a.session()
	if err != nil {
		return nil, nil, err
	}
	return a.client(sess.Token), sess, nil
}

// forgetOnUnauthorized clears the stored session when the backend rejected
// its token, and returns err unchanged.
func (a *App) forgetOnUnauthorized(err error) error {
	if errors.Is(err, api.ErrUnauthorized) {
		if store, serr := a.sessionStore(); serr == nil {
			if cerr := store.Clear(); cerr != nil {
				a.Logger.Warn("failed to clear rejected session", zap.Error(cerr))
			}
		}
	}
	return err
}

// openHistory opens the local conversation store. It returns nil when
// history is disabled and required is false.
func (a *App) openHistory(required bool) (*storage.ConversationStore, error) {
	cfg := a.Config.History
	if !cfg.Enabled && !required {
		return nil, nil
	}
	path := cfg.Path
	if path == "" {
		p, err := config.Path("history.db")
		if err != nil {
			return nil, err
		}
		path = p
	}
	store, err := storage.Open(path)
	if err != nil {
		return nil, err
	}
	store.MaxConversations = cfg.MaxConversations
	return store, nil
}

func (a *App) theme() *styles.Theme {
	return styles.NewTheme(a.Config.UI.Theme)
}

// renderOptions derives renderer settings for output to w.
func (a *App) renderOptions(w io.Writer) render.Options {
	cfg := a.Config.Render
	width := cfg.WrapWidth
	if width == 0 {
		width = terminalWidth(w)
	}
	return render.Options{
		Style:       cfg.CodeStyle,
		LineNumbers: cfg.LineNumbers,
		Width:       width,
		Profile:     colorProfile(w),
	}
}

func (a *App) renderer() *render.Renderer {
	return render.New(a.renderOptions(a.Stdout), a.theme())
}

// emit prints data as a JSON envelope under --json, or runs human
// otherwise.
func (a *App) emit(cmd *cobra.Command, data any, human func(w io.Writer) error) error {
	if a.jsonOut {
		return newJSONResponse(cmd.CommandPath(), data).write(a.Stdout)
	}
	return human(a.Stdout)
}
