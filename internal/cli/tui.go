// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/learnlab/internal/auth"
	"github.com/jeranaias/learnlab/internal/ui"
)

// errNoTerminal is returned when the interactive client is started without
// a terminal.
var errNoTerminal = errors.New("the interactive client needs a terminal; try `learnlab chat` or `learnlab problems list`")

// runTUI opens the interactive client for the signed-in user.
func (a *App) runTUI(cmd *cobra.Command, _ []string) error {
	if !isTerminal(a.Stdin) || !isTerminal(a.Stdout) {
		return errNoTerminal
	}

	sess, store, err := a.session()
	if err != nil {
		return err
	}
	client := a.client(sess.Token)

	deps := ui.Deps{
		Theme:         a.theme(),
		RenderOptions: a.renderOptions(a.Stdout),
		Tutor:         client,
		Catalog:       client,
		Clipboard:     clipboard.WriteAll,
		Logger:        a.Logger,
		User:          displayName(sess.User),
		CheckInterval: a.Config.Session.CheckInterval(),
		OnSessionEnd: func(err error) {
			if cerr := store.Clear(); cerr != nil {
				a.Logger.Warn("failed to clear ended session", zap.Error(cerr))
			}
		},
	}
	// Full-screen width is known only once the program starts.
	deps.RenderOptions.Width = a.Config.Render.WrapWidth

	guard := auth.NewGuard(sess, store, a.policy(), nil, a.Logger)
	guard.SetClock(a.Now)
	deps.Guard = guard

	history, err := a.openHistory(false)
	if err != nil {
		a.Logger.Warn("history unavailable", zap.Error(err))
	}
	if history != nil {
		defer history.Close()
		deps.History = history
	}

	a.Logger.Info("starting interactive client", zap.String("user", sess.User.ID))
	return ui.Run(cmd.Context(), deps)
}
