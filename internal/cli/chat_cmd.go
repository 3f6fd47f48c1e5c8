// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/google/uuid"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/learnlab/internal/api"
	"github.com/jeranaias/learnlab/internal/config"
	"github.com/jeranaias/learnlab/internal/content"
	"github.com/jeranaias/learnlab/internal/render"
	"github.com/jeranaias/learnlab/internal/storage"
)

const chatHelp = `Commands:
  /copy N   copy code block N of the last reply
  /new      start a new conversation
  /help     show this help
  /quit     leave the chat`

func (a *App) chatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [message...]",
		Short: "Chat with the tutor in the terminal",
		Long: `Chat with the tutor.

With a message, sends it, prints the reply and exits. Without one, starts
an interactive session with line editing and input history.`,
		Example: `  learnlab chat "how do I reverse a list in python?"
  learnlab chat`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := a.authedClient()
			if err != nil {
				return err
			}
			history, err := a.openHistory(false)
			if err != nil {
				return err
			}
			if history != nil {
				defer history.Close()
			}

			s := &chatSession{
				tutor:     client,
				renderer:  a.renderer(),
				out:       a.Stdout,
				logger:    a.Logger.Named("chat"),
				clipboard: clipboard.WriteAll,
				now:       a.Now,
			}
			if history != nil {
				s.history = history
			}

			if len(args) > 0 {
				err := s.send(cmd.Context(), strings.Join(args, " "))
				return a.forgetOnUnauthorized(err)
			}
			return a.repl(cmd.Context(), s)
		},
	}
}

// repl reads lines with liner until the user quits or the session ends.
func (a *App) repl(ctx context.Context, s *chatSession) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyFile, err := config.Path("chat_history")
	if err == nil {
		if f, err := os.Open(historyFile); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if err := config.EnsureDir(); err != nil {
				return
			}
			f, err := os.OpenFile(historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
			if err != nil {
				return
			}
			defer f.Close()
			_, _ = line.WriteHistory(f)
		}()
	}

	if stop := a.watchRenderConfig(ctx, s); stop != nil {
		defer stop()
	}

	fmt.Fprintln(a.Stdout, DimStyle.Render("Type a question, /help for commands, Ctrl-D to leave."))
	for {
		input, err := line.Prompt("you> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(a.Stdout)
				return nil
			}
			return err
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}

		quit, err := s.handle(ctx, input)
		if err != nil {
			if isSessionError(err) {
				return a.forgetOnUnauthorized(err)
			}
			displayError(a.Stderr, err, false)
		}
		if quit {
			return nil
		}
	}
}

// watchRenderConfig reloads render settings while the REPL runs. It
// returns a function that stops watching, or nil when the config file
// cannot be watched.
func (a *App) watchRenderConfig(ctx context.Context, s *chatSession) func() {
	path := a.configPath
	if path == "" {
		p, err := config.PathTOML()
		if err != nil {
			return nil
		}
		path = p
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	w, err := config.NewWatcher(path, func(cfg *config.Config, err error) {
		if err != nil {
			a.Logger.Warn("config reload failed", zap.Error(err))
			return
		}
		a.Config.Render = cfg.Render
		s.setRenderer(a.renderer())
		a.Logger.Info("render settings reloaded", zap.String("style", cfg.Render.CodeStyle))
	})
	if err != nil {
		a.Logger.Debug("config watch unavailable", zap.Error(err))
		return nil
	}
	w.Start(ctx)
	return func() { _ = w.Close() }
}

// =============================================================================
// CHAT SESSION
// =============================================================================

type tutor interface {
	SendChat(ctx context.Context, message string) (*api.ChatMessage, error)
}

type conversationSaver interface {
	Save(ctx context.Context, conv *storage.StoredConversation) (string, error)
}

// chatSession is one conversation in the line-mode chat.
type chatSession struct {
	tutor     tutor
	history   conversationSaver
	out       io.Writer
	logger    *zap.Logger
	clipboard func(string) error
	now       func() time.Time

	mu       sync.Mutex
	renderer *render.Renderer

	conv      storage.StoredConversation
	lastReply []content.Segment
}

func (s *chatSession) setRenderer(r *render.Renderer) {
	s.mu.Lock()
	s.renderer = r
	s.mu.Unlock()
}

func (s *chatSession) render(text string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderer.Message(text)
}

// handle processes one line of input and reports whether to quit.
func (s *chatSession) handle(ctx context.Context, input string) (bool, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return false, nil
	}
	if !strings.HasPrefix(input, "/") {
		return false, s.send(ctx, input)
	}

	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		fmt.Fprintln(s.out, chatHelp)
	case "/new", "/clear":
		s.conv = storage.StoredConversation{}
		s.lastReply = nil
		fmt.Fprintln(s.out, DimStyle.Render("Started a new conversation."))
	case "/copy":
		if len(fields) != 2 {
			return false, usageError("block number", "", "usage: /copy N")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return false, usageError("block number", fields[1], "not a number")
		}
		return false, s.copyBlock(n)
	default:
		return false, usageError("command", fields[0], "unknown command, try /help")
	}
	return false, nil
}

// send asks the tutor, prints the rendered reply and saves the exchange.
func (s *chatSession) send(ctx context.Context, message string) error {
	if s.conv.ID == "" {
		s.conv.ID = uuid.NewString()
	}
	asked := s.now()

	reply, err := s.tutor.SendChat(ctx, message)
	if err != nil {
		return err
	}

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, s.render(reply.Content))
	fmt.Fprintln(s.out)

	s.lastReply = content.CodeBlocks(content.Parse(reply.Content))
	if n := len(s.lastReply); n > 0 {
		fmt.Fprintln(s.out, DimStyle.Render(fmt.Sprintf("%d code block(s): /copy N to copy one", n)))
	}

	s.conv.Messages = append(s.conv.Messages,
		storage.StoredMessage{Role: storage.RoleUser, Content: message, Timestamp: asked},
		storage.StoredMessage{Role: storage.RoleAssistant, Content: reply.Content, Timestamp: s.now()},
	)
	if s.history != nil {
		if _, err := s.history.Save(ctx, &s.conv); err != nil {
			s.logger.Warn("failed to save conversation", zap.Error(err))
		}
	}
	return nil
}

func (s *chatSession) copyBlock(n int) error {
	if len(s.lastReply) == 0 {
		return errors.New("the last reply has no code blocks")
	}
	if n < 1 || n > len(s.lastReply) {
		return usageError("block number", strconv.Itoa(n), fmt.Sprintf("choose 1-%d", len(s.lastReply)))
	}
	block := s.lastReply[n-1]
	if err := s.clipboard(block.Code); err != nil {
		return fmt.Errorf("copy failed: %w", err)
	}
	fmt.Fprintln(s.out, SuccessStyle.Render(fmt.Sprintf("Copied block %d (%d lines)", n, strings.Count(block.Code, "\n")+1)))
	return nil
}
