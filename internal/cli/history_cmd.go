// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/learnlab/internal/export"
	"github.com/jeranaias/learnlab/internal/storage"
)

func (a *App) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage locally saved chat conversations",
		Long: `Chat conversations are saved to ~/.learnlab/history.db. Conversations
are referenced by list number (0 is the newest), full ID or ID prefix.`,
	}
	cmd.AddCommand(
		a.historyListCommand(),
		a.historyShowCommand(),
		a.historyDeleteCommand(),
		a.historyExportCommand(),
	)
	return cmd
}

func (a *App) historyListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list [query...]",
		Aliases: []string{"ls"},
		Short:   "List saved conversations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openHistory(true)
			if err != nil {
				return err
			}
			defer store.Close()

			metas, err := store.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return a.emit(cmd, metas, func(w io.Writer) error {
				fmt.Fprint(w, storage.FormatList(metas))
				if len(metas) == 0 {
					fmt.Fprintln(w)
				}
				return nil
			})
		},
	}
}

func (a *App) historyShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show REF",
		Short: "Print a saved conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openHistory(true)
			if err != nil {
				return err
			}
			defer store.Close()

			conv, err := resolveConversation(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			return a.emit(cmd, conv, func(w io.Writer) error {
				theme := a.theme()
				r := a.renderer()
				fmt.Fprintln(w, TitleStyle.Render(conv.Summary))
				fmt.Fprintln(w, DimStyle.Render(conv.ID+"  "+conv.UpdatedAt.Local().Format("2006-01-02 15:04")))
				for _, msg := range conv.Messages {
					label := theme.AssistantLabel.Render("Tutor")
					if msg.Role == storage.RoleUser {
						label = theme.UserLabel.Render("You")
					}
					fmt.Fprintln(w)
					fmt.Fprintln(w, label+" "+theme.Timestamp.Render(msg.Timestamp.Local().Format("15:04")))
					fmt.Fprintln(w, r.Message(msg.Content))
				}
				return nil
			})
		},
	}
}

func (a *App) historyDeleteCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:     "delete [REF]",
		Aliases: []string{"rm"},
		Short:   "Delete a saved conversation, or all with --all",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return usageError("arguments", "", "give a conversation or --all, not both")
			}
			store, err := a.openHistory(true)
			if err != nil {
				return err
			}
			defer store.Close()

			if all {
				if err := store.Clear(cmd.Context()); err != nil {
					return err
				}
				return a.emit(cmd, map[string]bool{"cleared": true}, func(w io.Writer) error {
					fmt.Fprintf(w, "%s Deleted all conversations\n", SuccessStyle.Render("✓"))
					return nil
				})
			}

			conv, err := resolveConversation(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), conv.ID); err != nil {
				return err
			}
			return a.emit(cmd, map[string]string{"deleted": conv.ID}, func(w io.Writer) error {
				fmt.Fprintf(w, "%s Deleted %q\n", SuccessStyle.Render("✓"), conv.Summary)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Delete every conversation")
	return cmd
}

func (a *App) historyExportCommand() *cobra.Command {
	opts := export.DefaultOptions()
	var format string
	var toStdout bool
	cmd := &cobra.Command{
		Use:   "export REF",
		Short: "Export a conversation to Markdown, JSON, YAML or HTML",
		Example: `  learnlab history export 0 --format html
  learnlab history export 3f2a --format md --stdout > notes.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("code-style") {
				opts.CodeStyle = a.Config.Render.CodeStyle
			}
			exporter, err := export.New(format, opts)
			if err != nil {
				return &UsageError{Field: "format", Value: format, Reason: err.Error()}
			}

			store, err := a.openHistory(true)
			if err != nil {
				return err
			}
			defer store.Close()

			conv, err := resolveConversation(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}

			if toStdout {
				data, err := exporter.Export(conv)
				if err != nil {
					return err
				}
				_, err = a.Stdout.Write(data)
				return err
			}

			path, err := export.ToFile(conv, exporter, opts)
			if err != nil {
				return err
			}
			return a.emit(cmd, map[string]string{"path": path, "mime_type": exporter.MimeType()}, func(w io.Writer) error {
				fmt.Fprintf(w, "%s Exported to %s\n", SuccessStyle.Render("✓"), path)
				return nil
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&format, "format", "f", "markdown", "Output format: "+strings.Join(export.Formats, ", "))
	flags.StringVarP(&opts.OutputDir, "output", "o", opts.OutputDir, "Directory to write the file to")
	flags.BoolVar(&toStdout, "stdout", false, "Write to standard output instead of a file")
	flags.StringVar(&opts.Theme, "theme", opts.Theme, "HTML theme: light or dark")
	flags.StringVar(&opts.CodeStyle, "code-style", opts.CodeStyle, "Chroma style for HTML code blocks")
	flags.BoolVar(&opts.IncludeMetadata, "metadata", opts.IncludeMetadata, "Include dates and message counts")
	flags.BoolVar(&opts.IncludeTimestamps, "timestamps", opts.IncludeTimestamps, "Include per-message times")
	return cmd
}

// resolveConversation finds a conversation by list number, full ID or
// unique ID prefix.
func resolveConversation(ctx context.Context, store *storage.ConversationStore, ref string) (*storage.StoredConversation, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		conv, err := store.LoadByIndex(ctx, n)
		if err == nil {
			return conv, nil
		}
		if !errors.Is(err, storage.ErrConversationNotFound) {
			return nil, err
		}
	}

	conv, err := store.Load(ctx, ref)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, storage.ErrConversationNotFound) {
		return nil, err
	}

	metas, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	var match string
	for _, m := range metas {
		if strings.HasPrefix(m.ID, ref) {
			if match != "" {
				return nil, usageError("conversation", ref, "prefix matches more than one conversation")
			}
			match = m.ID
		}
	}
	if match == "" {
		return nil, &NotFoundError{Resource: "conversation", ID: ref}
	}
	return store.Load(ctx, match)
}
