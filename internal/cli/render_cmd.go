// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/learnlab/internal/content"
)

func (a *App) renderCommand() *cobra.Command {
	var segments bool
	cmd := &cobra.Command{
		Use:   "render [FILE|-]",
		Short: "Render text the way tutor replies are shown",
		Long: "Parse text into prose and fenced code blocks and render it with\n" +
			"syntax highlighting. Code blocks without a language tag get an\n" +
			"inferred one. Reads standard input when FILE is omitted or \"-\".",
		Example: "  learnlab render notes.md\n" +
			"  printf 'Try:\\n```\\nprint(1)\\n```' | learnlab render --segments",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			text, err := a.readInput(path)
			if err != nil {
				return err
			}

			segs := content.Parse(text)
			if segments || a.jsonOut {
				enc := json.NewEncoder(a.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(segs)
			}
			fmt.Fprintln(a.Stdout, a.renderer().Segments(segs))
			return nil
		},
	}
	cmd.Flags().BoolVar(&segments, "segments", false, "Print the parsed segments as JSON")
	return cmd
}
