// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/learnlab/internal/api"
	"github.com/jeranaias/learnlab/internal/learn"
	"github.com/jeranaias/learnlab/internal/ui/arena"
	"github.com/jeranaias/learnlab/internal/util"
)

// =============================================================================
// LEARN
// =============================================================================

func (a *App) learnCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "learn [query...]",
		Short: "Browse learning topics",
		Long: `List learning topics. With a query, only topics whose title or
description contains every word are shown; case and accents are ignored.`,
		Example: `  learnlab learn
  learnlab learn recursion`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := a.authedClient()
			if err != nil {
				return err
			}
			topics, err := client.Topics(cmd.Context())
			if err != nil {
				return a.forgetOnUnauthorized(err)
			}
			found := learn.Search(topics, strings.Join(args, " "))

			return a.emit(cmd, found, func(w io.Writer) error {
				if len(found) == 0 {
					fmt.Fprintln(w, DimStyle.Render("No topics match."))
					return nil
				}
				width := terminalWidth(w) - 4
				for _, t := range found {
					fmt.Fprintln(w, TitleStyle.Render(t.Title))
					if t.Description != "" {
						fmt.Fprintln(w, "  "+util.Preview(t.Description, width))
					}
				}
				return nil
			})
		},
	}
}

// =============================================================================
// PROBLEMS
// =============================================================================

func (a *App) problemsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "problems",
		Short: "List, read and solve practice problems",
	}
	cmd.AddCommand(a.problemsListCommand(), a.problemsShowCommand(), a.problemsSolveCommand())
	return cmd
}

func (a *App) problemsListCommand() *cobra.Command {
	var difficulty string
	cmd := &cobra.Command{
		Use:     "list [query...]",
		Aliases: []string{"ls"},
		Short:   "List problems, easiest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch strings.ToLower(difficulty) {
			case "", "easy", "medium", "hard":
			default:
				return &UsageError{Field: "difficulty", Value: difficulty, Reason: "must be easy, medium or hard"}
			}
			problems, err := a.fetchProblems(cmd)
			if err != nil {
				return err
			}
			found := learn.FilterProblems(problems, difficulty, strings.Join(args, " "))

			return a.emit(cmd, found, func(w io.Writer) error {
				if len(found) == 0 {
					fmt.Fprintln(w, DimStyle.Render("No problems match."))
					return nil
				}
				theme := a.theme()
				for i, p := range found {
					d := p.Difficulty
					if d == "" {
						d = "unrated"
					}
					fmt.Fprintf(w, "%3d. %-40s %s\n", i+1, util.Truncate(p.Title, 40), theme.Difficulty(strings.ToLower(d)))
				}
				fmt.Fprintln(w, DimStyle.Render("Use `learnlab problems show N` to read one."))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "Only easy, medium or hard problems")
	return cmd
}

func (a *App) problemsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID|N",
		Short: "Show a problem by ID or list number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.findProblem(cmd, args[0])
			if err != nil {
				return err
			}
			return a.emit(cmd, p, func(w io.Writer) error {
				fmt.Fprintf(w, "%s  %s\n", TitleStyle.Render(p.Title), a.theme().Difficulty(strings.ToLower(p.Difficulty)))
				if p.Category != "" {
					fmt.Fprintln(w, DimStyle.Render(p.Category))
				}
				fmt.Fprintln(w)
				fmt.Fprintln(w, a.renderer().Message(p.Description))
				return nil
			})
		},
	}
}

func (a *App) problemsSolveCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "solve ID|N",
		Short: "Submit a solution for evaluation",
		Long: `Submit a solution for evaluation and print the report.

The solution is read from --file, or from standard input when --file is
omitted or "-".`,
		Example: `  learnlab problems solve 3 --file two_sum.py
  cat two_sum.py | learnlab problems solve 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			solution, err := a.readInput(file)
			if err != nil {
				return err
			}
			if strings.TrimSpace(solution) == "" {
				return usageError("solution", "", "the solution is empty")
			}

			client, _, err := a.authedClient()
			if err != nil {
				return err
			}
			problems, err := client.Problems(cmd.Context())
			if err != nil {
				return a.forgetOnUnauthorized(err)
			}
			p, ok := learn.FindProblem(learn.FilterProblems(problems, "", ""), args[0])
			if !ok {
				return &NotFoundError{Resource: "problem", ID: args[0]}
			}

			eval, err := client.Evaluate(cmd.Context(), api.EvaluationRequest{
				ProblemID:   p.ID,
				Solution:    solution,
				ProblemType: p.ProblemType,
				GridType:    p.GridType,
			})
			if err != nil {
				return a.forgetOnUnauthorized(err)
			}
			return a.emit(cmd, eval, func(w io.Writer) error {
				fmt.Fprintln(w, arena.RenderReport(a.renderer(), a.theme(), p, eval))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Solution file (default: standard input)")
	return cmd
}

func (a *App) fetchProblems(cmd *cobra.Command) ([]api.Problem, error) {
	client, _, err := a.authedClient()
	if err != nil {
		return nil, err
	}
	problems, err := client.Problems(cmd.Context())
	if err != nil {
		return nil, a.forgetOnUnauthorized(err)
	}
	return problems, nil
}

// findProblem resolves a reference against the list in display order, so
// numbers match `problems list`.
func (a *App) findProblem(cmd *cobra.Command, ref string) (api.Problem, error) {
	problems, err := a.fetchProblems(cmd)
	if err != nil {
		return api.Problem{}, err
	}
	p, ok := learn.FindProblem(learn.FilterProblems(problems, "", ""), ref)
	if !ok {
		return api.Problem{}, &NotFoundError{Resource: "problem", ID: ref}
	}
	return p, nil
}

// readInput reads a file, or standard input for "" and "-".
func (a *App) readInput(path string) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(a.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(b), nil
}
