// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/jeranaias/learnlab/internal/config"
)

func (a *App) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show [KEY]",
			Short: "Print the effective configuration, or one key",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) == 1 {
					v, err := a.Config.Get(args[0])
					if err != nil {
						return &UsageError{Field: "key", Value: args[0], Reason: err.Error()}
					}
					return a.emit(cmd, map[string]any{args[0]: v}, func(w io.Writer) error {
						fmt.Fprintln(w, v)
						return nil
					})
				}
				return a.emit(cmd, a.Config, func(w io.Writer) error {
					return toml.NewEncoder(w).Encode(a.Config)
				})
			},
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Change a setting and save the config file",
			Example: `  learnlab config set render.code_style dracula
  learnlab config set session.expire_at_midnight false`,
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.Config.Set(args[0], args[1]); err != nil {
					return &UsageError{Field: "key", Value: args[0], Reason: err.Error()}
				}
				if err := a.Config.Validate(); err != nil {
					return err
				}
				if err := a.saveConfig(); err != nil {
					return err
				}
				return a.emit(cmd, map[string]string{args[0]: args[1]}, func(w io.Writer) error {
					fmt.Fprintf(w, "%s %s = %s\n", SuccessStyle.Render("✓"), args[0], args[1])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "keys",
			Short: "List the settable keys",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				keys := config.Keys()
				return a.emit(cmd, keys, func(w io.Writer) error {
					for _, k := range keys {
						fmt.Fprintln(w, k)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path, err := a.configFile()
				if err != nil {
					return err
				}
				return a.emit(cmd, map[string]string{"path": path}, func(w io.Writer) error {
					fmt.Fprintln(w, path)
					return nil
				})
			},
		},
	)
	return cmd
}

func (a *App) configFile() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.PathTOML()
}

func (a *App) saveConfig() error {
	if a.configPath == "" {
		if err := config.EnsureDir(); err != nil {
			return err
		}
		return config.Save(a.Config)
	}
	return config.SaveTOML(a.Config, a.configPath)
}
