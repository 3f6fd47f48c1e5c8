// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/learnlab/internal/api"
	"github.com/jeranaias/learnlab/internal/auth"
)

// =============================================================================
// LOGIN / REGISTER
// =============================================================================

func (a *App) loginCommand() *cobra.Command {
	var email, password, google string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session until midnight",
		Example: `  learnlab login
  learnlab login --email ada@example.com
  learnlab login --google <id-token>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := a.client("")
			if google != "" {
				resp, err := client.GoogleSignIn(cmd.Context(), google)
				if err != nil {
					return err
				}
				return a.signedIn(cmd, resp)
			}

			p := newPrompter(a.Stdin, a.Stderr)
			var err error
			if email == "" {
				if email, err = p.Line("Email", ""); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = p.Password("Password"); err != nil {
					return err
				}
			}
			if email == "" || password == "" {
				return usageError("credentials", "", "email and password are required")
			}

			resp, err := client.Login(cmd.Context(), api.LoginRequest{Email: email, Password: password})
			if err != nil {
				return err
			}
			return a.signedIn(cmd, resp)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	cmd.Flags().StringVar(&google, "google", "", "Sign in with a Google ID token instead")
	return cmd
}

func (a *App) registerCommand() *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrompter(a.Stdin, a.Stderr)
			var err error
			if name == "" {
				if name, err = p.Line("Name", ""); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = p.Line("Email", ""); err != nil {
					return err
				}
			}
			password, err := p.Password("Password")
			if err != nil {
				return err
			}
			confirm, err := p.Password("Confirm password")
			if err != nil {
				return err
			}
			if err := (api.ResetPasswordRequest{Password: password, ConfirmPassword: confirm}).Validate(); err != nil {
				return usageError("password", "", err.Error())
			}
			if name == "" || email == "" {
				return usageError("account", "", "name and email are required")
			}

			resp, err := a.client("").Register(cmd.Context(), api.RegisterRequest{
				Name:     name,
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}
			return a.signedIn(cmd, resp)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	return cmd
}

// signedIn stores the session from a sign-in response.
func (a *App) signedIn(cmd *cobra.Command, resp *api.AuthResponse) error {
	store, err := a.sessionStore()
	if err != nil {
		return err
	}
	sess := auth.New(resp, a.Now())
	if err := sess.Check(a.Now(), a.policy()); err != nil {
		return fmt.Errorf("backend returned an unusable session: %w", err)
	}
	if err := store.Save(sess); err != nil {
		return err
	}
	a.Logger.Info("signed in", zap.String("user", sess.User.ID))

	return a.emit(cmd, sess.User, func(w io.Writer) error {
		fmt.Fprintf(w, "%s Signed in as %s\n", SuccessStyle.Render("✓"), displayName(sess.User))
		if exp, err := auth.ExpiresAt(sess.Token); err == nil && !exp.IsZero() {
			fmt.Fprintln(w, DimStyle.Render("Token valid until "+exp.Local().Format("2006-01-02 15:04")))
		}
		if a.policy().ExpireAtMidnight {
			fmt.Fprintln(w, DimStyle.Render("The session ends at midnight."))
		}
		return nil
	})
}

func displayName(u api.User) string {
	switch {
	case u.Name != "" && u.Email != "":
		return fmt.Sprintf("%s <%s>", u.Name, u.Email)
	case u.Name != "":
		return u.Name
	}
	return u.Email
}

// =============================================================================
// LOGOUT / RESET PASSWORD
// =============================================================================

func (a *App) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.sessionStore()
			if err != nil {
				return err
			}
			sess, err := store.Load()
			if err != nil && !errors.Is(err, auth.ErrNoSession) {
				a.Logger.Warn("stored session unreadable", zap.Error(err))
			}
			if sess != nil && sess.Token != "" {
				if err := a.client(sess.Token).Logout(cmd.Context()); err != nil {
					a.Logger.Warn("backend logout failed", zap.Error(err))
				}
			}
			if err := store.Clear(); err != nil {
				return err
			}
			return a.emit(cmd, map[string]bool{"signed_out": true}, func(w io.Writer) error {
				fmt.Fprintf(w, "%s Signed out\n", SuccessStyle.Render("✓"))
				return nil
			})
		},
	}
}

func (a *App) resetPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password TOKEN",
		Short: "Set a new password with the token from the reset email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(a.Stdin, a.Stderr)
			password, err := p.Password("New password")
			if err != nil {
				return err
			}
			confirm, err := p.Password("Confirm password")
			if err != nil {
				return err
			}
			req := api.ResetPasswordRequest{Password: password, ConfirmPassword: confirm}
			if err := req.Validate(); err != nil {
				return usageError("password", "", err.Error())
			}
			if err := a.client("").ResetPassword(cmd.Context(), args[0], req); err != nil {
				return err
			}
			return a.emit(cmd, map[string]bool{"reset": true}, func(w io.Writer) error {
				fmt.Fprintf(w, "%s Password updated. Sign in with `learnlab login`.\n", SuccessStyle.Render("✓"))
				return nil
			})
		},
	}
}

// =============================================================================
// PROFILE
// =============================================================================

type profileSummary struct {
	User     *api.User      `json:"user"`
	Topics   int            `json:"topics"`
	Problems map[string]int `json:"problems"`
}

func (a *App) profileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the signed-in user and what is available to them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := a.authedClient()
			if err != nil {
				return err
			}

			var (
				user     *api.User
				topics   []api.Topic
				problems []api.Problem
			)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() (err error) {
				user, err = client.Profile(ctx)
				return err
			})
			g.Go(func() (err error) {
				topics, err = client.Topics(ctx)
				return err
			})
			g.Go(func() (err error) {
				problems, err = client.Problems(ctx)
				return err
			})
			if err := g.Wait(); err != nil {
				return a.forgetOnUnauthorized(err)
			}

			summary := profileSummary{User: user, Topics: len(topics), Problems: map[string]int{}}
			for _, p := range problems {
				d := strings.ToLower(p.Difficulty)
				if d == "" {
					d = "unrated"
				}
				summary.Problems[d]++
			}

			return a.emit(cmd, summary, func(w io.Writer) error {
				theme := a.theme()
				fmt.Fprintln(w, TitleStyle.Render(displayName(*user)))
				fmt.Fprintln(w, RenderSeparator(40))
				if !user.CreatedAt.IsZero() {
					fmt.Fprintln(w, RenderLabel("Member since", user.CreatedAt.Local().Format("2006-01-02")))
				}
				fmt.Fprintln(w, RenderLabel("Topics", fmt.Sprint(len(topics))))
				fmt.Fprintln(w, RenderLabel("Problems", fmt.Sprint(len(problems))))
				for _, d := range []string{"easy", "medium", "hard", "unrated"} {
					if n := summary.Problems[d]; n > 0 {
						fmt.Fprintf(w, "  %s %d\n", theme.Difficulty(d), n)
					}
				}
				return nil
			})
		},
	}
}
