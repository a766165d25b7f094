package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/forcelist/internal/auth"
	"github.com/Makepad-fr/forcelist/internal/ui"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored session",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "login",
			Short: "Store an instance URL and access token",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				p := &auth.Prompt{In: os.Stdin, Out: cmd.OutOrStdout()}
				sess, err := p.Login(cfg.API.InstanceURL)
				if err != nil {
					return fmt.Errorf("login: %w", err)
				}
				ui.OK("logged in to " + sess.InstanceURL)
				return nil
			},
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Revoke and forget the stored session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return doLogout(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show where the session comes from",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return doStatus()
			},
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Ask the org who the session belongs to",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return doWhoAmI(cmd.Context())
			},
		},
	)
	return cmd
}

func doLogout(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sess, err := auth.Load()
	if errors.Is(err, auth.ErrNotLoggedIn) {
		ui.OK("not logged in (nothing to delete)")
		return nil
	}
	if err != nil {
		return err
	}
	if sess.Source == "env" {
		ui.OK(auth.EnvToken + " provides the token (nothing to delete)")
		return nil
	}
	var rv auth.Revoker
	if c, err := newClient(sess); err == nil {
		rv = c
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := auth.Logout(ctx, sess, rv); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	ui.OK("logged out")
	return nil
}

func doStatus() error {
	th := ui.Current()
	sess, err := auth.Load()
	if errors.Is(err, auth.ErrNotLoggedIn) {
		fmt.Println(th.Muted.Render("not logged in"))
		fmt.Println("Run: forcelist auth login")
		return nil
	}
	if err != nil {
		return err
	}
	lines := []string{
		"instance: " + sess.InstanceURL,
		"source:   " + sess.Source,
	}
	if !sess.CreatedAt.IsZero() {
		lines = append(lines, "saved:    "+humanize.Time(sess.CreatedAt))
	}
	lines = append(lines, th.Muted.Render("env override: "+auth.EnvToken+" + "+auth.EnvInstance))
	ui.Panel(lines)
	return nil
}

func doWhoAmI(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sess, err := auth.Load()
	if err != nil {
		return err
	}
	c, err := newClient(sess)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	info, err := c.UserInfo(ctx)
	if err != nil {
		return fmt.Errorf("whoami: %w", err)
	}
	ui.Panel([]string{
		ui.Current().Title.Render(info.Name),
		"username: " + info.PreferredUsername,
		"email:    " + info.Email,
		"user id:  " + info.UserID,
		"org id:   " + info.OrganizationID,
	})
	return nil
}
