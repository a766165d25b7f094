package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/forcelist/internal/auth"
	"github.com/Makepad-fr/forcelist/internal/restapi"
	"github.com/Makepad-fr/forcelist/internal/screen"
	"github.com/Makepad-fr/forcelist/internal/tui"
	"github.com/Makepad-fr/forcelist/internal/ui"
)

// newClient builds the transport handle for sess, tagged with this build's version.
func newClient(sess *auth.Session) (*restapi.Client, error) {
	return sess.Client(restapi.WithUserAgent("forcelist/" + Version))
}

func uiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the record screen (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScreen(cmd.Context())
		},
	}
}

// runScreen shows the screen; after a logout it logs in again and shows a
// fresh screen, until the user quits.
func runScreen(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		sess, err := ensureSession()
		if err != nil {
			return err
		}
		insets, err := cfg.UI.EdgeInsets()
		if err != nil {
			return err
		}

		var client *restapi.Client
		res, err := tui.Run(tui.Options{
			APIVersion:    cfg.API.Version,
			ToastDuration: cfg.UI.ToastDuration(),
			Insets:        insets,
			Instance:      sess.InstanceURL,
			Connect: func(ctx context.Context) (screen.RestClient, string, error) {
				c, err := newClient(sess)
				if err != nil {
					return nil, "", err
				}
				info, err := c.UserInfo(ctx)
				if err != nil {
					return nil, "", fmt.Errorf("connect: %w", err)
				}
				client = c
				return c, info.PreferredUsername, nil
			},
			Logout: func(ctx context.Context) error {
				var rv auth.Revoker
				if client != nil {
					rv = client
				}
				return auth.Logout(ctx, sess, rv)
			},
		})
		if err != nil {
			return err
		}
		if res != tui.ResultLogout {
			return nil
		}
		ui.OK("logged out")
		if sess.Source == "env" {
			// nothing stored to log back into
			return nil
		}
		log.Printf("cli: restarting authentication")
	}
}

// ensureSession returns the stored session, prompting for one if needed.
func ensureSession() (*auth.Session, error) {
	sess, err := auth.Load()
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, auth.ErrNotLoggedIn) {
		return nil, err
	}
	p := &auth.Prompt{In: os.Stdin, Out: os.Stdout}
	return p.Login(cfg.API.InstanceURL)
}
