package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/forcelist/internal/auth"
	"github.com/Makepad-fr/forcelist/internal/screen"
	"github.com/Makepad-fr/forcelist/internal/ui"
)

// chanThread makes the calling goroutine the UI context.
type chanThread chan func()

func (c chanThread) Post(fn func()) { c <- fn }

func queryCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:       "query <contacts|accounts>",
		Short:     "Fetch names once and print them",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"contacts", "accounts"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var what string
			var fetch func(*screen.Controller) error
			switch args[0] {
			case "contacts":
				what, fetch = "Contacts", (*screen.Controller).OnFetchContacts
			case "accounts":
				what, fetch = "Accounts", (*screen.Controller).OnFetchAccounts
			default:
				return usagef("query: want contacts or accounts, got %q", args[0])
			}

			sess, err := auth.Load()
			if err != nil {
				return err
			}
			client, err := newClient(sess)
			if err != nil {
				return err
			}

			thread := make(chanThread, 1)
			c := screen.New(thread, nil, cfg.API.Version)
			c.OnResume()
			c.OnSessionReady(client)
			if err := fetch(c); err != nil {
				return err
			}

			select {
			case fn := <-thread:
				fn()
			case <-time.After(timeout):
				return fmt.Errorf("query: no answer after %s", timeout)
			}
			if t, ok := c.Toast(); ok {
				return fmt.Errorf("query %s: %w", args[0], t.Err)
			}
			printRecords(what, c.Records())
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "wait", time.Minute, "how long to wait for the answer")
	return cmd
}

func printRecords(title string, names []string) {
	th := ui.Current()
	lines := []string{
		fmt.Sprintf("%s   %s %s", th.Title.Render(title), th.Accent.Render("Total"), humanize.Comma(int64(len(names)))),
		"",
	}
	if len(names) == 0 {
		lines = append(lines, th.Muted.Render("no records"))
	}
	for i, n := range names {
		lines = append(lines, fmt.Sprintf("%s %s", th.Muted.Render(fmt.Sprintf("%3d.", i+1)), n))
	}
	ui.Panel(lines)
}
