package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/forcelist/internal/config"
	"github.com/Makepad-fr/forcelist/internal/ui"
)

// Version is set at link time: -ldflags "-X github.com/Makepad-fr/forcelist/internal/cli.Version=v1.2.3".
var Version = "dev"

var (
	cfgPath string
	debug   bool
	cfg     config.Config
	logFile io.Closer
)

// usageError marks errors that should exit with status 2.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:   "forcelist",
		Short: "Browse org records from the terminal",
		Long: `forcelist - fetch Contact and Account names from an org and list them.

Run without a subcommand to open the record screen.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			cfg = c
			ui.SetTheme(cfg.UI.Theme)
			return setupLogging()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logFile != nil {
				_ = logFile.Close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScreen(cmd.Context())
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.config/forcelist/config.toml)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "log to forcelist.log (or log.file)")

	root.AddCommand(uiCmd(), queryCmd(), authCmd(), serveStubCmd())
	usageArgs(root)
	return root
}

// usageArgs marks every positional-argument failure in the tree as a
// usage error. cobra reports unknown subcommands through the root's Args.
func usageArgs(cmd *cobra.Command) {
	if check := cmd.Args; check != nil {
		cmd.Args = func(c *cobra.Command, args []string) error {
			if err := check(c, args); err != nil {
				return usageError{err}
			}
			return nil
		}
	}
	for _, sub := range cmd.Commands() {
		usageArgs(sub)
	}
}

// A TUI owns stdout, so logs go to a file or nowhere.
func setupLogging() error {
	path := cfg.Log.File
	if path == "" && debug {
		path = "forcelist.log"
	}
	if path == "" {
		log.SetOutput(io.Discard)
		return nil
	}
	f, err := tea.LogToFile(path, "forcelist")
	if err != nil {
		return fmt.Errorf("log file: %w", err)
	}
	logFile = f
	return nil
}

// Execute runs the command line and returns an exit code (0 ok, 1 error, 2 usage).
func Execute(args []string) int {
	root := newRoot()
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return 0
	}
	ui.Fail(err.Error())
	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintln(os.Stderr)
		_ = root.Usage()
		return 2
	}
	return 1
}
