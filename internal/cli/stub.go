package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/forcelist/internal/stuborg"
	"github.com/Makepad-fr/forcelist/internal/ui"
)

func serveStubCmd() *cobra.Command {
	var addr, token, seedPath string
	cmd := &cobra.Command{
		Use:   "serve-stub",
		Short: "Serve a local stub org for offline runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Stub.Addr
			}
			if !cmd.Flags().Changed("token") {
				token = cfg.Stub.Token
			}
			if !cmd.Flags().Changed("seed") {
				seedPath = cfg.Stub.Seed
			}
			seed := stuborg.DefaultSeed()
			if seedPath != "" {
				s, err := stuborg.LoadSeed(seedPath)
				if err != nil {
					return err
				}
				seed = s
			}
			// a server, not a TUI: log to stderr
			log.SetOutput(os.Stderr)

			srv := &http.Server{
				Addr:              addr,
				Handler:           stuborg.NewRouter(stuborg.Options{Token: token, Seed: seed}),
				ReadHeaderTimeout: 5 * time.Second,
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdown)
			}()

			ui.OK("stub org on http://" + addr)
			if token == "" {
				log.Printf("stuborg: accepting any bearer token")
			}
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8089", "listen address")
	cmd.Flags().StringVar(&token, "token", "", "bearer token to accept (empty accepts any)")
	cmd.Flags().StringVar(&seedPath, "seed", "", "YAML seed file")
	return cmd
}
