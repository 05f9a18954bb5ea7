package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kanban/internal/server"
	"github.com/mesh-intelligence/kanban/internal/store"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over HTTP",
		Long:  "Serve the board's JSON API until interrupted. The listen address comes from\n--addr, then listen_addr in config.yaml.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.settings.listenAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.withStore(ctx, func(s *store.Store) error {
				e := server.New(s, a.log)
				a.log.WithField("addr", addr).Info("serving board")
				if err := server.Serve(ctx, e, addr); err != nil {
					return systemErr(fmt.Errorf("serve: %w", err))
				}
				a.log.Info("server stopped")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (host:port)")
	return cmd
}
