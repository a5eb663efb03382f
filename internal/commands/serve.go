package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/finlens-dev/finlens/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, err := a.service(nil)
			if err != nil {
				return err
			}
			adv, err := a.advisor(ctx)
			if err != nil {
				return err
			}

			var corps server.CorpSearcher
			if _, err := os.Stat(a.cfg.CorpCode.DBPath); err == nil {
				store, err := a.openStore()
				if err != nil {
					return err
				}
				defer store.Close()
				corps = store
			} else {
				a.logger.Warn("corp code table not found; run 'finlens corp import'", "db_path", a.cfg.CorpCode.DBPath)
			}

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			a.logger.Info("starting server", "addr", addr, "ai_enabled", adv.Enabled())
			return server.New(svc, corps, adv, server.WithLogger(a.logger)).Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
