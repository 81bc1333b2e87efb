package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/artpar/apiquery/config"
	"github.com/spf13/cobra"
)

func newServeFixturesCmd(root *rootOptions) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve-fixtures",
		Short: "Serve the fixture file as a read-only JSON:API",
		Long: `Start a local JSON:API server backed by the YAML file in fixtures.file.

The server understands filter, sort, include, fields and both page styles,
so queries can be tried without a real API. With --watch, edits to the
config or the fixture file are reloaded without a restart; SIGHUP forces a
reload.

Examples:
  apiquery serve-fixtures
  apiquery serve-fixtures --watch --config dev.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := root.newApp(cmd)
			if err != nil {
				return err
			}

			var holder *config.Holder
			if watch {
				holder, err = config.NewHolder(root.configPath, app.Logger)
				if err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return app.ServeFixtures(ctx, holder)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload config and fixtures when the files change")
	return cmd
}
