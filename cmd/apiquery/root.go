package main

import (
	"github.com/artpar/apiquery/bootstrap"
	"github.com/artpar/apiquery/config"
	"github.com/spf13/cobra"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	configPath string
}

// newRootCmd creates the root command with every subcommand attached.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "apiquery",
		Short: "Query JSON:API servers from the command line",
		Long: `apiquery builds JSON:API queries (filter, sort, include, fields, page)
and runs them against a remote server, casting attributes through the
resource schemas declared in the config file.

Quick start:
  apiquery params articles --filter status=published --sort -published_at
  apiquery fetch articles --include comments.author --per 10
  apiquery serve-fixtures --watch   # local JSON:API from a YAML fixture file

Config:
  apiquery validate                 # check config and resource schemas`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "apiquery.yaml", "config file path")

	cmd.AddCommand(newParamsCmd(opts))
	cmd.AddCommand(newFetchCmd(opts))
	cmd.AddCommand(newFirstCmd(opts))
	cmd.AddCommand(newServeFixturesCmd(opts))
	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// loadConfig loads the config file, falling back to APIQUERY_* variables.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	return config.LoadWithFallback(o.configPath)
}

// newApp loads config and wires an App logging to the command's stderr.
func (o *rootOptions) newApp(cmd *cobra.Command) (*bootstrap.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg, bootstrap.Options{LogOutput: cmd.ErrOrStderr()})
}
