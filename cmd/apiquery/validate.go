package main

import (
	"fmt"
	"os"

	"github.com/artpar/apiquery/bootstrap"
	"github.com/artpar/apiquery/config"
	"github.com/artpar/apiquery/core/schema"
	"github.com/spf13/cobra"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and resource schemas",
		Long: `Validate the apiquery configuration file.

Checks:
  - YAML syntax is valid
  - Required fields are present
  - Property types and custom casters resolve

Examples:
  apiquery validate
  apiquery validate --config /etc/apiquery/config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, root.configPath)
		},
	}
}

func runValidate(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s...\n\n", path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(out, "  %s Config file exists\n", crossMark)
		return fmt.Errorf("config file not found: %s", path)
	}
	fmt.Fprintf(out, "  %s Config file exists\n", checkMark)

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(out, "  %s Config syntax valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Fprintf(out, "  %s Config syntax valid\n", checkMark)

	fmt.Fprintf(out, "  %s API: %s\n", checkMark, bootstrap.BaseURL(cfg))
	fmt.Fprintf(out, "  %s Pagination: %s\n", checkMark, cfg.Query.PaginationStyle)
	if cfg.Fixtures.File != "" {
		fmt.Fprintf(out, "  %s Fixtures: %s\n", checkMark, cfg.Fixtures.File)
	}

	for _, name := range cfg.ResourceNames() {
		res := cfg.Resources[name]
		fmt.Fprintf(out, "  %s Resource %s (%s %s): %d properties\n", checkMark, name, res.Type, res.Path, len(res.Properties))
	}

	warnings := cfg.Warnings(schema.DefaultCasters())
	for _, w := range warnings {
		fmt.Fprintf(out, "  %s %s\n", warnMark, w)
	}

	fmt.Fprintln(out)
	if len(warnings) > 0 {
		fmt.Fprintf(out, "Configuration is valid with %d warning(s).\n", len(warnings))
		return nil
	}
	fmt.Fprintln(out, "Configuration is valid.")
	return nil
}

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
	warnMark  = "\033[33m!\033[0m"
)
