package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/artpar/apiquery/bootstrap"
	"github.com/artpar/apiquery/core/formatter"
	"github.com/artpar/apiquery/core/query"
	"github.com/artpar/apiquery/pkg/jsonapi"
	"github.com/spf13/cobra"
)

// queryFlags are the query clauses shared by params, fetch and first.
type queryFlags struct {
	filters  []string
	sorts    []string
	includes []string
	fields   string
	page     int
	per      int
	output   string
	noHeader bool
}

func (f *queryFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringArrayVar(&f.filters, "filter", nil, "filter condition key=value (repeatable)")
	flags.StringArrayVar(&f.sorts, "sort", nil, "sort field, prefix with - for descending (repeatable)")
	flags.StringArrayVar(&f.includes, "include", nil, "relationship path to include, e.g. comments.author (repeatable)")
	flags.StringVar(&f.fields, "fields", "", "comma-separated sparse fieldset for the resource")
	flags.IntVar(&f.page, "page", 0, "page number")
	flags.IntVar(&f.per, "per", 0, "page size (default: query.default_page_size)")
	flags.StringVarP(&f.output, "output", "o", "table", "output format ("+strings.Join(formatter.List(), "|")+")")
	flags.BoolVar(&f.noHeader, "no-header", false, "omit the table header row")
}

// build applies the flags to a fresh builder for resource.
func (f *queryFlags) build(cmd *cobra.Command, app *bootstrap.App, resource string) (*query.Builder, error) {
	b, err := app.Query(resource)
	if err != nil {
		return nil, err
	}

	if len(f.filters) > 0 {
		conditions := make(map[string]any, len(f.filters))
		for _, raw := range f.filters {
			key, value, ok := strings.Cut(raw, "=")
			if !ok || key == "" {
				return nil, fmt.Errorf("invalid --filter %q: want key=value", raw)
			}
			conditions[key] = value
		}
		b = b.Where(conditions)
	}

	for _, raw := range f.sorts {
		b = b.Order(sortKey(raw))
	}
	if len(f.includes) > 0 {
		b = b.Includes(f.includes)
	}
	if f.fields != "" {
		b = b.Select(f.fields)
	}

	if cmd.Flags().Changed("page") {
		b = b.Page(f.page)
	}
	switch {
	case cmd.Flags().Changed("per"):
		b = b.Per(f.per)
	case app.Config.Query.DefaultPageSize > 0:
		b = b.Per(app.Config.Query.DefaultPageSize)
	}

	return b, nil
}

// sortKey reads "-field" as descending and "field" or "+field" as ascending.
func sortKey(raw string) query.SortKey {
	if field, ok := strings.CutPrefix(raw, "-"); ok {
		return query.Desc(field)
	}
	return query.Asc(strings.TrimPrefix(raw, "+"))
}

func (f *queryFlags) formatter() (formatter.Formatter, error) {
	fm, ok := formatter.Get(f.output)
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (available: %s)", f.output, strings.Join(formatter.List(), ", "))
	}
	return fm, nil
}

func (f *queryFlags) formatOptions() formatter.FormatOptions {
	opts := formatter.FormatOptions{NoHeader: f.noHeader}
	if f.fields != "" {
		opts.Columns = []string{"id"}
		for _, field := range strings.Split(f.fields, ",") {
			if field = strings.TrimSpace(field); field != "" {
				opts.Columns = append(opts.Columns, field)
			}
		}
	}
	return opts
}

func newParamsCmd(root *rootOptions) *cobra.Command {
	flags := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "params <resource>",
		Short: "Print the rendered query parameters without sending a request",
		Long: `Render the query built from the flags into JSON:API parameters and the
encoded query string. No request is made.

Examples:
  apiquery params articles --filter status=published --sort -published_at
  apiquery params articles --include comments.author --fields title,body -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := root.newApp(cmd)
			if err != nil {
				return err
			}
			b, err := flags.build(cmd, app, args[0])
			if err != nil {
				return err
			}
			res, err := app.Resource(args[0])
			if err != nil {
				return err
			}
			return printParams(cmd.OutOrStdout(), flags.output, res.Path(), b.Params())
		},
	}

	flags.register(cmd)
	return cmd
}

// printParams writes the request line followed by one decoded parameter per
// line. Structured formats get a document with the same information.
func printParams(w io.Writer, output, path string, params jsonapi.Params) error {
	encoded := params.Encode()
	target := path
	if encoded != "" {
		target += "?" + encoded
	}

	values := params.Values()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if output != "table" {
		fm, ok := formatter.Get(output)
		if !ok {
			return fmt.Errorf("unknown output format %q", output)
		}
		decoded := make(map[string]any, len(keys))
		for _, k := range keys {
			decoded[k] = values.Get(k)
		}
		view := formatter.View{Resource: "params"}
		return fm.FormatRecord(w, view, map[string]any{
			"path":   path,
			"query":  encoded,
			"target": "GET " + target,
			"params": decoded,
		}, formatter.FormatOptions{})
	}

	fmt.Fprintf(w, "GET %s\n", target)
	if len(keys) == 0 {
		return nil
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%s\n", k, values.Get(k))
	}
	return tw.Flush()
}

func newFetchCmd(root *rootOptions) *cobra.Command {
	flags := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "fetch <resource>",
		Short: "Fetch records and print them",
		Long: `Run the query against the API and print the records, cast through the
resource schema.

Examples:
  apiquery fetch articles --filter status=published --page 2 --per 10
  apiquery fetch articles --sort -published_at -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fm, err := flags.formatter()
			if err != nil {
				return err
			}
			app, err := root.newApp(cmd)
			if err != nil {
				return err
			}
			b, err := flags.build(cmd, app, args[0])
			if err != nil {
				return err
			}

			coll, err := b.ToArray(cmd.Context())
			if err != nil {
				return err
			}

			view := app.View(args[0]).WithMeta(coll.Meta)
			return fm.FormatList(cmd.OutOrStdout(), view, formatter.Rows(coll.Records), flags.formatOptions())
		},
	}

	flags.register(cmd)
	return cmd
}

func newFirstCmd(root *rootOptions) *cobra.Command {
	flags := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "first <resource>",
		Short: "Fetch and print the first matching record",
		Long: `Run the query with a page size of one and print the first record.

Examples:
  apiquery first articles --sort -published_at
  apiquery first people --filter name=Ada -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fm, err := flags.formatter()
			if err != nil {
				return err
			}
			app, err := root.newApp(cmd)
			if err != nil {
				return err
			}
			b, err := flags.build(cmd, app, args[0])
			if err != nil {
				return err
			}

			rec, err := b.First(cmd.Context())
			if err != nil {
				return err
			}
			return fm.FormatRecord(cmd.OutOrStdout(), app.View(args[0]), formatter.Row(rec), flags.formatOptions())
		},
	}

	flags.register(cmd)
	return cmd
}
