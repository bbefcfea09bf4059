package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/helixir/scholarly-search-proxy/internal/app"
	"github.com/helixir/scholarly-search-proxy/internal/config"
	"github.com/helixir/scholarly-search-proxy/internal/domain"
	"github.com/helixir/scholarly-search-proxy/internal/json"
	"github.com/helixir/scholarly-search-proxy/internal/observability"
	"github.com/helixir/scholarly-search-proxy/internal/search"
)

// searcher is the part of *search.Service the command uses.
type searcher interface {
	ParseRequest(p search.Params) (domain.SearchRequest, error)
	Search(ctx context.Context, req domain.SearchRequest, opts search.Options) (*domain.SearchResponse, error)
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one search and print the result envelope",
	Long: `Search sends one query to the selected provider and prints the
{results, meta} envelope. Pass meta.next_cursor back with --cursor to fetch
the next page.`,
	Example: `  searchctl search --source arxiv --q "graph neural networks" --per-page 5
  searchctl search --source crossref --q crispr --cursor 20 --oa-first
  searchctl search --group "autonomous ship*|unmanned ship*" --group training --sort cited_by_count:desc`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logCfg := observability.DefaultLoggingConfig()
		logCfg.Output = "stderr"
		logCfg.Format = "console"
		logCfg.Level = "warn"
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			logCfg.Level = "debug"
		}
		logger := observability.NewLogger(logCfg)

		svc, _ := app.NewSearchService(cfg, logger, nil)

		params, opts, err := paramsFromFlags(cmd)
		if err != nil {
			return err
		}
		pretty, _ := cmd.Flags().GetBool("pretty")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return runSearch(ctx, svc, params, opts, pretty, cmd.OutOrStdout())
	},
}

func init() {
	searchCmd.Flags().String("source", string(domain.DefaultProvider), "provider: openalex, crossref or arxiv")
	searchCmd.Flags().String("entity", string(domain.DefaultEntity), "entity: works or authors (authors: openalex only)")
	searchCmd.Flags().String("q", "", "free-text query")
	searchCmd.Flags().Int("per-page", domain.DefaultPageSize, "results per page, clamped to [1, 200]")
	searchCmd.Flags().String("cursor", domain.StartCursor, "cursor from a previous meta.next_cursor")
	searchCmd.Flags().String("filter", "", "OpenAlex filter expression, e.g. publication_year:2024")
	searchCmd.Flags().String("sort", "", "OpenAlex sort expression, e.g. cited_by_count:desc")
	searchCmd.Flags().StringArray("group", nil, `"|"-separated alternative terms; groups are ANDed with --q`)
	searchCmd.Flags().Bool("oa-first", false, "order open-access works first")
	searchCmd.Flags().Bool("pretty", false, "indent the JSON output")
	searchCmd.Flags().BoolP("verbose", "v", false, "log debug output to stderr")

	rootCmd.AddCommand(searchCmd)
}

// paramsFromFlags reads the search flags. --oa-first only overrides the
// configured ranking when it is given explicitly.
func paramsFromFlags(cmd *cobra.Command) (search.Params, search.Options, error) {
	flags := cmd.Flags()

	source, err := flags.GetString("source")
	if err != nil {
		return search.Params{}, search.Options{}, err
	}
	entity, err := flags.GetString("entity")
	if err != nil {
		return search.Params{}, search.Options{}, err
	}
	query, err := flags.GetString("q")
	if err != nil {
		return search.Params{}, search.Options{}, err
	}
	perPage, err := flags.GetInt("per-page")
	if err != nil {
		return search.Params{}, search.Options{}, err
	}
	cursor, err := flags.GetString("cursor")
	if err != nil {
		return search.Params{}, search.Options{}, err
	}
	filter, err := flags.GetString("filter")
	if err != nil {
		return search.Params{}, search.Options{}, err
	}
	sort, err := flags.GetString("sort")
	if err != nil {
		return search.Params{}, search.Options{}, err
	}
	rawGroups, err := flags.GetStringArray("group")
	if err != nil {
		return search.Params{}, search.Options{}, err
	}
	var groups [][]string
	for _, g := range rawGroups {
		groups = append(groups, search.SplitGroup(g))
	}

	var opts search.Options
	if flags.Changed("oa-first") {
		oaFirst, err := flags.GetBool("oa-first")
		if err != nil {
			return search.Params{}, search.Options{}, err
		}
		opts.OpenAccessFirst = &oaFirst
	}

	return search.Params{
		Source:  source,
		Entity:  entity,
		Query:   query,
		PerPage: strconv.Itoa(perPage),
		Cursor:  cursor,
		Filter:  filter,
		Sort:    sort,
		Groups:  groups,
	}, opts, nil
}

// runSearch executes one search and writes the envelope to w.
func runSearch(ctx context.Context, svc searcher, params search.Params, opts search.Options, pretty bool, w io.Writer) error {
	req, err := svc.ParseRequest(params)
	if err != nil {
		return err
	}

	resp, err := svc.Search(ctx, req, opts)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(resp)
}
