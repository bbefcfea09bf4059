package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/helixir/scholarly-search-proxy/internal/app"
	"github.com/helixir/scholarly-search-proxy/internal/config"
	"github.com/helixir/scholarly-search-proxy/internal/domain"
	"github.com/helixir/scholarly-search-proxy/internal/json"
	"github.com/helixir/scholarly-search-proxy/internal/observability"
)

type recordLookup interface {
	Lookup(ctx context.Context, entity domain.Entity, id string) (json.RawMessage, error)
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <works|authors> <id>",
	Short: "Fetch one OpenAlex work or author record",
	Example: `  searchctl lookup works 10.1038/nature14539
  searchctl lookup authors https://openalex.org/A5023888391`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logCfg := observability.DefaultLoggingConfig()
		logCfg.Output = "stderr"
		logCfg.Format = "console"
		logCfg.Level = "warn"
		logger := observability.NewLogger(logCfg)

		svc, _ := app.NewSearchService(cfg, logger, nil)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return runLookup(ctx, svc, domain.ParseEntity(args[0]), args[1], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(ctx context.Context, svc recordLookup, entity domain.Entity, id string, w io.Writer) error {
	record, err := svc.Lookup(ctx, entity, id)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(record))
	return err
}
