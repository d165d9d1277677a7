package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/okian/playerhunt/internal/adapters/localindex"
	"github.com/okian/playerhunt/internal/adapters/wikidata"
	service "github.com/okian/playerhunt/internal/app"
	"github.com/okian/playerhunt/internal/config"
	"github.com/okian/playerhunt/internal/domain/resolver"
	"github.com/okian/playerhunt/internal/domain/types"
	"github.com/okian/playerhunt/pkg/logger"
	"github.com/spf13/cobra"
)

func newResolveCmd(f *flags, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve NAME [NAME...]",
		Short: "Resolve one or more athlete names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logger.OrNamed(nil, "lookup")

			index := localindex.Open(ctx, cfg.IndexPath, localindex.WithLogger(log))
			defer func() { _ = index.Close() }()

			var external resolver.ExternalResolver
			if cfg.ExternalLookups {
				client := wikidata.NewClient(
					wikidata.WithBaseURL(cfg.WikidataURL),
					wikidata.WithUserAgent(cfg.UserAgent),
					wikidata.WithTimeouts(cfg.ConnectTimeout(), cfg.RequestTimeout()),
					wikidata.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
					wikidata.WithLogger(log),
				)
				external = wikidata.NewResolver(client, wikidata.WithResolverLogger(log))
			}

			svc := service.New(
				service.WithLogger(log),
				service.WithLookuper(resolver.New(index, external, resolver.WithLogger(log))),
			)
			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer svc.Stop()

			results, err := svc.LookupBatch(ctx, args)
			if err != nil {
				return err
			}
			if f.jsonOut {
				return printJSON(cmd.OutOrStdout(), results)
			}
			return printResults(cmd.OutOrStdout(), results)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResults(w io.Writer, results []types.LookupResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INPUT\tMATCH\tSPORT\tCOUNTRY\tSOURCE")
	for _, r := range results {
		if !r.Found {
			fmt.Fprintf(tw, "%s\t-\tnot found\t-\t-\n", r.Input)
			continue
		}
		country := r.Athlete.Country
		if country == "" {
			country = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Input, r.Athlete.MatchedName, r.Athlete.Sport, country, r.Athlete.Source)
	}
	return tw.Flush()
}
