package cmd

import (
	"fmt"
	"strings"

	"github.com/okian/playerhunt/internal/config"
	"github.com/okian/playerhunt/internal/domain/model"
	"github.com/okian/playerhunt/internal/domain/scoring"
	"github.com/okian/playerhunt/internal/domain/types"
	"github.com/spf13/cobra"
)

func newScoreCmd(f *flags, cfg *config.Config) *cobra.Command {
	var entries []string
	c := &cobra.Command{
		Use:   "score SPORT [COUNTRY]",
		Short: "Compute rarity points against a collection",
		Long: "Compute the points an athlete of SPORT (and optionally COUNTRY) would earn\n" +
			"when added to a collection given as repeated --entry SPORT[:COUNTRY] flags.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sport := args[0]
			country := ""
			if len(args) == 2 {
				country = args[1]
			}

			collection, err := parseEntries(entries)
			if err != nil {
				return err
			}

			scorer := scoring.NewRarityScorer(
				scoring.WithSportThresholds(thresholds(cfg.SportThresholds)),
				scoring.WithCountryThresholds(thresholds(cfg.CountryThresholds)),
			)
			r := scorer.Score(sport, country, collection)
			pts := types.Points{Total: r.Total, SportBonus: r.SportBonus, CountryBonus: r.CountryBonus}
			if f.jsonOut {
				return printJSON(cmd.OutOrStdout(), pts)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "total=%d sport_bonus=%d country_bonus=%d\n",
				pts.Total, pts.SportBonus, pts.CountryBonus)
			return err
		},
	}
	c.Flags().StringArrayVar(&entries, "entry", nil, "collection entry as SPORT[:COUNTRY], repeatable")
	return c
}

func parseEntries(raw []string) ([]model.CollectionEntry, error) {
	out := make([]model.CollectionEntry, 0, len(raw))
	for _, r := range raw {
		sport, country, _ := strings.Cut(r, ":")
		sport = strings.TrimSpace(sport)
		if sport == "" {
			return nil, fmt.Errorf("invalid --entry %q: missing sport", r)
		}
		out = append(out, model.CollectionEntry{Sport: sport, Country: strings.TrimSpace(country)})
	}
	return out, nil
}

func thresholds(in []config.Threshold) []scoring.Threshold {
	out := make([]scoring.Threshold, len(in))
	for i, t := range in {
		out[i] = scoring.Threshold{MaxPercent: t.MaxPercent, Bonus: t.Bonus}
	}
	return out
}
