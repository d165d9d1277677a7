// Package cmd implements the lookup command tree.
package cmd

import (
	"os"

	"github.com/okian/playerhunt/internal/config"
	"github.com/okian/playerhunt/pkg/logger"
	"github.com/spf13/cobra"
)

// flags shared by every subcommand. Unset flags keep the loaded config.
type flags struct {
	index       string
	wikidataURL string
	offline     bool
	jsonOut     bool
	verbose     bool
}

// newRootCmd builds a fresh command tree so tests do not share flag state.
func newRootCmd() *cobra.Command {
	f := &flags{}
	cfg := config.New()

	root := &cobra.Command{
		Use:          "lookup",
		Short:        "Resolve athlete names and score them",
		Long:         "Resolve free-text athlete names against the local index and Wikidata, and compute rarity points.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			*cfg = *loaded
			if cmd.Flags().Changed("index") {
				cfg.IndexPath = f.index
			}
			if cmd.Flags().Changed("wikidata-url") {
				cfg.WikidataURL = f.wikidataURL
			}
			if f.offline {
				cfg.ExternalLookups = false
			}
			level := "warn"
			if f.verbose {
				level = "debug"
			}
			return logger.SetLevelString(level)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.index, "index", "", "path to the sqlite athlete index")
	pf.StringVar(&f.wikidataURL, "wikidata-url", "", "Wikidata API endpoint")
	pf.BoolVar(&f.offline, "offline", false, "only consult the local index")
	pf.BoolVar(&f.jsonOut, "json", false, "print JSON instead of text")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "log pipeline decisions")

	root.AddCommand(newResolveCmd(f, cfg))
	root.AddCommand(newScoreCmd(f, cfg))
	return root
}

// Execute runs the root command.
func Execute() error {
	if err := logger.InitWithWriter(os.Stderr); err != nil {
		return err
	}
	return newRootCmd().Execute()
}
