package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entigraph/enrichmesh"
	"github.com/entigraph/enrichmesh/enrich"
	"github.com/entigraph/enrichmesh/store"
)

var runCmd = &cobra.Command{
	Use:   "run <entity>",
	Short: "Enrich one company record and print the session summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		c, err := newCache(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer c.Close()

		var summaries store.SummaryStore
		if cfg.Store.MySQLDSN != "" {
			mysqlStore, err := store.OpenMySQL(cfg.Store.MySQLDSN)
			if err != nil {
				return fmt.Errorf("summary store: %w", err)
			}
			summaries = mysqlStore
		}

		// Name normalization goes through the configured model routes; the
		// rule-based path takes over when no provider is reachable.
		normalizer := enrich.NewModelNormalizer(newRouter(cfg, logger), func(o *enrich.ModelNormalizerOptions) {
			o.Logger = logger
		})

		mesh := enrichmesh.New(func(o *enrichmesh.Options) {
			o.Config = cfg.RunConfig()
			o.Ranking = cfg.SourceRanking()
			o.Normalizer = normalizer
			o.Cache = c
			o.Store = summaries
			o.Logger = logger
		})

		sc, err := mesh.Enrich(ctx, args[0])
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(sc.Summary(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		if errs := sc.Errors(); len(errs) > 0 {
			return fmt.Errorf("enrichment finished with %d error(s)", len(errs))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
