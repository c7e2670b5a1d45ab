package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Cache maintenance commands",
}

// cachePolicyView is the human-facing shape of a category policy.
type cachePolicyView struct {
	TTL                  string `json:"ttl"`
	Compress             bool   `json:"compress"`
	CompressionThreshold int    `json:"compression_threshold"`
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache traffic counters and configured policies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		c, err := newCache(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer c.Close()

		policies, err := cfg.CachePolicies()
		if err != nil {
			return err
		}
		views := make(map[string]cachePolicyView, len(policies))
		for category, policy := range policies {
			views[category] = cachePolicyView{
				TTL:                  policy.TTL.String(),
				Compress:             policy.Compress,
				CompressionThreshold: policy.CompressionThreshold,
			}
		}

		backend := "memory"
		if cfg.Cache.RedisURL != "" {
			backend = "redis"
		}

		out, err := json.MarshalIndent(map[string]interface{}{
			"backend":  backend,
			"stats":    c.Stats(),
			"policies": views,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear <category> [pattern]",
	Short: "Invalidate cached entries in a category (glob pattern, default *)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		c, err := newCache(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer c.Close()

		pattern := "*"
		if len(args) == 2 {
			pattern = args[1]
		}

		removed := c.InvalidatePattern(cmd.Context(), args[0], pattern)
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d cache entries\n", removed)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
