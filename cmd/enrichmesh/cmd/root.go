// Package cmd implements the enrichmesh command tree.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/entigraph/enrichmesh/cache"
	"github.com/entigraph/enrichmesh/config"
	"github.com/entigraph/enrichmesh/logging"
	"github.com/entigraph/enrichmesh/model"
	"github.com/entigraph/enrichmesh/model/anthropic"
	"github.com/entigraph/enrichmesh/model/openai"
)

var configFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "enrichmesh",
	Short: "Company data enrichment and reconciliation engine",
	Long: `Enrichmesh runs a dependency-scheduled set of enrichment agents against
a company name: name normalization, registry identification and cross-source
validation. Results are reconciled into a single consistent record with
quality metrics, optionally cached in Redis and persisted to MySQL.`,
	SilenceUsage: true,
}

// Execute runs the root command with signal-aware context cancellation.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./enrichmesh.yaml)")
}

func loadConfig() (*config.Config, error) {
	return config.Load(configFile)
}

func newLogger(cfg *config.Config) *logging.EnrichLogger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
}

// modelFor builds the provider adapter for a configured model name: Claude
// names go to Anthropic, everything else to OpenAI.
func modelFor(name string) model.Model {
	if strings.HasPrefix(strings.ToLower(name), "claude") {
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.Model = anthropicsdk.Model(name)
		})
	}
	return openai.NewModel(func(o *openai.Options) {
		o.Model = name
	})
}

// newRouter builds the task-to-model router from the models config section.
func newRouter(cfg *config.Config, logger logging.Logger) *model.Router {
	return model.NewRouter(modelFor(cfg.Models.Default), func(o *model.RouterOptions) {
		if cfg.Models.Fallback != "" {
			o.Fallback = modelFor(cfg.Models.Fallback)
		}
		routes := make(map[string]model.Model, len(cfg.Models.PerTask))
		for task, name := range cfg.Models.PerTask {
			routes[task] = modelFor(name)
		}
		o.Routes = routes
		o.Logger = logger
	})
}

// newCache builds the cache from config: Redis when a URL is set, in-memory
// otherwise. The returned cache is connected; callers own Close.
func newCache(ctx context.Context, cfg *config.Config, logger logging.Logger) (*cache.Cache, error) {
	policies, err := cfg.CachePolicies()
	if err != nil {
		return nil, err
	}

	var backend cache.Backend
	if cfg.Cache.RedisURL != "" {
		backend, err = cache.NewRedisBackend(cfg.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis backend: %w", err)
		}
	} else {
		backend = cache.NewMemoryBackend()
	}

	c := cache.New(backend, func(o *cache.Options) {
		o.Policies = policies
		o.Logger = logger
	})
	if err := c.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect cache: %w", err)
	}
	return c, nil
}
