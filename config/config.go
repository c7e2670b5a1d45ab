// Package config loads the module's runtime configuration from a YAML file
// and ENRICHMESH_* environment variables: scheduler limits, cache backend
// and per-category policies, source trust ranking and model routing.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/entigraph/enrichmesh/cache"
	"github.com/entigraph/enrichmesh/core"
)

// Config is the full runtime configuration.
type Config struct {
	Scheduler SchedulerConfig    `mapstructure:"scheduler"`
	Cache     CacheConfig        `mapstructure:"cache"`
	Sources   map[string]float64 `mapstructure:"sources"`
	Models    ModelConfig        `mapstructure:"models"`
	Store     StoreConfig        `mapstructure:"store"`
	Log       LogConfig          `mapstructure:"log"`
}

// SchedulerConfig tunes enrichment runs.
type SchedulerConfig struct {
	MaxConcurrentTasks int           `mapstructure:"max_concurrent_tasks"`
	SessionTimeout     time.Duration `mapstructure:"session_timeout"`
	MaxDepth           int           `mapstructure:"max_depth"`
	CacheResults       bool          `mapstructure:"cache_results"`
}

// CacheConfig selects the cache backend and per-category policies.
type CacheConfig struct {
	// RedisURL enables the Redis backend; empty selects in-memory.
	RedisURL string                  `mapstructure:"redis_url"`
	Policies map[string]PolicyConfig `mapstructure:"policies"`
}

// PolicyConfig is one category's cache policy in config-file form. TTL uses
// the compact duration syntax (30s, 5m, 12h, 7d).
type PolicyConfig struct {
	TTL                  string `mapstructure:"ttl"`
	Compress             bool   `mapstructure:"compress"`
	CompressionThreshold int    `mapstructure:"compression_threshold"`
}

// ModelConfig routes tasks to models.
type ModelConfig struct {
	Default  string            `mapstructure:"default"`
	Fallback string            `mapstructure:"fallback"`
	PerTask  map[string]string `mapstructure:"per_task"`
}

// StoreConfig selects summary persistence.
type StoreConfig struct {
	// MySQLDSN enables the MySQL store; empty selects in-memory.
	MySQLDSN string `mapstructure:"mysql_dsn"`
}

// LogConfig tunes logging output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the given file (or ./enrichmesh.yaml when
// path is empty), layered under ENRICHMESH_* environment variables, on top
// of defaults. A missing config file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ENRICHMESH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("enrichmesh")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := core.DefaultRunConfig()
	v.SetDefault("scheduler.max_concurrent_tasks", defaults.MaxConcurrentTasks)
	v.SetDefault("scheduler.session_timeout", defaults.SessionTimeout)
	v.SetDefault("scheduler.max_depth", defaults.MaxDepth)
	v.SetDefault("scheduler.cache_results", defaults.CacheResults)

	v.SetDefault("models.default", "gpt-4o")
	v.SetDefault("models.fallback", "gpt-4o-mini")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// RunConfig converts the scheduler section into a core.RunConfig.
func (c *Config) RunConfig() core.RunConfig {
	return core.RunConfig{
		MaxConcurrentTasks: c.Scheduler.MaxConcurrentTasks,
		SessionTimeout:     c.Scheduler.SessionTimeout,
		MaxDepth:           c.Scheduler.MaxDepth,
		CacheResults:       c.Scheduler.CacheResults,
	}.Normalize()
}

// CachePolicies parses the cache section into policies, layered over the
// built-in defaults.
func (c *Config) CachePolicies() (map[string]cache.Policy, error) {
	policies := cache.DefaultPolicies()
	for category, pc := range c.Cache.Policies {
		policy := cache.DefaultPolicy()
		if existing, ok := policies[category]; ok {
			policy = existing
		}
		if pc.TTL != "" {
			ttl, err := cache.ParseTTL(pc.TTL)
			if err != nil {
				return nil, fmt.Errorf("cache policy %s: %w", category, err)
			}
			policy.TTL = ttl
		}
		policy.Compress = pc.Compress
		if pc.CompressionThreshold > 0 {
			policy.CompressionThreshold = pc.CompressionThreshold
		}
		policies[category] = policy
	}
	return policies, nil
}

// SourceRanking merges configured source priorities over the defaults.
func (c *Config) SourceRanking() core.SourceRanking {
	ranking := core.DefaultSourceRanking()
	for label, priority := range c.Sources {
		ranking[label] = priority
	}
	return ranking
}
