// Package enrichmesh provides a high-level façade over the scheduler Engine
// and the built-in enrichment agents. Most applications interact with this
// package by:
//  1. Creating an EnrichMesh via New() (optionally overriding strategies,
//     cache, store or run configuration)
//  2. Calling Enrich() per company name; each call is one isolated session
//  3. Reading the returned SessionContext (or its Summary) for the collected
//     data, conflicts and quality metrics
//
// The façade delegates orchestration to scheduler.Engine while keeping setup
// ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a Redis-backed cache, a
// MySQL summary store and a structured logger.
package enrichmesh

import (
	"context"

	"github.com/entigraph/enrichmesh/cache"
	"github.com/entigraph/enrichmesh/core"
	"github.com/entigraph/enrichmesh/enrich"
	"github.com/entigraph/enrichmesh/logging"
	"github.com/entigraph/enrichmesh/reconcile"
	"github.com/entigraph/enrichmesh/scheduler"
	"github.com/entigraph/enrichmesh/store"
)

// Options configures the EnrichMesh instance.
type Options struct {
	// Config tunes each run (concurrency, timeout, depth, caching).
	Config core.RunConfig

	// Strategies behind the built-in agents. Defaults are the rule-based
	// normalizer and empty static lookups, which enrich from the name alone.
	Normalizer enrich.Normalizer
	Registry   enrich.RegistrySearcher
	Websites   enrich.WebsiteLocator

	// Ranking orders sources when the validation agent resolves conflicts.
	Ranking core.SourceRanking

	// Cache memoizes agent results across runs. Defaults to in-memory.
	Cache *cache.Cache

	// Store receives each completed session's summary. Optional; nil skips
	// persistence.
	Store store.SummaryStore

	// ExtraTasks appends caller-supplied agents to the built-in graph. Their
	// dependencies may reference the built-in task ids ("normalization",
	// "identification", "validation").
	ExtraTasks []scheduler.TaskSpec

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// EnrichMesh is the high-level façade aggregating the scheduler and the
// default agent set.
type EnrichMesh struct {
	opts   Options
	engine *scheduler.Engine
}

// New creates an EnrichMesh with optional overrides. Any unset strategy is
// initialized with its built-in implementation.
func New(optFns ...func(o *Options)) *EnrichMesh {
	opts := Options{
		Config:     core.DefaultRunConfig(),
		Normalizer: enrich.NewRuleNormalizer(nil),
		Registry:   enrich.NewStaticRegistry(nil),
		Websites:   enrich.NewStaticWebsiteLocator(nil),
		Ranking:    core.DefaultSourceRanking(),
		Cache:      cache.New(cache.NewMemoryBackend()),
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	normalization := enrich.NewNormalizationAgent(opts.Normalizer, func(o *enrich.NormalizationAgentOptions) {
		o.Logger = opts.Logger
	})
	identification := enrich.NewIdentificationAgent(opts.Registry, opts.Websites, func(o *enrich.IdentificationAgentOptions) {
		o.Logger = opts.Logger
	})
	validation := reconcile.NewAgent(func(o *reconcile.AgentOptions) {
		o.Ranking = opts.Ranking
		o.Logger = opts.Logger
	})

	specs := []scheduler.TaskSpec{
		{
			TaskID:   enrich.NormalizationAgentName,
			Agent:    normalization,
			Priority: core.PriorityHigh,
		},
		{
			TaskID:       enrich.IdentificationAgentName,
			Agent:        identification,
			Priority:     core.PriorityMedium,
			Dependencies: []string{enrich.NormalizationAgentName},
		},
		{
			TaskID:       reconcile.AgentName,
			Agent:        validation,
			Priority:     core.PriorityMedium,
			Dependencies: []string{enrich.NormalizationAgentName, enrich.IdentificationAgentName},
		},
	}
	specs = append(specs, opts.ExtraTasks...)

	engine := scheduler.New(specs, func(o *scheduler.Options) {
		o.Logger = opts.Logger
		if opts.Config.CacheResults {
			o.Cache = opts.Cache
		}
	})

	return &EnrichMesh{opts: opts, engine: engine}
}

// Enrich runs the agent graph for one company name and returns the completed
// session. When a summary store is configured the session summary is
// persisted before returning; a storage failure is surfaced as a session
// warning, never as an enrichment failure.
func (m *EnrichMesh) Enrich(ctx context.Context, entityName string) (*core.SessionContext, error) {
	sc, err := m.engine.Run(ctx, entityName, m.opts.Config)
	if err != nil {
		return sc, err
	}

	if m.opts.Store != nil {
		if saveErr := m.opts.Store.Save(ctx, sc.Summary()); saveErr != nil {
			m.opts.Logger.Warn("summary persistence failed", "session_id", sc.SessionID, "error", saveErr)
			sc.AddWarning("summary not persisted: " + saveErr.Error())
		}
	}
	return sc, nil
}

// CancelSession cancels an in-flight session by id. Outstanding tasks
// transition to CANCELLED and the session's Enrich call returns.
func (m *EnrichMesh) CancelSession(sessionID string) error {
	return m.engine.CancelSession(sessionID)
}

// CacheStats reports the traffic counters of the configured cache.
func (m *EnrichMesh) CacheStats() cache.Stats {
	return m.opts.Cache.Stats()
}
