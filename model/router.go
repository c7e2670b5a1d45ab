package model

import (
	"context"
	"fmt"

	"github.com/entigraph/enrichmesh/logging"
)

// RouterOptions configures a Router.
type RouterOptions struct {
	// Fallback handles requests when the routed model errors. Optional.
	Fallback Model

	// Routes maps task names to their preferred model.
	Routes map[string]Model

	// AgentTasks maps agent names to the task name routed for them.
	AgentTasks map[string]string

	// Logger defaults to a no-op logger.
	Logger logging.Logger
}

// Router selects a model per enrichment task, falling back to a secondary
// model when the primary call fails. Routing tables are fixed at
// construction; a Router is safe for concurrent use.
type Router struct {
	defaultModel Model
	fallback     Model
	routes       map[string]Model
	agentTasks   map[string]string
	logger       logging.Logger
}

// defaultAgentTasks maps agents to the task whose model suits their
// dominant workload.
func defaultAgentTasks() map[string]string {
	return map[string]string{
		"normalization":  "normalize_name",
		"identification": "extract_site_info",
		"validation":     "validate_consistency",
	}
}

// NewRouter creates a Router with defaultModel serving unrouted tasks.
func NewRouter(defaultModel Model, optFns ...func(o *RouterOptions)) *Router {
	opts := RouterOptions{
		AgentTasks: defaultAgentTasks(),
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	routes := make(map[string]Model, len(opts.Routes))
	for task, m := range opts.Routes {
		routes[task] = m
	}
	return &Router{
		defaultModel: defaultModel,
		fallback:     opts.Fallback,
		routes:       routes,
		agentTasks:   opts.AgentTasks,
		logger:       opts.Logger,
	}
}

// ForTask returns the model routed for a task, or the default.
func (r *Router) ForTask(task string) Model {
	if m, ok := r.routes[task]; ok {
		return m
	}
	return r.defaultModel
}

// ForAgent returns the model routed for an agent's dominant task.
func (r *Router) ForAgent(agentName string) Model {
	if task, ok := r.agentTasks[agentName]; ok {
		return r.ForTask(task)
	}
	return r.defaultModel
}

// Complete runs a request on the task's model, retrying once on the
// fallback model when the primary errors. Both failing yields a combined
// error.
func (r *Router) Complete(ctx context.Context, task string, req Request) (*Response, error) {
	primary := r.ForTask(task)
	resp, err := primary.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}

	if r.fallback == nil || r.fallback == primary {
		return nil, fmt.Errorf("model %s: %w", primary.Info().Name, err)
	}

	r.logger.Warn("primary model failed, using fallback",
		"task", task,
		"primary", primary.Info().Name,
		"fallback", r.fallback.Info().Name,
		"error", err.Error())

	resp, fbErr := r.fallback.Complete(ctx, req)
	if fbErr != nil {
		return nil, fmt.Errorf("model %s: %v; fallback %s: %w",
			primary.Info().Name, err, r.fallback.Info().Name, fbErr)
	}
	return resp, nil
}
