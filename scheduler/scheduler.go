package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/entigraph/enrichmesh/cache"
	"github.com/entigraph/enrichmesh/core"
	"github.com/entigraph/enrichmesh/logging"
)

// ErrUnknownSession is returned by CancelSession for session ids the engine
// is not currently running.
var ErrUnknownSession = errors.New("scheduler: unknown session")

// Options configures an Engine via functional options.
type Options struct {
	// Logger receives structured scheduling and agent lifecycle entries.
	// Defaults to a no-op logger.
	Logger logging.Logger

	// Cache memoizes results of agents exposing a cache key. Optional;
	// without it every agent always recomputes.
	Cache core.ResultCache

	// CacheTTL overrides the TTL for memoized agent results. Defaults to
	// the agent_result category policy.
	CacheTTL time.Duration
}

// Engine executes a declared agent task set against one SessionContext per
// run, respecting dependency order and a concurrency ceiling.
//
// The engine is stateless between runs: each Run builds a fresh graph and
// context, so one Engine may serve concurrent sessions.
type Engine struct {
	specs    []TaskSpec
	logger   logging.Logger
	cache    core.ResultCache
	cacheTTL time.Duration

	mu       sync.Mutex
	sessions map[string]context.CancelFunc
}

// New creates an Engine over a set of task specs. The specs are validated
// at run time (per session), so a misconfigured graph surfaces as a fatal
// error from Run before any agent executes.
func New(specs []TaskSpec, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Logger:   logging.NoOpLogger{},
		CacheTTL: cache.DefaultTTL,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Engine{
		specs:    specs,
		logger:   opts.Logger,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		sessions: map[string]context.CancelFunc{},
	}
}

// completion carries one finished task from its worker goroutine back to
// the run loop, which is the only writer of session state.
type completion struct {
	task   *core.Task
	result *core.AgentResult
}

// Run executes one enrichment session for an entity.
//
// The returned context is always fully formed, including when every agent
// failed or the session timed out; only fatal configuration errors (invalid
// graph) yield a nil context. SessionTimeout semantics: negative disables
// the timeout, zero expires immediately, positive bounds the run.
func (e *Engine) Run(ctx context.Context, entityName string, cfg core.RunConfig) (*core.SessionContext, error) {
	cfg = cfg.Normalize()

	graph, err := BuildGraph(e.specs)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	sc := core.NewSessionContext(sessionID, entityName, cfg)
	sc.Cache = e.cache

	var runCtx context.Context
	var cancel context.CancelFunc
	if cfg.SessionTimeout >= 0 {
		runCtx, cancel = context.WithTimeout(ctx, cfg.SessionTimeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	e.trackSession(sessionID, cancel)
	defer e.untrackSession(sessionID)

	e.logger.Info("session started", "session_id", sessionID, "entity", entityName, "tasks", graph.Len())

	done := make(chan completion, graph.Len())
	running := 0
	expired := false

	for {
		if !expired && runCtx.Err() != nil {
			expired = true
			cancelled := e.cancelOutstanding(graph)
			sc.AddError(fmt.Sprintf("session timeout: %d task(s) cancelled", cancelled))
			e.logger.Warn("session timed out", "session_id", sessionID, "cancelled", cancelled)
		}

		if !expired {
			e.cancelOrphans(graph, sc)
			running += e.launchReady(runCtx, graph, sc, cfg.MaxConcurrentTasks-running, done)
		}

		if running == 0 {
			if expired || !anyPending(graph) {
				break
			}
			// Validated acyclic graphs always yield either a running or an
			// orphaned task here; bail out rather than spin if that ever breaks.
			sc.AddError("scheduler stalled with pending tasks")
			break
		}

		if expired {
			comp := <-done
			running--
			e.finalize(comp, sc)
			continue
		}

		select {
		case <-runCtx.Done():
			// Handled at the top of the loop.
		case comp := <-done:
			running--
			e.finalize(comp, sc)
		}
	}

	e.logger.Info("session finished",
		"session_id", sessionID,
		"sources", sc.SourceCount(),
		"errors", len(sc.Errors()),
		"duration", sc.Elapsed())
	return sc, nil
}

// CancelSession cooperatively cancels a running session by id. Outstanding
// tasks end CANCELLED with the same semantics as a timeout.
func (e *Engine) CancelSession(sessionID string) error {
	e.mu.Lock()
	cancel, ok := e.sessions[sessionID]
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}
	cancel()
	return nil
}

func (e *Engine) trackSession(id string, cancel context.CancelFunc) {
	e.mu.Lock()
	e.sessions[id] = cancel
	e.mu.Unlock()
}

func (e *Engine) untrackSession(id string) {
	e.mu.Lock()
	delete(e.sessions, id)
	e.mu.Unlock()
}

// launchReady starts up to limit ready tasks, highest priority first with
// declaration order breaking ties, and returns how many were launched.
func (e *Engine) launchReady(ctx context.Context, graph *Graph, sc *core.SessionContext, limit int, done chan<- completion) int {
	if limit <= 0 {
		return 0
	}

	ready := e.readyTasks(graph)
	launched := 0
	for _, task := range ready {
		if launched >= limit {
			break
		}
		if err := task.SetState(core.StateRunning); err != nil {
			continue
		}
		launched++
		e.logger.Debug("task started", "task_id", task.TaskID, "agent", task.AgentName, "priority", task.Priority.String())

		go func(task *core.Task) {
			done <- completion{task: task, result: e.executeTask(ctx, task, sc)}
		}(task)
	}
	return launched
}

// readyTasks returns PENDING tasks whose dependencies are all COMPLETED,
// ordered by descending priority then declaration order.
func (e *Engine) readyTasks(graph *Graph) []*core.Task {
	var ready []*core.Task
	for _, task := range graph.Tasks() {
		if task.State() != core.StatePending {
			continue
		}
		runnable := true
		for _, dep := range task.Dependencies() {
			depTask, _ := graph.Task(dep)
			if depTask.State() != core.StateCompleted {
				runnable = false
				break
			}
		}
		if runnable {
			ready = append(ready, task)
		}
	}

	// graph.Tasks is declaration-ordered; a stable sort keeps that order
	// within equal priorities.
	sort.SliceStable(ready, func(i, j int) bool {
		return ready[i].Priority > ready[j].Priority
	})
	return ready
}

// cancelOrphans cancels, to fixpoint, every pending task with a failed or
// cancelled dependency. Dependency failure never silently continues with
// stale data.
func (e *Engine) cancelOrphans(graph *Graph, sc *core.SessionContext) {
	for changed := true; changed; {
		changed = false
		for _, task := range graph.Tasks() {
			if task.State() != core.StatePending {
				continue
			}
			for _, dep := range task.Dependencies() {
				depTask, _ := graph.Task(dep)
				depState := depTask.State()
				if depState != core.StateFailed && depState != core.StateCancelled {
					continue
				}
				if err := task.SetState(core.StateCancelled); err == nil {
					changed = true
					sc.AddWarning(fmt.Sprintf("task %s cancelled: dependency %s %s", task.TaskID, dep, depState))
					e.logger.Warn("task cancelled", "task_id", task.TaskID, "dependency", dep, "dependency_state", depState.String())
				}
				break
			}
		}
	}
}

// cancelOutstanding cancels every non-terminal task and returns the count.
func (e *Engine) cancelOutstanding(graph *Graph) int {
	cancelled := 0
	for _, task := range graph.Tasks() {
		if task.State().Terminal() {
			continue
		}
		if err := task.SetState(core.StateCancelled); err == nil {
			cancelled++
		}
	}
	return cancelled
}

func anyPending(graph *Graph) bool {
	for _, task := range graph.Tasks() {
		if task.State() == core.StatePending {
			return true
		}
	}
	return false
}

// executeTask runs one task's agent pipeline inside a worker goroutine:
// input validation, cached-result short-circuit, execution with panic
// recovery, and memoization of fresh successes. It never touches the
// session context; recording happens on the run loop.
func (e *Engine) executeTask(ctx context.Context, task *core.Task, sc *core.SessionContext) *core.AgentResult {
	agent := task.Agent
	start := time.Now()

	if tracker, ok := agent.(core.StateTracker); ok {
		tracker.SetAgentState(core.AgentProcessing)
	}

	if !agent.ValidateInput(sc) {
		return core.FailureResult(agent.Name(), time.Since(start),
			fmt.Sprintf("invalid input for agent %s", agent.Name()))
	}

	cacheKey := ""
	if keyer, ok := agent.(core.CacheKeyer); ok && e.cache != nil && sc.Config.CacheResults {
		cacheKey = keyer.CacheKey(sc)
		if value, hit := e.cache.Get(ctx, cache.CategoryAgentResult, cacheKey); hit {
			if cached, err := core.DecodeResult(value); err == nil {
				e.logger.Debug("cached result reused", "agent", agent.Name(), "cache_key", cacheKey)
				return cached
			}
			e.logger.Warn("cached result discarded", "agent", agent.Name(), "cache_key", cacheKey)
		}
	}

	result := e.invoke(ctx, agent, sc, start)

	if cacheKey != "" && result.Success {
		e.cache.Set(ctx, cache.CategoryAgentResult, cacheKey, result, e.cacheTTL)
	}
	return result
}

// invoke calls Execute, converting returned errors and panics into failure
// results so a misbehaving agent can never take the session down.
func (e *Engine) invoke(ctx context.Context, agent core.Agent, sc *core.SessionContext, start time.Time) (result *core.AgentResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("agent panicked", "agent", agent.Name(), "panic", fmt.Sprintf("%v", r))
			result = core.FailureResult(agent.Name(), time.Since(start),
				fmt.Sprintf("agent %s panicked: %v", agent.Name(), r))
		}
	}()

	res, err := agent.Execute(ctx, sc)
	if err != nil {
		return core.FailureResult(agent.Name(), time.Since(start),
			fmt.Sprintf("agent %s execution error: %v", agent.Name(), err))
	}
	if res == nil {
		return core.FailureResult(agent.Name(), time.Since(start),
			fmt.Sprintf("agent %s returned no result", agent.Name()))
	}
	return res
}

// finalize applies one completion on the run loop: task state transition,
// result recording and agent state bookkeeping. Results of tasks cancelled
// mid-flight are dropped.
func (e *Engine) finalize(comp completion, sc *core.SessionContext) {
	task := comp.task
	result := comp.result

	if task.State() == core.StateCancelled {
		e.logger.Debug("result dropped for cancelled task", "task_id", task.TaskID)
		return
	}

	task.SetResult(result)
	next := core.StateCompleted
	if !result.Success {
		next = core.StateFailed
		if len(result.Errors) > 0 {
			task.SetErr(errors.New(result.Errors[0]))
		} else {
			task.SetErr(fmt.Errorf("agent %s failed", task.AgentName))
		}
	}
	if err := task.SetState(next); err != nil {
		e.logger.Error("task transition rejected", "task_id", task.TaskID, "error", err)
		return
	}

	if tracker, ok := task.Agent.(core.StateTracker); ok {
		if result.Success {
			tracker.SetAgentState(core.AgentCompleted)
		} else {
			tracker.SetAgentState(core.AgentError)
		}
	}

	sc.RecordResult(result)
	e.logger.Info("task finished",
		"task_id", task.TaskID,
		"agent", task.AgentName,
		"state", task.State().String(),
		"confidence", result.ConfidenceScore,
		"duration", result.ExecutionTime)
}
