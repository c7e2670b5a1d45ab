package scheduler

import (
	"errors"
	"fmt"

	"github.com/entigraph/enrichmesh/core"
)

// Graph validation failures. Both are fatal pre-run configuration errors:
// the scheduler refuses to start a session over a broken graph.
var (
	// ErrCycle marks a dependency cycle among declared tasks.
	ErrCycle = errors.New("scheduler: dependency cycle")
	// ErrUnknownDependency marks a reference to a task id that was never declared.
	ErrUnknownDependency = errors.New("scheduler: unknown dependency")
	// ErrDuplicateTask marks two specs sharing one task id.
	ErrDuplicateTask = errors.New("scheduler: duplicate task id")
)

// TaskSpec declares one agent task of the graph: identity, the agent to
// run, its scheduling priority and the task ids it depends on.
type TaskSpec struct {
	TaskID       string
	Agent        core.Agent
	Priority     core.Priority
	Dependencies []string
}

// Graph is a validated, immutable task graph for one run. Each Run builds a
// fresh Graph so task state never leaks between sessions.
type Graph struct {
	tasks map[string]*core.Task
	order []string
}

// BuildGraph materializes and validates a task graph from specs. It rejects
// duplicate ids, references to undeclared tasks and dependency cycles
// (Kahn's algorithm) before any agent runs.
func BuildGraph(specs []TaskSpec) (*Graph, error) {
	g := &Graph{tasks: make(map[string]*core.Task, len(specs)), order: make([]string, 0, len(specs))}

	for _, spec := range specs {
		if spec.TaskID == "" {
			return nil, fmt.Errorf("scheduler: task for agent %q has empty task id", spec.Agent.Name())
		}
		if _, exists := g.tasks[spec.TaskID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTask, spec.TaskID)
		}
		priority := spec.Priority
		if priority == 0 {
			priority = core.PriorityMedium
		}
		g.tasks[spec.TaskID] = core.NewTask(spec.TaskID, spec.Agent, priority, spec.Dependencies...)
		g.order = append(g.order, spec.TaskID)
	}

	for id, task := range g.tasks {
		for _, dep := range task.Dependencies() {
			if _, ok := g.tasks[dep]; !ok {
				return nil, fmt.Errorf("%w: task %s depends on %s", ErrUnknownDependency, id, dep)
			}
			if dep == id {
				return nil, fmt.Errorf("%w: task %s depends on itself", ErrCycle, id)
			}
		}
	}

	if err := g.checkAcyclic(); err != nil {
		return nil, err
	}
	return g, nil
}

// checkAcyclic runs Kahn's algorithm; any node left with a nonzero indegree
// sits on a cycle.
func (g *Graph) checkAcyclic() error {
	indegree := make(map[string]int, len(g.tasks))
	dependents := make(map[string][]string, len(g.tasks))

	for id, task := range g.tasks {
		indegree[id] = len(task.Dependencies())
		for _, dep := range task.Dependencies() {
			dependents[dep] = append(dependents[dep], id)
		}
	}

	queue := make([]string, 0, len(g.tasks))
	for _, id := range g.order {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, dependent := range dependents[id] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if visited != len(g.tasks) {
		var cyclic []string
		for _, id := range g.order {
			if indegree[id] > 0 {
				cyclic = append(cyclic, id)
			}
		}
		return fmt.Errorf("%w involving tasks %v", ErrCycle, cyclic)
	}
	return nil
}

// Task returns a task by id.
func (g *Graph) Task(id string) (*core.Task, bool) {
	t, ok := g.tasks[id]
	return t, ok
}

// Tasks returns all tasks in declaration order.
func (g *Graph) Tasks() []*core.Task {
	out := make([]*core.Task, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.tasks[id])
	}
	return out
}

// Len returns the number of tasks in the graph.
func (g *Graph) Len() int { return len(g.tasks) }
