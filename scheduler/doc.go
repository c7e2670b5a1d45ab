// Package scheduler drives one enrichment run: it builds a dependency graph
// over agent tasks, rejects invalid graphs before any agent executes, and
// runs ready tasks concurrently up to a configured ceiling while recording
// every result into a single SessionContext.
//
// All context mutation happens on the run loop's completion path, so agent
// goroutines never race on collected data or metrics.
package scheduler
