// Package core contains the shared contracts and data model of the
// enrichment engine: the Agent contract, the per-run SessionContext,
// scheduling task metadata, agent results with construction invariants,
// run configuration and the source priority ranking.
//
// The package is dependency-free with respect to the rest of the module;
// every other package builds on top of it.
package core
