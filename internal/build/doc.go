// Package build provides the canonical build execution pipeline for runbuild.
//
// A build resolves the output location of a project, asks the incremental
// gate whether the external compiler must run, runs it when the gate says the
// outputs are stale and finally materializes the runnable output tree. All
// execution paths (CLI build, watch) route through BuildService.
//
// Each invocation gets a build ID and, when a history store is configured,
// leaves a trail of events (started, gate decided, compiled, materialized,
// completed or failed) in it.
package build
