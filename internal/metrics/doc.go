// Package metrics provides observability hooks for gate decisions,
// materializations and builds.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	oracle := incremental.NewOracle().WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// The CLI is short-lived, so Prometheus metrics are exported with WriteTextfile
// for a node-exporter textfile collector instead of being served over HTTP.
package metrics
