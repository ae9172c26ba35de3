// Package metrics provides counters for rsttools runs.
//
// Components receive a Recorder through their options and default to
// NoopRecorder, so nothing needs a nil check:
//
//	planner := rename.NewPlanner(opts) // metrics.NoopRecorder{} unless opts.Recorder is set
//
// When --metrics-file is given the CLI injects a PrometheusRecorder and, once the
// command finishes, writes its registry in the node_exporter textfile format so a
// scheduled documentation check can be scraped by the textfile collector.
package metrics
