// Package factory instantiates pluggable modules from configuration. A module
// is selected by a type name and configured by a raw settings map that the
// factory decodes into its own struct.
//
// Metrics sinks, trace stores and dispatch rate selectors are all built this
// way:
//
//	trace:
//	  type: jsonl
//	  conf:
//	    path: results/runs.jsonl
//	    max_size_mb: 10
//
//	store, err := trace.NewStore(cfg.Trace)
package factory
