// Package metrics defines the sink interfaces that receive dispatch steps and
// run summaries. Implementations such as PromSink and InfluxSink live in
// infra/metrics and register themselves with the factory; several configured
// sinks are combined into a MultiSink automatically.
package metrics
