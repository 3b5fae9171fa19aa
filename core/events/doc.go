// Package events defines the run lifecycle events emitted on the event bus.
//
// Available event kinds:
//   - RunStarted: a dispatch run was accepted
//   - RunCompleted: a run produced its trace and summary
//   - RunFailed: a run was rejected or failed before producing a trace
package events
