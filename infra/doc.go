// Package infra groups the adapters that connect the simulator to the outside
// world: the MQTT event publisher, Prometheus and InfluxDB exporters, the
// Sentry error tracker, the SQLite KPI archive and the file loggers. Core
// packages define the interfaces; nothing under core imports infra.
package infra
