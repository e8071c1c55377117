// Package metrics records per-run counters for transcoding and writes them
// in the Prometheus text format for node_exporter's textfile collector.
package metrics
