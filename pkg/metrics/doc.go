// Package metrics exposes the engine's Prometheus counters and gauges:
// commits, aborts by cause, epoch advances, durable-epoch lag, and
// per-worker logger ring utilization.
package metrics
