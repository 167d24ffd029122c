package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/occstore/engine/pkg/metrics"
)

var serveMetricsCmd = &cobra.Command{
	Use:   "serve-metrics",
	Short: "Serve the Prometheus metrics registry over HTTP",
	Long: `serve-metrics exposes this process's Prometheus registry (the
engine's commit/abort/epoch counters and histograms) at /metrics. It
starts no engine itself, and the registry is per process: metrics of a
run in another process are not visible through it.`,
	RunE: runServeMetrics,
}

func init() {
	serveMetricsCmd.Flags().String("addr", "127.0.0.1:9090", "listen address")
}

func runServeMetrics(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", addr)
	return http.ListenAndServe(addr, mux)
}
