package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/occstore/engine/pkg/log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "occbench",
	Short: "occbench drives and inspects an occstore engine instance",
	Long: `occbench is a benchmarking and recovery-inspection CLI for the
occstore transactional core: it runs a synthetic read-modify-write
workload against an in-process engine, replays a worker's persisted
log for recovery testing, and serves the engine's Prometheus metrics
over HTTP.`,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(serveMetricsCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}
