// Package cmd implements the qflow command line interface.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "qflow",
	Short: "Hybrid quantum/classical workflow scheduler",
	Long: `qflow schedules workflows that mix classical preprocessing with quantum
circuit execution. It estimates per-task costs from a pricing catalog,
orders tasks under budget and latency constraints, persists the schedule,
and dispatches tasks to the configured backends.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExecuteContext runs the root command with the given context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.quantumflow/config.yaml)")
}
