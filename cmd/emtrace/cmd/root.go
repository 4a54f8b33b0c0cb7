package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "emtrace",
	Short: "EM simulator output inspection tools",
	Long: `emtrace reads the result files written by planar EM solvers:
  - Touchstone / SnP network parameter sweeps
  - Coupled transmission line RLGC sweeps and their propagation modes
  - Exported surface current density maps

Examples:
  emtrace snp info filter.s2p                  # Summarize a Touchstone file
  emtrace snp dump --format json filter.s2p    # Dump the full sweep
  emtrace lines modes coupled.out              # Per-mode propagation data
  emtrace current peak run1_jxy.csv            # Find the current hot spot`,
	Version: "0.3.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
