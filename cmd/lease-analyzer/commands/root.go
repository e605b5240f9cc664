package commands

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "lease-analyzer",
	Short: "Lease Analyzer - batch lease document analysis with an LLM",
	Long: `The Lease Analyzer runs a folder of lease PDFs through a set of analysis
prompts, tracks spend against a hard budget, quarantines documents that fail,
and writes per-clause markdown outputs plus an auditable run report.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
