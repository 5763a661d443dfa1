package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "okrlens",
		Short: "okrlens evaluates OKR content extracted from web articles.",
		Long: `okrlens fetches a web article, extracts its Objectives and Key
Results, checks the content against previously seen submissions, scores its
quality, cross-references current trends, and compiles a persisted
evaluation report.

Run a one-off evaluation with 'okrlens evaluate <url>' or start the HTTP
API with 'okrlens serve'.`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.okrlens.yaml)")

	rootCmd.AddCommand(NewEvaluateCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewResultsCmd())
	rootCmd.AddCommand(NewIndexCmd())
	rootCmd.AddCommand(NewCacheCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
