package handlers

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"okrlens/internal/config"
)

// NewEvaluateCmd creates the evaluate command for one-off pipeline runs
func NewEvaluateCmd() *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "evaluate <url>",
		Short: "Evaluate the OKR content of a single article",
		Long: `Run the full evaluation pipeline against one URL and print the
resulting record as JSON.

The pipeline fetches the article, extracts OKRs, checks for duplicates
against the similarity index, scores content quality, cross-references
trends, and compiles the final report. The report is persisted when a
MongoDB instance is reachable; otherwise the evaluation still runs and
only printing happens.

Examples:
  # Evaluate an article
  okrlens evaluate https://example.com/okr-post

  # Pretty-print the record
  okrlens evaluate --pretty https://example.com/okr-post`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, args[0], pretty)
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the JSON output")

	return cmd
}

func runEvaluate(cmd *cobra.Command, url string, pretty bool) error {
	ctx := cmd.Context()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	orchestrator, _, cleanup, err := buildPipeline(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()

	record := orchestrator.Evaluate(ctx, url)

	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(record)
}
