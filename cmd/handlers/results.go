package handlers

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"okrlens/internal/config"
	"okrlens/internal/logger"
	"okrlens/internal/persistence"
)

// NewResultsCmd creates the results command for listing persisted evaluations
func NewResultsCmd() *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "results",
		Short: "List all persisted evaluation reports",
		Long: `Print every evaluation stored in MongoDB as a JSON array, the
same payload the dashboard endpoint serves.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResults(cmd, pretty)
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the JSON output")

	return cmd
}

func runResults(cmd *cobra.Command, pretty bool) error {
	ctx := cmd.Context()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	mongoStore, err := persistence.NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer func() {
		if err := mongoStore.Close(ctx); err != nil {
			logger.Error("Failed to close durable store", err)
		}
	}()

	results, err := mongoStore.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list evaluations: %w", err)
	}
	if results == nil {
		results = []persistence.StoredEvaluation{}
	}

	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(results)
}
