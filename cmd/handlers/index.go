package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"okrlens/internal/config"
	"okrlens/internal/vectorindex"
)

// NewIndexCmd creates the similarity index management command
func NewIndexCmd() *cobra.Command {
	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the duplicate-detection similarity index",
		Long:  `Inspect and reset the on-disk embedding index used for near-duplicate detection.`,
	}

	indexCmd.AddCommand(newIndexStatsCmd())
	indexCmd.AddCommand(newIndexResetCmd())

	return indexCmd
}

func newIndexStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show similarity index statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			idx, err := vectorindex.Open(cfg.Index.Directory, nil)
			if err != nil {
				return fmt.Errorf("failed to open index: %w", err)
			}

			fmt.Printf("Index directory: %s\n", cfg.Index.Directory)
			fmt.Printf("Documents:       %d (including placeholder seed)\n", idx.Count())
			return nil
		},
	}
}

func newIndexResetCmd() *cobra.Command {
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the similarity index (forgets all seen content)",
		Long: `Remove the persisted index files and reinstall the placeholder
seed. Every previously evaluated article becomes unseen again.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm, _ := cmd.Flags().GetBool("confirm")
			if !confirm {
				return fmt.Errorf("refusing to reset without --confirm")
			}

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			idx, err := vectorindex.Open(cfg.Index.Directory, nil)
			if err != nil {
				return fmt.Errorf("failed to open index: %w", err)
			}
			if err := idx.Reset(); err != nil {
				return fmt.Errorf("failed to reset index: %w", err)
			}

			fmt.Println("Similarity index reset.")
			return nil
		},
	}

	resetCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
	return resetCmd
}
