package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"okrlens/internal/config"
	"okrlens/internal/logger"
	"okrlens/internal/store"
)

// NewCacheCmd creates the article cache management command
func NewCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the article cache",
		Long:  `Inspect and clear the SQLite cache of fetched articles.`,
	}

	cacheCmd.AddCommand(newCacheStatsCmd())
	cacheCmd.AddCommand(newCacheClearCmd())

	return cacheCmd
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics and storage information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCacheStore(func(s *store.Store) error {
				count, size, err := s.Stats()
				if err != nil {
					return fmt.Errorf("failed to get cache statistics: %w", err)
				}
				fmt.Printf("Cached articles: %d\n", count)
				fmt.Printf("Database size:   %d bytes\n", size)
				return nil
			})
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the cache (removes all cached articles)",
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm, _ := cmd.Flags().GetBool("confirm")
			if !confirm {
				return fmt.Errorf("refusing to clear without --confirm")
			}
			return withCacheStore(func(s *store.Store) error {
				if err := s.Clear(); err != nil {
					return fmt.Errorf("failed to clear cache: %w", err)
				}
				fmt.Println("Article cache cleared.")
				return nil
			})
		},
	}

	clearCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
	return clearCmd
}

func withCacheStore(fn func(*store.Store) error) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cacheStore, err := store.NewStore(cfg.Cache.Directory)
	if err != nil {
		return fmt.Errorf("failed to open cache store: %w", err)
	}
	defer func() {
		if err := cacheStore.Close(); err != nil {
			logger.Error("Failed to close cache store", err)
		}
	}()

	return fn(cacheStore)
}
