package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bramblewood/historian/internal/cachestore"
	"github.com/bramblewood/historian/internal/domain"
	"github.com/bramblewood/historian/pkg/config"
)

// NewClearCacheCommand builds the "clear-cache" subcommand.
func NewClearCacheCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "clear-cache",
		Short: "Remove cached analysis results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return clearCache(cmd, configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Configuration file path (default: config.yaml in CWD or /etc/historian)")

	return cmd
}

func clearCache(cmd *cobra.Command, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store := cachestore.NewStore(cfg.Cache.Root)

	for _, ns := range []domain.Namespace{
		domain.NamespaceCommit,
		domain.NamespaceDaily,
		domain.NamespaceWeeklyNarrative,
		domain.NamespaceWeeklyChangelog,
	} {
		if err := store.Clear(ns); err != nil {
			return fmt.Errorf("clear %s cache: %w", ns, err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "cache cleared at %s\n", cfg.Cache.Root)

	return nil
}
