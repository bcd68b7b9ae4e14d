package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/c360studio/skillforge/catalog"
)

func newWatchCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch skill sources and rebuild the index on changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			logger := slog.Default()
			scanner := catalog.NewScanner(configuredSources(cfg),
				catalog.WithScannerLogger(logger))
			store := catalog.NewStore(indexPath(cfg))
			provider := catalog.NewProvider(nil)
			rebuilder := catalog.NewRebuilder(scanner, store, provider, logger)

			// Initial build so the watcher starts from a fresh snapshot.
			idx, err := rebuilder.Rebuild()
			if err != nil && !errors.Is(err, catalog.ErrNoSources) {
				return fmt.Errorf("initial index build: %w", err)
			}
			if idx != nil {
				fmt.Printf("Watching %d source(s), index at %s (%d skills)\n",
					len(scanner.Sources()), store.Path(), idx.TotalCount)
			}

			ctx, cancel := signalContext()
			defer cancel()

			watcher := catalog.NewWatcher(rebuilder, catalog.WithWatcherLogger(logger))
			return watcher.Run(ctx)
		},
	}
	return cmd
}
