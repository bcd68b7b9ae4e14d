package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/c360studio/skillforge/catalog"
	"github.com/c360studio/skillforge/config"
)

func newIndexCmd(flags *rootFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Scan skill sources and rebuild the catalog index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if output == "" {
				output = indexPath(cfg)
			}

			scanner := catalog.NewScanner(configuredSources(cfg),
				catalog.WithScannerLogger(slog.Default()))
			idx, err := scanner.Scan()
			if err != nil {
				return fmt.Errorf("scan sources: %w", err)
			}

			store := catalog.NewStore(output)
			if err := store.Save(idx); err != nil {
				return fmt.Errorf("save index: %w", err)
			}

			if flags.jsonOut {
				return json.NewEncoder(os.Stdout).Encode(idx)
			}
			fmt.Printf("Indexed %d skills from %d sources -> %s\n",
				idx.TotalCount, len(idx.Sources), output)
			for _, w := range idx.Warnings {
				fmt.Printf("  warning: %s\n", w)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Index file path (default: user cache dir)")
	return cmd
}

// indexPath resolves the index location from config, falling back to the
// per-user cache directory.
func indexPath(cfg *config.Config) string {
	if cfg.Catalog.IndexPath != "" {
		return cfg.Catalog.IndexPath
	}
	return catalog.DefaultIndexPath()
}

// configuredSources merges the default skill sources with any extra sources
// from configuration.
func configuredSources(cfg *config.Config) []catalog.Source {
	sources := catalog.DefaultSources()
	for _, sc := range cfg.Catalog.Sources {
		sources = append(sources, catalog.Source{
			Name:     sc.Name,
			Path:     sc.Path,
			Pattern:  sc.Pattern,
			Priority: sc.Priority,
		})
	}
	return sources
}
