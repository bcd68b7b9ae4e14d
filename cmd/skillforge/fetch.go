package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/c360studio/skillforge/ingest"
)

func newFetchCmd(flags *rootFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Fetch a public web page as markdown reference material",
		Long: `Fetch downloads a public HTTPS page, extracts the readable article
content, and converts it to markdown for use as skill reference material.
Private addresses, localhost, and non-HTTPS URLs are rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			extractor := ingest.NewExtractor(cfg.Ingest.Timeout)
			page, err := extractor.Extract(ctx, args[0])
			if err != nil {
				return fmt.Errorf("fetch %s: %w", args[0], err)
			}

			if output != "" {
				if err := os.WriteFile(output, []byte(page.Markdown), 0644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				fmt.Printf("Saved %q (%d bytes) -> %s\n", page.Title, len(page.Markdown), output)
				return nil
			}

			if flags.jsonOut {
				return json.NewEncoder(os.Stdout).Encode(page)
			}
			fmt.Println(page.Markdown)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write markdown to a file instead of stdout")
	return cmd
}
