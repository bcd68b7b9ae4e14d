package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/c360studio/skillforge/validate"
)

func newValidateCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <skill file>...",
		Short: "Check skill documents for structural problems",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make(map[string]validate.Result, len(args))
			failed := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				res := validate.Document(string(data))
				results[path] = res
				if !res.Valid {
					failed++
				}
			}

			if flags.jsonOut {
				if err := json.NewEncoder(os.Stdout).Encode(results); err != nil {
					return err
				}
			} else {
				for _, path := range args {
					res := results[path]
					if res.Valid {
						fmt.Printf("%s: ok (%d warning(s))\n", path, len(res.Warnings))
					} else {
						fmt.Printf("%s: invalid\n", path)
					}
					for _, e := range res.Errors {
						fmt.Printf("  error: %s\n", e)
					}
					for _, w := range res.Warnings {
						fmt.Printf("  warning: %s\n", w)
					}
				}
			}

			if failed > 0 {
				return &exitError{
					code: exitInternal,
					err:  fmt.Errorf("%d of %d document(s) failed validation", failed, len(args)),
				}
			}
			return nil
		},
	}
	return cmd
}
