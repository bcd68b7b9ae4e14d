package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/skillforge/catalog"
	"github.com/c360studio/skillforge/orchestrate"
	"github.com/c360studio/skillforge/triage"
)

func newTriageCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "triage <request text>",
		Short: "Classify a request and route it against the skill index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store := catalog.NewStore(indexPath(cfg))
			idx, err := store.Load()
			if err != nil {
				if errors.Is(err, catalog.ErrIndexNotFound) {
					return &exitError{
						code: exitIndexMissing,
						err:  fmt.Errorf("no index at %s, run 'skillforge index' first", store.Path()),
					}
				}
				return fmt.Errorf("load index: %w", err)
			}

			engine := orchestrate.NewEngine(catalog.NewProvider(idx), nil, nil,
				orchestrate.WithPolicy(triage.Policy{
					HighConfidence:     cfg.Triage.HighConfidence,
					ModerateConfidence: cfg.Triage.ModerateConfidence,
				}),
				orchestrate.WithConfidenceFloor(cfg.Triage.ConfidenceFloor))

			req, decision := engine.Triage(strings.Join(args, " "))

			if flags.jsonOut {
				return json.NewEncoder(os.Stdout).Encode(struct {
					Request  triage.Request  `json:"request"`
					Decision triage.Decision `json:"decision"`
				}{req, decision})
			}

			fmt.Printf("Intent:   %s\n", req.Intent)
			fmt.Printf("Action:   %s\n", decision.Action)
			fmt.Printf("Reason:   %s\n", decision.Reason)
			for _, m := range decision.Matches {
				fmt.Printf("  match %-30s confidence %.2f\n", m.DescriptorID, m.Confidence)
			}
			for i, m := range decision.Chain {
				fmt.Printf("  chain %d: %s (%.2f)\n", i+1, m.DescriptorID, m.Confidence)
			}
			return nil
		},
	}
	return cmd
}
