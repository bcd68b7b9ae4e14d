package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/c360studio/skillforge/catalog"
	"github.com/c360studio/skillforge/consensus"
	"github.com/c360studio/skillforge/evaluator"
)

func newReviewCmd(flags *rootFlags) *cobra.Command {
	var withScript bool

	cmd := &cobra.Command{
		Use:   "review <skill file>",
		Short: "Run a candidate skill through the evaluator consensus loop",
		Long: `Review dispatches the candidate to the evaluator panel and iterates
until the panel is unanimous or the round budget is exhausted. The file is
re-read before each round, so the required fixes printed after a failed
round can be applied between rounds.

Exit codes: 0 unanimous approval, 3 escalated to a human.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			conn, err := nats.Connect(cfg.NATS.URL, nats.Name(appName))
			if err != nil {
				return fmt.Errorf("connect to NATS at %s: %w", cfg.NATS.URL, err)
			}
			defer conn.Close()

			panel, script := evaluator.Panel(conn)
			coord := consensus.NewCoordinator(panel, consensus.Config{
				ApprovalBar:       cfg.Consensus.ApprovalBar,
				MaxRounds:         cfg.Consensus.MaxRounds,
				CriticalOnlyRound: cfg.Consensus.CriticalOnlyRound,
				EvaluatorTimeout:  cfg.Consensus.EvaluatorTimeout,
			}, consensus.WithScriptEvaluator(script))

			path := args[0]
			for {
				candidate, err := readCandidate(path, withScript)
				if err != nil {
					return err
				}

				round, err := coord.EvaluateRound(ctx, candidate)
				if err != nil {
					return fmt.Errorf("consensus round: %w", err)
				}

				if round.Outcome == consensus.OutcomeUnanimous {
					if flags.jsonOut {
						return json.NewEncoder(os.Stdout).Encode(round)
					}
					fmt.Printf("Unanimous approval after %d round(s)\n", coord.RoundsUsed())
					return nil
				}

				if coord.Exhausted() {
					esc := coord.Escalate()
					if flags.jsonOut {
						_ = json.NewEncoder(os.Stdout).Encode(esc)
					} else {
						fmt.Printf("No consensus after %d rounds, escalating to a human\n", coord.RoundsUsed())
					}
					return &exitError{
						code: exitEscalate,
						err:  fmt.Errorf("consensus not reached after %d rounds", coord.RoundsUsed()),
					}
				}

				printRequiredFixes(coord, round)
				fmt.Print("Apply fixes, then press Enter for the next round (Ctrl-C to abort): ")
				if _, err := bufio.NewReader(os.Stdin).ReadString('\n'); err != nil {
					return &exitError{
						code: exitEscalate,
						err:  fmt.Errorf("review aborted after round %d", round.Number),
					}
				}
			}
		},
	}

	cmd.Flags().BoolVar(&withScript, "script", false, "Candidate carries an auxiliary script payload")
	return cmd
}

// readCandidate loads the skill file into an immutable candidate value.
func readCandidate(path string, withScript bool) (consensus.Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return consensus.Candidate{}, fmt.Errorf("read candidate: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return consensus.Candidate{
		ID:              catalog.Slugify(name),
		Name:            name,
		Content:         data,
		AuxiliaryScript: withScript,
	}, nil
}

func printRequiredFixes(coord *consensus.Coordinator, round *consensus.Round) {
	fixes := coord.RequiredFixes(round)
	fmt.Printf("Round %d: not unanimous, %d required fix(es):\n", round.Number, len(fixes))
	for _, is := range fixes {
		fmt.Printf("  [%s] %s", is.Severity, is.Description)
		if is.RequiredFix != "" {
			fmt.Printf(" (fix: %s)", is.RequiredFix)
		}
		fmt.Println()
	}
}
