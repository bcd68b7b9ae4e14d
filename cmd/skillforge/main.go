// Package main provides the skillforge binary entry point.
// Skillforge routes free-form requests against a catalog of reusable skills
// and drives candidate skills through a unanimous evaluator review loop.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/skillforge/config"
)

const (
	Version = "0.1.0"
	appName = "skillforge"
)

// Process exit codes. Scripted callers branch on these.
const (
	exitInternal     = 1
	exitIndexMissing = 2
	exitEscalate     = 3
)

// exitError carries a specific process exit code up through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(exitInternal)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var xe *exitError
		if errors.As(err, &xe) {
			os.Exit(xe.code)
		}
		os.Exit(exitInternal)
	}
}

type rootFlags struct {
	logLevel string
	jsonOut  bool
}

func rootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Skill routing and consensus engine",
		Long: `Skillforge maintains an index of reusable skills, routes incoming
requests to reuse, improve, compose, or create, and reviews candidate
skills with a parallel evaluator panel that must reach unanimous
approval.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(flags.logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&flags.jsonOut, "json", false, "Emit machine-readable JSON output")

	cmd.AddCommand(
		newIndexCmd(flags),
		newTriageCmd(flags),
		newReviewCmd(flags),
		newValidateCmd(flags),
		newWatchCmd(flags),
		newFetchCmd(flags),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}

func configureLogging(logLevel string) {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadConfig loads the layered user/project configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.NewLoader(slog.Default()).Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
