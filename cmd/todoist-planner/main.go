package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger *zap.Logger
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "todoist-planner",
	Short: "Turn free-form requests into Todoist task plans",
	Long: `todoist-planner sends a natural-language request to an AI model,
validates the returned JSON plan, resolves projects, labels, and due
dates against your Todoist account, and (on --apply) creates the tasks.

Configuration lives in ~/.config/todoist-planner/config.json; the
TODOIST_API_TOKEN, PLANNER_AI_URL, PLANNER_AI_KEY, PLANNER_AI_MODEL,
and PLANNER_TIMEZONE environment variables override it.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
