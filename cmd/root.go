// Package cmd provides the CLI commands for the wellflow application.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Version info (set at build time via ldflags)
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"

	// Global flags
	configPath string
	dbPath     string
	jsonOutput bool
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wellflow",
	Short: "wellflow - daily planner with focus sessions and XP",
	Long: `wellflow plans your day as one-off and recurring tasks, runs focus
sessions with pomodoro or custom breaks, and keeps an XP ledger with a
daily goal and streak.

Run "wellflow" with no arguments to see today's plan.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeServices()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return cleanupServices()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDay(cmd, app.tasks.Today())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default: ~/.wellflow/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the database file (default: <data_dir>/wellflow.db)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("wellflow\nVersion: {{.Version}}\nBuilt: %s (%s)\n", BuildDate, GitCommit))

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(agendaCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(reorderCmd)
	rootCmd.AddCommand(focusCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(goalCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(configCmd)
}

// setupSignalHandler returns a context that is cancelled on interrupt signals.
func setupSignalHandler(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
