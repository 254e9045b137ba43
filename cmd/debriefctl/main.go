// Command debriefctl checks content documents and plays simulated games offline.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gokatarajesh/synergy-debrief/internal/logging"
)

var (
	logLevel string
	format   string
)

var rootCmd = &cobra.Command{
	Use:           "debriefctl",
	Short:         "Tools for synergy-debrief content and gameplay",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&format, "output", "o", "json", "output format (json or yaml)")
	rootCmd.AddCommand(validateCmd, simulateCmd)
}

func newLogger() zerolog.Logger {
	return logging.NewWithWriter(os.Stderr, "debriefctl", "cli", logLevel)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
