// Package cli wires the opsbot commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opsbot/opsbot/internal/config"
)

var Version = "dev"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var envFile string
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "opsbot",
		Short:         "OpsBot: AI-powered system status dashboard",
		Long:          "opsbot shows simulated system health (CPU, memory, running/stopped) and answers natural-language questions about it through a language model.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %s not loaded: %v\n", envFile, err)
			}
			cfg, err := config.New()
			if err != nil {
				return err
			}
			a.cfg = cfg
			slog.SetDefault(newLogger(cfg.LogLevel, cfg.LogFormat))
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(a),
		newTelegramCmd(a),
		newMCPCmd(a),
		newStatusCmd(a),
		newAskCmd(a),
		newSimulateCmd(a),
		newReportCmd(a),
	)
	return rootCmd
}

// newLogger always writes to stderr; stdout belongs to command output and
// to the MCP stdio transport.
func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the opsbot version",
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
