// Package cli implements the tiermem CLI commands.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	formatFlag   string
	logLevelFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "tiermem",
	Short: "Tiered experiential memory engine",
	Long:  "tiermem replays scripted store/retrieve/consolidate sequences against an in-process tiered memory engine.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(newLogger(cmd.ErrOrStderr()))
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "warn", "Log level: debug, info, warn or error")
}

func newLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(logLevelFlag) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
