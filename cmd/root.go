package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/llm-sidecar/internal/config"
)

var (
	cfgFile string
	verbose bool
	logger  = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "llm-sidecar",
	Short: "Line-delimited JSON sidecar for OpenAI-compatible chat completions",
	Long: `llm-sidecar lets a host application delegate text generation to a child
process. The host writes one JSON command per line to the sidecar's stdin and
reads one JSON response per line from its stdout. The sidecar talks to any
OpenAI-compatible chat completion API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// setupLogging installs the process-wide logger. Logs always go to stderr
// because stdout carries protocol traffic. A broken config file falls back
// to default log settings so that commands can still report it.
func setupLogging() error {
	logCfg := config.DefaultConfig().Log
	if cfg, err := config.Load(cfgFile); err == nil {
		logCfg = cfg.Log
	}

	level, err := logCfg.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch logCfg.Format {
	case config.LogFormatJSON:
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger = slog.New(handler)
	slog.SetDefault(logger)
	return nil
}
