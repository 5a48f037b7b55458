package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/llm-sidecar/internal/config"
	"github.com/ziadkadry99/llm-sidecar/internal/llm"
	"github.com/ziadkadry99/llm-sidecar/internal/sidecar"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sidecar command loop on stdin/stdout",
	Long: `Reads newline-delimited JSON commands from stdin and writes one JSON response
per command to stdout, in order. Exits cleanly when stdin closes or on SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		client := llm.NewClient(config.NewSource(cfgFile)).WithLogger(logger)
		if err := client.InitClient(ctx); err != nil {
			// Commands fail with a not-initialized error until the config is fixed.
			logger.Warn("LLM client not initialized", "error", err)
		}

		opts := []sidecar.Option{sidecar.WithLogger(logger)}
		if cfg.Journal.Enabled {
			store, closeJournal, err := openJournal(cfg)
			if err != nil {
				return err
			}
			defer closeJournal()
			opts = append(opts, sidecar.WithObserver(store.Observer(logger)))
		}

		logger.Info("sidecar started", "pid", os.Getpid(), "model", cfg.LLM.Model, "journal", cfg.Journal.Enabled)

		loop := sidecar.NewLoop(sidecar.NewDispatcher(client, logger), opts...)
		if err := loop.Run(ctx, os.Stdin, os.Stdout); err != nil {
			logger.Error("sidecar loop failed", "error", err)
			return err
		}

		logger.Info("sidecar stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
