package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/llm-sidecar/internal/config"
	"github.com/ziadkadry99/llm-sidecar/internal/journal"
	"github.com/ziadkadry99/llm-sidecar/internal/llm"
	mcpserver "github.com/ziadkadry99/llm-sidecar/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing the model as tools",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio with chat_completion and test_connection tools, plus recent_commands when the journal is enabled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		client := llm.NewClient(config.NewSource(cfgFile)).WithLogger(logger)
		if err := client.InitClient(context.Background()); err != nil {
			logger.Warn("LLM client not initialized", "error", err)
		}

		var store *journal.Store
		if cfg.Journal.Enabled {
			s, closeJournal, err := openJournal(cfg)
			if err != nil {
				return err
			}
			defer closeJournal()
			store = s
		}

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		logger.Info("MCP server started on stdio", "model", cfg.LLM.Model)
		return mcpserver.NewServer(client, store).Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
