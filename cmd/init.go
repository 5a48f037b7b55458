package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/llm-sidecar/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize sidecar configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose an API endpoint, model and key, and writes a .llm-sidecar.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
