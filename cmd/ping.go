package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the configured model API is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		client, err := newClient(ctx)
		if err != nil {
			return err
		}

		cfg, err := client.GetConfig(ctx)
		if err != nil {
			return err
		}

		if !client.TestConnection(ctx) {
			return errors.New("connection test failed (run with -v for details)")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "connected to %s (model %s)\n", cfg.BaseURL, cfg.Model)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
