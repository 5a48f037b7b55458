package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/llm-sidecar/internal/host"
	"github.com/ziadkadry99/llm-sidecar/internal/sidecar"
)

var callTimeout time.Duration

var callCmd = &cobra.Command{
	Use:   "call <func> [params-json]",
	Short: "Spawn a sidecar and issue one command to it",
	Long: `Starts this binary's serve command as a child process, sends one command over
its stdin and prints the response data. Supported functions: requestLLM, testConnection.

Example:
  llm-sidecar call requestLLM '{"messages":[{"role":"user","content":"Hello"}]}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var params any
		if len(args) == 2 {
			raw, err := parseParams(args[1])
			if err != nil {
				return err
			}
			params = raw
		}

		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("locating executable: %w", err)
		}
		childArgs := []string{"serve", "--config", cfgFile}
		if verbose {
			childArgs = append(childArgs, "--verbose")
		}

		proc := host.NewProcess(host.ProcessConfig{Path: exe, Args: childArgs}, logger)
		if err := proc.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := proc.Stop(); err != nil {
				logger.Warn("sidecar exited with error", "error", err)
			}
		}()

		if callTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, callTimeout)
			defer cancel()
		}

		data, err := proc.Call(ctx, sidecar.Func(args[0]), params)
		if err != nil {
			return err
		}

		var pretty bytes.Buffer
		if err := json.Indent(&pretty, data, "", "  "); err != nil {
			pretty.Reset()
			pretty.Write(data)
		}
		fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
		return nil
	},
}

func init() {
	callCmd.Flags().DurationVar(&callTimeout, "timeout", 2*time.Minute, "maximum time to wait for the response (0 for no limit)")
	rootCmd.AddCommand(callCmd)
}

// parseParams accepts only a JSON object, matching what the sidecar decodes
// command params into.
func parseParams(arg string) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(arg), &obj); err != nil || obj == nil {
		return nil, fmt.Errorf("params must be a JSON object")
	}
	return json.RawMessage(arg), nil
}
