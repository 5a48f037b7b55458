package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/llm-sidecar/internal/llm"
)

var (
	chatSystem      string
	chatModel       string
	chatTemperature float64
	chatMaxTokens   int
	chatStream      bool
)

var chatCmd = &cobra.Command{
	Use:   "chat <prompt>",
	Short: "Send one prompt straight to the model",
	Long:  `Sends a prompt through the LLM client without the sidecar protocol. Useful for checking a configuration.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		client, err := newClient(ctx)
		if err != nil {
			return err
		}

		req := llm.Request{Model: chatModel}
		if chatSystem != "" {
			req.Messages = append(req.Messages, llm.Message{Role: llm.RoleSystem, Content: chatSystem})
		}
		req.Messages = append(req.Messages, llm.Message{Role: llm.RoleUser, Content: strings.Join(args, " ")})
		if cmd.Flags().Changed("temperature") {
			req.Temperature = &chatTemperature
		}
		if cmd.Flags().Changed("max-tokens") {
			req.MaxTokens = &chatMaxTokens
		}
		if err := req.Validate(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if chatStream {
			stream, err := client.ChatCompletionStream(ctx, req)
			if err != nil {
				return err
			}
			defer stream.Close()

			for stream.Next() {
				fmt.Fprint(out, stream.Text())
			}
			fmt.Fprintln(out)
			return stream.Err()
		}

		resp, err := client.ChatCompletion(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, resp.Choices[0].Message.Content)

		if verbose && resp.Usage != nil {
			logger.Debug("usage",
				"input_tokens", deref(resp.Usage.InputTokens),
				"output_tokens", deref(resp.Usage.OutputTokens),
				"total_tokens", deref(resp.Usage.TotalTokens),
			)
		}
		return nil
	},
}

func deref(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

func init() {
	chatCmd.Flags().StringVar(&chatSystem, "system", "", "system message")
	chatCmd.Flags().StringVar(&chatModel, "model", "", "model override")
	chatCmd.Flags().Float64Var(&chatTemperature, "temperature", llm.DefaultTemperature, "sampling temperature")
	chatCmd.Flags().IntVar(&chatMaxTokens, "max-tokens", llm.DefaultMaxTokens, "maximum tokens to generate")
	chatCmd.Flags().BoolVar(&chatStream, "stream", false, "print fragments as they arrive")
	rootCmd.AddCommand(chatCmd)
}
