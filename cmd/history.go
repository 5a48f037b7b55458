package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/llm-sidecar/internal/journal"
	"github.com/ziadkadry99/llm-sidecar/internal/sidecar"
)

var (
	historyLimit  int
	historyFailed bool
	historyFunc   string
	historyPrune  time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent commands from the journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.Journal.Enabled {
			return fmt.Errorf("the journal is disabled; set journal.enabled in %s", cfgFile)
		}

		store, closeJournal, err := openJournal(cfg)
		defer closeJournal()
		if err != nil {
			return err
		}
		ctx := context.Background()

		if historyPrune > 0 {
			n, err := store.DeleteBefore(ctx, time.Now().Add(-historyPrune))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries older than %s\n", n, historyPrune)
			return nil
		}

		entries, err := store.Recent(ctx, journal.Filter{
			Func:       sidecar.Func(historyFunc),
			FailedOnly: historyFailed,
			Limit:      historyLimit,
		})
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No commands recorded.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tFUNC\tID\tDURATION\tRESULT")
		for _, e := range entries {
			fn := string(e.Func)
			if !e.Decoded {
				fn = "-"
			}
			result := "ok"
			if !e.Success {
				result = e.Error
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				e.CreatedAt.Local().Format(time.DateTime), fn, e.CommandID, e.Duration, result)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "only show failed commands")
	historyCmd.Flags().StringVar(&historyFunc, "func", "", "only show commands for this function")
	historyCmd.Flags().DurationVar(&historyPrune, "prune", 0, "delete entries older than this age instead of listing")
	rootCmd.AddCommand(historyCmd)
}
