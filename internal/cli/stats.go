package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seguido/seguido/internal/stats"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show spend totals",
		Long: `Show total spend across the collection: all time, current
calendar year and current calendar month.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(opts, cmd)
		},
	}

	return cmd
}

func runStats(opts *StatsOptions, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts.RootOptions)

	adapter, cfg, cleanup, err := openAdapter(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()

	orders, err := adapter.LoadOrders(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "load orders", err)
	}

	t := stats.Compute(orders, time.Now())

	if opts.Format == "json" {
		return f.Success(map[string]string{
			"all_time": t.AllTime.StringFixed(2),
			"year":     t.Year.StringFixed(2),
			"month":    t.Month.StringFixed(2),
		})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "This month: %s\n", stats.FormatAmount(t.Month, cfg.Currency))
	fmt.Fprintf(&b, "This year:  %s\n", stats.FormatAmount(t.Year, cfg.Currency))
	fmt.Fprintf(&b, "All time:   %s", stats.FormatAmount(t.AllTime, cfg.Currency))
	return f.Success(b.String())
}
