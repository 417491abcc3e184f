package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/trader-arena/internal/datasource"
)

func newTradersCmd() *cobra.Command {
	var (
		poolID string
		days   int
	)

	cmd := &cobra.Command{
		Use:   "traders [address-a address-b]",
		Short: "Compare the market performance of two traders",
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			timeframe, err := datasource.ParseTimeframe(days)
			if err != nil {
				return err
			}

			var a, b string
			switch {
			case poolID != "":
				backend := newBackend()
				defer backend.Close()
				pool, err := backend.Pool(ctx, poolID)
				if err != nil {
					return err
				}
				a, b = pool.TraderAAddress, pool.TraderBAddress
			case len(args) == 2:
				a, b = args[0], args[1]
			default:
				return fmt.Errorf("pass two trader addresses or --pool")
			}

			src := datasource.NewMarketData(cfg, log)
			cmp, err := datasource.Compare(ctx, src, a, b, timeframe)
			if err != nil {
				return err
			}
			printComparison(cmp, timeframe)
			return nil
		},
	}

	cmd.Flags().StringVarP(&poolID, "pool", "p", "", "Compare the two traders of this pool")
	cmd.Flags().IntVarP(&days, "days", "d", 30, "Timeframe in days: 7, 30 or 90")
	return cmd
}

func traderLabel(t *datasource.TraderData) string {
	profile := t.Profile
	if profile == nil {
		profile = datasource.UnknownProfile()
	}
	name := profile.Name
	if name == "" {
		name = profile.Pseudonym
	}
	return fmt.Sprintf("%s (%s)", name, datasource.ShortAddress(t.Address))
}

func printComparison(cmp *datasource.Comparison, timeframe datasource.Timeframe) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "\tA: %s\tB: %s\n", traderLabel(cmp.A), traderLabel(cmp.B))
	fmt.Fprintf(w, "Portfolio value\t$%.2f\t$%.2f\n", cmp.A.Metrics.PortfolioValue, cmp.B.Metrics.PortfolioValue)
	fmt.Fprintf(w, "Total P&L\t$%.2f (%.2f%%)\t$%.2f (%.2f%%)\n",
		cmp.A.Metrics.TotalPnl, cmp.A.Metrics.TotalPnlPercent, cmp.B.Metrics.TotalPnl, cmp.B.Metrics.TotalPnlPercent)
	fmt.Fprintf(w, "Win rate\t%.1f%%\t%.1f%%\n", cmp.A.Metrics.WinRate, cmp.B.Metrics.WinRate)
	fmt.Fprintf(w, "Active positions\t%d\t%d\n", cmp.A.Metrics.ActivePositions, cmp.B.Metrics.ActivePositions)
	fmt.Fprintf(w, "Avg position size\t$%.2f\t$%.2f\n", cmp.A.Metrics.AvgPositionSize, cmp.B.Metrics.AvgPositionSize)
	_ = w.Flush()

	if n := len(cmp.Series); n > 0 {
		last := cmp.Series[n-1]
		fmt.Printf("\n%dd growth: A %+.2f%%  B %+.2f%%  (%d points)\n", timeframe, last.APercent, last.BPercent, n)
	}
}
