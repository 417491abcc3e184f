package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/trader-arena/internal/betting"
	"github.com/yourusername/trader-arena/internal/datasource"
	"github.com/yourusername/trader-arena/internal/models"
)

func newPoolsCmd() *cobra.Command {
	var active bool

	cmd := &cobra.Command{
		Use:   "pools [pool-id]",
		Short: "List pools or show one pool",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend := newBackend()
			defer backend.Close()

			if len(args) == 1 {
				pool, err := backend.Pool(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printPoolDetail(pool, time.Now())
				return nil
			}

			var (
				pools []*models.Pool
				err   error
			)
			if active {
				pools, err = backend.ActivePools(cmd.Context())
			} else {
				pools, err = backend.Pools(cmd.Context())
			}
			if err != nil {
				return err
			}
			printPools(pools, time.Now())
			return nil
		},
	}

	cmd.Flags().BoolVar(&active, "active", false, "Only list pools open for betting")
	return cmd
}

func printPools(pools []*models.Pool, now time.Time) {
	if len(pools) == 0 {
		fmt.Println("No pools found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POOL\tID\tSTATUS\tTRADER A\tTRADER B\tTOTAL (SOL)\tA/B\tCLOSES IN")
	for _, p := range pools {
		view := betting.PoolView(p)
		fmt.Fprintf(w, "#%d\t%s\t%s\t%s\t%s\t%s\t%.0f%%/%.0f%%\t%s\n",
			p.PoolNumber,
			p.ID,
			p.Status,
			datasource.ShortAddress(p.TraderAAddress),
			datasource.ShortAddress(p.TraderBAddress),
			p.Total().FormatSOL(2),
			view.RatioA,
			view.RatioB,
			betting.FormatTimeRemaining(betting.TimeUntilClose(p, now)),
		)
	}
	_ = w.Flush()
}

func printPoolDetail(p *models.Pool, now time.Time) {
	view := betting.PoolView(p)

	fmt.Printf("Pool #%d (%s)\n", p.PoolNumber, p.ID)
	fmt.Printf("  Status:      %s\n", p.Status)
	fmt.Printf("  Total:       %s SOL\n", p.Total().FormatSOL(4))
	fmt.Printf("  Trader A:    %s  %s SOL  %.1f%%  odds %s\n",
		p.TraderAAddress, p.PoolATotal.FormatSOL(4), view.RatioA, betting.FormatOdds(view.OddsA))
	fmt.Printf("  Trader B:    %s  %s SOL  %.1f%%  odds %s\n",
		p.TraderBAddress, p.PoolBTotal.FormatSOL(4), view.RatioB, betting.FormatOdds(view.OddsB))
	fmt.Printf("  Bet limits:  %s - %s SOL\n", p.MinBet().FormatSOL(2), p.MaxBet().FormatSOL(2))

	if betting.BettingAllowed(p, now) {
		fmt.Printf("  Closes in:   %s\n", betting.FormatTimeRemaining(betting.TimeUntilClose(p, now)))
	} else {
		fmt.Println("  Betting is closed")
	}
	if p.WinningChoice != nil {
		fmt.Printf("  Winner:      %s\n", p.WinningChoice)
	}
}
