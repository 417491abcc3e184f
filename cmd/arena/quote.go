package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/trader-arena/internal/betting"
	"github.com/yourusername/trader-arena/internal/models"
	"github.com/yourusername/trader-arena/internal/simulation"
)

func newQuoteCmd() *cobra.Command {
	var (
		side   string
		amount string
	)

	cmd := &cobra.Command{
		Use:   "quote <pool-id>",
		Short: "Preview the payout of a bet without placing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			choice, err := models.ParseTraderChoice(side)
			if err != nil {
				return err
			}

			backend := newBackend()
			defer backend.Close()

			pool, err := backend.Pool(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			// Quotes ignore the wallet; only the stake bounds apply.
			limits := betting.LimitsFor(pool)
			lamports, err := betting.ValidateAmount(amount, limits, limits.Max+betting.FeeBuffer)
			if err != nil {
				return err
			}

			local := betting.Preview(pool, choice, lamports)
			server, err := simulate(cmd.Context(), simulation.NewCoordinator(backend, cfg.SimulationDebounce(), log),
				simulation.Key{PoolID: pool.ID, Amount: lamports, Choice: choice})
			if err != nil {
				log.WithError(err).Warn("Simulation failed, showing local preview")
			}

			printQuote(pool, betting.Reconcile(local, server))
			return nil
		},
	}

	cmd.Flags().StringVarP(&side, "side", "s", "", "Trader to back: A or B")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Stake in SOL")
	_ = cmd.MarkFlagRequired("side")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

// simulate pushes key through the coordinator and waits for it to settle.
func simulate(ctx context.Context, coord *simulation.Coordinator, key simulation.Key) (*models.Simulation, error) {
	defer coord.Close()

	done := make(chan struct{}, 1)
	coord.OnChange(func(s simulation.State) {
		if s == simulation.StateSettled || s == simulation.StateFailed {
			select {
			case done <- struct{}{}:
			default:
			}
		}
	})
	coord.Update(key)

	select {
	case <-done:
	case <-ctx.Done():
		coord.Cancel()
		return nil, ctx.Err()
	case <-time.After(cfg.SimulationDebounce() + cfg.APITimeout()):
		coord.Cancel()
		return nil, fmt.Errorf("simulation did not settle")
	}

	snap := coord.Snapshot(key)
	return snap.Result, snap.Err
}

func printQuote(pool *models.Pool, q betting.Quote) {
	source := "local preview"
	if q.FromServer {
		source = "server simulation"
	}

	fmt.Printf("Pool #%d, %s (%s)\n", pool.PoolNumber, q.Choice, source)
	fmt.Printf("  Stake:            %s SOL\n", q.Amount.FormatSOL(4))
	fmt.Printf("  Current odds:     %s\n", betting.FormatOdds(q.CurrentOdds))
	fmt.Printf("  Potential payout: %s SOL\n", q.PotentialPayout.FormatSOL(4))
	if q.PlatformFee > 0 {
		fmt.Printf("  Platform fee:     %s SOL\n", q.PlatformFee.FormatSOL(4))
	}
	fmt.Printf("  Net payout:       %s SOL\n", q.NetPayout.FormatSOL(4))
}
