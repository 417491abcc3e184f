package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/trader-arena/internal/models"
	"github.com/yourusername/trader-arena/internal/realtime"
	"github.com/yourusername/trader-arena/internal/submission"
	"github.com/yourusername/trader-arena/internal/wallet"
)

func newBetCmd() *cobra.Command {
	var (
		side   string
		amount string
	)

	cmd := &cobra.Command{
		Use:   "bet <pool-id>",
		Short: "Place a bet on one side of a pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			candidate := &submission.Candidate{Amount: amount}
			if side != "" {
				choice, err := models.ParseTraderChoice(side)
				if err != nil {
					return err
				}
				candidate.SetSide(choice)
			}

			session, err := openWallet()
			if err != nil {
				return err
			}
			defer session.Close()

			backend := newBackend()
			defer backend.Close()

			pool, err := backend.Pool(ctx, args[0])
			if err != nil {
				return err
			}

			notifier := realtime.NewNotifier(cfg.NotificationTTL())
			notifier.OnChange(func(n *realtime.Notification) {
				if n != nil {
					fmt.Println(n.Message)
				}
			})

			opts := []submission.Option{
				submission.WithOnPlaced(func(r submission.Receipt) {
					notifier.ShowFor(pool.ID, fmt.Sprintf("Bet placed! %s SOL on %s", r.Amount.FormatSOL(4), r.Choice), cfg.BetPlacedNotificationTTL())
				}),
			}

			repos, db, err := openHistory(ctx)
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
				opts = append(opts, submission.WithRecorder(repos.BetHistory))
			}

			flow := submission.NewFlow(backend.Client, backend.Views(), session.balance.Store(), log, opts...)
			receipt, err := flow.Submit(ctx, pool, candidate)
			if err != nil {
				return err
			}
			notifier.Dismiss()

			log.WithFields(logrus.Fields{
				"pool_id":   pool.ID,
				"reference": receipt.Reference,
			}).Debug("Bet submission complete")

			fmt.Printf("  Reference: %s\n", receipt.Reference)
			if receipt.Bet != nil && receipt.Bet.TransactionSignature != "" {
				fmt.Printf("  Explorer:  %s\n", wallet.TxExplorerURL(receipt.Bet.TransactionSignature, cfg.Solana.Network))
			}
			if receipt.Bet != nil && receipt.Bet.PotentialPayout > 0 {
				fmt.Printf("  Potential payout: %s SOL\n", receipt.Bet.PotentialPayout.FormatSOL(4))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&side, "side", "s", "", "Trader to back: A or B")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Stake in SOL")
	return cmd
}
