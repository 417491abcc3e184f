package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/trader-arena/internal/models"
	"github.com/yourusername/trader-arena/internal/wallet"
)

func newBetsCmd() *cobra.Command {
	var (
		walletAddr string
		poolID     string
		history    bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "bets",
		Short: "List bets placed by a wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			owner, err := resolveWallet(walletAddr)
			if err != nil {
				return err
			}

			if history {
				repos, db, err := openHistory(ctx)
				if err != nil {
					return err
				}
				if db == nil {
					return errors.New("bet history requires database.enabled")
				}
				defer db.Close()

				bets, err := repos.BetHistory.ListByWallet(ctx, owner, limit)
				if err != nil {
					return err
				}
				if poolID != "" {
					bets = models.BetsForPool(bets, poolID)
				}
				printBets(bets)
				return nil
			}

			backend := newBackend()
			defer backend.Close()

			if poolID != "" {
				bets, staked, err := backend.UserBetsForPool(ctx, owner, poolID)
				if err != nil {
					return err
				}
				printBets(bets)
				fmt.Printf("Total staked in pool: %s SOL\n", staked.FormatSOL(4))
				return nil
			}

			bets, err := backend.UserBets(ctx, owner)
			if err != nil {
				return err
			}
			printBets(bets)
			return nil
		},
	}

	cmd.Flags().StringVarP(&walletAddr, "wallet", "w", "", "Wallet address (defaults to the configured keypair)")
	cmd.Flags().StringVarP(&poolID, "pool", "p", "", "Only show bets on this pool")
	cmd.Flags().BoolVar(&history, "history", false, "Read from the local bet history mirror")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum bets read from history")
	return cmd
}

// resolveWallet returns addr if set, otherwise the configured keypair's
// public key.
func resolveWallet(addr string) (string, error) {
	if addr != "" {
		pk, err := wallet.ParseAddress(addr)
		if err != nil {
			return "", err
		}
		return pk.String(), nil
	}
	if cfg.Solana.KeypairPath == "" {
		return "", errNoKeypair
	}
	signer, err := wallet.LoadKeypairSigner(cfg.Solana.KeypairPath)
	if err != nil {
		return "", err
	}
	return signer.PublicKey().String(), nil
}

func printBets(bets []*models.Bet) {
	if len(bets) == 0 {
		fmt.Println("No bets found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPOOL\tSIDE\tAMOUNT (SOL)\tODDS\tSTATUS\tP/L (SOL)\tPLACED")
	for _, b := range bets {
		pl := "-"
		if b.IsSettled() {
			pl = formatSignedLamports(b.ProfitLoss())
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fx\t%s\t%s\t%s\n",
			b.ID,
			b.PoolID,
			b.TraderChoice.Side(),
			b.Amount.FormatSOL(4),
			b.Odds,
			b.Status,
			pl,
			b.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

func formatSignedLamports(v int64) string {
	if v < 0 {
		return "-" + models.Lamports(-v).FormatSOL(4)
	}
	return "+" + models.Lamports(v).FormatSOL(4)
}
