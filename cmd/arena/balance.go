package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/trader-arena/internal/betting"
	"github.com/yourusername/trader-arena/internal/wallet"
)

func newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the configured wallet's SOL balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := openWallet()
			if err != nil {
				return err
			}
			defer session.Close()

			state := session.balance.Store().Snapshot()
			fmt.Printf("Wallet:    %s\n", state.PublicKey)
			fmt.Printf("Balance:   %s SOL\n", state.Balance.FormatSOL(4))
			fmt.Printf("Available: %s SOL (after fee buffer)\n", betting.AvailableBalance(state.Balance).FormatSOL(4))
			fmt.Printf("Explorer:  %s\n", wallet.AddressExplorerURL(state.PublicKey, cfg.Solana.Network))
			return nil
		},
	}
}
