package main

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/yourusername/trader-arena/internal/betting"
	"github.com/yourusername/trader-arena/internal/wallet"
)

func newTransferCmd() *cobra.Command {
	var (
		amount string
		check  string
	)

	cmd := &cobra.Command{
		Use:   "transfer [recipient]",
		Short: "Send SOL from the configured wallet, or check a signature",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			session, err := openWallet()
			if err != nil {
				return err
			}
			defer session.Close()

			runner := wallet.NewTransactionRunner(session.chain, session.signer, cfg.ConfirmTimeout(), cfg.ConfirmPollInterval(), log)

			if check != "" {
				sig, err := solana.SignatureFromBase58(check)
				if err != nil {
					return fmt.Errorf("invalid signature: %w", err)
				}
				ok, err := runner.IsConfirmed(ctx, sig)
				if err != nil {
					return err
				}
				fmt.Printf("%s confirmed: %t\n", wallet.TruncateAddress(check), ok)
				return nil
			}

			if len(args) != 1 {
				return fmt.Errorf("recipient address is required")
			}
			to, err := wallet.ParseAddress(args[0])
			if err != nil {
				return err
			}

			lamports, err := betting.ValidateAmount(amount, betting.DefaultLimits(), session.balance.Store().Balance())
			if err != nil {
				return err
			}

			runner.OnStatusChange(func(s wallet.TxStatus) {
				fmt.Printf("  %s\n", s)
			})

			sig, err := runner.Run(ctx, wallet.TransferInstruction(session.signer.PublicKey(), to, lamports))
			if err != nil {
				return err
			}

			fmt.Printf("Sent %s SOL to %s\n", lamports.FormatSOL(4), wallet.TruncateAddress(to.String()))
			fmt.Printf("  Explorer: %s\n", wallet.TxExplorerURL(sig.String(), cfg.Solana.Network))

			if err := session.balance.Refresh(ctx); err != nil {
				log.WithError(err).Warn("Failed to refresh balance")
			}
			fmt.Printf("  Balance:  %s SOL\n", session.balance.Store().Balance().FormatSOL(4))
			return nil
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount in SOL")
	cmd.Flags().StringVar(&check, "check", "", "Report whether this signature is confirmed instead of sending")
	return cmd
}
