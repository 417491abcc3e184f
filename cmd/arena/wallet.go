package main

import (
	"errors"

	"github.com/yourusername/trader-arena/internal/wallet"
)

var errNoKeypair = errors.New("no wallet keypair configured: set solana.keypair_path or ARENA_SOLANA_KEYPAIR_PATH")

// walletSession bundles the signer, chain client and balance poller of the
// configured keypair.
type walletSession struct {
	signer  *wallet.KeypairSigner
	chain   *wallet.RPCClient
	balance *wallet.BalanceSync
}

// openWallet loads the configured keypair and connects it. The balance is
// fetched before openWallet returns.
func openWallet() (*walletSession, error) {
	if cfg.Solana.KeypairPath == "" {
		return nil, errNoKeypair
	}

	signer, err := wallet.LoadKeypairSigner(cfg.Solana.KeypairPath)
	if err != nil {
		return nil, err
	}

	chain := wallet.NewRPCClient(cfg.Solana.RPCURL)
	bs := wallet.NewBalanceSync(chain, wallet.NewStore(), cfg.BalanceRefreshInterval(), log)
	bs.Connect(signer.PublicKey())

	return &walletSession{signer: signer, chain: chain, balance: bs}, nil
}

func (s *walletSession) Close() {
	s.balance.Disconnect()
	_ = s.chain.Close()
}
