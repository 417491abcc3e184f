package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/trader-arena/internal/metrics"
	"github.com/yourusername/trader-arena/internal/scheduler"
)

// DefaultBalanceInterval is how often the balance is re-read while connected.
const DefaultBalanceInterval = 30 * time.Second

const balanceFetchTimeout = 10 * time.Second

// BalanceSync keeps the Store's balance current while a wallet is connected.
type BalanceSync struct {
	chain    ChainClient
	store    *Store
	interval time.Duration
	logger   *logrus.Logger

	mu      sync.Mutex
	owner   solana.PublicKey
	refresh *scheduler.AutoRefresh
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewBalanceSync creates a sync that writes into store.
func NewBalanceSync(chain ChainClient, store *Store, interval time.Duration, logger *logrus.Logger) *BalanceSync {
	if interval <= 0 {
		interval = DefaultBalanceInterval
	}
	return &BalanceSync{
		chain:    chain,
		store:    store,
		interval: interval,
		logger:   logger,
	}
}

// Store returns the read-only wallet view.
func (b *BalanceSync) Store() Reader {
	return b.store
}

// Subscribe forwards to the underlying store.
func (b *BalanceSync) Subscribe(fn func(State)) {
	b.store.Subscribe(fn)
}

// Connect marks owner connected, fetches its balance immediately and polls
// from then on. Connecting a different wallet replaces the previous one.
func (b *BalanceSync) Connect(owner solana.PublicKey) {
	b.Disconnect()

	b.mu.Lock()
	b.owner = owner
	b.ctx, b.cancel = context.WithCancel(context.Background())
	b.refresh = scheduler.NewAutoRefresh(b.tick, b.interval, true, b.logger)
	refresh := b.refresh
	ctx := b.ctx
	b.mu.Unlock()

	b.store.setConnected(owner.String())
	b.logger.WithField("wallet", TruncateAddress(owner.String())).Info("Wallet connected")

	b.fetch(ctx)
	refresh.Start()
}

// Disconnect stops polling and clears the store.
func (b *BalanceSync) Disconnect() {
	b.mu.Lock()
	refresh := b.refresh
	cancel := b.cancel
	wasConnected := refresh != nil
	b.refresh = nil
	b.cancel = nil
	b.owner = solana.PublicKey{}
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if refresh != nil {
		refresh.Stop()
	}
	if wasConnected {
		b.store.disconnect()
		metrics.UpdateWalletBalance(0)
		b.logger.Info("Wallet disconnected")
	}
}

// Refresh fetches the balance now, outside the polling cadence.
func (b *BalanceSync) Refresh(ctx context.Context) error {
	b.mu.Lock()
	owner := b.owner
	b.mu.Unlock()

	if owner.IsZero() {
		return nil
	}
	return b.fetchFor(ctx, owner)
}

func (b *BalanceSync) tick() {
	b.mu.Lock()
	ctx := b.ctx
	b.mu.Unlock()

	if ctx != nil {
		b.fetch(ctx)
	}
}

// fetch logs failures; the next tick retries.
func (b *BalanceSync) fetch(ctx context.Context) {
	b.mu.Lock()
	owner := b.owner
	b.mu.Unlock()

	if owner.IsZero() {
		return
	}
	if err := b.fetchFor(ctx, owner); err != nil {
		b.logger.WithError(err).WithField("wallet", TruncateAddress(owner.String())).Warn("Failed to fetch wallet balance")
	}
}

func (b *BalanceSync) fetchFor(ctx context.Context, owner solana.PublicKey) error {
	ctx, cancel := context.WithTimeout(ctx, balanceFetchTimeout)
	defer cancel()

	balance, err := b.chain.GetBalance(ctx, owner)
	if err != nil {
		return err
	}

	b.mu.Lock()
	current := b.owner
	b.mu.Unlock()
	if !current.Equals(owner) {
		// wallet changed while the request was in flight
		return nil
	}

	b.store.setBalance(balance)
	metrics.UpdateWalletBalance(balance.Float64())
	b.logger.WithFields(logrus.Fields{
		"wallet":  TruncateAddress(owner.String()),
		"balance": balance.FormatSOL(4),
	}).Debug("Wallet balance updated")
	return nil
}
