// Package submission places a candidate bet against the backend.
package submission

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/trader-arena/internal/arena"
	"github.com/yourusername/trader-arena/internal/betting"
	"github.com/yourusername/trader-arena/internal/cache"
	"github.com/yourusername/trader-arena/internal/logger"
	"github.com/yourusername/trader-arena/internal/metrics"
	"github.com/yourusername/trader-arena/internal/models"
	"github.com/yourusername/trader-arena/internal/wallet"
)

// Precondition failures. None of them reach the network.
var (
	ErrNoSide             = errors.New("no side selected")
	ErrNoAmount           = errors.New("no amount entered")
	ErrBettingClosed      = errors.New("betting is closed for this pool")
	ErrSubmissionInFlight = errors.New("a bet submission is already in progress")
)

// PreconditionError reports why a candidate was not submitted.
type PreconditionError struct {
	Reason error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("bet not submitted: %v", e.Reason)
}

func (e *PreconditionError) Unwrap() error {
	return e.Reason
}

// Candidate is the bet being composed. It is cleared once the bet is placed.
type Candidate struct {
	Choice *models.TraderChoice
	Amount string
}

// SetSide selects a side.
func (c *Candidate) SetSide(choice models.TraderChoice) {
	c.Choice = &choice
}

// Clear drops the selected side and amount.
func (c *Candidate) Clear() {
	c.Choice = nil
	c.Amount = ""
}

// Empty reports whether nothing has been entered.
func (c *Candidate) Empty() bool {
	return c.Choice == nil && c.Amount == ""
}

// Receipt describes a placed bet.
type Receipt struct {
	Choice    models.TraderChoice
	Amount    models.Lamports
	Reference string
	Bet       *models.Bet
}

// Placer commits bets. Satisfied by *arena.Client.
type Placer interface {
	PlaceBet(ctx context.Context, req models.PlaceBetRequest) (*models.Bet, error)
}

// BetRecorder mirrors placed bets somewhere durable.
type BetRecorder interface {
	Record(ctx context.Context, bet *models.Bet) error
}

// Flow runs one submission at a time.
type Flow struct {
	placer   Placer
	views    *cache.QueryCache
	wallet   wallet.Reader
	recorder BetRecorder
	logger   *logrus.Logger
	audit    *logger.AuditLogger
	onPlaced func(Receipt)
	now      func() time.Time

	mu       sync.Mutex
	inFlight bool
}

// Option configures a Flow.
type Option func(*Flow)

// WithRecorder mirrors every placed bet through r.
func WithRecorder(r BetRecorder) Option {
	return func(f *Flow) { f.recorder = r }
}

// WithOnPlaced registers a hook called with each receipt.
func WithOnPlaced(fn func(Receipt)) Option {
	return func(f *Flow) { f.onPlaced = fn }
}

// WithClock overrides the time source used for the betting window check.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) { f.now = now }
}

// NewFlow creates a submission flow.
func NewFlow(placer Placer, views *cache.QueryCache, w wallet.Reader, log *logrus.Logger, opts ...Option) *Flow {
	f := &Flow{
		placer: placer,
		views:  views,
		wallet: w,
		logger: log,
		audit:  logger.NewAuditLogger(log),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// InFlight reports whether a submission is outstanding.
func (f *Flow) InFlight() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inFlight
}

// Submit validates candidate against pool and the wallet, then places the bet
// exactly once. On success candidate is cleared; on failure it is left as is.
func (f *Flow) Submit(ctx context.Context, pool *models.Pool, candidate *Candidate) (*Receipt, error) {
	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	f.inFlight = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight = false
		f.mu.Unlock()
	}()

	if pool == nil {
		return nil, &PreconditionError{Reason: models.ErrNotFound}
	}

	choice, amount, err := f.check(pool, candidate)
	if err != nil {
		metrics.RecordBetSubmissionFailure("precondition")
		f.logger.WithError(err).WithField("pool_id", pool.ID).Debug("Bet preconditions not met")
		return nil, err
	}

	requestID := uuid.New().String()
	walletAddr := f.wallet.PublicKey()
	f.audit.LogBetSubmission(requestID, pool.ID, walletAddr, choice.Side(), uint64(amount))

	start := time.Now()
	bet, err := f.placer.PlaceBet(ctx, models.PlaceBetRequest{
		PoolID:       pool.ID,
		Amount:       amount,
		TraderChoice: choice,
	})
	if err != nil {
		metrics.RecordBetSubmissionFailure(failureReason(err))
		f.audit.LogBetRejection(requestID, pool.ID, choice.Side(), uint64(amount), err)
		f.logger.WithError(err).WithFields(logrus.Fields{
			"pool_id": pool.ID,
			"reason":  arena.Reason(err),
			"side":    choice.Side(),
			"amount":  amount.FormatSOL(4),
		}).Warn("Bet placement failed")
		return nil, err
	}
	metrics.RecordBetPlaced(time.Since(start).Seconds())

	receipt := Receipt{
		Choice:    choice,
		Amount:    amount,
		Reference: reference(bet),
		Bet:       bet,
	}
	f.audit.LogBetPlacement(requestID, bet.ID, pool.ID, choice.Side(), uint64(amount), bet.Odds, receipt.Reference, f.now())

	candidate.Clear()
	f.invalidate(pool.ID, walletAddr)
	f.record(ctx, bet)

	if f.onPlaced != nil {
		f.onPlaced(receipt)
	}
	return &receipt, nil
}

func (f *Flow) check(pool *models.Pool, candidate *Candidate) (models.TraderChoice, models.Lamports, error) {
	if candidate == nil || candidate.Choice == nil {
		return 0, 0, &PreconditionError{Reason: ErrNoSide}
	}
	if candidate.Amount == "" {
		return 0, 0, &PreconditionError{Reason: ErrNoAmount}
	}
	if !f.wallet.Connected() {
		return 0, 0, &PreconditionError{Reason: models.ErrWalletNotConnected}
	}

	amount, err := betting.ValidateAmount(candidate.Amount, betting.LimitsFor(pool), f.wallet.Balance())
	if err != nil {
		return 0, 0, &PreconditionError{Reason: err}
	}

	if !betting.BettingAllowed(pool, f.now()) {
		return 0, 0, &PreconditionError{Reason: ErrBettingClosed}
	}
	return *candidate.Choice, amount, nil
}

// invalidate drops every view the new bet changes.
func (f *Flow) invalidate(poolID, walletAddr string) {
	if f.views == nil {
		return
	}
	keys := []string{
		cache.PoolBetsKey(poolID),
		cache.PoolKey(poolID),
		cache.PoolsKey,
		cache.ActivePoolsKey,
	}
	if walletAddr != "" {
		keys = append(keys, cache.UserBetsKey(walletAddr))
	}
	f.views.Invalidate(keys...)
}

func (f *Flow) record(ctx context.Context, bet *models.Bet) {
	if f.recorder == nil {
		return
	}
	if err := f.recorder.Record(ctx, bet); err != nil {
		f.logger.WithError(err).WithField("bet_id", bet.ID).Warn("Failed to record bet history")
	}
}

// failureReason buckets placement errors into a bounded metric label.
func failureReason(err error) string {
	var (
		funds    *arena.InsufficientFundsError
		closed   *arena.BettingClosedError
		notFound *arena.PoolNotFoundError
		apiErr   *arena.APIError
	)
	switch {
	case errors.As(err, &funds):
		return "insufficient_funds"
	case errors.As(err, &closed):
		return "betting_closed"
	case errors.As(err, &notFound):
		return "pool_not_found"
	case errors.As(err, &apiErr):
		return "rejected"
	default:
		return "transport"
	}
}

func reference(bet *models.Bet) string {
	if bet.TransactionSignature != "" {
		return bet.TransactionSignature
	}
	return bet.ID
}
