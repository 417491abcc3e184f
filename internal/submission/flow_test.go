package submission

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/trader-arena/internal/arena"
	"github.com/yourusername/trader-arena/internal/betting"
	"github.com/yourusername/trader-arena/internal/cache"
	"github.com/yourusername/trader-arena/internal/logger"
	"github.com/yourusername/trader-arena/internal/models"
	"github.com/yourusername/trader-arena/internal/wallet"
)

const testWallet = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"

type mockPlacer struct {
	mock.Mock
}

func (m *mockPlacer) PlaceBet(ctx context.Context, req models.PlaceBetRequest) (*models.Bet, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(ctx context.Context, bet *models.Bet) error {
	return m.Called(ctx, bet).Error(0)
}

type fakeWallet struct {
	connected bool
	balance   models.Lamports
}

func (w fakeWallet) Snapshot() wallet.State {
	return wallet.State{Connected: w.connected, PublicKey: w.PublicKey(), Balance: w.balance}
}
func (w fakeWallet) Connected() bool { return w.connected }
func (w fakeWallet) PublicKey() string {
	if !w.connected {
		return ""
	}
	return testWallet
}
func (w fakeWallet) Balance() models.Lamports { return w.balance }

var fixedNow = time.Unix(1_700_000_000, 0)

func activePool() *models.Pool {
	closes := fixedNow.Add(time.Hour).Unix()
	return &models.Pool{
		ID:              "pool-1",
		PoolNumber:      7,
		Status:          models.PoolStatusActive,
		PoolATotal:      3 * models.LamportsPerSOL,
		PoolBTotal:      1 * models.LamportsPerSOL,
		BettingClosesAt: &closes,
	}
}

func candidate(choice models.TraderChoice, amount string) *Candidate {
	c := &Candidate{Amount: amount}
	c.SetSide(choice)
	return c
}

func newFlow(p Placer, views *cache.QueryCache, w wallet.Reader, opts ...Option) *Flow {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewFlow(p, views, w, logger.Discard(), opts...)
}

func TestSubmitSuccess(t *testing.T) {
	placer := &mockPlacer{}
	want := models.PlaceBetRequest{PoolID: "pool-1", Amount: 1_234_567_891, TraderChoice: models.TraderB}
	bet := &models.Bet{ID: "bet-9", PoolID: "pool-1", Amount: want.Amount, Odds: 4, TransactionSignature: "5sig"}
	placer.On("PlaceBet", mock.Anything, want).Return(bet, nil).Once()

	recorder := &mockRecorder{}
	recorder.On("Record", mock.Anything, bet).Return(nil).Once()

	views := cache.NewQueryCache(time.Minute)
	for _, k := range []string{cache.PoolBetsKey("pool-1"), cache.PoolKey("pool-1"), cache.PoolsKey,
		cache.ActivePoolsKey, cache.UserBetsKey(testWallet), cache.PoolKey("pool-2")} {
		views.Set(k, true)
	}

	var hooked *Receipt
	flow := newFlow(placer, views, fakeWallet{connected: true, balance: 5 * models.LamportsPerSOL},
		WithRecorder(recorder), WithOnPlaced(func(r Receipt) { hooked = &r }))

	c := candidate(models.TraderB, "1.2345678919")
	receipt, err := flow.Submit(context.Background(), activePool(), c)
	require.NoError(t, err)

	assert.Equal(t, models.TraderB, receipt.Choice)
	assert.Equal(t, models.Lamports(1_234_567_891), receipt.Amount, "amount is floored to lamports")
	assert.Equal(t, "5sig", receipt.Reference)
	assert.Same(t, bet, receipt.Bet)
	require.NotNil(t, hooked)
	assert.Equal(t, *receipt, *hooked)

	assert.True(t, c.Empty(), "candidate cleared after success")
	assert.Equal(t, 1, views.ItemCount(), "only the unrelated pool stays cached")
	_, ok := views.Get(cache.PoolKey("pool-2"))
	assert.True(t, ok)

	placer.AssertExpectations(t)
	recorder.AssertExpectations(t)
}

func TestSubmitReferenceFallsBackToBetID(t *testing.T) {
	placer := &mockPlacer{}
	placer.On("PlaceBet", mock.Anything, mock.Anything).Return(&models.Bet{ID: "bet-1"}, nil)

	flow := newFlow(placer, nil, fakeWallet{connected: true, balance: models.LamportsPerSOL})
	receipt, err := flow.Submit(context.Background(), activePool(), candidate(models.TraderA, "0.5"))
	require.NoError(t, err)
	assert.Equal(t, "bet-1", receipt.Reference)
}

func TestSubmitPreconditions(t *testing.T) {
	closed := activePool()
	closed.Status = models.PoolStatusLocked

	expired := activePool()
	past := fixedNow.Add(-time.Second).Unix()
	expired.BettingClosesAt = &past

	funded := fakeWallet{connected: true, balance: 10 * models.LamportsPerSOL}

	tests := []struct {
		name      string
		pool      *models.Pool
		candidate *Candidate
		wallet    fakeWallet
		wantErr   error
	}{
		{name: "no pool", pool: nil, candidate: candidate(models.TraderA, "1"), wallet: funded, wantErr: models.ErrNotFound},
		{name: "no side", pool: activePool(), candidate: &Candidate{Amount: "1"}, wallet: funded, wantErr: ErrNoSide},
		{name: "nil candidate", pool: activePool(), candidate: nil, wallet: funded, wantErr: ErrNoSide},
		{name: "no amount", pool: activePool(), candidate: candidate(models.TraderA, ""), wallet: funded, wantErr: ErrNoAmount},
		{name: "wallet disconnected", pool: activePool(), candidate: candidate(models.TraderA, "1"), wallet: fakeWallet{}, wantErr: models.ErrWalletNotConnected},
		{name: "below minimum", pool: activePool(), candidate: candidate(models.TraderA, "0.001"), wallet: funded, wantErr: betting.ErrBelowMinimum},
		{name: "fee not covered", pool: activePool(), candidate: candidate(models.TraderA, "1"), wallet: fakeWallet{connected: true, balance: models.LamportsPerSOL}, wantErr: betting.ErrInsufficientBalance},
		{name: "pool locked", pool: closed, candidate: candidate(models.TraderA, "1"), wallet: funded, wantErr: ErrBettingClosed},
		{name: "window elapsed", pool: expired, candidate: candidate(models.TraderA, "1"), wallet: funded, wantErr: ErrBettingClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			placer := &mockPlacer{}
			flow := newFlow(placer, nil, tt.wallet)

			_, err := flow.Submit(context.Background(), tt.pool, tt.candidate)
			var pe *PreconditionError
			require.ErrorAs(t, err, &pe)
			assert.ErrorIs(t, err, tt.wantErr)
			placer.AssertNotCalled(t, "PlaceBet", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitFailureKeepsCandidate(t *testing.T) {
	rejection := arena.MapAPIError(400, arena.ErrorInsufficientFunds, "Not enough SOL", "pool-1", nil)

	placer := &mockPlacer{}
	placer.On("PlaceBet", mock.Anything, mock.Anything).Return(nil, rejection).Once()

	views := cache.NewQueryCache(time.Minute)
	views.Set(cache.PoolKey("pool-1"), true)

	flow := newFlow(placer, views, fakeWallet{connected: true, balance: 5 * models.LamportsPerSOL})
	c := candidate(models.TraderA, "1")

	_, err := flow.Submit(context.Background(), activePool(), c)
	var funds *arena.InsufficientFundsError
	require.ErrorAs(t, err, &funds)
	assert.Equal(t, "Not enough SOL", arena.Reason(err))

	require.NotNil(t, c.Choice)
	assert.Equal(t, models.TraderA, *c.Choice)
	assert.Equal(t, "1", c.Amount)
	assert.Equal(t, 1, views.ItemCount(), "nothing invalidated on failure")
	assert.False(t, flow.InFlight())
}

func TestSubmitRecorderFailureDoesNotFailBet(t *testing.T) {
	placer := &mockPlacer{}
	placer.On("PlaceBet", mock.Anything, mock.Anything).Return(&models.Bet{ID: "bet-1"}, nil)
	recorder := &mockRecorder{}
	recorder.On("Record", mock.Anything, mock.Anything).Return(errors.New("db down"))

	flow := newFlow(placer, nil, fakeWallet{connected: true, balance: models.LamportsPerSOL}, WithRecorder(recorder))
	_, err := flow.Submit(context.Background(), activePool(), candidate(models.TraderA, "0.1"))
	assert.NoError(t, err)
}

func TestSubmitSingleFlight(t *testing.T) {
	release := make(chan time.Time)
	placer := &mockPlacer{}
	placer.On("PlaceBet", mock.Anything, mock.Anything).WaitUntil(release).Return(&models.Bet{ID: "bet-1"}, nil).Once()

	flow := newFlow(placer, nil, fakeWallet{connected: true, balance: 5 * models.LamportsPerSOL})

	done := make(chan error, 1)
	go func() {
		_, err := flow.Submit(context.Background(), activePool(), candidate(models.TraderA, "1"))
		done <- err
	}()

	require.Eventually(t, flow.InFlight, time.Second, 5*time.Millisecond)
	_, err := flow.Submit(context.Background(), activePool(), candidate(models.TraderB, "1"))
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, flow.InFlight())
	placer.AssertNumberOfCalls(t, "PlaceBet", 1)
}

func TestFailureReason(t *testing.T) {
	assert.Equal(t, "betting_closed", failureReason(arena.MapAPIError(400, arena.ErrorBettingClosed, "", "p", nil)))
	assert.Equal(t, "pool_not_found", failureReason(arena.MapAPIError(404, "", "", "p", nil)))
	assert.Equal(t, "rejected", failureReason(arena.MapAPIError(500, "", "", "", nil)))
	assert.Equal(t, "transport", failureReason(errors.New("dial tcp: refused")))
}
