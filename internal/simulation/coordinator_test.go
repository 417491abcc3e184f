package simulation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/trader-arena/internal/logger"
	"github.com/yourusername/trader-arena/internal/models"
)

const testDebounce = 20 * time.Millisecond

type mockSimulator struct {
	mock.Mock
}

func (m *mockSimulator) SimulateBet(ctx context.Context, req models.SimulateRequest) (*models.Simulation, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Simulation), args.Error(1)
}

func keyOf(amount models.Lamports, choice models.TraderChoice) Key {
	return Key{PoolID: "pool-1", Amount: amount, Choice: choice}
}

func simFor(k Key) *models.Simulation {
	return &models.Simulation{Amount: k.Amount, TraderChoice: k.Choice, PotentialPayout: k.Amount * 2}
}

func waitFor(t *testing.T, c *Coordinator, want State) {
	t.Helper()
	require.Eventually(t, func() bool { return c.State() == want }, time.Second, 5*time.Millisecond,
		"state %s, want %s", c.State(), want)
}

func TestCoordinatorDebouncesRapidUpdates(t *testing.T) {
	sim := &mockSimulator{}
	last := keyOf(300, models.TraderA)
	sim.On("SimulateBet", last.request()).Return(simFor(last), nil).Once()

	c := NewCoordinator(sim, testDebounce, logger.Discard())
	defer c.Close()

	c.Update(keyOf(100, models.TraderA))
	c.Update(keyOf(200, models.TraderA))
	c.Update(last)
	assert.Equal(t, StateDebouncing, c.State())

	waitFor(t, c, StateSettled)
	snap := c.Snapshot(last)
	require.NotNil(t, snap.Result)
	assert.Equal(t, models.Lamports(600), snap.Result.PotentialPayout)
	sim.AssertNumberOfCalls(t, "SimulateBet", 1)
}

func TestCoordinatorSkipsUnchangedKey(t *testing.T) {
	sim := &mockSimulator{}
	k := keyOf(100, models.TraderB)
	sim.On("SimulateBet", k.request()).Return(simFor(k), nil).Once()

	c := NewCoordinator(sim, testDebounce, logger.Discard())
	defer c.Close()

	c.Update(k)
	waitFor(t, c, StateSettled)

	c.Update(k)
	assert.Equal(t, StateDebouncing, c.State())
	waitFor(t, c, StateSettled)

	assert.NotNil(t, c.Snapshot(k).Result)
	sim.AssertNumberOfCalls(t, "SimulateBet", 1)
}

func TestCoordinatorFailureAllowsRetry(t *testing.T) {
	sim := &mockSimulator{}
	k := keyOf(100, models.TraderA)
	sim.On("SimulateBet", k.request()).Return(nil, errors.New("backend down")).Once()
	sim.On("SimulateBet", k.request()).Return(simFor(k), nil).Once()

	c := NewCoordinator(sim, testDebounce, logger.Discard())
	defer c.Close()

	c.Update(k)
	waitFor(t, c, StateFailed)
	snap := c.Snapshot(k)
	assert.EqualError(t, snap.Err, "backend down")
	assert.Nil(t, snap.Result)

	c.Update(k)
	waitFor(t, c, StateSettled)
	snap = c.Snapshot(k)
	assert.NoError(t, snap.Err)
	assert.NotNil(t, snap.Result)
	sim.AssertNumberOfCalls(t, "SimulateBet", 2)
}

// gatedSimulator blocks requests for one amount until released.
type gatedSimulator struct {
	gateAmount models.Lamports
	release    chan struct{}

	mu    sync.Mutex
	calls []models.SimulateRequest
}

func (g *gatedSimulator) SimulateBet(ctx context.Context, req models.SimulateRequest) (*models.Simulation, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	g.mu.Unlock()

	if req.Amount == g.gateAmount {
		<-g.release
	}
	return simFor(Key{PoolID: req.PoolID, Amount: req.Amount, Choice: req.TraderChoice}), nil
}

func (g *gatedSimulator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func TestCoordinatorLastKeyWins(t *testing.T) {
	slow := keyOf(100, models.TraderA)
	fast := keyOf(200, models.TraderA)
	sim := &gatedSimulator{gateAmount: slow.Amount, release: make(chan struct{})}

	c := NewCoordinator(sim, testDebounce, logger.Discard())
	defer c.Close()

	c.Update(slow)
	waitFor(t, c, StateInFlight)

	c.Update(fast)
	require.Eventually(t, func() bool { return sim.callCount() == 2 }, time.Second, 5*time.Millisecond)
	waitFor(t, c, StateSettled)

	close(sim.release)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, StateSettled, c.State())
	snap := c.Snapshot(fast)
	require.NotNil(t, snap.Result)
	assert.Equal(t, fast.Amount, snap.Result.Amount)
	assert.Nil(t, c.Snapshot(slow).Result, "stale result must not be shown")
}

func TestCoordinatorCancel(t *testing.T) {
	sim := &mockSimulator{}
	c := NewCoordinator(sim, testDebounce, logger.Discard())
	defer c.Close()

	c.Update(keyOf(100, models.TraderA))
	c.Cancel()
	assert.Equal(t, StateIdle, c.State())

	time.Sleep(3 * testDebounce)
	assert.Equal(t, StateIdle, c.State())
	sim.AssertNotCalled(t, "SimulateBet", mock.Anything)
}

func TestCoordinatorCancelDiscardsInFlightResponse(t *testing.T) {
	k := keyOf(100, models.TraderA)
	sim := &gatedSimulator{gateAmount: k.Amount, release: make(chan struct{})}

	c := NewCoordinator(sim, testDebounce, logger.Discard())
	defer c.Close()

	c.Update(k)
	waitFor(t, c, StateInFlight)
	c.Cancel()
	close(sim.release)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, StateIdle, c.State())
	assert.Nil(t, c.Snapshot(k).Result)

	// the cancelled request does not count as sent
	c.Update(k)
	waitFor(t, c, StateSettled)
	assert.Equal(t, 2, sim.callCount())
}

func TestCoordinatorListener(t *testing.T) {
	sim := &mockSimulator{}
	k := keyOf(100, models.TraderA)
	sim.On("SimulateBet", k.request()).Return(simFor(k), nil)

	c := NewCoordinator(sim, testDebounce, logger.Discard())
	defer c.Close()

	var mu sync.Mutex
	var seen []State
	c.OnChange(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	})

	c.Update(k)
	waitFor(t, c, StateSettled)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateDebouncing, StateInFlight, StateSettled}, seen)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "IN_FLIGHT", StateInFlight.String())
	assert.Equal(t, "UNKNOWN", State(42).String())
}

func TestCoordinatorResponseDuringDebounceKeepsDebouncing(t *testing.T) {
	a := keyOf(100, models.TraderA)
	b := keyOf(200, models.TraderA)
	sim := &gatedSimulator{gateAmount: a.Amount, release: make(chan struct{})}

	c := NewCoordinator(sim, 200*time.Millisecond, logger.Discard())
	defer c.Close()

	var mu sync.Mutex
	var seen []State
	c.OnChange(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	})

	c.Update(a)
	waitFor(t, c, StateInFlight)

	c.Update(b)
	close(sim.release)
	time.Sleep(50 * time.Millisecond)

	snap := c.Snapshot(b)
	assert.Equal(t, StateDebouncing, snap.State)
	assert.Nil(t, snap.Result)

	waitFor(t, c, StateSettled)
	require.NotNil(t, c.Snapshot(b).Result)
	assert.Equal(t, 2, sim.callCount())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateDebouncing, StateInFlight, StateDebouncing, StateInFlight, StateSettled}, seen)
}

func TestCoordinatorReturnToSentKeyWithinDebounce(t *testing.T) {
	a := keyOf(100, models.TraderA)
	b := keyOf(200, models.TraderB)

	t.Run("after settle", func(t *testing.T) {
		sim := &mockSimulator{}
		sim.On("SimulateBet", a.request()).Return(simFor(a), nil).Once()

		c := NewCoordinator(sim, testDebounce, logger.Discard())
		defer c.Close()

		c.Update(a)
		waitFor(t, c, StateSettled)

		c.Update(b)
		c.Update(a)
		time.Sleep(3 * testDebounce)

		assert.Equal(t, StateSettled, c.State())
		assert.NotNil(t, c.Snapshot(a).Result)
		sim.AssertNumberOfCalls(t, "SimulateBet", 1)
	})

	t.Run("while in flight", func(t *testing.T) {
		sim := &gatedSimulator{gateAmount: a.Amount, release: make(chan struct{})}

		c := NewCoordinator(sim, testDebounce, logger.Discard())
		defer c.Close()

		c.Update(a)
		waitFor(t, c, StateInFlight)

		c.Update(b)
		c.Update(a)
		time.Sleep(3 * testDebounce)
		assert.Equal(t, StateInFlight, c.State())

		close(sim.release)
		waitFor(t, c, StateSettled)
		assert.NotNil(t, c.Snapshot(a).Result)
		assert.Equal(t, 1, sim.callCount())
	})
}
