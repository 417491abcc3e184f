// Package simulation keeps the backend payout preview in step with what the
// user is typing.
package simulation

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/trader-arena/internal/metrics"
	"github.com/yourusername/trader-arena/internal/models"
)

// DefaultDebounce is the quiet period before a simulate request is sent.
const DefaultDebounce = 500 * time.Millisecond

const requestTimeout = 10 * time.Second

// State represents the coordinator's position in the request cycle
type State int

const (
	// StateIdle means no preview is pending or shown
	StateIdle State = iota
	// StateDebouncing means inputs changed and the timer is running
	StateDebouncing
	// StateInFlight means a simulate request is outstanding
	StateInFlight
	// StateSettled means the latest request returned a preview
	StateSettled
	// StateFailed means the latest request returned an error
	StateFailed
)

// String returns string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateDebouncing:
		return "DEBOUNCING"
	case StateInFlight:
		return "IN_FLIGHT"
	case StateSettled:
		return "SETTLED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Key identifies a candidate bet.
type Key struct {
	PoolID string
	Amount models.Lamports
	Choice models.TraderChoice
}

func (k Key) request() models.SimulateRequest {
	return models.SimulateRequest{PoolID: k.PoolID, Amount: k.Amount, TraderChoice: k.Choice}
}

// Simulator returns a non-committing payout preview.
type Simulator interface {
	SimulateBet(ctx context.Context, req models.SimulateRequest) (*models.Simulation, error)
}

// Snapshot is what a renderer may show for the current inputs.
type Snapshot struct {
	State  State
	Result *models.Simulation
	Err    error
}

// Coordinator debounces input changes into simulate requests, skips requests
// for the key last sent, and discards responses that are no longer the latest.
type Coordinator struct {
	sim      Simulator
	debounce time.Duration
	logger   *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	state     State
	timer     *time.Timer
	timerGen  uint64
	pending   Key
	lastSent  *Key
	seq       uint64
	inFlight  bool
	resultKey Key
	result    *models.Simulation
	errKey    Key
	err       error
	listeners []func(State)
}

// NewCoordinator creates a coordinator. A non-positive debounce uses
// DefaultDebounce.
func NewCoordinator(sim Simulator, debounce time.Duration, logger *logrus.Logger) *Coordinator {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		sim:      sim,
		debounce: debounce,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		state:    StateIdle,
	}
}

// OnChange registers fn for every state transition.
func (c *Coordinator) OnChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Update records new valid inputs and restarts the debounce timer.
func (c *Coordinator) Update(key Key) {
	c.mu.Lock()
	c.stopTimerLocked()
	c.pending = key
	gen := c.timerGen
	c.timer = time.AfterFunc(c.debounce, func() { c.fire(gen) })
	c.setStateLocked(StateDebouncing)
	c.mu.Unlock()

	c.notify(StateDebouncing)
}

// Cancel drops the pending timer and any outstanding response. Used when the
// inputs stop being valid.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	c.stopTimerLocked()
	if c.inFlight {
		// the response will be discarded, so the key was never really answered
		c.seq++
		c.inFlight = false
		c.lastSent = nil
	}
	c.setStateLocked(StateIdle)
	c.mu.Unlock()

	c.notify(StateIdle)
}

// Close cancels everything and aborts any outstanding request.
func (c *Coordinator) Close() {
	c.Cancel()
	c.cancel()
}

// State returns the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the state plus the result or error, but only when they
// were produced for current.
func (c *Coordinator) Snapshot(current Key) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{State: c.state}
	if c.result != nil && c.resultKey == current {
		snap.Result = c.result
	}
	if c.err != nil && c.errKey == current {
		snap.Err = c.err
	}
	return snap
}

func (c *Coordinator) stopTimerLocked() {
	c.timerGen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Coordinator) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.timerGen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	key := c.pending

	if c.lastSent != nil && *c.lastSent == key {
		next := StateSettled
		if c.inFlight {
			next = StateInFlight
		}
		c.setStateLocked(next)
		c.mu.Unlock()

		metrics.RecordSimulationDeduped()
		c.logger.WithField("pool_id", key.PoolID).Debug("Simulation skipped, key unchanged")
		c.notify(next)
		return
	}

	sent := key
	c.lastSent = &sent
	c.seq++
	seq := c.seq
	c.inFlight = true
	c.setStateLocked(StateInFlight)
	c.mu.Unlock()

	c.notify(StateInFlight)
	go c.send(key, seq)
}

func (c *Coordinator) send(key Key, seq uint64) {
	ctx, cancel := context.WithTimeout(c.ctx, requestTimeout)
	defer cancel()

	result, err := c.sim.SimulateBet(ctx, key.request())

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		metrics.RecordSimulation("stale")
		c.logger.WithField("pool_id", key.PoolID).Debug("Discarding stale simulation response")
		return
	}
	c.inFlight = false

	var next State
	if err != nil {
		next = StateFailed
		c.err = err
		c.errKey = key
		c.result = nil
		// forget the key so the same inputs can be retried
		c.lastSent = nil
	} else {
		next = StateSettled
		c.result = result
		c.resultKey = key
		c.err = nil
	}
	// Newer inputs are still debouncing: keep the outcome for Snapshot but
	// leave the state to the pending timer.
	debouncing := c.timer != nil
	if !debouncing {
		c.setStateLocked(next)
	}
	c.mu.Unlock()

	if err != nil {
		metrics.RecordSimulation("error")
		c.logger.WithError(err).WithField("pool_id", key.PoolID).Warn("Bet simulation failed")
	} else {
		metrics.RecordSimulation("success")
	}
	if !debouncing {
		c.notify(next)
	}
}

func (c *Coordinator) setStateLocked(next State) {
	if c.state == next {
		return
	}
	c.logger.WithFields(logrus.Fields{
		"from": c.state.String(),
		"to":   next.String(),
	}).Debug("Simulation state changed")
	c.state = next
}

func (c *Coordinator) notify(state State) {
	c.mu.Lock()
	listeners := make([]func(State), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}
