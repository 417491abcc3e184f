// Package scheduler runs periodic refresh callbacks with a visible countdown.
package scheduler

import (
	"math"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultInterval is the refresh cadence for trader and pool views.
	DefaultInterval = 5 * time.Minute
	// MinInterval is the finest cadence cron.Every supports.
	MinInterval = time.Second
)

// AutoRefresh calls a callback once per interval while enabled and not
// paused. Pausing, disabling and resetting never fire the callback.
type AutoRefresh struct {
	cron     *cron.Cron
	callback func()
	logger   *logrus.Logger

	mu       sync.Mutex
	interval time.Duration
	entryID  cron.EntryID
	enabled  bool
	paused   bool
	frozen   int // countdown shown while paused
	running  bool
}

// NewAutoRefresh creates a refresher. Call Start to begin ticking.
func NewAutoRefresh(callback func(), interval time.Duration, enabled bool, logger *logrus.Logger) *AutoRefresh {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if interval < MinInterval {
		interval = MinInterval
	}

	cl := cronLogger{logger: logger}
	return &AutoRefresh{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		callback: callback,
		logger:   logger,
		interval: interval,
		enabled:  enabled,
		frozen:   int(interval / time.Second),
	}
}

// Start begins scheduling.
func (a *AutoRefresh) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return
	}
	a.running = true
	a.cron.Start()
	a.scheduleLocked()
	a.logger.WithField("interval", a.interval).Debug("Auto-refresh started")
}

// Stop halts scheduling and waits for a running callback to return.
func (a *AutoRefresh) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	a.unscheduleLocked()
	a.mu.Unlock()

	<-a.cron.Stop().Done()
	a.logger.Debug("Auto-refresh stopped")
}

// Countdown returns whole seconds until the next callback, rounded up.
func (a *AutoRefresh) Countdown() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.countdownLocked()
}

func (a *AutoRefresh) countdownLocked() int {
	if a.entryID == 0 {
		if a.paused {
			return a.frozen
		}
		return int(a.interval / time.Second)
	}

	next := a.cron.Entry(a.entryID).Next
	if next.IsZero() {
		return int(a.interval / time.Second)
	}
	secs := int(math.Ceil(time.Until(next).Seconds()))
	if secs < 0 {
		return 0
	}
	return secs
}

// SetPaused pauses or resumes. A paused refresher keeps its countdown frozen;
// resuming starts a full interval.
func (a *AutoRefresh) SetPaused(paused bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.paused == paused {
		return
	}
	if paused {
		a.frozen = a.countdownLocked()
		a.paused = true
		a.unscheduleLocked()
	} else {
		a.paused = false
		a.scheduleLocked()
	}
	a.logger.WithField("paused", paused).Debug("Auto-refresh pause toggled")
}

// Toggle flips the paused state and returns the new value.
func (a *AutoRefresh) Toggle() bool {
	a.mu.Lock()
	paused := !a.paused
	a.mu.Unlock()

	a.SetPaused(paused)
	return paused
}

// IsPaused reports whether the refresher is paused.
func (a *AutoRefresh) IsPaused() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.paused
}

// SetEnabled turns scheduling on or off.
func (a *AutoRefresh) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.enabled == enabled {
		return
	}
	a.enabled = enabled
	if enabled {
		a.scheduleLocked()
	} else {
		a.unscheduleLocked()
	}
}

// Enabled reports whether scheduling is on.
func (a *AutoRefresh) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// Reset restarts the countdown from a full interval without firing.
func (a *AutoRefresh) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.frozen = int(a.interval / time.Second)
	a.unscheduleLocked()
	a.scheduleLocked()
}

// SetInterval changes the cadence and restarts the countdown.
func (a *AutoRefresh) SetInterval(interval time.Duration) {
	if interval < MinInterval {
		interval = MinInterval
	}
	a.mu.Lock()
	a.interval = interval
	a.mu.Unlock()

	a.Reset()
}

// Interval returns the current cadence.
func (a *AutoRefresh) Interval() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.interval
}

func (a *AutoRefresh) active() bool {
	return a.running && a.enabled && !a.paused
}

func (a *AutoRefresh) scheduleLocked() {
	if !a.active() || a.entryID != 0 {
		return
	}
	a.entryID = a.cron.Schedule(cron.Every(a.interval), cron.FuncJob(a.fire))
}

func (a *AutoRefresh) unscheduleLocked() {
	if a.entryID == 0 {
		return
	}
	a.cron.Remove(a.entryID)
	a.entryID = 0
}

func (a *AutoRefresh) fire() {
	a.mu.Lock()
	ok := a.active()
	a.mu.Unlock()

	if !ok {
		return
	}
	a.logger.Debug("Auto-refresh firing")
	a.callback()
}

// cronLogger routes cron's internal logging through logrus.
type cronLogger struct {
	logger *logrus.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(kvFields(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.WithError(err).WithFields(kvFields(keysAndValues)).Error("cron: " + msg)
}

func kvFields(kv []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			fields[k] = kv[i+1]
		}
	}
	return fields
}
