package realtime

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/trader-arena/internal/cache"
)

// Synchronizer applies pool events to the query cache and raises user
// notifications. Invalidation is idempotent, so duplicated or reordered
// events only cost an extra refetch.
type Synchronizer struct {
	bus      *Bus
	views    *cache.QueryCache
	notifier *Notifier
	logger   *logrus.Logger

	mu        sync.RWMutex
	displayed string
	subs      []Subscription
}

// NewSynchronizer wires a synchronizer to bus. notifier may be nil.
func NewSynchronizer(bus *Bus, views *cache.QueryCache, notifier *Notifier, logger *logrus.Logger) *Synchronizer {
	return &Synchronizer{
		bus:      bus,
		views:    views,
		notifier: notifier,
		logger:   logger,
	}
}

// Start subscribes to every pool event type.
func (s *Synchronizer) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.subs) > 0 {
		return
	}
	s.subs = []Subscription{
		s.bus.Subscribe(EventPoolUpdated, s.onUpdated),
		s.bus.Subscribe(EventPoolCreated, s.onCreated),
		s.bus.Subscribe(EventPoolStatusChanged, s.onStatusChanged),
		s.bus.Subscribe(EventPoolCancelled, s.onCancelled),
	}
}

// Stop cancels all subscriptions.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}

// SetDisplayedPool sets the pool the user is looking at. An empty id means a
// pool list is displayed.
func (s *Synchronizer) SetDisplayedPool(poolID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.displayed = poolID
}

// DisplayedPool returns the pool the user is looking at.
func (s *Synchronizer) DisplayedPool() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.displayed
}

func (s *Synchronizer) invalidateLists() {
	s.views.Invalidate(cache.PoolsKey, cache.ActivePoolsKey)
}

func (s *Synchronizer) onUpdated(ev Event) {
	d := ev.Data
	s.views.Invalidate(cache.PoolKey(d.PoolID))
	s.invalidateLists()

	total := d.TotalPoolSize.FormatSOL(2)
	switch s.DisplayedPool() {
	case "":
		s.show(d.PoolID, fmt.Sprintf("Pool #%d updated! New total: %s SOL", d.PoolNumber, total))
	case d.PoolID:
		s.show(d.PoolID, fmt.Sprintf("Pool updated! New total: %s SOL", total))
	}
}

func (s *Synchronizer) onCreated(ev Event) {
	s.invalidateLists()
	s.show(ev.Data.PoolID, fmt.Sprintf("New Pool #%d created!", ev.Data.PoolNumber))
}

func (s *Synchronizer) onStatusChanged(ev Event) {
	d := ev.Data
	s.views.Invalidate(cache.PoolKey(d.PoolID))
	s.invalidateLists()

	s.logger.WithFields(logrus.Fields{
		"pool_id":    d.PoolID,
		"old_status": d.OldStatus,
		"new_status": d.NewStatus,
	}).Info("Pool status changed")

	alert := d.Alert()
	if alert == "" {
		return
	}
	// A detail view only surfaces alerts for its own pool.
	switch s.DisplayedPool() {
	case "":
		s.show(d.PoolID, fmt.Sprintf("Pool #%d: %s", d.PoolNumber, alert))
	case d.PoolID:
		s.show(d.PoolID, alert)
	}
}

func (s *Synchronizer) onCancelled(ev Event) {
	s.views.Invalidate(cache.PoolKey(ev.Data.PoolID))
	s.invalidateLists()
	s.show(ev.Data.PoolID, fmt.Sprintf("Pool #%d has been cancelled", ev.Data.PoolNumber))
}

func (s *Synchronizer) show(poolID, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Show(poolID, message)
}
