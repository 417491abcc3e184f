package realtime

import (
	"sync"
	"time"
)

// Default notification lifetimes.
const (
	DefaultNotificationTTL = 5 * time.Second
	BetPlacedTTL           = 8 * time.Second
)

// Notification is a transient user-facing message.
type Notification struct {
	Message   string
	PoolID    string
	ShownAt   time.Time
	ExpiresAt time.Time
}

// Notifier holds at most one notification. A new one replaces the current
// one, and each expires on its own timer.
type Notifier struct {
	ttl time.Duration

	mu        sync.Mutex
	current   *Notification
	gen       uint64
	timer     *time.Timer
	listeners []func(*Notification)
}

// NewNotifier creates a notifier whose Show uses ttl.
func NewNotifier(ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	return &Notifier{ttl: ttl}
}

// OnChange registers fn, called with the new notification or nil on dismiss.
func (n *Notifier) OnChange(fn func(*Notification)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, fn)
}

// Show replaces the current notification using the default lifetime.
func (n *Notifier) Show(poolID, message string) {
	n.ShowFor(poolID, message, n.ttl)
}

// ShowFor replaces the current notification and dismisses it after ttl.
func (n *Notifier) ShowFor(poolID, message string, ttl time.Duration) {
	now := time.Now()
	note := &Notification{
		Message:   message,
		PoolID:    poolID,
		ShownAt:   now,
		ExpiresAt: now.Add(ttl),
	}

	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.gen++
	gen := n.gen
	n.current = note
	n.timer = time.AfterFunc(ttl, func() { n.expire(gen) })
	n.mu.Unlock()

	n.notify(note)
}

// Current returns a copy of the visible notification, or nil.
func (n *Notifier) Current() *Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return nil
	}
	cp := *n.current
	return &cp
}

// Dismiss clears the visible notification.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.gen++
	had := n.current != nil
	n.current = nil
	n.mu.Unlock()

	if had {
		n.notify(nil)
	}
}

// expire dismisses only the notification that scheduled it; a timer that
// lost the race to Stop must not clear a newer one.
func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	if gen != n.gen {
		n.mu.Unlock()
		return
	}
	n.current = nil
	n.timer = nil
	n.mu.Unlock()

	n.notify(nil)
}

func (n *Notifier) notify(note *Notification) {
	n.mu.Lock()
	listeners := make([]func(*Notification), len(n.listeners))
	copy(listeners, n.listeners)
	n.mu.Unlock()

	for _, fn := range listeners {
		fn(note)
	}
}
