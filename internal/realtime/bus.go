package realtime

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/trader-arena/internal/metrics"
)

// Handler receives events of one type.
type Handler func(Event)

// Subscription is returned by Subscribe. Cancel stops delivery and may be
// called more than once.
type Subscription interface {
	Cancel()
}

// Bus fans decoded events out to typed subscribers. Sources (the websocket
// stream, the Redis relay, tests) publish into it.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType]map[uuid.UUID]Handler
	logger   *logrus.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *logrus.Logger) *Bus {
	return &Bus{
		handlers: make(map[EventType]map[uuid.UUID]Handler),
		logger:   logger,
	}
}

type subscription struct {
	bus  *Bus
	kind EventType
	id   uuid.UUID
}

func (s *subscription) Cancel() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	delete(s.bus.handlers[s.kind], s.id)
}

// Subscribe registers handler for events of kind.
func (b *Bus) Subscribe(kind EventType, handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[kind] == nil {
		b.handlers[kind] = make(map[uuid.UUID]Handler)
	}
	id := uuid.New()
	b.handlers[kind][id] = handler
	return &subscription{bus: b, kind: kind, id: id}
}

// Publish delivers ev to every subscriber of its type.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[ev.Type]))
	for _, h := range b.handlers[ev.Type] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	metrics.RecordRealtimeEvent(string(ev.Type))
	b.logger.WithFields(logrus.Fields{
		"type":    ev.Type,
		"pool_id": ev.Data.PoolID,
	}).Debug("Realtime event received")

	for _, h := range handlers {
		h(ev)
	}
}

// PublishRaw decodes payload and publishes it. Malformed payloads are logged
// and returned as errors.
func (b *Bus) PublishRaw(payload []byte) error {
	ev, err := DecodeEvent(payload)
	if err != nil {
		b.logger.WithError(err).Warn("Dropping malformed realtime event")
		return err
	}
	b.Publish(ev)
	return nil
}
