// Package realtime consumes pushed pool events and keeps cached views fresh.
package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/yourusername/trader-arena/internal/models"
)

// EventType names a pushed pool event.
type EventType string

const (
	EventPoolUpdated       EventType = "pool:updated"
	EventPoolCreated       EventType = "pool:created"
	EventPoolStatusChanged EventType = "pool:status_changed"
	EventPoolCancelled     EventType = "pool:cancelled"
)

// EventTypes lists every event the synchronizer handles.
var EventTypes = []EventType{EventPoolUpdated, EventPoolCreated, EventPoolStatusChanged, EventPoolCancelled}

// PoolEventData is the union of the pool event payloads. Fields not carried
// by a given event type are left zero.
type PoolEventData struct {
	PoolID         string                 `json:"poolId"`
	PoolNumber     int64                  `json:"poolNumber"`
	RumbleID       string                 `json:"rumbleId,omitempty"`
	TraderAAddress string                 `json:"traderAAddress,omitempty"`
	TraderBAddress string                 `json:"traderBAddress,omitempty"`
	PoolATotal     models.Lamports        `json:"poolATotal,omitempty"`
	PoolBTotal     models.Lamports        `json:"poolBTotal,omitempty"`
	TotalPoolSize  models.Lamports        `json:"totalPoolSize,omitempty"`
	Status         models.PoolStatus      `json:"status,omitempty"`
	OldStatus      models.PoolStatus      `json:"oldStatus,omitempty"`
	NewStatus      models.PoolStatus      `json:"newStatus,omitempty"`
	IsCancelled    bool                   `json:"isCancelled,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// Alert returns the operator-supplied alert carried in metadata, if any.
func (d PoolEventData) Alert() string {
	if d.Metadata == nil {
		return ""
	}
	alert, _ := d.Metadata["alert"].(string)
	return alert
}

// Event is one decoded push message.
type Event struct {
	Type      EventType     `json:"type"`
	Data      PoolEventData `json:"data"`
	Timestamp string        `json:"timestamp"`
}

// DecodeEvent parses a {type, data, timestamp} envelope.
func DecodeEvent(payload []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	if ev.Type == "" {
		return Event{}, fmt.Errorf("failed to decode event: missing type")
	}
	return ev, nil
}

// EncodeEvent renders ev in wire form. Used by relays that republish events.
func EncodeEvent(ev Event) ([]byte, error) {
	return json.Marshal(ev)
}
