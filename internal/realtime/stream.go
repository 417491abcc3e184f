package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/trader-arena/internal/logger"
	"github.com/yourusername/trader-arena/internal/metrics"
)

// ErrMaxReconnectAttempts is returned by Run once the reconnect budget is spent.
var ErrMaxReconnectAttempts = errors.New("max reconnect attempts reached")

// ConnectionStatus is the push channel state shown to the user
type ConnectionStatus string

const (
	StatusConnecting   ConnectionStatus = "connecting"
	StatusConnected    ConnectionStatus = "connected"
	StatusReconnecting ConnectionStatus = "reconnecting"
	StatusDisconnected ConnectionStatus = "disconnected"
)

// StreamConfig controls the websocket connection and reconnection behavior
type StreamConfig struct {
	URL                  string
	Room                 string
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	HandshakeTimeout     time.Duration
	PingInterval         time.Duration
	PongWait             time.Duration
	WriteWait            time.Duration
	// StableAfter is how long a session must stay up, absent any received
	// message, before it resets the reconnect attempt count.
	StableAfter time.Duration
}

// DefaultStreamConfig returns the default configuration for url
func DefaultStreamConfig(url string) StreamConfig {
	return StreamConfig{
		URL:                  url,
		Room:                 "global",
		MaxReconnectAttempts: 5,
		ReconnectDelay:       time.Second,
		HandshakeTimeout:     10 * time.Second,
		PingInterval:         25 * time.Second,
		PongWait:             60 * time.Second,
		WriteWait:            10 * time.Second,
		StableAfter:          10 * time.Second,
	}
}

// joinMessage subscribes the connection to a broadcast room
type joinMessage struct {
	Event string `json:"event"`
	Data  struct {
		Room string `json:"room"`
	} `json:"data"`
}

// StreamClient holds the session's single websocket connection and feeds
// every received event into a Bus.
type StreamClient struct {
	cfg    StreamConfig
	bus    *Bus
	logger *logrus.Logger
	audit  *logger.AuditLogger
	dialer websocket.Dialer

	mu              sync.RWMutex
	status          ConnectionStatus
	attempts        int
	lastMessageTime time.Time
	listeners       []func(ConnectionStatus)
}

// NewStreamClient creates a new stream client
func NewStreamClient(cfg StreamConfig, bus *Bus, log *logrus.Logger) *StreamClient {
	defaults := DefaultStreamConfig(cfg.URL)
	if cfg.Room == "" {
		cfg.Room = defaults.Room
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = defaults.ReconnectDelay
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = defaults.HandshakeTimeout
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaults.PingInterval
	}
	if cfg.PongWait <= cfg.PingInterval {
		cfg.PongWait = cfg.PingInterval * 2
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = defaults.WriteWait
	}
	if cfg.StableAfter <= 0 {
		cfg.StableAfter = defaults.StableAfter
	}

	return &StreamClient{
		cfg:    cfg,
		bus:    bus,
		logger: log,
		audit:  logger.NewAuditLogger(log),
		dialer: websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout},
		status: StatusDisconnected,
	}
}

// OnStatusChange registers fn for connection status changes.
func (s *StreamClient) OnStatusChange(fn func(ConnectionStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Status returns the current connection status.
func (s *StreamClient) Status() ConnectionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// IsConnected returns whether the stream is connected
func (s *StreamClient) IsConnected() bool {
	return s.Status() == StatusConnected
}

// Attempts returns the reconnect attempt count recorded with the last
// status change.
func (s *StreamClient) Attempts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attempts
}

// LastMessageTime returns the time of the last received message
func (s *StreamClient) LastMessageTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastMessageTime
}

// Run connects and reads until ctx is done. A dropped connection is retried
// with a fixed delay; after MaxReconnectAttempts consecutive failures the
// client stays disconnected and Run returns ErrMaxReconnectAttempts.
func (s *StreamClient) Run(ctx context.Context) error {
	s.setStatus(StatusConnecting, 0)
	failures := 0

	for {
		stable, err := s.session(ctx)
		if ctx.Err() != nil {
			s.setStatus(StatusDisconnected, failures)
			return nil
		}
		if stable {
			failures = 0
		}
		failures++

		if failures > s.cfg.MaxReconnectAttempts {
			s.logger.WithError(err).WithField("attempts", failures-1).Error("Realtime channel gave up reconnecting")
			s.setStatus(StatusDisconnected, failures-1)
			return ErrMaxReconnectAttempts
		}

		s.logger.WithError(err).WithFields(logrus.Fields{
			"attempt":      failures,
			"max_attempts": s.cfg.MaxReconnectAttempts,
			"delay":        s.cfg.ReconnectDelay,
		}).Warn("Realtime channel lost, reconnecting")
		metrics.RecordReconnectAttempt()
		s.setStatus(StatusReconnecting, failures)

		select {
		case <-ctx.Done():
			s.setStatus(StatusDisconnected, failures)
			return nil
		case <-time.After(s.cfg.ReconnectDelay):
		}
	}
}

// session dials, joins the room and reads until the connection drops. It
// reports whether the session was stable: a message arrived or it stayed up
// for StableAfter. A server that accepts and drops at once is not.
func (s *StreamClient) session(ctx context.Context) (bool, error) {
	conn, _, err := s.dialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to connect to stream: %w", err)
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-sessionCtx.Done()
		_ = conn.Close()
	}()

	join := joinMessage{Event: "join_room"}
	join.Data.Room = s.cfg.Room
	_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
	if err := conn.WriteJSON(join); err != nil {
		return false, fmt.Errorf("failed to join room %s: %w", s.cfg.Room, err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	connectedAt := time.Now()
	s.mu.Lock()
	s.lastMessageTime = connectedAt
	s.mu.Unlock()
	s.setStatus(StatusConnected, 0)
	s.logger.WithFields(logrus.Fields{"url": s.cfg.URL, "room": s.cfg.Room}).Info("Realtime channel connected")

	go s.keepAlive(sessionCtx, conn)

	received := false
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			stable := received || time.Since(connectedAt) >= s.cfg.StableAfter
			return stable, fmt.Errorf("error reading message: %w", err)
		}
		received = true

		s.mu.Lock()
		s.lastMessageTime = time.Now()
		s.mu.Unlock()
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))

		// malformed events are logged by the bus and skipped
		_ = s.bus.PublishRaw(payload)
	}
}

// keepAlive sends a ping every PingInterval until ctx is done.
func (s *StreamClient) keepAlive(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteWait)); err != nil {
				s.logger.WithError(err).Debug("Realtime ping failed")
				return
			}
		}
	}
}

func (s *StreamClient) setStatus(status ConnectionStatus, attempts int) {
	s.mu.Lock()
	old := s.status
	if old == status {
		s.mu.Unlock()
		return
	}
	s.status = status
	s.attempts = attempts
	listeners := make([]func(ConnectionStatus), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	metrics.SetRealtimeConnected(status == StatusConnected)
	s.audit.LogConnectivityChange("websocket", string(old), string(status), attempts)

	for _, fn := range listeners {
		fn(status)
	}
}
