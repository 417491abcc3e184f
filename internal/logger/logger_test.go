package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevels(t *testing.T) {
	buf := &bytes.Buffer{}

	log := NewLoggerWithOutput("debug", "development", buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)

	log = NewLoggerWithOutput("nonsense", "production", buf)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
	assert.Contains(t, buf.String(), "Invalid log level")
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().WithField("k", "v").Info("dropped")
	})
}

func TestAuditLoggerBetSubmission(t *testing.T) {
	log, buf := setupTestLogger()
	audit := NewAuditLogger(log)

	audit.LogBetSubmission("req-1", "pool-1", "wallet-1", "A", 1_500_000_000)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, "pool-1", logEntry["pool_id"])
	assert.Equal(t, float64(1_500_000_000), logEntry["amount"])
}

func TestAuditLoggerBetPlacement(t *testing.T) {
	log, buf := setupTestLogger()
	audit := NewAuditLogger(log)

	audit.LogBetPlacement("req-1", "bet-1", "pool-1", "B", 10, 2.5, "5sig", time.Unix(1_700_000_000, 0))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "bet-1", logEntry["bet_id"])
	assert.Equal(t, "5sig", logEntry["reference"])
	assert.Equal(t, float64(1_700_000_000), logEntry["timestamp"])
}

func TestAuditLoggerBetRejection(t *testing.T) {
	log, buf := setupTestLogger()
	audit := NewAuditLogger(log)

	audit.LogBetRejection("req-1", "pool-1", "A", 10, errors.New("betting window closed"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "betting window closed", logEntry["error"])
}

func TestAuditLoggerTransactionStateChange(t *testing.T) {
	log, buf := setupTestLogger()
	audit := NewAuditLogger(log)

	audit.LogTransactionStateChange("sig", "sending", "confirming", nil)
	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "confirming", logEntry["new_state"])
	assert.Equal(t, "info", logEntry["level"])

	buf.Reset()
	audit.LogTransactionStateChange("sig", "confirming", "error", errors.New("expired"))
	logEntry = parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "expired", logEntry["error"])
}

func TestAuditLoggerConnectivityChange(t *testing.T) {
	log, buf := setupTestLogger()
	audit := NewAuditLogger(log)

	audit.LogConnectivityChange("websocket", "reconnecting", "disconnected", 5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "disconnected", logEntry["new_status"])
	assert.Equal(t, float64(5), logEntry["attempts"])
}
