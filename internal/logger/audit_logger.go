// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogBetSubmission logs a submission attempt before the backend is called.
func (al *AuditLogger) LogBetSubmission(requestID, poolID, wallet string, side string, amountLamports uint64) {
	al.WithFields(logrus.Fields{
		"request_id": requestID,
		"pool_id":    poolID,
		"wallet":     wallet,
		"side":       side,
		"amount":     amountLamports,
	}).Info("Bet submission started")
}

// LogBetPlacement logs a bet accepted by the backend.
func (al *AuditLogger) LogBetPlacement(requestID, betID, poolID, side string, amountLamports uint64, odds float64, reference string, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"request_id": requestID,
		"bet_id":     betID,
		"pool_id":    poolID,
		"side":       side,
		"amount":     amountLamports,
		"odds":       odds,
		"reference":  reference,
		"timestamp":  timestamp.Unix(),
	}).Info("Bet placement recorded")
}

// LogBetRejection logs a failed submission. The candidate bet is kept by the
// caller so the user can retry.
func (al *AuditLogger) LogBetRejection(requestID, poolID, side string, amountLamports uint64, reason error) {
	al.WithFields(logrus.Fields{
		"request_id": requestID,
		"pool_id":    poolID,
		"side":       side,
		"amount":     amountLamports,
	}).WithError(reason).Warn("Bet submission rejected")
}

// LogTransactionStateChange logs a wallet transaction state transition.
func (al *AuditLogger) LogTransactionStateChange(signature, oldState, newState string, err error) {
	entry := al.WithFields(logrus.Fields{
		"signature": signature,
		"old_state": oldState,
		"new_state": newState,
	})
	if err != nil {
		entry.WithError(err).Warn("Transaction state changed")
		return
	}
	entry.Info("Transaction state changed")
}

// LogConnectivityChange logs push channel status changes.
func (al *AuditLogger) LogConnectivityChange(channel, oldStatus, newStatus string, attempts int) {
	al.WithFields(logrus.Fields{
		"channel":    channel,
		"old_status": oldStatus,
		"new_status": newStatus,
		"attempts":   attempts,
	}).Info("Realtime connectivity changed")
}
