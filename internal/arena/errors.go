package arena

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Error codes returned in the envelope's error field.
const (
	ErrorInsufficientFunds = "INSUFFICIENT_FUNDS"
	ErrorBettingClosed     = "BETTING_CLOSED"
	ErrorPoolNotFound      = "POOL_NOT_FOUND"
	ErrorInvalidAmount     = "INVALID_AMOUNT"
	ErrorUnauthorized      = "UNAUTHORIZED"
)

// ErrUnauthorized is returned for 401 responses.
var ErrUnauthorized = errors.New("unauthorized")

// APIError represents an error reported by the backend
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Cause      error
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("arena API error: %s (status: %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("arena API error: %s (status: %d, code: %s)", e.Message, e.StatusCode, e.Code)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// InsufficientFundsError is returned when the wallet cannot cover the bet
type InsufficientFundsError struct {
	Message string
	Cause   error
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("Insufficient funds: %s", e.Message)
}

func (e *InsufficientFundsError) Unwrap() error {
	return e.Cause
}

// BettingClosedError is returned when the pool no longer accepts bets
type BettingClosedError struct {
	PoolID  string
	Message string
	Cause   error
}

func (e *BettingClosedError) Error() string {
	return fmt.Sprintf("Betting closed [%s]: %s", e.PoolID, e.Message)
}

func (e *BettingClosedError) Unwrap() error {
	return e.Cause
}

// PoolNotFoundError is returned when the pool does not exist
type PoolNotFoundError struct {
	PoolID string
	Cause  error
}

func (e *PoolNotFoundError) Error() string {
	return fmt.Sprintf("Pool not found: %s", e.PoolID)
}

func (e *PoolNotFoundError) Unwrap() error {
	return e.Cause
}

// MapAPIError maps a failed response to a typed error. poolID is the pool the
// request concerned, if any.
func MapAPIError(status int, code, message, poolID string, logger *logrus.Logger) error {
	if logger != nil {
		logger.WithFields(logrus.Fields{
			"status":  status,
			"code":    code,
			"message": message,
		}).Debug("Arena API error")
	}

	base := &APIError{StatusCode: status, Code: code, Message: message}
	if message == "" {
		base.Message = http.StatusText(status)
	}

	switch {
	case code == ErrorInsufficientFunds:
		return &InsufficientFundsError{Message: base.Message, Cause: base}
	case code == ErrorBettingClosed:
		return &BettingClosedError{PoolID: poolID, Message: base.Message, Cause: base}
	case code == ErrorPoolNotFound, status == http.StatusNotFound && poolID != "":
		return &PoolNotFoundError{PoolID: poolID, Cause: base}
	case status == http.StatusUnauthorized || code == ErrorUnauthorized:
		base.Cause = ErrUnauthorized
		return base
	default:
		return base
	}
}

// Reason returns the backend's human-readable reason for err, or err's text
// when it did not come from the backend.
func Reason(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
