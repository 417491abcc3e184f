package betting

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/trader-arena/internal/models"
)

// FeeBuffer is held back from the wallet balance to pay the network fee of
// the bet transaction (0.00001 SOL).
const FeeBuffer models.Lamports = 10_000

// Validation failure kinds.
var (
	ErrAmountInvalid       = errors.New("amount is not a valid number")
	ErrAmountNotPositive   = errors.New("amount must be greater than 0")
	ErrBelowMinimum        = errors.New("amount below minimum bet")
	ErrAboveMaximum        = errors.New("amount above maximum bet")
	ErrInsufficientBalance = errors.New("insufficient balance including fee")
)

// ValidationError is an input error suitable for inline display.
type ValidationError struct {
	Kind    error
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

func newValidationError(kind error, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Limits are the stake bounds of a pool.
type Limits struct {
	Min models.Lamports
	Max models.Lamports
}

// LimitsFor returns the bounds of a pool with defaults applied.
func LimitsFor(pool *models.Pool) Limits {
	return Limits{Min: pool.MinBet(), Max: pool.MaxBet()}
}

// DefaultLimits returns the client-side default stake bounds.
func DefaultLimits() Limits {
	return Limits{Min: models.DefaultMinBet, Max: models.DefaultMaxBet}
}

// ValidateAmount checks a user-entered SOL amount against the stake bounds and
// the wallet balance. Rules are applied in order and the first failure is
// returned. On success the amount is returned floored to lamports.
func ValidateAmount(input string, limits Limits, balance models.Lamports) (models.Lamports, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil {
		return 0, newValidationError(ErrAmountInvalid, "Please enter a valid amount")
	}

	if amount.Sign() <= 0 {
		return 0, newValidationError(ErrAmountNotPositive, "Amount must be greater than 0")
	}

	if amount.LessThan(limits.Min.SOL()) {
		return 0, newValidationError(ErrBelowMinimum, "Minimum bet amount is %s SOL", limits.Min.FormatSOL(4))
	}

	if amount.GreaterThan(limits.Max.SOL()) {
		return 0, newValidationError(ErrAboveMaximum, "Maximum bet amount is %s SOL", limits.Max.FormatSOL(4))
	}

	if amount.Add(FeeBuffer.SOL()).GreaterThan(balance.SOL()) {
		return 0, newValidationError(ErrInsufficientBalance, "Insufficient balance (including transaction fee)")
	}

	lamports, err := models.LamportsFromSOL(amount)
	if err != nil {
		return 0, newValidationError(ErrAmountInvalid, "Please enter a valid amount")
	}
	return lamports, nil
}

// BettingAllowed reports whether the pool accepts bets at now. It must be
// evaluated on every use since the window closes with time alone.
func BettingAllowed(pool *models.Pool, now time.Time) bool {
	if pool == nil || pool.Status != models.PoolStatusActive {
		return false
	}
	if closesAt, ok := pool.ClosesAt(); ok && !now.Before(closesAt) {
		return false
	}
	return true
}

// AvailableBalance is the balance that can be staked once the fee buffer is
// held back.
func AvailableBalance(balance models.Lamports) models.Lamports {
	if balance <= FeeBuffer {
		return 0
	}
	return balance - FeeBuffer
}

// HasSufficientBalance reports whether amount plus the fee buffer fits in balance.
func HasSufficientBalance(balance, amount models.Lamports) bool {
	return balance > 0 && amount+FeeBuffer <= balance
}

// QuickAmount returns percent of the available balance, clamped to the limits.
// It returns zero when even the minimum stake is unaffordable.
func QuickAmount(balance models.Lamports, percent int, limits Limits) models.Lamports {
	if percent <= 0 {
		return 0
	}
	if percent > 100 {
		percent = 100
	}
	available := AvailableBalance(balance)
	amount := models.Lamports(uint64(available) / 100 * uint64(percent))
	amount += models.Lamports(uint64(available) % 100 * uint64(percent) / 100)
	if amount > limits.Max {
		amount = limits.Max
	}
	if amount < limits.Min {
		if available < limits.Min {
			return 0
		}
		amount = limits.Min
	}
	return amount
}
