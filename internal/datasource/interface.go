// Package datasource fetches trader market data used to size up the two
// sides of a pool.
package datasource

import (
	"context"
	"errors"
	"fmt"
)

// MarketData defines the trader lookups the arena needs from a market-data provider
type MarketData interface {
	// PNL returns the cumulative realized P&L series for a trader
	PNL(ctx context.Context, address string, timeframe Timeframe) ([]PNLPoint, error)

	// PortfolioValue returns the current value of a trader's open positions
	PortfolioValue(ctx context.Context, address string) (float64, error)

	// Positions returns a trader's positions sorted by percentage P&L
	Positions(ctx context.Context, address string) ([]Position, error)

	// Trades returns a trader's trade history
	Trades(ctx context.Context, address string) ([]Trade, error)

	// Profile returns display information for a trader
	Profile(ctx context.Context, address string) (*Profile, error)

	// Name returns the name of the data source
	Name() string
}

// Timeframe is a chart window in days.
type Timeframe int

// Supported timeframes.
const (
	Timeframe7D  Timeframe = 7
	Timeframe30D Timeframe = 30
	Timeframe90D Timeframe = 90
)

// ParseTimeframe accepts 7, 30 or 90.
func ParseTimeframe(days int) (Timeframe, error) {
	switch Timeframe(days) {
	case Timeframe7D, Timeframe30D, Timeframe90D:
		return Timeframe(days), nil
	default:
		return 0, fmt.Errorf("unsupported timeframe %d: must be 7, 30 or 90", days)
	}
}

// PNLPoint is one sample of cumulative realized P&L.
type PNLPoint struct {
	T int64   `json:"t"` // unix seconds
	P float64 `json:"p"`
}

// Position is an open or closed market position.
type Position struct {
	ProxyWallet  string  `json:"proxyWallet"`
	Asset        string  `json:"asset"`
	ConditionID  string  `json:"conditionId"`
	Title        string  `json:"title"`
	Slug         string  `json:"slug"`
	Outcome      string  `json:"outcome"`
	Size         float64 `json:"size"`
	AvgPrice     float64 `json:"avgPrice"`
	CurPrice     float64 `json:"curPrice"`
	InitialValue float64 `json:"initialValue"`
	CurrentValue float64 `json:"currentValue"`
	CashPnl      float64 `json:"cashPnl"`
	PercentPnl   float64 `json:"percentPnl"`
	RealizedPnl  float64 `json:"realizedPnl"`
	Redeemable   bool    `json:"redeemable"`
	EndDate      string  `json:"endDate"`
}

// IsClosed reports whether the position is redeemable or fully exited.
func (p *Position) IsClosed() bool {
	return p.Redeemable || p.Size == 0
}

// Trade is a single fill.
type Trade struct {
	ProxyWallet     string  `json:"proxyWallet"`
	Side            string  `json:"side"`
	Asset           string  `json:"asset"`
	ConditionID     string  `json:"conditionId"`
	Size            float64 `json:"size"`
	Price           float64 `json:"price"`
	Timestamp       int64   `json:"timestamp"`
	Title           string  `json:"title"`
	Outcome         string  `json:"outcome"`
	TransactionHash string  `json:"transactionHash"`
}

// Profile is a trader's display identity.
type Profile struct {
	Name                  string  `json:"name"`
	Pseudonym             string  `json:"pseudonym"`
	ProfileImage          *string `json:"profileImage"`
	ProfileImageOptimized *string `json:"profileImageOptimized"`
	Bio                   string  `json:"bio,omitempty"`
}

// UnknownProfile is returned when a trader has no recorded activity.
func UnknownProfile() *Profile {
	return &Profile{Name: "Unknown Trader", Pseudonym: "Unknown"}
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrCodeInvalidAddress    = "invalid_address"
	ErrCodeNotFound          = "not_found"
	ErrCodeInvalidData       = "invalid_data"
	ErrCodeNetworkError      = "network_error"
	ErrCodeServerError       = "server_error"
)

// Sentinel errors
var (
	ErrInvalidAddress = errors.New("invalid trader address")
	ErrNotFound       = errors.New("data not found")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
