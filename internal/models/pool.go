package models

import (
	"fmt"
	"time"
)

// PoolStatus represents the lifecycle status of a pool
type PoolStatus string

const (
	PoolStatusActive    PoolStatus = "active"
	PoolStatusLocked    PoolStatus = "locked"
	PoolStatusSettled   PoolStatus = "settled"
	PoolStatusCancelled PoolStatus = "cancelled"
)

// Default bet bounds applied when the backend omits them.
var (
	DefaultMinBet = Lamports(10_000_000)           // 0.01 SOL
	DefaultMaxBet = Lamports(100 * LamportsPerSOL) // 100 SOL
)

// TraderChoice identifies the side of a pool: 0 backs trader A, 1 backs trader B.
type TraderChoice int

const (
	TraderA TraderChoice = 0
	TraderB TraderChoice = 1
)

// Side returns "A" or "B".
func (c TraderChoice) Side() string {
	if c == TraderA {
		return "A"
	}
	return "B"
}

// Valid reports whether c is one of the two sides.
func (c TraderChoice) Valid() bool {
	return c == TraderA || c == TraderB
}

func (c TraderChoice) String() string {
	return "trader " + c.Side()
}

// ParseTraderChoice accepts "A", "B", "0" or "1" (case-insensitive).
func ParseTraderChoice(s string) (TraderChoice, error) {
	switch s {
	case "A", "a", "0":
		return TraderA, nil
	case "B", "b", "1":
		return TraderB, nil
	default:
		return 0, fmt.Errorf("%w: unknown side %q", ErrInvalidInput, s)
	}
}

// Pool is a client-side projection of one head-to-head wagering market.
// Ratios and odds are derived by the betting package; the wire values for
// them are ignored.
type Pool struct {
	ID              string        `json:"id" validate:"required"`
	PoolNumber      int64         `json:"poolNumber"`
	RumbleID        string        `json:"rumbleId,omitempty"`
	TraderAAddress  string        `json:"traderAAddress"`
	TraderBAddress  string        `json:"traderBAddress"`
	PoolATotal      Lamports      `json:"poolATotal"`
	PoolBTotal      Lamports      `json:"poolBTotal"`
	TotalPoolSize   Lamports      `json:"totalPoolSize"`
	Status          PoolStatus    `json:"status" validate:"required,oneof=active locked settled cancelled"`
	BettingOpensAt  *int64        `json:"bettingOpensAt,omitempty"`
	BettingClosesAt *int64        `json:"bettingClosesAt,omitempty"`
	MinBetAmount    *Lamports     `json:"minBetAmount,omitempty"`
	MaxBetAmount    *Lamports     `json:"maxBetAmount,omitempty"`
	WinningChoice   *TraderChoice `json:"winningChoice,omitempty"`
}

// SideTotal returns the staked total for the given side.
func (p *Pool) SideTotal(choice TraderChoice) Lamports {
	if choice == TraderA {
		return p.PoolATotal
	}
	return p.PoolBTotal
}

// Total returns the pool size, falling back to the sum of both sides when the
// backend sent no total.
func (p *Pool) Total() Lamports {
	if p.TotalPoolSize == 0 {
		return p.PoolATotal + p.PoolBTotal
	}
	return p.TotalPoolSize
}

// TraderAddress returns the trader identifier for a side.
func (p *Pool) TraderAddress(choice TraderChoice) string {
	if choice == TraderA {
		return p.TraderAAddress
	}
	return p.TraderBAddress
}

// MinBet returns the minimum stake, defaulted when absent.
func (p *Pool) MinBet() Lamports {
	if p.MinBetAmount == nil || *p.MinBetAmount == 0 {
		return DefaultMinBet
	}
	return *p.MinBetAmount
}

// MaxBet returns the maximum stake, defaulted when absent.
func (p *Pool) MaxBet() Lamports {
	if p.MaxBetAmount == nil || *p.MaxBetAmount == 0 {
		return DefaultMaxBet
	}
	return *p.MaxBetAmount
}

// ClosesAt returns the close time of the betting window if one is set.
func (p *Pool) ClosesAt() (time.Time, bool) {
	if p.BettingClosesAt == nil || *p.BettingClosesAt == 0 {
		return time.Time{}, false
	}
	return time.Unix(*p.BettingClosesAt, 0), true
}

// IsActive checks if the pool accepts bets by status alone
func (p *Pool) IsActive() bool {
	return p.Status == PoolStatusActive
}
