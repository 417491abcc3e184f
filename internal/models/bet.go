package models

import (
	"time"
)

// BetStatus represents the status of a confirmed bet
type BetStatus string

const (
	BetStatusPending   BetStatus = "pending"
	BetStatusConfirmed BetStatus = "confirmed"
	BetStatusSettled   BetStatus = "settled"
	BetStatusCancelled BetStatus = "cancelled"
)

// Bet is the read-only projection of a bet owned by the backend ledger
type Bet struct {
	ID                   string       `db:"id" json:"id"`
	PoolID               string       `db:"pool_id" json:"poolId" validate:"required"`
	WalletAddress        string       `db:"wallet_address" json:"walletAddress"`
	TraderChoice         TraderChoice `db:"trader_choice" json:"traderChoice" validate:"oneof=0 1"`
	Amount               Lamports     `db:"amount" json:"amount" validate:"required"`
	Odds                 float64      `db:"odds" json:"odds"`
	PotentialPayout      Lamports     `db:"potential_payout" json:"potentialPayout"`
	Status               BetStatus    `db:"status" json:"status"`
	TransactionSignature string       `db:"transaction_signature" json:"transactionSignature,omitempty"`
	SettledAmount        *Lamports    `db:"settled_amount" json:"settledAmount,omitempty"`
	CreatedAt            time.Time    `db:"created_at" json:"createdAt"`
	SettledAt            *time.Time   `db:"settled_at" json:"settledAt,omitempty"`
}

// IsSettled checks if the bet has been settled
func (b *Bet) IsSettled() bool {
	return b.Status == BetStatusSettled && b.SettledAt != nil
}

// ProfitLoss returns settled amount minus stake in lamports. Unsettled bets
// report zero.
func (b *Bet) ProfitLoss() int64 {
	if !b.IsSettled() || b.SettledAmount == nil {
		return 0
	}
	return int64(*b.SettledAmount) - int64(b.Amount)
}

// PlaceBetRequest is sent to the backend to place a bet
type PlaceBetRequest struct {
	PoolID       string       `json:"poolId" validate:"required"`
	Amount       Lamports     `json:"amount" validate:"required,gt=0"`
	TraderChoice TraderChoice `json:"traderChoice" validate:"oneof=0 1"`
}

// SimulateRequest asks the backend for a non-committing payout preview
type SimulateRequest struct {
	PoolID       string       `json:"poolId"`
	Amount       Lamports     `json:"amount"`
	TraderChoice TraderChoice `json:"traderChoice"`
}

// Simulation is the backend's payout preview for a candidate bet.
type Simulation struct {
	Amount          Lamports     `json:"amount"`
	TraderChoice    TraderChoice `json:"traderChoice"`
	CurrentOdds     float64      `json:"currentOdds"`
	PotentialPayout Lamports     `json:"potentialPayout"`
	PlatformFee     Lamports     `json:"platformFee"`
	NetPayout       Lamports     `json:"netPayout"`
}

// TotalStaked sums the amounts of bets placed on a pool.
func TotalStaked(bets []*Bet, poolID string) Lamports {
	var total Lamports
	for _, b := range bets {
		if b.PoolID == poolID {
			total += b.Amount
		}
	}
	return total
}

// BetsForPool filters bets down to one pool.
func BetsForPool(bets []*Bet, poolID string) []*Bet {
	out := make([]*Bet, 0, len(bets))
	for _, b := range bets {
		if b.PoolID == poolID {
			out = append(out, b)
		}
	}
	return out
}
