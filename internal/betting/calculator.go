// Package betting implements pool odds, payout previews and bet validation.
package betting

import (
	"github.com/shopspring/decimal"

	"github.com/yourusername/trader-arena/internal/models"
)

// evenSplit is the ratio shown for each side of an empty pool.
const evenSplit = 50.0

// PoolRatio returns sideTotal as a percentage of total, or 0 for an empty pool.
func PoolRatio(sideTotal, total models.Lamports) float64 {
	if total == 0 {
		return 0
	}
	r, _ := sideTotal.Decimal().Div(total.Decimal()).Mul(decimal.NewFromInt(100)).Float64()
	return r
}

// CurrentOdds returns total/sideTotal, or 1 when nothing is staked on the side.
func CurrentOdds(total, sideTotal models.Lamports) float64 {
	if sideTotal == 0 {
		return 1
	}
	o, _ := total.Decimal().Div(sideTotal.Decimal()).Float64()
	return o
}

// SimulatedPayout returns the gross payout of bet against the pool as it would
// look after the bet is added to both the side and the total. The result is
// floored to whole lamports.
func SimulatedPayout(bet, total, sideTotal models.Lamports) models.Lamports {
	if bet == 0 {
		return 0
	}
	b := bet.Decimal()
	newTotal := total.Decimal().Add(b)
	newSide := sideTotal.Decimal().Add(b)

	payout, err := models.LamportsFromDecimal(b.Mul(newTotal).Div(newSide))
	if err != nil {
		return 0
	}
	return payout
}

// View holds the derived display state of a pool.
type View struct {
	RatioA float64
	RatioB float64
	OddsA  float64
	OddsB  float64
}

// PoolView derives ratios and odds for both sides. An empty pool is shown as
// an even split.
func PoolView(pool *models.Pool) View {
	total := pool.Total()
	if total == 0 {
		return View{RatioA: evenSplit, RatioB: evenSplit, OddsA: 1, OddsB: 1}
	}
	return View{
		RatioA: PoolRatio(pool.PoolATotal, total),
		RatioB: PoolRatio(pool.PoolBTotal, total),
		OddsA:  CurrentOdds(total, pool.PoolATotal),
		OddsB:  CurrentOdds(total, pool.PoolBTotal),
	}
}

// Odds returns the current odds for one side of the pool.
func (v View) Odds(choice models.TraderChoice) float64 {
	if choice == models.TraderA {
		return v.OddsA
	}
	return v.OddsB
}

// Quote is a payout preview for a candidate bet.
type Quote struct {
	Choice          models.TraderChoice
	Amount          models.Lamports
	CurrentOdds     float64
	PotentialPayout models.Lamports
	PlatformFee     models.Lamports
	NetPayout       models.Lamports
	// FromServer is false for the local preview shown before the backend answers.
	FromServer bool
}

// Preview computes the local quote for a bet. The local preview carries no
// platform fee; only the backend knows it.
func Preview(pool *models.Pool, choice models.TraderChoice, bet models.Lamports) Quote {
	total := pool.Total()
	side := pool.SideTotal(choice)
	payout := SimulatedPayout(bet, total, side)
	return Quote{
		Choice:          choice,
		Amount:          bet,
		CurrentOdds:     CurrentOdds(total, side),
		PotentialPayout: payout,
		NetPayout:       payout,
	}
}

// Reconcile picks the quote to display: the server simulation when one exists
// for the same bet, otherwise the local preview.
func Reconcile(local Quote, server *models.Simulation) Quote {
	if server == nil || server.Amount != local.Amount || server.TraderChoice != local.Choice {
		return local
	}
	return Quote{
		Choice:          server.TraderChoice,
		Amount:          server.Amount,
		CurrentOdds:     server.CurrentOdds,
		PotentialPayout: server.PotentialPayout,
		PlatformFee:     server.PlatformFee,
		NetPayout:       server.NetPayout,
		FromServer:      true,
	}
}
