package datasource

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
)

// GrowthPoint is P&L change relative to the first sample of a window.
type GrowthPoint struct {
	Timestamp  int64
	Percentage float64
	Value      float64
}

// PercentageGrowth expresses each sample as the percentage change from the
// first sample at or after commonStart (0 means no cutoff). The base is the
// absolute first P&L, or 100 when that is zero.
func PercentageGrowth(points []PNLPoint, commonStart int64) []GrowthPoint {
	filtered := points
	if commonStart > 0 {
		filtered = make([]PNLPoint, 0, len(points))
		for _, p := range points {
			if p.T >= commonStart {
				filtered = append(filtered, p)
			}
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	first := filtered[0].P
	base := math.Abs(first)
	if base == 0 {
		base = 100
	}

	out := make([]GrowthPoint, len(filtered))
	for i, p := range filtered {
		out[i] = GrowthPoint{
			Timestamp:  p.T,
			Percentage: (p.P - first) / base * 100,
			Value:      p.P,
		}
	}
	return out
}

// CommonStart returns the later of the two series' first timestamps so both
// traders are compared over the same window.
func CommonStart(a, b []PNLPoint) int64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if a[0].T > b[0].T {
		return a[0].T
	}
	return b[0].T
}

// ComparisonPoint aligns both traders' growth at one timestamp.
type ComparisonPoint struct {
	Timestamp int64
	APercent  float64
	BPercent  float64
	AValue    float64
	BValue    float64
}

// MergeGrowth joins two growth series by timestamp, sorted ascending. A side
// with no sample at a timestamp reports zero.
func MergeGrowth(a, b []GrowthPoint) []ComparisonPoint {
	byTS := make(map[int64]*ComparisonPoint, len(a)+len(b))
	for _, p := range a {
		byTS[p.Timestamp] = &ComparisonPoint{Timestamp: p.Timestamp, APercent: p.Percentage, AValue: p.Value}
	}
	for _, p := range b {
		cp, ok := byTS[p.Timestamp]
		if !ok {
			cp = &ComparisonPoint{Timestamp: p.Timestamp}
			byTS[p.Timestamp] = cp
		}
		cp.BPercent = p.Percentage
		cp.BValue = p.Value
	}

	out := make([]ComparisonPoint, 0, len(byTS))
	for _, cp := range byTS {
		out = append(out, *cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// WinRate is the percentage of closed positions with positive cash P&L.
func WinRate(positions []Position) float64 {
	closed, wins := 0, 0
	for i := range positions {
		if !positions[i].IsClosed() {
			continue
		}
		closed++
		if positions[i].CashPnl > 0 {
			wins++
		}
	}
	if closed == 0 {
		return 0
	}
	return float64(wins) / float64(closed) * 100
}

// TotalPnl sums cash P&L and current value across positions.
func TotalPnl(positions []Position) (totalPnl, totalValue float64) {
	for i := range positions {
		totalPnl += positions[i].CashPnl
		totalValue += positions[i].CurrentValue
	}
	return totalPnl, totalValue
}

// AvgPositionSize is the mean current value of positions.
func AvgPositionSize(positions []Position) float64 {
	if len(positions) == 0 {
		return 0
	}
	_, total := TotalPnl(positions)
	return total / float64(len(positions))
}

// ActivePositions counts positions still open.
func ActivePositions(positions []Position) int {
	n := 0
	for i := range positions {
		if !positions[i].Redeemable && positions[i].Size > 0 {
			n++
		}
	}
	return n
}

// TopPositions returns the n positions with the highest cash P&L.
func TopPositions(positions []Position, n int) []Position {
	sorted := make([]Position, len(positions))
	copy(sorted, positions)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CashPnl > sorted[j].CashPnl })
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// TraderMetrics summarises a trader for side-by-side display.
type TraderMetrics struct {
	PortfolioValue  float64
	TotalPnl        float64
	TotalPnlPercent float64
	WinRate         float64
	ActivePositions int
	AvgPositionSize float64
}

// TraderData is everything shown for one side of a pool.
type TraderData struct {
	Address   string
	Profile   *Profile
	Metrics   TraderMetrics
	Positions []Position
	PNL       []PNLPoint
}

// FetchTrader loads one trader's profile, value, positions and P&L series
// concurrently. Total P&L is the latest sample of the series.
func FetchTrader(ctx context.Context, src MarketData, address string, timeframe Timeframe) (*TraderData, error) {
	addr, err := ValidateTraderAddress(address)
	if err != nil {
		return nil, err
	}

	data := &TraderData{Address: addr}
	var value float64

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data.PNL, err = src.PNL(ctx, addr, timeframe)
		return err
	})
	g.Go(func() error {
		var err error
		value, err = src.PortfolioValue(ctx, addr)
		return err
	})
	g.Go(func() error {
		var err error
		data.Positions, err = src.Positions(ctx, addr)
		return err
	})
	g.Go(func() error {
		var err error
		data.Profile, err = src.Profile(ctx, addr)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch trader %s: %w", ShortAddress(addr), err)
	}

	var totalPnl float64
	if n := len(data.PNL); n > 0 {
		totalPnl = data.PNL[n-1].P
	}
	var pct float64
	if value > 0 {
		pct = totalPnl / value * 100
	}

	data.Metrics = TraderMetrics{
		PortfolioValue:  value,
		TotalPnl:        totalPnl,
		TotalPnlPercent: pct,
		WinRate:         WinRate(data.Positions),
		ActivePositions: ActivePositions(data.Positions),
		AvgPositionSize: AvgPositionSize(data.Positions),
	}
	return data, nil
}

// Comparison holds both traders of a pool and their aligned growth curves.
type Comparison struct {
	A      *TraderData
	B      *TraderData
	Series []ComparisonPoint
}

// Compare fetches both traders concurrently and aligns their P&L growth from
// a common start.
func Compare(ctx context.Context, src MarketData, addressA, addressB string, timeframe Timeframe) (*Comparison, error) {
	var a, b *TraderData

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a, err = FetchTrader(gctx, src, addressA, timeframe)
		return err
	})
	g.Go(func() error {
		var err error
		b, err = FetchTrader(gctx, src, addressB, timeframe)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	start := CommonStart(a.PNL, b.PNL)
	return &Comparison{
		A:      a,
		B:      b,
		Series: MergeGrowth(PercentageGrowth(a.PNL, start), PercentageGrowth(b.PNL, start)),
	}, nil
}
