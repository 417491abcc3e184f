package datasource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentageGrowth(t *testing.T) {
	tests := []struct {
		name   string
		points []PNLPoint
		start  int64
		want   []float64
	}{
		{name: "empty", points: nil, want: nil},
		{name: "positive base", points: []PNLPoint{{1, 100}, {2, 150}, {3, 50}}, want: []float64{0, 50, -50}},
		{name: "negative base uses absolute value", points: []PNLPoint{{1, -50}, {2, 0}}, want: []float64{0, 100}},
		{name: "zero base uses 100", points: []PNLPoint{{1, 0}, {2, 25}}, want: []float64{0, 25}},
		{name: "common start trims", points: []PNLPoint{{1, 10}, {2, 20}, {3, 40}}, start: 2, want: []float64{0, 100}},
		{name: "common start after data", points: []PNLPoint{{1, 10}}, start: 5, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentageGrowth(tt.points, tt.start)
			require.Len(t, got, len(tt.want))
			for i, w := range tt.want {
				assert.InDelta(t, w, got[i].Percentage, 1e-9)
			}
		})
	}
}

func TestCommonStart(t *testing.T) {
	assert.Equal(t, int64(5), CommonStart([]PNLPoint{{5, 0}}, []PNLPoint{{3, 0}}))
	assert.Equal(t, int64(0), CommonStart(nil, []PNLPoint{{3, 0}}))
}

func TestMergeGrowth(t *testing.T) {
	a := []GrowthPoint{{Timestamp: 2, Percentage: 10}, {Timestamp: 1, Percentage: 0}}
	b := []GrowthPoint{{Timestamp: 2, Percentage: -5}, {Timestamp: 3, Percentage: 7}}

	merged := MergeGrowth(a, b)
	require.Len(t, merged, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{merged[0].Timestamp, merged[1].Timestamp, merged[2].Timestamp})
	assert.Equal(t, 10.0, merged[1].APercent)
	assert.Equal(t, -5.0, merged[1].BPercent)
	assert.Equal(t, 0.0, merged[2].APercent)
}

func TestWinRate(t *testing.T) {
	tests := []struct {
		name      string
		positions []Position
		want      float64
	}{
		{name: "no positions", want: 0},
		{name: "only open", positions: []Position{{Size: 1, CashPnl: 10}}, want: 0},
		{name: "redeemable win", positions: []Position{{Redeemable: true, Size: 3, CashPnl: 1}}, want: 100},
		{name: "mixed", positions: []Position{
			{Redeemable: true, CashPnl: 1},
			{Size: 0, CashPnl: -1},
			{Size: 0, CashPnl: 0},
			{Size: 5, CashPnl: 9},
		}, want: 100.0 / 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, WinRate(tt.positions), 1e-9)
		})
	}
}

func TestPositionAggregates(t *testing.T) {
	positions := []Position{
		{CashPnl: 10, CurrentValue: 100, Size: 1},
		{CashPnl: -4, CurrentValue: 50, Size: 0},
		{CashPnl: 30, CurrentValue: 0, Redeemable: true},
	}

	pnl, value := TotalPnl(positions)
	assert.Equal(t, 36.0, pnl)
	assert.Equal(t, 150.0, value)
	assert.Equal(t, 50.0, AvgPositionSize(positions))
	assert.Equal(t, 0.0, AvgPositionSize(nil))
	assert.Equal(t, 1, ActivePositions(positions))

	top := TopPositions(positions, 2)
	require.Len(t, top, 2)
	assert.Equal(t, 30.0, top[0].CashPnl)
	assert.Equal(t, 10.0, top[1].CashPnl)
	assert.Equal(t, -4.0, positions[1].CashPnl, "input is not reordered")
}

func TestValidateTraderAddress(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{name: "lower case", input: traderA, want: traderA, ok: true},
		{name: "mixed case normalised", input: "0xABCDEFabcdef0123456789ABCDEFabcdef012345", want: "0xabcdefabcdef0123456789abcdefabcdef012345", ok: true},
		{name: "surrounding space", input: "  " + traderB + " ", want: traderB, ok: true},
		{name: "missing prefix", input: "1111111111111111111111111111111111111111"},
		{name: "too short", input: "0x1234"},
		{name: "non hex", input: "0xZZ11111111111111111111111111111111111111"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateTraderAddress(tt.input)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidAddress)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShortAddress(t *testing.T) {
	assert.Equal(t, "0x1111...1111", ShortAddress(traderA))
	assert.Equal(t, "0x12", ShortAddress("0x12"))
}
