package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSOL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Lamports
		wantErr  bool
	}{
		{name: "whole amount", input: "10", expected: 10 * LamportsPerSOL},
		{name: "fractional amount", input: "1.5", expected: 1_500_000_000},
		{name: "truncates sub-lamport digits", input: "0.0000000019", expected: 1},
		{name: "never rounds up", input: "4.9999999999", expected: 4_999_999_999},
		{name: "surrounding whitespace", input: " 0.01 ", expected: 10_000_000},
		{name: "zero", input: "0", expected: 0},
		{name: "negative", input: "-1", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "infinity", input: "Inf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSOL(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidAmount))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLamportsFormatting(t *testing.T) {
	l := Lamports(15_714_285_714)

	assert.Equal(t, "15714285714", l.String())
	assert.Equal(t, "15.71", l.FormatSOL(2))
	assert.Equal(t, "15.7142857140", l.FormatSOL(10))
	assert.InDelta(t, 15.714285714, l.Float64(), 1e-12)
	assert.True(t, l.SOL().Equal(l.Decimal().Shift(-9)))
}

func TestLamportsJSON(t *testing.T) {
	t.Run("marshals as string", func(t *testing.T) {
		data, err := json.Marshal(Lamports(18_446_744_073_709_551_615))
		require.NoError(t, err)
		assert.Equal(t, `"18446744073709551615"`, string(data))
	})

	t.Run("accepts strings numbers and null", func(t *testing.T) {
		var payload struct {
			A Lamports  `json:"a"`
			B Lamports  `json:"b"`
			C Lamports  `json:"c"`
			D *Lamports `json:"d"`
		}
		err := json.Unmarshal([]byte(`{"a":"60000000000","b":40000000000,"c":null,"d":"5"}`), &payload)
		require.NoError(t, err)
		assert.Equal(t, Lamports(60_000_000_000), payload.A)
		assert.Equal(t, Lamports(40_000_000_000), payload.B)
		assert.Equal(t, Lamports(0), payload.C)
		require.NotNil(t, payload.D)
		assert.Equal(t, Lamports(5), *payload.D)
	})

	t.Run("rejects fractional lamports", func(t *testing.T) {
		var l Lamports
		err := json.Unmarshal([]byte(`"1.5"`), &l)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestParseTraderChoice(t *testing.T) {
	for _, in := range []string{"A", "a", "0"} {
		c, err := ParseTraderChoice(in)
		require.NoError(t, err)
		assert.Equal(t, TraderA, c)
	}
	for _, in := range []string{"B", "b", "1"} {
		c, err := ParseTraderChoice(in)
		require.NoError(t, err)
		assert.Equal(t, TraderB, c)
	}

	_, err := ParseTraderChoice("C")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "A", TraderA.Side())
	assert.Equal(t, "B", TraderB.Side())
}

func TestPoolDefaults(t *testing.T) {
	pool := &Pool{ID: "p1", PoolATotal: 3, PoolBTotal: 4}

	assert.Equal(t, DefaultMinBet, pool.MinBet())
	assert.Equal(t, DefaultMaxBet, pool.MaxBet())
	assert.Equal(t, Lamports(7), pool.Total())

	_, ok := pool.ClosesAt()
	assert.False(t, ok)

	min := Lamports(1_000)
	closes := int64(1_700_000_000)
	pool.MinBetAmount = &min
	pool.BettingClosesAt = &closes
	assert.Equal(t, min, pool.MinBet())
	at, ok := pool.ClosesAt()
	assert.True(t, ok)
	assert.Equal(t, closes, at.Unix())
}

func TestTotalStaked(t *testing.T) {
	bets := []*Bet{
		{PoolID: "p1", Amount: 100},
		{PoolID: "p2", Amount: 50},
		{PoolID: "p1", Amount: 25},
	}

	assert.Equal(t, Lamports(125), TotalStaked(bets, "p1"))
	assert.Len(t, BetsForPool(bets, "p2"), 1)
	assert.Empty(t, BetsForPool(bets, "p3"))
}
