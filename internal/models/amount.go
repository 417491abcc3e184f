package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// LamportsPerSOL is the number of smallest units in one SOL.
const LamportsPerSOL = 1_000_000_000

// solExponent is the decimal shift between SOL and lamports.
const solExponent = 9

// Lamports is an amount in the smallest currency unit. All monetary values that
// cross a package boundary use this type; SOL values exist only for display.
type Lamports uint64

// ParseSOL converts a user-entered SOL amount into lamports using
// floor(amount x 10^9). Negative amounts are rejected.
func ParseSOL(s string) (Lamports, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}
	return LamportsFromSOL(d)
}

// LamportsFromSOL floors a SOL decimal to whole lamports.
func LamportsFromSOL(sol decimal.Decimal) (Lamports, error) {
	if sol.IsNegative() {
		return 0, fmt.Errorf("%w: negative amount %s", ErrInvalidAmount, sol.String())
	}
	return LamportsFromDecimal(sol.Shift(solExponent))
}

// LamportsFromDecimal floors a decimal lamport value to an integer.
func LamportsFromDecimal(d decimal.Decimal) (Lamports, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative amount %s", ErrInvalidAmount, d.String())
	}
	i := d.Floor().BigInt()
	if !i.IsUint64() {
		return 0, fmt.Errorf("%w: %s overflows lamports", ErrInvalidAmount, d.String())
	}
	return Lamports(i.Uint64()), nil
}

// MustSOL is ParseSOL for constants; it panics on malformed input.
func MustSOL(s string) Lamports {
	l, err := ParseSOL(s)
	if err != nil {
		panic(err)
	}
	return l
}

// Decimal returns the amount as an exact decimal in lamports.
func (l Lamports) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(l)), 0)
}

// SOL returns the exact SOL value.
func (l Lamports) SOL() decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(l)), -solExponent)
}

// Float64 is a display-only conversion to SOL.
func (l Lamports) Float64() float64 {
	f, _ := l.SOL().Float64()
	return f
}

// FormatSOL renders the amount in SOL with a fixed number of decimals.
func (l Lamports) FormatSOL(decimals int32) string {
	return l.SOL().StringFixed(decimals)
}

// String returns the decimal lamport count.
func (l Lamports) String() string {
	return strconv.FormatUint(uint64(l), 10)
}

// MarshalJSON encodes the amount as a decimal string so that values above
// 2^53 survive JSON consumers that use doubles.
func (l Lamports) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts a decimal string, an integer number or null.
func (l *Lamports) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = 0
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if raw == "" {
			*l = 0
			return nil
		}
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: lamports %q", ErrInvalidAmount, raw)
	}
	*l = Lamports(v)
	return nil
}
