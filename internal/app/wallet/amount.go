package wallet

import (
	"math"

	"casino-wallet/internal/ledger"

	"github.com/shopspring/decimal"
)

// Amounts travel as decimal currency units ("12.50") and are stored as
// integer cents.
const minorDigits = 2

var (
	minorScale = decimal.New(1, minorDigits)
	maxMinor   = decimal.NewFromInt(math.MaxInt64)
)

// ToMinor converts a currency amount to minor units. Sub-cent precision and
// out-of-range values are rejected rather than rounded.
func ToMinor(d decimal.Decimal) (int64, error) {
	scaled := d.Mul(minorScale)
	if !scaled.IsInteger() || scaled.Abs().GreaterThan(maxMinor) {
		return 0, ledger.ErrInvalidAmount
	}
	return scaled.IntPart(), nil
}

func positiveMinor(d decimal.Decimal) (int64, error) {
	v, err := ToMinor(d)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, ledger.ErrInvalidAmount
	}
	return v, nil
}

func FormatMinor(v int64) string {
	return decimal.New(v, -minorDigits).StringFixed(minorDigits)
}
