package utils

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ToDecimal scales a raw on-chain amount down by 10^decimals.
// Example: amount=1234500000000000000, decimals=18 => 1.2345
func ToDecimal(amount *big.Int, decimals int32) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -decimals)
}

// ToUnits is ToDecimal as a float64, the representation stored in balance series.
func ToUnits(amount *big.Int, decimals int32) float64 {
	return ToDecimal(amount, decimals).InexactFloat64()
}

// FormatBigInt renders a raw amount in token units without trailing zeros.
func FormatBigInt(amount *big.Int, decimals int32) string {
	return ToDecimal(amount, decimals).String()
}

// Ratio divides two raw amounts with their own decimals. Returns zero when the
// denominator is zero.
func Ratio(num *big.Int, numDecimals int32, den *big.Int, denDecimals int32) decimal.Decimal {
	d := ToDecimal(den, denDecimals)
	if d.IsZero() {
		return decimal.Zero
	}
	return ToDecimal(num, numDecimals).DivRound(d, 18)
}
