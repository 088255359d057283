package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ToSmallestUnit scales a human-readable amount into the token's integer
// representation, truncating anything below one smallest unit.
func ToSmallestUnit(amount decimal.Decimal, decimals int) *big.Int {
	return amount.Shift(int32(decimals)).Truncate(0).BigInt()
}

// FromSmallestUnit is the inverse of ToSmallestUnit.
func FromSmallestUnit(amount *big.Int, decimals int) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -int32(decimals))
}
