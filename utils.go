package blueocean

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

// ErrAmountNotIntegral is returned when a decimal amount does not fit
// the token's smallest unit exactly.
var ErrAmountNotIntegral = errors.New("amount is not an integral number of base units")

// AmountToUnits converts a human-readable decimal amount into integer
// base units for a token with the given number of decimals. The
// conversion must be exact.
func AmountToUnits(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	shifted := amount.Shift(decimals)
	if !shifted.IsInteger() {
		return nil, ErrAmountNotIntegral
	}
	return shifted.BigInt(), nil
}

// UnitsToAmount converts integer base units back into a decimal amount.
func UnitsToAmount(units *big.Int, decimals int32) decimal.Decimal {
	if units == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(units, 0).Shift(-decimals)
}

// BasisPointFee returns the fee charged on price at the given rate in
// basis points, matching the rounding used during settlement.
func BasisPointFee(price *big.Int, rateBps int64) *big.Int {
	return basisPoints(big.NewInt(rateBps), price)
}
