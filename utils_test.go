package blueocean

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountToUnits(t *testing.T) {
	units, err := AmountToUnits(decimal.RequireFromString("1.5"), 18)
	require.NoError(t, err)
	want, _ := new(big.Int).SetString("1500000000000000000", 10)
	assert.Zero(t, units.Cmp(want))
}

func TestAmountToUnitsRejectsFractionalBaseUnits(t *testing.T) {
	_, err := AmountToUnits(decimal.RequireFromString("0.0001"), 2)
	assert.ErrorIs(t, err, ErrAmountNotIntegral)
}

func TestUnitsToAmountRoundTrip(t *testing.T) {
	amount := decimal.RequireFromString("123.456789")
	units, err := AmountToUnits(amount, 6)
	require.NoError(t, err)
	assert.True(t, amount.Equal(UnitsToAmount(units, 6)))
}

func TestUnitsToAmountNil(t *testing.T) {
	assert.True(t, UnitsToAmount(nil, 18).IsZero())
}

func TestBasisPointFee(t *testing.T) {
	fee := BasisPointFee(big.NewInt(10000), 100)
	assert.Zero(t, fee.Cmp(big.NewInt(100)))

	fee = BasisPointFee(big.NewInt(10000), 250)
	assert.Zero(t, fee.Cmp(big.NewInt(250)))

	// Integer division truncates sub-unit fees.
	fee = BasisPointFee(big.NewInt(99), 100)
	assert.Zero(t, fee.Sign())
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}
