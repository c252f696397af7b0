// Package numbers holds the checked integer arithmetic used by the ledger.
//
// Monetary amounts are uint64. Intermediate products and the reward
// accumulator are held in uint256.Int and bounded to 128 bits, so any value
// that would wrap surfaces as ledgerErrors.ErrMathOverflow instead.
package numbers

import (
	"fmt"
	"math/bits"

	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// MaxU128Bits is the width of the persisted reward accumulator.
const MaxU128Bits = 128

// CheckedAdd returns a + b or ErrMathOverflow.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ledgerErrors.ErrMathOverflow
	}
	return sum, nil
}

// CheckedSub returns a - b or ErrMathOverflow when b > a.
func CheckedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ledgerErrors.ErrMathOverflow
	}
	return diff, nil
}

// MulDiv computes a * b / denominator with a 128-bit intermediate.
//
// Parameters:
//   - a, b: factors
//   - denominator: divisor, must be non-zero
//
// Returns:
//   - uint64: the truncated quotient
//   - error: ErrMathOverflow if the divisor is zero or the quotient exceeds 64 bits
func MulDiv(a, b, denominator uint64) (uint64, error) {
	if denominator == 0 {
		return 0, ledgerErrors.ErrMathOverflow
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= denominator {
		return 0, ledgerErrors.ErrMathOverflow
	}
	quo, _ := bits.Div64(hi, lo, denominator)
	return quo, nil
}

// NewU128 returns a zero valued accumulator.
func NewU128() *uint256.Int {
	return uint256.NewInt(0)
}

// FitsU128 reports whether x can be persisted in a 16 byte field.
func FitsU128(x *uint256.Int) bool {
	return x.BitLen() <= MaxU128Bits
}

// AddU128 returns a + b, failing when the sum no longer fits in 128 bits.
func AddU128(a, b *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow || !FitsU128(sum) {
		return nil, ledgerErrors.ErrMathOverflow
	}
	return sum, nil
}

// SubU128 returns a - b, failing when b > a.
func SubU128(a, b *uint256.Int) (*uint256.Int, error) {
	diff, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, ledgerErrors.ErrMathOverflow
	}
	return diff, nil
}

// ScaledQuotient computes amount * scale / denominator as a 128-bit value.
func ScaledQuotient(amount, scale, denominator uint64) (*uint256.Int, error) {
	if denominator == 0 {
		return nil, ledgerErrors.ErrMathOverflow
	}
	product := new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(scale))
	q := product.Div(product, uint256.NewInt(denominator))
	if !FitsU128(q) {
		return nil, ledgerErrors.ErrMathOverflow
	}
	return q, nil
}

// ScaleDown computes x * factor / scale and requires the result to fit in uint64.
// x is expected to be at most 128 bits wide, so the product stays well inside 256 bits.
func ScaleDown(x *uint256.Int, factor, scale uint64) (uint64, error) {
	if scale == 0 || !FitsU128(x) {
		return 0, ledgerErrors.ErrMathOverflow
	}
	product := new(uint256.Int).Mul(x, uint256.NewInt(factor))
	q := product.Div(product, uint256.NewInt(scale))
	if !q.IsUint64() {
		return 0, ledgerErrors.ErrMathOverflow
	}
	return q.Uint64(), nil
}

// FormatTokenAmount renders a raw token amount with the mint's decimals applied.
func FormatTokenAmount(amount uint64, decimals uint8) string {
	return decimal.NewFromUint64(amount).Shift(-int32(decimals)).String()
}

// ParseTokenAmount converts a human readable amount into raw token units.
// Fractional digits beyond the mint's precision are rejected.
func ParseTokenAmount(amount string, decimals uint8) (uint64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, err
	}
	raw := d.Shift(int32(decimals))
	if !raw.Equal(raw.Truncate(0)) {
		return 0, fmt.Errorf("amount '%s' has more than %d decimal places", amount, decimals)
	}
	if raw.IsNegative() {
		return 0, fmt.Errorf("amount '%s' is negative", amount)
	}
	bi := raw.BigInt()
	if !bi.IsUint64() {
		return 0, ledgerErrors.ErrMathOverflow
	}
	return bi.Uint64(), nil
}
