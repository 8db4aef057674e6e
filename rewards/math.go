package rewards

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// WAD is the fixed-point scale of vote weights and multipliers
var WAD = decimal.New(1, 18)

var wadInt = big.NewInt(1_000_000_000_000_000_000)

// Sqrt returns the truncated square root of x in WAD fixed point: both x and the result
// carry 18 implied decimals, so Sqrt(4e18) == 2e18.
func Sqrt(x decimal.Decimal) decimal.Decimal {
	if !x.IsPositive() {
		return decimal.Zero
	}
	v := new(big.Int).Mul(x.BigInt(), wadInt)
	v.Sqrt(v)
	return decimal.NewFromBigInt(v, 0)
}

// MulDiv returns a*b/c truncated toward zero; c must be positive
func MulDiv(a, b, c decimal.Decimal) decimal.Decimal {
	q, _ := a.Mul(b).QuoRem(c, 0)
	return q
}
