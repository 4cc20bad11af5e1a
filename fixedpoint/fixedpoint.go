// Package fixedpoint implements the signed fixed-point arithmetic shared by
// the market, position, and vault packages. Every monetary amount in the
// engine is a signed *big.Int expressed at one of two scalars:
//
//	S7  = 1e7  for prices, collateral, notional, fees, and ratios
//	S18 = 1e18 for cumulative interest indices and hourly-rate arithmetic
//
// Every multiply-then-divide that mixes scalars must pick an explicit
// rounding direction (floor or ceil); the two are never interchangeable once
// fee math depends on exact-equality assertions.
package fixedpoint

import "math/big"

var (
	// S7 scales prices, collateral, notional, fees, and ratios.
	S7 = big.NewInt(10_000_000)
	// S18 scales cumulative interest indices and hourly rate arithmetic.
	S18 = mustPow10(18)

	zero = big.NewInt(0)
	one  = big.NewInt(1)
	two  = big.NewInt(2)
)

func mustPow10(exp int) *big.Int {
	ten := big.NewInt(10)
	return new(big.Int).Exp(ten, big.NewInt(int64(exp)), nil)
}

// New returns a fresh *big.Int with the given int64 value, so callers never
// accidentally alias a shared constant.
func New(v int64) *big.Int { return big.NewInt(v) }

// Zero reports whether x is nil or equal to zero.
func Zero(x *big.Int) bool { return x == nil || x.Sign() == 0 }

// Clone returns a defensive copy of x, or a fresh zero if x is nil.
func Clone(x *big.Int) *big.Int {
	if x == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(x)
}

// Add returns a + b, treating nil operands as zero.
func Add(a, b *big.Int) *big.Int {
	return new(big.Int).Add(orZero(a), orZero(b))
}

// Sub returns a - b, treating nil operands as zero.
func Sub(a, b *big.Int) *big.Int {
	return new(big.Int).Sub(orZero(a), orZero(b))
}

// Neg returns -a, treating a nil operand as zero.
func Neg(a *big.Int) *big.Int {
	return new(big.Int).Neg(orZero(a))
}

// Abs returns |a|.
func Abs(a *big.Int) *big.Int {
	return new(big.Int).Abs(orZero(a))
}

// Max returns the larger of a and b.
func Max(a, b *big.Int) *big.Int {
	if orZero(a).Cmp(orZero(b)) >= 0 {
		return Clone(a)
	}
	return Clone(b)
}

// Min returns the smaller of a and b.
func Min(a, b *big.Int) *big.Int {
	if orZero(a).Cmp(orZero(b)) <= 0 {
		return Clone(a)
	}
	return Clone(b)
}

// MaxZero returns max(0, a).
func MaxZero(a *big.Int) *big.Int {
	return Max(a, zero)
}

func orZero(x *big.Int) *big.Int {
	if x == nil {
		return zero
	}
	return x
}

// MulDivFloor computes floor(a*b/d). d must be positive.
func MulDivFloor(a, b, d *big.Int) *big.Int {
	if d == nil || d.Sign() == 0 {
		return big.NewInt(0)
	}
	num := new(big.Int).Mul(orZero(a), orZero(b))
	q, r := new(big.Int).QuoRem(num, d, new(big.Int))
	// big.Int.QuoRem truncates toward zero; floor division must round
	// down (toward -inf) when the remainder is non-zero and the operands'
	// signs differ.
	if r.Sign() != 0 && (r.Sign() < 0) != (d.Sign() < 0) {
		q.Sub(q, one)
	}
	return q
}

// MulDivCeil computes ceil(a*b/d). d must be positive.
func MulDivCeil(a, b, d *big.Int) *big.Int {
	if d == nil || d.Sign() == 0 {
		return big.NewInt(0)
	}
	num := new(big.Int).Mul(orZero(a), orZero(b))
	q, r := new(big.Int).QuoRem(num, d, new(big.Int))
	if r.Sign() != 0 && (r.Sign() < 0) == (d.Sign() < 0) {
		q.Add(q, one)
	}
	return q
}

// DivFloor computes floor(a/d).
func DivFloor(a, d *big.Int) *big.Int {
	return MulDivFloor(a, one, d)
}

// DivCeil computes ceil(a/d).
func DivCeil(a, d *big.Int) *big.Int {
	return MulDivCeil(a, one, d)
}

// MulS7Floor computes floor(a*b/S7), the usual rule for combining two S7
// quantities (e.g. notional * rate) back down to S7.
func MulS7Floor(a, b *big.Int) *big.Int { return MulDivFloor(a, b, S7) }

// MulS7Ceil computes ceil(a*b/S7).
func MulS7Ceil(a, b *big.Int) *big.Int { return MulDivCeil(a, b, S7) }

// MulS18Floor computes floor(a*b/S18).
func MulS18Floor(a, b *big.Int) *big.Int { return MulDivFloor(a, b, S18) }

// Half returns ceil(a/2).
func Half(a *big.Int) *big.Int {
	return MulDivCeil(a, one, two)
}

// InRange reports whether lo <= x <= hi (inclusive). A nil hi means no upper
// bound.
func InRange(x, lo, hi *big.Int) bool {
	if orZero(x).Cmp(orZero(lo)) < 0 {
		return false
	}
	if hi != nil && orZero(x).Cmp(hi) > 0 {
		return false
	}
	return true
}
