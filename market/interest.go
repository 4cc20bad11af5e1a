package market

import (
	"math/big"

	"github.com/zenith-protocols/zenex-engine/fixedpoint"
)

// discount is the imbalance correction factor applied to the minority
// side's credited rate: 0.8 * S18 (spec §4.3 step 2).
var discount = func() *big.Int {
	d := new(big.Int).Mul(fixedpoint.S18, big.NewInt(8))
	return d.Div(d, big.NewInt(10))
}()

// ImbalanceRates computes the signed per-hour rate (S18) applied to the
// long and short cumulative interest indices, given the asset's static base
// hourly rate and the current aggregate notional on each side. A positive
// rate charges the side; a negative rate credits it. Five cases
// (spec §4.3 step 2):
//
//  1. both sides empty: (0, 0).
//  2. short empty, long > 0: the long side pays the full base rate; the
//     short side earns a discounted rebate (there is no short notional to
//     actually apply it against, but the formula is defined symmetrically
//     with case 3 for when a short later opens at the same refresh index).
//  3. long empty, short > 0: symmetric with case 2.
//  4. notionals equal and non-zero: both sides pay the full base rate.
//  5. imbalanced, both non-zero: the majority side pays
//     base * (majority/minority); the minority side is credited
//     base * discount * (majority/minority)^2.
func ImbalanceRates(baseHourlyRate, longNotional, shortNotional *big.Int) (rateLong, rateShort *big.Int) {
	base := fixedpoint.Clone(baseHourlyRate)
	longEmpty := fixedpoint.Zero(longNotional)
	shortEmpty := fixedpoint.Zero(shortNotional)

	switch {
	case longEmpty && shortEmpty:
		return big.NewInt(0), big.NewInt(0)
	case shortEmpty:
		return fixedpoint.Clone(base), fixedpoint.Neg(fixedpoint.MulS18Floor(base, discount))
	case longEmpty:
		return fixedpoint.Neg(fixedpoint.MulS18Floor(base, discount)), fixedpoint.Clone(base)
	}

	cmp := longNotional.Cmp(shortNotional)
	if cmp == 0 {
		return fixedpoint.Clone(base), fixedpoint.Clone(base)
	}
	if cmp > 0 {
		// long > short > 0: long is the majority side.
		ratio := fixedpoint.MulDivFloor(longNotional, fixedpoint.S18, shortNotional)
		ratioSq := fixedpoint.MulS18Floor(ratio, ratio)
		rLong := fixedpoint.MulS18Floor(base, ratio)
		rShort := fixedpoint.Neg(fixedpoint.MulS18Floor(fixedpoint.MulS18Floor(base, discount), ratioSq))
		return rLong, rShort
	}
	// short > long > 0: short is the majority side, symmetric.
	ratio := fixedpoint.MulDivFloor(shortNotional, fixedpoint.S18, longNotional)
	ratioSq := fixedpoint.MulS18Floor(ratio, ratio)
	rShort := fixedpoint.MulS18Floor(base, ratio)
	rLong := fixedpoint.Neg(fixedpoint.MulS18Floor(fixedpoint.MulS18Floor(base, discount), ratioSq))
	return rLong, rShort
}
