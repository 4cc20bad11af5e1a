package position

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zenith-protocols/zenex-engine/fixedpoint"
)

func s7(v int64) *big.Int { return fixedpoint.New(v * 10_000_000) }

func TestPnLLongShortSymmetry(t *testing.T) {
	notional := s7(1000)
	entry := s7(100)
	price := s7(110)

	longPnL := PnL(true, notional, entry, price)
	shortPnL := PnL(false, notional, entry, price)

	require.Equal(t, int64(1_000_000_000), longPnL.Int64(), "long gains 10%% of notional")
	require.Equal(t, new(big.Int).Neg(longPnL), shortPnL, "short PnL mirrors long PnL")
}

func TestPnLZeroEntryIsZero(t *testing.T) {
	require.Equal(t, int64(0), PnL(true, s7(1000), big.NewInt(0), s7(110)).Int64())
}

func TestAccruedInterestCanBeNegativeRebate(t *testing.T) {
	notional := s7(1000)
	marketIndex := fixedpoint.S18
	positionIndex := new(big.Int).Mul(fixedpoint.S18, big.NewInt(2))
	interest := AccruedInterest(notional, marketIndex, positionIndex)
	require.True(t, interest.Sign() < 0, "index decreasing relative to snapshot rebates the position")
}

func TestBaseFeeAmountCeils(t *testing.T) {
	notional := big.NewInt(3)
	baseFee := big.NewInt(1) // tiny rate forces a non-exact division
	fee := BaseFeeAmount(notional, baseFee)
	require.Equal(t, int64(1), fee.Int64(), "3 * 1 / S7 rounds up to 1")
}

func TestPriceImpactQuadratic(t *testing.T) {
	notional := s7(100)
	scalar := s7(1) // small enough that ceil rounding does not swamp the quadratic term
	pi := PriceImpact(notional, scalar)
	require.True(t, pi.Sign() > 0)

	piDouble := PriceImpact(s7(200), scalar)
	ratio := new(big.Int).Div(piDouble, pi)
	require.Equal(t, int64(4), ratio.Int64(), "price impact scales with the square of notional")
}

func TestComputeCloseFeeDominantAddsBaseFee(t *testing.T) {
	notional := s7(1000)
	scalar := s7(10_000_000)
	baseFeeRate := fixedpoint.New(50_000) // 0.5%
	marketIndex := fixedpoint.S18
	positionIndex := fixedpoint.S18

	dominant := ComputeCloseFee(notional, scalar, baseFeeRate, marketIndex, positionIndex, true)
	nonDominant := ComputeCloseFee(notional, scalar, baseFeeRate, marketIndex, positionIndex, false)

	require.True(t, dominant.BaseFee.Sign() > 0)
	require.Equal(t, int64(0), nonDominant.BaseFee.Int64())
	require.Equal(t, dominant.PriceImpact, nonDominant.PriceImpact, "price impact doesn't depend on dominance")
	require.Equal(t, fixedpoint.Add(fixedpoint.Add(dominant.BaseFee, dominant.PriceImpact), dominant.AccruedInt), dominant.Total)
}

func TestCalculateCloseProfitableLongWithinCollateral(t *testing.T) {
	collateral := s7(100)
	pnl := s7(20)
	fee := s7(5)
	callerTakeRate := fixedpoint.New(1_000_000) // 10%

	result := CalculateClose(collateral, pnl, fee, callerTakeRate)

	require.Equal(t, fixedpoint.Sub(pnl, fee), result.NetPnL)
	require.Equal(t, fixedpoint.Add(collateral, result.NetPnL), result.UserPayout)
	require.Equal(t, fixedpoint.Sub(collateral, result.UserPayout), result.VaultTransfer, "the vault pays the profit beyond collateral")
}

func TestCalculateCloseLossExceedingCollateralVaultKeepsCollateral(t *testing.T) {
	collateral := s7(100)
	pnl := s7(-150) // loss bigger than collateral
	fee := s7(5)
	callerTakeRate := fixedpoint.New(1_000_000)

	result := CalculateClose(collateral, pnl, fee, callerTakeRate)

	require.Equal(t, int64(0), result.UserPayout.Int64(), "payout floors at zero")
	require.Equal(t, fixedpoint.Sub(collateral, result.CallerFee), result.VaultTransfer, "the vault receives the collateral less the caller fee and never covers the loss beyond it")
}

func TestCalculateCloseNegativeFeeIsRebate(t *testing.T) {
	collateral := s7(100)
	pnl := s7(10)
	fee := s7(-5) // rebate case
	callerTakeRate := fixedpoint.New(1_000_000)

	result := CalculateClose(collateral, pnl, fee, callerTakeRate)
	require.Equal(t, int64(0), result.CallerFee.Int64(), "no caller fee on a rebate")
}

func TestStopLossTriggered(t *testing.T) {
	require.False(t, StopLossTriggered(true, big.NewInt(0), s7(90)), "unset stop-loss never triggers")
	require.True(t, StopLossTriggered(true, s7(95), s7(90)), "long stop triggers at or below threshold")
	require.False(t, StopLossTriggered(true, s7(95), s7(100)))
	require.True(t, StopLossTriggered(false, s7(105), s7(110)), "short stop triggers at or above threshold")
}

func TestTakeProfitTriggered(t *testing.T) {
	require.False(t, TakeProfitTriggered(true, big.NewInt(0), s7(200)))
	require.True(t, TakeProfitTriggered(true, s7(120), s7(125)), "long take-profit triggers at or above threshold")
	require.True(t, TakeProfitTriggered(false, s7(80), s7(75)), "short take-profit triggers at or below threshold")
}

func TestEquity(t *testing.T) {
	require.Equal(t, s7(105), Equity(s7(100), s7(10), s7(5)))
}

func TestMeetsMaintenanceMargin(t *testing.T) {
	notional := s7(1000)
	maintenance := fixedpoint.New(500_000) // 5%
	required := fixedpoint.MulS7Ceil(notional, maintenance)

	require.True(t, MeetsMaintenanceMargin(required, notional, maintenance))
	require.False(t, MeetsMaintenanceMargin(fixedpoint.Sub(required, fixedpoint.New(1)), notional, maintenance))
}

func TestCloneIsDeep(t *testing.T) {
	p := &Position{EntryPrice: s7(100), Collateral: s7(50)}
	clone := p.Clone()
	clone.EntryPrice.Add(clone.EntryPrice, big.NewInt(1))
	require.Equal(t, s7(100), p.EntryPrice, "mutating the clone must not affect the original")
}
