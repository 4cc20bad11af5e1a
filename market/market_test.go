package market

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zenith-protocols/zenex-engine/fixedpoint"
)

func s7m(v int64) *big.Int { return fixedpoint.New(v * 10_000_000) }

func TestImbalanceRatesBothEmpty(t *testing.T) {
	rLong, rShort := ImbalanceRates(fixedpoint.New(1000), big.NewInt(0), big.NewInt(0))
	require.Equal(t, int64(0), rLong.Int64())
	require.Equal(t, int64(0), rShort.Int64())
}

func TestImbalanceRatesShortEmpty(t *testing.T) {
	base := fixedpoint.New(1_000_000)
	rLong, rShort := ImbalanceRates(base, s7m(100), big.NewInt(0))
	require.Equal(t, base, rLong, "long pays the full base rate when it's the only side open")
	require.True(t, rShort.Sign() < 0, "short is credited a discounted rebate")
}

func TestImbalanceRatesLongEmpty(t *testing.T) {
	base := fixedpoint.New(1_000_000)
	rLong, rShort := ImbalanceRates(base, big.NewInt(0), s7m(100))
	require.Equal(t, base, rShort)
	require.True(t, rLong.Sign() < 0)
}

func TestImbalanceRatesEqualNotional(t *testing.T) {
	base := fixedpoint.New(1_000_000)
	rLong, rShort := ImbalanceRates(base, s7m(50), s7m(50))
	require.Equal(t, base, rLong)
	require.Equal(t, base, rShort)
}

func TestImbalanceRatesLongMajority(t *testing.T) {
	base := fixedpoint.New(1_000_000)
	rLong, rShort := ImbalanceRates(base, s7m(200), s7m(100))
	require.True(t, rLong.Cmp(base) > 0, "majority side pays more than the base rate")
	require.True(t, rShort.Sign() < 0, "minority side is credited")
}

func TestImbalanceRatesShortMajority(t *testing.T) {
	base := fixedpoint.New(1_000_000)
	rLong, rShort := ImbalanceRates(base, s7m(100), s7m(200))
	require.True(t, rShort.Cmp(base) > 0)
	require.True(t, rLong.Sign() < 0)
}

func TestRefreshWithRateIsIdempotentAtSameTimestamp(t *testing.T) {
	d := NewData("BTC", 1000)
	d.LongNotionalSize = s7m(100)
	before := fixedpoint.Clone(d.LongInterestIndex)

	d.RefreshWithRate(1000, fixedpoint.New(1_000_000))
	require.Equal(t, before, d.LongInterestIndex, "same timestamp must not re-accrue")
}

func TestRefreshWithRateAdvancesIndex(t *testing.T) {
	d := NewData("BTC", 1000)
	d.LongNotionalSize = s7m(100)
	d.RefreshWithRate(1000+3600, fixedpoint.New(1_000_000_000_000_000)) // 0.1%/hr
	require.True(t, d.LongInterestIndex.Cmp(fixedpoint.S18) > 0, "index should have grown after one hour")
	require.Equal(t, int64(1000+3600), d.LastUpdate)
}

func TestUpdateStatsClampsAtZero(t *testing.T) {
	d := NewData("BTC", 0)
	d.UpdateStats(true, s7m(10), s7m(10))
	require.Equal(t, s7m(10), d.LongCollateral)

	d.UpdateStats(true, fixedpoint.Neg(s7m(50)), fixedpoint.Neg(s7m(50)))
	require.Equal(t, int64(0), d.LongCollateral.Int64(), "aggregate must never go negative")
}

func TestDominantTieMakesBothSidesDominant(t *testing.T) {
	d := NewData("BTC", 0)
	d.LongNotionalSize = s7m(100)
	d.ShortNotionalSize = s7m(100)
	require.True(t, d.Dominant(true))
	require.True(t, d.Dominant(false), "both sides report dominant on an exact tie")
}

func TestDominantStrict(t *testing.T) {
	d := NewData("BTC", 0)
	d.LongNotionalSize = s7m(200)
	d.ShortNotionalSize = s7m(100)
	require.True(t, d.Dominant(true))
	require.False(t, d.Dominant(false))
}

func TestUtilizationZeroMaxPayout(t *testing.T) {
	d := NewData("BTC", 0)
	require.Nil(t, d.Utilization(big.NewInt(0)))
}

func TestWithinUtilizationLimit(t *testing.T) {
	d := NewData("BTC", 0)
	d.LongNotionalSize = s7m(90)
	require.True(t, d.WithinUtilizationLimit(s7m(10), s7m(100)))
	require.False(t, d.WithinUtilizationLimit(s7m(11), s7m(100)))
}

func TestWithinGlobalUtilizationDisabledAtZero(t *testing.T) {
	d := NewData("BTC", 0)
	require.True(t, d.WithinGlobalUtilization(s7m(1_000_000), s7m(1), big.NewInt(0)))
}

func TestWithinGlobalUtilization(t *testing.T) {
	d := NewData("BTC", 0)
	vaultAssets := s7m(1000)
	maxUtil := fixedpoint.New(5_000_000) // 50%
	require.True(t, d.WithinGlobalUtilization(s7m(500), vaultAssets, maxUtil))
	require.False(t, d.WithinGlobalUtilization(s7m(501), vaultAssets, maxUtil))
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		MinCollateral:     fixedpoint.S7,
		MaxCollateral:     s7m(1000),
		MaintenanceMargin: fixedpoint.New(500_000),
		InitMargin:        fixedpoint.New(1_000_000),
		BaseFee:           fixedpoint.New(10_000),
		PriceImpactScalar: s7m(1),
		BaseHourlyRate:    fixedpoint.New(0),
	}
	require.NoError(t, valid.Validate())

	belowS7 := valid
	belowS7.MinCollateral = fixedpoint.New(1)
	require.Error(t, belowS7.Validate())

	badInitMargin := valid
	badInitMargin.InitMargin = fixedpoint.New(100)
	require.Error(t, badInitMargin.Validate(), "init_margin below maintenance_margin must fail")
}

func TestCloneIsIndependent(t *testing.T) {
	d := NewData("BTC", 0)
	d.LongNotionalSize = s7m(10)
	clone := d.Clone()
	clone.LongNotionalSize.Add(clone.LongNotionalSize, big.NewInt(1))
	require.Equal(t, s7m(10), d.LongNotionalSize)
}
