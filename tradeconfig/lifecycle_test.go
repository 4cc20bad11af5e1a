package tradeconfig

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zenith-protocols/zenex-engine/coreerrors"
	"github.com/zenith-protocols/zenex-engine/fixedpoint"
	"github.com/zenith-protocols/zenex-engine/market"
)

func validGlobalConfig() GlobalConfig {
	return GlobalConfig{
		Oracle:         "oracle-1",
		CallerTakeRate: fixedpoint.New(1_000_000),
		MaxPositions:   10,
		MaxUtilization: fixedpoint.New(0),
	}
}

func validMarketConfig() market.Config {
	return market.Config{
		Enabled:           true,
		MaxPayout:         fixedpoint.New(1_000_000_000),
		MinCollateral:     fixedpoint.S7,
		MaxCollateral:     fixedpoint.New(1_000_000_000),
		InitMargin:        fixedpoint.New(1_000_000),
		MaintenanceMargin: fixedpoint.New(500_000),
		BaseFee:           fixedpoint.New(10_000),
		PriceImpactScalar: fixedpoint.New(1_000_000_000),
		BaseHourlyRate:    fixedpoint.New(0),
	}
}

func TestInitializeReturnsSetupStatus(t *testing.T) {
	cfg, status, err := Initialize(validGlobalConfig())
	require.NoError(t, err)
	require.Equal(t, StatusSetup, status)
	require.Equal(t, validGlobalConfig(), cfg)
}

func TestInitializeRejectsInvalidConfig(t *testing.T) {
	bad := validGlobalConfig()
	bad.CallerTakeRate = fixedpoint.New(-1)
	_, _, err := Initialize(bad)
	require.Error(t, err)
	require.True(t, coreerrors.Is(err, coreerrors.CodeInvalidConfig))
}

func TestQueueGlobalConfigZeroDelayDuringSetup(t *testing.T) {
	q, err := QueueGlobalConfig(StatusSetup, validGlobalConfig(), 1000)
	require.NoError(t, err)
	require.Equal(t, int64(1000), q.UnlockTime, "setup status applies changes immediately")
	require.True(t, q.Pending)
}

func TestQueueGlobalConfigOneWeekDelayWhenActive(t *testing.T) {
	q, err := QueueGlobalConfig(StatusActive, validGlobalConfig(), 1000)
	require.NoError(t, err)
	require.Equal(t, int64(1000+7*24*60*60), q.UnlockTime)
}

func TestApplyGlobalConfigRequiresPending(t *testing.T) {
	_, err := ApplyGlobalConfig(QueuedGlobalConfig{}, 0)
	require.Error(t, err)
	require.True(t, coreerrors.Is(err, coreerrors.CodeUpdateNotQueued))
}

func TestApplyGlobalConfigRequiresUnlockTimeReached(t *testing.T) {
	q, err := QueueGlobalConfig(StatusActive, validGlobalConfig(), 1000)
	require.NoError(t, err)

	_, err = ApplyGlobalConfig(q, q.UnlockTime-1)
	require.Error(t, err)
	require.True(t, coreerrors.Is(err, coreerrors.CodeUpdateNotUnlocked))

	cfg, err := ApplyGlobalConfig(q, q.UnlockTime)
	require.NoError(t, err)
	require.Equal(t, validGlobalConfig(), cfg)
}

func TestQueueMarketConfigValidatesBeforeQueuing(t *testing.T) {
	bad := validMarketConfig()
	bad.MinCollateral = fixedpoint.New(1)
	_, err := QueueMarketConfig(StatusSetup, bad, 0)
	require.Error(t, err)
	require.True(t, coreerrors.Is(err, coreerrors.CodeInvalidConfig))
}

func TestApplyMarketConfigRoundTrip(t *testing.T) {
	q, err := QueueMarketConfig(StatusSetup, validMarketConfig(), 500)
	require.NoError(t, err)
	require.Equal(t, int64(500), q.UnlockTime)

	cfg, err := ApplyMarketConfig(q, 500)
	require.NoError(t, err)
	require.Equal(t, validMarketConfig(), cfg)
}

func TestStatusPredicates(t *testing.T) {
	require.True(t, StatusActive.AllowsStateChange())
	require.True(t, StatusOnIce.AllowsStateChange())
	require.False(t, StatusFrozen.AllowsStateChange())

	require.True(t, StatusActive.AllowsNewPositions())
	require.False(t, StatusOnIce.AllowsNewPositions())
	require.False(t, StatusFrozen.AllowsNewPositions())

	require.True(t, StatusActive.AllowsCloseOrKeeper())
	require.True(t, StatusOnIce.AllowsCloseOrKeeper())
	require.False(t, StatusFrozen.AllowsCloseOrKeeper())
}

func TestGlobalConfigValidateMaxUtilizationBounds(t *testing.T) {
	cfg := validGlobalConfig()
	cfg.MaxUtilization = fixedpoint.New(0)
	require.NoError(t, cfg.Validate(), "zero disables the check")

	cfg.MaxUtilization = fixedpoint.New(1) // below S7, non-zero: invalid
	require.Error(t, cfg.Validate())

	hundredS7 := fixedpoint.MulDivFloor(fixedpoint.S7, fixedpoint.New(100), fixedpoint.New(1))
	cfg.MaxUtilization = hundredS7
	require.NoError(t, cfg.Validate())
}
