package trading

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zenith-protocols/zenex-engine/coreerrors"
	"github.com/zenith-protocols/zenex-engine/fixedpoint"
)

func TestKeeperTakeProfitClosesAboveTarget(t *testing.T) {
	h := newHarness(t)
	h.token.Mint("alice", fixedpoint.New(1000_0000000))

	result, err := h.engine.OpenPosition(OpenPositionParams{
		User:       "alice",
		Asset:      "BTC",
		Collateral: fixedpoint.New(100_0000000),
		Notional:   fixedpoint.New(1000_0000000),
		IsLong:     true,
	})
	require.NoError(t, err)

	require.NoError(t, h.engine.SetTriggers(result.ID, fixedpoint.New(110_0000000), fixedpoint.New(0)))

	// Price has not reached the take-profit target yet.
	codes, err := h.engine.Execute("keeper", []ExecuteRequest{{Type: RequestTakeProfit, PositionID: result.ID}})
	require.NoError(t, err)
	require.NotEqual(t, uint32(0), codes[0], "take-profit must fail before the target is hit")

	h.oracle.SetPrice("BTC", fixedpoint.New(110_0000000), h.clock.Now())
	codes, err = h.engine.Execute("keeper", []ExecuteRequest{{Type: RequestTakeProfit, PositionID: result.ID}})
	require.NoError(t, err)
	require.Equal(t, uint32(0), codes[0], "take-profit fires once price reaches the target")

	pos, _, err := h.store.GetPosition(result.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), int64(pos.Status), "triggered position ends Closed")
}

func TestKeeperStopLossClosesBelowTarget(t *testing.T) {
	h := newHarness(t)
	h.token.Mint("alice", fixedpoint.New(1000_0000000))

	result, err := h.engine.OpenPosition(OpenPositionParams{
		User:       "alice",
		Asset:      "BTC",
		Collateral: fixedpoint.New(100_0000000),
		Notional:   fixedpoint.New(1000_0000000),
		IsLong:     true,
	})
	require.NoError(t, err)

	require.NoError(t, h.engine.SetTriggers(result.ID, fixedpoint.New(0), fixedpoint.New(90_0000000)))

	// Price hasn't fallen to the stop yet.
	codes, err := h.engine.Execute("keeper", []ExecuteRequest{{Type: RequestStopLoss, PositionID: result.ID}})
	require.NoError(t, err)
	require.NotEqual(t, uint32(0), codes[0], "stop-loss must fail before the stop is hit")

	h.oracle.SetPrice("BTC", fixedpoint.New(90_0000000), h.clock.Now())
	codes, err = h.engine.Execute("keeper", []ExecuteRequest{{Type: RequestStopLoss, PositionID: result.ID}})
	require.NoError(t, err)
	require.Equal(t, uint32(0), codes[0], "stop-loss fires once price reaches the stop")

	pos, _, err := h.store.GetPosition(result.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), int64(pos.Status))
}

func TestKeeperTriggerRejectsNonOpenPosition(t *testing.T) {
	h := newHarness(t)
	h.token.Mint("alice", fixedpoint.New(1000_0000000))

	result, err := h.engine.OpenPosition(OpenPositionParams{
		User:       "alice",
		Asset:      "BTC",
		Collateral: fixedpoint.New(100_0000000),
		Notional:   fixedpoint.New(1000_0000000),
		IsLong:     true,
		EntryPrice: fixedpoint.New(90_0000000), // stays Pending
	})
	require.NoError(t, err)

	codes, err := h.engine.Execute("keeper", []ExecuteRequest{{Type: RequestTakeProfit, PositionID: result.ID}})
	require.NoError(t, err)
	require.NotEqual(t, uint32(0), codes[0], "a pending position has nothing to trigger")
}

func TestKeeperFillPaysCallerFeeFromHeldFunds(t *testing.T) {
	h := newHarness(t)
	h.token.Mint("alice", fixedpoint.New(1000_0000000))

	result, err := h.engine.OpenPosition(OpenPositionParams{
		User:       "alice",
		Asset:      "BTC",
		Collateral: fixedpoint.New(100_0000000),
		Notional:   fixedpoint.New(1000_0000000),
		IsLong:     true,
		EntryPrice: fixedpoint.New(90_0000000),
	})
	require.NoError(t, err)

	before := h.token.BalanceOf("keeper")
	h.oracle.SetPrice("BTC", fixedpoint.New(90_0000000), h.clock.Now())
	codes, err := h.engine.Execute("keeper", []ExecuteRequest{{Type: RequestFill, PositionID: result.ID}})
	require.NoError(t, err)
	require.Equal(t, uint32(0), codes[0])

	after := h.token.BalanceOf("keeper")
	require.True(t, after.Cmp(before) > 0, "keeper earns a cut of the held open fee on fill")
}

func TestExecuteRejectsUnauthorizedCaller(t *testing.T) {
	h := newHarness(t)
	h.engine.SetAuthorizer(denyAllAuthorizer{})

	_, err := h.engine.Execute("keeper", []ExecuteRequest{{Type: RequestFill, PositionID: 1}})
	require.Error(t, err)
}

type denyAllAuthorizer struct{}

func (denyAllAuthorizer) RequireAuth(addr string) error {
	return coreerrors.New(coreerrors.CodeUnauthorized, "")
}
