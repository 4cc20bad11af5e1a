package enginestate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zenith-protocols/zenex-engine/fixedpoint"
	"github.com/zenith-protocols/zenex-engine/market"
	"github.com/zenith-protocols/zenex-engine/position"
	"github.com/zenith-protocols/zenex-engine/storage"
	"github.com/zenith-protocols/zenex-engine/tradeconfig"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(storage.NewMemDB())
}

func TestStatusRoundTrip(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.GetStatus()
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.PutStatus(tradeconfig.StatusOnIce))
	status, ok, err := s.GetStatus()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, tradeconfig.StatusOnIce, status)
}

func TestGlobalConfigRoundTrip(t *testing.T) {
	s := newTestStore(t)
	cfg := tradeconfig.GlobalConfig{Oracle: "oracle-1", CallerTakeRate: fixedpoint.New(1_000_000), MaxPositions: 5}
	require.NoError(t, s.PutGlobalConfig(cfg))

	got, ok, err := s.GetGlobalConfig()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, cfg, got)
}

func TestMarketDataRoundTrip(t *testing.T) {
	s := newTestStore(t)
	d := market.NewData("BTC", 1000)
	d.LongNotionalSize = fixedpoint.New(500)
	require.NoError(t, s.PutMarketData(d))

	got, ok, err := s.GetMarketData("BTC")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, d.LongNotionalSize, got.LongNotionalSize)
	require.Equal(t, d.Asset, got.Asset)
}

func TestMarketListAppendIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AppendMarketList("BTC"))
	require.NoError(t, s.AppendMarketList("ETH"))
	require.NoError(t, s.AppendMarketList("BTC"))

	list, err := s.GetMarketList()
	require.NoError(t, err)
	require.Equal(t, []string{"BTC", "ETH"}, list)
}

func TestNextPositionIDIsMonotonic(t *testing.T) {
	s := newTestStore(t)
	first, err := s.NextPositionID()
	require.NoError(t, err)
	second, err := s.NextPositionID()
	require.NoError(t, err)
	require.Equal(t, uint32(1), first)
	require.Equal(t, uint32(2), second)
}

func TestPositionRoundTripAndDelete(t *testing.T) {
	s := newTestStore(t)
	p := &position.Position{ID: 1, User: "alice", Asset: "BTC", Status: position.StatusOpen}
	require.NoError(t, s.PutPosition(p))

	got, ok, err := s.GetPosition(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "alice", got.User)

	require.NoError(t, s.DeletePosition(1))
	_, ok, err = s.GetPosition(1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUserIndexAppendAndRemove(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AppendUserIndex("alice", 1))
	require.NoError(t, s.AppendUserIndex("alice", 2))
	require.NoError(t, s.AppendUserIndex("alice", 3))

	require.NoError(t, s.RemoveUserIndex("alice", 2))
	ids, err := s.GetUserIndex("alice")
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 3}, ids)
}

func TestQueuedGlobalConfigRoundTripAndDelete(t *testing.T) {
	s := newTestStore(t)
	q := tradeconfig.QueuedGlobalConfig{Pending: true, UnlockTime: 1000}
	require.NoError(t, s.PutQueuedGlobalConfig(q))

	got, ok, err := s.GetQueuedGlobalConfig()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, q.UnlockTime, got.UnlockTime)

	require.NoError(t, s.DeleteQueuedGlobalConfig())
	_, ok, err = s.GetQueuedGlobalConfig()
	require.NoError(t, err)
	require.False(t, ok)
}
