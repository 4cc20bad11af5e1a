package vaultapp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zenith-protocols/zenex-engine/enginestate"
	"github.com/zenith-protocols/zenex-engine/fixedpoint"
	"github.com/zenith-protocols/zenex-engine/host/memhost"
	"github.com/zenith-protocols/zenex-engine/storage"
	"github.com/zenith-protocols/zenex-engine/vault"
)

func newTestApp(t *testing.T) (*App, *memhost.Token, *memhost.Clock) {
	t.Helper()
	token := memhost.NewToken()
	shares := memhost.NewShareToken()
	clock := memhost.NewClock(0)
	state := vault.NewState("underlying", "shares", 1000, fixedpoint.New(5_000_000), []string{"trading"})
	v := vault.New(state)
	v.SetToken(token)
	v.SetShareToken(shares)

	store := enginestate.New(storage.NewMemDB())
	app := New(v, store)
	app.SetAuthorizer(memhost.Authorizer{})
	app.SetClock(clock)
	return app, token, clock
}

func TestDepositWithdrawRoundTrip(t *testing.T) {
	app, token, clock := newTestApp(t)
	token.Mint("alice", fixedpoint.New(1000))

	shares, err := app.Deposit("alice", fixedpoint.New(1000))
	require.NoError(t, err)
	require.Equal(t, fixedpoint.New(1000), shares)

	require.NoError(t, app.QueueWithdraw("alice", shares))
	clock.Advance(1000)

	tokens, err := app.Withdraw("alice")
	require.NoError(t, err)
	require.Equal(t, fixedpoint.New(1000), tokens)
}

func TestQueueWithdrawRejectsSecondPendingRequest(t *testing.T) {
	app, token, _ := newTestApp(t)
	token.Mint("alice", fixedpoint.New(1000))
	shares, err := app.Deposit("alice", fixedpoint.New(1000))
	require.NoError(t, err)

	half := fixedpoint.New(500)
	require.NoError(t, app.QueueWithdraw("alice", half))

	err = app.QueueWithdraw("alice", fixedpoint.New(500))
	require.Error(t, err, "at most one pending withdrawal per owner")
	_ = shares
}

func TestWithdrawWithNoRequestFails(t *testing.T) {
	app, _, _ := newTestApp(t)
	_, err := app.Withdraw("nobody")
	require.Error(t, err)
}

func TestCancelWithdrawAllowsRequeue(t *testing.T) {
	app, token, _ := newTestApp(t)
	token.Mint("alice", fixedpoint.New(1000))
	shares, err := app.Deposit("alice", fixedpoint.New(1000))
	require.NoError(t, err)

	require.NoError(t, app.QueueWithdraw("alice", shares))
	require.NoError(t, app.CancelWithdraw("alice"))

	require.NoError(t, app.QueueWithdraw("alice", shares), "cancel must clear the pending slot")
}

func TestEmergencyWithdrawBeforeUnlockCharges(t *testing.T) {
	app, token, _ := newTestApp(t)
	token.Mint("alice", fixedpoint.New(1000))
	shares, err := app.Deposit("alice", fixedpoint.New(1000))
	require.NoError(t, err)
	require.NoError(t, app.QueueWithdraw("alice", shares))

	tokens, err := app.EmergencyWithdraw("alice")
	require.NoError(t, err)
	require.True(t, tokens.Cmp(fixedpoint.New(1000)) < 0, "early exit pays a penalty")
}
