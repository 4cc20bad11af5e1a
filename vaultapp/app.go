// Package vaultapp wires vault.Vault's pure share/asset math to persisted
// per-user WithdrawalRequest state, completing the vault contract's public
// surface (spec §6 "Vault contract"). It is a sibling of trading.Engine,
// not a dependency of it: the two contracts share a host and a
// storage.Database, but the trading engine only ever calls through
// host.VaultMover (StrategyWithdraw/StrategyDeposit) during reconciliation,
// never through this package.
//
// Grounded on the same storage-shaped-check split the teacher's
// native/lending applies between its pure interest math (math.go) and its
// Engine methods that enforce "one open obligation per borrower" against
// state.
package vaultapp

import (
	"math/big"

	"github.com/zenith-protocols/zenex-engine/coreerrors"
	"github.com/zenith-protocols/zenex-engine/enginestate"
	"github.com/zenith-protocols/zenex-engine/host"
	"github.com/zenith-protocols/zenex-engine/vault"
)

// App is the vault contract's long-lived handle, mirroring trading.Engine's
// setter-injection construction idiom.
type App struct {
	vault *vault.Vault
	store *enginestate.Store
	auth  host.Authorizer
	clock host.Clock
}

func New(v *vault.Vault, store *enginestate.Store) *App {
	return &App{vault: v, store: store}
}

func (a *App) SetAuthorizer(auth host.Authorizer) { a.auth = auth }
func (a *App) SetClock(c host.Clock)              { a.clock = c }

// --- read-only passthroughs (spec §6) ---

func (a *App) QueryAsset() string                 { return a.vault.QueryAsset() }
func (a *App) TotalAssets() *big.Int              { return a.vault.TotalAssets() }
func (a *App) TotalShares() *big.Int              { return a.vault.TotalShares() }
func (a *App) Balance(addr string) *big.Int       { return a.vault.Balance(addr) }
func (a *App) NetImpact(strategy string) *big.Int { return a.vault.NetImpact(strategy) }

// Deposit implements spec §4.8 deposit.
func (a *App) Deposit(receiver string, tokens *big.Int) (*big.Int, error) {
	if err := a.auth.RequireAuth(receiver); err != nil {
		return nil, err
	}
	return a.vault.Deposit(receiver, tokens)
}

// QueueWithdraw implements spec §4.8 queue_withdraw, enforcing the
// storage-shaped "at most one pending request per owner" rule (spec §3
// WithdrawalRequest, §8 invariant 4) before delegating to vault.Vault's
// share-locking math.
func (a *App) QueueWithdraw(owner string, shares *big.Int) error {
	if err := a.auth.RequireAuth(owner); err != nil {
		return err
	}
	if _, ok, err := a.store.GetWithdrawalRequest(owner); err != nil {
		return err
	} else if ok {
		return coreerrors.New(coreerrors.CodeWithdrawalInProgress, "owner already has a pending withdrawal")
	}
	req, err := a.vault.QueueWithdraw(owner, shares, a.clock.Now())
	if err != nil {
		return err
	}
	return a.store.PutWithdrawalRequest(owner, req)
}

// Withdraw implements spec §4.8 withdraw: permissionless once unlock_time
// has passed.
func (a *App) Withdraw(user string) (*big.Int, error) {
	req, ok, err := a.store.GetWithdrawalRequest(user)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, coreerrors.New(coreerrors.CodeInsufficientShares, "no withdrawal request for %s", user)
	}
	tokens, err := a.vault.Withdraw(user, req, a.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := a.store.DeleteWithdrawalRequest(user); err != nil {
		return nil, err
	}
	return tokens, nil
}

// EmergencyWithdraw implements spec §4.8 emergency_withdraw (owner-auth).
func (a *App) EmergencyWithdraw(owner string) (*big.Int, error) {
	if err := a.auth.RequireAuth(owner); err != nil {
		return nil, err
	}
	req, ok, err := a.store.GetWithdrawalRequest(owner)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, coreerrors.New(coreerrors.CodeInsufficientShares, "no withdrawal request for %s", owner)
	}
	tokens, err := a.vault.EmergencyWithdraw(owner, req, a.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := a.store.DeleteWithdrawalRequest(owner); err != nil {
		return nil, err
	}
	return tokens, nil
}

// CancelWithdraw implements spec §4.8 cancel_withdraw (owner-auth).
func (a *App) CancelWithdraw(owner string) error {
	if err := a.auth.RequireAuth(owner); err != nil {
		return err
	}
	req, ok, err := a.store.GetWithdrawalRequest(owner)
	if err != nil {
		return err
	}
	if !ok {
		return coreerrors.New(coreerrors.CodeInsufficientShares, "no withdrawal request for %s", owner)
	}
	if err := a.vault.CancelWithdraw(owner, req); err != nil {
		return err
	}
	return a.store.DeleteWithdrawalRequest(owner)
}
