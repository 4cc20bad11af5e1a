// Package host defines the interfaces the trading engine expects its
// surrounding chain host to provide: a price oracle, a fungible token, an
// authorization check, and a ledger clock (spec §1/§6). These are external
// collaborators — the engine never implements them for production use, only
// for tests and the local reference CLI (see host/memhost).
package host

import "math/big"

// Oracle is the read-only price feed contract. LastPrice returns the most
// recent signed price for asset at S7 precision along with the Unix
// timestamp it was reported at; ok is false when the asset has never been
// priced.
type Oracle interface {
	LastPrice(asset string) (price *big.Int, timestamp int64, ok bool)
}

// Token is the fungible underlying asset the vault custodies and the engine
// moves on open/close/liquidate. Amounts are S7-denominated signed
// integers; Transfer moves a positive amount from `from` to `to`.
type Token interface {
	BalanceOf(addr string) *big.Int
	Transfer(from, to string, amount *big.Int) error
}

// ShareToken is the vault's own liquidity-provider token: freely
// transferable between holders (the vault itself pulls shares into its own
// custody while a withdrawal request is pending), but mintable and
// burnable only by the vault.
type ShareToken interface {
	Mint(to string, amount *big.Int) error
	Burn(from string, amount *big.Int) error
	Transfer(from, to string, amount *big.Int) error
	BalanceOf(addr string) *big.Int
	TotalSupply() *big.Int
}

// Authorizer performs the host's per-caller signature/authorization check.
// RequireAuth must return nil exactly when the ledger has verified that
// addr authorized the current invocation.
type Authorizer interface {
	RequireAuth(addr string) error
}

// Clock exposes the ledger's monotonic wall-clock, in Unix seconds.
type Clock interface {
	Now() int64
}

// VaultMover is the subset of vault.Vault the reconciler and keeper actions
// call through the host boundary: the two permissible per-batch strategy
// movements (spec §4.7/§9).
type VaultMover interface {
	StrategyWithdraw(strategy string, amount *big.Int) error
	StrategyDeposit(strategy string, amount *big.Int) error
	TotalAssets() *big.Int
}
