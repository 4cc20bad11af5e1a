// Package vault implements the ERC-4626-style shared liquidity pool backing
// every market: share/asset accounting, time-locked withdrawals with a
// linear early-exit penalty, and strategy debt tracking (spec §3 Vault
// state, §4.8).
//
// Grounded on the teacher's native/lending reserve/aToken share-price
// mechanics (mint-on-deposit, burn-on-withdraw against a floating
// underlying/share ratio), with the fixed lock-and-penalty withdrawal
// queue layered on top per spec.
package vault

import (
	"math/big"

	"github.com/zenith-protocols/zenex-engine/coreerrors"
	"github.com/zenith-protocols/zenex-engine/fixedpoint"
	"github.com/zenith-protocols/zenex-engine/host"
)

// WithdrawalRequest is the at-most-one-per-user pending exit (spec §3).
type WithdrawalRequest struct {
	Shares     *big.Int
	UnlockTime int64
}

// State is the persisted, storage-backed half of the vault: everything
// that is not directly queryable from the underlying/share tokens
// themselves (spec §3 Vault state).
type State struct {
	Token          string
	ShareToken     string
	LockTime       int64
	MaxPenaltyRate *big.Int // S7, in [0, S7]
	Strategies     map[string]bool
	NetImpact      map[string]*big.Int // signed, cumulative per strategy
}

// NewState constructs the immutable-at-deploy half of a vault's state: the
// token pair, the fixed withdrawal lock duration, the emergency-exit
// penalty cap, and the strategy allowlist (spec §4.8 "strategy must be
// registered at vault construction" — there is no later RegisterStrategy
// entry point).
func NewState(token, shareToken string, lockTime int64, maxPenaltyRate *big.Int, strategies []string) *State {
	allowed := make(map[string]bool, len(strategies))
	for _, s := range strategies {
		allowed[s] = true
	}
	return &State{
		Token:          token,
		ShareToken:     shareToken,
		LockTime:       lockTime,
		MaxPenaltyRate: fixedpoint.Clone(maxPenaltyRate),
		Strategies:     allowed,
		NetImpact:      make(map[string]*big.Int),
	}
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	strategies := make(map[string]bool, len(s.Strategies))
	for k, v := range s.Strategies {
		strategies[k] = v
	}
	netImpact := make(map[string]*big.Int, len(s.NetImpact))
	for k, v := range s.NetImpact {
		netImpact[k] = fixedpoint.Clone(v)
	}
	return &State{
		Token:          s.Token,
		ShareToken:     s.ShareToken,
		LockTime:       s.LockTime,
		MaxPenaltyRate: fixedpoint.Clone(s.MaxPenaltyRate),
		Strategies:     strategies,
		NetImpact:      netImpact,
	}
}

// Vault wraps State with the live host collaborators it needs to move
// funds and mint/burn shares. Construct with New then SetToken/SetShareToken,
// mirroring the teacher's setter-injection idiom for engine dependencies.
type Vault struct {
	state *State
	token host.Token
	share host.ShareToken
}

func New(state *State) *Vault {
	return &Vault{state: state}
}

func (v *Vault) SetToken(t host.Token)       { v.token = t }
func (v *Vault) SetShareToken(s host.ShareToken) { v.share = s }

func (v *Vault) State() *State { return v.state }

const selfAddress = "vault"

// QueryAsset returns the address of the underlying token.
func (v *Vault) QueryAsset() string { return v.state.Token }

// TotalAssets returns the vault's current underlying token balance.
func (v *Vault) TotalAssets() *big.Int {
	return v.token.BalanceOf(selfAddress)
}

// TotalShares returns the circulating share supply.
func (v *Vault) TotalShares() *big.Int {
	return v.share.TotalSupply()
}

// Balance returns account's share-token balance.
func (v *Vault) Balance(account string) *big.Int {
	return v.share.BalanceOf(account)
}

// NetImpact returns the cumulative signed strategy debt for strategy. It is
// a diagnostic accounting channel only (spec §9): never used to gate
// transfers.
func (v *Vault) NetImpact(strategy string) *big.Int {
	if v.state.NetImpact == nil {
		return big.NewInt(0)
	}
	return fixedpoint.Clone(v.state.NetImpact[strategy])
}

// Deposit mints shares for tokens deposited by receiver (spec §4.8
// deposit). T and S are read before the transfer lands, matching the
// teacher's reserve accounting: the ratio must reflect the pool state the
// depositor is buying into, not the state after their own funds land.
func (v *Vault) Deposit(receiver string, tokens *big.Int) (*big.Int, error) {
	if fixedpoint.Zero(tokens) || tokens.Sign() <= 0 {
		return nil, coreerrors.New(coreerrors.CodeZeroAmount, "deposit amount must be positive")
	}
	t := v.TotalAssets()
	s := v.TotalShares()

	var shares *big.Int
	if fixedpoint.Zero(s) || fixedpoint.Zero(t) {
		shares = fixedpoint.Clone(tokens)
	} else {
		shares = fixedpoint.MulDivFloor(tokens, s, t)
	}
	if fixedpoint.Zero(shares) {
		return nil, coreerrors.New(coreerrors.CodeZeroAmount, "deposit too small to mint shares")
	}

	if err := v.token.Transfer(receiver, selfAddress, tokens); err != nil {
		return nil, err
	}
	if err := v.share.Mint(receiver, shares); err != nil {
		return nil, err
	}
	return shares, nil
}

// StrategyWithdraw pulls amount out of the vault on behalf of strategy
// (spec §4.8 / §4.7 reconciler vault-out step). strategy must already be
// registered.
func (v *Vault) StrategyWithdraw(strategy string, amount *big.Int) error {
	if fixedpoint.Zero(amount) || amount.Sign() <= 0 {
		return coreerrors.New(coreerrors.CodeZeroAmount, "strategy_withdraw amount must be positive")
	}
	if !v.state.Strategies[strategy] {
		return coreerrors.New(coreerrors.CodeUnauthorizedStrategy, "%s is not a registered strategy", strategy)
	}
	if err := v.token.Transfer(selfAddress, strategy, amount); err != nil {
		return err
	}
	v.adjustNetImpact(strategy, fixedpoint.Neg(amount))
	return nil
}

// StrategyDeposit returns amount to the vault on behalf of strategy (spec
// §4.8 / §4.7 reconciler vault-in step).
func (v *Vault) StrategyDeposit(strategy string, amount *big.Int) error {
	if fixedpoint.Zero(amount) || amount.Sign() <= 0 {
		return coreerrors.New(coreerrors.CodeZeroAmount, "strategy_deposit amount must be positive")
	}
	if !v.state.Strategies[strategy] {
		return coreerrors.New(coreerrors.CodeUnauthorizedStrategy, "%s is not a registered strategy", strategy)
	}
	if err := v.token.Transfer(strategy, selfAddress, amount); err != nil {
		return err
	}
	v.adjustNetImpact(strategy, amount)
	return nil
}

func (v *Vault) adjustNetImpact(strategy string, delta *big.Int) {
	if v.state.NetImpact == nil {
		v.state.NetImpact = make(map[string]*big.Int)
	}
	v.state.NetImpact[strategy] = fixedpoint.Add(v.state.NetImpact[strategy], delta)
}
