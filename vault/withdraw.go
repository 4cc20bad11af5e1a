package vault

import (
	"math/big"

	"github.com/zenith-protocols/zenex-engine/coreerrors"
	"github.com/zenith-protocols/zenex-engine/fixedpoint"
)

// QueueWithdraw pulls shares into vault custody and returns the
// WithdrawalRequest to persist for owner (spec §4.8 queue_withdraw). The
// caller must first check there is no existing pending request for owner
// (spec: "at most one per user at a time"); that check is storage-shaped
// and lives in vaultapp.App.QueueWithdraw, not here.
func (v *Vault) QueueWithdraw(owner string, shares *big.Int, now int64) (WithdrawalRequest, error) {
	if fixedpoint.Zero(shares) || shares.Sign() <= 0 {
		return WithdrawalRequest{}, coreerrors.New(coreerrors.CodeZeroAmount, "queue_withdraw shares must be positive")
	}
	if err := v.share.Transfer(owner, selfAddress, shares); err != nil {
		return WithdrawalRequest{}, err
	}
	return WithdrawalRequest{
		Shares:     fixedpoint.Clone(shares),
		UnlockTime: now + v.state.LockTime,
	}, nil
}

// Withdraw executes a matured withdrawal request, permissionlessly, once
// unlock_time has passed (spec §4.8 withdraw): tokens = shares * T / S,
// floor. Burns the locked shares and pays owner; the caller clears the
// persisted request and decrements total_shares bookkeeping (total_shares
// tracks the share token's own supply, so burning here already reflects
// that).
func (v *Vault) Withdraw(owner string, req WithdrawalRequest, now int64) (*big.Int, error) {
	if now < req.UnlockTime {
		return nil, coreerrors.New(coreerrors.CodeWithdrawalLocked, "unlock_time not reached")
	}
	t := v.TotalAssets()
	s := v.TotalShares()
	if fixedpoint.Zero(s) {
		return nil, coreerrors.New(coreerrors.CodeInsufficientShares, "no shares outstanding")
	}
	tokens := fixedpoint.MulDivFloor(req.Shares, t, s)
	if err := v.share.Burn(selfAddress, req.Shares); err != nil {
		return nil, err
	}
	if err := v.token.Transfer(selfAddress, owner, tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

// EmergencyWithdraw charges a linear early-exit penalty proportional to the
// time remaining before unlock (spec §4.8 emergency_withdraw):
//
//	penalty = current_tokens * max_penalty_rate * time_remaining / lock_time / S7   (floor)
//	payout  = current_tokens - penalty
//
// The penalty is left in the vault (never transferred out), pro-rating to
// the remaining shareholders by raising T/S for everyone else. Fails if
// payout <= 0. After unlock_time, the penalty is zero and this behaves
// exactly like Withdraw.
func (v *Vault) EmergencyWithdraw(owner string, req WithdrawalRequest, now int64) (*big.Int, error) {
	t := v.TotalAssets()
	s := v.TotalShares()
	if fixedpoint.Zero(s) {
		return nil, coreerrors.New(coreerrors.CodeInsufficientShares, "no shares outstanding")
	}
	currentTokens := fixedpoint.MulDivFloor(req.Shares, t, s)

	penalty := big.NewInt(0)
	if now < req.UnlockTime && v.state.LockTime > 0 {
		timeRemaining := req.UnlockTime - now
		if timeRemaining > v.state.LockTime {
			timeRemaining = v.state.LockTime
		}
		num := new(big.Int).Mul(currentTokens, v.state.MaxPenaltyRate)
		num.Mul(num, big.NewInt(timeRemaining))
		denom := new(big.Int).Mul(big.NewInt(v.state.LockTime), fixedpoint.S7)
		penalty = fixedpoint.MulDivFloor(num, big.NewInt(1), denom)
	}

	payout := fixedpoint.Sub(currentTokens, penalty)
	if payout.Sign() <= 0 {
		return nil, coreerrors.New(coreerrors.CodeInvalidAmount, "emergency withdrawal payout must be positive")
	}

	if err := v.share.Burn(selfAddress, req.Shares); err != nil {
		return nil, err
	}
	if err := v.token.Transfer(selfAddress, owner, payout); err != nil {
		return nil, err
	}
	return payout, nil
}

// CancelWithdraw returns the locked shares to owner unchanged (spec §4.8
// cancel_withdraw). The caller clears the persisted WithdrawalRequest.
func (v *Vault) CancelWithdraw(owner string, req WithdrawalRequest) error {
	return v.share.Transfer(selfAddress, owner, req.Shares)
}
