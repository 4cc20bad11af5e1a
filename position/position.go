// Package position implements the position lifecycle and its price/fee/PnL
// math (spec §3 Position, §4.4). A Position moves Pending -> Open -> Closed;
// Closed is terminal. All monetary fields are signed *big.Int at S7 except
// InterestIndex, which snapshots a market side's S18 cumulative index.
//
// Grounded on the teacher's native/lending Obligation/collateral-ratio
// helpers for the margin-ratio shape, and on native/escrow's status enum
// (Funded/Released/...) for the Pending/Open/Closed state machine.
package position

import (
	"math/big"

	"github.com/zenith-protocols/zenex-engine/fixedpoint"
)

// Status is the position lifecycle state (spec §3).
type Status uint8

const (
	StatusPending Status = iota
	StatusOpen
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusOpen:
		return "Open"
	case StatusClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Position is a single user's leveraged exposure to an asset.
type Position struct {
	ID            uint32
	User          string
	Asset         string
	IsLong        bool
	Status        Status
	EntryPrice    *big.Int // S7; 0 while Pending and unfilled at a market order (never persisted that way)
	Collateral    *big.Int // S7
	NotionalSize  *big.Int // S7
	StopLoss      *big.Int // S7; 0 = unset
	TakeProfit    *big.Int // S7; 0 = unset
	InterestIndex *big.Int // S18, snapshot at open or last collateral modification
	CreatedAt     int64

	// HeldFee is the open fee + price impact the contract is holding on
	// behalf of a Pending limit order (spec §9 "pending-position fee
	// holding"). It is zero once the position is Open, since those fees
	// have already moved to the vault.
	HeldFee *big.Int
}

// Clone returns a deep copy of p.
func (p *Position) Clone() *Position {
	if p == nil {
		return nil
	}
	return &Position{
		ID:            p.ID,
		User:          p.User,
		Asset:         p.Asset,
		IsLong:        p.IsLong,
		Status:        p.Status,
		EntryPrice:    fixedpoint.Clone(p.EntryPrice),
		Collateral:    fixedpoint.Clone(p.Collateral),
		NotionalSize:  fixedpoint.Clone(p.NotionalSize),
		StopLoss:      fixedpoint.Clone(p.StopLoss),
		TakeProfit:    fixedpoint.Clone(p.TakeProfit),
		InterestIndex: fixedpoint.Clone(p.InterestIndex),
		CreatedAt:     p.CreatedAt,
		HeldFee:       fixedpoint.Clone(p.HeldFee),
	}
}

// PnL computes notional * (p - entry) / entry for a long, symmetric for a
// short, floor-divided at S7 (spec §4.4).
func PnL(isLong bool, notional, entry, currentPrice *big.Int) *big.Int {
	if fixedpoint.Zero(entry) {
		return big.NewInt(0)
	}
	diff := fixedpoint.Sub(currentPrice, entry)
	if !isLong {
		diff = fixedpoint.Neg(diff)
	}
	// pnl = notional * diff / entry, floor.
	return fixedpoint.MulDivFloor(notional, diff, entry)
}

// AccruedInterest computes notional * (marketIndex - positionIndex) / S18,
// signed (spec §4.4). A negative result is a rebate: the position is
// credited, not charged.
func AccruedInterest(notional, marketIndex, positionIndex *big.Int) *big.Int {
	deltaIndex := fixedpoint.Sub(marketIndex, positionIndex)
	return fixedpoint.MulDivFloor(notional, deltaIndex, fixedpoint.S18)
}

// BaseFeeAmount computes notional * baseFee / S7, ceil (spec §4.4). Callers
// only invoke this when the position is on the dominant side; the
// non-dominant side's base fee is zero.
func BaseFeeAmount(notional, baseFee *big.Int) *big.Int {
	return fixedpoint.MulS7Ceil(notional, baseFee)
}

// PriceImpact computes notional^2 / priceImpactScalar / S7, ceil, matching
// the quadratic form the spec resolves against the numeric fixtures in
// §9 (spec §4.4): pi = notional * notional / priceImpactScalar, then the
// final division by S7 takes the squared-S7 numerator back down to S7.
func PriceImpact(notional, priceImpactScalar *big.Int) *big.Int {
	sq := new(big.Int).Mul(notional, notional)
	denom := new(big.Int).Mul(priceImpactScalar, fixedpoint.S7)
	return fixedpoint.MulDivCeil(sq, big.NewInt(1), denom)
}

// CloseFee is the decomposed total fee charged when closing or force-closing
// a position (spec §4.4 "Total close fee").
type CloseFee struct {
	BaseFee      *big.Int // 0 unless this side is dominant
	PriceImpact  *big.Int
	AccruedInt   *big.Int // signed; negative is a rebate
	Total        *big.Int // BaseFee + PriceImpact + AccruedInt, signed
}

// ComputeCloseFee assembles the total close fee. isDominant must already
// reflect the ties-balanced rule (both sides dominant when notionals are
// equal) evaluated against the market aggregates *before* this position's
// own removal, per spec §4.4.
func ComputeCloseFee(notional, priceImpactScalar, baseFeeRate, marketIndex, positionIndex *big.Int, isDominant bool) CloseFee {
	pi := PriceImpact(notional, priceImpactScalar)
	ai := AccruedInterest(notional, marketIndex, positionIndex)
	base := big.NewInt(0)
	if isDominant {
		base = BaseFeeAmount(notional, baseFeeRate)
	}
	total := fixedpoint.Add(fixedpoint.Add(base, pi), ai)
	return CloseFee{BaseFee: base, PriceImpact: pi, AccruedInt: ai, Total: total}
}

// CloseResult is the settlement breakdown of calculate_close (spec §4.5).
type CloseResult struct {
	RawCallerFee  *big.Int
	NetPnL        *big.Int
	UserPayout    *big.Int
	Remaining     *big.Int
	CallerFee     *big.Int
	VaultTransfer *big.Int // positive: vault receives; negative: vault pays
}

// CalculateClose implements spec §4.5 calculate_close exactly.
func CalculateClose(collateral, pnl, fee, callerTakeRate *big.Int) CloseResult {
	rawCallerFee := fixedpoint.Abs(fixedpoint.MulDivFloor(fee, callerTakeRate, fixedpoint.S7))

	var netPnL *big.Int
	if fee.Sign() >= 0 {
		netPnL = fixedpoint.Sub(pnl, fee)
	} else {
		netPnL = fixedpoint.Sub(fixedpoint.Add(pnl, fixedpoint.Abs(fee)), rawCallerFee)
	}

	userPayout := fixedpoint.MaxZero(fixedpoint.Add(collateral, netPnL))
	remaining := fixedpoint.MaxZero(fixedpoint.Sub(collateral, userPayout))

	callerFee := big.NewInt(0)
	if fee.Sign() >= 0 {
		callerFee = fixedpoint.Min(rawCallerFee, remaining)
	}

	var vaultTransfer *big.Int
	if userPayout.Cmp(collateral) > 0 {
		vaultTransfer = fixedpoint.Neg(fixedpoint.Sub(userPayout, collateral))
	} else {
		vaultTransfer = fixedpoint.Sub(remaining, callerFee)
	}

	return CloseResult{
		RawCallerFee:  rawCallerFee,
		NetPnL:        netPnL,
		UserPayout:    userPayout,
		Remaining:     remaining,
		CallerFee:     callerFee,
		VaultTransfer: vaultTransfer,
	}
}

// StopLossTriggered reports whether currentPrice has reached the position's
// stop-loss (spec §4.4). A zero stop-loss is unset and never triggers.
func StopLossTriggered(isLong bool, stopLoss, currentPrice *big.Int) bool {
	if fixedpoint.Zero(stopLoss) {
		return false
	}
	if isLong {
		return currentPrice.Cmp(stopLoss) <= 0
	}
	return currentPrice.Cmp(stopLoss) >= 0
}

// TakeProfitTriggered reports whether currentPrice has reached the
// position's take-profit (spec §4.4). A zero take-profit is unset and never
// triggers. It fires at or beyond the target (>= for a long, <= for a
// short), the symmetric counterpart of StopLossTriggered.
func TakeProfitTriggered(isLong bool, takeProfit, currentPrice *big.Int) bool {
	if fixedpoint.Zero(takeProfit) {
		return false
	}
	if isLong {
		return currentPrice.Cmp(takeProfit) >= 0
	}
	return currentPrice.Cmp(takeProfit) <= 0
}

// Equity returns collateral + pnl - fee, the liquidation and margin
// reference value (Glossary).
func Equity(collateral, pnl, fee *big.Int) *big.Int {
	return fixedpoint.Sub(fixedpoint.Add(collateral, pnl), fee)
}

// MeetsMaintenanceMargin reports whether equity >= notional *
// maintenanceMargin / S7 (spec §4.6 Liquidate precondition is the negation
// of this).
func MeetsMaintenanceMargin(equity, notional, maintenanceMargin *big.Int) bool {
	required := fixedpoint.MulS7Ceil(notional, maintenanceMargin)
	return equity.Cmp(required) >= 0
}

// MeetsInitMargin reports whether equity >= notional * initMargin / S7
// (spec §4.5 modify_collateral withdrawal guard).
func MeetsInitMargin(equity, notional, initMargin *big.Int) bool {
	required := fixedpoint.MulS7Ceil(notional, initMargin)
	return equity.Cmp(required) >= 0
}
