package trading

import (
	"math/big"

	"github.com/zenith-protocols/zenex-engine/coreerrors"
	"github.com/zenith-protocols/zenex-engine/fixedpoint"
	"github.com/zenith-protocols/zenex-engine/market"
	"github.com/zenith-protocols/zenex-engine/observability/metrics"
	"github.com/zenith-protocols/zenex-engine/position"
)

// OpenPositionParams bundles open_position's inputs (spec §4.5).
type OpenPositionParams struct {
	User       string
	Asset      string
	Collateral *big.Int
	Notional   *big.Int
	IsLong     bool
	EntryPrice *big.Int // 0 for a market order
	TakeProfit *big.Int
	StopLoss   *big.Int
}

// OpenPositionResult is open_position's return value.
type OpenPositionResult struct {
	ID      uint32
	OpenFee *big.Int
}

// OpenPosition implements spec §4.5 open_position.
func (e *Engine) OpenPosition(p OpenPositionParams) (OpenPositionResult, error) {
	if err := e.auth.RequireAuth(p.User); err != nil {
		return OpenPositionResult{}, err
	}

	status, err := e.statusValue()
	if err != nil {
		return OpenPositionResult{}, err
	}
	if err := pauseGuard(status); err != nil {
		return OpenPositionResult{}, err
	}
	if !status.AllowsNewPositions() {
		return OpenPositionResult{}, coreerrors.New(coreerrors.CodeActionNotAllowedForStatus, "")
	}

	if p.Collateral == nil || p.Collateral.Sign() < 0 || p.Notional == nil || p.Notional.Sign() < 0 {
		return OpenPositionResult{}, coreerrors.New(coreerrors.CodeInvalidCollateral, "amounts must be non-negative")
	}

	tx := e.beginTx()

	data, cfg, err := tx.loadMarket(p.Asset)
	if err != nil {
		return OpenPositionResult{}, err
	}
	if !cfg.Enabled {
		return OpenPositionResult{}, coreerrors.New(coreerrors.CodeMarketDisabled, "%s", p.Asset)
	}
	if !fixedpoint.InRange(p.Collateral, cfg.MinCollateral, cfg.MaxCollateral) {
		return OpenPositionResult{}, coreerrors.New(coreerrors.CodeInvalidCollateral, "collateral out of range")
	}

	gcfg, err := tx.globalConfig()
	if err != nil {
		return OpenPositionResult{}, err
	}
	userIdx, err := e.store.GetUserIndex(p.User)
	if err != nil {
		return OpenPositionResult{}, err
	}
	if gcfg.MaxPositions != 0 && uint32(len(userIdx)) >= gcfg.MaxPositions {
		return OpenPositionResult{}, coreerrors.New(coreerrors.CodeMaxPositionsReached, "")
	}

	if !data.WithinUtilizationLimit(p.Notional, cfg.MaxPayout) {
		return OpenPositionResult{}, coreerrors.New(coreerrors.CodeUtilizationLimitExceeded, "")
	}
	if !fixedpoint.Zero(gcfg.MaxUtilization) {
		if !data.WithinGlobalUtilization(p.Notional, e.vault.TotalAssets(), gcfg.MaxUtilization) {
			return OpenPositionResult{}, coreerrors.New(coreerrors.CodeUtilizationLimitExceeded, "")
		}
	}

	currentPrice, err := tx.prices.Price(p.Asset)
	if err != nil {
		return OpenPositionResult{}, err
	}

	willOpenNow := fixedpoint.Zero(p.EntryPrice)
	entryPrice := currentPrice
	if !willOpenNow {
		if p.IsLong && p.EntryPrice.Cmp(currentPrice) > 0 {
			return OpenPositionResult{}, coreerrors.New(coreerrors.CodeInvalidEntryPrice, "long limit entry must be <= current price")
		}
		if !p.IsLong && p.EntryPrice.Cmp(currentPrice) < 0 {
			return OpenPositionResult{}, coreerrors.New(coreerrors.CodeInvalidEntryPrice, "short limit entry must be >= current price")
		}
		entryPrice = p.EntryPrice
	}

	// Dominant side is evaluated against aggregates *after* the
	// hypothetical add (spec §4.4).
	isDominant := isDominantAfterAdd(data, p.IsLong, p.Notional)
	openFee := big.NewInt(0)
	if isDominant {
		openFee = position.BaseFeeAmount(p.Notional, cfg.BaseFee)
	}
	priceImpact := position.PriceImpact(p.Notional, cfg.PriceImpactScalar)

	id, err := e.store.NextPositionID()
	if err != nil {
		return OpenPositionResult{}, err
	}

	status2 := position.StatusPending
	if willOpenNow {
		status2 = position.StatusOpen
		data.UpdateStats(p.IsLong, p.Collateral, p.Notional)
		tx.markMarketDirty(p.Asset)
	}

	pos := &position.Position{
		ID:            id,
		User:          p.User,
		Asset:         p.Asset,
		IsLong:        p.IsLong,
		Status:        status2,
		EntryPrice:    fixedpoint.Clone(entryPrice),
		Collateral:    fixedpoint.Clone(p.Collateral),
		NotionalSize:  fixedpoint.Clone(p.Notional),
		StopLoss:      fixedpoint.Clone(p.StopLoss),
		TakeProfit:    fixedpoint.Clone(p.TakeProfit),
		InterestIndex: fixedpoint.Clone(data.IndexFor(p.IsLong)),
		CreatedAt:     tx.now,
		HeldFee:       big.NewInt(0),
	}
	if !willOpenNow {
		pos.HeldFee = fixedpoint.Add(openFee, priceImpact)
	}

	locked := fixedpoint.Add(fixedpoint.Add(p.Collateral, openFee), priceImpact)
	tx.recon.Add(p.User, fixedpoint.Neg(locked))
	if willOpenNow {
		// Open fee and price impact move to the vault immediately as
		// strategy income (spec §4.5 step 4).
		tx.recon.Add(vaultAddress, fixedpoint.Add(openFee, priceImpact))
	} else {
		// Held by the contract until fill so cancel can refund intact
		// (spec §9 pending-position fee holding).
		tx.recon.Add(e.contractAddr, fixedpoint.Add(openFee, priceImpact))
	}

	if err := e.store.PutPosition(pos); err != nil {
		return OpenPositionResult{}, err
	}
	if err := e.store.AppendUserIndex(p.User, id); err != nil {
		return OpenPositionResult{}, err
	}
	if err := tx.commit(); err != nil {
		return OpenPositionResult{}, err
	}

	return OpenPositionResult{ID: id, OpenFee: fixedpoint.Add(openFee, priceImpact)}, nil
}

// isDominantAfterAdd evaluates the dominant-side rule against aggregates
// after hypothetically adding deltaNotional to isLong's side (spec §4.4).
func isDominantAfterAdd(data *market.Data, isLong bool, deltaNotional *big.Int) bool {
	longAfter := fixedpoint.Clone(data.LongNotionalSize)
	shortAfter := fixedpoint.Clone(data.ShortNotionalSize)
	if isLong {
		longAfter = fixedpoint.Add(longAfter, deltaNotional)
	} else {
		shortAfter = fixedpoint.Add(shortAfter, deltaNotional)
	}
	cmp := longAfter.Cmp(shortAfter)
	if isLong {
		return cmp >= 0
	}
	return cmp <= 0
}

// ClosePositionResult is close_position's return value.
type ClosePositionResult struct {
	PnL *big.Int
	Fee *big.Int
}

// ClosePosition implements spec §4.5 close_position.
func (e *Engine) ClosePosition(positionID uint32) (ClosePositionResult, error) {
	status, err := e.statusValue()
	if err != nil {
		return ClosePositionResult{}, err
	}
	if err := pauseGuard(status); err != nil {
		return ClosePositionResult{}, err
	}
	if !status.AllowsCloseOrKeeper() {
		return ClosePositionResult{}, coreerrors.New(coreerrors.CodeActionNotAllowedForStatus, "")
	}

	tx := e.beginTx()
	pos, err := tx.loadPosition(positionID)
	if err != nil {
		return ClosePositionResult{}, err
	}
	if err := e.auth.RequireAuth(pos.User); err != nil {
		return ClosePositionResult{}, err
	}

	switch pos.Status {
	case position.StatusClosed:
		return ClosePositionResult{}, coreerrors.New(coreerrors.CodePositionAlreadyClosed, "")
	case position.StatusPending:
		// The held open fee + price impact also return to the user on a
		// Pending cancel (spec §9 pending-position fee holding).
		refund := fixedpoint.Add(pos.Collateral, pos.HeldFee)
		tx.recon.Add(pos.User, refund)
		pos.HeldFee = big.NewInt(0)
		pos.Status = position.StatusClosed
		tx.markPositionDirty(positionID)
		if err := e.store.RemoveUserIndex(pos.User, positionID); err != nil {
			return ClosePositionResult{}, err
		}
		if err := tx.commit(); err != nil {
			return ClosePositionResult{}, err
		}
		return ClosePositionResult{PnL: big.NewInt(0), Fee: big.NewInt(0)}, nil
	}

	data, cfg, err := tx.loadMarket(pos.Asset)
	if err != nil {
		return ClosePositionResult{}, err
	}
	gcfg, err := tx.globalConfig()
	if err != nil {
		return ClosePositionResult{}, err
	}
	price, err := tx.prices.Price(pos.Asset)
	if err != nil {
		return ClosePositionResult{}, err
	}

	pnl := position.PnL(pos.IsLong, pos.NotionalSize, pos.EntryPrice, price)
	isDominant := data.Dominant(pos.IsLong)
	closeFee := position.ComputeCloseFee(pos.NotionalSize, cfg.PriceImpactScalar, cfg.BaseFee, data.IndexFor(pos.IsLong), pos.InterestIndex, isDominant)
	result := position.CalculateClose(pos.Collateral, pnl, closeFee.Total, gcfg.CallerTakeRate)

	tx.recon.Add(pos.User, result.UserPayout)
	tx.recon.Add(vaultAddress, result.VaultTransfer)
	metrics.RecordFee("vault", feeFloat(result.VaultTransfer))

	data.UpdateStats(pos.IsLong, fixedpoint.Neg(pos.Collateral), fixedpoint.Neg(pos.NotionalSize))
	tx.markMarketDirty(pos.Asset)

	pos.Status = position.StatusClosed
	tx.markPositionDirty(positionID)
	if err := e.store.RemoveUserIndex(pos.User, positionID); err != nil {
		return ClosePositionResult{}, err
	}
	if err := tx.commit(); err != nil {
		return ClosePositionResult{}, err
	}

	return ClosePositionResult{PnL: pnl, Fee: closeFee.Total}, nil
}

// ModifyCollateral implements spec §4.5 modify_collateral.
func (e *Engine) ModifyCollateral(positionID uint32, newCollateral *big.Int) (*big.Int, error) {
	status, err := e.statusValue()
	if err != nil {
		return nil, err
	}
	if err := pauseGuard(status); err != nil {
		return nil, err
	}
	if !status.AllowsCloseOrKeeper() {
		return nil, coreerrors.New(coreerrors.CodeActionNotAllowedForStatus, "")
	}
	if newCollateral == nil || newCollateral.Sign() <= 0 {
		return nil, coreerrors.New(coreerrors.CodeInvalidCollateral, "new_collateral must be > 0")
	}

	tx := e.beginTx()
	pos, err := tx.loadPosition(positionID)
	if err != nil {
		return nil, err
	}
	if err := e.auth.RequireAuth(pos.User); err != nil {
		return nil, err
	}
	if pos.Status != position.StatusOpen {
		return nil, coreerrors.New(coreerrors.CodePositionNotOpen, "")
	}

	data, cfg, err := tx.loadMarket(pos.Asset)
	if err != nil {
		return nil, err
	}
	price, err := tx.prices.Price(pos.Asset)
	if err != nil {
		return nil, err
	}

	ai := position.AccruedInterest(pos.NotionalSize, data.IndexFor(pos.IsLong), pos.InterestIndex)
	pos.Collateral = fixedpoint.Sub(pos.Collateral, ai)
	data.UpdateStats(pos.IsLong, fixedpoint.Neg(ai), big.NewInt(0))
	tx.markMarketDirty(pos.Asset)
	tx.recon.Add(vaultAddress, ai)

	pos.InterestIndex = fixedpoint.Clone(data.IndexFor(pos.IsLong))

	delta := fixedpoint.Sub(newCollateral, pos.Collateral)
	if delta.Sign() < 0 {
		pnl := position.PnL(pos.IsLong, pos.NotionalSize, pos.EntryPrice, price)
		projectedCollateral := fixedpoint.Add(pos.Collateral, delta)
		equity := position.Equity(projectedCollateral, pnl, big.NewInt(0))
		if !position.MeetsInitMargin(equity, pos.NotionalSize, cfg.InitMargin) {
			return nil, coreerrors.New(coreerrors.CodeWithdrawalBreaksMargin, "")
		}
	}

	pos.Collateral = fixedpoint.Add(pos.Collateral, delta)
	data.UpdateStats(pos.IsLong, delta, big.NewInt(0))
	tx.recon.Add(pos.User, fixedpoint.Neg(delta))
	tx.recon.Add(e.contractAddr, delta)
	tx.markPositionDirty(positionID)

	if err := tx.commit(); err != nil {
		return nil, err
	}
	return ai, nil
}

// SetTriggers implements spec §4.5 set_triggers.
func (e *Engine) SetTriggers(positionID uint32, takeProfit, stopLoss *big.Int) error {
	status, err := e.statusValue()
	if err != nil {
		return err
	}
	if err := pauseGuard(status); err != nil {
		return err
	}
	if !status.AllowsCloseOrKeeper() {
		return coreerrors.New(coreerrors.CodeActionNotAllowedForStatus, "")
	}

	tx := e.beginTx()
	pos, err := tx.loadPosition(positionID)
	if err != nil {
		return err
	}
	if err := e.auth.RequireAuth(pos.User); err != nil {
		return err
	}
	if pos.Status != position.StatusOpen {
		return coreerrors.New(coreerrors.CodePositionNotOpen, "")
	}

	price, err := tx.prices.Price(pos.Asset)
	if err != nil {
		return err
	}

	if !fixedpoint.Zero(takeProfit) {
		if pos.IsLong && takeProfit.Cmp(price) <= 0 {
			return coreerrors.New(coreerrors.CodeInvalidTakeProfitPrice, "")
		}
		if !pos.IsLong && takeProfit.Cmp(price) >= 0 {
			return coreerrors.New(coreerrors.CodeInvalidTakeProfitPrice, "")
		}
	}
	if !fixedpoint.Zero(stopLoss) {
		if pos.IsLong && stopLoss.Cmp(price) >= 0 {
			return coreerrors.New(coreerrors.CodeInvalidStopLossPrice, "")
		}
		if !pos.IsLong && stopLoss.Cmp(price) <= 0 {
			return coreerrors.New(coreerrors.CodeInvalidStopLossPrice, "")
		}
	}

	pos.TakeProfit = fixedpoint.Clone(takeProfit)
	pos.StopLoss = fixedpoint.Clone(stopLoss)
	tx.markPositionDirty(positionID)
	return tx.commit()
}
