package trading

import (
	"math/big"

	"github.com/google/uuid"

	"github.com/zenith-protocols/zenex-engine/coreerrors"
	"github.com/zenith-protocols/zenex-engine/fixedpoint"
	"github.com/zenith-protocols/zenex-engine/observability/metrics"
	"github.com/zenith-protocols/zenex-engine/position"
)

// RequestType enumerates the permissionless keeper actions spec §4.6
// defines (Fill, StopLoss, TakeProfit, Liquidate).
type RequestType uint8

const (
	RequestFill RequestType = iota
	RequestStopLoss
	RequestTakeProfit
	RequestLiquidate
)

func (t RequestType) String() string {
	switch t {
	case RequestFill:
		return "Fill"
	case RequestStopLoss:
		return "StopLoss"
	case RequestTakeProfit:
		return "TakeProfit"
	case RequestLiquidate:
		return "Liquidate"
	default:
		return "Unknown"
	}
}

// ExecuteRequest is one entry in a keeper's batch (spec §4.6, §6
// ExecuteRequest).
type ExecuteRequest struct {
	Type       RequestType
	PositionID uint32
}

// Execute runs every request in order against a single Tx, recording a
// result code per request instead of aborting the batch on the first
// precondition failure (spec §4.6, §5: "an unavailable position or failed
// precondition records a non-zero result code and moves to the next
// request"); an error without a stable Code aborts the batch. The
// batch's uuid is a correlation id for logs only, grounded on the
// teacher's otc-gateway use of google/uuid for request tracing; it is
// never persisted (spec §9 "Result-code return for keeper batches").
func (e *Engine) Execute(caller string, requests []ExecuteRequest) ([]uint32, error) {
	if err := e.auth.RequireAuth(caller); err != nil {
		return nil, err
	}
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

	_ = uuid.New() // batch correlation id; a real host threads this into structured logs.

	tx := e.beginTx()
	gcfg, err := tx.globalConfig()
	if err != nil {
		return nil, err
	}

	results := make([]uint32, len(requests))
	for i, req := range requests {
		code, err := e.executeOne(tx, caller, gcfg.CallerTakeRate, req)
		if err != nil {
			return nil, err
		}
		results[i] = uint32(code)
		metrics.RecordKeeperRequest(req.Type.String(), code.String())
	}
	if err := tx.commit(); err != nil {
		return nil, err
	}
	return results, nil
}

// executeOne dispatches a single request and returns the code to surface in
// the result vector (CodeNone on success). Any error not tagged with a
// stable Code is an unexpected host-level failure, not a precondition miss
// (spec §7 "Authorization and host-level failures propagate unchanged"):
// it is returned as the error and Execute aborts the batch.
func (e *Engine) executeOne(tx *Tx, caller string, callerTakeRate *big.Int, req ExecuteRequest) (coreerrors.Code, error) {
	var err error
	switch req.Type {
	case RequestFill:
		err = e.fillOne(tx, caller, callerTakeRate, req.PositionID)
	case RequestStopLoss:
		err = e.triggerOne(tx, caller, req.PositionID, false)
	case RequestTakeProfit:
		err = e.triggerOne(tx, caller, req.PositionID, true)
	case RequestLiquidate:
		err = e.liquidateOne(tx, caller, req.PositionID)
	default:
		return coreerrors.CodeActionNotAllowedForStatus, nil
	}
	if err == nil {
		return coreerrors.CodeNone, nil
	}
	if code, ok := coreerrors.CodeOf(err); ok {
		return code, nil
	}
	return coreerrors.CodeNone, err
}

// fillOne implements spec §4.6 Fill: position must be Pending and the
// current price must have crossed the limit entry.
func (e *Engine) fillOne(tx *Tx, caller string, callerTakeRate *big.Int, positionID uint32) error {
	pos, err := tx.loadPosition(positionID)
	if err != nil {
		return err
	}
	if pos.Status != position.StatusPending {
		return coreerrors.New(coreerrors.CodePositionNotPending, "")
	}
	data, cfg, err := tx.loadMarket(pos.Asset)
	if err != nil {
		return err
	}
	price, err := tx.prices.Price(pos.Asset)
	if err != nil {
		return err
	}
	if pos.IsLong && price.Cmp(pos.EntryPrice) > 0 {
		return coreerrors.New(coreerrors.CodeLimitOrderNotFillable, "")
	}
	if !pos.IsLong && price.Cmp(pos.EntryPrice) < 0 {
		return coreerrors.New(coreerrors.CodeLimitOrderNotFillable, "")
	}

	pos.Status = position.StatusOpen
	pos.EntryPrice = fixedpoint.Clone(price)
	pos.InterestIndex = fixedpoint.Clone(data.IndexFor(pos.IsLong))
	data.UpdateStats(pos.IsLong, pos.Collateral, pos.NotionalSize)
	tx.markMarketDirty(pos.Asset)

	// The open fee + price impact were held by the contract on open (spec
	// §9 pending-position fee holding); they move to the vault in one
	// reconciled step now, with the keeper's cut carved out first (spec
	// §4.6: "pay base_fee ... minus caller_fee ... to the keeper").
	baseFee := position.BaseFeeAmount(pos.NotionalSize, cfg.BaseFee)
	callerFee := fixedpoint.MulS7Floor(baseFee, callerTakeRate)
	heldFee := fixedpoint.Clone(pos.HeldFee)
	toVault := fixedpoint.Sub(heldFee, callerFee)

	tx.recon.Add(e.contractAddr, fixedpoint.Neg(heldFee))
	tx.recon.Add(vaultAddress, toVault)
	if !fixedpoint.Zero(callerFee) {
		tx.recon.Add(caller, callerFee)
		metrics.RecordFee("keeper", feeFloat(callerFee))
	}
	metrics.RecordFee("vault", feeFloat(toVault))
	pos.HeldFee = big.NewInt(0)
	tx.markPositionDirty(positionID)
	return nil
}

// triggerOne implements spec §4.6 StopLoss / TakeProfit: the position must
// be Open and the corresponding trigger hit at the current price.
func (e *Engine) triggerOne(tx *Tx, caller string, positionID uint32, isTakeProfit bool) error {
	pos, err := tx.loadPosition(positionID)
	if err != nil {
		return err
	}
	if pos.Status != position.StatusOpen {
		return coreerrors.New(coreerrors.CodePositionNotOpen, "")
	}
	price, err := tx.prices.Price(pos.Asset)
	if err != nil {
		return err
	}
	if isTakeProfit {
		if !position.TakeProfitTriggered(pos.IsLong, pos.TakeProfit, price) {
			return coreerrors.New(coreerrors.CodeTakeProfitNotTriggered, "")
		}
	} else {
		if !position.StopLossTriggered(pos.IsLong, pos.StopLoss, price) {
			return coreerrors.New(coreerrors.CodeStopLossNotTriggered, "")
		}
	}

	data, cfg, err := tx.loadMarket(pos.Asset)
	if err != nil {
		return err
	}
	gcfg, err := tx.globalConfig()
	if err != nil {
		return err
	}

	pnl := position.PnL(pos.IsLong, pos.NotionalSize, pos.EntryPrice, price)
	isDominant := data.Dominant(pos.IsLong)
	closeFee := position.ComputeCloseFee(pos.NotionalSize, cfg.PriceImpactScalar, cfg.BaseFee, data.IndexFor(pos.IsLong), pos.InterestIndex, isDominant)
	result := position.CalculateClose(pos.Collateral, pnl, closeFee.Total, gcfg.CallerTakeRate)

	tx.recon.Add(pos.User, result.UserPayout)
	tx.recon.Add(vaultAddress, result.VaultTransfer)
	metrics.RecordFee("vault", feeFloat(result.VaultTransfer))
	if !fixedpoint.Zero(result.CallerFee) {
		tx.recon.Add(caller, result.CallerFee)
		metrics.RecordFee("keeper", feeFloat(result.CallerFee))
	}

	data.UpdateStats(pos.IsLong, fixedpoint.Neg(pos.Collateral), fixedpoint.Neg(pos.NotionalSize))
	tx.markMarketDirty(pos.Asset)

	pos.Status = position.StatusClosed
	tx.markPositionDirty(positionID)
	return e.store.RemoveUserIndex(pos.User, positionID)
}

// liquidateOne implements spec §4.6 Liquidate: equity must have fallen
// strictly below the maintenance-margin requirement.
func (e *Engine) liquidateOne(tx *Tx, caller string, positionID uint32) error {
	pos, err := tx.loadPosition(positionID)
	if err != nil {
		return err
	}
	if pos.Status != position.StatusOpen {
		return coreerrors.New(coreerrors.CodePositionNotOpen, "")
	}
	data, cfg, err := tx.loadMarket(pos.Asset)
	if err != nil {
		return err
	}
	gcfg, err := tx.globalConfig()
	if err != nil {
		return err
	}
	price, err := tx.prices.Price(pos.Asset)
	if err != nil {
		return err
	}

	pnl := position.PnL(pos.IsLong, pos.NotionalSize, pos.EntryPrice, price)
	isDominant := data.Dominant(pos.IsLong)
	closeFee := position.ComputeCloseFee(pos.NotionalSize, cfg.PriceImpactScalar, cfg.BaseFee, data.IndexFor(pos.IsLong), pos.InterestIndex, isDominant)
	equity := position.Equity(pos.Collateral, pnl, closeFee.Total)
	if position.MeetsMaintenanceMargin(equity, pos.NotionalSize, cfg.MaintenanceMargin) {
		return coreerrors.New(coreerrors.CodePositionNotLiquidatable, "")
	}

	rawCallerFee := fixedpoint.Abs(fixedpoint.MulS7Floor(closeFee.Total, gcfg.CallerTakeRate))
	callerFee := fixedpoint.Min(rawCallerFee, pos.Collateral)
	vaultShare := fixedpoint.Sub(pos.Collateral, callerFee)

	tx.recon.Add(vaultAddress, vaultShare)
	if !fixedpoint.Zero(callerFee) {
		tx.recon.Add(caller, callerFee)
	}

	data.UpdateStats(pos.IsLong, fixedpoint.Neg(pos.Collateral), fixedpoint.Neg(pos.NotionalSize))
	tx.markMarketDirty(pos.Asset)

	pos.Status = position.StatusClosed
	tx.markPositionDirty(positionID)
	return e.store.RemoveUserIndex(pos.User, positionID)
}
