// Package market implements the per-asset open-interest aggregates and
// cumulative interest-index accrual described in spec §3 (MarketData) and
// §4.3 (Market::refresh, update_stats, utilization). The imbalance-corrected
// hourly rate model lives in interest.go.
//
// Grounded on the refresh-then-mutate accrual shape of the teacher's
// native/lending engine (accrueInterest before any balance mutation), scaled
// down from ray (1e27) precision to the spec's S18 index precision.
package market

import (
	"math/big"

	"github.com/zenith-protocols/zenex-engine/fixedpoint"
)

// Config is the immutable-per-asset configuration queued and applied by the
// tradeconfig package (spec §3 MarketConfig).
type Config struct {
	Enabled             bool
	MaxPayout           *big.Int
	MinCollateral       *big.Int
	MaxCollateral       *big.Int
	InitMargin          *big.Int // S7
	MaintenanceMargin   *big.Int // S7
	BaseFee             *big.Int // S7
	PriceImpactScalar   *big.Int // S7
	BaseHourlyRate      *big.Int // S18, signed magnitude but always >= 0 by validation
}

// Clone returns a deep copy of the config.
func (c Config) Clone() Config {
	return Config{
		Enabled:           c.Enabled,
		MaxPayout:         fixedpoint.Clone(c.MaxPayout),
		MinCollateral:     fixedpoint.Clone(c.MinCollateral),
		MaxCollateral:     fixedpoint.Clone(c.MaxCollateral),
		InitMargin:        fixedpoint.Clone(c.InitMargin),
		MaintenanceMargin: fixedpoint.Clone(c.MaintenanceMargin),
		BaseFee:           fixedpoint.Clone(c.BaseFee),
		PriceImpactScalar: fixedpoint.Clone(c.PriceImpactScalar),
		BaseHourlyRate:    fixedpoint.Clone(c.BaseHourlyRate),
	}
}

// Validate enforces the MarketConfig rules from spec §4.1.
func (c Config) Validate() error {
	if fixedpoint.Zero(c.MinCollateral) || c.MinCollateral.Cmp(fixedpoint.S7) < 0 {
		return errInvalid("min_collateral must be >= S7")
	}
	if c.MaxCollateral == nil || c.MaxCollateral.Cmp(c.MinCollateral) <= 0 {
		return errInvalid("max_collateral must be > min_collateral")
	}
	if c.MaintenanceMargin == nil || c.MaintenanceMargin.Sign() <= 0 {
		return errInvalid("maintenance_margin must be > 0")
	}
	if c.InitMargin == nil || c.InitMargin.Sign() <= 0 {
		return errInvalid("init_margin must be > 0")
	}
	if c.InitMargin.Cmp(c.MaintenanceMargin) < 0 {
		return errInvalid("init_margin must be >= maintenance_margin")
	}
	if c.BaseFee == nil || c.BaseFee.Sign() < 0 {
		return errInvalid("base_fee must be >= 0")
	}
	if c.BaseHourlyRate == nil || c.BaseHourlyRate.Sign() < 0 {
		return errInvalid("base_hourly_rate must be >= 0")
	}
	if c.PriceImpactScalar == nil || c.PriceImpactScalar.Sign() <= 0 {
		return errInvalid("price_impact_scalar must be > 0")
	}
	return nil
}

// Data is the mutable per-asset aggregate state (spec §3 MarketData).
type Data struct {
	Asset             string
	LongCollateral    *big.Int
	LongNotionalSize  *big.Int
	ShortCollateral   *big.Int
	ShortNotionalSize *big.Int
	LongInterestIndex *big.Int // S18
	ShortInterestIndex *big.Int // S18
	LastUpdate        int64
}

// NewData returns a freshly activated market with zero aggregates and both
// indices initialized to S18, per spec §4.1 set_market.
func NewData(asset string, now int64) *Data {
	return &Data{
		Asset:              asset,
		LongCollateral:     big.NewInt(0),
		LongNotionalSize:   big.NewInt(0),
		ShortCollateral:    big.NewInt(0),
		ShortNotionalSize:  big.NewInt(0),
		LongInterestIndex:  fixedpoint.Clone(fixedpoint.S18),
		ShortInterestIndex: fixedpoint.Clone(fixedpoint.S18),
		LastUpdate:         now,
	}
}

// Clone returns a deep copy of d.
func (d *Data) Clone() *Data {
	if d == nil {
		return nil
	}
	return &Data{
		Asset:              d.Asset,
		LongCollateral:     fixedpoint.Clone(d.LongCollateral),
		LongNotionalSize:   fixedpoint.Clone(d.LongNotionalSize),
		ShortCollateral:    fixedpoint.Clone(d.ShortCollateral),
		ShortNotionalSize:  fixedpoint.Clone(d.ShortNotionalSize),
		LongInterestIndex:  fixedpoint.Clone(d.LongInterestIndex),
		ShortInterestIndex: fixedpoint.Clone(d.ShortInterestIndex),
		LastUpdate:         d.LastUpdate,
	}
}

// IndexFor returns the cumulative interest index for the given side.
func (d *Data) IndexFor(isLong bool) *big.Int {
	if isLong {
		return d.LongInterestIndex
	}
	return d.ShortInterestIndex
}

// NotionalFor returns the aggregate notional for the given side.
func (d *Data) NotionalFor(isLong bool) *big.Int {
	if isLong {
		return d.LongNotionalSize
	}
	return d.ShortNotionalSize
}

// CollateralFor returns the aggregate collateral for the given side.
func (d *Data) CollateralFor(isLong bool) *big.Int {
	if isLong {
		return d.LongCollateral
	}
	return d.ShortCollateral
}

// Dominant reports whether the given side is dominant: the long side when
// long_notional >= short_notional, the short side when short_notional >=
// long_notional (spec §4.4). On an exact tie both sides are dominant, so
// both pay the base fee.
func (d *Data) Dominant(isLong bool) bool {
	cmp := d.LongNotionalSize.Cmp(d.ShortNotionalSize)
	if isLong {
		return cmp >= 0
	}
	return cmp <= 0
}

// RefreshWithRate advances both cumulative interest indices to now, given
// the asset's configured base hourly rate (spec §4.3 step 1: base_hourly_rate
// is a static MarketConfig input; Data itself carries no copy of Config, so
// every caller supplies it explicitly). Idempotent: calling it twice at the
// same timestamp is a no-op.
func (d *Data) RefreshWithRate(now int64, baseHourlyRate *big.Int) {
	delta := now - d.LastUpdate
	if delta == 0 {
		return
	}
	rLong, rShort := ImbalanceRates(baseHourlyRate, d.LongNotionalSize, d.ShortNotionalSize)
	d.LongInterestIndex = applyRate(d.LongInterestIndex, rLong, delta)
	d.ShortInterestIndex = applyRate(d.ShortInterestIndex, rShort, delta)
	d.LastUpdate = now
}

// applyRate advances index by the compounding rule
// index' = index * (1 + (r/3600) * delta / S18), all intermediate arithmetic
// at S18, rounded floor (spec §4.3 step 3). A negative rate credits the
// side and moves the index down; no separate per-side credit accumulator
// is kept, so indices move in either direction, and accrued interest at
// close treats a negative delta as a rebate (see position.AccruedInterest).
func applyRate(index, ratePerHour *big.Int, deltaSeconds int64) *big.Int {
	if ratePerHour == nil || ratePerHour.Sign() == 0 || deltaSeconds == 0 {
		return fixedpoint.Clone(index)
	}
	// rPerSecond = ratePerHour / 3600, kept unreduced to avoid losing
	// precision: growth = index * ratePerHour * delta / (3600 * S18).
	growth := new(big.Int).Mul(index, ratePerHour)
	growth.Mul(growth, big.NewInt(deltaSeconds))
	denom := new(big.Int).Mul(big.NewInt(3600), fixedpoint.S18)
	delta := fixedpoint.MulDivFloor(growth, big.NewInt(1), denom)
	return fixedpoint.Add(index, delta)
}

// UpdateStats applies a signed delta to the given side's collateral and
// notional aggregates (spec §4.3 update_stats), called on open, modify,
// close, and liquidation. Deltas are typically negative on close/liquidate.
func (d *Data) UpdateStats(isLong bool, deltaCollateral, deltaNotional *big.Int) {
	if isLong {
		d.LongCollateral = fixedpoint.MaxZero(fixedpoint.Add(d.LongCollateral, deltaCollateral))
		d.LongNotionalSize = fixedpoint.MaxZero(fixedpoint.Add(d.LongNotionalSize, deltaNotional))
		return
	}
	d.ShortCollateral = fixedpoint.MaxZero(fixedpoint.Add(d.ShortCollateral, deltaCollateral))
	d.ShortNotionalSize = fixedpoint.MaxZero(fixedpoint.Add(d.ShortNotionalSize, deltaNotional))
}

// OpenInterest returns long_notional + short_notional.
func (d *Data) OpenInterest() *big.Int {
	return fixedpoint.Add(d.LongNotionalSize, d.ShortNotionalSize)
}

// Utilization returns open_interest / max_payout at S7 precision, or nil if
// maxPayout is zero. Config.Validate does not require a non-zero max_payout.
func (d *Data) Utilization(maxPayout *big.Int) *big.Int {
	if fixedpoint.Zero(maxPayout) {
		return nil
	}
	return fixedpoint.MulDivFloor(d.OpenInterest(), fixedpoint.S7, maxPayout)
}

// WithinUtilizationLimit reports whether opening deltaNotional more on top
// of the current open interest stays at or below maxPayout (spec §4.3 /
// §4.5: "a new position's entry notional must not push total open interest
// for the asset above max_payout").
func (d *Data) WithinUtilizationLimit(deltaNotional, maxPayout *big.Int) bool {
	projected := fixedpoint.Add(d.OpenInterest(), deltaNotional)
	return projected.Cmp(maxPayout) <= 0
}

// WithinGlobalUtilization reports whether, after adding deltaNotional to
// this market's open interest, the result stays within
// vaultAssets * maxUtilization / S7 (spec §4.3: "at open_position, if
// max_utilization != 0, reject when long_notional + short_notional +
// new_notional > vault_assets * max_utilization / S7"). A zero maxUtilization
// disables the check entirely.
func (d *Data) WithinGlobalUtilization(deltaNotional, vaultAssets, maxUtilization *big.Int) bool {
	if fixedpoint.Zero(maxUtilization) {
		return true
	}
	projected := fixedpoint.Add(d.OpenInterest(), deltaNotional)
	cap := fixedpoint.MulDivFloor(vaultAssets, maxUtilization, fixedpoint.S7)
	return projected.Cmp(cap) <= 0
}

type invalidConfigError struct{ msg string }

func (e *invalidConfigError) Error() string { return e.msg }

func errInvalid(msg string) error { return &invalidConfigError{msg: msg} }
