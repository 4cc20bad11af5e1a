package tradeconfig

import (
	"github.com/zenith-protocols/zenex-engine/coreerrors"
	"github.com/zenith-protocols/zenex-engine/market"
)

// These are pure decision functions: they validate and compute the next
// state but never touch storage. The caller (trading.Engine) is
// responsible for loading the current state via enginestate.Store, calling
// the matching function here, and persisting the result — this keeps
// tradeconfig free of a storage dependency, avoiding an import cycle with
// enginestate (which itself needs tradeconfig's types).

// Initialize validates cfg and returns the initial GlobalConfig and Status
// for a freshly created engine (spec §4.1 initialize: one-shot, status
// Setup, empty market list installed by the caller).
func Initialize(cfg GlobalConfig) (GlobalConfig, Status, error) {
	if err := cfg.Validate(); err != nil {
		return GlobalConfig{}, 0, err
	}
	return cfg.Clone(), StatusSetup, nil
}

// QueueGlobalConfig validates cfg and returns a QueuedGlobalConfig unlocking
// after currentStatus.TimelockDelay() (zero in Setup).
func QueueGlobalConfig(currentStatus Status, cfg GlobalConfig, now int64) (QueuedGlobalConfig, error) {
	if err := cfg.Validate(); err != nil {
		return QueuedGlobalConfig{}, err
	}
	return QueuedGlobalConfig{
		Config:     cfg.Clone(),
		UnlockTime: now + currentStatus.TimelockDelay(),
		Pending:    true,
	}, nil
}

// ApplyGlobalConfig validates that a queued config exists and its unlock
// time has passed, returning the config to install.
func ApplyGlobalConfig(q QueuedGlobalConfig, now int64) (GlobalConfig, error) {
	if !q.Pending {
		return GlobalConfig{}, coreerrors.New(coreerrors.CodeUpdateNotQueued, "")
	}
	if now < q.UnlockTime {
		return GlobalConfig{}, coreerrors.New(coreerrors.CodeUpdateNotUnlocked, "")
	}
	return q.Config.Clone(), nil
}

// QueueMarketConfig validates cfg and returns a QueuedMarketConfig unlocking
// after currentStatus.TimelockDelay().
func QueueMarketConfig(currentStatus Status, cfg market.Config, now int64) (QueuedMarketConfig, error) {
	if err := cfg.Validate(); err != nil {
		return QueuedMarketConfig{}, coreerrors.New(coreerrors.CodeInvalidConfig, "%s", err)
	}
	return QueuedMarketConfig{
		Config:     cfg.Clone(),
		UnlockTime: now + currentStatus.TimelockDelay(),
		Pending:    true,
	}, nil
}

// ApplyMarketConfig validates that a queued market config exists and is
// unlocked, returning the config to install. The caller is additionally
// responsible for initializing a fresh market.Data (spec §4.1 set_market:
// "additionally initializes MarketData with zero aggregates... and appends
// to the market list") and appending the asset to the market list — both
// are storage-shaped operations outside this package's scope.
func ApplyMarketConfig(q QueuedMarketConfig, now int64) (market.Config, error) {
	if !q.Pending {
		return market.Config{}, coreerrors.New(coreerrors.CodeUpdateNotQueued, "")
	}
	if now < q.UnlockTime {
		return market.Config{}, coreerrors.New(coreerrors.CodeUpdateNotUnlocked, "")
	}
	return q.Config.Clone(), nil
}
