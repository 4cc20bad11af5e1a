// config_actions.go wires tradeconfig's pure queue/apply/cancel decision
// functions into the engine's storage, completing C8 (spec §4.1). These are
// owner-gated except set_config/set_market, which any caller may trigger
// once the unlock time has passed.
package trading

import (
	"github.com/zenith-protocols/zenex-engine/coreerrors"
	"github.com/zenith-protocols/zenex-engine/market"
	"github.com/zenith-protocols/zenex-engine/tradeconfig"
)

// Initialize implements spec §4.1 initialize: one-shot, validates cfg, sets
// status Setup, installs an empty market list, and records name as the
// engine's contract address. vaultAddr is not stored and the vault is not
// queried for its underlying token; the engine uses the vault wired by
// SetVault.
func (e *Engine) Initialize(owner, name, vaultAddr string, cfg tradeconfig.GlobalConfig) error {
	if err := e.auth.RequireAuth(owner); err != nil {
		return err
	}
	if _, ok, err := e.store.GetGlobalConfig(); err != nil {
		return err
	} else if ok {
		return coreerrors.New(coreerrors.CodeAlreadyInitialized, "")
	}

	applied, status, err := tradeconfig.Initialize(cfg)
	if err != nil {
		return err
	}
	applied.Oracle = cfg.Oracle
	if err := e.store.PutGlobalConfig(applied); err != nil {
		return err
	}
	if err := e.store.PutStatus(status); err != nil {
		return err
	}
	if err := e.store.PutMarketList(nil); err != nil {
		return err
	}
	e.contractAddr = name
	return nil
}

// QueueSetConfig implements spec §4.1 queue_set_config (owner-only).
func (e *Engine) QueueSetConfig(owner string, cfg tradeconfig.GlobalConfig) error {
	if err := e.auth.RequireAuth(owner); err != nil {
		return err
	}
	status, err := e.statusValue()
	if err != nil {
		return err
	}
	q, err := tradeconfig.QueueGlobalConfig(status, cfg, e.clock.Now())
	if err != nil {
		return err
	}
	return e.store.PutQueuedGlobalConfig(q)
}

// CancelSetConfig implements spec §4.1 cancel_set_config (owner-only).
func (e *Engine) CancelSetConfig(owner string) error {
	if err := e.auth.RequireAuth(owner); err != nil {
		return err
	}
	return e.store.DeleteQueuedGlobalConfig()
}

// SetConfig implements spec §4.1 set_config: any caller may trigger it once
// the unlock time has passed.
func (e *Engine) SetConfig() error {
	q, ok, err := e.store.GetQueuedGlobalConfig()
	if err != nil {
		return err
	}
	if !ok {
		return coreerrors.New(coreerrors.CodeUpdateNotQueued, "")
	}
	applied, err := tradeconfig.ApplyGlobalConfig(q, e.clock.Now())
	if err != nil {
		return err
	}
	if err := e.store.PutGlobalConfig(applied); err != nil {
		return err
	}
	return e.store.DeleteQueuedGlobalConfig()
}

// QueueSetMarket implements spec §4.1 queue_set_market (owner-only).
func (e *Engine) QueueSetMarket(owner, asset string, cfg market.Config) error {
	if err := e.auth.RequireAuth(owner); err != nil {
		return err
	}
	status, err := e.statusValue()
	if err != nil {
		return err
	}
	q, err := tradeconfig.QueueMarketConfig(status, cfg, e.clock.Now())
	if err != nil {
		return err
	}
	return e.store.PutQueuedMarketConfig(asset, q)
}

// CancelSetMarket implements spec §4.1 cancel_set_market (owner-only).
func (e *Engine) CancelSetMarket(owner, asset string) error {
	if err := e.auth.RequireAuth(owner); err != nil {
		return err
	}
	return e.store.DeleteQueuedMarketConfig(asset)
}

// SetMarket implements spec §4.1 set_market: applies the queued config and,
// per spec, additionally initializes a fresh MarketData (zero aggregates,
// both indices at S18) and appends the asset to the market list. Re-running
// set_market for an already-active asset replaces its config in place
// without resetting MarketData — only a brand-new asset gets fresh
// aggregates.
func (e *Engine) SetMarket(asset string) error {
	q, ok, err := e.store.GetQueuedMarketConfig(asset)
	if err != nil {
		return err
	}
	if !ok {
		return coreerrors.New(coreerrors.CodeUpdateNotQueued, "")
	}
	applied, err := tradeconfig.ApplyMarketConfig(q, e.clock.Now())
	if err != nil {
		return err
	}
	if err := e.store.PutMarketConfig(asset, applied); err != nil {
		return err
	}
	if _, existing, err := e.store.GetMarketData(asset); err != nil {
		return err
	} else if !existing {
		if err := e.store.PutMarketData(market.NewData(asset, e.clock.Now())); err != nil {
			return err
		}
	}
	if err := e.store.AppendMarketList(asset); err != nil {
		return err
	}
	return e.store.DeleteQueuedMarketConfig(asset)
}

// SetStatus implements spec §4.1 set_status: immediate, owner-only.
func (e *Engine) SetStatus(owner string, status tradeconfig.Status) error {
	if err := e.auth.RequireAuth(owner); err != nil {
		return err
	}
	return e.store.PutStatus(status)
}
