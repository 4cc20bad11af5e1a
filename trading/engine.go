package trading

import (
	"math/big"

	"github.com/zenith-protocols/zenex-engine/coreerrors"
	"github.com/zenith-protocols/zenex-engine/enginestate"
	"github.com/zenith-protocols/zenex-engine/host"
	"github.com/zenith-protocols/zenex-engine/market"
	"github.com/zenith-protocols/zenex-engine/oracle"
	"github.com/zenith-protocols/zenex-engine/pause"
	"github.com/zenith-protocols/zenex-engine/position"
	"github.com/zenith-protocols/zenex-engine/tradeconfig"
	"github.com/zenith-protocols/zenex-engine/vault"
)

// feeFloat converts an S7-scaled fee amount to a float64 for metrics
// observation only; never used in settlement math. Returns 0 for nil/non-
// positive amounts.
func feeFloat(amount *big.Int) float64 {
	if amount == nil || amount.Sign() <= 0 {
		return 0
	}
	f, _ := new(big.Float).SetInt(amount).Float64()
	return f
}

// Engine is the trading contract's long-lived handle: one per process,
// holding the storage façade and the live host collaborators. Every public
// action below opens a fresh Tx, so two entry points never observe each
// other's in-flight cache (spec §5).
//
// Construct with New then wire collaborators via the Set* setters,
// mirroring the teacher's setter-injection idiom for engine dependencies
// rather than a long constructor parameter list.
type Engine struct {
	store        *enginestate.Store
	oracleSrc    oracle.Source
	token        host.Token
	auth         host.Authorizer
	clock        host.Clock
	vault        *vault.Vault
	contractAddr string
}

func New(store *enginestate.Store) *Engine {
	return &Engine{store: store, contractAddr: "trading"}
}

func (e *Engine) SetOracle(src oracle.Source)       { e.oracleSrc = src }
func (e *Engine) SetToken(t host.Token)             { e.token = t }
func (e *Engine) SetAuthorizer(a host.Authorizer)   { e.auth = a }
func (e *Engine) SetClock(c host.Clock)             { e.clock = c }
func (e *Engine) SetVault(v *vault.Vault)           { e.vault = v }
func (e *Engine) SetContractAddress(addr string)    { e.contractAddr = addr }

// Tx is the per-invocation scratch cache for markets and positions (spec
// §5 "loaded into per-invocation caches; mutations accumulate in the cache
// and are flushed once at the end of the entry point").
type Tx struct {
	engine *Engine
	now    int64
	prices *oracle.Cache
	recon  *Reconciler

	marketData   map[string]*market.Data
	marketConfig map[string]market.Config
	marketDirty  map[string]bool

	positions     map[uint32]*position.Position
	positionDirty map[uint32]bool
}

func (e *Engine) beginTx() *Tx {
	now := e.clock.Now()
	return &Tx{
		engine:        e,
		now:           now,
		prices:        oracle.New(e.oracleSrc, now),
		recon:         NewReconciler(),
		marketData:    make(map[string]*market.Data),
		marketConfig:  make(map[string]market.Config),
		marketDirty:   make(map[string]bool),
		positions:     make(map[uint32]*position.Position),
		positionDirty: make(map[uint32]bool),
	}
}

func (tx *Tx) globalConfig() (tradeconfig.GlobalConfig, error) {
	cfg, ok, err := tx.engine.store.GetGlobalConfig()
	if err != nil {
		return tradeconfig.GlobalConfig{}, err
	}
	if !ok {
		return tradeconfig.GlobalConfig{}, coreerrors.New(coreerrors.CodeNotInitialized, "")
	}
	return cfg, nil
}

// loadMarket returns the market's config and refreshed data, caching both
// for the rest of this Tx. Refresh always runs against the config's
// base_hourly_rate before any aggregate mutation, per spec §4.3.
func (tx *Tx) loadMarket(asset string) (*market.Data, market.Config, error) {
	if data, ok := tx.marketData[asset]; ok {
		return data, tx.marketConfig[asset], nil
	}
	cfg, ok, err := tx.engine.store.GetMarketConfig(asset)
	if err != nil {
		return nil, market.Config{}, err
	}
	if !ok {
		return nil, market.Config{}, coreerrors.New(coreerrors.CodeMarketNotFound, "%s", asset)
	}
	data, ok, err := tx.engine.store.GetMarketData(asset)
	if err != nil {
		return nil, market.Config{}, err
	}
	if !ok {
		return nil, market.Config{}, coreerrors.New(coreerrors.CodeMarketNotFound, "%s", asset)
	}
	data.RefreshWithRate(tx.now, cfg.BaseHourlyRate)
	tx.marketData[asset] = data
	tx.marketConfig[asset] = cfg
	tx.marketDirty[asset] = true
	return data, cfg, nil
}

func (tx *Tx) markMarketDirty(asset string) { tx.marketDirty[asset] = true }

func (tx *Tx) loadPosition(id uint32) (*position.Position, error) {
	if p, ok := tx.positions[id]; ok {
		return p, nil
	}
	p, ok, err := tx.engine.store.GetPosition(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, coreerrors.New(coreerrors.CodePositionNotFound, "%d", id)
	}
	tx.positions[id] = p
	return p, nil
}

func (tx *Tx) markPositionDirty(id uint32) { tx.positionDirty[id] = true }

// commit flushes every dirty market and position exactly once, then
// settles the reconciler. Callers must call commit as the very last step
// of an entry point (spec §5: "commits atomically"; this engine has no
// rollback, so operations must validate everything before mutating the
// cache).
func (tx *Tx) commit() error {
	for asset, dirty := range tx.marketDirty {
		if !dirty {
			continue
		}
		if err := tx.engine.store.PutMarketData(tx.marketData[asset]); err != nil {
			return err
		}
	}
	for id, dirty := range tx.positionDirty {
		if !dirty {
			continue
		}
		if err := tx.engine.store.PutPosition(tx.positions[id]); err != nil {
			return err
		}
	}
	return tx.recon.Settle(tx.engine.token, tx.engine.vault, tx.engine.contractAddr)
}

// statusValue reads the persisted status out of GlobalConfig's sibling
// record. Status is stored alongside GlobalConfig rather than as a field
// of it so set_status can apply immediately without going through the
// config timelock (spec §4.1 set_status: "immediate").
func (e *Engine) statusValue() (tradeconfig.Status, error) {
	s, ok, err := e.store.GetStatus()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, coreerrors.New(coreerrors.CodeNotInitialized, "")
	}
	return s, nil
}

func pauseGuard(status tradeconfig.Status) error {
	if err := pause.Guard(status); err != nil {
		return coreerrors.New(coreerrors.CodeContractPaused, "")
	}
	return nil
}
