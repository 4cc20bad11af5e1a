package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zenith-protocols/zenex-engine/enginestate"
	"github.com/zenith-protocols/zenex-engine/host/memhost"
	"github.com/zenith-protocols/zenex-engine/internal/bootstrap"
	"github.com/zenith-protocols/zenex-engine/internal/query"
	"github.com/zenith-protocols/zenex-engine/observability/logging"
	"github.com/zenith-protocols/zenex-engine/observability/metrics"
	"github.com/zenith-protocols/zenex-engine/storage"
	"github.com/zenith-protocols/zenex-engine/trading"
	"github.com/zenith-protocols/zenex-engine/vault"
	"github.com/zenith-protocols/zenex-engine/vaultapp"
)

// App bundles every wired collaborator a command needs. One process, one
// engine, matching the contract model spec §1 describes.
type App struct {
	cfg    *bootstrap.Config
	db     storage.Database
	store  *enginestate.Store
	mirror *query.Mirror

	oracle   *memhost.Oracle
	token    *memhost.Token
	shares   *memhost.ShareToken
	clock    *memhost.Clock
	vault    *vault.Vault
	engine   *trading.Engine
	vaultApp *vaultapp.App
}

const configPath = "config.toml"

func newApp() (*App, error) {
	logging.Setup("enginectl", "local")

	cfg, err := bootstrap.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "engine"))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	store := enginestate.New(db)

	mirror, err := query.Open(filepath.Join(cfg.DataDir, "query.db"))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open read-model mirror: %w", err)
	}

	oracleSrc := memhost.NewOracle()
	for _, p := range cfg.OraclePrices {
		price, err := parseAmount(p.Price)
		if err != nil {
			return nil, fmt.Errorf("oracle price %s: %w", p.Asset, err)
		}
		oracleSrc.SetPrice(p.Asset, price, p.Timestamp)
	}

	token := memhost.NewToken()
	shares := memhost.NewShareToken()
	clock := memhost.NewClock(0)

	vaultState := vault.NewState("underlying", "vault-shares", 7*24*3600, mustParseAmount("1.0"), []string{"trading"})
	v := vault.New(vaultState)
	v.SetToken(token)
	v.SetShareToken(shares)

	engine := trading.New(store)
	engine.SetOracle(oracleSrc)
	engine.SetToken(token)
	engine.SetAuthorizer(memhost.Authorizer{})
	engine.SetClock(clock)
	engine.SetVault(v)
	engine.SetContractAddress("trading")

	va := vaultapp.New(v, store)
	va.SetAuthorizer(memhost.Authorizer{})
	va.SetClock(clock)

	metrics.Register(prometheus.DefaultRegisterer)
	go serveMetrics(cfg.MetricsAddress)

	return &App{
		cfg: cfg, db: db, store: store, mirror: mirror,
		oracle: oracleSrc, token: token, shares: shares,
		clock: clock, vault: v, engine: engine, vaultApp: va,
	}, nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	_ = http.ListenAndServe(addr, mux)
}

func (a *App) Close() {
	a.db.Close()
}
