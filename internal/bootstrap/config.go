// Package bootstrap loads the operator-facing configuration for a local
// enginectl run: storage path, oracle seed prices, default GlobalConfig, and
// the initial MarketConfig set to apply on startup. This is distinct from
// the on-chain tradeconfig.GlobalConfig/MarketConfig the trading engine
// itself queues and applies — those are domain state; this is the file an
// operator edits before the process boots.
//
// Grounded on the teacher's config/config.go (BurntSushi/toml, load-or-
// create-default file).
package bootstrap

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the TOML-decoded operator configuration.
type Config struct {
	DataDir        string         `toml:"DataDir"`
	ListenAddress  string         `toml:"ListenAddress"`
	LogLevel       string         `toml:"LogLevel"`
	MetricsAddress string         `toml:"MetricsAddress"`
	Global         GlobalSeed     `toml:"Global"`
	Markets        []MarketSeed   `toml:"Markets"`
	OraclePrices   []OraclePrice  `toml:"OraclePrice"`
}

// GlobalSeed mirrors tradeconfig.GlobalConfig's fields as plain strings/ints
// so TOML can express S7-scaled *big.Int values without a custom decoder.
type GlobalSeed struct {
	Oracle         string `toml:"Oracle"`
	CallerTakeRate string `toml:"CallerTakeRate"`
	MaxPositions   uint32 `toml:"MaxPositions"`
	MaxUtilization string `toml:"MaxUtilization"`
}

// MarketSeed mirrors market.Config for one asset.
type MarketSeed struct {
	Asset             string `toml:"Asset"`
	Enabled           bool   `toml:"Enabled"`
	MaxPayout         string `toml:"MaxPayout"`
	MinCollateral     string `toml:"MinCollateral"`
	MaxCollateral     string `toml:"MaxCollateral"`
	InitMargin        string `toml:"InitMargin"`
	MaintenanceMargin string `toml:"MaintenanceMargin"`
	BaseFee           string `toml:"BaseFee"`
	PriceImpactScalar string `toml:"PriceImpactScalar"`
	BaseHourlyRate    string `toml:"BaseHourlyRate"`
}

// OraclePrice seeds memhost.Oracle with a starting quote.
type OraclePrice struct {
	Asset     string `toml:"Asset"`
	Price     string `toml:"Price"`
	Timestamp int64  `toml:"Timestamp"`
}

// Load reads cfg from path, writing a usable default file first if one does
// not yet exist (matching the teacher's config.Load create-on-first-run
// behavior).
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("bootstrap: decode %s: %w", path, err)
	}
	return cfg, nil
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{
		DataDir:        "./zenex-data",
		ListenAddress:  ":7701",
		LogLevel:       "info",
		MetricsAddress: ":9464",
		Global: GlobalSeed{
			Oracle:         "oracle",
			CallerTakeRate: "0.01",  // decimal; enginectl scales it to S7 (100000)
			MaxPositions:   32,
			MaxUtilization: "0",
		},
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
