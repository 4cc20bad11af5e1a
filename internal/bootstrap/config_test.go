package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zenex.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "./zenex-data", cfg.DataDir)
	require.Equal(t, uint32(32), cfg.Global.MaxPositions)

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Global, reloaded.Global, "the file written on first run must decode back identically")
}

func TestLoadDecodesExistingMarketsAndOraclePrices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zenex.toml")
	contents := `
DataDir = "/data"
ListenAddress = ":7701"
LogLevel = "debug"
MetricsAddress = ":9464"

[Global]
Oracle = "oracle-1"
CallerTakeRate = "100000"
MaxPositions = 10
MaxUtilization = "0"

[[Markets]]
Asset = "BTC"
Enabled = true
MaxPayout = "1000000000000"
MinCollateral = "10000000"
MaxCollateral = "1000000000000"
InitMargin = "1000000"
MaintenanceMargin = "500000"
BaseFee = "10000"
PriceImpactScalar = "1000000000000000"
BaseHourlyRate = "0"

[[OraclePrice]]
Asset = "BTC"
Price = "1000000000"
Timestamp = 1700000000
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Markets, 1)
	require.Equal(t, "BTC", cfg.Markets[0].Asset)
	require.Len(t, cfg.OraclePrices, 1)
	require.Equal(t, int64(1700000000), cfg.OraclePrices[0].Timestamp)
}
