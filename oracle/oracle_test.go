package oracle

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zenith-protocols/zenex-engine/coreerrors"
	"github.com/zenith-protocols/zenex-engine/host/memhost"
)

func TestPriceReturnsNotFoundForUnknownAsset(t *testing.T) {
	src := memhost.NewOracle()
	c := New(src, 1000)

	_, err := c.Price("BTC")
	require.True(t, coreerrors.Is(err, coreerrors.CodePriceNotFound))
}

func TestPriceReturnsStaleBeyondWindow(t *testing.T) {
	src := memhost.NewOracle()
	src.SetPrice("BTC", big1(100), 0)
	c := New(src, maxStalenessSeconds+1)

	_, err := c.Price("BTC")
	require.True(t, coreerrors.Is(err, coreerrors.CodePriceStale))
}

func TestPriceAcceptsExactlyAtStalenessBoundary(t *testing.T) {
	src := memhost.NewOracle()
	src.SetPrice("BTC", big1(100), 0)
	c := New(src, maxStalenessSeconds)

	price, err := c.Price("BTC")
	require.NoError(t, err)
	require.Equal(t, big1(100), price)
}

func TestPriceIsMemoizedPerCacheEvenIfSourceChanges(t *testing.T) {
	src := memhost.NewOracle()
	src.SetPrice("BTC", big1(100), 0)
	c := New(src, 0)

	first, err := c.Price("BTC")
	require.NoError(t, err)

	src.SetPrice("BTC", big1(200), 0)
	second, err := c.Price("BTC")
	require.NoError(t, err)
	require.Equal(t, first, second, "one cache instance must see one price per asset for its whole lifetime")
}

func big1(v int64) *big.Int { return big.NewInt(v) }
