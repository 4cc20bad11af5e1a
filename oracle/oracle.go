// Package oracle adapts host.Oracle into the engine's price lookup with the
// staleness bound and per-invocation caching spec §4.2 requires.
//
// Grounded on the teacher's core/pricing quote-cache pattern (cache a
// lookup for the lifetime of one state-transition so a single call sees a
// single consistent price per asset).
package oracle

import (
	"math/big"

	"github.com/zenith-protocols/zenex-engine/coreerrors"
)

const maxStalenessSeconds = 300

// Source is the subset of host.Oracle the cache depends on.
type Source interface {
	LastPrice(asset string) (price *big.Int, timestamp int64, ok bool)
}

// Cache wraps a Source with a per-invocation memo: the first Price(asset)
// call in a batch resolves and caches the price; every subsequent call for
// the same asset in the same Cache sees the identical value, even if the
// underlying oracle's state changes mid-batch (spec §4.2: "so that a single
// batch sees a consistent price for each asset").
type Cache struct {
	source Source
	now    int64
	prices map[string]*big.Int
}

// New returns a fresh per-invocation cache bound to now (the engine's
// ledger clock reading at the start of the entry point).
func New(source Source, now int64) *Cache {
	return &Cache{source: source, now: now, prices: make(map[string]*big.Int)}
}

// Price returns asset's cached or freshly resolved price, failing with
// PriceNotFound when the oracle has never priced the asset and PriceStale
// when the most recent report is older than 300 seconds relative to the
// cache's now.
func (c *Cache) Price(asset string) (*big.Int, error) {
	if cached, ok := c.prices[asset]; ok {
		return cached, nil
	}
	price, timestamp, ok := c.source.LastPrice(asset)
	if !ok {
		return nil, coreerrors.New(coreerrors.CodePriceNotFound, "no price reported for %s", asset)
	}
	if c.now-timestamp > maxStalenessSeconds {
		return nil, coreerrors.New(coreerrors.CodePriceStale, "%s price is %ds old", asset, c.now-timestamp)
	}
	c.prices[asset] = price
	return price, nil
}
