package main

import "time"

// mirrorMarket refreshes one asset's read-model row from live engine state.
// Errors are discarded, not returned: the mirror is a non-authoritative
// reporting aid, and a stale or missing row never blocks a trading action.
func (a *App) mirrorMarket(asset string) {
	data, ok, err := a.store.GetMarketData(asset)
	if err != nil || !ok {
		return
	}
	cfg, ok, err := a.store.GetMarketConfig(asset)
	if err != nil || !ok {
		return
	}
	_ = a.mirror.RefreshMarket(data, cfg, time.Unix(a.clock.Now(), 0))
}

// mirrorPosition refreshes or drops one position's read-model row depending
// on whether it still exists in enginestate.
func (a *App) mirrorPosition(id uint32) error {
	pos, ok, err := a.store.GetPosition(id)
	if err != nil {
		return err
	}
	if !ok {
		return a.mirror.RemovePosition(id)
	}
	return a.mirror.RefreshPosition(pos, time.Unix(a.clock.Now(), 0))
}
