// Package trading implements the request processor (C9 user actions, C10
// keeper actions, C11 transfer reconciler) atop the market, position,
// vault, tradeconfig, oracle, and enginestate packages.
//
// Grounded on the teacher's native/escrow settlement pass, which similarly
// aggregates signed per-account deltas before touching any external token
// balance, and on native/lending's single-flush-per-transaction cache
// discipline.
package trading

import (
	"math/big"
	"sort"

	"github.com/zenith-protocols/zenex-engine/fixedpoint"
	"github.com/zenith-protocols/zenex-engine/host"
)

const vaultAddress = "vault"

// Reconciler accumulates every conceptual token movement for one entry
// point as a signed delta against an address, then settles them in the
// strict order spec §4.7 requires: vault-out, then everyone else, then
// vault-in. This guarantees the contract's own balance is sufficient for
// every outbound step and that the vault sees at most one withdraw and one
// deposit per batch.
type Reconciler struct {
	deltas map[string]*big.Int
	order  []string
}

func NewReconciler() *Reconciler {
	return &Reconciler{deltas: make(map[string]*big.Int)}
}

// Add records a signed delta against addr: positive means the contract
// pays addr, negative means addr pays the contract.
func (r *Reconciler) Add(addr string, delta *big.Int) {
	if fixedpoint.Zero(delta) {
		return
	}
	if _, ok := r.deltas[addr]; !ok {
		r.order = append(r.order, addr)
		r.deltas[addr] = big.NewInt(0)
	}
	r.deltas[addr] = fixedpoint.Add(r.deltas[addr], delta)
}

// Settle executes the three-phase pass against token and vaultMover, using
// contractAddr as the contract's own address for the intermediate
// transfers described in spec §4.7 step 2.
func (r *Reconciler) Settle(token host.Token, vaultMover host.VaultMover, contractAddr string) error {
	vaultDelta := r.deltas[vaultAddress]
	if vaultDelta == nil {
		vaultDelta = big.NewInt(0)
	}

	// Step 1: vault pays the contract first, so every later outbound
	// transfer below has sufficient balance to draw from.
	if vaultDelta.Sign() < 0 {
		if err := vaultMover.StrategyWithdraw(contractAddr, fixedpoint.Abs(vaultDelta)); err != nil {
			return err
		}
	}

	// Step 2: every non-vault address with a non-zero delta, in a
	// deterministic (sorted) order so a replayed batch is reproducible.
	addrs := make([]string, 0, len(r.order))
	for _, addr := range r.order {
		if addr != vaultAddress {
			addrs = append(addrs, addr)
		}
	}
	sort.Strings(addrs)
	for _, addr := range addrs {
		delta := r.deltas[addr]
		if fixedpoint.Zero(delta) {
			continue
		}
		if delta.Sign() > 0 {
			if err := token.Transfer(contractAddr, addr, delta); err != nil {
				return err
			}
		} else {
			if err := token.Transfer(addr, contractAddr, fixedpoint.Abs(delta)); err != nil {
				return err
			}
		}
	}

	// Step 3: the contract pays the vault last.
	if vaultDelta.Sign() > 0 {
		if err := vaultMover.StrategyDeposit(contractAddr, vaultDelta); err != nil {
			return err
		}
	}
	return nil
}
