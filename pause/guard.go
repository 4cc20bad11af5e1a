// Package pause implements the engine-wide status gate: the trading
// engine's user and keeper actions (open, close, modify, set triggers,
// execute) check it before touching storage (spec §3 Status, §4 "Frozen
// forbids all state-changing user/keeper actions"). Config actions and
// vaultapp do not call it.
//
// Grounded on the teacher's native/common.Guard pause-check pattern.
package pause

import "errors"

var ErrPaused = errors.New("pause: action not allowed for current status")

// View is satisfied by tradeconfig.Status: it knows the engine's current
// Status without needing to re-derive it for every caller.
type View interface {
	AllowsStateChange() bool
}

// Guard returns ErrPaused when v reports the engine is not accepting
// state-changing actions (spec Status Frozen; OnIce restricts further to
// only close/modify/keeper actions, checked separately by each operation).
func Guard(v View) error {
	if v == nil {
		return nil
	}
	if !v.AllowsStateChange() {
		return ErrPaused
	}
	return nil
}
