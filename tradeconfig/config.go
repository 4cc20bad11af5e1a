// Package tradeconfig implements the process-wide configuration and
// per-asset market lifecycle: GlobalConfig, MarketConfig, the Status enum,
// and the one-week timelocked queue/cancel/apply pattern used to change
// either (spec §3 GlobalConfig/Status/QueuedUpdate, §4.1).
//
// Grounded on the teacher's native/governance proposal queue (QueueProposal
// / Execute after a voting-period deadline), narrowed from a voted proposal
// to an owner-queued, time-delayed single update.
package tradeconfig

import (
	"math/big"

	"github.com/zenith-protocols/zenex-engine/coreerrors"
	"github.com/zenith-protocols/zenex-engine/fixedpoint"
	"github.com/zenith-protocols/zenex-engine/market"
)

// Status is the engine-wide operational state (spec §3).
type Status uint32

const (
	StatusActive Status = 0
	StatusOnIce  Status = 1
	StatusFrozen Status = 2
	StatusSetup  Status = 99
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusOnIce:
		return "OnIce"
	case StatusFrozen:
		return "Frozen"
	case StatusSetup:
		return "Setup"
	default:
		return "Unknown"
	}
}

// AllowsStateChange implements pause.View: Frozen is the only status that
// forbids every state-changing action outright.
func (s Status) AllowsStateChange() bool { return s != StatusFrozen }

// AllowsNewPositions reports whether open_position may run (spec §3: "New
// positions require Active").
func (s Status) AllowsNewPositions() bool { return s == StatusActive }

// AllowsCloseOrKeeper reports whether close/modify/keeper actions may run
// (spec §3: "Close/modify/keeper actions are allowed in Active and OnIce").
func (s Status) AllowsCloseOrKeeper() bool { return s == StatusActive || s == StatusOnIce }

// TimelockDelay is one week, except in Setup where config/market changes
// apply immediately (spec §3 QueuedUpdate, §4.1 initialize).
const oneWeekSeconds = 7 * 24 * 60 * 60

func (s Status) TimelockDelay() int64 {
	if s == StatusSetup {
		return 0
	}
	return oneWeekSeconds
}

// GlobalConfig is the process-wide singleton configuration (spec §3).
type GlobalConfig struct {
	Oracle          string
	CallerTakeRate  *big.Int // S7, in [0, S7]
	MaxPositions    uint32
	MaxUtilization  *big.Int // S7; 0 disables, else in [S7, 100*S7]
}

// Clone returns a deep copy of g.
func (g GlobalConfig) Clone() GlobalConfig {
	return GlobalConfig{
		Oracle:         g.Oracle,
		CallerTakeRate: fixedpoint.Clone(g.CallerTakeRate),
		MaxPositions:   g.MaxPositions,
		MaxUtilization: fixedpoint.Clone(g.MaxUtilization),
	}
}

// Validate enforces the GlobalConfig rules from spec §4.1.
func (g GlobalConfig) Validate() error {
	if g.CallerTakeRate == nil || g.CallerTakeRate.Sign() < 0 || g.CallerTakeRate.Cmp(fixedpoint.S7) > 0 {
		return coreerrors.New(coreerrors.CodeInvalidConfig, "caller_take_rate must be in [0, S7]")
	}
	if !fixedpoint.Zero(g.MaxUtilization) {
		hundredS7 := new(big.Int).Mul(fixedpoint.S7, big.NewInt(100))
		if g.MaxUtilization.Cmp(fixedpoint.S7) < 0 || g.MaxUtilization.Cmp(hundredS7) > 0 {
			return coreerrors.New(coreerrors.CodeInvalidConfig, "max_utilization must be 0 or within [S7, 100*S7]")
		}
	}
	return nil
}

// QueuedGlobalConfig is a pending GlobalConfig change awaiting its unlock
// time (spec §3 QueuedUpdate).
type QueuedGlobalConfig struct {
	Config     GlobalConfig
	UnlockTime int64
	Pending    bool
}

// QueuedMarketConfig is a pending MarketConfig change awaiting its unlock
// time, for a specific asset.
type QueuedMarketConfig struct {
	Config     market.Config
	UnlockTime int64
	Pending    bool
}
