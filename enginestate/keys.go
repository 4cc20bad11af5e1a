// Package enginestate layers typed JSON accessors over storage.Database for
// every persisted record the engine defines (spec §3, §6 "Persistence: the
// host provides three storage classes"). JSON is used instead of RLP
// because several fields (accrued interest, hourly rates, reconciler
// deltas) are signed, and RLP has no canonical encoding for a negative
// big.Int; the teacher's native/params JSON-config store is the nearest
// grounding for this choice.
package enginestate

import (
	"encoding/binary"
	"fmt"
)

// Key prefixes partition the keyspace by storage class and record type.
// cfg/  -- instance class: GlobalConfig, per-asset MarketConfig, market list, position-id counter
// mkt/  -- persistent class: MarketData
// pos/  -- persistent class: Position
// uidx/ -- persistent class: per-user open-or-pending position id index
// queue/-- temporary class: QueuedUpdate (global config or market config)
// wreq/ -- temporary class: WithdrawalRequest
const (
	prefixStatus         = "cfg/status"
	prefixGlobalConfig   = "cfg/global"
	prefixMarketConfig   = "cfg/market/"
	prefixMarketList     = "cfg/marketlist"
	prefixPositionSeq    = "cfg/posseq"
	prefixMarketData     = "mkt/"
	prefixPosition       = "pos/"
	prefixUserIndex      = "uidx/"
	prefixQueuedConfig   = "queue/global"
	prefixQueuedMarket   = "queue/market/"
	prefixWithdrawReq    = "wreq/"
)

func marketConfigKey(asset string) []byte { return []byte(prefixMarketConfig + asset) }
func marketDataKey(asset string) []byte   { return []byte(prefixMarketData + asset) }
func queuedMarketKey(asset string) []byte { return []byte(prefixQueuedMarket + asset) }
func userIndexKey(user string) []byte     { return []byte(prefixUserIndex + user) }
func withdrawReqKey(user string) []byte   { return []byte(prefixWithdrawReq + user) }

func positionKey(id uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], id)
	return append([]byte(prefixPosition), b[:]...)
}

func positionIDFromKey(key []byte) (uint32, error) {
	trimmed := key[len(prefixPosition):]
	if len(trimmed) != 4 {
		return 0, fmt.Errorf("enginestate: malformed position key %q", key)
	}
	return binary.BigEndian.Uint32(trimmed), nil
}
