package enginestate

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/zenith-protocols/zenex-engine/market"
	"github.com/zenith-protocols/zenex-engine/position"
	"github.com/zenith-protocols/zenex-engine/storage"
	"github.com/zenith-protocols/zenex-engine/tradeconfig"
	"github.com/zenith-protocols/zenex-engine/vault"
)

// Store is the typed persistence façade every engine component reads and
// writes through; nothing outside this package touches storage.Database
// directly. Every accessor JSON-encodes its record, matching the teacher's
// native/params JSON config store rather than an RLP codec (see package
// doc in keys.go for why).
type Store struct {
	db storage.Database
}

func New(db storage.Database) *Store {
	return &Store{db: db}
}

func (s *Store) get(key []byte, out interface{}) (bool, error) {
	raw, err := s.db.Get(key)
	if err != nil {
		if err == storage.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("enginestate: decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) put(key []byte, in interface{}) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("enginestate: encode %s: %w", key, err)
	}
	return s.db.Put(key, raw)
}

// --- Status ---
//
// Status is stored independently of GlobalConfig so that set_status can
// apply immediately (spec §4.1: "set_status(status): immediate") without
// going through GlobalConfig's timelocked queue.

func (s *Store) GetStatus() (tradeconfig.Status, bool, error) {
	raw, err := s.db.Get([]byte(prefixStatus))
	if err != nil {
		if err == storage.ErrNotFound {
			return 0, false, nil
		}
		return 0, false, err
	}
	if len(raw) != 4 {
		return 0, false, fmt.Errorf("enginestate: malformed status record")
	}
	return tradeconfig.Status(binary.BigEndian.Uint32(raw)), true, nil
}

func (s *Store) PutStatus(status tradeconfig.Status) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(status))
	return s.db.Put([]byte(prefixStatus), buf[:])
}

// --- GlobalConfig ---

func (s *Store) GetGlobalConfig() (tradeconfig.GlobalConfig, bool, error) {
	var cfg tradeconfig.GlobalConfig
	ok, err := s.get([]byte(prefixGlobalConfig), &cfg)
	return cfg, ok, err
}

func (s *Store) PutGlobalConfig(cfg tradeconfig.GlobalConfig) error {
	return s.put([]byte(prefixGlobalConfig), cfg)
}

// --- MarketConfig ---

func (s *Store) GetMarketConfig(asset string) (market.Config, bool, error) {
	var cfg market.Config
	ok, err := s.get(marketConfigKey(asset), &cfg)
	return cfg, ok, err
}

func (s *Store) PutMarketConfig(asset string, cfg market.Config) error {
	return s.put(marketConfigKey(asset), cfg)
}

// --- Market list (the set of activated assets) ---

func (s *Store) GetMarketList() ([]string, error) {
	var list []string
	_, err := s.get([]byte(prefixMarketList), &list)
	return list, err
}

func (s *Store) PutMarketList(assets []string) error {
	return s.put([]byte(prefixMarketList), assets)
}

func (s *Store) AppendMarketList(asset string) error {
	list, err := s.GetMarketList()
	if err != nil {
		return err
	}
	for _, a := range list {
		if a == asset {
			return nil
		}
	}
	return s.PutMarketList(append(list, asset))
}

// --- MarketData ---

func (s *Store) GetMarketData(asset string) (*market.Data, bool, error) {
	var d market.Data
	ok, err := s.get(marketDataKey(asset), &d)
	if !ok || err != nil {
		return nil, ok, err
	}
	return &d, true, nil
}

func (s *Store) PutMarketData(d *market.Data) error {
	return s.put(marketDataKey(d.Asset), d)
}

// --- Position sequence counter ---

func (s *Store) NextPositionID() (uint32, error) {
	raw, err := s.db.Get([]byte(prefixPositionSeq))
	var next uint32
	if err != nil {
		if err != storage.ErrNotFound {
			return 0, err
		}
		next = 1
	} else {
		next = binary.BigEndian.Uint32(raw) + 1
	}
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], next)
	if err := s.db.Put([]byte(prefixPositionSeq), buf[:]); err != nil {
		return 0, err
	}
	return next, nil
}

// --- Position ---

func (s *Store) GetPosition(id uint32) (*position.Position, bool, error) {
	var p position.Position
	ok, err := s.get(positionKey(id), &p)
	if !ok || err != nil {
		return nil, ok, err
	}
	return &p, true, nil
}

func (s *Store) PutPosition(p *position.Position) error {
	return s.put(positionKey(p.ID), p)
}

func (s *Store) DeletePosition(id uint32) error {
	return s.db.Delete(positionKey(id))
}

// --- User position index ---

func (s *Store) GetUserIndex(user string) ([]uint32, error) {
	var ids []uint32
	_, err := s.get(userIndexKey(user), &ids)
	return ids, err
}

func (s *Store) PutUserIndex(user string, ids []uint32) error {
	return s.put(userIndexKey(user), ids)
}

func (s *Store) AppendUserIndex(user string, id uint32) error {
	ids, err := s.GetUserIndex(user)
	if err != nil {
		return err
	}
	return s.PutUserIndex(user, append(ids, id))
}

func (s *Store) RemoveUserIndex(user string, id uint32) error {
	ids, err := s.GetUserIndex(user)
	if err != nil {
		return err
	}
	filtered := ids[:0]
	for _, existing := range ids {
		if existing != id {
			filtered = append(filtered, existing)
		}
	}
	return s.PutUserIndex(user, filtered)
}

// --- QueuedUpdate: GlobalConfig ---

func (s *Store) GetQueuedGlobalConfig() (tradeconfig.QueuedGlobalConfig, bool, error) {
	var q tradeconfig.QueuedGlobalConfig
	ok, err := s.get([]byte(prefixQueuedConfig), &q)
	return q, ok, err
}

func (s *Store) PutQueuedGlobalConfig(q tradeconfig.QueuedGlobalConfig) error {
	return s.put([]byte(prefixQueuedConfig), q)
}

func (s *Store) DeleteQueuedGlobalConfig() error {
	return s.db.Delete([]byte(prefixQueuedConfig))
}

// --- QueuedUpdate: MarketConfig ---

func (s *Store) GetQueuedMarketConfig(asset string) (tradeconfig.QueuedMarketConfig, bool, error) {
	var q tradeconfig.QueuedMarketConfig
	ok, err := s.get(queuedMarketKey(asset), &q)
	return q, ok, err
}

func (s *Store) PutQueuedMarketConfig(asset string, q tradeconfig.QueuedMarketConfig) error {
	return s.put(queuedMarketKey(asset), q)
}

func (s *Store) DeleteQueuedMarketConfig(asset string) error {
	return s.db.Delete(queuedMarketKey(asset))
}

// --- WithdrawalRequest ---

func (s *Store) GetWithdrawalRequest(user string) (vault.WithdrawalRequest, bool, error) {
	var w vault.WithdrawalRequest
	ok, err := s.get(withdrawReqKey(user), &w)
	return w, ok, err
}

func (s *Store) PutWithdrawalRequest(user string, w vault.WithdrawalRequest) error {
	return s.put(withdrawReqKey(user), w)
}

func (s *Store) DeleteWithdrawalRequest(user string) error {
	return s.db.Delete(withdrawReqKey(user))
}
