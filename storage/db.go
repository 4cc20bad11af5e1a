// Package storage provides the key/value persistence backends used by the
// engine's typed storage schema (see enginestate). The engine never talks to
// these types directly; enginestate.Store is the only consumer.
package storage

import (
	"errors"
	"sort"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// ErrNotFound is returned by Get when the requested key does not exist. It
// is distinct from a decode failure so callers can distinguish "absent" from
// "corrupt".
var ErrNotFound = errors.New("storage: key not found")

// Database is a generic interface for a key-value store. This allows the
// engine to run against an in-memory store in tests and a persistent store
// in a long-running process, without either leaking into the domain logic.
type Database interface {
	Put(key []byte, value []byte) error
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error
	// Iterate calls fn for every stored key with the given prefix, in
	// ascending lexicographic order, until fn returns false or all matching
	// keys have been visited.
	Iterate(prefix []byte, fn func(key, value []byte) bool) error
	Close() error
}

// MemDB is an in-memory Database, used by tests and the reference CLI.
type MemDB struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemDB() *MemDB {
	return &MemDB{data: make(map[string][]byte)}
}

func (db *MemDB) Put(key []byte, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (db *MemDB) Get(key []byte) ([]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	value, ok := db.data[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (db *MemDB) Delete(key []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.data, string(key))
	return nil
}

func (db *MemDB) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	db.mu.RLock()
	keys := make([]string, 0, len(db.data))
	for k := range db.data {
		if len(prefix) == 0 || (len(k) >= len(prefix) && k[:len(prefix)] == string(prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	snapshot := make(map[string][]byte, len(keys))
	for _, k := range keys {
		snapshot[k] = append([]byte(nil), db.data[k]...)
	}
	db.mu.RUnlock()

	for _, k := range keys {
		if !fn([]byte(k), snapshot[k]) {
			break
		}
	}
	return nil
}

func (db *MemDB) Close() error { return nil }

// LevelDB is a persistent key-value store backed by goleveldb, used by the
// reference CLI when given a data directory instead of running in-memory.
type LevelDB struct {
	db *leveldb.DB
}

func NewLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Put(key []byte, value []byte) error {
	return l.db.Put(key, value, nil)
}

func (l *LevelDB) Get(key []byte) ([]byte, error) {
	value, err := l.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return value, err
}

func (l *LevelDB) Delete(key []byte) error {
	return l.db.Delete(key, nil)
}

func (l *LevelDB) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	iter := l.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()
	for iter.Next() {
		key := append([]byte(nil), iter.Key()...)
		value := append([]byte(nil), iter.Value()...)
		if !fn(key, value) {
			break
		}
	}
	return iter.Error()
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}
