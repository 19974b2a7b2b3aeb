package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const gameKeyPrefix = "game/"

// SnapshotStore keeps the latest JSON record of every live game in badger,
// so a restarted server can resume games in progress
type SnapshotStore struct {
	db  *badger.DB
	log *zap.Logger
}

// OpenSnapshotStore opens (or creates) the badger directory
func OpenSnapshotStore(dir string, log *zap.Logger) (*SnapshotStore, error) {
	if log == nil {
		log = zap.NewNop()
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return &SnapshotStore{db: db, log: log.Named("snapshots")}, nil
}

func gameKey(gameID string) []byte {
	return []byte(gameKeyPrefix + gameID)
}

// Save replaces the stored record of a game
func (s *SnapshotStore) Save(gameID string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", gameID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gameKey(gameID), data)
	})
}

// Load decodes a game's record into v; found is false when absent
func (s *SnapshotStore) Load(gameID string, v any) (found bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gameKey(gameID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	return found, err
}

// Each calls fn with every stored game's raw record. A failing fn is logged
// and skipped so one bad record does not block the rest.
func (s *SnapshotStore) Each(fn func(gameID string, raw []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(gameKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			gameID := string(item.Key()[len(gameKeyPrefix):])
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("read snapshot %s: %w", gameID, err)
			}
			if err := fn(gameID, raw); err != nil {
				s.log.Warn("skipping snapshot", zap.String("gameId", gameID), zap.Error(err))
			}
		}
		return nil
	})
}

// Delete drops a game's record; deleting a missing key is not an error
func (s *SnapshotStore) Delete(gameID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(gameKey(gameID))
	})
}

func (s *SnapshotStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
