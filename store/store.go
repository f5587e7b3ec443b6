// Package store persists the sticky variable tier between runs of the
// engine. The committed sticky map is written value by value into a bbolt
// database after each successful pass and seeded back before the first.
package store

import (
	"fmt"
	"time"

	"github.com/tliron/commonlog"
	bolt "go.etcd.io/bbolt"

	"github.com/ahearne/lightcone/vm"
)

var log = commonlog.GetLogger("store")

var stickyBucket = []byte("sticky")

// DB is a handle on the sticky database.
type DB struct {
	db *bolt.DB
}

// Open opens or creates the database at path.
func Open(path string) (*DB, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening sticky database %q: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(stickyBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing sticky database %q: %w", path, err)
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (s *DB) Close() error {
	return s.db.Close()
}

// SaveSticky replaces the persisted sticky tier with m.
func (s *DB) SaveSticky(m map[string]vm.Value) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(stickyBucket); err != nil {
			return err
		}
		b, err := tx.CreateBucket(stickyBucket)
		if err != nil {
			return err
		}
		for name, v := range m {
			data, err := encodeValue(v)
			if err != nil {
				return fmt.Errorf("variable %q: %w", name, err)
			}
			if err := b.Put([]byte(name), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving sticky tier: %w", err)
	}
	log.Debugf("saved %d sticky variables", len(m))
	return nil
}

// LoadSticky reads the persisted sticky tier.
func (s *DB) LoadSticky() (map[string]vm.Value, error) {
	out := make(map[string]vm.Value)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(stickyBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, data []byte) error {
			v, err := decodeValue(data)
			if err != nil {
				return fmt.Errorf("variable %q: %w", string(k), err)
			}
			out[string(k)] = v
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("loading sticky tier: %w", err)
	}
	log.Debugf("loaded %d sticky variables", len(out))
	return out, nil
}
