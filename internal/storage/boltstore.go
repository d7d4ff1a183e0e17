// internal/storage/boltstore.go
package storage

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/tokenlaunch/launchpool/internal/rewardpool"
	"github.com/tokenlaunch/launchpool/internal/salepool"
)

var (
	bucketRewardPool = []byte("rewardpool")
	bucketSalePool   = []byte("salepool")

	snapshotKey = []byte("snapshot")
)

// ErrNotFound indicates no snapshot has been persisted yet.
var ErrNotFound = errors.New("storage: snapshot not found")

// Store persists engine snapshots so the books survive restarts.
type Store interface {
	SaveRewardPool(s rewardpool.Snapshot) error
	LoadRewardPool() (rewardpool.Snapshot, error)
	SaveSalePool(s salepool.Snapshot) error
	LoadSalePool() (salepool.Snapshot, error)
	Close() error
}

// BoltStore wraps a bbolt database holding gob-encoded snapshots.
type BoltStore struct {
	db *bbolt.DB
}

var _ Store = (*BoltStore)(nil)

// Open opens or creates the bbolt database at dbPath. The parent directory
// is created if it does not exist.
func Open(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("storage: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketRewardPool, bucketSalePool} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("storage: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: create buckets: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// SaveRewardPool persists the reward pool snapshot.
func (s *BoltStore) SaveRewardPool(snap rewardpool.Snapshot) error {
	return s.put(bucketRewardPool, snap)
}

// LoadRewardPool returns the last persisted reward pool snapshot.
func (s *BoltStore) LoadRewardPool() (rewardpool.Snapshot, error) {
	var snap rewardpool.Snapshot
	err := s.get(bucketRewardPool, &snap)
	return snap, err
}

// SaveSalePool persists the sale pool snapshot.
func (s *BoltStore) SaveSalePool(snap salepool.Snapshot) error {
	return s.put(bucketSalePool, snap)
}

// LoadSalePool returns the last persisted sale pool snapshot.
func (s *BoltStore) LoadSalePool() (salepool.Snapshot, error) {
	var snap salepool.Snapshot
	err := s.get(bucketSalePool, &snap)
	return snap, err
}

func (s *BoltStore) put(bucket []byte, v interface{}) error {
	data, err := encodeGob(v)
	if err != nil {
		return fmt.Errorf("storage: encode snapshot: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucket).Put(snapshotKey, data); err != nil {
			return fmt.Errorf("storage: put snapshot: %w", err)
		}
		return nil
	})
}

func (s *BoltStore) get(bucket []byte, v interface{}) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucket).Get(snapshotKey)
		if data == nil {
			return ErrNotFound
		}
		if err := decodeGob(data, v); err != nil {
			return fmt.Errorf("storage: decode snapshot: %w", err)
		}
		return nil
	})
}

func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
