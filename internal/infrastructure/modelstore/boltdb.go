// Package modelstore persists fitted estimation snapshots in BoltDB so a
// restarted process keeps its vocabulary and regression state.
package modelstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/studyflow/backend/internal/feature"
)

const snapshotKey = "current"

// Store wraps a BoltDB file holding the latest model snapshot.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = "model"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

// Save overwrites the stored snapshot with the latest fit.
func (s *Store) Save(ctx context.Context, snap feature.Snapshot) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(snapshotKey), payload)
	})
}

// Load returns the stored snapshot, or nil when none has been saved.
func (s *Store) Load(ctx context.Context) (*feature.Snapshot, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	var snap *feature.Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		payload := tx.Bucket(s.bucket).Get([]byte(snapshotKey))
		if payload == nil {
			return nil
		}
		var decoded feature.Snapshot
		if err := json.Unmarshal(payload, &decoded); err != nil {
			return err
		}
		snap = &decoded
		return nil
	})
	return snap, err
}

// Ready reports whether the store can serve reads.
func (s *Store) Ready() bool {
	if s == nil || s.db == nil {
		return false
	}
	return s.db.View(func(tx *bolt.Tx) error { return nil }) == nil
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
