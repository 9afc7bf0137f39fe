package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const instancesFile = "instances.db"

var bucketInstances = []byte("instances")

// BoltInstanceStore implements InstanceStore using BoltDB
type BoltInstanceStore struct {
	db *bolt.DB
}

// NewBoltInstanceStore opens the ledger in dir, creating it if needed
func NewBoltInstanceStore(dir string) (*BoltInstanceStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	db, err := bolt.Open(filepath.Join(dir, instancesFile), 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketInstances); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketInstances, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltInstanceStore{db: db}, nil
}

// Close closes the database
func (s *BoltInstanceStore) Close() error {
	return s.db.Close()
}

// PutInstance records or replaces the instance with the same name
func (s *BoltInstanceStore) PutInstance(inst *Instance) error {
	if inst.Name == "" {
		return fmt.Errorf("instance has no name")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(inst)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketInstances).Put([]byte(inst.Name), data)
	})
}

func (s *BoltInstanceStore) GetInstance(name string) (*Instance, error) {
	var inst Instance
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketInstances).Get([]byte(name))
		if data == nil {
			return fmt.Errorf("instance %s: %w", name, ErrNotFound)
		}
		return json.Unmarshal(data, &inst)
	})
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

// ListInstances returns every instance ordered by name
func (s *BoltInstanceStore) ListInstances() ([]*Instance, error) {
	var out []*Instance
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketInstances).ForEach(func(k, v []byte) error {
			var inst Instance
			if err := json.Unmarshal(v, &inst); err != nil {
				return err
			}
			out = append(out, &inst)
			return nil
		})
	})
	return out, err
}

func (s *BoltInstanceStore) DeleteInstance(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketInstances).Delete([]byte(name))
	})
}
