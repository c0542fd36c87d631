package core

// boltstate.go – embedded-KV StateStore backed by bbolt. Commit is a single
// write transaction, so a failed batch leaves the file untouched. Snapshot
// materialises a point-in-time view inside one read transaction.

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var stateBucket = []byte("state")

// BoltState satisfies StateStore on top of a bbolt file.
type BoltState struct {
	db *bolt.DB
}

// OpenBoltState opens (or creates) the database at path.
func OpenBoltState(path string) (*BoltState, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(stateBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state bucket: %w", err)
	}
	return &BoltState{db: db}, nil
}

func (s *BoltState) Get(key Hash) ([]byte, bool, error) {
	var out []byte
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(stateBucket).Get(key[:]); v != nil {
			out = append([]byte(nil), v...)
			found = true
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrState, err)
	}
	return out, found, nil
}

func (s *BoltState) Set(key Hash, value []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(stateBucket).Put(key[:], value)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrState, err)
	}
	return nil
}

func (s *BoltState) Delete(key Hash) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(stateBucket).Delete(key[:])
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrState, err)
	}
	return nil
}

// Snapshot loads the full bucket into an in-memory view within one read
// transaction, giving the same point-in-time contract as MemoryState.
func (s *BoltState) Snapshot() (Snapshot, error) {
	clone := make(map[Hash][]byte)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(stateBucket).ForEach(func(k, v []byte) error {
			key, err := HashFromSlice(k)
			if err != nil {
				return err
			}
			clone[key] = append([]byte(nil), v...)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrState, err)
	}
	return &memSnapshot{data: clone}, nil
}

// Commit applies the batch in one write transaction. bbolt rolls the
// transaction back on error, so state is unchanged when Commit fails.
func (s *BoltState) Commit(batch []KV) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(stateBucket)
		for _, kv := range batch {
			if err := b.Put(kv.Key[:], kv.Value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrState, err)
	}
	return nil
}

func (s *BoltState) Keys() ([]Hash, error) {
	var keys []Hash
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(stateBucket).ForEach(func(k, _ []byte) error {
			key, err := HashFromSlice(k)
			if err != nil {
				return err
			}
			keys = append(keys, key)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrState, err)
	}
	return keys, nil
}

// Close releases the underlying file.
func (s *BoltState) Close() error { return s.db.Close() }
