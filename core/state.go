package core

// state.go – VitaLedger Network
//
// Snapshot-isolated key/value state. A snapshot observes exactly the contents
// visible at its creation, regardless of later writes; multiple snapshots
// coexist independently. The in-memory store takes a structural clone per
// snapshot; the observable contract is identical for copy-on-write backends.

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrState wraps failures of the underlying store.
var ErrState = errors.New("state error")

// KV is one write: a storage key and its new value.
type KV struct {
	Key   Hash
	Value []byte
}

// Snapshot is a point-in-time immutable view of the state map.
type Snapshot interface {
	// Get returns the value visible at snapshot creation, and whether the
	// key existed then.
	Get(key Hash) ([]byte, bool)
}

// StateStore is the mutable state handle the scheduler runs against. Commit
// applies a batch atomically; within a batch the last write wins for
// duplicate keys.
type StateStore interface {
	Get(key Hash) ([]byte, bool, error)
	Set(key Hash, value []byte) error
	Delete(key Hash) error
	Snapshot() (Snapshot, error)
	Commit(batch []KV) error
	Keys() ([]Hash, error)
}

// -----------------------------------------------------------------------------
// MemoryState – RWMutex map with full-clone snapshots
// -----------------------------------------------------------------------------

type MemoryState struct {
	mu   sync.RWMutex
	data map[Hash][]byte
}

func NewMemoryState() *MemoryState {
	return &MemoryState{data: make(map[Hash][]byte)}
}

func (m *MemoryState) Get(key Hash) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryState) Set(key Hash, value []byte) error {
	m.mu.Lock()
	m.data[key] = append([]byte(nil), value...)
	m.mu.Unlock()
	return nil
}

func (m *MemoryState) Delete(key Hash) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// Snapshot clones the full map. Values are copied too so an executor holding
// a returned slice can never observe later mutation.
func (m *MemoryState) Snapshot() (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	clone := make(map[Hash][]byte, len(m.data))
	for k, v := range m.data {
		clone[k] = append([]byte(nil), v...)
	}
	return &memSnapshot{data: clone}, nil
}

func (m *MemoryState) Commit(batch []KV) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, kv := range batch {
		m.data[kv.Key] = append([]byte(nil), kv.Value...)
	}
	return nil
}

func (m *MemoryState) Keys() ([]Hash, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]Hash, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys, nil
}

// Len returns the number of live keys.
func (m *MemoryState) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

type memSnapshot struct {
	data map[Hash][]byte
}

func (s *memSnapshot) Get(key Hash) ([]byte, bool) {
	v, ok := s.data[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

// -----------------------------------------------------------------------------
// State root – flat integrity digest
// -----------------------------------------------------------------------------

// StateRoot reduces every (key, value) pair, sorted bytewise by key, into a
// single Keccak-256 digest. Values are length-prefixed so adjacent pairs can
// never alias. This is an integrity digest, not a Merkle commitment: it
// carries no inclusion proofs.
func StateRoot(s StateStore) (Hash, error) {
	keys, err := s.Keys()
	if err != nil {
		return Hash{}, fmt.Errorf("%w: keys: %v", ErrState, err)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Compare(keys[j]) < 0
	})
	slices := make([][]byte, 0, len(keys)*3)
	for _, k := range keys {
		v, ok, err := s.Get(k)
		if err != nil {
			return Hash{}, fmt.Errorf("%w: get %s: %v", ErrState, k.Short(), err)
		}
		if !ok {
			continue
		}
		slices = append(slices, k[:], appendUint64BE(nil, uint64(len(v))), v)
	}
	return Keccak256Concat(slices...), nil
}
