package core

// ownership.go – VitaLedger Network
//
// Per-storage-key ownership arbitration. Each entry is an independently
// locked cell holding the priority code of its current claimant; the table is
// a concurrent map of such cells with atomic get-or-create. There is no
// table-global lock on the claim path, so operations on different keys never
// contend.

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrOwnershipLimit is returned when a batch touches more distinct keys than
// the table admits. Unbounded table growth is a memory-exhaustion vector, so
// the cap fails the batch instead.
var ErrOwnershipLimit = errors.New("ownership table limit exceeded")

// -----------------------------------------------------------------------------
// OwnershipEntry – one independently locked cell
// -----------------------------------------------------------------------------

// OwnershipEntry arbitrates claims on a single storage key. The owner is
// monotonically non-decreasing in priority until explicitly released.
type OwnershipEntry struct {
	mu    sync.RWMutex
	owner PriorityCode
}

// NewOwnershipEntry seeds a cell with the minimum-priority sentinel, which
// any real claim preempts.
func NewOwnershipEntry() *OwnershipEntry {
	return &OwnershipEntry{owner: MinPriority()}
}

// Check reports whether who would still hold the entry: true iff who sorts at
// or before the current owner. Read-only.
func (e *OwnershipEntry) Check(who PriorityCode) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return who.Preempts(e.owner)
}

// TrySet atomically claims the entry for who when who sorts at or before the
// current owner. Returns whether the claim took.
func (e *OwnershipEntry) TrySet(who PriorityCode) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !who.Preempts(e.owner) {
		return false
	}
	e.owner = who
	return true
}

// Release flips the owner's release bit to DISOWNED, preserving height and
// tag. Idempotent; afterwards the entry may be re-claimed by any priority.
func (e *OwnershipEntry) Release() {
	e.mu.Lock()
	e.owner = e.owner.Released()
	e.mu.Unlock()
}

// Owner returns a snapshot of the current owning code.
func (e *OwnershipEntry) Owner() PriorityCode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.owner
}

// Bytes serialises the current owner to its 41-byte form.
func (e *OwnershipEntry) Bytes() [PriorityCodeLength]byte {
	return e.Owner().Bytes()
}

// SetFromBytes loads an owner from its 41-byte form, for test vectors and
// cross-implementation debugging.
func (e *OwnershipEntry) SetFromBytes(b []byte) error {
	p, err := PriorityCodeFromBytes(b)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.owner = p
	e.mu.Unlock()
	return nil
}

// -----------------------------------------------------------------------------
// OwnershipTable – concurrent key → entry map
// -----------------------------------------------------------------------------

// OwnershipTable maps storage keys to ownership entries. Entry creation is
// atomic: concurrent callers for the same key receive the same cell. A
// non-zero limit caps the number of distinct entries per batch.
type OwnershipTable struct {
	entries sync.Map // Hash → *OwnershipEntry
	size    atomic.Int64
	limit   int64
}

// NewOwnershipTable creates a table; limit <= 0 means unbounded (callers are
// then expected to bound key access through the executor's budget instead).
func NewOwnershipTable(limit int) *OwnershipTable {
	return &OwnershipTable{limit: int64(limit)}
}

// GetOrCreate returns the entry for key, creating it with the sentinel owner
// on first touch. Exceeding the table limit fails the whole batch: whichever
// claim crosses the cap errors, and since the set of distinct keys is a pure
// function of the batch, the breach itself is deterministic.
func (t *OwnershipTable) GetOrCreate(key Hash) (*OwnershipEntry, error) {
	if e, ok := t.entries.Load(key); ok {
		return e.(*OwnershipEntry), nil
	}
	actual, loaded := t.entries.LoadOrStore(key, NewOwnershipEntry())
	if !loaded {
		if n := t.size.Add(1); t.limit > 0 && n > t.limit {
			return nil, ErrOwnershipLimit
		}
	}
	return actual.(*OwnershipEntry), nil
}

// Get returns the entry for key without creating one.
func (t *OwnershipTable) Get(key Hash) (*OwnershipEntry, bool) {
	e, ok := t.entries.Load(key)
	if !ok {
		return nil, false
	}
	return e.(*OwnershipEntry), true
}

// ReleaseAll releases each listed key in sequence. Unknown keys are skipped.
func (t *OwnershipTable) ReleaseAll(keys []Hash) {
	for _, k := range keys {
		if e, ok := t.Get(k); ok {
			e.Release()
		}
	}
}

// Clear drops every entry. Called between batches.
func (t *OwnershipTable) Clear() {
	t.entries.Range(func(k, _ any) bool {
		t.entries.Delete(k)
		return true
	})
	t.size.Store(0)
}

// Len returns the number of distinct entries.
func (t *OwnershipTable) Len() int { return int(t.size.Load()) }

// IsEmpty reports whether the table holds no entries.
func (t *OwnershipTable) IsEmpty() bool { return t.Len() == 0 }
