package core

// executor.go – VitaLedger Network
//
// The executor adapter: the contract between the scheduler and whatever
// transaction interpreter the node embeds. The scheduler treats the executor
// as a black box that, given a transaction and a snapshot, reports a
// read/write footprint and an outcome. Implementations must be pure in
// (tx, snapshot): no hidden state, wall-clock time or per-thread randomness,
// and must be safe for concurrent use.

import (
	"encoding/binary"
	"fmt"
)

// -----------------------------------------------------------------------------
// Read/write set
// -----------------------------------------------------------------------------

// ReadWriteSet records the footprint of one execution attempt. It is never
// shared between threads: each speculative attempt produces its own instance.
type ReadWriteSet struct {
	Reads  []Hash
	Writes []KV
}

func NewReadWriteSet() *ReadWriteSet {
	return &ReadWriteSet{}
}

// RecordRead appends a read key. Executors call this before consulting the
// snapshot.
func (rw *ReadWriteSet) RecordRead(key Hash) {
	rw.Reads = append(rw.Reads, key)
}

// RecordWrite appends a pending write. Executors call this before any
// observable effect of the write.
func (rw *ReadWriteSet) RecordWrite(key Hash, value []byte) {
	rw.Writes = append(rw.Writes, KV{Key: key, Value: append([]byte(nil), value...)})
}

// WriteKeys lists the keys of every recorded write.
func (rw *ReadWriteSet) WriteKeys() []Hash {
	keys := make([]Hash, len(rw.Writes))
	for i, kv := range rw.Writes {
		keys[i] = kv.Key
	}
	return keys
}

// TrackedSnapshot couples a snapshot with a read/write set so every lookup is
// recorded before it is served. Reads of keys the same attempt already wrote
// observe the pending write, keeping a single execution internally
// consistent.
type TrackedSnapshot struct {
	snap Snapshot
	rw   *ReadWriteSet
}

func NewTrackedSnapshot(snap Snapshot, rw *ReadWriteSet) *TrackedSnapshot {
	return &TrackedSnapshot{snap: snap, rw: rw}
}

// Get records the read, then serves the attempt's own pending write if one
// exists, falling back to the snapshot.
func (t *TrackedSnapshot) Get(key Hash) ([]byte, bool) {
	t.rw.RecordRead(key)
	for i := len(t.rw.Writes) - 1; i >= 0; i-- {
		if t.rw.Writes[i].Key == key {
			return append([]byte(nil), t.rw.Writes[i].Value...), true
		}
	}
	return t.snap.Get(key)
}

// Set records the write.
func (t *TrackedSnapshot) Set(key Hash, value []byte) {
	t.rw.RecordWrite(key, value)
}

// -----------------------------------------------------------------------------
// Execution outcome
// -----------------------------------------------------------------------------

type ExecutionStatus uint8

const (
	ExecutionSuccess ExecutionStatus = iota
	ExecutionFailed
)

// ExecutionResult is a value, not an error: intrinsic failures (revert, gas
// exhaustion, bad opcode) confirm the transaction with a Failed status and a
// deterministic reason string, and scheduling continues.
type ExecutionResult struct {
	Status ExecutionStatus
	Reason string
}

func Success() ExecutionResult {
	return ExecutionResult{Status: ExecutionSuccess}
}

func Failed(reason string) ExecutionResult {
	return ExecutionResult{Status: ExecutionFailed, Reason: reason}
}

func (r ExecutionResult) OK() bool { return r.Status == ExecutionSuccess }

func (r ExecutionResult) String() string {
	if r.OK() {
		return "success"
	}
	return "failed: " + r.Reason
}

// Executor is the interpreter boundary. The read/write set must be valid even
// when the result is Failed.
type Executor interface {
	Execute(tx *Transaction, snap Snapshot) (*ReadWriteSet, ExecutionResult)
}

// -----------------------------------------------------------------------------
// Account cell layout
// -----------------------------------------------------------------------------

// Account state lives in keccak-derived cells so account data and contract
// storage share one uniform 32-byte key space.
func BalanceKey(addr Address) Hash {
	return Keccak256Concat([]byte("balance:"), addr[:])
}

func NonceKey(addr Address) Hash {
	return Keccak256Concat([]byte("nonce:"), addr[:])
}

func encodeBalance(v U256) []byte {
	b := v.BigEndianBytes()
	return b[:]
}

func decodeBalance(b []byte) (U256, error) {
	if b == nil {
		return U256Zero(), nil
	}
	return U256FromBigEndian(b)
}

func encodeNonce(n uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	return b[:]
}

func decodeNonce(b []byte) (uint64, error) {
	if b == nil {
		return 0, nil
	}
	if len(b) != 8 {
		return 0, fmt.Errorf("%w: nonce cell needs 8 bytes, got %d", ErrInvalidLength, len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

// -----------------------------------------------------------------------------
// TransferExecutor – the built-in native value interpreter
// -----------------------------------------------------------------------------

// TransferExecutor interprets plain value transfers against the account
// cells. It is deterministic by construction: every branch depends only on
// the transaction and the snapshot, and every failure reason is a fixed
// string.
type TransferExecutor struct{}

func NewTransferExecutor() *TransferExecutor { return &TransferExecutor{} }

// Execute moves tx.Value from the recovered sender to tx.To and bumps the
// sender nonce. The footprint is recorded through a TrackedSnapshot, so reads
// always land in the set before the snapshot is consulted.
func (e *TransferExecutor) Execute(tx *Transaction, snap Snapshot) (*ReadWriteSet, ExecutionResult) {
	rw := NewReadWriteSet()
	view := NewTrackedSnapshot(snap, rw)

	sender, err := tx.Sender()
	if err != nil {
		return rw, Failed("sender recovery failed")
	}
	if tx.To == nil {
		return rw, Failed("contract creation unsupported")
	}

	nonceRaw, _ := view.Get(NonceKey(sender))
	nonce, err := decodeNonce(nonceRaw)
	if err != nil {
		return rw, Failed("corrupt nonce cell")
	}
	if tx.Nonce != nonce {
		return rw, Failed(fmt.Sprintf("nonce mismatch: got %d want %d", tx.Nonce, nonce))
	}

	fromRaw, _ := view.Get(BalanceKey(sender))
	fromBal, err := decodeBalance(fromRaw)
	if err != nil {
		return rw, Failed("corrupt balance cell")
	}
	newFromBal, ok := fromBal.CheckedSub(tx.Value)
	if !ok {
		return rw, Failed("insufficient funds")
	}

	view.Set(NonceKey(sender), encodeNonce(nonce+1))
	view.Set(BalanceKey(sender), encodeBalance(newFromBal))

	// Read the recipient through the tracked view so a self-transfer
	// observes the pending debit instead of double-counting.
	toRaw, _ := view.Get(BalanceKey(*tx.To))
	toBal, err := decodeBalance(toRaw)
	if err != nil {
		return rw, Failed("corrupt balance cell")
	}
	newToBal, ok := toBal.CheckedAdd(tx.Value)
	if !ok {
		return rw, Failed("balance overflow")
	}
	view.Set(BalanceKey(*tx.To), encodeBalance(newToBal))
	return rw, Success()
}
