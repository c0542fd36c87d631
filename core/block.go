package core

// block.go – ordered transaction batches as delivered by the consensus layer.
// Both derived digests are pure functions of the header fields and are
// computed on demand rather than cached.

import (
	"errors"
	"fmt"
)

var ErrInvalidBlock = errors.New("invalid block")

// Block carries an ordered batch of transactions between consensus and the
// scheduler.
type Block struct {
	Height       uint64
	ParentHash   Hash
	Transactions []*Transaction
	Timestamp    uint64
}

// NewBlock assembles a block from its four header ingredients.
func NewBlock(height uint64, parent Hash, txs []*Transaction, timestamp uint64) *Block {
	return &Block{Height: height, ParentHash: parent, Transactions: txs, Timestamp: timestamp}
}

// TransactionsHash is Keccak-256 over the in-order concatenation of every
// transaction identifier. The empty batch hashes the empty string, which is
// still well-defined.
func (b *Block) TransactionsHash() Hash {
	slices := make([][]byte, 0, len(b.Transactions))
	for _, tx := range b.Transactions {
		h := tx.Hash()
		slices = append(slices, h.Bytes())
	}
	return Keccak256Concat(slices...)
}

// Hash digests the four header fields: height, parent hash, transactions
// hash, timestamp.
func (b *Block) Hash() Hash {
	enc := make([]byte, 0, 8+HashLength+HashLength+8)
	enc = appendUint64BE(enc, b.Height)
	enc = append(enc, b.ParentHash[:]...)
	txsHash := b.TransactionsHash()
	enc = append(enc, txsHash[:]...)
	enc = appendUint64BE(enc, b.Timestamp)
	return Keccak256(enc)
}

// Validate performs the structural checks the scheduler relies on: no nil
// transaction slots.
func (b *Block) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil block", ErrInvalidBlock)
	}
	for i, tx := range b.Transactions {
		if tx == nil {
			return fmt.Errorf("%w: nil transaction at index %d", ErrInvalidBlock, i)
		}
	}
	return nil
}
