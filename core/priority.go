package core

// priority.go – VitaLedger Network
//
// The 41-byte priority code totally orders concurrent ownership claims:
// (release_bit, height big-endian, tag), compared lexicographically. A LOWER
// code value is a HIGHER priority. The release bit makes every held claim
// (OWNED = 0) sort strictly before every released one (DISOWNED = 1), so a
// released entry is reclaimable by any real claimant.

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// Owned marks a live claim.
	Owned uint8 = 0
	// Disowned marks a released claim.
	Disowned uint8 = 1

	// PriorityCodeLength is the serialised width: 1 + 8 + 32 bytes.
	PriorityCodeLength = 41
)

// PriorityCode is the ordering token of the ownership protocol. Once computed
// for a (transaction, block) pair it never changes across re-executions.
type PriorityCode struct {
	Release uint8
	Height  uint64
	Tag     Hash
}

// TxPriority derives the immutable priority of a transaction within a block:
// (OWNED, block height, keccak256(tx hash ‖ transactions hash)).
func TxPriority(txHash, txsHash Hash, height uint64) PriorityCode {
	return PriorityCode{
		Release: Owned,
		Height:  height,
		Tag:     Keccak256Concat(txHash[:], txsHash[:]),
	}
}

// MinPriority is the sentinel every fresh ownership entry starts from:
// released, maximum height, zero tag. Any real claim preempts it.
func MinPriority() PriorityCode {
	return PriorityCode{Release: Disowned, Height: math.MaxUint64}
}

// Bytes serialises the code to its canonical 41-byte big-endian form, used
// for cross-implementation debugging and test vectors.
func (p PriorityCode) Bytes() [PriorityCodeLength]byte {
	var out [PriorityCodeLength]byte
	out[0] = p.Release
	binary.BigEndian.PutUint64(out[1:9], p.Height)
	copy(out[9:], p.Tag[:])
	return out
}

// PriorityCodeFromBytes parses the canonical 41-byte form.
func PriorityCodeFromBytes(b []byte) (PriorityCode, error) {
	if len(b) != PriorityCodeLength {
		return PriorityCode{}, fmt.Errorf("%w: priority code needs %d bytes, got %d",
			ErrInvalidLength, PriorityCodeLength, len(b))
	}
	if b[0] != Owned && b[0] != Disowned {
		return PriorityCode{}, fmt.Errorf("%w: bad release bit %#x", ErrInvalidHex, b[0])
	}
	var p PriorityCode
	p.Release = b[0]
	p.Height = binary.BigEndian.Uint64(b[1:9])
	copy(p.Tag[:], b[9:])
	return p, nil
}

// Compare orders two codes lexicographically over (release, height, tag).
// Negative means p is the higher priority.
func (p PriorityCode) Compare(o PriorityCode) int {
	if p.Release != o.Release {
		if p.Release < o.Release {
			return -1
		}
		return 1
	}
	if p.Height != o.Height {
		if p.Height < o.Height {
			return -1
		}
		return 1
	}
	return bytes.Compare(p.Tag[:], o.Tag[:])
}

// Preempts reports whether p may take an entry currently owned by o, i.e.
// p sorts at or before o.
func (p PriorityCode) Preempts(o PriorityCode) bool { return p.Compare(o) <= 0 }

// Equal reports exact equality of the triple.
func (p PriorityCode) Equal(o PriorityCode) bool { return p.Compare(o) == 0 }

// Released returns a copy with the release bit set to DISOWNED, preserving
// height and tag.
func (p PriorityCode) Released() PriorityCode {
	p.Release = Disowned
	return p
}

func (p PriorityCode) String() string {
	return fmt.Sprintf("prio(%d,%d,%s)", p.Release, p.Height, p.Tag.Short())
}
