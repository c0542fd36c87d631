package core

// transaction.go – VitaLedger Network
//
// Canonical transaction model. Two digests are defined over a stable
// length-prefixed encoding: the signing pre-image (four fields, no signature)
// and the transaction identifier (all five fields). Sender identity is
// recovered from the signature, never carried in the wire form.

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var ErrInvalidTransaction = errors.New("invalid transaction")

// Transaction is the unit of scheduling. A nil To denotes contract creation.
type Transaction struct {
	Nonce uint64
	To    *Address
	Value U256
	Data  []byte
	Sig   Signature
}

// NewTransaction stores the fields verbatim; the signature is attached later
// via SignTransaction or supplied by the decoder.
func NewTransaction(nonce uint64, to *Address, value U256, data []byte) *Transaction {
	return &Transaction{Nonce: nonce, To: to, Value: value, Data: data}
}

// encodeBody appends the canonical encoding of the four signed fields.
func (tx *Transaction) encodeBody(dst []byte) []byte {
	dst = appendUint64BE(dst, tx.Nonce)
	if tx.To != nil {
		dst = append(dst, 0x01)
		dst = append(dst, tx.To[:]...)
	} else {
		dst = append(dst, 0x00)
	}
	v := tx.Value.BigEndianBytes()
	dst = append(dst, v[:]...)
	dst = appendUint64BE(dst, uint64(len(tx.Data)))
	dst = append(dst, tx.Data...)
	return dst
}

// Encode returns the wire form: the canonical encoding of all five fields.
func (tx *Transaction) Encode() []byte {
	out := tx.encodeBody(make([]byte, 0, 69+len(tx.Data)+SignatureLength))
	return append(out, tx.Sig[:]...)
}

// SigningHash is the message actually signed: Keccak-256 over the canonical
// encoding of (nonce, to, value, data), excluding the signature.
func (tx *Transaction) SigningHash() Hash {
	return Keccak256(tx.encodeBody(nil))
}

// Hash is the transaction identifier: Keccak-256 over the canonical encoding
// of all five fields. Low-S canonicality is enforced on every signature
// ingress, so the identifier is stable. Computed on demand, never cached.
func (tx *Transaction) Hash() Hash {
	return Keccak256(tx.Encode())
}

// Sender recovers the signing address from the signature and signing hash.
func (tx *Transaction) Sender() (Address, error) {
	return RecoverAddress(tx.Sig, tx.SigningHash())
}

// SignTransaction signs tx in place with the given key.
func SignTransaction(tx *Transaction, priv *PrivateKey) error {
	sig, err := priv.Sign(tx.SigningHash())
	if err != nil {
		return err
	}
	tx.Sig = sig
	return nil
}

// DecodeTransaction parses the wire form. Non-canonical signatures and
// signatures that fail to recover are rejected here, at ingress, before the
// transaction can reach a scheduler.
func DecodeTransaction(b []byte) (*Transaction, error) {
	const minLen = 8 + 1 + 32 + 8 + SignatureLength
	if len(b) < minLen {
		return nil, fmt.Errorf("%w: truncated at %d bytes", ErrInvalidTransaction, len(b))
	}
	tx := &Transaction{}
	off := 0

	tx.Nonce = binary.BigEndian.Uint64(b[off:])
	off += 8

	switch b[off] {
	case 0x00:
		off++
	case 0x01:
		off++
		if len(b) < off+AddressLength {
			return nil, fmt.Errorf("%w: truncated recipient", ErrInvalidTransaction)
		}
		var to Address
		copy(to[:], b[off:off+AddressLength])
		tx.To = &to
		off += AddressLength
	default:
		return nil, fmt.Errorf("%w: bad recipient flag %#x", ErrInvalidTransaction, b[off])
	}

	if len(b) < off+32+8 {
		return nil, fmt.Errorf("%w: truncated value", ErrInvalidTransaction)
	}
	value, err := U256FromBigEndian(b[off : off+32])
	if err != nil {
		return nil, err
	}
	tx.Value = value
	off += 32

	dataLen := binary.BigEndian.Uint64(b[off:])
	off += 8
	if uint64(len(b)-off) != dataLen+SignatureLength {
		return nil, fmt.Errorf("%w: data length %d does not match frame", ErrInvalidTransaction, dataLen)
	}
	if dataLen > 0 {
		tx.Data = append([]byte(nil), b[off:off+int(dataLen)]...)
		off += int(dataLen)
	}

	sig, err := SignatureFromBytes(b[off : off+SignatureLength])
	if err != nil {
		return nil, err
	}
	tx.Sig = sig

	if _, err := tx.Sender(); err != nil {
		return nil, err
	}
	return tx, nil
}
