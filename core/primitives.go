package core

// primitives.go – VitaLedger Network
//
// Fixed-width byte primitives shared by every subsystem: 20-byte account
// addresses, 32-byte hashes and a 256-bit unsigned integer with checked
// arithmetic. Canonical textual form is lowercase hex with a 0x prefix.

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// Parse errors surfaced by every hex constructor.
var (
	ErrInvalidLength = errors.New("invalid length")
	ErrInvalidHex    = errors.New("invalid hex")
)

const (
	AddressLength = 20
	HashLength    = 32
)

// -----------------------------------------------------------------------------
// Hex helpers
// -----------------------------------------------------------------------------

// decodeHex strips an optional 0x/0X prefix and decodes the remaining digits.
// Odd digit counts and non-hex characters are rejected; case is ignored.
func decodeHex(s string) ([]byte, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: odd digit count %d", ErrInvalidLength, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return b, nil
}

// -----------------------------------------------------------------------------
// Address – 20-byte account identifier
// -----------------------------------------------------------------------------

type Address [AddressLength]byte

// AddressZero is the all-zero address, used as burn target and sentinel.
var AddressZero Address

// AddressFromSlice copies b into an Address. The slice must be exactly 20 bytes.
func AddressFromSlice(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLength {
		return a, fmt.Errorf("%w: address needs %d bytes, got %d", ErrInvalidLength, AddressLength, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// AddressFromHex parses a 40-digit hex string with optional 0x prefix.
func AddressFromHex(s string) (Address, error) {
	b, err := decodeHex(s)
	if err != nil {
		return Address{}, err
	}
	return AddressFromSlice(b)
}

func (a Address) Bytes() []byte { return a[:] }

func (a Address) IsZero() bool { return a == Address{} }

func (a Address) String() string { return "0x" + hex.EncodeToString(a[:]) }

// Short returns a shortened hex form for log lines (first 4 + last 4 digits).
func (a Address) Short() string {
	h := hex.EncodeToString(a[:])
	return h[:4] + ".." + h[len(h)-4:]
}

// -----------------------------------------------------------------------------
// Hash – 32-byte digest / storage key
// -----------------------------------------------------------------------------

type Hash [HashLength]byte

// HashZero is the all-zero hash.
var HashZero Hash

// HashFromSlice copies b into a Hash. The slice must be exactly 32 bytes.
func HashFromSlice(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashLength {
		return h, fmt.Errorf("%w: hash needs %d bytes, got %d", ErrInvalidLength, HashLength, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// HashFromHex parses a 64-digit hex string with optional 0x prefix.
func HashFromHex(s string) (Hash, error) {
	b, err := decodeHex(s)
	if err != nil {
		return Hash{}, err
	}
	return HashFromSlice(b)
}

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) IsZero() bool { return h == Hash{} }

func (h Hash) String() string { return "0x" + hex.EncodeToString(h[:]) }

// Compare orders hashes bytewise, the canonical key order of the state root.
func (h Hash) Compare(o Hash) int { return bytes.Compare(h[:], o[:]) }

// Short returns a shortened hex form for log lines (first 4 + last 4 digits).
func (h Hash) Short() string {
	s := hex.EncodeToString(h[:])
	return s[:4] + ".." + s[len(s)-4:]
}

// -----------------------------------------------------------------------------
// U256 – 256-bit unsigned integer with checked arithmetic
// -----------------------------------------------------------------------------

// U256 wraps holiman/uint256. All arithmetic is overflow-checked: the second
// return value reports whether the result is valid. Wrapping never happens
// implicitly.
type U256 struct {
	i uint256.Int
}

// U256Zero returns the zero value.
func U256Zero() U256 { return U256{} }

// U256FromUint64 lifts a machine word into a U256.
func U256FromUint64(v uint64) U256 {
	var u U256
	u.i.SetUint64(v)
	return u
}

// U256FromBig converts a big.Int. ok is false when b is negative or does not
// fit in 256 bits.
func U256FromBig(b *big.Int) (U256, bool) {
	var u U256
	overflow := u.i.SetFromBig(b)
	if b.Sign() < 0 || overflow {
		return U256{}, false
	}
	return u, true
}

// U256FromHex parses up to 64 hex digits with optional 0x prefix, interpreted
// big-endian.
func U256FromHex(s string) (U256, error) {
	b, err := decodeHex(s)
	if err != nil {
		return U256{}, err
	}
	if len(b) > 32 {
		return U256{}, fmt.Errorf("%w: value needs at most 32 bytes, got %d", ErrInvalidLength, len(b))
	}
	var u U256
	u.i.SetBytes(b)
	return u, nil
}

// U256FromBigEndian interprets b (at most 32 bytes) as a big-endian integer.
func U256FromBigEndian(b []byte) (U256, error) {
	if len(b) > 32 {
		return U256{}, fmt.Errorf("%w: value needs at most 32 bytes, got %d", ErrInvalidLength, len(b))
	}
	var u U256
	u.i.SetBytes(b)
	return u, nil
}

// U256FromLittleEndian interprets b (at most 32 bytes) as a little-endian
// integer.
func U256FromLittleEndian(b []byte) (U256, error) {
	if len(b) > 32 {
		return U256{}, fmt.Errorf("%w: value needs at most 32 bytes, got %d", ErrInvalidLength, len(b))
	}
	rev := make([]byte, len(b))
	for i, c := range b {
		rev[len(b)-1-i] = c
	}
	var u U256
	u.i.SetBytes(rev)
	return u, nil
}

// CheckedAdd returns u+v, ok=false on overflow.
func (u U256) CheckedAdd(v U256) (U256, bool) {
	var out U256
	_, carry := out.i.AddOverflow(&u.i, &v.i)
	if carry {
		return U256{}, false
	}
	return out, true
}

// CheckedSub returns u-v, ok=false on underflow.
func (u U256) CheckedSub(v U256) (U256, bool) {
	var out U256
	_, borrow := out.i.SubOverflow(&u.i, &v.i)
	if borrow {
		return U256{}, false
	}
	return out, true
}

// CheckedMul returns u*v, ok=false on overflow.
func (u U256) CheckedMul(v U256) (U256, bool) {
	var out U256
	_, overflow := out.i.MulOverflow(&u.i, &v.i)
	if overflow {
		return U256{}, false
	}
	return out, true
}

// CheckedDiv returns u/v, ok=false when v is zero.
func (u U256) CheckedDiv(v U256) (U256, bool) {
	if v.i.IsZero() {
		return U256{}, false
	}
	var out U256
	out.i.Div(&u.i, &v.i)
	return out, true
}

func (u U256) IsZero() bool { return u.i.IsZero() }

// Cmp returns -1, 0 or +1.
func (u U256) Cmp(v U256) int { return u.i.Cmp(&v.i) }

// Uint64 truncates to the low 64 bits.
func (u U256) Uint64() uint64 { return u.i.Uint64() }

// BigEndianBytes returns the fixed 32-byte big-endian encoding.
func (u U256) BigEndianBytes() [32]byte { return u.i.Bytes32() }

// LittleEndianBytes returns the fixed 32-byte little-endian encoding.
func (u U256) LittleEndianBytes() [32]byte {
	be := u.i.Bytes32()
	var le [32]byte
	for i := range be {
		le[31-i] = be[i]
	}
	return le
}

// String renders the fixed-width big-endian encoding as 0x hex.
func (u U256) String() string {
	b := u.i.Bytes32()
	return "0x" + hex.EncodeToString(b[:])
}

// -----------------------------------------------------------------------------
// Small binary helpers shared by the canonical encoders
// -----------------------------------------------------------------------------

func appendUint64BE(dst []byte, v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return append(dst, buf[:]...)
}
