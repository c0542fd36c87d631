package core

// keys.go – secp256k1 key pairs. Private key material never appears in log
// output: both String and Format redact it.

import (
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

var ErrInvalidKey = errors.New("invalid key")

// -----------------------------------------------------------------------------
// PrivateKey
// -----------------------------------------------------------------------------

// PrivateKey wraps a secp256k1 scalar drawn from OS entropy.
type PrivateKey struct {
	k *secp256k1.PrivateKey
}

// GeneratePrivateKey draws a fresh key from crypto/rand.
func GeneratePrivateKey() (*PrivateKey, error) {
	k, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &PrivateKey{k: k}, nil
}

// PrivateKeyFromBytes loads a 32-byte scalar. Zero and out-of-range scalars
// are rejected.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("%w: need 32 bytes, got %d", ErrInvalidKey, len(b))
	}
	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(b); overflow {
		return nil, fmt.Errorf("%w: scalar out of range", ErrInvalidKey)
	}
	if scalar.IsZero() {
		return nil, fmt.Errorf("%w: zero scalar", ErrInvalidKey)
	}
	return &PrivateKey{k: secp256k1.PrivKeyFromBytes(b)}, nil
}

// PubKey derives the public half.
func (p *PrivateKey) PubKey() *PublicKey {
	return &PublicKey{k: p.k.PubKey()}
}

// Bytes returns the raw 32-byte scalar. Callers should wipe the slice after
// use.
func (p *PrivateKey) Bytes() []byte { return p.k.Serialize() }

// String redacts the key material.
func (p *PrivateKey) String() string { return "PrivateKey(redacted)" }

// Format redacts the key material for every fmt verb, including %#v and %+v.
func (p *PrivateKey) Format(f fmt.State, verb rune) {
	fmt.Fprint(f, "PrivateKey(redacted)")
}

// -----------------------------------------------------------------------------
// PublicKey
// -----------------------------------------------------------------------------

type PublicKey struct {
	k *secp256k1.PublicKey
}

// PublicKeyFromBytes parses a compressed or uncompressed SEC1 encoding.
func PublicKeyFromBytes(b []byte) (*PublicKey, error) {
	k, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return &PublicKey{k: k}, nil
}

// UncompressedBytes returns the 65-byte 0x04 ‖ X ‖ Y encoding.
func (p *PublicKey) UncompressedBytes() []byte { return p.k.SerializeUncompressed() }

// CompressedBytes returns the 33-byte SEC1 compressed encoding.
func (p *PublicKey) CompressedBytes() []byte { return p.k.SerializeCompressed() }

// Address derives the account address: keccak256(X ‖ Y)[12:32].
func (p *PublicKey) Address() Address {
	xy := p.k.SerializeUncompressed()[1:]
	digest := Keccak256(xy)
	var a Address
	copy(a[:], digest[12:])
	return a
}

// Equal reports whether both keys encode the same curve point.
func (p *PublicKey) Equal(o *PublicKey) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.k.IsEqual(o.k)
}

func (p *PublicKey) String() string {
	return fmt.Sprintf("PublicKey(%x)", p.k.SerializeCompressed())
}
