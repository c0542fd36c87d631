package core

// crypto.go – VitaLedger Network
//
// Cryptographic identity: Keccak-256 (the pre-standardisation Ethereum
// variant, not NIST SHA3-256), secp256k1 ECDSA with RFC6979 deterministic
// nonces, public-key recovery and address derivation. Scalar arithmetic is
// delegated to the decred secp256k1 implementation; nothing here re-implements
// curve math.

import (
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrRecoveryFailed   = errors.New("recovery failed")
)

// -----------------------------------------------------------------------------
// Keccak-256
// -----------------------------------------------------------------------------

// Keccak256 hashes data with legacy Keccak-256.
func Keccak256(data []byte) Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out Hash
	h.Sum(out[:0])
	return out
}

// Keccak256Concat hashes the concatenation of the given slices without
// building an intermediate buffer. Fingerprints compose several slices, so
// this is the workhorse of tag and root derivation.
func Keccak256Concat(slices ...[]byte) Hash {
	h := sha3.NewLegacyKeccak256()
	for _, s := range slices {
		h.Write(s)
	}
	var out Hash
	h.Sum(out[:0])
	return out
}

// -----------------------------------------------------------------------------
// Signature – 65 bytes r ‖ s ‖ v
// -----------------------------------------------------------------------------

const SignatureLength = 65

// Signature is a recoverable ECDSA signature laid out r ‖ s ‖ v with r,s
// 32-byte scalars and v ∈ {27, 28}. Only the low-S canonical representative
// of each signing outcome is admitted; high-S forms are rejected on
// construction, which keeps the five-field transaction hash stable at every
// ingress.
type Signature [SignatureLength]byte

// SignatureFromBytes validates and copies a 65-byte r ‖ s ‖ v signature.
func SignatureFromBytes(b []byte) (Signature, error) {
	var sig Signature
	if len(b) != SignatureLength {
		return sig, fmt.Errorf("%w: need %d bytes, got %d", ErrInvalidSignature, SignatureLength, len(b))
	}
	copy(sig[:], b)
	if err := sig.validate(); err != nil {
		return Signature{}, err
	}
	return sig, nil
}

func (sig Signature) validate() error {
	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow || r.IsZero() {
		return fmt.Errorf("%w: r out of range", ErrInvalidSignature)
	}
	if overflow := s.SetByteSlice(sig[32:64]); overflow || s.IsZero() {
		return fmt.Errorf("%w: s out of range", ErrInvalidSignature)
	}
	if s.IsOverHalfOrder() {
		return fmt.Errorf("%w: non-canonical high-S", ErrInvalidSignature)
	}
	if v := sig[64]; v != 27 && v != 28 {
		return fmt.Errorf("%w: v must be 27 or 28, got %d", ErrInvalidSignature, v)
	}
	return nil
}

func (sig Signature) R() []byte { return sig[:32] }
func (sig Signature) S() []byte { return sig[32:64] }
func (sig Signature) V() byte   { return sig[64] }

func (sig Signature) Bytes() []byte { return sig[:] }

// compact rearranges r ‖ s ‖ v into the v ‖ r ‖ s layout the recovery
// routines consume.
func (sig Signature) compact() []byte {
	out := make([]byte, SignatureLength)
	out[0] = sig[64]
	copy(out[1:33], sig[:32])
	copy(out[33:65], sig[32:64])
	return out
}

// -----------------------------------------------------------------------------
// Sign / Verify / Recover – all over a 32-byte prehash
// -----------------------------------------------------------------------------

// Sign produces a recoverable signature over prehash using RFC6979
// deterministic nonces. The 32-byte digest is signed as-is; no internal
// re-hashing happens, so externally prepared digests stay compatible. The
// returned signature is always low-S canonical.
func (p *PrivateKey) Sign(prehash Hash) (Signature, error) {
	if p == nil || p.k == nil {
		return Signature{}, fmt.Errorf("%w: nil private key", ErrInvalidSignature)
	}
	compact := secpecdsa.SignCompact(p.k, prehash[:], false)
	var sig Signature
	copy(sig[:32], compact[1:33])
	copy(sig[32:64], compact[33:65])
	sig[64] = compact[0]
	if err := sig.validate(); err != nil {
		return Signature{}, err
	}
	return sig, nil
}

// Verify reports whether sig is a valid canonical signature of prehash under
// pub. High-S signatures never verify.
func Verify(sig Signature, prehash Hash, pub *PublicKey) bool {
	if pub == nil || pub.k == nil {
		return false
	}
	if err := sig.validate(); err != nil {
		return false
	}
	var r, s secp256k1.ModNScalar
	r.SetByteSlice(sig[:32])
	s.SetByteSlice(sig[32:64])
	return secpecdsa.NewSignature(&r, &s).Verify(prehash[:], pub.k)
}

// Recover reconstructs the signing public key from a recoverable signature.
func Recover(sig Signature, prehash Hash) (*PublicKey, error) {
	if err := sig.validate(); err != nil {
		return nil, err
	}
	pub, _, err := secpecdsa.RecoverCompact(sig.compact(), prehash[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecoveryFailed, err)
	}
	return &PublicKey{k: pub}, nil
}

// RecoverAddress is Recover followed by address derivation.
func RecoverAddress(sig Signature, prehash Hash) (Address, error) {
	pub, err := Recover(sig, prehash)
	if err != nil {
		return Address{}, err
	}
	return pub.Address(), nil
}
