package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

//-------------------------------------------------------------
// Keccak-256 known vectors (Ethereum variant, not SHA3-256)
//-------------------------------------------------------------

func TestKeccak256Vectors(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"Empty", nil, "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{"ABC", []byte("abc"), "0x4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Keccak256(tc.in).String(); got != tc.want {
				t.Fatalf("keccak(%q) = %s, want %s", tc.in, got, tc.want)
			}
		})
	}
}

func TestKeccak256ConcatEquivalence(t *testing.T) {
	a, b, c := []byte("vita"), []byte("ledger"), []byte("core")
	joined := Keccak256(append(append(append([]byte(nil), a...), b...), c...))
	if got := Keccak256Concat(a, b, c); got != joined {
		t.Fatalf("concat digest differs from joined digest")
	}
}

//-------------------------------------------------------------
// Sign / verify / recover
//-------------------------------------------------------------

func TestSignVerifyRecover(t *testing.T) {
	priv, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	digest := Keccak256([]byte("consent record 77"))

	sig, err := priv.Sign(digest)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !Verify(sig, digest, priv.PubKey()) {
		t.Fatalf("signature does not verify")
	}
	if Verify(sig, Keccak256([]byte("other")), priv.PubKey()) {
		t.Fatalf("signature verified against wrong digest")
	}

	pub, err := Recover(sig, digest)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if !pub.Equal(priv.PubKey()) {
		t.Fatalf("recovered key differs from signer")
	}
	if got := pub.Address(); got != priv.PubKey().Address() {
		t.Fatalf("address mismatch: %s vs %s", got, priv.PubKey().Address())
	}
}

func TestSignDeterministic(t *testing.T) {
	priv, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	digest := Keccak256([]byte("rfc6979"))
	s1, err := priv.Sign(digest)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	s2, err := priv.Sign(digest)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if s1 != s2 {
		t.Fatalf("deterministic signing produced two signatures")
	}
}

//-------------------------------------------------------------
// Canonicality – low-S only, v in {27, 28}
//-------------------------------------------------------------

func TestSignatureCanonicality(t *testing.T) {
	priv, _ := GeneratePrivateKey()
	digest := Keccak256([]byte("canonical"))
	sig, err := priv.Sign(digest)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	// Emitted signatures always re-validate.
	if _, err := SignatureFromBytes(sig.Bytes()); err != nil {
		t.Fatalf("emitted signature rejected: %v", err)
	}

	// secp256k1 group order n.
	nBytes := "fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141"

	// Forge the high-S twin: s' = n - s. Same r and v; only s changes.
	high := sig
	n, _ := U256FromHex(nBytes)
	s, _ := U256FromBigEndian(sig.S())
	sPrime, ok := n.CheckedSub(s)
	if !ok {
		t.Fatalf("n - s underflowed")
	}
	sp := sPrime.BigEndianBytes()
	copy(high[32:64], sp[:])
	if _, err := SignatureFromBytes(high.Bytes()); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("high-S accepted: %v", err)
	}

	// Out-of-range v.
	badV := sig
	badV[64] = 29
	if _, err := SignatureFromBytes(badV.Bytes()); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("v=29 accepted: %v", err)
	}

	// Zero scalars.
	var zeroR Signature
	copy(zeroR[:], sig[:])
	for i := 0; i < 32; i++ {
		zeroR[i] = 0
	}
	if _, err := SignatureFromBytes(zeroR.Bytes()); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("r=0 accepted: %v", err)
	}

	if len(sig.Bytes()) != SignatureLength {
		t.Fatalf("signature width %d", len(sig.Bytes()))
	}
}

func TestSignatureFromBytesRejectsShortInput(t *testing.T) {
	if _, err := SignatureFromBytes(make([]byte, 64)); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("short signature accepted")
	}
}

//-------------------------------------------------------------
// Key handling
//-------------------------------------------------------------

func TestPrivateKeyRedaction(t *testing.T) {
	priv, _ := GeneratePrivateKey()
	for _, rendered := range []string{
		priv.String(),
		fmt.Sprintf("%v", priv),
		fmt.Sprintf("%+v", priv),
		fmt.Sprintf("%#v", priv),
	} {
		if strings.Contains(rendered, fmt.Sprintf("%x", priv.Bytes())) {
			t.Fatalf("key material leaked into %q", rendered)
		}
		if !strings.Contains(rendered, "redacted") {
			t.Fatalf("redaction marker missing from %q", rendered)
		}
	}
}

func TestPrivateKeyFromBytes(t *testing.T) {
	if _, err := PrivateKeyFromBytes(make([]byte, 32)); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("zero scalar accepted")
	}
	if _, err := PrivateKeyFromBytes(make([]byte, 16)); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("short scalar accepted")
	}
	priv, _ := GeneratePrivateKey()
	back, err := PrivateKeyFromBytes(priv.Bytes())
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if !back.PubKey().Equal(priv.PubKey()) {
		t.Fatalf("key round trip changed public key")
	}
}
