package core

import (
	"errors"
	"math/big"
	"strings"
	"testing"
)

//-------------------------------------------------------------
// Hex round trips and rejection
//-------------------------------------------------------------

func TestAddressHexRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"Lower", "0x00112233445566778899aabbccddeeff00112233"},
		{"Upper", "0X00112233445566778899AABBCCDDEEFF00112233"},
		{"NoPrefix", "00112233445566778899aabbccddeeff00112233"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, err := AddressFromHex(tc.in)
			if err != nil {
				t.Fatalf("parse err: %v", err)
			}
			back, err := AddressFromHex(a.String())
			if err != nil {
				t.Fatalf("reparse err: %v", err)
			}
			if back != a {
				t.Fatalf("round trip mismatch: %s vs %s", back, a)
			}
			if !strings.HasPrefix(a.String(), "0x") {
				t.Fatalf("display missing 0x prefix: %s", a)
			}
		})
	}
}

func TestHexRejection(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"OddDigits", "0xabc", ErrInvalidLength},
		{"NonHex", "0xgg112233445566778899aabbccddeeff00112233", ErrInvalidHex},
		{"TooShort", "0x0011", ErrInvalidLength},
		{"TooLong", "0x" + strings.Repeat("00", 21), ErrInvalidLength},
		{"Empty", "", ErrInvalidLength},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := AddressFromHex(tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestHashHexRoundTrip(t *testing.T) {
	h := Keccak256([]byte("vitaledger"))
	back, err := HashFromHex(h.String())
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if back != h {
		t.Fatalf("round trip mismatch")
	}
	if _, err := HashFromHex("0x00"); !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("expected length error, got %v", err)
	}
}

func FuzzAddressFromHex(f *testing.F) {
	seeds := []string{
		"0x00112233445566778899aabbccddeeff00112233",
		"0X00112233445566778899AABBCCDDEEFF00112233",
		"0xzz", "abc", "",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, s string) {
		a, err := AddressFromHex(s)
		if err != nil {
			return
		}
		back, err := AddressFromHex(a.String())
		if err != nil || back != a {
			t.Fatalf("accepted input %q does not round trip", s)
		}
	})
}

//-------------------------------------------------------------
// U256 checked arithmetic
//-------------------------------------------------------------

func TestU256CheckedOps(t *testing.T) {
	max, err := U256FromHex("0x" + strings.Repeat("ff", 32))
	if err != nil {
		t.Fatalf("parse max: %v", err)
	}
	one := U256FromUint64(1)
	two := U256FromUint64(2)

	if _, ok := max.CheckedAdd(one); ok {
		t.Fatalf("add overflow not detected")
	}
	if _, ok := U256Zero().CheckedSub(one); ok {
		t.Fatalf("sub underflow not detected")
	}
	if _, ok := max.CheckedMul(two); ok {
		t.Fatalf("mul overflow not detected")
	}
	if _, ok := one.CheckedDiv(U256Zero()); ok {
		t.Fatalf("division by zero not detected")
	}

	sum, ok := one.CheckedAdd(two)
	if !ok || sum.Uint64() != 3 {
		t.Fatalf("1+2 = %v ok=%v", sum, ok)
	}
	q, ok := U256FromUint64(10).CheckedDiv(two)
	if !ok || q.Uint64() != 5 {
		t.Fatalf("10/2 = %v ok=%v", q, ok)
	}
}

func TestU256Endianness(t *testing.T) {
	v := U256FromUint64(0x0102030405060708)
	be := v.BigEndianBytes()
	le := v.LittleEndianBytes()
	if be[31] != 0x08 || be[24] != 0x01 {
		t.Fatalf("big-endian layout wrong: %x", be)
	}
	if le[0] != 0x08 || le[7] != 0x01 {
		t.Fatalf("little-endian layout wrong: %x", le)
	}
	fromBE, err := U256FromBigEndian(be[:])
	if err != nil || fromBE.Cmp(v) != 0 {
		t.Fatalf("BE round trip failed")
	}
	fromLE, err := U256FromLittleEndian(le[:])
	if err != nil || fromLE.Cmp(v) != 0 {
		t.Fatalf("LE round trip failed")
	}
}

func TestU256FromBig(t *testing.T) {
	if _, ok := U256FromBig(big.NewInt(-1)); ok {
		t.Fatalf("negative accepted")
	}
	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	if _, ok := U256FromBig(tooBig); ok {
		t.Fatalf("2^256 accepted")
	}
	v, ok := U256FromBig(big.NewInt(12345))
	if !ok || v.Uint64() != 12345 {
		t.Fatalf("small value mangled: %v", v)
	}
}
