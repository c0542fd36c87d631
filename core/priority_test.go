package core

import (
	"bytes"
	"testing"
)

//-------------------------------------------------------------
// Strict ordering: release bit, then height, then tag
//-------------------------------------------------------------

func TestPriorityStrictOrder(t *testing.T) {
	tagA := Keccak256([]byte("a"))
	tagB := Keccak256([]byte("b"))
	if bytes.Compare(tagA[:], tagB[:]) >= 0 {
		tagA, tagB = tagB, tagA
	}

	tests := []struct {
		name string
		lo   PriorityCode // expected higher priority (smaller code)
		hi   PriorityCode
	}{
		{
			"OwnedBeatsDisowned",
			PriorityCode{Release: Owned, Height: ^uint64(0), Tag: tagB},
			PriorityCode{Release: Disowned, Height: 0, Tag: tagA},
		},
		{
			"HeightBreaksTies",
			PriorityCode{Release: Owned, Height: 3, Tag: tagB},
			PriorityCode{Release: Owned, Height: 4, Tag: tagA},
		},
		{
			"TagBreaksTies",
			PriorityCode{Release: Owned, Height: 9, Tag: tagA},
			PriorityCode{Release: Owned, Height: 9, Tag: tagB},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.lo.Compare(tc.hi) >= 0 {
				t.Fatalf("%v should sort before %v", tc.lo, tc.hi)
			}
			if tc.hi.Compare(tc.lo) <= 0 {
				t.Fatalf("comparison is not antisymmetric")
			}
			if !tc.lo.Preempts(tc.hi) {
				t.Fatalf("higher priority must preempt")
			}
			if tc.hi.Preempts(tc.lo) {
				t.Fatalf("lower priority must not preempt")
			}
		})
	}

	p := PriorityCode{Release: Owned, Height: 1, Tag: tagA}
	if !p.Preempts(p) {
		t.Fatalf("a code must preempt its equal")
	}
}

func TestPriorityOrderMatchesByteOrder(t *testing.T) {
	codes := []PriorityCode{
		MinPriority(),
		{Release: Owned, Height: 0, Tag: HashZero},
		{Release: Owned, Height: 5, Tag: Keccak256([]byte("x"))},
		{Release: Disowned, Height: 5, Tag: Keccak256([]byte("x"))},
	}
	for _, a := range codes {
		for _, b := range codes {
			ab, bb := a.Bytes(), b.Bytes()
			if got, want := a.Compare(b), bytes.Compare(ab[:], bb[:]); got != want {
				t.Fatalf("struct order %d disagrees with byte order %d for %v vs %v", got, want, a, b)
			}
		}
	}
}

//-------------------------------------------------------------
// Serialisation and derivation
//-------------------------------------------------------------

func TestPriorityCodeSerialisation(t *testing.T) {
	p := PriorityCode{Release: Owned, Height: 77, Tag: Keccak256([]byte("tag"))}
	b := p.Bytes()
	back, err := PriorityCodeFromBytes(b[:])
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !back.Equal(p) {
		t.Fatalf("round trip changed the code")
	}
	if _, err := PriorityCodeFromBytes(b[:40]); err == nil {
		t.Fatalf("short encoding accepted")
	}
	bad := b
	bad[0] = 2
	if _, err := PriorityCodeFromBytes(bad[:]); err == nil {
		t.Fatalf("bad release bit accepted")
	}
}

func TestTxPriorityImmutable(t *testing.T) {
	txHash := Keccak256([]byte("tx"))
	txsHash := Keccak256([]byte("batch"))

	p1 := TxPriority(txHash, txsHash, 12)
	p2 := TxPriority(txHash, txsHash, 12)
	if !p1.Equal(p2) {
		t.Fatalf("priority derivation is not a pure function")
	}
	if p1.Release != Owned {
		t.Fatalf("fresh priorities must be OWNED")
	}
	if p1.Height != 12 {
		t.Fatalf("height not carried: %d", p1.Height)
	}
	if TxPriority(txHash, txsHash, 13).Equal(p1) {
		t.Fatalf("height must feed the code")
	}
	if TxPriority(Keccak256([]byte("tx2")), txsHash, 12).Equal(p1) {
		t.Fatalf("tx hash must feed the tag")
	}
}

func TestMinPrioritySentinel(t *testing.T) {
	sentinel := MinPriority()
	real := TxPriority(Keccak256([]byte("any")), Keccak256([]byte("batch")), ^uint64(0))
	if !real.Preempts(sentinel) {
		t.Fatalf("a real priority must preempt the sentinel")
	}
	if sentinel.Preempts(real) {
		t.Fatalf("the sentinel must never preempt a real claim")
	}
}
