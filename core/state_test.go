package core

import (
	"bytes"
	"testing"
)

func k(s string) Hash { return Keccak256([]byte(s)) }

//-------------------------------------------------------------
// Snapshot isolation
//-------------------------------------------------------------

func TestSnapshotIsolation(t *testing.T) {
	state := NewMemoryState()
	if err := state.Set(k("key"), []byte("v1")); err != nil {
		t.Fatalf("set: %v", err)
	}

	snap, err := state.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if err := state.Set(k("key"), []byte("v2")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := state.Delete(k("key2")); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, ok := snap.Get(k("key"))
	if !ok || !bytes.Equal(got, []byte("v1")) {
		t.Fatalf("snapshot observed later write: %q", got)
	}
	live, ok, _ := state.Get(k("key"))
	if !ok || !bytes.Equal(live, []byte("v2")) {
		t.Fatalf("live state lost the write: %q", live)
	}
}

func TestSnapshotsIndependent(t *testing.T) {
	state := NewMemoryState()
	_ = state.Set(k("a"), []byte("1"))

	s1, _ := state.Snapshot()
	s2, _ := state.Snapshot()

	keys, _ := state.Keys()
	for _, key := range keys {
		v1, ok1 := s1.Get(key)
		v2, ok2 := s2.Get(key)
		if ok1 != ok2 || !bytes.Equal(v1, v2) {
			t.Fatalf("sibling snapshots disagree on %s", key)
		}
	}

	_ = state.Set(k("a"), []byte("2"))
	s3, _ := state.Snapshot()
	if v, _ := s3.Get(k("a")); !bytes.Equal(v, []byte("2")) {
		t.Fatalf("later snapshot missed the write")
	}
	if v, _ := s1.Get(k("a")); !bytes.Equal(v, []byte("1")) {
		t.Fatalf("earlier snapshot observed the write")
	}
}

//-------------------------------------------------------------
// Commit semantics
//-------------------------------------------------------------

func TestCommitLastWriteWins(t *testing.T) {
	state := NewMemoryState()
	batch := []KV{
		{Key: k("dup"), Value: []byte("first")},
		{Key: k("other"), Value: []byte("x")},
		{Key: k("dup"), Value: []byte("second")},
	}
	if err := state.Commit(batch); err != nil {
		t.Fatalf("commit: %v", err)
	}
	v, ok, _ := state.Get(k("dup"))
	if !ok || !bytes.Equal(v, []byte("second")) {
		t.Fatalf("duplicate key resolved to %q", v)
	}
}

//-------------------------------------------------------------
// State root
//-------------------------------------------------------------

func TestStateRootDeterministic(t *testing.T) {
	build := func(order []string) Hash {
		s := NewMemoryState()
		for _, key := range order {
			_ = s.Set(k(key), []byte("val:"+key))
		}
		root, err := StateRoot(s)
		if err != nil {
			t.Fatalf("root: %v", err)
		}
		return root
	}

	r1 := build([]string{"a", "b", "c"})
	r2 := build([]string{"c", "a", "b"})
	if r1 != r2 {
		t.Fatalf("insertion order leaked into the root")
	}

	r3 := build([]string{"a", "b"})
	if r1 == r3 {
		t.Fatalf("missing key did not change the root")
	}
}

func TestStateRootValueBoundaries(t *testing.T) {
	s1 := NewMemoryState()
	_ = s1.Set(k("a"), []byte("xy"))
	_ = s1.Set(k("b"), []byte("z"))

	s2 := NewMemoryState()
	_ = s2.Set(k("a"), []byte("x"))
	_ = s2.Set(k("b"), []byte("yz"))

	r1, _ := StateRoot(s1)
	r2, _ := StateRoot(s2)
	if r1 == r2 {
		t.Fatalf("value boundaries must be part of the digest")
	}
}
