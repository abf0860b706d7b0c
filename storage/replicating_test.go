package storage_test

import (
	"testing"

	"xdao.co/anchorauth/hashutil"
	"xdao.co/anchorauth/storage"
	"xdao.co/anchorauth/storage/testkit"
)

func TestReplicating_Conformance(t *testing.T) {
	testkit.RunArchiveConformance(t, func(t *testing.T) storage.Archive {
		return storage.Replicating{Backends: []storage.Named{
			{Name: "a", Archive: storage.NewMemory()},
			{Name: "b", Archive: storage.NewMemory()},
		}}
	})
}

func TestReplicating_PutAllWritesEveryBackend(t *testing.T) {
	a := storage.NewMemory()
	b := storage.NewMemory()
	r := storage.Replicating{Backends: []storage.Named{
		{Name: "a", Archive: a},
		{Name: "b", Archive: b},
	}}

	payload := []byte("replicated payload")
	id, perBackend, err := r.PutAll(payload)
	if err != nil {
		t.Fatalf("PutAll: %v", err)
	}
	want, err := hashutil.ContentCID(payload)
	if err != nil {
		t.Fatalf("ContentCID: %v", err)
	}
	if id != want {
		t.Fatalf("canonical CID mismatch: %s vs %s", id, want)
	}
	if len(perBackend) != 2 {
		t.Fatalf("expected 2 backend CIDs, got %d", len(perBackend))
	}
	if !a.Has(id) || !b.Has(id) {
		t.Fatalf("payload missing from a backend")
	}
}

func TestReplicating_GetFallsBack(t *testing.T) {
	a := storage.NewMemory()
	b := storage.NewMemory()
	r := storage.Replicating{Backends: []storage.Named{
		{Name: "a", Archive: a},
		{Name: "b", Archive: b},
	}}

	payload := []byte("only in b")
	id, err := b.Put(payload)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := r.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload mismatch")
	}
	if !r.Has(id) {
		t.Fatalf("Has should report true when any backend holds the object")
	}
}

func TestReplicating_NoBackends(t *testing.T) {
	var r storage.Replicating
	if _, err := r.Put([]byte("x")); err == nil {
		t.Fatalf("expected error for empty backend list")
	}
}
