package localfs

import (
	"testing"

	"xdao.co/anchorauth/storage"
	"xdao.co/anchorauth/storage/testkit"
)

func TestLocalFS_Conformance(t *testing.T) {
	testkit.RunArchiveConformance(t, func(t *testing.T) storage.Archive {
		a, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		return a
	})
}

func TestLocalFS_RequiresRoot(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatalf("expected error for empty root")
	}
}
