package storage_test

import (
	"testing"

	"xdao.co/anchorauth/storage"
	"xdao.co/anchorauth/storage/testkit"
)

func TestMemory_Conformance(t *testing.T) {
	testkit.RunArchiveConformance(t, func(t *testing.T) storage.Archive {
		return storage.NewMemory()
	})
}
