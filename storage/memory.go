package storage

import (
	"sync"

	"github.com/ipfs/go-cid"

	"xdao.co/anchorauth/hashutil"
)

// Memory is an in-process Archive. It backs tests and single-binary
// deployments that do not need content to survive a restart.
type Memory struct {
	mu      sync.RWMutex
	objects map[cid.Cid][]byte
}

func NewMemory() *Memory {
	return &Memory{objects: map[cid.Cid][]byte{}}
}

func (m *Memory) Put(bytes []byte) (cid.Cid, error) {
	id, err := hashutil.ContentCID(bytes)
	if err != nil {
		return cid.Undef, err
	}
	if !id.Defined() {
		return cid.Undef, ErrInvalidCID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.objects[id]; ok {
		if string(existing) != string(bytes) {
			return cid.Undef, ErrImmutable
		}
		return id, nil
	}
	cp := make([]byte, len(bytes))
	copy(cp, bytes)
	m.objects[id] = cp
	return id, nil
}

func (m *Memory) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}
	m.mu.RLock()
	b, ok := m.objects[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp, nil
}

func (m *Memory) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[id]
	return ok
}
