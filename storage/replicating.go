package storage

import (
	"fmt"

	"github.com/ipfs/go-cid"

	"xdao.co/anchorauth/hashutil"
)

// Named associates an Archive with a stable backend name, retained for
// per-backend reporting in multi-backend deployments.
type Named struct {
	Name    string
	Archive Archive
}

// Replicating writes to all configured backends.
//
// Reads fall back in order. Writes go to all backends and require all
// returned CIDs to match (otherwise ErrCIDMismatch is returned).
//
// Use PutAll when you need the per-backend CID mapping.
type Replicating struct {
	Backends []Named
}

var _ Archive = (*Replicating)(nil)

// PutAll writes the same bytes to all backends and returns the canonical CID
// plus a map of backend name -> returned CID. If any backend returns a
// different CID, ErrCIDMismatch is returned.
func (r Replicating) PutAll(bytes []byte) (cid.Cid, map[string]cid.Cid, error) {
	want, err := hashutil.ContentCID(bytes)
	if err != nil {
		return cid.Undef, nil, err
	}
	if !want.Defined() {
		return cid.Undef, nil, ErrInvalidCID
	}
	if len(r.Backends) == 0 {
		return cid.Undef, nil, fmt.Errorf("storage: Replicating has no backends")
	}

	out := make(map[string]cid.Cid, len(r.Backends))
	for _, b := range r.Backends {
		if b.Archive == nil {
			return cid.Undef, nil, fmt.Errorf("storage: nil archive for backend %q", b.Name)
		}
		got, err := b.Archive.Put(bytes)
		if err != nil {
			return cid.Undef, nil, err
		}
		out[b.Name] = got
		if got != want {
			return cid.Undef, out, ErrCIDMismatch
		}
	}
	return want, out, nil
}

func (r Replicating) Put(bytes []byte) (cid.Cid, error) {
	id, _, err := r.PutAll(bytes)
	return id, err
}

func (r Replicating) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}
	for _, b := range r.Backends {
		if b.Archive == nil {
			continue
		}
		bs, err := b.Archive.Get(id)
		if err == nil {
			return bs, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}

func (r Replicating) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	for _, b := range r.Backends {
		if b.Archive != nil && b.Archive.Has(id) {
			return true
		}
	}
	return false
}
