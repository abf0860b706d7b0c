package storage

import "github.com/ipfs/go-cid"

// Archive is a minimal content-addressable store for anchored raw content.
//
// Contract:
// - Put MUST be idempotent.
// - Stored objects MUST be immutable.
// - CIDs MUST be derived from the bytes written (CIDv1 raw + sha2-256,
//   matching hashutil.ContentCID).
// - Get MUST return ErrNotFound when the CID is absent.
//
// Anchor registries write submitted content here before committing registry
// state, so a failed archive write aborts the anchor with no state change;
// idempotent Put makes the retry safe.
type Archive interface {
	Put(bytes []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}
