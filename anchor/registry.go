// Package anchor implements the anchor registry: per-owner append-only logs
// of content-addressed records, with a per-owner membership index rejecting
// duplicate digests.
package anchor

import (
	"encoding/hex"
	"sync"
	"time"

	"xdao.co/anchorauth/eventlog"
	"xdao.co/anchorauth/gate"
	"xdao.co/anchorauth/hashutil"
	"xdao.co/anchorauth/identity"
	"xdao.co/anchorauth/model"
	"xdao.co/anchorauth/storage"
)

// Options are the registry's injection points. Zero values get working
// defaults; a nil Gate denies every delegated submission.
type Options struct {
	// Gate authorizes callers of SubmitSigned.
	Gate gate.Gate
	// Events receives one notification per accepted operation. A fresh log
	// is created when nil.
	Events *eventlog.Log
	// Archive, when set, receives submitted non-empty content before the
	// registry commits.
	Archive storage.Archive
	// Recover verifies delegated submissions. Defaults to
	// identity.RecoverSigner.
	Recover identity.RecoverFunc
	// Now supplies record timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Registry owns the anchored records. Every operation is a single
// synchronous unit of work serialized by one mutex; an operation either
// commits fully or fails with no state change.
type Registry struct {
	id      identity.Address
	gate    gate.Gate
	events  *eventlog.Log
	archive storage.Archive
	recover identity.RecoverFunc
	now     func() time.Time

	mu      sync.Mutex
	records map[identity.Address][]model.AnchorRecord
	seen    map[identity.Address]map[string]struct{}
}

// New constructs a registry with the given instance identity. The identity
// is bound into every signing preimage, so signatures cannot be replayed
// against another instance.
func New(id identity.Address, opts Options) *Registry {
	if opts.Gate == nil {
		opts.Gate = gate.Deny{}
	}
	if opts.Events == nil {
		opts.Events = eventlog.New()
	}
	if opts.Recover == nil {
		opts.Recover = identity.RecoverSigner
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{
		id:      id,
		gate:    opts.Gate,
		events:  opts.Events,
		archive: opts.Archive,
		recover: opts.Recover,
		now:     opts.Now,
		records: map[identity.Address][]model.AnchorRecord{},
		seen:    map[identity.Address]map[string]struct{}{},
	}
}

// ID returns the registry instance identity.
func (r *Registry) ID() identity.Address { return r.id }

// Events returns the registry's notification log.
func (r *Registry) Events() *eventlog.Log { return r.events }

// MessageHash returns the instance-bound preimage digest an external signer
// must sign for SubmitSigned.
func (r *Registry) MessageHash(digest, content []byte) []byte {
	return hashutil.AnchorMessageHash(r.id[:], digest, content)
}

// Submit anchors a record for the caller. It returns the new record's index
// within the caller's log.
func (r *Registry) Submit(caller identity.Address, category int, hashAlg string, digest, content []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.submit(caller, category, hashAlg, digest, content)
}

// SubmitSigned anchors a record on behalf of whoever produced sig. The
// caller must pass the administrative gate; the recovered signer becomes the
// record owner unconditionally.
func (r *Registry) SubmitSigned(caller identity.Address, category int, hashAlg string, digest, content, sig []byte) (int, error) {
	if err := r.gate.Authorize(caller); err != nil {
		return 0, err
	}
	owner, err := r.recover(r.MessageHash(digest, content), sig)
	if err != nil {
		return 0, model.NewErrorf(model.ErrSignatureMismatch, "cannot recover signer: %v", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.submit(owner, category, hashAlg, digest, content)
}

// submit validates and commits. Callers hold r.mu.
func (r *Registry) submit(owner identity.Address, category int, hashAlg string, digest, content []byte) (int, error) {
	if hashAlg == "" {
		return 0, model.NewError(model.ErrInvalidInput, "empty hash algorithm label")
	}
	if len(digest) == 0 {
		return 0, model.NewError(model.ErrInvalidInput, "empty digest")
	}
	key := hex.EncodeToString(digest)
	if _, ok := r.seen[owner][key]; ok {
		return 0, model.NewErrorf(model.ErrDuplicateAnchor, "digest 0x%s already anchored by %s", key, owner)
	}

	// Archive before commit: an archive failure must leave the registry
	// untouched.
	if r.archive != nil && len(content) > 0 {
		if _, err := r.archive.Put(content); err != nil {
			return 0, err
		}
	}

	rec := model.AnchorRecord{
		Category:  category,
		HashAlg:   hashAlg,
		Digest:    append([]byte(nil), digest...),
		Content:   append([]byte(nil), content...),
		CreatedAt: r.now(),
	}
	r.records[owner] = append(r.records[owner], rec)
	if r.seen[owner] == nil {
		r.seen[owner] = map[string]struct{}{}
	}
	r.seen[owner][key] = struct{}{}

	idx := len(r.records[owner]) - 1
	r.events.Append(eventlog.AnchorAdded{Owner: owner, Index: idx})
	return idx, nil
}

// Count returns the number of records anchored by owner.
func (r *Registry) Count(owner identity.Address) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records[owner])
}

// At returns owner's record at index i, or the zero-value sentinel when i is
// out of range. Read-only queries never fail, so callers can probe bounds
// without pre-checking counts.
func (r *Registry) At(owner identity.Address, i int) model.AnchorRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	recs := r.records[owner]
	if i < 0 || i >= len(recs) {
		return model.AnchorRecord{}
	}
	rec := recs[i]
	rec.Digest = append([]byte(nil), rec.Digest...)
	rec.Content = append([]byte(nil), rec.Content...)
	return rec
}

// HasExisted reports whether owner ever anchored digest. Anchors are never
// retracted, so a true result is true forever.
func (r *Registry) HasExisted(owner identity.Address, digest []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.seen[owner][hex.EncodeToString(digest)]
	return ok
}
