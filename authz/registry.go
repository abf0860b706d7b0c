// Package authz implements the authorization registry: a global append-only
// log of access grants over anchored digests, with four derived indices, a
// per-owner replay nonce, and delegated (signed) operation support.
package authz

import (
	"encoding/hex"
	"sync"
	"time"

	"xdao.co/anchorauth/eventlog"
	"xdao.co/anchorauth/gate"
	"xdao.co/anchorauth/hashutil"
	"xdao.co/anchorauth/identity"
	"xdao.co/anchorauth/model"
)

// AnchorQuery is the narrow existence interface the registry consumes from
// its anchor collaborator. *anchor.Registry implements it.
type AnchorQuery interface {
	HasExisted(owner identity.Address, digest []byte) bool
}

// Options are the registry's injection points. Zero values get working
// defaults; a nil Gate denies every delegated operation.
type Options struct {
	// Gate authorizes callers of the *Signed operations.
	Gate gate.Gate
	// Events receives one notification per accepted operation. A fresh log
	// is created when nil.
	Events *eventlog.Log
	// Recover verifies delegated operations. Defaults to
	// identity.RecoverSigner.
	Recover identity.RecoverFunc
	// Now supplies record timestamps and the validity clock. Defaults to
	// time.Now.
	Now func() time.Time
}

// Registry owns the authorization records, their indices, and the nonce
// table. One mutex serializes every operation: the check-uniqueness-then-
// insert and check-nonce-then-increment sequences are atomic under it, which
// the uniqueness and nonce invariants require. An operation either commits
// fully or fails with no state change.
type Registry struct {
	id      identity.Address
	anchors AnchorQuery
	gate    gate.Gate
	events  *eventlog.Log
	recover identity.RecoverFunc
	now     func() time.Time

	mu      sync.Mutex
	records []model.AuthorizationRecord

	// Derived indices map a key to the ordered global identifiers of the
	// matching records. byTriple is the uniqueness index: at most one entry
	// per (owner, recipient, digest) triple.
	byOwner     map[identity.Address][]int
	byRecipient map[identity.Address][]int
	bySource    map[string][]int
	byTriple    map[string][]int

	// nonces strictly increases by one per accepted signed operation for an
	// owner; a rejected operation never advances it.
	nonces map[identity.Address]uint64
}

// New constructs a registry with the given instance identity, consuming
// anchors for grant preconditions. The identity is bound into every signing
// preimage.
func New(id identity.Address, anchors AnchorQuery, opts Options) *Registry {
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
		id:          id,
		anchors:     anchors,
		gate:        opts.Gate,
		events:      opts.Events,
		recover:     opts.Recover,
		now:         opts.Now,
		byOwner:     map[identity.Address][]int{},
		byRecipient: map[identity.Address][]int{},
		bySource:    map[string][]int{},
		byTriple:    map[string][]int{},
		nonces:      map[identity.Address]uint64{},
	}
}

// ID returns the registry instance identity.
func (r *Registry) ID() identity.Address { return r.id }

// Events returns the registry's notification log.
func (r *Registry) Events() *eventlog.Log { return r.events }

// MessageHash returns the instance-bound preimage digest an external signer
// must sign for the *Signed operations, embedding the owner's nonce at the
// time of the call. The signature becomes invalid once the nonce advances.
func (r *Registry) MessageHash(owner identity.Address, digest []byte, recipient identity.Address) []byte {
	r.mu.Lock()
	nonce := r.nonces[owner]
	r.mu.Unlock()
	return hashutil.AuthorizationMessageHash(r.id[:], digest, recipient[:], nonce)
}

// Nonce returns owner's current nonce (zero for an unseen owner). Off-chain
// signers embed it in the next preimage they sign.
func (r *Registry) Nonce(owner identity.Address) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nonces[owner]
}

// Add grants recipient authorization over the caller's anchored digest. It
// returns the new record's global identifier.
func (r *Registry) Add(caller, source identity.Address, digest []byte, recipient identity.Address, comment string, validUntil time.Time) (int, error) {
	if !r.anchors.HasExisted(caller, digest) {
		return 0, model.NewErrorf(model.ErrMissingAuthorizationSource, "no anchor of digest 0x%x by %s", digest, caller)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.create(source, caller, recipient, digest, comment, validUntil)
}

// AddSigned grants on behalf of owner, submitted by a gated caller carrying
// owner's signature over the current-nonce preimage. The owner's nonce
// advances by exactly one on success.
func (r *Registry) AddSigned(caller, source, owner identity.Address, digest []byte, recipient identity.Address, comment string, validUntil time.Time, sig []byte) (int, error) {
	if err := r.gate.Authorize(caller); err != nil {
		return 0, err
	}
	if !r.anchors.HasExisted(owner, digest) {
		return 0, model.NewErrorf(model.ErrMissingAuthorizationSource, "no anchor of digest 0x%x by %s", digest, owner)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.verifySigned(owner, recipient, digest, sig); err != nil {
		return 0, err
	}
	global, err := r.create(source, owner, recipient, digest, comment, validUntil)
	if err != nil {
		return 0, err
	}
	r.nonces[owner]++
	return global, nil
}

// Update overwrites the comment and validity deadline of the caller's
// existing grant to recipient over digest. Identifiers in all indices are
// unchanged.
func (r *Registry) Update(caller identity.Address, digest []byte, recipient identity.Address, comment string, validUntil time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.update(caller, recipient, digest, comment, validUntil)
}

// UpdateSigned is Update on behalf of owner, with the same signature and
// nonce scheme as AddSigned.
func (r *Registry) UpdateSigned(caller, owner identity.Address, digest []byte, recipient identity.Address, comment string, validUntil time.Time, sig []byte) error {
	if err := r.gate.Authorize(caller); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.verifySigned(owner, recipient, digest, sig); err != nil {
		return err
	}
	if err := r.update(owner, recipient, digest, comment, validUntil); err != nil {
		return err
	}
	r.nonces[owner]++
	return nil
}

// Revoke expires the caller's grant immediately: the validity deadline is
// forced to the current time, so the grant is no longer strictly in the
// future. The record itself is never deleted.
func (r *Registry) Revoke(caller identity.Address, digest []byte, recipient identity.Address, comment string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.update(caller, recipient, digest, comment, r.now())
}

// RevokeSigned is Revoke on behalf of owner, with the same signature and
// nonce scheme as AddSigned.
func (r *Registry) RevokeSigned(caller, owner identity.Address, digest []byte, recipient identity.Address, comment string, sig []byte) error {
	if err := r.gate.Authorize(caller); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.verifySigned(owner, recipient, digest, sig); err != nil {
		return err
	}
	if err := r.update(owner, recipient, digest, comment, r.now()); err != nil {
		return err
	}
	r.nonces[owner]++
	return nil
}

// verifySigned checks sig against the preimage embedding owner's current
// nonce. Callers hold r.mu.
func (r *Registry) verifySigned(owner, recipient identity.Address, digest, sig []byte) error {
	msg := hashutil.AuthorizationMessageHash(r.id[:], digest, recipient[:], r.nonces[owner])
	signer, err := r.recover(msg, sig)
	if err != nil {
		return model.NewErrorf(model.ErrSignatureMismatch, "cannot recover signer: %v", err)
	}
	if signer != owner {
		return model.NewErrorf(model.ErrSignatureMismatch, "recovered %s, want %s", signer, owner)
	}
	return nil
}

// create is the shared creation routine. Callers hold r.mu.
func (r *Registry) create(source, owner, recipient identity.Address, digest []byte, comment string, validUntil time.Time) (int, error) {
	key := hashutil.TripleKey(owner[:], recipient[:], digest)
	if len(r.byTriple[key]) > 0 {
		return 0, model.NewErrorf(model.ErrDuplicateAuthorization, "grant for (%s, %s, 0x%x) already exists", owner, recipient, digest)
	}

	rec := model.AuthorizationRecord{
		Source:     source,
		Digest:     append([]byte(nil), digest...),
		Owner:      owner,
		Recipient:  recipient,
		Comment:    comment,
		CreatedAt:  r.now(),
		ValidUntil: validUntil,
	}
	global := len(r.records)
	r.records = append(r.records, rec)

	r.byOwner[owner] = append(r.byOwner[owner], global)
	ownerPos := len(r.byOwner[owner]) - 1
	r.byRecipient[recipient] = append(r.byRecipient[recipient], global)
	recipientPos := len(r.byRecipient[recipient]) - 1
	r.bySource[sourceKey(owner, digest)] = append(r.bySource[sourceKey(owner, digest)], global)
	r.byTriple[key] = append(r.byTriple[key], global)

	r.events.Append(eventlog.AuthorizationAdded{
		Owner:             owner,
		GlobalIndex:       global,
		OwnerIndexPos:     ownerPos,
		RecipientIndexPos: recipientPos,
	})
	return global, nil
}

// update resolves the uniqueness index and overwrites the record in place.
// Callers hold r.mu.
func (r *Registry) update(owner, recipient identity.Address, digest []byte, comment string, validUntil time.Time) error {
	global, rec, err := r.resolve(owner, recipient, digest)
	if err != nil {
		return err
	}
	rec.Comment = comment
	rec.ValidUntil = validUntil
	r.events.Append(eventlog.AuthorizationUpdated{Owner: owner, GlobalIndex: global})
	return nil
}

// resolve finds the single record for a triple. The ownership and recipient
// checks are defensive: the uniqueness key should already guarantee both.
func (r *Registry) resolve(owner, recipient identity.Address, digest []byte) (int, *model.AuthorizationRecord, error) {
	ids := r.byTriple[hashutil.TripleKey(owner[:], recipient[:], digest)]
	if len(ids) == 0 {
		return 0, nil, model.NewErrorf(model.ErrAuthorizationNotFound, "no grant for (%s, %s, 0x%x)", owner, recipient, digest)
	}
	global := ids[0]
	rec := &r.records[global]
	if rec.Owner != owner {
		return 0, nil, model.NewErrorf(model.ErrOwnershipMismatch, "record %d owned by %s, not %s", global, rec.Owner, owner)
	}
	if rec.Recipient != recipient {
		return 0, nil, model.NewErrorf(model.ErrRecipientMismatch, "record %d granted to %s, not %s", global, rec.Recipient, recipient)
	}
	return global, rec, nil
}

func sourceKey(owner identity.Address, digest []byte) string {
	// Owner is fixed-width, so plain concatenation is unambiguous.
	return hex.EncodeToString(owner[:]) + hex.EncodeToString(digest)
}

// CountForOwner returns the number of grants issued by owner.
func (r *Registry) CountForOwner(owner identity.Address) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byOwner[owner])
}

// ForOwnerAt returns owner's i-th grant, or the zero-value sentinel when i
// is out of range.
func (r *Registry) ForOwnerAt(owner identity.Address, i int) model.AuthorizationRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.at(r.byOwner[owner], i)
}

// CountForRecipient returns the number of grants naming recipient.
func (r *Registry) CountForRecipient(recipient identity.Address) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byRecipient[recipient])
}

// ForRecipientAt returns recipient's i-th grant, or the zero-value sentinel
// when i is out of range.
func (r *Registry) ForRecipientAt(recipient identity.Address, i int) model.AuthorizationRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.at(r.byRecipient[recipient], i)
}

// CountForSource returns the number of grants owner issued over digest.
func (r *Registry) CountForSource(owner identity.Address, digest []byte) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bySource[sourceKey(owner, digest)])
}

// ForSourceAt returns the i-th grant owner issued over digest, or the
// zero-value sentinel when i is out of range.
func (r *Registry) ForSourceAt(owner identity.Address, digest []byte, i int) model.AuthorizationRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.at(r.bySource[sourceKey(owner, digest)], i)
}

// HasExisted reports whether a grant for the triple was ever created.
func (r *Registry) HasExisted(owner, recipient identity.Address, digest []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byTriple[hashutil.TripleKey(owner[:], recipient[:], digest)]) > 0
}

// Validated reports whether the triple's grant exists and its validity
// deadline is strictly in the future.
func (r *Registry) Validated(owner, recipient identity.Address, digest []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.byTriple[hashutil.TripleKey(owner[:], recipient[:], digest)]
	if len(ids) == 0 {
		return false
	}
	return r.records[ids[0]].ValidUntil.After(r.now())
}

// at copies out the record for ids[i], or returns the sentinel. Callers hold
// r.mu.
func (r *Registry) at(ids []int, i int) model.AuthorizationRecord {
	if i < 0 || i >= len(ids) {
		return model.AuthorizationRecord{}
	}
	rec := r.records[ids[i]]
	rec.Digest = append([]byte(nil), rec.Digest...)
	return rec
}
