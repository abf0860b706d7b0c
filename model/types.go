package model

import (
	"time"

	"xdao.co/anchorauth/identity"
)

// AnchorRecord is an immutable commitment of a content digest (and optional
// raw payload) to an owner's append-only log. The record's index within that
// log is its permanent identifier for the owner.
type AnchorRecord struct {
	// Category is a free integer tag chosen by the submitter.
	Category int
	// HashAlg labels the algorithm that produced Digest (e.g. "sha256").
	// The registry stores the label verbatim; it does not recompute digests.
	HashAlg string
	// Digest is the content digest being anchored.
	Digest []byte
	// Content optionally carries the raw bytes behind Digest. Empty is allowed.
	Content []byte
	// CreatedAt is the registry-assigned creation timestamp.
	CreatedAt time.Time
}

// IsZero reports whether the record is the out-of-range sentinel.
func (r AnchorRecord) IsZero() bool {
	return r.Category == 0 && r.HashAlg == "" && len(r.Digest) == 0 &&
		len(r.Content) == 0 && r.CreatedAt.IsZero()
}

// AuthorizationRecord grants a recipient time-bounded access over one
// anchored digest. Records are never deleted; revocation mutates ValidUntil
// to the revocation time. The record's position in the global log is its
// permanent identifier.
type AuthorizationRecord struct {
	// Source references the anchor registry instance the grant is about.
	Source identity.Address
	// Digest is the anchored content digest the grant covers.
	Digest []byte
	// Owner granted the access; Recipient receives it.
	Owner     identity.Address
	Recipient identity.Address
	// Comment is free text supplied by the owner.
	Comment string
	// CreatedAt is the registry-assigned creation timestamp.
	CreatedAt time.Time
	// ValidUntil is the validity deadline: the grant is active while the
	// current time is strictly before it.
	ValidUntil time.Time
}

// IsZero reports whether the record is the out-of-range sentinel.
func (r AuthorizationRecord) IsZero() bool {
	return r.Source.IsZero() && len(r.Digest) == 0 && r.Owner.IsZero() &&
		r.Recipient.IsZero() && r.Comment == "" && r.CreatedAt.IsZero() &&
		r.ValidUntil.IsZero()
}
