// Package hashutil holds the deterministic digest constructions used across
// the registries. Every function is pure: identical inputs always yield
// identical output across calls and across processes.
//
// The message-hash layouts are part of the signing protocol and must not
// change: external signers reproduce them byte-exact to produce valid
// delegated submissions.
package hashutil

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"golang.org/x/crypto/sha3"
)

// Keccak256 returns the legacy keccak-256 digest over the concatenation of
// chunks.
func Keccak256(chunks ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, c := range chunks {
		h.Write(c)
	}
	return h.Sum(nil)
}

// HashKey is the canonical map-key digest over arbitrary bytes, exposed so
// external signers can reproduce the exact bytes the registries hash.
func HashKey(b []byte) []byte {
	return Keccak256(b)
}

// AnchorMessageHash is the preimage digest signed for delegated anchor
// submission:
//
//	keccak256(registryID || digest || content)
//
// Binding the registry instance identity prevents a signature from one
// deployment being replayed against another.
func AnchorMessageHash(registryID, digest, content []byte) []byte {
	return Keccak256(registryID, digest, content)
}

// AuthorizationMessageHash is the preimage digest signed for delegated
// authorization operations:
//
//	keccak256(registryID || digest || recipient || nonce)
//
// The nonce is encoded as a 32-byte big-endian integer. A signature encodes
// the owner's nonce at signing time and becomes invalid once the nonce
// advances.
func AuthorizationMessageHash(registryID, digest, recipient []byte, nonce uint64) []byte {
	var n [32]byte
	binary.BigEndian.PutUint64(n[24:], nonce)
	return Keccak256(registryID, digest, recipient, n[:])
}

// TripleKey is the uniqueness key enforcing at most one authorization per
// (owner, recipient, digest) triple:
//
//	hex(keccak256(owner || recipient || digest))
func TripleKey(owner, recipient, digest []byte) string {
	return hex.EncodeToString(Keccak256(owner, recipient, digest))
}

// ContentCID returns a CIDv1 using the "raw" multicodec and a sha2-256
// multihash. It keys anchored content in the archive.
func ContentCID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// ContentCIDString is ContentCID rendered as a string, or "" on error.
// multihash.Sum cannot fail for SHA2_256 with default length, so the error
// arm should be unreachable.
func ContentCIDString(data []byte) string {
	id, err := ContentCID(data)
	if err != nil {
		return ""
	}
	return id.String()
}
