package keys

import (
	"crypto/sha256"
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"

	"xdao.co/anchorauth/identity"
)

// KeySize is the byte length of a secp256k1 private scalar.
const KeySize = 32

// AddressFromKey formats the address controlled by a raw 32-byte key.
func AddressFromKey(key []byte) (string, error) {
	priv, err := identity.PrivateKeyFromBytes(key)
	if err != nil {
		return "", err
	}
	return identity.AddressOf(priv).Hex(), nil
}

// DeriveRoleKey deterministically derives a role-specific key from a root
// key. The derivation is domain-separated, so role keys never collide with
// keys derived under other schemes.
//
// This mirrors the CLI derivation for compatibility.
func DeriveRoleKey(rootKey []byte, role string) ([]byte, error) {
	if len(rootKey) != KeySize {
		return nil, errors.New("root key must be 32 bytes")
	}
	if err := CheckRole(role); err != nil {
		return nil, err
	}

	// The sha256 output is interpreted as a scalar mod N. A counter byte
	// re-rolls the negligible case of a zero scalar.
	for counter := byte(0); ; counter++ {
		h := sha256.New()
		_, _ = h.Write(rootKey)
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte("xdao-anchorauth-kms-v1"))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte("role:"))
		_, _ = h.Write([]byte(role))
		_, _ = h.Write([]byte{counter})
		sum := h.Sum(nil)

		priv, _ := btcec.PrivKeyFromBytes(sum[:KeySize])
		if priv.Key.IsZero() {
			continue
		}
		out := make([]byte, KeySize)
		priv.Key.PutBytesUnchecked(out)
		return out, nil
	}
}
