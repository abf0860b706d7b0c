package identity

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"golang.org/x/crypto/sha3"
)

const (
	// AddressSize is the byte length of an identity address.
	AddressSize = 20
	// DigestSize is the byte length of a signable message digest.
	DigestSize = 32
	// SignatureSize is the byte length of a compact recoverable signature:
	// one recovery header byte followed by the 32-byte R and S values.
	SignatureSize = 65
)

// Address is a 20-byte identity derived from a secp256k1 public key:
// the last 20 bytes of keccak256 over the uncompressed key without its
// 0x04 prefix.
type Address [AddressSize]byte

// Zero is the all-zero sentinel address.
var Zero Address

func (a Address) Bytes() []byte { return a[:] }

func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

func (a Address) String() string { return a.Hex() }

func (a Address) IsZero() bool { return a == Zero }

// ParseAddress decodes a hex address, with or without a 0x prefix.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return Zero, fmt.Errorf("identity: invalid address hex: %w", err)
	}
	return AddressFromBytes(b)
}

// AddressFromBytes converts a 20-byte slice to an Address.
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != AddressSize {
		return Zero, fmt.Errorf("identity: expected %d address bytes, got %d", AddressSize, len(b))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// PubkeyToAddress derives the address for a secp256k1 public key.
func PubkeyToAddress(pub *btcec.PublicKey) Address {
	raw := pub.SerializeUncompressed()
	h := sha3.NewLegacyKeccak256()
	h.Write(raw[1:])
	sum := h.Sum(nil)
	var a Address
	copy(a[:], sum[len(sum)-AddressSize:])
	return a
}

// GenerateKey returns a fresh secp256k1 private key.
func GenerateKey() (*btcec.PrivateKey, error) {
	return btcec.NewPrivateKey()
}

// PrivateKeyFromBytes builds a private key from a 32-byte scalar.
func PrivateKeyFromBytes(b []byte) (*btcec.PrivateKey, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("identity: expected 32 key bytes, got %d", len(b))
	}
	priv, _ := btcec.PrivKeyFromBytes(b)
	if priv.Key.IsZero() {
		return nil, errors.New("identity: zero private key")
	}
	return priv, nil
}

// AddressOf derives the address controlled by a private key.
func AddressOf(priv *btcec.PrivateKey) Address {
	return PubkeyToAddress(priv.PubKey())
}

// Sign produces a compact recoverable signature over a 32-byte digest.
// The output layout matches what RecoverSigner expects.
func Sign(digest []byte, priv *btcec.PrivateKey) ([]byte, error) {
	if len(digest) != DigestSize {
		return nil, fmt.Errorf("identity: expected %d digest bytes, got %d", DigestSize, len(digest))
	}
	if priv == nil {
		return nil, errors.New("identity: missing private key")
	}
	return ecdsa.SignCompact(priv, digest, false), nil
}

// RecoverFunc recovers the signer address of a compact signature over a
// message digest. Registries take one as an injection point so tests can
// substitute deterministic verifiers.
type RecoverFunc func(digest, sig []byte) (Address, error)

// RecoverSigner is the production RecoverFunc. It is a pure function:
// identical inputs always yield the identical address.
func RecoverSigner(digest, sig []byte) (Address, error) {
	if len(digest) != DigestSize {
		return Zero, fmt.Errorf("identity: expected %d digest bytes, got %d", DigestSize, len(digest))
	}
	if len(sig) != SignatureSize {
		return Zero, fmt.Errorf("identity: expected %d signature bytes, got %d", SignatureSize, len(sig))
	}
	pub, _, err := ecdsa.RecoverCompact(sig, digest)
	if err != nil {
		return Zero, err
	}
	return PubkeyToAddress(pub), nil
}
