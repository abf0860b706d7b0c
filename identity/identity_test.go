package identity

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"

	"xdao.co/anchorauth/hashutil"
)

func mustKey(t *testing.T, seedByte byte) (*btcec.PrivateKey, Address) {
	t.Helper()
	seed := bytes.Repeat([]byte{seedByte}, 32)
	priv, err := PrivateKeyFromBytes(seed)
	if err != nil {
		t.Fatalf("PrivateKeyFromBytes: %v", err)
	}
	return priv, AddressOf(priv)
}

func TestSignRecover_RoundTrip(t *testing.T) {
	priv, addr := mustKey(t, 0xA1)
	digest := hashutil.Keccak256([]byte("message"))

	sig, err := Sign(digest, priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if len(sig) != SignatureSize {
		t.Fatalf("signature length %d, want %d", len(sig), SignatureSize)
	}

	got, err := RecoverSigner(digest, sig)
	if err != nil {
		t.Fatalf("RecoverSigner: %v", err)
	}
	if got != addr {
		t.Fatalf("recovered %s, want %s", got, addr)
	}
}

func TestRecoverSigner_DifferentDigestDifferentSigner(t *testing.T) {
	priv, addr := mustKey(t, 0xB2)
	sig, err := Sign(hashutil.Keccak256([]byte("one")), priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	got, err := RecoverSigner(hashutil.Keccak256([]byte("two")), sig)
	if err == nil && got == addr {
		t.Fatalf("signature verified against the wrong digest")
	}
}

func TestRecoverSigner_RejectsBadLengths(t *testing.T) {
	if _, err := RecoverSigner(make([]byte, 31), make([]byte, SignatureSize)); err == nil {
		t.Fatalf("expected error for short digest")
	}
	if _, err := RecoverSigner(make([]byte, DigestSize), make([]byte, 64)); err == nil {
		t.Fatalf("expected error for short signature")
	}
}

func TestAddress_HexRoundTrip(t *testing.T) {
	_, addr := mustKey(t, 0xC3)
	parsed, err := ParseAddress(addr.Hex())
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	if parsed != addr {
		t.Fatalf("round trip mismatch: %s vs %s", parsed, addr)
	}

	if _, err := ParseAddress("0xzz"); err == nil {
		t.Fatalf("expected error for invalid hex")
	}
	if _, err := ParseAddress("0x0102"); err == nil {
		t.Fatalf("expected error for short address")
	}
}

func TestPrivateKeyFromBytes_RejectsZero(t *testing.T) {
	if _, err := PrivateKeyFromBytes(make([]byte, 32)); err == nil {
		t.Fatalf("expected error for zero key")
	}
	if _, err := PrivateKeyFromBytes(make([]byte, 16)); err == nil {
		t.Fatalf("expected error for short key")
	}
}

func TestGenerateKey_DistinctAddresses(t *testing.T) {
	k1, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	k2, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	if AddressOf(k1) == AddressOf(k2) {
		t.Fatalf("two generated keys derived the same address")
	}
}
