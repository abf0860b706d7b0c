package hashutil

import (
	"bytes"
	"encoding/hex"
	"testing"

	"golang.org/x/crypto/sha3"
)

func TestKeccak256_MatchesManualConcatenation(t *testing.T) {
	a := []byte("alpha")
	b := []byte("beta")

	h := sha3.NewLegacyKeccak256()
	h.Write(append(append([]byte{}, a...), b...))
	want := h.Sum(nil)

	got := Keccak256(a, b)
	if !bytes.Equal(got, want) {
		t.Fatalf("Keccak256 chunking changed the digest: got %x want %x", got, want)
	}
}

func TestHashKey_KnownVector(t *testing.T) {
	// keccak256("") is a fixed constant; a change here means the hash
	// function itself changed.
	got := hex.EncodeToString(HashKey(nil))
	want := "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	if got != want {
		t.Fatalf("HashKey(nil) = %s, want %s", got, want)
	}
}

func TestAnchorMessageHash_Layout(t *testing.T) {
	registry := []byte("regregregregregregre")
	digest := []byte{0x01, 0x02}
	content := []byte{0x03}

	want := Keccak256(append(append(append([]byte{}, registry...), digest...), content...))
	got := AnchorMessageHash(registry, digest, content)
	if !bytes.Equal(got, want) {
		t.Fatalf("AnchorMessageHash layout mismatch")
	}
}

func TestAuthorizationMessageHash_NonceEncoding(t *testing.T) {
	registry := []byte("reg")
	digest := []byte{0xaa}
	recipient := []byte{0xbb}

	// Nonce is a 32-byte big-endian integer appended last.
	nonceBytes := make([]byte, 32)
	nonceBytes[31] = 7
	pre := append(append(append(append([]byte{}, registry...), digest...), recipient...), nonceBytes...)
	want := Keccak256(pre)

	got := AuthorizationMessageHash(registry, digest, recipient, 7)
	if !bytes.Equal(got, want) {
		t.Fatalf("AuthorizationMessageHash nonce encoding mismatch")
	}

	if bytes.Equal(
		AuthorizationMessageHash(registry, digest, recipient, 7),
		AuthorizationMessageHash(registry, digest, recipient, 8),
	) {
		t.Fatalf("different nonces must yield different digests")
	}
}

func TestMessageHashes_Pure(t *testing.T) {
	for i := 0; i < 50; i++ {
		a := AuthorizationMessageHash([]byte("r"), []byte("d"), []byte("p"), 3)
		b := AuthorizationMessageHash([]byte("r"), []byte("d"), []byte("p"), 3)
		if !bytes.Equal(a, b) {
			t.Fatalf("digest changed across calls")
		}
	}
}

func TestTripleKey_DistinguishesParticipants(t *testing.T) {
	owner := bytes.Repeat([]byte{0x01}, 20)
	r1 := bytes.Repeat([]byte{0x02}, 20)
	r2 := bytes.Repeat([]byte{0x03}, 20)
	digest := []byte("doc")

	if TripleKey(owner, r1, digest) == TripleKey(owner, r2, digest) {
		t.Fatalf("triple keys for different recipients collided")
	}
	if TripleKey(owner, r1, digest) != TripleKey(owner, r1, digest) {
		t.Fatalf("triple key not deterministic")
	}
}

func TestContentCID_DeterministicAndDefined(t *testing.T) {
	id1, err := ContentCID([]byte("payload"))
	if err != nil {
		t.Fatalf("ContentCID: %v", err)
	}
	id2, err := ContentCID([]byte("payload"))
	if err != nil {
		t.Fatalf("ContentCID: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("ContentCID not deterministic: %s vs %s", id1, id2)
	}
	if !id1.Defined() {
		t.Fatalf("expected defined CID")
	}
	if ContentCIDString([]byte("payload")) != id1.String() {
		t.Fatalf("ContentCIDString disagrees with ContentCID")
	}
}
